package sql

// NodeTransformFunc rewrites a single node; returning the node unchanged is
// how a rule declines to act on it.
type NodeTransformFunc func(Node) (Node, error)

// ExprTransformFunc rewrites a single expression.
type ExprTransformFunc func(Expression) (Expression, error)

// TransformUp rebuilds n's children bottom-up (recursively) and then
// applies f to n itself, mirroring the teacher's
// sql/expression/transform.go TransformUp shape. Unchanged subtrees are
// shared, never copied.
func TransformUp(n Node, f NodeTransformFunc) (Node, error) {
	children := n.Children()
	if len(children) > 0 {
		newChildren := make([]Node, len(children))
		changed := false
		for i, c := range children {
			nc, err := TransformUp(c, f)
			if err != nil {
				return nil, err
			}
			newChildren[i] = nc
			if nc != c {
				changed = true
			}
		}
		if changed {
			var err error
			n, err = n.WithChildren(newChildren...)
			if err != nil {
				return nil, err
			}
		}
	}
	return f(n)
}

// TransformDown applies f to n first, then recurses into the (possibly
// rewritten) children.
func TransformDown(n Node, f NodeTransformFunc) (Node, error) {
	n, err := f(n)
	if err != nil {
		return nil, err
	}
	children := n.Children()
	if len(children) == 0 {
		return n, nil
	}
	newChildren := make([]Node, len(children))
	changed := false
	for i, c := range children {
		nc, err := TransformDown(c, f)
		if err != nil {
			return nil, err
		}
		newChildren[i] = nc
		if nc != c {
			changed = true
		}
	}
	if !changed {
		return n, nil
	}
	return n.WithChildren(newChildren...)
}

// ResolveOperators is TransformUp under the name spec.md uses for the
// operator-only traversal combinator: rules that rewrite operator shape
// without looking at expressions call this.
func ResolveOperators(n Node, f NodeTransformFunc) (Node, error) {
	return TransformUp(n, f)
}

// ExprTransformUp rebuilds e's children bottom-up and then applies f to e.
func ExprTransformUp(e Expression, f ExprTransformFunc) (Expression, error) {
	children := e.Children()
	if len(children) > 0 {
		newChildren := make([]Expression, len(children))
		changed := false
		for i, c := range children {
			nc, err := ExprTransformUp(c, f)
			if err != nil {
				return nil, err
			}
			newChildren[i] = nc
			if nc != c {
				changed = true
			}
		}
		if changed {
			var err error
			e, err = e.WithChildren(newChildren...)
			if err != nil {
				return nil, err
			}
		}
	}
	return f(e)
}

// TransformExpressionsUp rewrites every expression n owns (not its
// children's) bottom-up via ExprTransformUp.
func TransformExpressionsUp(n Node, f ExprTransformFunc) (Node, error) {
	exprs := n.Expressions()
	if len(exprs) == 0 {
		return n, nil
	}
	newExprs := make([]Expression, len(exprs))
	changed := false
	for i, e := range exprs {
		ne, err := ExprTransformUp(e, f)
		if err != nil {
			return nil, err
		}
		newExprs[i] = ne
		if ne != e {
			changed = true
		}
	}
	if !changed {
		return n, nil
	}
	return n.WithExpressions(newExprs...)
}

// TransformExpressionsUpWithTree walks the whole plan bottom-up and rewrites
// every node's own expressions bottom-up, the combination used by most
// resolution rules (resolve against children first, then transform this
// node's expressions).
func TransformExpressionsUpWithTree(n Node, f ExprTransformFunc) (Node, error) {
	return TransformUp(n, func(n Node) (Node, error) {
		return TransformExpressionsUp(n, f)
	})
}

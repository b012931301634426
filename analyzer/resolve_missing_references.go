package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveMissingReferences resolves a Sort or Filter expression that
// could not bind against its immediate child's output by widening the
// search down through the unary descendant chain (stopping at a
// non-unary node or a SubqueryAlias), then lifting whatever it finds
// into the child so the attribute becomes available, stripping the lift
// back off with an enclosing Project (§4.F). Grounded on the teacher's
// sql/analyzer/resolve_missing_references.go.
func ResolveMissingReferences(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		switch node := n.(type) {
		case *plan.Filter:
			if node.Condition.Resolved() {
				return node, nil
			}
			return liftFilter(ctx, node)
		case *plan.Sort:
			if sortOrderResolved(node.Order) || !node.Child.Resolved() {
				return node, nil
			}
			return liftSort(ctx, node)
		default:
			return node, nil
		}
	})
}

func sortOrderResolved(order []expression.SortOrder) bool {
	for _, o := range order {
		if !o.Column.Resolved() {
			return false
		}
	}
	return true
}

func liftFilter(ctx *sql.Context, f *plan.Filter) (sql.Node, error) {
	origOutput := f.Child.Output()
	newChild, newExprs, changed, err := resolveMissingAgainstDescendants(ctx, f, f.Child, []sql.Expression{f.Condition})
	if err != nil {
		return nil, err
	}
	if !changed {
		return f, nil
	}
	lifted := &plan.Filter{Condition: newExprs[0]}
	lifted.Child = newChild
	if sameAttributeIds(newChild.Output(), origOutput) {
		return lifted, nil
	}
	return plan.NewProject(attrsToExprs(origOutput), lifted), nil
}

func liftSort(ctx *sql.Context, s *plan.Sort) (sql.Node, error) {
	origOutput := s.Child.Output()
	cols := make([]sql.Expression, len(s.Order))
	for i, o := range s.Order {
		cols[i] = o.Column
	}
	newChild, newExprs, changed, err := resolveMissingAgainstDescendants(ctx, s, s.Child, cols)
	if err != nil {
		return nil, err
	}
	if !changed {
		return s, nil
	}
	order := make([]expression.SortOrder, len(s.Order))
	for i, o := range s.Order {
		order[i] = expression.SortOrder{Column: newExprs[i], Ascending: o.Ascending, NullsFirst: o.NullsFirst}
	}
	lifted := &plan.Sort{Order: order, Global: s.Global}
	lifted.Child = newChild
	if sameAttributeIds(newChild.Output(), origOutput) {
		return lifted, nil
	}
	return plan.NewProject(attrsToExprs(origOutput), lifted), nil
}

func sameAttributeIds(a, b []sql.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ExprId() != b[i].ExprId() {
			return false
		}
	}
	return true
}

// resolveMissingAgainstDescendants tries to bind every UnresolvedAttribute
// in exprs against descendantCandidates(child); any that resolve to an
// attribute not already in child's own output are lifted into child via
// extendWithAttributes. Returns the (possibly extended) child, the
// rewritten exprs, and whether anything changed.
func resolveMissingAgainstDescendants(ctx *sql.Context, n sql.Node, child sql.Node, exprs []sql.Expression) (sql.Node, []sql.Expression, bool, error) {
	candidates := descendantCandidates(child)
	changed := false
	newExprs := make([]sql.Expression, len(exprs))
	for i, e := range exprs {
		ne, err := sql.ExprTransformUp(e, func(inner sql.Expression) (sql.Expression, error) {
			ua, ok := inner.(*expression.UnresolvedAttribute)
			if !ok {
				return inner, nil
			}
			resolved, err := matchAttribute(ctx, n, candidates, ua)
			if err != nil {
				// leave unresolved; CheckAnalysis reports it if no other
				// rule ever binds it.
				return inner, nil
			}
			return resolved, nil
		})
		if err != nil {
			return nil, nil, false, err
		}
		if ne != e {
			changed = true
		}
		newExprs[i] = ne
	}
	if !changed {
		return child, exprs, false, nil
	}

	childIds := sql.OutputSet(child)
	missing := sql.AttributeMap{}
	for _, e := range newExprs {
		for id, a := range e.References() {
			if !childIds.ContainsId(id) {
				missing[id] = a
			}
		}
	}
	if len(missing) == 0 {
		return child, newExprs, true, nil
	}

	missingList := make([]sql.Attribute, 0, len(missing))
	for _, a := range missing {
		missingList = append(missingList, a)
	}

	newChild, err := extendWithAttributes(n, child, missingList)
	if err != nil {
		return nil, nil, false, err
	}
	return newChild, newExprs, true, nil
}

// descendantCandidates collects the output of child and every further
// unary descendant, stopping after including a SubqueryAlias's own
// output (never descending past it) or after a node with other than one
// child.
func descendantCandidates(child sql.Node) []sql.Attribute {
	var out []sql.Attribute
	cur := child
	for {
		out = append(out, cur.Output()...)
		if _, ok := cur.(*plan.SubqueryAlias); ok {
			return out
		}
		children := cur.Children()
		if len(children) != 1 {
			return out
		}
		cur = children[0]
	}
}

// extendWithAttributes appends extra to child's own output list, the
// concrete lift §4.F calls for: Project's project list, Aggregate's
// aggregate list (after checking every lifted attribute is grouped), or
// else a newly-inserted Project wrapping child.
func extendWithAttributes(n sql.Node, child sql.Node, extra []sql.Attribute) (sql.Node, error) {
	switch c := child.(type) {
	case *plan.Project:
		list := append(append([]sql.Expression{}, c.ProjectList...), attrsToExprs(extra)...)
		return c.WithExpressions(list...)
	case *plan.Aggregate:
		grouped := sql.AttributeSet{}
		for _, g := range c.GroupingExpressions {
			if ne, ok := g.(sql.NamedExpression); ok {
				grouped[ne.ExprId()] = ne.ToAttribute()
			}
		}
		for _, a := range extra {
			if !grouped.ContainsId(a.ExprId()) {
				return nil, sql.NewAnalysisException(sql.ErrLiftedAttributeNotGrouped.New(a.Name()), n)
			}
		}
		aggs := append(append([]sql.Expression{}, c.AggregateExpressions...), attrsToExprs(extra)...)
		return c.WithAggregateExpressions(aggs), nil
	default:
		list := append(attrsToExprs(child.Output()), attrsToExprs(extra)...)
		return plan.NewProject(list, child), nil
	}
}

func attrsToExprs(attrs []sql.Attribute) []sql.Expression {
	out := make([]sql.Expression, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}

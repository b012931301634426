package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
)

// TransformNodeDeep rebuilds n's children bottom-up like sql.TransformUp,
// additionally descending into any SubqueryExpression a node's own
// expressions carry, so a rewrite rule (CTE inlining, window-definition
// substitution) reaches relation/window references "transitively inside
// subquery expressions" the way spec.md §4.D requires, without every such
// rule having to special-case subqueries itself.
func TransformNodeDeep(n sql.Node, f func(sql.Node) (sql.Node, error)) (sql.Node, error) {
	children := n.Children()
	if len(children) > 0 {
		newChildren := make([]sql.Node, len(children))
		changed := false
		for i, c := range children {
			nc, err := TransformNodeDeep(c, f)
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

	n2, err := sql.TransformExpressionsUp(n, func(e sql.Expression) (sql.Expression, error) {
		sq, ok := e.(*expression.SubqueryExpression)
		if !ok {
			return e, nil
		}
		nq, err := TransformNodeDeep(sq.Query, f)
		if err != nil {
			return nil, err
		}
		if nq != sq.Query {
			return sq.WithQuery(nq), nil
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}

	return f(n2)
}

package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
	"github.com/spf13/cast"
)

// ResolveOrdinals binds a positional ORDER BY or GROUP BY key (an integer
// literal child) to the corresponding entry of the enclosing select list
// (§4.F). Grounded on the teacher's sql/analyzer/resolve_order_by.go and
// sql/analyzer/resolve_group_by.go ordinal handling, using spf13/cast for
// the literal->int64 coercion the way the rest of this module already
// does for user-supplied scalar config.
func ResolveOrdinals(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		switch node := n.(type) {
		case *plan.Sort:
			if !ctx.Config.OrderByOrdinal || !node.Child.Resolved() {
				return node, nil
			}
			return resolveSortOrdinals(node)
		case *plan.Aggregate:
			if !ctx.Config.GroupByOrdinal {
				return node, nil
			}
			return resolveGroupByOrdinals(node)
		default:
			return node, nil
		}
	})
}

func ordinalOf(e sql.Expression) (int64, bool) {
	lit, ok := e.(*expression.Literal)
	if !ok || lit.Value == nil {
		return 0, false
	}
	k, err := cast.ToInt64E(lit.Value)
	if err != nil {
		return 0, false
	}
	return k, true
}

func resolveSortOrdinals(s *plan.Sort) (sql.Node, error) {
	childOut := s.Child.Output()
	order := make([]expression.SortOrder, len(s.Order))
	for i, o := range s.Order {
		k, ok := ordinalOf(o.Column)
		if !ok {
			order[i] = o
			continue
		}
		if k < 1 || int(k) > len(childOut) {
			return nil, sql.NewAnalysisException(sql.ErrInvalidOrdinal.New("ORDER BY", k), s)
		}
		order[i] = expression.SortOrder{Column: childOut[k-1], Ascending: o.Ascending, NullsFirst: o.NullsFirst}
	}
	return &plan.Sort{UnaryNode: s.UnaryNode, Order: order, Global: s.Global}, nil
}

func resolveGroupByOrdinals(a *plan.Aggregate) (sql.Node, error) {
	aggOut := a.AggregateExpressions
	grouping := make([]sql.Expression, len(a.GroupingExpressions))
	for i, g := range a.GroupingExpressions {
		k, ok := ordinalOf(g)
		if !ok {
			grouping[i] = g
			continue
		}
		if k < 1 || int(k) > len(aggOut) {
			return nil, sql.NewAnalysisException(sql.ErrInvalidOrdinal.New("GROUP BY", k), a)
		}
		target := aggOut[k-1]
		if expression.ContainsAggregate(target) {
			return nil, sql.NewAnalysisException(sql.ErrOrdinalOnAggregate.New(k), a)
		}
		grouping[i] = target
	}
	return a.WithGroupingExpressions(grouping), nil
}

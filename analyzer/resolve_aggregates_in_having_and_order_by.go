package analyzer

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveAggregatesInHavingAndOrderBy lets a HAVING clause or an ORDER BY
// key reference an aggregate that was never selected, by synthesizing a
// trial Aggregate over the same grouping/child with just that one
// expression, recursively analyzing it to resolve any column references
// and bind any functions it contains, then splicing the result back into
// the real Aggregate's aggregate list and rewriting the Filter/Sort to
// reference the new attribute instead (§4.G). A key already present (up to
// semantic equality) is reused rather than duplicated. Grounded on the
// teacher's sql/analyzer/resolve_having.go and
// sql/analyzer/resolve_order_by.go's trial-analyze technique.
func ResolveAggregatesInHavingAndOrderBy(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		switch node := n.(type) {
		case *plan.Filter:
			agg, ok := node.Child.(*plan.Aggregate)
			if !ok || node.Condition.Resolved() {
				return node, nil
			}
			return liftHavingAggregate(ctx, node, agg)
		case *plan.Sort:
			agg, ok := node.Child.(*plan.Aggregate)
			if !ok {
				return node, nil
			}
			return liftOrderByAggregates(ctx, node, agg)
		default:
			return node, nil
		}
	})
}

// analyzeTrial runs a fresh structural-batches-only Analyzer over n, used
// to resolve a synthesized one-off Aggregate without re-entering the
// batch currently executing.
func analyzeTrial(ctx *sql.Context, n sql.Node) (sql.Node, error) {
	return NewDefault(ctx.Catalog).Analyze(ctx, n)
}

func liftHavingAggregate(ctx *sql.Context, f *plan.Filter, agg *plan.Aggregate) (sql.Node, error) {
	trial := plan.NewAggregate(
		agg.GroupingExpressions,
		[]sql.Expression{expression.NewAlias(f.Condition, "havingCondition")},
		agg.Child,
	)
	resolvedTrial, err := analyzeTrial(ctx, trial)
	if err != nil {
		// Leave unresolved: CheckAnalysis reports it if nothing else binds it.
		return f, nil
	}
	ta, ok := resolvedTrial.(*plan.Aggregate)
	if !ok || len(ta.AggregateExpressions) != 1 {
		return f, nil
	}
	condAlias, ok := ta.AggregateExpressions[0].(sql.NamedExpression)
	if !ok || !condAlias.Resolved() {
		return f, nil
	}

	newAggs := agg.AggregateExpressions
	newCond := condAlias.ToAttribute()
	if idx, found := sql.SemanticEqualsAny(condAlias, agg.AggregateExpressions); found {
		if existing, ok := agg.AggregateExpressions[idx].(sql.NamedExpression); ok {
			newCond = existing.ToAttribute()
		}
	} else {
		newAggs = append(append([]sql.Expression{}, agg.AggregateExpressions...), condAlias)
	}

	newAgg := agg.WithAggregateExpressions(newAggs)
	newFilter := plan.NewFilter(newCond, newAgg)
	return plan.NewProject(attrsToExprs(agg.Output()), newFilter), nil
}

func liftOrderByAggregates(ctx *sql.Context, s *plan.Sort, agg *plan.Aggregate) (sql.Node, error) {
	extraAggs := append([]sql.Expression{}, agg.AggregateExpressions...)
	newOrder := make([]expression.SortOrder, len(s.Order))
	changed := false

	for i, o := range s.Order {
		if o.Column.Resolved() && !expression.ContainsAggregate(o.Column) {
			newOrder[i] = o
			continue
		}

		trial := plan.NewAggregate(
			agg.GroupingExpressions,
			[]sql.Expression{expression.NewAlias(o.Column, fmt.Sprintf("_orderByAlias%d", i))},
			agg.Child,
		)
		resolvedTrial, err := analyzeTrial(ctx, trial)
		if err != nil {
			newOrder[i] = o
			continue
		}
		ta, ok := resolvedTrial.(*plan.Aggregate)
		if !ok || len(ta.AggregateExpressions) != 1 {
			newOrder[i] = o
			continue
		}
		keyAlias, ok := ta.AggregateExpressions[0].(sql.NamedExpression)
		if !ok || !keyAlias.Resolved() {
			newOrder[i] = o
			continue
		}

		if idx, found := sql.SemanticEqualsAny(keyAlias, extraAggs); found {
			existing := extraAggs[idx].(sql.NamedExpression)
			newOrder[i] = expression.SortOrder{Column: existing.ToAttribute(), Ascending: o.Ascending, NullsFirst: o.NullsFirst}
			changed = true
			continue
		}

		extraAggs = append(extraAggs, keyAlias)
		newOrder[i] = expression.SortOrder{Column: keyAlias.ToAttribute(), Ascending: o.Ascending, NullsFirst: o.NullsFirst}
		changed = true
	}

	if !changed {
		return s, nil
	}

	newAgg := agg.WithAggregateExpressions(extraAggs)
	newSort := &plan.Sort{Order: newOrder, Global: s.Global}
	newSort.Child = newAgg
	return plan.NewProject(attrsToExprs(agg.Output()), newSort), nil
}

package analyzer

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolvePivot desugars a Pivot node into a plain Aggregate: for every
// (pivotValue, aggregate) pair, the aggregate's argument is wrapped in an
// `if(pivotCol = pivotValue, e, null)` guard — or, for First/Last, the
// guard is folded into its IGNORE NULLS behavior instead — and the result
// aliased `value` (single aggregate) or `value_aggSql` (multiple) (§4.G).
// A guard that leaves the aggregate unchanged means it never referenced
// the pivot column, which is a diagnostic. Grounded on the teacher's
// sql/analyzer/resolve_pivot.go desugar-into-Aggregate shape.
func ResolvePivot(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		pivot, ok := n.(*plan.Pivot)
		if !ok {
			return n, nil
		}
		if !pivot.PivotColumn.Resolved() || !sql.ExpressionsResolved(pivot.PivotValues) || !sql.ExpressionsResolved(pivot.Aggregates) {
			return n, nil
		}

		multi := len(pivot.Aggregates) > 1
		pivotAggs := make([]sql.Expression, 0, len(pivot.PivotValues)*len(pivot.Aggregates))
		for _, value := range pivot.PivotValues {
			for _, agg := range pivot.Aggregates {
				guarded, err := guardAggregateForPivot(pivot.PivotColumn, value, agg)
				if err != nil {
					return nil, sql.NewAnalysisException(err, n)
				}

				name := "value"
				if multi {
					name = "value_aggSql"
				}
				pivotAggs = append(pivotAggs, expression.NewAlias(guarded, name))
			}
		}

		grouping := append([]sql.Expression{}, pivot.GroupBy...)
		aggregateExprs := append(append([]sql.Expression{}, pivot.GroupBy...), pivotAggs...)
		return plan.NewAggregate(grouping, aggregateExprs, pivot.Child), nil
	})
}

// guardAggregateForPivot rewrites agg so it only aggregates rows where
// pivotCol = value, by guarding its inner argument expressions. First/Last
// use IGNORE NULLS instead of the generic if-guard, since the nulled-out
// rows would otherwise be indistinguishable from a genuinely null value.
func guardAggregateForPivot(pivotCol, value sql.Expression, agg sql.Expression) (sql.Expression, error) {
	aggFn, ok := agg.(expression.AggregateFunction)
	if !ok {
		return nil, sql.ErrPivotNoOp.New(agg.String())
	}

	if fl, ok := aggFn.(*expression.FirstLast); ok {
		guardedArg := expression.NewIf(expression.NewEquals(pivotCol, value), fl.Arg, expression.NewLiteral(nil, fl.Arg.DataType()))
		newFn, err := fl.WithChildren(guardedArg)
		if err != nil {
			return nil, err
		}
		return expression.NewAggregateExpression(newFn.(expression.AggregateFunction), false), nil
	}

	children := aggFn.Children()
	if len(children) == 0 {
		return nil, sql.ErrPivotNoOp.New(aggFn.AggregateName())
	}
	guardedChildren := make([]sql.Expression, len(children))
	changed := false
	for i, c := range children {
		if !sql.SemanticEquals(c, pivotCol) {
			guarded := expression.NewIf(expression.NewEquals(pivotCol, value), c, expression.NewLiteral(nil, c.DataType()))
			guardedChildren[i] = guarded
			changed = true
		} else {
			guardedChildren[i] = c
		}
	}
	if !changed {
		return nil, sql.ErrPivotNoOp.New(fmt.Sprintf("%v", aggFn))
	}

	newFn, err := aggFn.WithChildren(guardedChildren...)
	if err != nil {
		return nil, err
	}
	newAggFn, ok := newFn.(expression.AggregateFunction)
	if !ok {
		return nil, sql.ErrPivotNoOp.New(fmt.Sprintf("%v", aggFn))
	}
	return expression.NewAggregateExpression(newAggFn, false), nil
}

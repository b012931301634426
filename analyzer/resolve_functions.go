package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
)

// ResolveFunctions binds every UnresolvedFunction and UnresolvedGenerator
// once its arguments are resolved (§4.G). A function found to be an
// aggregate is wrapped in an AggregateExpression, except directly inside a
// WindowExpression's Fn slot, where it is returned bare so it can run as a
// window function instead. Max/Min silently drop a redundant DISTINCT.
// Grounded on the teacher's sql/analyzer/resolve_functions.go and
// sql/analyzer/resolve_grouping.go's aggregate-wrapping step.
func ResolveFunctions(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		exprs := n.Expressions()
		if len(exprs) == 0 {
			return n, nil
		}
		changed := false
		newExprs := make([]sql.Expression, len(exprs))
		for i, e := range exprs {
			ne, err := bindFunctionsIn(ctx, n, e, false)
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
	})
}

// bindFunctionsIn walks e looking for UnresolvedFunction/UnresolvedGenerator
// nodes to bind. bare marks a WindowExpression's direct Fn slot, where a
// resolved aggregate is returned unwrapped instead of AggregateExpression-
// wrapped.
func bindFunctionsIn(ctx *sql.Context, n sql.Node, e sql.Expression, bare bool) (sql.Expression, error) {
	switch expr := e.(type) {
	case *expression.WindowExpression:
		fn, err := bindFunctionsIn(ctx, n, expr.Fn, true)
		if err != nil {
			return nil, err
		}
		partition := make([]sql.Expression, len(expr.Spec.PartitionSpec))
		for i, part := range expr.Spec.PartitionSpec {
			np, err := bindFunctionsIn(ctx, n, part, false)
			if err != nil {
				return nil, err
			}
			partition[i] = np
		}
		order := make([]expression.SortOrder, len(expr.Spec.OrderSpec))
		for i, o := range expr.Spec.OrderSpec {
			nc, err := bindFunctionsIn(ctx, n, o.Column, false)
			if err != nil {
				return nil, err
			}
			order[i] = expression.SortOrder{Column: nc, Ascending: o.Ascending, NullsFirst: o.NullsFirst}
		}
		return &expression.WindowExpression{
			Fn:   fn,
			Spec: expression.WindowSpec{PartitionSpec: partition, OrderSpec: order, Frame: expr.Spec.Frame},
		}, nil

	case *expression.UnresolvedFunction:
		switch normalizeGroupingName(expr.Id) {
		case "grouping", "grouping_id", "grouping__id":
			// Desugared by grouping_sets.go once its grouping
			// column arguments resolve; never a catalog function.
			args := make([]sql.Expression, len(expr.Args))
			for i, a := range expr.Args {
				na, err := bindFunctionsIn(ctx, n, a, false)
				if err != nil {
					return nil, err
				}
				args[i] = na
			}
			return expression.NewUnresolvedFunction(expr.Id, expr.Distinct, args...), nil
		}

		args := make([]sql.Expression, len(expr.Args))
		for i, a := range expr.Args {
			na, err := bindFunctionsIn(ctx, n, a, false)
			if err != nil {
				return nil, err
			}
			args[i] = na
		}
		if !sql.ExpressionsResolved(args) {
			return expression.NewUnresolvedFunction(expr.Id, expr.Distinct, args...), nil
		}
		return bindFunction(ctx, n, expr.Id, args, expr.Distinct, bare)

	case *expression.UnresolvedGenerator:
		args := make([]sql.Expression, len(expr.Args))
		for i, a := range expr.Args {
			na, err := bindFunctionsIn(ctx, n, a, false)
			if err != nil {
				return nil, err
			}
			args[i] = na
		}
		if !sql.ExpressionsResolved(args) {
			return expression.NewUnresolvedGenerator(expr.Id, args...), nil
		}
		fn, err := ctx.Catalog.LookupGenerator(expr.Id, args)
		if err != nil {
			return nil, sql.NewAnalysisException(sql.ErrNoSuchFunction.New(expr.Id), n)
		}
		if _, ok := fn.(expression.Generator); !ok {
			return nil, sql.NewAnalysisException(sql.ErrNoSuchFunction.New(expr.Id), n)
		}
		return fn, nil

	default:
		children := e.Children()
		if len(children) == 0 {
			return e, nil
		}
		newChildren := make([]sql.Expression, len(children))
		changed := false
		for i, c := range children {
			nc, err := bindFunctionsIn(ctx, n, c, false)
			if err != nil {
				return nil, err
			}
			newChildren[i] = nc
			if nc != c {
				changed = true
			}
		}
		if !changed {
			return e, nil
		}
		return e.WithChildren(newChildren...)
	}
}

// bindFunction looks up id in the catalog and, if the result is an
// aggregate, either wraps it in an AggregateExpression or returns it bare
// for a window function slot.
func bindFunction(ctx *sql.Context, n sql.Node, id string, args []sql.Expression, distinct, bare bool) (sql.Expression, error) {
	fn, err := ctx.Catalog.LookupFunction(id, args, distinct)
	if err != nil {
		return nil, sql.NewAnalysisException(sql.ErrNoSuchFunction.New(id), n)
	}

	aggFn, isAgg := fn.(expression.AggregateFunction)
	if !isAgg {
		return fn, nil
	}

	if distinct {
		switch aggFn.AggregateName() {
		case "min", "max":
			distinct = false
		}
	}

	if bare {
		return aggFn, nil
	}
	return expression.NewAggregateExpression(aggFn, distinct), nil
}

package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// PullOutNondeterministic extracts every non-deterministic leaf
// expression out of a unary operator that is neither a Project nor a
// Filter and whose output exactly matches its child's, into a preceding
// Project carrying the extracted value as a named alias; an outer Project
// strips that extra column back off so the operator's output shape is
// unchanged (§4.M). Grounded on the teacher's
// sql/analyzer/pull_out_nondeterministic.go.
func PullOutNondeterministic(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		if isExemptFromNondeterministicPullout(n) {
			return n, nil
		}
		children := n.Children()
		if len(children) != 1 {
			return n, nil
		}
		child := children[0]
		if !sameAttributeIds(n.Output(), child.Output()) {
			return n, nil
		}

		exprs := n.Expressions()
		if len(exprs) == 0 {
			return n, nil
		}

		var extracted []*expression.Alias
		newExprs := make([]sql.Expression, len(exprs))
		changed := false
		for i, e := range exprs {
			ne, err := sql.ExprTransformUp(e, func(x sql.Expression) (sql.Expression, error) {
				if len(x.Children()) != 0 || x.Deterministic() {
					return x, nil
				}
				al := expression.NewAlias(x, "_nondeterministic")
				extracted = append(extracted, al)
				return al.ToAttribute(), nil
			})
			if err != nil {
				return nil, err
			}
			newExprs[i] = ne
			if ne != e {
				changed = true
			}
		}
		if !changed || len(extracted) == 0 {
			return n, nil
		}

		origOutput := attrsToExprs(child.Output())
		extras := make([]sql.Expression, len(extracted))
		for i, al := range extracted {
			extras[i] = al
		}
		inner := plan.NewProject(append(append([]sql.Expression{}, origOutput...), extras...), child)

		rewritten, err := n.WithExpressions(newExprs...)
		if err != nil {
			return nil, err
		}
		rewritten, err = rewritten.WithChildren(inner)
		if err != nil {
			return nil, err
		}

		return plan.NewProject(origOutput, rewritten), nil
	})
}

func isExemptFromNondeterministicPullout(n sql.Node) bool {
	switch n.(type) {
	case *plan.Project, *plan.Filter:
		return true
	}
	return false
}

// HandleNullInputsForUDF wraps every UserFunction call site whose
// declared parameters include a primitive type in an If(OR(IsNull(...)),
// NULL, udf) guard, so a null primitive argument short-circuits instead
// of panicking inside the call (§4.L). Runs once, and UserFunction.Guarded
// prevents a call site already behind a guard from being wrapped a second
// time if this batch ever re-encounters it. Grounded on the teacher's
// sql/analyzer/resolve_functions.go null-handling pass, reusing the
// pre-built expression.UserFunction/ParamMeta shape.
func HandleNullInputsForUDF(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		exprs := n.Expressions()
		if len(exprs) == 0 {
			return n, nil
		}
		changed := false
		newExprs := make([]sql.Expression, len(exprs))
		for i, e := range exprs {
			ne, err := sql.ExprTransformUp(e, func(x sql.Expression) (sql.Expression, error) {
				uf, ok := x.(*expression.UserFunction)
				if !ok || uf.Guarded || !sql.ExpressionsResolved(uf.Args) {
					return x, nil
				}
				var guard sql.Expression
				for i, arg := range uf.Args {
					if i >= len(uf.Params) || !uf.Params[i].Primitive {
						continue
					}
					isNull := expression.NewIsNull(arg)
					if guard == nil {
						guard = isNull
					} else {
						guard = expression.NewOr(guard, isNull)
					}
				}
				if guard == nil {
					return uf.WithGuarded(), nil
				}
				guarded := uf.WithGuarded()
				return expression.NewIf(guard, expression.NewLiteral(nil, uf.RetType), guarded), nil
			})
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

// CleanupAliases removes Alias wrappers that are not top-level in a
// Project list, an Aggregate's aggregate list, or a Window's window-
// expression list, leaving a CreateStruct subtree's internal aliases
// untouched since those name the struct's fields (§4.M). Grounded on the
// teacher's sql/analyzer/cleanup_aliases.go.
func CleanupAliases(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		switch node := n.(type) {
		case *plan.Project:
			list, changed, err := cleanTopLevelList(node.ProjectList)
			if err != nil {
				return nil, err
			}
			if !changed {
				return n, nil
			}
			return plan.NewProject(list, node.Child), nil

		case *plan.Aggregate:
			grouping, gChanged, err := stripAliasesList(node.GroupingExpressions)
			if err != nil {
				return nil, err
			}
			aggs, aChanged, err := cleanTopLevelList(node.AggregateExpressions)
			if err != nil {
				return nil, err
			}
			if !gChanged && !aChanged {
				return n, nil
			}
			return plan.NewAggregate(grouping, aggs, node.Child), nil

		case *plan.Window:
			windowExprs, wChanged, err := cleanTopLevelList(node.WindowExpressions)
			if err != nil {
				return nil, err
			}
			partition, pChanged, err := stripAliasesList(node.PartitionSpec)
			if err != nil {
				return nil, err
			}
			if !wChanged && !pChanged {
				return n, nil
			}
			return plan.NewWindow(windowExprs, partition, node.OrderSpec, node.Child), nil

		default:
			exprs := n.Expressions()
			if len(exprs) == 0 {
				return n, nil
			}
			cleaned, changed, err := stripAliasesList(exprs)
			if err != nil {
				return nil, err
			}
			if !changed {
				return n, nil
			}
			return n.WithExpressions(cleaned...)
		}
	})
}

// cleanTopLevelList strips nested (non-top-level) aliases from each entry
// while leaving a top-level Alias wrapper itself in place.
func cleanTopLevelList(list []sql.Expression) ([]sql.Expression, bool, error) {
	out := make([]sql.Expression, len(list))
	changed := false
	for i, e := range list {
		if al, ok := e.(*expression.Alias); ok {
			newChild, err := stripAliasesFromExpr(al.Child)
			if err != nil {
				return nil, false, err
			}
			if newChild == al.Child {
				out[i] = e
				continue
			}
			rebuilt, err := al.WithChildren(newChild)
			if err != nil {
				return nil, false, err
			}
			out[i] = rebuilt
			changed = true
			continue
		}
		ne, err := stripAliasesFromExpr(e)
		if err != nil {
			return nil, false, err
		}
		out[i] = ne
		if ne != e {
			changed = true
		}
	}
	return out, changed, nil
}

// stripAliasesList strips every alias, top-level included, from each
// entry.
func stripAliasesList(list []sql.Expression) ([]sql.Expression, bool, error) {
	out := make([]sql.Expression, len(list))
	changed := false
	for i, e := range list {
		ne, err := stripAliasesFromExpr(e)
		if err != nil {
			return nil, false, err
		}
		out[i] = ne
		if ne != e {
			changed = true
		}
	}
	return out, changed, nil
}

// stripAliasesFromExpr removes every Alias found anywhere in e, halting
// its descent the moment it reaches a CreateStruct node so that node's
// internal field-naming aliases survive untouched.
func stripAliasesFromExpr(e sql.Expression) (sql.Expression, error) {
	if _, ok := e.(*expression.CreateStruct); ok {
		return e, nil
	}

	children := e.Children()
	var current sql.Expression = e
	if len(children) > 0 {
		newChildren := make([]sql.Expression, len(children))
		changed := false
		for i, c := range children {
			nc, err := stripAliasesFromExpr(c)
			if err != nil {
				return nil, err
			}
			newChildren[i] = nc
			if nc != c {
				changed = true
			}
		}
		if changed {
			rebuilt, err := e.WithChildren(newChildren...)
			if err != nil {
				return nil, err
			}
			current = rebuilt
		}
	}

	if al, ok := current.(*expression.Alias); ok {
		return al.Child, nil
	}
	return current, nil
}

// EliminateSubqueryAliases erases every SubqueryAlias node; the qualifier
// it carried has already been consumed during attribute resolution (§4.M).
// Grounded on the teacher's sql/analyzer/resolve_subquery_aliases.go
// (its elimination counterpart).
func EliminateSubqueryAliases(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		sa, ok := n.(*plan.SubqueryAlias)
		if !ok {
			return n, nil
		}
		return sa.Child, nil
	})
}

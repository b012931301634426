package analyzer

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveReferences binds every UnresolvedAttribute, UnresolvedAlias,
// Star, and UnresolvedExtractValue in a node's own expressions against
// that node's already-resolved children, and runs dedupRight on any
// Join/Intersect whose two sides collide on attribute-id (§4.E).
// Grounded on the teacher's sql/analyzer/resolve_columns.go
// (qualifyColumns/resolveColumns) and sql/analyzer/resolve_star.go.
func ResolveReferences(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		if !sql.ChildrenResolved(n) {
			return n, nil
		}

		n, err := dedupRight(n)
		if err != nil {
			return nil, err
		}

		switch node := n.(type) {
		case *plan.Project:
			list, err := resolveExpressionList(ctx, node, node.ProjectList, true)
			if err != nil {
				return nil, err
			}
			return node.WithExpressions(list...)
		case *plan.ScriptTransformation:
			list, err := resolveExpressionList(ctx, node, node.InputExprs, true)
			if err != nil {
				return nil, err
			}
			return node.WithExpressions(list...)
		case *plan.Aggregate:
			aggs, err := resolveExpressionList(ctx, node, node.AggregateExpressions, true)
			if err != nil {
				return nil, err
			}
			grouping, err := resolveExpressionList(ctx, node, node.GroupingExpressions, false)
			if err != nil {
				return nil, err
			}
			return node.WithAggregateExpressions(aggs).WithGroupingExpressions(grouping), nil
		default:
			return sql.TransformExpressionsUp(n, func(e sql.Expression) (sql.Expression, error) {
				return resolveExpr(ctx, n, e)
			})
		}
	})
}

// inputAttributes flattens the output attributes of n's children, in
// order, the candidate set every UnresolvedAttribute/Star resolves
// against.
func inputAttributes(n sql.Node) []sql.Attribute {
	var out []sql.Attribute
	for _, c := range n.Children() {
		out = append(out, c.Output()...)
	}
	return out
}

// resolveExpressionList resolves every entry of list against n's inputs.
// A Star entry expands into zero or more sibling entries instead of a
// single replacement, which is why this runs as a dedicated list pass
// rather than through the generic per-expression ExprTransformUp used for
// every other node kind. When nameUnnamed is set (Project,
// ScriptTransformation, the aggregate half of Aggregate), a resolved but
// still-unnamed entry is wrapped in an Alias using its own rendered
// string, matching how the teacher auto-names a bare projection entry.
func resolveExpressionList(ctx *sql.Context, n sql.Node, list []sql.Expression, nameUnnamed bool) ([]sql.Expression, error) {
	input := inputAttributes(n)
	out := make([]sql.Expression, 0, len(list))
	for _, e := range list {
		if star, ok := e.(*expression.Star); ok {
			expanded, err := expandStar(n, star, input)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}

		resolved, err := sql.ExprTransformUp(e, func(inner sql.Expression) (sql.Expression, error) {
			return resolveExpr(ctx, n, inner)
		})
		if err != nil {
			return nil, err
		}

		if nameUnnamed && resolved.Resolved() {
			if _, ok := resolved.(sql.NamedExpression); !ok {
				resolved = expression.NewAlias(resolved, resolved.String())
			}
		}
		out = append(out, resolved)
	}
	return out, nil
}

// expandStar replaces a Star (optionally qualifier-restricted) with the
// matching attributes of input, in order. An unqualified "*" with no
// inputs, or a qualified "t.*" matching no table in scope, is
// ErrStarMisuse (§7).
func expandStar(n sql.Node, star *expression.Star, input []sql.Attribute) ([]sql.Expression, error) {
	out := make([]sql.Expression, 0, len(input))
	for _, a := range input {
		if star.Qualifier != "" && !strings.EqualFold(a.Qualifier(), star.Qualifier) {
			continue
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil, sql.NewAnalysisException(sql.ErrStarMisuse.New(star.String()), n)
	}
	return out, nil
}

// resolveExpr resolves a single Unresolved* placeholder found in one of
// n's own expressions. A bare Star reaching here (outside the
// list-level handling in resolveExpressionList) is always illegal: it
// means a node kind that isn't allowed to carry one (Filter's WHERE,
// Sort's ORDER BY, a Join condition, ...) received one.
func resolveExpr(ctx *sql.Context, n sql.Node, e sql.Expression) (sql.Expression, error) {
	switch expr := e.(type) {
	case *expression.Star:
		return nil, sql.NewAnalysisException(sql.ErrStarMisuse.New(fmt.Sprintf("%T", n)), n)
	case *expression.UnresolvedAttribute:
		return resolveAttribute(ctx, n, expr)
	case *expression.UnresolvedAlias:
		if !expr.Child.Resolved() {
			return expr, nil
		}
		if named, ok := expr.Child.(sql.NamedExpression); ok {
			return named, nil
		}
		return expression.NewAlias(expr.Child, expr.Child.String()), nil
	case *expression.UnresolvedExtractValue:
		return resolveExtractValue(ctx, n, expr)
	default:
		return e, nil
	}
}

// resolveAttribute binds u against n's input attributes by name (and, if
// qualified, by qualifier too), both compared with ctx.Resolver so
// CaseSensitiveAnalysis is honored uniformly. Two matches that are the
// same logical column (same ExprId, reached twice through a duplicated
// projection) are not an ambiguity; two distinct columns are
// ErrAmbiguousColumn.
func resolveAttribute(ctx *sql.Context, n sql.Node, u *expression.UnresolvedAttribute) (sql.Expression, error) {
	return matchAttribute(ctx, n, inputAttributes(n), u)
}

// matchAttribute binds u against candidates by name (and, if qualified, by
// qualifier too), both compared with ctx.Resolver so
// CaseSensitiveAnalysis is honored uniformly. Two matches that are the
// same logical column (same ExprId, reached twice through a duplicated
// projection) are not an ambiguity; two distinct columns are
// ErrAmbiguousColumn. A no-match is not an error here: per spec.md §4.E
// ("leave unresolved so a later pass may succeed") and §7's propagation
// policy, ResolveReferences must swallow a speculative no-match and
// leave u in place for ResolveMissingReferences or a later iteration to
// bind; only the terminal CheckAnalysis pass turns a node that never
// converges into ErrUnknownColumn. Shared by resolveAttribute (matching
// against n's own inputs) and ResolveMissingReferences (matching against
// a descendant further down the tree).
func matchAttribute(ctx *sql.Context, n sql.Node, candidates []sql.Attribute, u *expression.UnresolvedAttribute) (sql.Expression, error) {
	qualifier := u.Qualifier()
	name := u.Name()

	var matches []sql.Attribute
	for _, a := range candidates {
		if !ctx.Resolver(a.Name(), name) {
			continue
		}
		if qualifier != "" && !ctx.Resolver(a.Qualifier(), qualifier) {
			continue
		}
		matches = append(matches, a)
	}

	if len(matches) == 0 {
		return u, nil
	}

	first := matches[0]
	for _, m := range matches[1:] {
		if m.ExprId() != first.ExprId() {
			quals := make([]string, len(matches))
			for i, mm := range matches {
				quals[i] = mm.Qualifier()
			}
			return nil, sql.NewAnalysisException(sql.ErrAmbiguousColumn.New(name, quals), n)
		}
	}
	return first, nil
}

// resolveExtractValue binds an UnresolvedExtractValue once Child's type is
// known, dispatching on struct/array/map per §4.E.
func resolveExtractValue(ctx *sql.Context, n sql.Node, u *expression.UnresolvedExtractValue) (sql.Expression, error) {
	if !u.Child.Resolved() {
		return u, nil
	}
	switch t := u.Child.DataType().(type) {
	case *sql.StructType:
		lit, ok := u.Field.(*expression.Literal)
		if !ok {
			return u, nil
		}
		name, ok := lit.Value.(string)
		if !ok {
			return u, nil
		}
		idx := t.FieldIndex(name)
		if idx < 0 {
			return nil, sql.NewAnalysisException(sql.ErrMissingDeserializerField.New(name), n)
		}
		return expression.NewGetStructField(u.Child, idx, t.Fields[idx]), nil
	case *sql.ArrayType:
		return expression.NewGetArrayItem(u.Child, u.Field, t.Elem), nil
	case *sql.MapType:
		return expression.NewGetMapValue(u.Child, u.Field, t.Value), nil
	default:
		return u, nil
	}
}

package analyzer

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
)

// ResolveDeserializer binds an UnresolvedDeserializer's BoundReference
// ordinals to InputAttributes and resolves any remaining named references
// against that same attribute list, unwrapping to the bound Child once
// nothing is left unresolved; a missing ordinal or name is a diagnostic,
// never a silent no-op, since InputAttributes is the complete and final
// schema the deserializer will ever see (§4.L). Grounded on the teacher's
// sql/analyzer/resolve_deserializer.go.
func ResolveDeserializer(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		exprs := n.Expressions()
		if len(exprs) == 0 {
			return n, nil
		}
		changed := false
		newExprs := make([]sql.Expression, len(exprs))
		for i, e := range exprs {
			ne, err := bindDeserializersIn(ctx, e, nil)
			if err != nil {
				return nil, sql.NewAnalysisException(err, n)
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

// bindDeserializersIn walks e, binding BoundReference/UnresolvedAttribute
// nodes against the nearest enclosing UnresolvedDeserializer's
// InputAttributes (inputs); inputs is reset to a nested
// UnresolvedDeserializer's own InputAttributes when one is encountered, so
// a nested deserializer's ordinals never bind against the outer one's
// schema.
func bindDeserializersIn(ctx *sql.Context, e sql.Expression, inputs []sql.Attribute) (sql.Expression, error) {
	switch x := e.(type) {
	case *expression.UnresolvedDeserializer:
		boundChild, err := bindDeserializersIn(ctx, x.Child, x.InputAttributes)
		if err != nil {
			return nil, err
		}
		if boundChild.Resolved() {
			return boundChild, nil
		}
		if boundChild == x.Child {
			return x, nil
		}
		return expression.NewUnresolvedDeserializer(boundChild, x.InputAttributes), nil

	case *expression.BoundReference:
		if inputs == nil || x.Ordinal < 0 || x.Ordinal >= len(inputs) {
			return nil, sql.ErrMissingDeserializerField.New(fmt.Sprintf("input[%d]", x.Ordinal))
		}
		return inputs[x.Ordinal], nil

	case *expression.UnresolvedAttribute:
		if inputs == nil {
			return e, nil
		}
		attr, found, err := matchAttributeByName(ctx, inputs, x)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, sql.ErrMissingDeserializerField.New(x.String())
		}
		return attr, nil

	default:
		children := e.Children()
		if len(children) == 0 {
			return e, nil
		}
		newChildren := make([]sql.Expression, len(children))
		changed := false
		for i, c := range children {
			nc, err := bindDeserializersIn(ctx, c, inputs)
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

// matchAttributeByName binds u against attrs by name/qualifier, surfacing
// an ambiguity diagnostic but leaving a genuine no-match to the caller.
func matchAttributeByName(ctx *sql.Context, attrs []sql.Attribute, u *expression.UnresolvedAttribute) (sql.Attribute, bool, error) {
	qualifier := u.Qualifier()
	name := u.Name()

	var matches []sql.Attribute
	for _, a := range attrs {
		if !ctx.Resolver(a.Name(), name) {
			continue
		}
		if qualifier != "" && !ctx.Resolver(a.Qualifier(), qualifier) {
			continue
		}
		matches = append(matches, a)
	}

	if len(matches) == 0 {
		return nil, false, nil
	}
	first := matches[0]
	for _, m := range matches[1:] {
		if m.ExprId() != first.ExprId() {
			quals := make([]string, len(matches))
			for i, mm := range matches {
				quals[i] = mm.Qualifier()
			}
			return nil, false, sql.ErrAmbiguousColumn.New(name, quals)
		}
	}
	return first, true, nil
}

// ResolveNewInstance binds an inner-class NewInstance's outer-scope
// capture from ctx.OuterScopes once its Args are resolved; a class with no
// registered outer instance is a diagnostic advising the class be lifted
// to the top level (§4.L). Grounded on the teacher's
// sql/analyzer/resolve_new_instance.go.
func ResolveNewInstance(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		exprs := n.Expressions()
		if len(exprs) == 0 {
			return n, nil
		}
		changed := false
		newExprs := make([]sql.Expression, len(exprs))
		for i, e := range exprs {
			ne, err := sql.ExprTransformUp(e, func(x sql.Expression) (sql.Expression, error) {
				ni, ok := x.(*expression.NewInstance)
				if !ok || ni.OuterClass == "" || ni.OuterRef != nil {
					return x, nil
				}
				if !sql.ExpressionsResolved(ni.Args) {
					return x, nil
				}
				ref, found := ctx.OuterScopes[ni.OuterClass]
				if !found {
					return nil, sql.NewAnalysisException(sql.ErrOuterScopeMissing.New(ni.OuterClass), n)
				}
				return ni.WithOuterRef(ref), nil
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

// ResolveUpCast legalizes an UpCast into a plain Cast once its child is
// resolved, rejecting the enumerated lossy widenings as a diagnostic
// instead (§4.L). Grounded on the teacher's sql/expression/convert.go
// lossy-cast checks (reused here via the pre-built UpCastIsLossy).
func ResolveUpCast(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		exprs := n.Expressions()
		if len(exprs) == 0 {
			return n, nil
		}
		changed := false
		newExprs := make([]sql.Expression, len(exprs))
		for i, e := range exprs {
			ne, err := sql.ExprTransformUp(e, func(x sql.Expression) (sql.Expression, error) {
				uc, ok := x.(*expression.UpCast)
				if !ok || !uc.Child.Resolved() {
					return x, nil
				}
				from := uc.Child.DataType()
				if expression.UpCastIsLossy(from, uc.To) {
					return nil, sql.NewAnalysisException(
						sql.ErrUpCastTruncation.New(uc.Child.String(), from.String(), uc.To.String()), n)
				}
				return expression.NewCast(uc.Child, uc.To), nil
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

package analyzer

import (
	"strings"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveGenerate relocates a single table-generating function out of a
// Project's list into a dedicated Generate operator wrapping the child
// (§4.G). A second generator in the same projection is a diagnostic; a
// single alias naming a multi-output generator is also a diagnostic
// (there would be no way to tell which output it names).
func ResolveGenerate(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		proj, ok := n.(*plan.Project)
		if !ok {
			return n, nil
		}

		type hit struct {
			index int
			gen   expression.Generator
			names []string
		}
		var hits []hit
		for i, e := range proj.ProjectList {
			g, names, ok := asGenerator(e)
			if !ok {
				continue
			}
			hits = append(hits, hit{i, g, names})
		}
		if len(hits) == 0 {
			return n, nil
		}
		if len(hits) > 1 {
			descs := make([]string, len(hits))
			for i, h := range hits {
				descs[i] = h.gen.String()
			}
			return nil, sql.NewAnalysisException(sql.ErrMultipleGenerators.New(len(hits), strings.Join(descs, ", ")), n)
		}

		h := hits[0]
		if !h.gen.Resolved() {
			return n, nil
		}

		schema := h.gen.ElementSchema()
		if len(h.names) == 1 && len(schema) > 1 {
			return nil, sql.NewAnalysisException(sql.ErrGeneratorAliasArity.New(), n)
		}

		outputs := make([]sql.Attribute, len(schema))
		for i, col := range schema {
			name := col.Name
			if i < len(h.names) {
				name = h.names[i]
			}
			outputs[i] = expression.NewAttributeReference(name, col.Type, col.Nullable, "")
		}

		join := len(proj.ProjectList) > 1
		generate := plan.NewGenerate(h.gen, join, false, "", outputs, proj.Child)

		newList := make([]sql.Expression, 0, len(proj.ProjectList)-1+len(outputs))
		for i, e := range proj.ProjectList {
			if i == h.index {
				for _, o := range outputs {
					newList = append(newList, o)
				}
				continue
			}
			newList = append(newList, e)
		}
		return plan.NewProject(newList, generate), nil
	})
}

// asGenerator reports whether e is a (possibly Alias/MultiAlias wrapped)
// Generator, returning the bare generator and whatever alias name(s) were
// supplied.
func asGenerator(e sql.Expression) (expression.Generator, []string, bool) {
	switch expr := e.(type) {
	case expression.Generator:
		return expr, nil, true
	case *expression.Alias:
		if g, ok := expr.Child.(expression.Generator); ok {
			return g, []string{expr.Name()}, true
		}
	case *expression.MultiAlias:
		if g, ok := expr.Child.(expression.Generator); ok {
			return g, expr.Names, true
		}
	}
	return nil, nil, false
}

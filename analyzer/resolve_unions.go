package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveUnions folds a single-branch Union into its lone branch (§4.D:
// "Union([child]) -> child"). Grounded on the teacher's
// sql/analyzer/resolve_unions.go, whose schema-merging logic this is the
// degenerate, zero-merge case of.
func ResolveUnions(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		u, ok := n.(*plan.Union)
		if !ok || len(u.Branches) != 1 {
			return n, nil
		}
		return u.Branches[0], nil
	})
}

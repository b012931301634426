package analyzer

import (
	"strings"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveCTEs inlines every WITH-clause definition into its references
// and erases the With node (§4.D). Grounded on the teacher's
// sql/analyzer/resolve_ctes.go: a name->plan map built once per With node,
// substituted into every UnresolvedRelation reference by name, database
// component ignored, CTE winning over a same-named catalog table.
func ResolveCTEs(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return TransformNodeDeep(p, func(n sql.Node) (sql.Node, error) {
		w, ok := n.(*plan.With)
		if !ok {
			return n, nil
		}
		ctes := map[string]sql.Node{}
		for _, c := range w.Ctes {
			resolved, err := substituteCteReferences(c.Query, ctes)
			if err != nil {
				return nil, err
			}
			ctes[strings.ToLower(c.Name)] = resolved
		}
		return substituteCteReferences(w.Child, ctes)
	})
}

// substituteCteReferences replaces every UnresolvedRelation whose table
// name (database component ignored) matches a key of ctes, wrapping the
// CTE plan in a SubqueryAlias when the reference site supplied one.
func substituteCteReferences(n sql.Node, ctes map[string]sql.Node) (sql.Node, error) {
	return TransformNodeDeep(n, func(node sql.Node) (sql.Node, error) {
		ur, ok := node.(*plan.UnresolvedRelation)
		if !ok {
			return node, nil
		}
		cte, found := ctes[strings.ToLower(ur.TableId.Table)]
		if !found {
			return node, nil
		}
		if ur.Alias != "" {
			return plan.NewSubqueryAlias(ur.Alias, cte), nil
		}
		return cte, nil
	})
}

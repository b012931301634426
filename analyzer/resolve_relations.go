package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveRelations binds every UnresolvedRelation against ctx.Catalog
// (§4.E). It uses TransformDown rather than TransformUp so that an
// InsertIntoTable node can intercept its own Destination before the
// generic case below ever sees it: an INSERT target is always looked
// up eagerly (RunSQLOnFile never applies to it) and any enclosing
// SubqueryAlias around it is stripped, since an insert target is never
// itself aliased. Grounded on the teacher's
// sql/analyzer/resolve_tables.go and resolve_insert_rows.go.
func ResolveRelations(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformDown(p, func(n sql.Node) (sql.Node, error) {
		switch node := n.(type) {
		case *plan.InsertIntoTable:
			dest := node.Destination()
			if sa, ok := dest.(*plan.SubqueryAlias); ok {
				dest = sa.Child
			}
			newDest, err := resolveRelation(ctx, dest, true)
			if err != nil {
				return nil, err
			}
			if newDest == node.Destination() {
				return node, nil
			}
			return node.WithChildren(newDest, node.Source())
		case *plan.UnresolvedRelation:
			return resolveRelation(ctx, node, false)
		default:
			return node, nil
		}
	})
}

// resolveRelation looks n up in the catalog if it is an
// UnresolvedRelation, otherwise returns n unchanged. forInsert disables
// the RunSQLOnFile leave-unresolved escape hatch, since insert targets
// must always name a real catalog table.
func resolveRelation(ctx *sql.Context, n sql.Node, forInsert bool) (sql.Node, error) {
	ur, ok := n.(*plan.UnresolvedRelation)
	if !ok {
		return n, nil
	}

	if !forInsert && ctx.Config.RunSQLOnFile && !ctx.Catalog.TableExists(ur.TableId) {
		// Leave unresolved: a later stage reads the table straight off disk
		// instead of through the catalog.
		return n, nil
	}

	resolved, err := ctx.Catalog.LookupRelation(ur.TableId, ur.Alias)
	if err != nil {
		if sql.ErrNoSuchTable.Is(err) {
			return nil, sql.NewAnalysisException(sql.ErrUnknownRelation.New(ur.TableId.String()), n)
		}
		return nil, err
	}
	return resolved, nil
}

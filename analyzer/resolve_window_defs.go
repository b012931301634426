package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveWindowDefinitions inlines every named WINDOW-clause definition
// into its `OVER w` reference sites and erases the WithWindowDefinition
// node (§4.D). Grounded on the teacher's
// sql/analyzer/replace_window_names.go name-to-definition substitution
// mechanics.
func ResolveWindowDefinitions(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return TransformNodeDeep(p, func(n sql.Node) (sql.Node, error) {
		w, ok := n.(*plan.WithWindowDefinition)
		if !ok {
			return n, nil
		}
		body, err := sql.TransformExpressionsUpWithTree(w.Child, func(e sql.Expression) (sql.Expression, error) {
			uw, ok := e.(*expression.UnresolvedWindowExpression)
			if !ok {
				return e, nil
			}
			spec, found := w.Definitions[uw.WindowRef]
			if !found {
				return nil, sql.NewAnalysisException(sql.ErrUndefinedWindowSpec.New(uw.WindowRef), n)
			}
			return expression.NewWindowExpression(uw.Child, *spec), nil
		})
		if err != nil {
			return nil, err
		}
		return body, nil
	})
}

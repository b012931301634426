package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// GlobalAggregates turns a Project whose list contains an un-windowed
// aggregate into an Aggregate with no grouping keys, the implicit
// "SELECT count(*) FROM t" whole-table aggregation (§4.G). Grounded on the
// teacher's sql/analyzer/resolve_group_by.go's global-aggregate case.
func GlobalAggregates(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		proj, ok := n.(*plan.Project)
		if !ok {
			return n, nil
		}

		hasAggregate := false
		for _, e := range proj.ProjectList {
			if expression.ContainsAggregate(e) {
				hasAggregate = true
				break
			}
		}
		if !hasAggregate {
			return n, nil
		}

		return plan.NewAggregate(nil, proj.ProjectList, proj.Child), nil
	})
}

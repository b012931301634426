package cli

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

func demoOrdersSchema() sql.Schema {
	return sql.Schema{
		{Name: "id", Type: sql.BigIntType},
		{Name: "customer_name", Type: sql.StringType},
		{Name: "amount", Type: sql.DoubleType},
	}
}

func demoCustomersSchema() sql.Schema {
	return sql.Schema{
		{Name: "name", Type: sql.StringType},
		{Name: "region", Type: sql.StringType},
	}
}

// demoUnresolvedPlan builds the unresolved logical plan for:
//
//	SELECT customer_name, SUM(amount) AS total
//	FROM orders
//	GROUP BY customer_name
//	ORDER BY total DESC
//
// unparsed, since this module never grows a SQL text parser (§Non-goals):
// the plan is hand-built the way an upstream query builder would emit it.
func demoUnresolvedPlan() sql.Node {
	relation := plan.NewUnresolvedRelation(sql.TableIdentifier{Table: "orders"}, "")

	nameCol := expression.NewUnresolvedAttribute("customer_name")
	sumExpr := expression.NewUnresolvedFunction("sum", false, expression.NewUnresolvedAttribute("amount"))
	total := expression.NewAlias(sumExpr, "total")

	aggregate := plan.NewAggregate(
		[]sql.Expression{nameCol},
		[]sql.Expression{nameCol, total},
		relation,
	)

	sortOrder := []expression.SortOrder{
		{Column: expression.NewUnresolvedAttribute("total"), Ascending: false, NullsFirst: false},
	}
	return plan.NewSort(sortOrder, true, aggregate)
}

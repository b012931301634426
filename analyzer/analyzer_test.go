package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efeller/logiplan/analyzer"
	"github.com/efeller/logiplan/catalog"
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// TestAnalyzeEndToEndGroupByOrderBy runs
//
//	SELECT customer_name, SUM(amount) AS total
//	FROM orders
//	GROUP BY customer_name
//	ORDER BY total DESC
//
// hand-built unresolved, through the full default batch sequence, and
// checks that every batch did its job: relation and column binding,
// aggregate-function resolution, order-by-alias resolution, and a clean
// pass through the terminal CheckAnalysis.
func TestAnalyzeEndToEndGroupByOrderBy(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	c.AddDatabase("shop")
	c.AddTable("shop", "orders", sql.Schema{
		{Name: "id", Type: sql.BigIntType},
		{Name: "customer_name", Type: sql.StringType},
		{Name: "amount", Type: sql.DoubleType},
	})
	ctx := sql.NewContext(nil, c, nil)

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
		{Column: expression.NewUnresolvedAttribute("total"), Ascending: false},
	}
	unresolved := plan.NewSort(sortOrder, true, aggregate)

	resolved, err := analyzer.NewDefault(c).Analyze(ctx, unresolved)
	require.NoError(err)
	require.True(resolved.Resolved())

	sort, ok := resolved.(*plan.Sort)
	require.True(ok)

	agg, ok := sort.Child.(*plan.Aggregate)
	require.True(ok, "the aggregate must survive under the sort")
	require.Len(agg.AggregateExpressions, 2)

	_, ok = agg.Child.(*plan.ResolvedTable)
	require.True(ok, "the unresolved relation must be bound to a ResolvedTable")

	// The sort key referencing the alias "total" must resolve to the
	// aggregate's own output attribute, not be left dangling.
	sortAttr, ok := sort.Order[0].Column.(*expression.AttributeReference)
	require.True(ok, "the sort key must resolve to a concrete attribute reference")
	require.Equal("total", sortAttr.Name())
}

func TestAnalyzeEndToEndUnknownTableFails(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	c.AddDatabase("shop")
	ctx := sql.NewContext(nil, c, nil)

	unresolved := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedAttribute("id")},
		plan.NewUnresolvedRelation(sql.TableIdentifier{Table: "missing"}, ""),
	)

	_, err := analyzer.NewDefault(c).Analyze(ctx, unresolved)
	require.Error(err)
}

func TestAnalyzeEndToEndFilterOnResolvedColumn(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	c.AddDatabase("shop")
	c.AddTable("shop", "orders", sql.Schema{
		{Name: "id", Type: sql.BigIntType},
		{Name: "amount", Type: sql.DoubleType},
	})
	ctx := sql.NewContext(nil, c, nil)

	relation := plan.NewUnresolvedRelation(sql.TableIdentifier{Table: "orders"}, "")
	cond := expression.NewGreaterThan(expression.NewUnresolvedAttribute("amount"), expression.NewLiteral(100.0, sql.DoubleType))
	filter := plan.NewFilter(cond, relation)
	unresolved := plan.NewProject([]sql.Expression{expression.NewUnresolvedAttribute("id")}, filter)

	resolved, err := analyzer.NewDefault(c).Analyze(ctx, unresolved)
	require.NoError(err)
	require.True(resolved.Resolved())

	proj := resolved.(*plan.Project)
	_, ok := proj.Child.(*plan.Filter)
	require.True(ok)
}

package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efeller/logiplan/analyzer"
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

func attr(name string, typ sql.Type, qualifier string) *expression.AttributeReference {
	return expression.NewAttributeReference(name, typ, false, qualifier)
}

func TestCheckAnalysisResolvedPlanPasses(t *testing.T) {
	require := require.New(t)

	a := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(a)
	proj := plan.NewProject([]sql.Expression{a}, rel)

	require.NoError(analyzer.CheckAnalysis(nil, proj))
}

func TestCheckAnalysisUnresolvedAttributeFails(t *testing.T) {
	require := require.New(t)

	a := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(a)
	proj := plan.NewProject([]sql.Expression{expression.NewUnresolvedAttribute("missing")}, rel)

	err := analyzer.CheckAnalysis(nil, proj)
	require.Error(err)
	require.True(sql.ErrUnknownColumn.Is(err))
}

func TestCheckAnalysisUnresolvedRelationFails(t *testing.T) {
	require := require.New(t)

	ur := plan.NewUnresolvedRelation(sql.TableIdentifier{Table: "orders"}, "")
	err := analyzer.CheckAnalysis(nil, ur)
	require.Error(err)
	require.True(sql.ErrUnknownRelation.Is(err))
}

func TestCheckAnalysisInputCoverageFails(t *testing.T) {
	require := require.New(t)

	a := attr("id", sql.BigIntType, "t")
	other := attr("name", sql.StringType, "other")
	rel := plan.NewLocalRelation(a)
	// other is resolved but not produced by rel, so input coverage fails
	// even though every expression individually reports Resolved() true.
	proj := plan.NewProject([]sql.Expression{other}, rel)

	err := analyzer.CheckAnalysis(nil, proj)
	require.Error(err)
	require.True(sql.ErrUnknownColumn.Is(err))
}

func TestCheckAnalysisAggregateOutsideAggregateFails(t *testing.T) {
	require := require.New(t)

	amount := attr("amount", sql.DoubleType, "orders")
	rel := plan.NewLocalRelation(amount)
	proj := plan.NewProject([]sql.Expression{expression.NewAggregateExpression(expression.NewSum(amount), false)}, rel)

	err := analyzer.CheckAnalysis(nil, proj)
	require.Error(err)
}

func TestCheckAnalysisAggregateInsideAggregatePasses(t *testing.T) {
	require := require.New(t)

	amount := attr("amount", sql.DoubleType, "orders")
	rel := plan.NewLocalRelation(amount)
	agg := plan.NewAggregate(nil, []sql.Expression{expression.NewAggregateExpression(expression.NewSum(amount), false)}, rel)

	require.NoError(analyzer.CheckAnalysis(nil, agg))
}

func TestCheckAnalysisGeneratorOutsideGenerateFails(t *testing.T) {
	require := require.New(t)

	arr := expression.NewLiteral(nil, &sql.ArrayType{Elem: sql.StringType})
	rel := plan.NewLocalRelation()
	proj := plan.NewProject([]sql.Expression{expression.NewExplode(arr)}, rel)

	err := analyzer.CheckAnalysis(nil, proj)
	require.Error(err)
}

func TestCheckAnalysisWindowExpressionOutsideWindowFails(t *testing.T) {
	require := require.New(t)

	amount := attr("amount", sql.DoubleType, "orders")
	rel := plan.NewLocalRelation(amount)
	we := expression.NewWindowExpression(expression.NewSum(amount), expression.WindowSpec{
		Frame: &expression.WindowFrame{Type: expression.RowsFrame, Lower: expression.UnboundedPreceding, Upper: expression.CurrentRow},
	})
	proj := plan.NewProject([]sql.Expression{we}, rel)

	err := analyzer.CheckAnalysis(nil, proj)
	require.Error(err)
}

func TestCheckAnalysisWithNodeSurvivingFails(t *testing.T) {
	require := require.New(t)

	rel := plan.NewOneRowRelation()
	with := plan.NewWith([]plan.CTE{}, rel)

	err := analyzer.CheckAnalysis(nil, with)
	require.Error(err)
}

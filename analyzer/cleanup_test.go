package analyzer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efeller/logiplan/analyzer"
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

func newTestContext() *sql.Context {
	return sql.NewContext(context.Background(), nil, nil)
}

func TestCleanupAliasesKeepsTopLevelInProjectList(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	top := expression.NewAlias(id, "renamed")
	proj := plan.NewProject([]sql.Expression{top}, rel)

	out, err := analyzer.CleanupAliases(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	require.Len(p.ProjectList, 1)
	_, ok := p.ProjectList[0].(*expression.Alias)
	require.True(ok, "top-level alias in a Project list must survive")
}

func TestCleanupAliasesStripsNestedInProjectList(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	nested := expression.NewAlias(id, "inner")
	top := expression.NewAlias(expression.NewPlus(nested, expression.NewLiteral(int64(1), sql.BigIntType)), "outer")
	proj := plan.NewProject([]sql.Expression{top}, rel)

	out, err := analyzer.CleanupAliases(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	al := p.ProjectList[0].(*expression.Alias)
	plus := al.Child.(*expression.Plus)
	_, stillAlias := plus.Children()[0].(*expression.Alias)
	require.False(stillAlias, "the nested alias must be stripped")
}

func TestCleanupAliasesStripsAllInGroupingExpressions(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	grouping := expression.NewAlias(id, "g")
	agg := plan.NewAggregate([]sql.Expression{grouping}, []sql.Expression{id}, rel)

	out, err := analyzer.CleanupAliases(ctx, agg)
	require.NoError(err)

	a := out.(*plan.Aggregate)
	_, stillAlias := a.GroupingExpressions[0].(*expression.Alias)
	require.False(stillAlias, "a GroupingExpressions alias, even top-level, must be stripped")
}

func TestCleanupAliasesPreservesCreateStructInternals(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	inner := expression.NewAlias(id, "field")
	cs := expression.NewCreateStruct([]string{"field"}, []sql.Expression{inner})
	top := expression.NewAlias(cs, "s")
	proj := plan.NewProject([]sql.Expression{top}, rel)

	out, err := analyzer.CleanupAliases(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	al := p.ProjectList[0].(*expression.Alias)
	gotCS := al.Child.(*expression.CreateStruct)
	require.Same(cs, gotCS, "CreateStruct subtree must be left completely untouched")
}

func TestEliminateSubqueryAliases(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	sa := plan.NewSubqueryAlias("sub", rel)
	proj := plan.NewProject([]sql.Expression{id}, sa)

	out, err := analyzer.EliminateSubqueryAliases(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	require.Equal(rel, p.Child)
}

func TestPullOutNondeterministicLeavesDeterministicSortKey(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	// Sort is neither Project nor Filter and preserves its child's output;
	// its only key here is a NULL literal, which is deterministic.
	nd := expression.NewLiteral(nil, sql.DoubleType)
	sort := plan.NewSort([]expression.SortOrder{{Column: nd, Ascending: true}}, true, rel)

	out, err := analyzer.PullOutNondeterministic(ctx, sort)
	require.NoError(err)
	// Deterministic literal: nothing to pull, node unchanged.
	require.Equal(sort, out)
}

func TestHandleNullInputsForUDFGuardsPrimitiveArg(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	uf := expression.NewUserFunction("double", sql.BigIntType, []expression.ParamMeta{{Primitive: true}}, id)
	proj := plan.NewProject([]sql.Expression{uf}, rel)

	out, err := analyzer.HandleNullInputsForUDF(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	_, ok := p.ProjectList[0].(*expression.If)
	require.True(ok, "a primitive-arg UDF call must be wrapped in a null guard")
}

func TestHandleNullInputsForUDFIdempotent(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	uf := expression.NewUserFunction("double", sql.BigIntType, []expression.ParamMeta{{Primitive: true}}, id)
	proj := plan.NewProject([]sql.Expression{uf}, rel)

	once, err := analyzer.HandleNullInputsForUDF(ctx, proj)
	require.NoError(err)
	twice, err := analyzer.HandleNullInputsForUDF(ctx, once)
	require.NoError(err)
	require.Equal(once, twice)
}

package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efeller/logiplan/analyzer"
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

func TestResolveDeserializerBindsBoundReferenceOrdinals(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	inputs := []sql.Attribute{
		attr("id", sql.BigIntType, "row"),
		attr("name", sql.StringType, "row"),
	}
	deser := expression.NewUnresolvedDeserializer(expression.NewBoundReference(1, sql.StringType), inputs)
	proj := plan.NewProject([]sql.Expression{deser}, plan.NewLocalRelation(inputs...))

	out, err := analyzer.ResolveDeserializer(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	got, ok := p.ProjectList[0].(*expression.AttributeReference)
	require.True(ok, "a fully bound deserializer must unwrap to its bound child")
	require.Equal("name", got.Name())
}

func TestResolveDeserializerMissingOrdinalErrors(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	inputs := []sql.Attribute{attr("id", sql.BigIntType, "row")}
	deser := expression.NewUnresolvedDeserializer(expression.NewBoundReference(5, sql.StringType), inputs)
	proj := plan.NewProject([]sql.Expression{deser}, plan.NewLocalRelation(inputs...))

	_, err := analyzer.ResolveDeserializer(ctx, proj)
	require.Error(err)
}

func TestResolveDeserializerNestedScopingIsNotConfused(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	outerInputs := []sql.Attribute{attr("outer0", sql.BigIntType, "row")}
	innerInputs := []sql.Attribute{
		attr("inner0", sql.StringType, "row"),
		attr("inner1", sql.StringType, "row"),
	}
	// The nested deserializer's own BoundReference(1,...) must resolve
	// against innerInputs, not outerInputs (which only has one entry).
	nested := expression.NewUnresolvedDeserializer(expression.NewBoundReference(1, sql.StringType), innerInputs)
	outer := expression.NewUnresolvedDeserializer(nested, outerInputs)
	proj := plan.NewProject([]sql.Expression{outer}, plan.NewLocalRelation(outerInputs...))

	out, err := analyzer.ResolveDeserializer(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	got, ok := p.ProjectList[0].(*expression.AttributeReference)
	require.True(ok)
	require.Equal("inner1", got.Name())
}

func TestResolveNewInstanceBindsOuterRef(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()
	ctx.OuterScopes["Outer"] = "outer-instance"

	ni := expression.NewNewInstance("Inner", "Outer")
	proj := plan.NewProject([]sql.Expression{ni}, plan.NewOneRowRelation())

	out, err := analyzer.ResolveNewInstance(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	got := p.ProjectList[0].(*expression.NewInstance)
	require.Equal("outer-instance", got.OuterRef)
}

func TestResolveNewInstanceMissingOuterScopeErrors(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	ni := expression.NewNewInstance("Inner", "Outer")
	proj := plan.NewProject([]sql.Expression{ni}, plan.NewOneRowRelation())

	_, err := analyzer.ResolveNewInstance(ctx, proj)
	require.Error(err)
}

func TestResolveUpCastLegalizesToCast(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	col := attr("x", sql.IntType, "t")
	uc := expression.NewUpCast(col, sql.BigIntType)
	proj := plan.NewProject([]sql.Expression{uc}, plan.NewLocalRelation(col))

	out, err := analyzer.ResolveUpCast(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	_, ok := p.ProjectList[0].(*expression.Cast)
	require.True(ok, "a legal widening UpCast must become a plain Cast")
}

func TestResolveUpCastRejectsLossyWidening(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	col := attr("x", sql.DoubleType, "t")
	uc := expression.NewUpCast(col, sql.IntType)
	proj := plan.NewProject([]sql.Expression{uc}, plan.NewLocalRelation(col))

	_, err := analyzer.ResolveUpCast(ctx, proj)
	require.Error(err)
}

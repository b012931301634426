package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efeller/logiplan/analyzer"
	"github.com/efeller/logiplan/catalog"
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/plan"
)

func newTestCatalog() *catalog.InMemory {
	c := catalog.New()
	c.AddDatabase("shop")
	c.AddTable("shop", "orders", sql.Schema{
		{Name: "id", Type: sql.BigIntType},
		{Name: "amount", Type: sql.DoubleType},
	})
	return c
}

func TestResolveRelationsBindsAgainstCatalog(t *testing.T) {
	require := require.New(t)
	c := newTestCatalog()
	ctx := sql.NewContext(nil, c, nil)

	ur := plan.NewUnresolvedRelation(sql.TableIdentifier{Table: "orders"}, "")
	out, err := analyzer.ResolveRelations(ctx, ur)
	require.NoError(err)

	rt, ok := out.(*plan.ResolvedTable)
	require.True(ok)
	require.Equal("orders", rt.TableId.Table)
	require.Len(rt.Cols, 2)
}

func TestResolveRelationsUnknownTableFails(t *testing.T) {
	require := require.New(t)
	c := newTestCatalog()
	ctx := sql.NewContext(nil, c, nil)

	ur := plan.NewUnresolvedRelation(sql.TableIdentifier{Table: "missing"}, "")
	_, err := analyzer.ResolveRelations(ctx, ur)
	require.Error(err)
	require.True(sql.ErrUnknownRelation.Is(err))
}

func TestResolveRelationsAliasQualifiesColumns(t *testing.T) {
	require := require.New(t)
	c := newTestCatalog()
	ctx := sql.NewContext(nil, c, nil)

	ur := plan.NewUnresolvedRelation(sql.TableIdentifier{Table: "orders"}, "o")
	out, err := analyzer.ResolveRelations(ctx, ur)
	require.NoError(err)

	rt := out.(*plan.ResolvedTable)
	require.Equal("o", rt.Cols[0].Qualifier())
}

func TestResolveRelationsLeavesResolvedNodeUnchanged(t *testing.T) {
	require := require.New(t)
	c := newTestCatalog()
	ctx := sql.NewContext(nil, c, nil)

	rel := plan.NewOneRowRelation()
	out, err := analyzer.ResolveRelations(ctx, rel)
	require.NoError(err)
	require.Equal(rel, out)
}

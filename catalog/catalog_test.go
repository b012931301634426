package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efeller/logiplan/catalog"
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

func TestLookupRelation(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	c.AddDatabase("shop")
	c.AddTable("shop", "orders", sql.Schema{
		{Name: "id", Type: sql.BigIntType},
		{Name: "amount", Type: sql.DoubleType},
	})

	n, err := c.LookupRelation(sql.TableIdentifier{Table: "orders"}, "")
	require.NoError(err)
	table, ok := n.(*plan.ResolvedTable)
	require.True(ok)
	require.Len(table.Output(), 2)
	require.Equal("id", table.Output()[0].Name())
	require.Equal("orders", table.Output()[0].Qualifier())

	_, err = c.LookupRelation(sql.TableIdentifier{Table: "missing"}, "")
	require.True(sql.ErrNoSuchTable.Is(err))
}

func TestLookupRelationAliasQualifiesOutput(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	c.AddDatabase("shop")
	c.AddTable("shop", "orders", sql.Schema{{Name: "id", Type: sql.BigIntType}})

	n, err := c.LookupRelation(sql.TableIdentifier{Table: "orders"}, "o")
	require.NoError(err)
	require.Equal("o", n.Output()[0].Qualifier())
}

func TestLookupRelationDefaultDatabase(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	c.AddDatabase("shop")
	c.AddTable("shop", "orders", sql.Schema{{Name: "id", Type: sql.BigIntType}})

	// A bare table identifier with no database qualifier resolves against
	// the first database registered.
	_, err := c.LookupRelation(sql.TableIdentifier{Table: "orders"}, "")
	require.NoError(err)

	require.True(c.DatabaseExists(""))
	require.True(c.DatabaseExists("shop"))
	require.False(c.DatabaseExists("nope"))

	require.True(c.TableExists(sql.TableIdentifier{Table: "orders"}))
	require.False(c.TableExists(sql.TableIdentifier{Table: "missing"}))
}

func TestLookupFunctionAggregate(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	arg := expression.NewAttributeReference("amount", sql.DoubleType, false, "orders")

	fn, err := c.LookupFunction("SUM", []sql.Expression{arg}, false)
	require.NoError(err)
	agg, ok := fn.(expression.AggregateFunction)
	require.True(ok)
	require.Equal("sum", agg.AggregateName())

	_, err = c.LookupFunction("nope", []sql.Expression{arg}, false)
	require.True(sql.ErrNoSuchFunction.Is(err))
}

func TestLookupFunctionScalarArity(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	str := expression.NewLiteral("hi", sql.StringType)

	fn, err := c.LookupFunction("upper", []sql.Expression{str}, false)
	require.NoError(err)
	require.Equal(sql.StringType, fn.DataType())

	_, err = c.LookupFunction("upper", nil, false)
	require.Error(err)
}

func TestLookupGenerator(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	arr := expression.NewLiteral(nil, &sql.ArrayType{Elem: sql.StringType})

	fn, err := c.LookupGenerator("explode", []sql.Expression{arr})
	require.NoError(err)
	_, ok := fn.(*expression.Explode)
	require.True(ok)

	_, err = c.LookupGenerator("nope", []sql.Expression{arr})
	require.True(sql.ErrNoSuchFunction.Is(err))
}

func TestRegisterFunctionOverride(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	called := false
	c.RegisterFunction("sum", func(args []sql.Expression, distinct bool) (sql.Expression, error) {
		called = true
		return expression.NewCount(args[0]), nil
	})

	arg := expression.NewAttributeReference("amount", sql.DoubleType, false, "orders")
	_, err := c.LookupFunction("SUM", []sql.Expression{arg}, false)
	require.NoError(err)
	require.True(called)
}

func TestTableNamesSorted(t *testing.T) {
	require := require.New(t)

	c := catalog.New()
	c.AddDatabase("shop")
	c.AddTable("shop", "zebra", sql.Schema{{Name: "a", Type: sql.IntType}})
	c.AddTable("shop", "apple", sql.Schema{{Name: "a", Type: sql.IntType}})

	require.Equal([]string{"apple", "zebra"}, c.TableNames("shop"))
	require.Nil(c.TableNames("missing"))
}

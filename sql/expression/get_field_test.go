package expression_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
)

func TestCreateStructDataTypeNamesFields(t *testing.T) {
	require := require.New(t)

	start := expression.NewLiteral(int64(0), sql.TimestampType)
	end := expression.NewLiteral(int64(10), sql.TimestampType)
	cs := expression.NewCreateStruct([]string{"start", "end"}, []sql.Expression{start, end})

	st, ok := cs.DataType().(*sql.StructType)
	require.True(ok)
	require.Len(st.Fields, 2)
	require.Equal("start", st.Fields[0].Name)
	require.Equal("end", st.Fields[1].Name)
}

func TestCreateStructResolvedRequiresAllValues(t *testing.T) {
	require := require.New(t)

	resolved := expression.NewLiteral(int64(1), sql.BigIntType)
	unresolved := expression.NewUnresolvedAttribute("missing")
	cs := expression.NewCreateStruct([]string{"a", "b"}, []sql.Expression{resolved, unresolved})

	require.False(cs.Resolved())
}

func TestCreateStructWithChildrenArityMismatch(t *testing.T) {
	require := require.New(t)

	cs := expression.NewCreateStruct([]string{"a"}, []sql.Expression{expression.NewLiteral(int64(1), sql.BigIntType)})
	_, err := cs.WithChildren(expression.NewLiteral(int64(1), sql.BigIntType), expression.NewLiteral(int64(2), sql.BigIntType))
	require.Error(err)
}

func TestCreateStructString(t *testing.T) {
	require := require.New(t)

	cs := expression.NewCreateStruct([]string{"a"}, []sql.Expression{expression.NewLiteral(int64(1), sql.BigIntType)})
	require.Contains(cs.String(), "struct(")
	require.Contains(cs.String(), "a:")
}

package catalog

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
)

// registerBuiltinFunctions seeds c with the small set of aggregate and
// scalar functions spec.md's examples exercise (SUM/COUNT/MIN/MAX/FIRST/
// LAST as AggregateFunctions, plus a handful of generic scalar calls bound
// through expression.FunctionCall). Grounded on the teacher's
// sql/expression/function/registry.go pattern of a name-keyed builder map,
// simplified to this module's much smaller fixed function surface.
func registerBuiltinFunctions(c *InMemory) {
	c.functions["sum"] = aggBuilder("sum", func(arg sql.Expression) expression.AggregateFunction { return expression.NewSum(arg) })
	c.functions["count"] = aggBuilder("count", func(arg sql.Expression) expression.AggregateFunction { return expression.NewCount(arg) })
	c.functions["min"] = aggBuilder("min", func(arg sql.Expression) expression.AggregateFunction { return expression.NewMin(arg) })
	c.functions["max"] = aggBuilder("max", func(arg sql.Expression) expression.AggregateFunction { return expression.NewMax(arg) })
	c.functions["first"] = func(args []sql.Expression, distinct bool) (sql.Expression, error) {
		if err := checkArity("first", args, 1); err != nil {
			return nil, err
		}
		return expression.NewFirst(args[0], false), nil
	}
	c.functions["last"] = func(args []sql.Expression, distinct bool) (sql.Expression, error) {
		if err := checkArity("last", args, 1); err != nil {
			return nil, err
		}
		return expression.NewLast(args[0], false), nil
	}

	c.functions["abs"] = scalarBuilder("abs", func(args []sql.Expression) sql.Type { return args[0].DataType() }, 1)
	c.functions["upper"] = scalarBuilder("upper", constType(sql.StringType), 1)
	c.functions["lower"] = scalarBuilder("lower", constType(sql.StringType), 1)
	c.functions["length"] = scalarBuilder("length", constType(sql.BigIntType), 1)
	c.functions["concat"] = variadicScalarBuilder("concat", constType(sql.StringType))
	c.functions["coalesce"] = variadicScalarBuilder("coalesce", func(args []sql.Expression) sql.Type {
		if len(args) == 0 {
			return sql.NullType
		}
		return args[0].DataType()
	})
}

// registerBuiltinGenerators seeds c with explode(...), the only
// table-generating function this module's expression package implements.
func registerBuiltinGenerators(c *InMemory) {
	c.generators["explode"] = func(args []sql.Expression) (sql.Expression, error) {
		if err := checkArity("explode", args, 1); err != nil {
			return nil, err
		}
		return expression.NewExplode(args[0]), nil
	}
}

func checkArity(name string, args []sql.Expression, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, want, len(args))
	}
	return nil
}

func aggBuilder(name string, ctor func(arg sql.Expression) expression.AggregateFunction) FunctionBuilder {
	return func(args []sql.Expression, distinct bool) (sql.Expression, error) {
		if err := checkArity(name, args, 1); err != nil {
			return nil, err
		}
		return ctor(args[0]), nil
	}
}

func constType(t sql.Type) func([]sql.Expression) sql.Type {
	return func([]sql.Expression) sql.Type { return t }
}

func scalarBuilder(name string, typ func([]sql.Expression) sql.Type, arity int) FunctionBuilder {
	return func(args []sql.Expression, distinct bool) (sql.Expression, error) {
		if err := checkArity(name, args, arity); err != nil {
			return nil, err
		}
		return expression.NewFunctionCall(name, typ(args), true, distinct, args...), nil
	}
}

func variadicScalarBuilder(name string, typ func([]sql.Expression) sql.Type) FunctionBuilder {
	return func(args []sql.Expression, distinct bool) (sql.Expression, error) {
		return expression.NewFunctionCall(name, typ(args), true, distinct, args...), nil
	}
}

package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// aggFn is the shared shape of the built-in single-argument aggregate
// functions below.
type aggFn struct {
	name string
	Arg  sql.Expression
	typ  sql.Type
}

func (a *aggFn) AggregateName() string        { return a.name }
func (a *aggFn) Resolved() bool               { return a.Arg.Resolved() }
func (a *aggFn) DataType() sql.Type           { return a.typ }
func (a *aggFn) Nullable() bool               { return true }
func (a *aggFn) Children() []sql.Expression   { return []sql.Expression{a.Arg} }
func (a *aggFn) Foldable() bool               { return false }
func (a *aggFn) Deterministic() bool          { return true }
func (a *aggFn) References() sql.AttributeSet { return a.Arg.References() }
func (a *aggFn) String() string               { return fmt.Sprintf("%s(%s)", a.name, a.Arg) }

// Sum is the SUM aggregate function.
type Sum struct{ aggFn }

func NewSum(arg sql.Expression) *Sum { return &Sum{aggFn{"sum", arg, sql.DoubleType}} }
func (s *Sum) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return &Sum{aggFn{"sum", children[0], s.typ}}, nil
}

// Count is the COUNT aggregate function.
type Count struct{ aggFn }

func NewCount(arg sql.Expression) *Count { return &Count{aggFn{"count", arg, sql.BigIntType}} }
func (c *Count) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return &Count{aggFn{"count", children[0], c.typ}}, nil
}

// Min is the MIN aggregate function.
type Min struct{ aggFn }

func NewMin(arg sql.Expression) *Min { return &Min{aggFn{"min", arg, arg.DataType()}} }
func (m *Min) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return &Min{aggFn{"min", children[0], m.typ}}, nil
}

// Max is the MAX aggregate function.
type Max struct{ aggFn }

func NewMax(arg sql.Expression) *Max { return &Max{aggFn{"max", arg, arg.DataType()}} }
func (m *Max) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return &Max{aggFn{"max", children[0], m.typ}}, nil
}

// FirstLast is the FIRST/LAST aggregate function, the two whose Pivot
// desugaring (§4.G) uses IGNORE NULLS semantics instead of the generic
// if(pivotCol = pivotValue, e, null) guard.
type FirstLast struct {
	aggFn
	Last        bool
	IgnoreNulls bool
}

func NewFirst(arg sql.Expression, ignoreNulls bool) *FirstLast {
	return &FirstLast{aggFn{"first", arg, arg.DataType()}, false, ignoreNulls}
}

func NewLast(arg sql.Expression, ignoreNulls bool) *FirstLast {
	return &FirstLast{aggFn{"last", arg, arg.DataType()}, true, ignoreNulls}
}

func (f *FirstLast) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 1)
	}
	name := "first"
	if f.Last {
		name = "last"
	}
	return &FirstLast{aggFn{name, children[0], f.typ}, f.Last, f.IgnoreNulls}, nil
}

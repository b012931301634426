package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// arith is the shared shape of the binary numeric operators below.
type arith struct {
	Op          string
	Left, Right sql.Expression
}

func (a *arith) Resolved() bool             { return a.Left.Resolved() && a.Right.Resolved() }
func (a *arith) DataType() sql.Type         { return a.Left.DataType() }
func (a *arith) Nullable() bool             { return a.Left.Nullable() || a.Right.Nullable() }
func (a *arith) Children() []sql.Expression { return []sql.Expression{a.Left, a.Right} }
func (a *arith) Foldable() bool             { return a.Left.Foldable() && a.Right.Foldable() }
func (a *arith) Deterministic() bool {
	return a.Left.Deterministic() && a.Right.Deterministic()
}
func (a *arith) References() sql.AttributeSet {
	return a.Left.References().Union(a.Right.References())
}
func (a *arith) String() string { return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right) }

// Plus is binary `+`.
type Plus struct{ arith }

func NewPlus(l, r sql.Expression) *Plus { return &Plus{arith{"+", l, r}} }
func (p *Plus) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 2)
	}
	return NewPlus(children[0], children[1]), nil
}

// Minus is binary `-`.
type Minus struct{ arith }

func NewMinus(l, r sql.Expression) *Minus { return &Minus{arith{"-", l, r}} }
func (m *Minus) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 2)
	}
	return NewMinus(children[0], children[1]), nil
}

// Mult is binary `*`.
type Mult struct{ arith }

func NewMult(l, r sql.Expression) *Mult { return &Mult{arith{"*", l, r}} }
func (m *Mult) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 2)
	}
	return NewMult(children[0], children[1]), nil
}

// Div is binary `/`.
type Div struct{ arith }

func NewDiv(l, r sql.Expression) *Div { return &Div{arith{"/", l, r}} }
func (d *Div) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(d, len(children), 2)
	}
	return NewDiv(children[0], children[1]), nil
}

// CeilDiv is `ceil(numerator / denominator)`, used verbatim by the time
// windowing formula's maxNumOverlapping and windowStart_i computations
// (§4.J), which both operate on integer duration ratios.
type CeilDiv struct{ arith }

func NewCeilDiv(l, r sql.Expression) *CeilDiv { return &CeilDiv{arith{"ceilDiv", l, r}} }
func (c *CeilDiv) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	return NewCeilDiv(children[0], children[1]), nil
}
func (c *CeilDiv) String() string { return fmt.Sprintf("ceil(%s / %s)", c.Left, c.Right) }

// ShiftRight is `>>`, used by grouping(col)'s desugaring.
type ShiftRight struct{ arith }

func NewShiftRight(l, r sql.Expression) *ShiftRight { return &ShiftRight{arith{">>", l, r}} }
func (s *ShiftRight) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 2)
	}
	return NewShiftRight(children[0], children[1]), nil
}

// BitwiseAnd is `&`, used by grouping(col)'s desugaring.
type BitwiseAnd struct{ arith }

func NewBitwiseAnd(l, r sql.Expression) *BitwiseAnd { return &BitwiseAnd{arith{"&", l, r}} }
func (b *BitwiseAnd) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(b, len(children), 2)
	}
	return NewBitwiseAnd(children[0], children[1]), nil
}

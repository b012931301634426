package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// Cast is an explicit (or now-legalized implicit) type conversion.
type Cast struct {
	Child sql.Expression
	To    sql.Type
}

func NewCast(child sql.Expression, to sql.Type) *Cast { return &Cast{Child: child, To: to} }

func (c *Cast) Resolved() bool             { return c.Child.Resolved() }
func (c *Cast) DataType() sql.Type         { return c.To }
func (c *Cast) Nullable() bool             { return c.Child.Nullable() }
func (c *Cast) Children() []sql.Expression { return []sql.Expression{c.Child} }
func (c *Cast) Foldable() bool             { return c.Child.Foldable() }
func (c *Cast) Deterministic() bool        { return c.Child.Deterministic() }
func (c *Cast) References() sql.AttributeSet { return c.Child.References() }
func (c *Cast) String() string             { return fmt.Sprintf("CAST(%s AS %s)", c.Child, c.To) }

func (c *Cast) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return &Cast{Child: children[0], To: c.To}, nil
}

// UpCast is a cast the analyzer itself introduces to widen an
// encoder-produced value to its declared field type; ResolveUpCast (§4.L)
// legalizes it into a plain Cast, or raises UpCastTruncation when the
// conversion is one of the enumerated lossy cases.
type UpCast struct {
	Child sql.Expression
	To    sql.Type
}

func NewUpCast(child sql.Expression, to sql.Type) *UpCast { return &UpCast{Child: child, To: to} }

func (u *UpCast) Resolved() bool             { return false }
func (u *UpCast) DataType() sql.Type         { panic("UpCast has no type until legalized") }
func (u *UpCast) Nullable() bool             { return u.Child.Nullable() }
func (u *UpCast) Children() []sql.Expression { return []sql.Expression{u.Child} }
func (u *UpCast) Foldable() bool             { return false }
func (u *UpCast) Deterministic() bool        { return u.Child.Deterministic() }
func (u *UpCast) References() sql.AttributeSet { return u.Child.References() }
func (u *UpCast) String() string             { return fmt.Sprintf("UPCAST(%s AS %s)", u.Child, u.To) }

func (u *UpCast) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 1)
	}
	return &UpCast{Child: children[0], To: u.To}, nil
}

// UpCastIsLossy reports whether widening from `from` to `to` is one of the
// enumerated lossy cases §4.L calls out: numeric to a narrower decimal,
// decimal to a numeric type of lesser precedence, numeric precedence
// inversion, timestamp to date, or string to numeric.
func UpCastIsLossy(from, to sql.Type) bool {
	if from == sql.TimestampType && to == sql.DateType {
		return true
	}
	if from == sql.StringType && sql.IsNumber(to) {
		return true
	}
	fromDec, fromIsDec := from.(*sql.DecimalType)
	toDec, toIsDec := to.(*sql.DecimalType)
	if fromIsDec && toIsDec {
		return toDec.Precision < fromDec.Precision || toDec.Scale < fromDec.Scale
	}
	if fromIsDec && sql.IsNumber(to) && !toIsDec {
		return numericPrecedence(to) < numericPrecedence(sql.DoubleType)
	}
	if !fromIsDec && toIsDec {
		return false
	}
	if sql.IsNumber(from) && sql.IsNumber(to) {
		return numericPrecedence(to) < numericPrecedence(from)
	}
	return false
}

// numericPrecedence orders the built-in numeric types from narrowest to
// widest; used to detect a precedence inversion in UpCastIsLossy.
func numericPrecedence(t sql.Type) int {
	switch t {
	case sql.ByteType:
		return 0
	case sql.IntType:
		return 1
	case sql.BigIntType:
		return 2
	case sql.DoubleType:
		return 3
	}
	return -1
}

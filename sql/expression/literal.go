// Package expression implements the essential expression variants of the
// plan/expression algebra: named expressions (Alias, AttributeReference),
// the Unresolved* placeholder family, and the resolved forms rules bind
// them to (function calls, aggregate expressions, window expressions,
// generators, casts, deserializers). Grounded on the teacher's
// sql/expression package: same Children()/WithChildren() shape, same
// habit of a small doc comment per exported type and none on most of
// the small getters.
package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// Literal is a constant value of a known type.
type Literal struct {
	Value interface{}
	Type  sql.Type
}

// NewLiteral creates a new Literal expression.
func NewLiteral(value interface{}, typ sql.Type) *Literal {
	return &Literal{Value: value, Type: typ}
}

func (l *Literal) Resolved() bool               { return true }
func (l *Literal) DataType() sql.Type           { return l.Type }
func (l *Literal) Nullable() bool               { return l.Value == nil }
func (l *Literal) Children() []sql.Expression   { return nil }
func (l *Literal) References() sql.AttributeSet { return sql.AttributeSet{} }
func (l *Literal) Foldable() bool               { return true }
func (l *Literal) Deterministic() bool          { return true }

func (l *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 0)
	}
	return l, nil
}

func (l *Literal) String() string {
	if l.Value == nil {
		return "NULL"
	}
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.Value)
}

package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// Generator is implemented by expressions that produce zero or more rows
// per input row (table-generating functions, §Glossary). ElementSchema
// names the output columns a bare (unaliased) call to this generator
// would produce.
type Generator interface {
	sql.Expression
	ElementSchema() sql.Schema
}

// Explode is the `explode(array_or_map)` generator.
type Explode struct {
	Arg  sql.Expression
	Elem sql.Type
}

func NewExplode(arg sql.Expression) *Explode {
	elem := sql.Type(sql.UnknownType)
	if at, ok := arg.DataType().(*sql.ArrayType); ok {
		elem = at.Elem
	}
	return &Explode{Arg: arg, Elem: elem}
}

func (e *Explode) Resolved() bool             { return e.Arg.Resolved() }
func (e *Explode) DataType() sql.Type         { return e.Elem }
func (e *Explode) Nullable() bool             { return true }
func (e *Explode) Children() []sql.Expression { return []sql.Expression{e.Arg} }
func (e *Explode) Foldable() bool             { return false }
func (e *Explode) Deterministic() bool        { return e.Arg.Deterministic() }
func (e *Explode) References() sql.AttributeSet { return e.Arg.References() }
func (e *Explode) String() string             { return fmt.Sprintf("explode(%s)", e.Arg) }

func (e *Explode) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return &Explode{Arg: children[0], Elem: e.Elem}, nil
}

func (e *Explode) ElementSchema() sql.Schema {
	return sql.Schema{{Name: "col", Type: e.Elem, Nullable: true}}
}

package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

type binary struct {
	Left, Right sql.Expression
}

func (b *binary) Children() []sql.Expression { return []sql.Expression{b.Left, b.Right} }
func (b *binary) Resolved() bool             { return b.Left.Resolved() && b.Right.Resolved() }
func (b *binary) Foldable() bool             { return b.Left.Foldable() && b.Right.Foldable() }
func (b *binary) Deterministic() bool {
	return b.Left.Deterministic() && b.Right.Deterministic()
}
func (b *binary) References() sql.AttributeSet {
	return b.Left.References().Union(b.Right.References())
}
func (b *binary) Nullable() bool { return b.Left.Nullable() || b.Right.Nullable() }

// And is a boolean conjunction.
type And struct{ binary }

func NewAnd(left, right sql.Expression) *And { return &And{binary{left, right}} }

func (a *And) DataType() sql.Type { return sql.BooleanType }
func (a *And) String() string     { return fmt.Sprintf("(%s AND %s)", a.Left, a.Right) }
func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewAnd(children[0], children[1]), nil
}

// Or is a boolean disjunction.
type Or struct{ binary }

func NewOr(left, right sql.Expression) *Or { return &Or{binary{left, right}} }

func (o *Or) DataType() sql.Type { return sql.BooleanType }
func (o *Or) String() string     { return fmt.Sprintf("(%s OR %s)", o.Left, o.Right) }
func (o *Or) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(o, len(children), 2)
	}
	return NewOr(children[0], children[1]), nil
}

// IsNull tests its child for NULL-ness.
type IsNull struct{ Child sql.Expression }

func NewIsNull(child sql.Expression) *IsNull { return &IsNull{child} }

func (n *IsNull) Resolved() bool             { return n.Child.Resolved() }
func (n *IsNull) DataType() sql.Type         { return sql.BooleanType }
func (n *IsNull) Nullable() bool             { return false }
func (n *IsNull) Children() []sql.Expression { return []sql.Expression{n.Child} }
func (n *IsNull) Foldable() bool             { return n.Child.Foldable() }
func (n *IsNull) Deterministic() bool        { return n.Child.Deterministic() }
func (n *IsNull) References() sql.AttributeSet { return n.Child.References() }
func (n *IsNull) String() string             { return fmt.Sprintf("%s IS NULL", n.Child) }
func (n *IsNull) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 1)
	}
	return NewIsNull(children[0]), nil
}

// If is a three-argument conditional: IF(cond, then, els).
type If struct {
	Cond, Then, Else sql.Expression
}

func NewIf(cond, then, els sql.Expression) *If { return &If{cond, then, els} }

func (f *If) Resolved() bool {
	return f.Cond.Resolved() && f.Then.Resolved() && f.Else.Resolved()
}
func (f *If) DataType() sql.Type { return f.Then.DataType() }
func (f *If) Nullable() bool     { return f.Then.Nullable() || f.Else.Nullable() }
func (f *If) Children() []sql.Expression {
	return []sql.Expression{f.Cond, f.Then, f.Else}
}
func (f *If) Foldable() bool { return f.Cond.Foldable() && f.Then.Foldable() && f.Else.Foldable() }
func (f *If) Deterministic() bool {
	return f.Cond.Deterministic() && f.Then.Deterministic() && f.Else.Deterministic()
}
func (f *If) References() sql.AttributeSet {
	return f.Cond.References().Union(f.Then.References()).Union(f.Else.References())
}
func (f *If) String() string { return fmt.Sprintf("IF(%s, %s, %s)", f.Cond, f.Then, f.Else) }
func (f *If) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 3)
	}
	return NewIf(children[0], children[1], children[2]), nil
}

// Equals is a binary `=` comparison, used by Pivot desugaring's
// `pivotCol = pivotValue` guard (§4.G).
type Equals struct{ binary }

func NewEquals(left, right sql.Expression) *Equals { return &Equals{binary{left, right}} }

func (e *Equals) DataType() sql.Type { return sql.BooleanType }
func (e *Equals) String() string     { return fmt.Sprintf("(%s = %s)", e.Left, e.Right) }
func (e *Equals) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewEquals(children[0], children[1]), nil
}

// GreaterThanOrEqual is a binary `>=` comparison, used by time-window
// bucket predicates (§4.J).
type GreaterThanOrEqual struct{ binary }

func NewGreaterThanOrEqual(left, right sql.Expression) *GreaterThanOrEqual {
	return &GreaterThanOrEqual{binary{left, right}}
}
func (g *GreaterThanOrEqual) DataType() sql.Type { return sql.BooleanType }
func (g *GreaterThanOrEqual) String() string      { return fmt.Sprintf("(%s >= %s)", g.Left, g.Right) }
func (g *GreaterThanOrEqual) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 2)
	}
	return NewGreaterThanOrEqual(children[0], children[1]), nil
}

// LessThan is a binary `<` comparison, used by time-window bucket
// predicates (§4.J).
type LessThan struct{ binary }

func NewLessThan(left, right sql.Expression) *LessThan { return &LessThan{binary{left, right}} }
func (l *LessThan) DataType() sql.Type                 { return sql.BooleanType }
func (l *LessThan) String() string                     { return fmt.Sprintf("(%s < %s)", l.Left, l.Right) }
func (l *LessThan) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 2)
	}
	return NewLessThan(children[0], children[1]), nil
}

// GreaterThan is a binary `>` comparison.
type GreaterThan struct{ binary }

func NewGreaterThan(left, right sql.Expression) *GreaterThan { return &GreaterThan{binary{left, right}} }
func (g *GreaterThan) DataType() sql.Type                    { return sql.BooleanType }
func (g *GreaterThan) String() string                        { return fmt.Sprintf("(%s > %s)", g.Left, g.Right) }
func (g *GreaterThan) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 2)
	}
	return NewGreaterThan(children[0], children[1]), nil
}

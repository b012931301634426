package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// BoundReference addresses an input column by ordinal position rather
// than by name, the shape an UnresolvedDeserializer's constructor
// arguments arrive in before ResolveDeserializer (§4.L) binds them.
type BoundReference struct {
	Ordinal int
	Type    sql.Type
}

func NewBoundReference(ordinal int, typ sql.Type) *BoundReference {
	return &BoundReference{Ordinal: ordinal, Type: typ}
}

func (b *BoundReference) Resolved() bool             { return false }
func (b *BoundReference) DataType() sql.Type         { return b.Type }
func (b *BoundReference) Nullable() bool             { return true }
func (b *BoundReference) Children() []sql.Expression { return nil }
func (b *BoundReference) Foldable() bool             { return false }
func (b *BoundReference) Deterministic() bool        { return true }
func (b *BoundReference) References() sql.AttributeSet { return sql.AttributeSet{} }
func (b *BoundReference) String() string             { return fmt.Sprintf("input[%d]", b.Ordinal) }

func (b *BoundReference) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(b, len(children), 0)
	}
	return b, nil
}

// UnresolvedDeserializer materializes an encoded row into a Go value: its
// Child expression tree still contains BoundReference ordinals that must
// be bound against InputAttributes (§4.L).
type UnresolvedDeserializer struct {
	Child           sql.Expression
	InputAttributes []sql.Attribute
}

func NewUnresolvedDeserializer(child sql.Expression, inputs []sql.Attribute) *UnresolvedDeserializer {
	return &UnresolvedDeserializer{Child: child, InputAttributes: inputs}
}

func (u *UnresolvedDeserializer) Resolved() bool { return false }
func (u *UnresolvedDeserializer) DataType() sql.Type {
	panic("UnresolvedDeserializer has no type")
}
func (u *UnresolvedDeserializer) Nullable() bool             { return true }
func (u *UnresolvedDeserializer) Children() []sql.Expression { return []sql.Expression{u.Child} }
func (u *UnresolvedDeserializer) Foldable() bool             { return false }
func (u *UnresolvedDeserializer) Deterministic() bool        { return true }
func (u *UnresolvedDeserializer) References() sql.AttributeSet { return sql.AttributeSet{} }
func (u *UnresolvedDeserializer) String() string             { return "deserializer(...)" }

func (u *UnresolvedDeserializer) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 1)
	}
	return &UnresolvedDeserializer{Child: children[0], InputAttributes: u.InputAttributes}, nil
}

// NewInstance constructs a Go value of TypeName from Args. An inner-type
// constructor (OuterClass != "") requires an outer-scope capture bound by
// ResolveNewInstance (§4.L); OuterRef is filled in once that lookup
// succeeds.
type NewInstance struct {
	TypeName   string
	OuterClass string
	OuterRef   interface{}
	Args       []sql.Expression
}

func NewNewInstance(typeName, outerClass string, args ...sql.Expression) *NewInstance {
	return &NewInstance{TypeName: typeName, OuterClass: outerClass, Args: args}
}

func (n *NewInstance) Resolved() bool {
	if n.OuterClass != "" && n.OuterRef == nil {
		return false
	}
	return sql.ExpressionsResolved(n.Args)
}

func (n *NewInstance) DataType() sql.Type         { return sql.UnknownType }
func (n *NewInstance) Nullable() bool             { return false }
func (n *NewInstance) Children() []sql.Expression { return n.Args }
func (n *NewInstance) Foldable() bool             { return false }
func (n *NewInstance) Deterministic() bool        { return true }
func (n *NewInstance) References() sql.AttributeSet {
	s := sql.AttributeSet{}
	for _, a := range n.Args {
		s = s.Union(a.References())
	}
	return s
}
func (n *NewInstance) String() string { return fmt.Sprintf("new %s(%s)", n.TypeName, joinExprs(n.Args)) }

func (n *NewInstance) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	cp := *n
	cp.Args = children
	return &cp, nil
}

// WithOuterRef returns a copy of n with its outer-scope instance bound.
func (n *NewInstance) WithOuterRef(ref interface{}) *NewInstance {
	cp := *n
	cp.OuterRef = ref
	return &cp
}

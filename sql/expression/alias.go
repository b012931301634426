package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// Alias names a child expression and mints an expression-id for the
// resulting column. Aliases are the mechanism by which arbitrary
// expressions become named, referenceable attributes.
type Alias struct {
	Child sql.Expression
	name  string
	id    sql.ExprId
}

// NewAlias mints a fresh Alias with a new expression-id.
func NewAlias(child sql.Expression, name string) *Alias {
	return &Alias{Child: child, name: name, id: sql.NewExprId()}
}

// NewAliasWithId builds an Alias carrying a specific, already-minted id.
func NewAliasWithId(child sql.Expression, name string, id sql.ExprId) *Alias {
	return &Alias{Child: child, name: name, id: id}
}

func (a *Alias) Name() string       { return a.name }
func (a *Alias) ExprId() sql.ExprId { return a.id }
func (a *Alias) Resolved() bool     { return a.Child.Resolved() }
func (a *Alias) DataType() sql.Type { return a.Child.DataType() }
func (a *Alias) Nullable() bool     { return a.Child.Nullable() }
func (a *Alias) Foldable() bool     { return a.Child.Foldable() }
func (a *Alias) Deterministic() bool { return a.Child.Deterministic() }

func (a *Alias) Children() []sql.Expression { return []sql.Expression{a.Child} }

func (a *Alias) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return &Alias{Child: children[0], name: a.name, id: a.id}, nil
}

func (a *Alias) References() sql.AttributeSet { return a.Child.References() }

func (a *Alias) ToAttribute() sql.Attribute {
	return NewAttributeReferenceWithId(a.name, a.Child.DataType(), a.Child.Nullable(), "", a.id)
}

func (a *Alias) String() string {
	return fmt.Sprintf("%s AS %s#%d", a.Child, a.name, a.id)
}

// SemanticString implements sql.SemanticStringer.
func (a *Alias) SemanticString() string {
	return fmt.Sprintf("alias(%s AS %s)", sql.SemanticString(a.Child), a.name)
}

// WithName returns a copy of a with its name replaced, keeping its id.
func (a *Alias) WithName(name string) *Alias {
	return &Alias{Child: a.Child, name: name, id: a.id}
}

package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// AttributeReference is a concrete reference to a produced column. Two
// AttributeReferences with the same ExprId denote the same logical column
// regardless of name or qualifier differences accumulated by rewrites.
type AttributeReference struct {
	name      string
	typ       sql.Type
	nullable  bool
	id        sql.ExprId
	qualifier string
}

// NewAttributeReference mints a fresh AttributeReference with a new
// expression-id.
func NewAttributeReference(name string, typ sql.Type, nullable bool, qualifier string) *AttributeReference {
	return &AttributeReference{name: name, typ: typ, nullable: nullable, id: sql.NewExprId(), qualifier: qualifier}
}

// NewAttributeReferenceWithId builds an AttributeReference carrying a
// specific, already-minted id (used when a rewrite must preserve identity
// while changing name/qualifier/type).
func NewAttributeReferenceWithId(name string, typ sql.Type, nullable bool, qualifier string, id sql.ExprId) *AttributeReference {
	return &AttributeReference{name: name, typ: typ, nullable: nullable, id: id, qualifier: qualifier}
}

func (a *AttributeReference) Name() string        { return a.name }
func (a *AttributeReference) ExprId() sql.ExprId  { return a.id }
func (a *AttributeReference) Qualifier() string   { return a.qualifier }
func (a *AttributeReference) Resolved() bool      { return true }
func (a *AttributeReference) DataType() sql.Type  { return a.typ }
func (a *AttributeReference) Nullable() bool      { return a.nullable }
func (a *AttributeReference) Foldable() bool      { return false }
func (a *AttributeReference) Deterministic() bool { return true }

func (a *AttributeReference) Children() []sql.Expression { return nil }

func (a *AttributeReference) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 0)
	}
	return a, nil
}

func (a *AttributeReference) References() sql.AttributeSet {
	return sql.NewAttributeSet(a)
}

func (a *AttributeReference) ToAttribute() sql.Attribute { return a }

func (a *AttributeReference) WithQualifier(qualifier string) sql.Attribute {
	cp := *a
	cp.qualifier = qualifier
	return &cp
}

func (a *AttributeReference) WithName(name string) sql.Attribute {
	cp := *a
	cp.name = name
	return &cp
}

func (a *AttributeReference) WithExprId(id sql.ExprId) sql.Attribute {
	cp := *a
	cp.id = id
	return &cp
}

// WithNullable returns a copy with nullability replaced. Used when a
// GroupingSets expansion forces an attribute nullable (§4.G).
func (a *AttributeReference) WithNullable(nullable bool) *AttributeReference {
	cp := *a
	cp.nullable = nullable
	return &cp
}

func (a *AttributeReference) String() string {
	if a.qualifier == "" {
		return fmt.Sprintf("%s#%d", a.name, a.id)
	}
	return fmt.Sprintf("%s.%s#%d", a.qualifier, a.name, a.id)
}

// QualifiedName renders the attribute the way a user would write it,
// without the id suffix — used by SemanticEquals so id-renamed copies of
// the same logical expression still compare equal.
func (a *AttributeReference) QualifiedName() string {
	if a.qualifier == "" {
		return a.name
	}
	return fmt.Sprintf("%s.%s", a.qualifier, a.name)
}

// SemanticString implements sql.SemanticStringer: attribute identity for
// semantic-equality purposes is name+qualifier+type, not the expression-id.
func (a *AttributeReference) SemanticString() string {
	return fmt.Sprintf("attr(%s:%s)", a.QualifiedName(), a.typ)
}

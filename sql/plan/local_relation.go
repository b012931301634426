package plan

import "github.com/efeller/logiplan/sql"

// LocalRelation is an already-resolved leaf whose output attributes are
// supplied directly rather than looked up in the catalog: CTE inlining's
// degenerate base case, and the local input relation ResolveDeserializer
// (§4.L) resolves BoundReferences against.
type LocalRelation struct {
	LeafNode
	Attrs []sql.Attribute
}

func NewLocalRelation(attrs ...sql.Attribute) *LocalRelation {
	return &LocalRelation{Attrs: attrs}
}

func (l *LocalRelation) Expressions() []sql.Expression { return nil }
func (l *LocalRelation) Output() []sql.Attribute       { return l.Attrs }

func (l *LocalRelation) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(exprs), 0)
	}
	return l, nil
}

func (l *LocalRelation) WithChildren(children ...sql.Node) (sql.Node, error) {
	return nillaryWithChildren(l, children...)
}

func (l *LocalRelation) String() string { return "LocalRelation" }

// OneRowRelation is the implicit single-row, no-column source for a
// FROM-less SELECT (`SELECT 1`, or a CTE body with no base table).
type OneRowRelation struct{ LeafNode }

func NewOneRowRelation() *OneRowRelation { return &OneRowRelation{} }

func (o *OneRowRelation) Expressions() []sql.Expression { return nil }
func (o *OneRowRelation) Output() []sql.Attribute       { return nil }

func (o *OneRowRelation) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(o, len(exprs), 0)
	}
	return o, nil
}

func (o *OneRowRelation) WithChildren(children ...sql.Node) (sql.Node, error) {
	return nillaryWithChildren(o, children...)
}

func (o *OneRowRelation) String() string { return "OneRowRelation" }

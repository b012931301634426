package plan

import "github.com/efeller/logiplan/sql"

// UnresolvedRelation is a FROM-clause reference not yet bound to a
// catalog table or CTE, addressed by table identifier and an optional
// alias supplied at the reference site.
type UnresolvedRelation struct {
	LeafNode
	TableId sql.TableIdentifier
	Alias   string
}

func NewUnresolvedRelation(tableId sql.TableIdentifier, alias string) *UnresolvedRelation {
	return &UnresolvedRelation{TableId: tableId, Alias: alias}
}

func (u *UnresolvedRelation) Resolved() bool          { return false }
func (u *UnresolvedRelation) Expressions() []sql.Expression { return nil }
func (u *UnresolvedRelation) Output() []sql.Attribute { return nil }

func (u *UnresolvedRelation) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(exprs), 0)
	}
	return u, nil
}

func (u *UnresolvedRelation) WithChildren(children ...sql.Node) (sql.Node, error) {
	return nillaryWithChildren(u, children...)
}

func (u *UnresolvedRelation) String() string {
	if u.Alias == "" {
		return "UnresolvedRelation(" + u.TableId.String() + ")"
	}
	return "UnresolvedRelation(" + u.TableId.String() + " AS " + u.Alias + ")"
}

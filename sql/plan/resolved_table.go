package plan

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
)

// ResolvedTable is a base relation bound by the catalog: the output of
// successful relation binding (§4.E). It is the only base-relation
// implementation of sql.MultiInstanceRelation in this module: a second
// reference to the same table (self-join, INTERSECT) calls NewInstance to
// mint an equivalent node whose output attributes carry fresh ids, per
// invariant 3 (§3).
type ResolvedTable struct {
	LeafNode
	TableId sql.TableIdentifier
	Alias   string
	Cols    []sql.Attribute
}

// NewResolvedTable builds a ResolvedTable from the catalog's schema,
// minting one fresh AttributeReference per column. alias, if non-empty,
// qualifies every produced attribute instead of the table's own name.
func NewResolvedTable(tableId sql.TableIdentifier, alias string, schema sql.Schema, mint func(name string, typ sql.Type, nullable bool, qualifier string) sql.Attribute) *ResolvedTable {
	qualifier := tableId.Table
	if alias != "" {
		qualifier = alias
	}
	cols := make([]sql.Attribute, len(schema))
	for i, c := range schema {
		cols[i] = mint(c.Name, c.Type, c.Nullable, qualifier)
	}
	return &ResolvedTable{TableId: tableId, Alias: alias, Cols: cols}
}

func (t *ResolvedTable) Expressions() []sql.Expression { return nil }
func (t *ResolvedTable) Output() []sql.Attribute       { return t.Cols }

func (t *ResolvedTable) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(exprs), 0)
	}
	return t, nil
}

func (t *ResolvedTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	return nillaryWithChildren(t, children...)
}

func (t *ResolvedTable) String() string {
	if t.Alias == "" {
		return "Table(" + t.TableId.String() + ")"
	}
	return fmt.Sprintf("Table(%s AS %s)", t.TableId, t.Alias)
}

// Schema reports the shape of the table this node wraps, independent of
// the id-bearing AttributeReferences in Output.
func (t *ResolvedTable) Schema() sql.Schema {
	out := make(sql.Schema, len(t.Cols))
	for i, c := range t.Cols {
		out[i] = &sql.Column{Name: c.Name(), Type: c.DataType(), Nullable: c.Nullable(), Source: t.TableId.Table}
	}
	return out
}

// NewInstance mints a fresh ResolvedTable whose every output attribute
// carries a new expression-id but the same name/type/qualifier, per
// spec.md §4.E's dedupRight ("a MultiInstanceRelation: call its
// newInstance to mint fresh IDs for its entire output").
func (t *ResolvedTable) NewInstance() sql.Node {
	cols := make([]sql.Attribute, len(t.Cols))
	for i, c := range t.Cols {
		cols[i] = c.WithExprId(sql.NewExprId())
	}
	return &ResolvedTable{TableId: t.TableId, Alias: t.Alias, Cols: cols}
}

// TableName returns the name a SELECT * qualifier would restrict against:
// the alias if one was supplied at the reference site, else the table's
// own name.
func (t *ResolvedTable) TableName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.TableId.Table
}

var _ sql.Node = (*ResolvedTable)(nil)

// qualifiedTableId renders dotted identifiers the way the parser would
// have handed them to UnresolvedRelation.
func qualifiedTableId(parts []string) sql.TableIdentifier {
	if len(parts) == 1 {
		return sql.TableIdentifier{Table: parts[0]}
	}
	return sql.TableIdentifier{Database: strings.Join(parts[:len(parts)-1], "."), Table: parts[len(parts)-1]}
}

package expression

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
)

// GetStructField is the resolved form of UnresolvedExtractValue when
// Child's type is a StructType: a typed field getter (§4.E).
type GetStructField struct {
	Child sql.Expression
	Index int
	Field sql.StructField
}

func NewGetStructField(child sql.Expression, index int, field sql.StructField) *GetStructField {
	return &GetStructField{Child: child, Index: index, Field: field}
}

func (g *GetStructField) Resolved() bool             { return g.Child.Resolved() }
func (g *GetStructField) DataType() sql.Type         { return g.Field.Type }
func (g *GetStructField) Nullable() bool             { return true }
func (g *GetStructField) Children() []sql.Expression { return []sql.Expression{g.Child} }
func (g *GetStructField) Foldable() bool             { return g.Child.Foldable() }
func (g *GetStructField) Deterministic() bool        { return g.Child.Deterministic() }
func (g *GetStructField) References() sql.AttributeSet { return g.Child.References() }

func (g *GetStructField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	return &GetStructField{Child: children[0], Index: g.Index, Field: g.Field}, nil
}

func (g *GetStructField) String() string { return fmt.Sprintf("%s.%s", g.Child, g.Field.Name) }

// GetArrayItem is the resolved form of UnresolvedExtractValue when Child's
// type is an ArrayType: an integer-indexed getter.
type GetArrayItem struct {
	Child sql.Expression
	Index sql.Expression
	Elem  sql.Type
}

func NewGetArrayItem(child, index sql.Expression, elem sql.Type) *GetArrayItem {
	return &GetArrayItem{Child: child, Index: index, Elem: elem}
}

func (g *GetArrayItem) Resolved() bool { return g.Child.Resolved() && g.Index.Resolved() }
func (g *GetArrayItem) DataType() sql.Type { return g.Elem }
func (g *GetArrayItem) Nullable() bool     { return true }
func (g *GetArrayItem) Children() []sql.Expression {
	return []sql.Expression{g.Child, g.Index}
}
func (g *GetArrayItem) Foldable() bool      { return g.Child.Foldable() && g.Index.Foldable() }
func (g *GetArrayItem) Deterministic() bool { return g.Child.Deterministic() && g.Index.Deterministic() }
func (g *GetArrayItem) References() sql.AttributeSet {
	return g.Child.References().Union(g.Index.References())
}

func (g *GetArrayItem) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 2)
	}
	return &GetArrayItem{Child: children[0], Index: children[1], Elem: g.Elem}, nil
}

func (g *GetArrayItem) String() string { return fmt.Sprintf("%s[%s]", g.Child, g.Index) }

// GetMapValue is the resolved form of UnresolvedExtractValue when Child's
// type is a MapType: a key-indexed getter.
type GetMapValue struct {
	Child sql.Expression
	Key   sql.Expression
	Value sql.Type
}

func NewGetMapValue(child, key sql.Expression, value sql.Type) *GetMapValue {
	return &GetMapValue{Child: child, Key: key, Value: value}
}

func (g *GetMapValue) Resolved() bool      { return g.Child.Resolved() && g.Key.Resolved() }
func (g *GetMapValue) DataType() sql.Type  { return g.Value }
func (g *GetMapValue) Nullable() bool      { return true }
func (g *GetMapValue) Children() []sql.Expression {
	return []sql.Expression{g.Child, g.Key}
}
func (g *GetMapValue) Foldable() bool      { return g.Child.Foldable() && g.Key.Foldable() }
func (g *GetMapValue) Deterministic() bool { return g.Child.Deterministic() && g.Key.Deterministic() }
func (g *GetMapValue) References() sql.AttributeSet {
	return g.Child.References().Union(g.Key.References())
}

func (g *GetMapValue) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 2)
	}
	return &GetMapValue{Child: children[0], Key: children[1], Value: g.Value}, nil
}

func (g *GetMapValue) String() string { return fmt.Sprintf("%s[%s]", g.Child, g.Key) }

// CreateStruct builds a StructType value from named sub-expressions, the
// constructor-side counterpart to GetStructField. Used by time-window
// desugaring (§4.J) to package windowStart/windowEnd into a single
// struct(start, end) attribute.
type CreateStruct struct {
	Names  []string
	Values []sql.Expression
}

func NewCreateStruct(names []string, values []sql.Expression) *CreateStruct {
	return &CreateStruct{Names: names, Values: values}
}

func (c *CreateStruct) Resolved() bool { return sql.ExpressionsResolved(c.Values) }

func (c *CreateStruct) DataType() sql.Type {
	fields := make([]sql.StructField, len(c.Values))
	for i, v := range c.Values {
		fields[i] = sql.StructField{Name: c.Names[i], Type: v.DataType()}
	}
	return &sql.StructType{Fields: fields}
}

func (c *CreateStruct) Nullable() bool             { return false }
func (c *CreateStruct) Children() []sql.Expression { return c.Values }
func (c *CreateStruct) Foldable() bool {
	for _, v := range c.Values {
		if !v.Foldable() {
			return false
		}
	}
	return true
}

func (c *CreateStruct) Deterministic() bool {
	for _, v := range c.Values {
		if !v.Deterministic() {
			return false
		}
	}
	return true
}

func (c *CreateStruct) References() sql.AttributeSet {
	set := sql.AttributeSet{}
	for _, v := range c.Values {
		set = set.Union(v.References())
	}
	return set
}

func (c *CreateStruct) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.Values) {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), len(c.Values))
	}
	return &CreateStruct{Names: c.Names, Values: children}, nil
}

func (c *CreateStruct) String() string {
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		parts[i] = fmt.Sprintf("%s:%s", c.Names[i], v)
	}
	return fmt.Sprintf("struct(%s)", strings.Join(parts, ", "))
}

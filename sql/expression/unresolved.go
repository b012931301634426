package expression

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
)

// every Unresolved* placeholder panics if asked for its type or evaluated;
// they exist only to be walked and replaced by resolution rules. Grounded
// on the teacher's sql/expression/unresolved.go: "this is a placeholder
// node, so its methods ... are not supposed to be called."

// UnresolvedAttribute is a not-yet-bound column reference, addressed by an
// ordered list of name parts (e.g. ["t", "a"] for "t.a").
type UnresolvedAttribute struct {
	nameParts []string
}

func NewUnresolvedAttribute(nameParts ...string) *UnresolvedAttribute {
	return &UnresolvedAttribute{nameParts: nameParts}
}

func (u *UnresolvedAttribute) NameParts() []string { return u.nameParts }

// Name is the final name part (the column name itself).
func (u *UnresolvedAttribute) Name() string { return u.nameParts[len(u.nameParts)-1] }

// Qualifier is every name part but the last, joined by ".", or "" if the
// reference was unqualified.
func (u *UnresolvedAttribute) Qualifier() string {
	if len(u.nameParts) < 2 {
		return ""
	}
	return strings.Join(u.nameParts[:len(u.nameParts)-1], ".")
}

func (u *UnresolvedAttribute) Resolved() bool             { return false }
func (u *UnresolvedAttribute) DataType() sql.Type         { panic("UnresolvedAttribute has no type") }
func (u *UnresolvedAttribute) Nullable() bool             { panic("UnresolvedAttribute has no nullability") }
func (u *UnresolvedAttribute) Children() []sql.Expression { return nil }
func (u *UnresolvedAttribute) References() sql.AttributeSet { return sql.AttributeSet{} }
func (u *UnresolvedAttribute) Foldable() bool             { return false }
func (u *UnresolvedAttribute) Deterministic() bool        { return true }

func (u *UnresolvedAttribute) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 0)
	}
	return u, nil
}

func (u *UnresolvedAttribute) String() string { return strings.Join(u.nameParts, ".") }

// UnresolvedFunction is a call to a function not yet looked up in the
// catalog.
type UnresolvedFunction struct {
	Id       string
	Args     []sql.Expression
	Distinct bool
}

func NewUnresolvedFunction(id string, distinct bool, args ...sql.Expression) *UnresolvedFunction {
	return &UnresolvedFunction{Id: id, Args: args, Distinct: distinct}
}

func (u *UnresolvedFunction) Resolved() bool     { return false }
func (u *UnresolvedFunction) DataType() sql.Type { panic("UnresolvedFunction has no type") }
func (u *UnresolvedFunction) Nullable() bool     { return true }
func (u *UnresolvedFunction) Children() []sql.Expression { return u.Args }
func (u *UnresolvedFunction) Foldable() bool      { return false }
func (u *UnresolvedFunction) Deterministic() bool { return false }

func (u *UnresolvedFunction) References() sql.AttributeSet {
	s := sql.AttributeSet{}
	for _, a := range u.Args {
		s = s.Union(a.References())
	}
	return s
}

func (u *UnresolvedFunction) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &UnresolvedFunction{Id: u.Id, Args: children, Distinct: u.Distinct}, nil
}

func (u *UnresolvedFunction) String() string {
	d := ""
	if u.Distinct {
		d = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", u.Id, d, joinExprs(u.Args))
}

// UnresolvedGenerator is a call to a table-generating function not yet
// looked up in the catalog.
type UnresolvedGenerator struct {
	Id   string
	Args []sql.Expression
}

func NewUnresolvedGenerator(id string, args ...sql.Expression) *UnresolvedGenerator {
	return &UnresolvedGenerator{Id: id, Args: args}
}

func (u *UnresolvedGenerator) Resolved() bool             { return false }
func (u *UnresolvedGenerator) DataType() sql.Type         { panic("UnresolvedGenerator has no type") }
func (u *UnresolvedGenerator) Nullable() bool             { return true }
func (u *UnresolvedGenerator) Children() []sql.Expression { return u.Args }
func (u *UnresolvedGenerator) Foldable() bool             { return false }
func (u *UnresolvedGenerator) Deterministic() bool        { return false }
func (u *UnresolvedGenerator) References() sql.AttributeSet {
	s := sql.AttributeSet{}
	for _, a := range u.Args {
		s = s.Union(a.References())
	}
	return s
}

func (u *UnresolvedGenerator) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &UnresolvedGenerator{Id: u.Id, Args: children}, nil
}

func (u *UnresolvedGenerator) String() string {
	return fmt.Sprintf("%s(%s)", u.Id, joinExprs(u.Args))
}

// UnresolvedAlias is a projection-list entry that has not yet been given a
// name: star expansion and generator relocation both need to see the bare
// child before a default name is synthesized.
type UnresolvedAlias struct {
	Child sql.Expression
}

func NewUnresolvedAlias(child sql.Expression) *UnresolvedAlias {
	return &UnresolvedAlias{Child: child}
}

func (u *UnresolvedAlias) Resolved() bool             { return false }
func (u *UnresolvedAlias) DataType() sql.Type         { panic("UnresolvedAlias has no type") }
func (u *UnresolvedAlias) Nullable() bool             { return u.Child.Nullable() }
func (u *UnresolvedAlias) Children() []sql.Expression { return []sql.Expression{u.Child} }
func (u *UnresolvedAlias) Foldable() bool             { return u.Child.Foldable() }
func (u *UnresolvedAlias) Deterministic() bool        { return u.Child.Deterministic() }
func (u *UnresolvedAlias) References() sql.AttributeSet { return u.Child.References() }

func (u *UnresolvedAlias) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 1)
	}
	return &UnresolvedAlias{Child: children[0]}, nil
}

func (u *UnresolvedAlias) String() string { return u.Child.String() }

// MultiAlias is a projection-list entry aliasing a single (usually
// generator) expression to several output names at once.
type MultiAlias struct {
	Child sql.Expression
	Names []string
}

func NewMultiAlias(child sql.Expression, names ...string) *MultiAlias {
	return &MultiAlias{Child: child, Names: names}
}

func (m *MultiAlias) Resolved() bool             { return false }
func (m *MultiAlias) DataType() sql.Type         { panic("MultiAlias has no type") }
func (m *MultiAlias) Nullable() bool             { return m.Child.Nullable() }
func (m *MultiAlias) Children() []sql.Expression { return []sql.Expression{m.Child} }
func (m *MultiAlias) Foldable() bool             { return m.Child.Foldable() }
func (m *MultiAlias) Deterministic() bool        { return m.Child.Deterministic() }
func (m *MultiAlias) References() sql.AttributeSet { return m.Child.References() }

func (m *MultiAlias) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return &MultiAlias{Child: children[0], Names: m.Names}, nil
}

func (m *MultiAlias) String() string {
	return fmt.Sprintf("%s AS (%s)", m.Child, strings.Join(m.Names, ", "))
}

// UnresolvedExtractValue is a field/index/key access into a struct, array
// or map valued expression, resolved to a typed getter once Child's type
// is known (§4.E).
type UnresolvedExtractValue struct {
	Child sql.Expression
	Field sql.Expression
}

func NewUnresolvedExtractValue(child, field sql.Expression) *UnresolvedExtractValue {
	return &UnresolvedExtractValue{Child: child, Field: field}
}

func (u *UnresolvedExtractValue) Resolved() bool     { return false }
func (u *UnresolvedExtractValue) DataType() sql.Type { panic("UnresolvedExtractValue has no type") }
func (u *UnresolvedExtractValue) Nullable() bool     { return true }
func (u *UnresolvedExtractValue) Children() []sql.Expression {
	return []sql.Expression{u.Child, u.Field}
}
func (u *UnresolvedExtractValue) Foldable() bool      { return false }
func (u *UnresolvedExtractValue) Deterministic() bool { return true }
func (u *UnresolvedExtractValue) References() sql.AttributeSet {
	return u.Child.References().Union(u.Field.References())
}

func (u *UnresolvedExtractValue) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 2)
	}
	return &UnresolvedExtractValue{Child: children[0], Field: children[1]}, nil
}

func (u *UnresolvedExtractValue) String() string {
	return fmt.Sprintf("%s[%s]", u.Child, u.Field)
}

// UnresolvedWindowExpression wraps a window function call together with a
// reference to a named window spec (`OVER w`), inlined by window-definition
// substitution (§4.D) into a concrete WindowExpression.
type UnresolvedWindowExpression struct {
	Child     sql.Expression
	WindowRef string
}

func NewUnresolvedWindowExpression(child sql.Expression, windowRef string) *UnresolvedWindowExpression {
	return &UnresolvedWindowExpression{Child: child, WindowRef: windowRef}
}

func (u *UnresolvedWindowExpression) Resolved() bool { return false }
func (u *UnresolvedWindowExpression) DataType() sql.Type {
	panic("UnresolvedWindowExpression has no type")
}
func (u *UnresolvedWindowExpression) Nullable() bool             { return true }
func (u *UnresolvedWindowExpression) Children() []sql.Expression { return []sql.Expression{u.Child} }
func (u *UnresolvedWindowExpression) Foldable() bool             { return false }
func (u *UnresolvedWindowExpression) Deterministic() bool        { return false }
func (u *UnresolvedWindowExpression) References() sql.AttributeSet {
	return u.Child.References()
}

func (u *UnresolvedWindowExpression) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 1)
	}
	return &UnresolvedWindowExpression{Child: children[0], WindowRef: u.WindowRef}, nil
}

func (u *UnresolvedWindowExpression) String() string {
	return fmt.Sprintf("%s OVER %s", u.Child, u.WindowRef)
}

// Star is `*`, or `qualifier.*`.
type Star struct {
	Qualifier string
}

func NewStar(qualifier string) *Star { return &Star{Qualifier: qualifier} }

func (s *Star) Resolved() bool             { return false }
func (s *Star) DataType() sql.Type         { panic("Star has no type") }
func (s *Star) Nullable() bool             { panic("Star has no nullability") }
func (s *Star) Children() []sql.Expression { return nil }
func (s *Star) Foldable() bool             { return false }
func (s *Star) Deterministic() bool        { return true }
func (s *Star) References() sql.AttributeSet { return sql.AttributeSet{} }

func (s *Star) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

func (s *Star) String() string {
	if s.Qualifier == "" {
		return "*"
	}
	return s.Qualifier + ".*"
}

func joinExprs(exprs []sql.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

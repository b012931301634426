package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// FunctionCall is the resolved form of UnresolvedFunction once the
// catalog has bound it to a concrete implementation (§4.G). Distinct is
// already dropped for Max/Min by the time resolveFunctions builds one.
type FunctionCall struct {
	Name     string
	Args     []sql.Expression
	Distinct bool
	Type     sql.Type
	CanBeNull bool
}

func NewFunctionCall(name string, typ sql.Type, nullable, distinct bool, args ...sql.Expression) *FunctionCall {
	return &FunctionCall{Name: name, Args: args, Distinct: distinct, Type: typ, CanBeNull: nullable}
}

func (f *FunctionCall) Resolved() bool     { return sql.ExpressionsResolved(f.Args) }
func (f *FunctionCall) DataType() sql.Type { return f.Type }
func (f *FunctionCall) Nullable() bool     { return f.CanBeNull }
func (f *FunctionCall) Children() []sql.Expression { return f.Args }
func (f *FunctionCall) Foldable() bool {
	for _, a := range f.Args {
		if !a.Foldable() {
			return false
		}
	}
	return true
}
func (f *FunctionCall) Deterministic() bool { return true }
func (f *FunctionCall) References() sql.AttributeSet {
	s := sql.AttributeSet{}
	for _, a := range f.Args {
		s = s.Union(a.References())
	}
	return s
}

func (f *FunctionCall) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	cp := *f
	cp.Args = children
	return &cp, nil
}

func (f *FunctionCall) String() string {
	d := ""
	if f.Distinct {
		d = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", f.Name, d, joinExprs(f.Args))
}

package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// ParamMeta describes one declared parameter of a registered UDF: since
// this module has no reflection-based signature inspection (there is no
// scripting host to reflect into), a UDF's registrant supplies this
// metadata explicitly at registration time, matching design notes §9's
// "compile-time-generated metadata struct per registered UDF" option.
type ParamMeta struct {
	Primitive bool
}

// UserFunction is a call to a user-registered scalar function, the
// analog of the source's ScalaUDF. HandleNullInputsForUDF (§4.L) wraps
// primitive-typed parameters with a null guard using Params.
type UserFunction struct {
	Name    string
	Args    []sql.Expression
	Params  []ParamMeta
	RetType sql.Type
	// Guarded marks that this call site has already been wrapped by
	// HandleNullInputsForUDF, so the (once) rule does not double-wrap it
	// on a later, unrelated batch pass.
	Guarded bool
}

func NewUserFunction(name string, retType sql.Type, params []ParamMeta, args ...sql.Expression) *UserFunction {
	return &UserFunction{Name: name, Args: args, Params: params, RetType: retType}
}

func (u *UserFunction) Resolved() bool             { return sql.ExpressionsResolved(u.Args) }
func (u *UserFunction) DataType() sql.Type         { return u.RetType }
func (u *UserFunction) Nullable() bool             { return true }
func (u *UserFunction) Children() []sql.Expression { return u.Args }
func (u *UserFunction) Foldable() bool             { return false }
func (u *UserFunction) Deterministic() bool        { return true }
func (u *UserFunction) References() sql.AttributeSet {
	s := sql.AttributeSet{}
	for _, a := range u.Args {
		s = s.Union(a.References())
	}
	return s
}
func (u *UserFunction) String() string { return fmt.Sprintf("UDF:%s(%s)", u.Name, joinExprs(u.Args)) }

func (u *UserFunction) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	cp := *u
	cp.Args = children
	return &cp, nil
}

// WithGuarded returns a copy of u marked as already null-guarded.
func (u *UserFunction) WithGuarded() *UserFunction {
	cp := *u
	cp.Guarded = true
	return &cp
}

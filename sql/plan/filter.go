package plan

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// Filter evaluates Condition row-wise against Child, passing through rows
// where it is true. It never changes the output shape.
type Filter struct {
	UnaryNode
	Condition sql.Expression
}

func NewFilter(condition sql.Expression, child sql.Node) *Filter {
	return &Filter{UnaryNode{child}, condition}
}

func (f *Filter) Resolved() bool {
	return f.Child.Resolved() && f.Condition.Resolved()
}

func (f *Filter) Expressions() []sql.Expression { return []sql.Expression{f.Condition} }

func (f *Filter) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(exprs), 1)
	}
	return &Filter{f.UnaryNode, exprs[0]}, nil
}

func (f *Filter) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(f, children...)
	if err != nil {
		return nil, err
	}
	return &Filter{UnaryNode{c}, f.Condition}, nil
}

func (f *Filter) Output() []sql.Attribute { return f.Child.Output() }

func (f *Filter) String() string { return fmt.Sprintf("Filter(%s)", f.Condition) }

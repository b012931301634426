package plan

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
)

// Sort orders Child's rows by Order; Global distinguishes a true ORDER BY
// from a per-partition SORT BY (kept for fidelity with the window rules'
// vocabulary even though this module does not execute anything).
type Sort struct {
	UnaryNode
	Order  []expression.SortOrder
	Global bool
}

func NewSort(order []expression.SortOrder, global bool, child sql.Node) *Sort {
	return &Sort{UnaryNode{child}, order, global}
}

func (s *Sort) Resolved() bool {
	if !s.Child.Resolved() {
		return false
	}
	for _, o := range s.Order {
		if !o.Column.Resolved() {
			return false
		}
	}
	return true
}

func (s *Sort) Expressions() []sql.Expression {
	out := make([]sql.Expression, len(s.Order))
	for i, o := range s.Order {
		out[i] = o.Column
	}
	return out
}

func (s *Sort) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(s.Order) {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(exprs), len(s.Order))
	}
	order := make([]expression.SortOrder, len(s.Order))
	for i, o := range s.Order {
		order[i] = expression.SortOrder{Column: exprs[i], Ascending: o.Ascending, NullsFirst: o.NullsFirst}
	}
	return &Sort{s.UnaryNode, order, s.Global}, nil
}

func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(s, children...)
	if err != nil {
		return nil, err
	}
	return &Sort{UnaryNode{c}, s.Order, s.Global}, nil
}

func (s *Sort) Output() []sql.Attribute { return s.Child.Output() }

func (s *Sort) String() string {
	parts := make([]string, len(s.Order))
	for i, o := range s.Order {
		parts[i] = o.String()
	}
	return fmt.Sprintf("Sort(%s)", strings.Join(parts, ", "))
}

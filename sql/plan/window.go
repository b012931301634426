package plan

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
)

// Window evaluates WindowExpressions over Child's rows, partitioned by
// PartitionSpec and ordered by OrderSpec; invariant 6 (§3) requires every
// Window operator to carry exactly one (partitionSpec, orderSpec) pair,
// which is why ExtractWindowExpressions (§4.I) stacks one Window per
// distinct pair rather than folding them into a single node.
type Window struct {
	UnaryNode
	WindowExpressions []sql.Expression
	PartitionSpec     []sql.Expression
	OrderSpec         []expression.SortOrder
}

func NewWindow(windowExprs, partitionSpec []sql.Expression, orderSpec []expression.SortOrder, child sql.Node) *Window {
	return &Window{UnaryNode{child}, windowExprs, partitionSpec, orderSpec}
}

func (w *Window) Resolved() bool {
	if !w.Child.Resolved() {
		return false
	}
	if !sql.ExpressionsResolved(w.WindowExpressions) || !sql.ExpressionsResolved(w.PartitionSpec) {
		return false
	}
	for _, o := range w.OrderSpec {
		if !o.Column.Resolved() {
			return false
		}
	}
	return true
}

// Expressions lays out WindowExpressions first, then PartitionSpec, then
// OrderSpec columns, matching the layout WithExpressions expects back.
func (w *Window) Expressions() []sql.Expression {
	out := append([]sql.Expression{}, w.WindowExpressions...)
	out = append(out, w.PartitionSpec...)
	for _, o := range w.OrderSpec {
		out = append(out, o.Column)
	}
	return out
}

func (w *Window) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	want := len(w.WindowExpressions) + len(w.PartitionSpec) + len(w.OrderSpec)
	if len(exprs) != want {
		return nil, sql.ErrInvalidChildrenNumber.New(w, len(exprs), want)
	}
	we := append([]sql.Expression{}, exprs[:len(w.WindowExpressions)]...)
	rest := exprs[len(w.WindowExpressions):]
	ps := append([]sql.Expression{}, rest[:len(w.PartitionSpec)]...)
	rest = rest[len(w.PartitionSpec):]
	os := make([]expression.SortOrder, len(w.OrderSpec))
	for i, o := range w.OrderSpec {
		os[i] = expression.SortOrder{Column: rest[i], Ascending: o.Ascending, NullsFirst: o.NullsFirst}
	}
	return &Window{w.UnaryNode, we, ps, os}, nil
}

func (w *Window) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(w, children...)
	if err != nil {
		return nil, err
	}
	return &Window{UnaryNode{c}, w.WindowExpressions, w.PartitionSpec, w.OrderSpec}, nil
}

func (w *Window) Output() []sql.Attribute {
	out := append([]sql.Attribute{}, w.Child.Output()...)
	for _, e := range w.WindowExpressions {
		if ne, ok := e.(sql.NamedExpression); ok {
			out = append(out, ne.ToAttribute())
		}
	}
	return out
}

func (w *Window) String() string {
	return fmt.Sprintf("Window(%s)", strings.Join(exprNames(w.WindowExpressions), ", "))
}

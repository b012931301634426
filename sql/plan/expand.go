package plan

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// Expand emits one output row per entry of Projections for every input
// row: the shared desugaring primitive behind GroupingSets/Cube/Rollup
// (§4.G) and time windowing (§4.J). Each entry of Projections is a full
// list of output expressions (one per OutputAttrs slot); GroupingId, when
// non-nil, names the synthetic bitmask column grouping()/grouping_id()
// read from.
type Expand struct {
	UnaryNode
	Projections [][]sql.Expression
	OutputAttrs []sql.Attribute
}

func NewExpand(projections [][]sql.Expression, outputAttrs []sql.Attribute, child sql.Node) *Expand {
	return &Expand{UnaryNode{child}, projections, outputAttrs}
}

func (e *Expand) Resolved() bool {
	if !e.Child.Resolved() {
		return false
	}
	for _, row := range e.Projections {
		if !sql.ExpressionsResolved(row) {
			return false
		}
	}
	return true
}

// Expressions flattens every projection row in order; WithExpressions
// expects the same flattening back, row-major.
func (e *Expand) Expressions() []sql.Expression {
	var out []sql.Expression
	for _, row := range e.Projections {
		out = append(out, row...)
	}
	return out
}

func (e *Expand) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	width := 0
	if len(e.Projections) > 0 {
		width = len(e.Projections[0])
	}
	want := width * len(e.Projections)
	if len(exprs) != want {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(exprs), want)
	}
	rows := make([][]sql.Expression, len(e.Projections))
	for i := range rows {
		rows[i] = append([]sql.Expression{}, exprs[i*width:(i+1)*width]...)
	}
	return &Expand{e.UnaryNode, rows, e.OutputAttrs}, nil
}

func (e *Expand) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(e, children...)
	if err != nil {
		return nil, err
	}
	return &Expand{UnaryNode{c}, e.Projections, e.OutputAttrs}, nil
}

func (e *Expand) Output() []sql.Attribute { return e.OutputAttrs }

func (e *Expand) String() string {
	return fmt.Sprintf("Expand(rows=%d, cols=%d)", len(e.Projections), len(e.OutputAttrs))
}

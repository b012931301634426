package plan

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// Pivot rotates PivotValues of PivotColumn into columns, one per
// (pivotValue, aggregate) pair, grouped by GroupBy. resolvePivot (§4.G)
// rewrites this into a plain Aggregate once every aggregate's argument
// has been wrapped in the `if(pivotCol = pivotValue, e, null)` guard.
type Pivot struct {
	UnaryNode
	GroupBy     []sql.Expression
	PivotColumn sql.Expression
	PivotValues []sql.Expression
	Aggregates  []sql.Expression
}

func NewPivot(groupBy []sql.Expression, pivotColumn sql.Expression, pivotValues, aggregates []sql.Expression, child sql.Node) *Pivot {
	return &Pivot{UnaryNode{child}, groupBy, pivotColumn, pivotValues, aggregates}
}

func (p *Pivot) Resolved() bool {
	return p.Child.Resolved() &&
		sql.ExpressionsResolved(p.GroupBy) &&
		p.PivotColumn.Resolved() &&
		sql.ExpressionsResolved(p.PivotValues) &&
		sql.ExpressionsResolved(p.Aggregates)
}

func (p *Pivot) Expressions() []sql.Expression {
	out := append([]sql.Expression{}, p.GroupBy...)
	out = append(out, p.PivotColumn)
	out = append(out, p.PivotValues...)
	return append(out, p.Aggregates...)
}

func (p *Pivot) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	want := len(p.GroupBy) + 1 + len(p.PivotValues) + len(p.Aggregates)
	if len(exprs) != want {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(exprs), want)
	}
	i := 0
	groupBy := append([]sql.Expression{}, exprs[i:i+len(p.GroupBy)]...)
	i += len(p.GroupBy)
	pivotCol := exprs[i]
	i++
	pivotValues := append([]sql.Expression{}, exprs[i:i+len(p.PivotValues)]...)
	i += len(p.PivotValues)
	aggs := append([]sql.Expression{}, exprs[i:]...)
	return &Pivot{p.UnaryNode, groupBy, pivotCol, pivotValues, aggs}, nil
}

func (p *Pivot) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(p, children...)
	if err != nil {
		return nil, err
	}
	return &Pivot{UnaryNode{c}, p.GroupBy, p.PivotColumn, p.PivotValues, p.Aggregates}, nil
}

func (p *Pivot) Output() []sql.Attribute {
	out := make([]sql.Attribute, 0, len(p.GroupBy)+len(p.PivotValues)*len(p.Aggregates))
	for _, e := range p.GroupBy {
		if ne, ok := e.(sql.NamedExpression); ok {
			out = append(out, ne.ToAttribute())
		}
	}
	return out
}

func (p *Pivot) String() string {
	return fmt.Sprintf("Pivot(%s IN %v)", p.PivotColumn, exprNames(p.PivotValues))
}

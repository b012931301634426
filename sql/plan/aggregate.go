package plan

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
)

// Aggregate groups Child's rows by GroupingExpressions and evaluates
// AggregateExpressions per group. GroupingExpressions may itself contain a
// single Cube/Rollup/GroupingSetsMarker entry before grouping_sets.go
// desugars it into Expand+Aggregate (§4.G/§4.J).
type Aggregate struct {
	UnaryNode
	GroupingExpressions []sql.Expression
	AggregateExpressions []sql.Expression
}

func NewAggregate(grouping, aggregates []sql.Expression, child sql.Node) *Aggregate {
	return &Aggregate{UnaryNode{child}, grouping, aggregates}
}

func (a *Aggregate) Resolved() bool {
	return a.Child.Resolved() &&
		sql.ExpressionsResolved(a.GroupingExpressions) &&
		sql.ExpressionsResolved(a.AggregateExpressions)
}

// Expressions returns the aggregate list followed by the grouping list, so
// that a single WithExpressions-based rewrite can touch both; callers that
// only care about one list should use AggregateExpressions/
// GroupingExpressions directly instead of indexing into this slice.
func (a *Aggregate) Expressions() []sql.Expression {
	out := make([]sql.Expression, 0, len(a.AggregateExpressions)+len(a.GroupingExpressions))
	out = append(out, a.AggregateExpressions...)
	out = append(out, a.GroupingExpressions...)
	return out
}

func (a *Aggregate) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	want := len(a.AggregateExpressions) + len(a.GroupingExpressions)
	if len(exprs) != want {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(exprs), want)
	}
	return &Aggregate{
		a.UnaryNode,
		append([]sql.Expression{}, exprs[len(a.AggregateExpressions):]...),
		append([]sql.Expression{}, exprs[:len(a.AggregateExpressions)]...),
	}, nil
}

func (a *Aggregate) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(a, children...)
	if err != nil {
		return nil, err
	}
	return &Aggregate{UnaryNode{c}, a.GroupingExpressions, a.AggregateExpressions}, nil
}

// WithAggregateExpressions returns a copy of a with only its aggregate
// list replaced, keeping grouping expressions and child untouched. Used
// by HAVING/ORDER BY aggregate lifting (§4.G) which only ever appends to
// this list.
func (a *Aggregate) WithAggregateExpressions(exprs []sql.Expression) *Aggregate {
	return &Aggregate{a.UnaryNode, a.GroupingExpressions, exprs}
}

// WithGroupingExpressions returns a copy of a with only its grouping list
// replaced.
func (a *Aggregate) WithGroupingExpressions(exprs []sql.Expression) *Aggregate {
	return &Aggregate{a.UnaryNode, exprs, a.AggregateExpressions}
}

func (a *Aggregate) Output() []sql.Attribute {
	out := make([]sql.Attribute, len(a.AggregateExpressions))
	for i, e := range a.AggregateExpressions {
		if ne, ok := e.(sql.NamedExpression); ok {
			out[i] = ne.ToAttribute()
		}
	}
	return out
}

func (a *Aggregate) String() string {
	return fmt.Sprintf("Aggregate(grouping=[%s], aggs=[%s])",
		strings.Join(exprNames(a.GroupingExpressions), ", "),
		strings.Join(exprNames(a.AggregateExpressions), ", "))
}

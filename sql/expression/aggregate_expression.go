package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// AggregateMode mirrors the lifecycle position an aggregate function sits
// at; this module only ever produces Complete (a single, unpartitioned
// aggregation pass — partial/merge modes belong to physical planning,
// out of scope per §1).
type AggregateMode int

const (
	Complete AggregateMode = iota
)

// AggregateFunction is implemented by the catalog-resolved aggregate
// functions (sum, count, min, max, ...) an AggregateExpression wraps.
type AggregateFunction interface {
	sql.Expression
	AggregateName() string
}

// AggregateExpression wraps a resolved aggregate function so invariant 4
// (§3) can be checked structurally: aggregate functions appear only
// inside an Aggregate operator or a WindowExpression.
type AggregateExpression struct {
	Fn       AggregateFunction
	Mode     AggregateMode
	Distinct bool
}

func NewAggregateExpression(fn AggregateFunction, distinct bool) *AggregateExpression {
	return &AggregateExpression{Fn: fn, Mode: Complete, Distinct: distinct}
}

func (a *AggregateExpression) Resolved() bool             { return a.Fn.Resolved() }
func (a *AggregateExpression) DataType() sql.Type         { return a.Fn.DataType() }
func (a *AggregateExpression) Nullable() bool             { return a.Fn.Nullable() }
func (a *AggregateExpression) Children() []sql.Expression { return []sql.Expression{a.Fn} }
func (a *AggregateExpression) Foldable() bool             { return false }
func (a *AggregateExpression) Deterministic() bool        { return true }
func (a *AggregateExpression) References() sql.AttributeSet { return a.Fn.References() }

func (a *AggregateExpression) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	fn, ok := children[0].(AggregateFunction)
	if !ok {
		return nil, fmt.Errorf("AggregateExpression child must be an AggregateFunction, got %T", children[0])
	}
	return &AggregateExpression{Fn: fn, Mode: a.Mode, Distinct: a.Distinct}, nil
}

func (a *AggregateExpression) String() string {
	if a.Distinct {
		return fmt.Sprintf("%s(DISTINCT ...)", a.Fn.AggregateName())
	}
	return a.Fn.String()
}

// SemanticString drops Mode (a lifecycle detail, never user-visible).
func (a *AggregateExpression) SemanticString() string {
	return fmt.Sprintf("agg(%s,distinct=%v)", sql.SemanticString(a.Fn), a.Distinct)
}

// IsAggregateExpression reports whether e is an AggregateExpression,
// possibly wrapped in one or more Alias layers.
func IsAggregateExpression(e sql.Expression) bool {
	_, ok := UnwrapAlias(e).(*AggregateExpression)
	return ok
}

// UnwrapAlias strips any number of *Alias wrappers from e.
func UnwrapAlias(e sql.Expression) sql.Expression {
	for {
		a, ok := e.(*Alias)
		if !ok {
			return e
		}
		e = a.Child
	}
}

// ContainsAggregate reports whether e or any descendant is an
// AggregateExpression not already enclosed by a WindowExpression.
func ContainsAggregate(e sql.Expression) bool {
	if _, ok := e.(*WindowExpression); ok {
		return false
	}
	if _, ok := e.(*AggregateExpression); ok {
		return true
	}
	for _, c := range e.Children() {
		if ContainsAggregate(c) {
			return true
		}
	}
	return false
}

package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// SubqueryKind distinguishes the three correlated-subquery expression
// shapes the analyzer must resolve identically (§4.H): a scalar subquery
// used as a value, an EXISTS predicate, and an IN-subquery predicate.
type SubqueryKind int

const (
	ScalarSubquery SubqueryKind = iota
	ExistsSubquery
	InSubquery
)

// SubqueryExpression embeds an entire sub-plan as an expression. Query may
// be unresolved (containing UnresolvedAttributes that reference the outer
// plan) until correlated-subquery resolution (§4.H) runs.
type SubqueryExpression struct {
	Query sql.Node
	Kind  SubqueryKind
	// Value is the left-hand expression for an InSubquery; nil otherwise.
	Value sql.Expression
}

func NewScalarSubquery(query sql.Node) *SubqueryExpression {
	return &SubqueryExpression{Query: query, Kind: ScalarSubquery}
}

func NewExistsSubquery(query sql.Node) *SubqueryExpression {
	return &SubqueryExpression{Query: query, Kind: ExistsSubquery}
}

func NewInSubquery(value sql.Expression, query sql.Node) *SubqueryExpression {
	return &SubqueryExpression{Query: query, Kind: InSubquery, Value: value}
}

func (s *SubqueryExpression) Resolved() bool {
	if s.Value != nil && !s.Value.Resolved() {
		return false
	}
	return s.Query.Resolved()
}

func (s *SubqueryExpression) DataType() sql.Type {
	switch s.Kind {
	case ExistsSubquery, InSubquery:
		return sql.BooleanType
	default:
		out := s.Query.Output()
		if len(out) == 0 {
			return sql.UnknownType
		}
		return out[0].DataType()
	}
}

func (s *SubqueryExpression) Nullable() bool { return s.Kind == ScalarSubquery }

// Children deliberately does not expose Query: a SubqueryExpression's
// sub-plan is rewritten via WithQuery by analyzer rules, not by the
// generic expression-tree transform combinators, exactly as spec.md §4.H
// describes ("For any ... SubqueryExpression(query) with an unresolved
// query, resolve it by the correlated-resolution procedure").
func (s *SubqueryExpression) Children() []sql.Expression {
	if s.Value != nil {
		return []sql.Expression{s.Value}
	}
	return nil
}

func (s *SubqueryExpression) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	cp := *s
	if s.Value != nil {
		if len(children) != 1 {
			return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
		}
		cp.Value = children[0]
	} else if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return &cp, nil
}

// WithQuery returns a copy of s with its sub-plan replaced.
func (s *SubqueryExpression) WithQuery(query sql.Node) *SubqueryExpression {
	cp := *s
	cp.Query = query
	return &cp
}

func (s *SubqueryExpression) Foldable() bool      { return false }
func (s *SubqueryExpression) Deterministic() bool { return false }

func (s *SubqueryExpression) References() sql.AttributeSet {
	set := sql.AttributeSet{}
	if s.Value != nil {
		set = s.Value.References()
	}
	return set
}

func (s *SubqueryExpression) String() string {
	switch s.Kind {
	case ExistsSubquery:
		return "EXISTS (...)"
	case InSubquery:
		return fmt.Sprintf("%s IN (...)", s.Value)
	default:
		return "(...)"
	}
}

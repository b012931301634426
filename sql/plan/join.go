package plan

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// JoinKind distinguishes the join variants the analyzer must resolve
// identically (the join condition resolves against the union of both
// sides regardless of kind).
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

func (k JoinKind) String() string {
	switch k {
	case LeftOuterJoin:
		return "LeftOuter"
	case RightOuterJoin:
		return "RightOuter"
	case FullOuterJoin:
		return "FullOuter"
	case CrossJoin:
		return "Cross"
	default:
		return "Inner"
	}
}

// Join combines Left and Right per Kind, filtered by Condition (nil for
// CrossJoin). dedupRight (§4.E) runs whenever the two sides' output
// attribute-ids collide, which self-joins and re-used CTEs both trigger.
type Join struct {
	BinaryNode
	Kind      JoinKind
	Condition sql.Expression
}

func NewJoin(kind JoinKind, condition sql.Expression, left, right sql.Node) *Join {
	return &Join{BinaryNode{left, right}, kind, condition}
}

func (j *Join) Resolved() bool {
	if !j.Left.Resolved() || !j.Right.Resolved() {
		return false
	}
	if j.Condition == nil {
		return true
	}
	return j.Condition.Resolved()
}

func (j *Join) Expressions() []sql.Expression {
	if j.Condition == nil {
		return nil
	}
	return []sql.Expression{j.Condition}
}

func (j *Join) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if j.Condition == nil {
		if len(exprs) != 0 {
			return nil, sql.ErrInvalidChildrenNumber.New(j, len(exprs), 0)
		}
		return j, nil
	}
	if len(exprs) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(exprs), 1)
	}
	return &Join{j.BinaryNode, j.Kind, exprs[0]}, nil
}

func (j *Join) WithChildren(children ...sql.Node) (sql.Node, error) {
	if _, err := binaryWithChildren(j, children...); err != nil {
		return nil, err
	}
	return &Join{BinaryNode{children[0], children[1]}, j.Kind, j.Condition}, nil
}

func (j *Join) Output() []sql.Attribute {
	out := append([]sql.Attribute{}, j.Left.Output()...)
	return append(out, j.Right.Output()...)
}

func (j *Join) String() string {
	return fmt.Sprintf("%sJoin(%s)", j.Kind, j.Condition)
}

// Union concatenates the rows of every one of Branches, which must
// already agree on output shape. spec.md §4.D's trivial-union elimination
// ("Union([child]) -> child") is written directly against this type's
// n-ary branch list: a Union with exactly one branch is the trivial case.
type Union struct {
	Branches []sql.Node
}

func NewUnion(branches ...sql.Node) *Union { return &Union{Branches: branches} }

func (u *Union) Children() []sql.Node { return u.Branches }

func (u *Union) Resolved() bool {
	for _, b := range u.Branches {
		if !b.Resolved() {
			return false
		}
	}
	return true
}

func (u *Union) Expressions() []sql.Expression { return nil }

func (u *Union) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(exprs), 0)
	}
	return u, nil
}

func (u *Union) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) == 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), len(u.Branches))
	}
	return &Union{Branches: children}, nil
}

func (u *Union) Output() []sql.Attribute { return u.Branches[0].Output() }

func (u *Union) String() string { return fmt.Sprintf("Union(branches=%d)", len(u.Branches)) }

// Intersect keeps only rows of Left that also appear in Right, compared by
// value. Both relations must issue disjoint attribute ids for their own
// subtrees (dedupRight applies to Intersect exactly as it does to Join,
// invariant 3 §3).
type Intersect struct {
	BinaryNode
}

func NewIntersect(left, right sql.Node) *Intersect { return &Intersect{BinaryNode{left, right}} }

func (i *Intersect) Expressions() []sql.Expression { return nil }

func (i *Intersect) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(i, len(exprs), 0)
	}
	return i, nil
}

func (i *Intersect) WithChildren(children ...sql.Node) (sql.Node, error) {
	if _, err := binaryWithChildren(i, children...); err != nil {
		return nil, err
	}
	return &Intersect{BinaryNode{children[0], children[1]}}, nil
}

func (i *Intersect) Output() []sql.Attribute { return i.Left.Output() }

func (i *Intersect) String() string { return "Intersect" }

package plan

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
)

// GroupingSetsMarker is the single entry grouping_sets.go looks for inside
// an Aggregate's GroupingExpressions to recognize GROUP BY CUBE/ROLLUP/
// GROUPING SETS before it has been desugared into Expand+Aggregate
// (§4.G). Cube and Rollup are rewritten into an explicit bitmask list by
// the same rule that then desugars GroupingSetsMarker itself, per
// spec.md's "Rewrite Aggregate([Cube(exprs)], ...) into
// GroupingSets(bitmasks=0..(2^N-1), ...)".
type GroupingSetsMarker struct {
	Exprs    []sql.Expression
	Bitmasks []uint64
}

func (g *GroupingSetsMarker) Resolved() bool             { return sql.ExpressionsResolved(g.Exprs) }
func (g *GroupingSetsMarker) DataType() sql.Type         { panic("GroupingSetsMarker has no type") }
func (g *GroupingSetsMarker) Nullable() bool             { return false }
func (g *GroupingSetsMarker) Children() []sql.Expression { return g.Exprs }
func (g *GroupingSetsMarker) Foldable() bool             { return false }
func (g *GroupingSetsMarker) Deterministic() bool        { return true }
func (g *GroupingSetsMarker) References() sql.AttributeSet {
	s := sql.AttributeSet{}
	for _, e := range g.Exprs {
		s = s.Union(e.References())
	}
	return s
}

func (g *GroupingSetsMarker) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &GroupingSetsMarker{Exprs: children, Bitmasks: g.Bitmasks}, nil
}

func (g *GroupingSetsMarker) String() string {
	return fmt.Sprintf("GROUPING SETS(%v)", g.Bitmasks)
}

// NewCube builds the marker for `GROUP BY CUBE(exprs)`: every one of the
// 2^N subsets of exprs is a grouping set.
func NewCube(exprs []sql.Expression) *GroupingSetsMarker {
	n := len(exprs)
	masks := make([]uint64, 1<<uint(n))
	for i := range masks {
		masks[i] = uint64(i)
	}
	return &GroupingSetsMarker{Exprs: exprs, Bitmasks: masks}
}

// NewRollup builds the marker for `GROUP BY ROLLUP(exprs)`: the N+1
// prefix subsets, from the full grouping down to the grand total.
func NewRollup(exprs []sql.Expression) *GroupingSetsMarker {
	n := len(exprs)
	masks := make([]uint64, n+1)
	for i := 0; i <= n; i++ {
		masks[i] = (uint64(1) << uint(i)) - 1
	}
	return &GroupingSetsMarker{Exprs: exprs, Bitmasks: masks}
}

// NewGroupingSets builds the marker for an explicit `GROUP BY GROUPING
// SETS(...)` list, given each set's member indices into exprs.
func NewGroupingSets(exprs []sql.Expression, sets [][]int) *GroupingSetsMarker {
	masks := make([]uint64, len(sets))
	for i, set := range sets {
		var m uint64
		for _, idx := range set {
			m |= 1 << uint(idx)
		}
		masks[i] = m
	}
	return &GroupingSetsMarker{Exprs: exprs, Bitmasks: masks}
}

// GroupingSets is the desugared-but-not-yet-Expanded intermediate form
// spec.md §4.G names explicitly: Aggregate([Cube/Rollup(exprs)], aggs,
// child) first becomes GroupingSets(bitmasks, exprs, child, aggs), which
// resolveGroupingSets then lowers into Expand+Aggregate once every
// expression is resolved.
type GroupingSets struct {
	UnaryNode
	Bitmasks  []uint64
	Exprs     []sql.Expression
	Aggregates []sql.Expression
}

func NewGroupingSetsNode(bitmasks []uint64, exprs, aggregates []sql.Expression, child sql.Node) *GroupingSets {
	return &GroupingSets{UnaryNode{child}, bitmasks, exprs, aggregates}
}

func (g *GroupingSets) Resolved() bool {
	return g.Child.Resolved() && sql.ExpressionsResolved(g.Exprs) && sql.ExpressionsResolved(g.Aggregates)
}

func (g *GroupingSets) Expressions() []sql.Expression {
	out := append([]sql.Expression{}, g.Aggregates...)
	return append(out, g.Exprs...)
}

func (g *GroupingSets) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	want := len(g.Aggregates) + len(g.Exprs)
	if len(exprs) != want {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(exprs), want)
	}
	return &GroupingSets{g.UnaryNode, g.Bitmasks,
		append([]sql.Expression{}, exprs[len(g.Aggregates):]...),
		append([]sql.Expression{}, exprs[:len(g.Aggregates)]...)}, nil
}

func (g *GroupingSets) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(g, children...)
	if err != nil {
		return nil, err
	}
	return &GroupingSets{UnaryNode{c}, g.Bitmasks, g.Exprs, g.Aggregates}, nil
}

func (g *GroupingSets) Output() []sql.Attribute {
	out := make([]sql.Attribute, len(g.Aggregates))
	for i, e := range g.Aggregates {
		if ne, ok := e.(sql.NamedExpression); ok {
			out[i] = ne.ToAttribute()
		}
	}
	return out
}

func (g *GroupingSets) String() string {
	return fmt.Sprintf("GroupingSets(sets=%d, exprs=[%s])", len(g.Bitmasks), strings.Join(exprNames(g.Exprs), ", "))
}

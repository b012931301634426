// Package plan implements the operator variants of the logical-plan
// algebra: Project, Filter, Aggregate, Sort, Join, Union, Intersect,
// SubqueryAlias, With, WithWindowDefinition, Window, Expand, Generate,
// Pivot, GroupingSets/Cube/Rollup, InsertIntoTable, ScriptTransformation,
// LocalRelation, and the unresolved placeholders the parser hands the
// analyzer. Grounded on the teacher's sql/plan/common.go
// (UnaryNode/BinaryNode embeds) and per-operator files named the same way
// (filter.go, group_by.go, sort.go, window.go, generate.go, ...).
package plan

import "github.com/efeller/logiplan/sql"

// UnaryNode is embedded by every single-child operator; it supplies
// Children/Resolved the way the teacher's sql/plan/common.go does, leaving
// WithChildren/Output/Expressions to the embedding type.
type UnaryNode struct {
	Child sql.Node
}

func (n UnaryNode) Children() []sql.Node { return []sql.Node{n.Child} }
func (n UnaryNode) Resolved() bool       { return n.Child.Resolved() }

// BinaryNode is embedded by every two-child operator (Join, Union,
// Intersect).
type BinaryNode struct {
	Left, Right sql.Node
}

func (n BinaryNode) Children() []sql.Node { return []sql.Node{n.Left, n.Right} }
func (n BinaryNode) Resolved() bool       { return n.Left.Resolved() && n.Right.Resolved() }

// LeafNode is embedded by operators with no children (base relations,
// LocalRelation).
type LeafNode struct{}

func (LeafNode) Children() []sql.Node { return nil }
func (LeafNode) Resolved() bool       { return true }

// nillaryWithChildren is the common WithChildren body for leaf nodes.
func nillaryWithChildren(n sql.Node, children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 0)
	}
	return n, nil
}

// unaryWithChildren validates the single-child arity every UnaryNode
// embedder needs before swapping its Child.
func unaryWithChildren(n sql.Node, children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 1)
	}
	return children[0], nil
}

// binaryWithChildren validates the two-child arity every BinaryNode
// embedder needs.
func binaryWithChildren(n sql.Node, children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 2)
	}
	return nil, nil
}

// exprNames renders a slice of expressions the way operator String()
// methods join their projection/grouping lists.
func exprNames(exprs []sql.Expression) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = e.String()
	}
	return out
}

// IsUnary reports whether node has exactly one child.
func IsUnary(node sql.Node) bool { return len(node.Children()) == 1 }

// IsBinary reports whether node has exactly two children.
func IsBinary(node sql.Node) bool { return len(node.Children()) == 2 }

// Inspect walks n top-down, calling f on every node until f returns false
// for a subtree (in which case that subtree is skipped). Grounded on the
// teacher's sql/plan/inspect.go Inspect helper, used by rules that need a
// read-only search rather than a rewrite.
func Inspect(n sql.Node, f func(sql.Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, f)
	}
}

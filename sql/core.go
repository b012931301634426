// Package sql defines the plan/expression algebra the analyzer rewrites:
// tagged tree nodes with uniform traversal combinators, attribute identity,
// and the external-collaborator interfaces (catalog, config, resolver)
// the analyzer is built against.
package sql

import "fmt"

// Node is a single operator in a logical plan tree. Implementations are
// immutable; rewrites produce new trees that share unmodified children.
type Node interface {
	fmt.Stringer

	// Resolved reports whether this node, its own expressions, and all of
	// its children are fully bound.
	Resolved() bool

	// Children returns the node's child plans, in order.
	Children() []Node

	// WithChildren returns a copy of this node with its children replaced.
	// Implementations must validate the count of children supplied.
	WithChildren(children ...Node) (Node, error)

	// Expressions returns the node's own expressions (not its children's).
	Expressions() []Expression

	// WithExpressions returns a copy of this node with its expressions
	// replaced, in the same order returned by Expressions.
	WithExpressions(exprs ...Expression) (Node, error)

	// Output returns the ordered attributes this node produces.
	Output() []Attribute
}

// Expression is a single node in an expression tree.
type Expression interface {
	fmt.Stringer

	// Resolved reports whether this expression and all its children carry
	// concrete bindings and types.
	Resolved() bool

	// DataType returns the concrete type this expression evaluates to.
	// Calling DataType on an unresolved expression is undefined.
	DataType() Type

	// Nullable reports whether this expression may evaluate to NULL.
	Nullable() bool

	// Children returns the expression's child expressions, in order.
	Children() []Expression

	// WithChildren returns a copy of this expression with its children
	// replaced.
	WithChildren(children ...Expression) (Expression, error)

	// References returns the set of attributes this expression depends on,
	// transitively through its children.
	References() AttributeSet

	// Foldable reports whether this expression can be evaluated without a
	// row (i.e. it is a constant once its children are constant).
	Foldable() bool

	// Deterministic reports whether repeated evaluation with the same
	// inputs always yields the same result.
	Deterministic() bool
}

// NamedExpression is an expression that carries a name and a unique
// expression-id: the two essential variants are Alias and
// AttributeReference.
type NamedExpression interface {
	Expression
	Name() string
	ExprId() ExprId
	// ToAttribute projects this named expression down to the attribute it
	// contributes to its parent's output.
	ToAttribute() Attribute
}

// Attribute is the abstract interface for a produced column. An
// AttributeReference is the only concrete implementation in this module;
// two attributes with the same ExprId denote the same logical column.
type Attribute interface {
	NamedExpression
	Qualifier() string
	WithQualifier(qualifier string) Attribute
	WithName(name string) Attribute
	WithExprId(id ExprId) Attribute
}

// Resolvable is satisfied by both Node and Expression; used by generic
// helpers that don't care which.
type Resolvable interface {
	Resolved() bool
}

// MultiInstanceRelation tags base relations that can issue a fresh copy of
// themselves with newly-minted attribute-ids, the primitive dedupRight
// (§4.E) uses to give a self-joined or INTERSECTed relation disjoint
// output ids on its second occurrence.
type MultiInstanceRelation interface {
	Node
	NewInstance() Node
}

// ChildrenResolved reports whether every child of n is resolved.
func ChildrenResolved(n Node) bool {
	for _, c := range n.Children() {
		if !c.Resolved() {
			return false
		}
	}
	return true
}

// ExpressionsResolved reports whether every expression in the slice is
// resolved.
func ExpressionsResolved(exprs []Expression) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

// InputSet returns the union of the output attributes of n's children: the
// attributes available to n's own expressions.
func InputSet(n Node) AttributeSet {
	s := AttributeSet{}
	for _, c := range n.Children() {
		for _, a := range c.Output() {
			s[a.ExprId()] = a
		}
	}
	return s
}

// OutputSet is a convenience wrapper around Output() for building an
// AttributeSet.
func OutputSet(n Node) AttributeSet {
	return NewAttributeSet(n.Output()...)
}

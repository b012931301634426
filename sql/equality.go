package sql

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/hashstructure"
)

// equaler is implemented by node/expression types that know a cheaper way
// to compare themselves than reflect.DeepEqual.
type equaler interface {
	Equal(interface{}) bool
}

// NodesEqual reports whether a and b are identical or structurally equal,
// the comparison the Rule Executor uses to detect a fixed point (§4.B):
// "the executor compares consecutive plans by identity or structural
// equality, not by expression-ID equality". Grounded on the teacher's
// sql/analyzer/batch.go nodesEqual, extended with a hashstructure
// pre-filter (design notes §9's "implementers may memoize structural
// equality checks") so two large, unequal trees short-circuit before the
// full recursive DeepEqual walk.
func NodesEqual(a, b Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if e, ok := a.(equaler); ok {
		return e.Equal(b)
	}
	if e, ok := b.(equaler); ok {
		return e.Equal(a)
	}
	ha, errA := hashstructure.Hash(a, nil)
	hb, errB := hashstructure.Hash(b, nil)
	if errA == nil && errB == nil && ha != hb {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// SemanticStringer is implemented by expression types whose String() form
// includes non-observable detail (an expression-id) that semantic equality
// must ignore.
type SemanticStringer interface {
	SemanticString() string
}

// SemanticEquals reports whether two expressions are equal up to
// attribute-id renaming and alias-id differences, per spec.md's glossary
// entry for "semantic equality". AttributeReference and Alias implement
// SemanticStringer to strip their ExprId; every other expression type is
// compared structurally by recursing into its children, so a subtree that
// bottoms out in renamed attributes still compares equal.
func SemanticEquals(a, b Expression) bool {
	if a == nil || b == nil {
		return a == b
	}
	return SemanticString(a) == SemanticString(b)
}

// SemanticString renders e the way SemanticEquals compares it: identical
// for any two expressions that differ only in expression-ids.
func SemanticString(e Expression) string {
	if s, ok := e.(SemanticStringer); ok {
		return s.SemanticString()
	}
	children := e.Children()
	if len(children) == 0 {
		return fmt.Sprintf("%T<%s>", e, e.String())
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = SemanticString(c)
	}
	return fmt.Sprintf("%T(%s)", e, strings.Join(parts, ","))
}

// SemanticEqualsAny reports whether e is semantically equal to any member
// of candidates, used to dedup a newly-lifted aggregate expression against
// ones already present (§4.G).
func SemanticEqualsAny(e Expression, candidates []Expression) (int, bool) {
	for i, c := range candidates {
		if SemanticEquals(e, c) {
			return i, true
		}
	}
	return -1, false
}

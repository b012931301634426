package sql

import "sync/atomic"

// ExprId is a globally unique token identifying one logical column
// position in the plan graph. Two AttributeReferences with the same ExprId
// denote the same produced column.
type ExprId uint64

var exprIdCounter uint64

// NewExprId mints a fresh, globally unique expression-id. The counter is a
// single atomic source shared by every concurrent analyzer invocation in
// the process; strict monotonicity across goroutines is not guaranteed,
// only uniqueness.
func NewExprId() ExprId {
	return ExprId(atomic.AddUint64(&exprIdCounter, 1))
}

// ResetExprIdCounterForTest rewinds the process-wide id counter. Tests that
// need id-stable output call this before analyzing, matching spec.md's
// determinism note that stable-id comparisons require resetting the
// counter's starting value.
func ResetExprIdCounterForTest() {
	atomic.StoreUint64(&exprIdCounter, 0)
}

package sql

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"
)

// Error kinds, all surfaced as AnalysisException per spec.md §7. Grounded
// on the teacher's sql/errors.go and sql/analyzer/rules.go var blocks,
// which build the same style of table over gopkg.in/src-d/go-errors.v1.
var (
	ErrUnknownRelation = errors.NewKind("table or view not found: %s")

	ErrUnknownColumn = errors.NewKind("column %q could not be found in any table in scope")

	ErrAmbiguousColumn = errors.NewKind("ambiguous column name %q, it is present in all these tables: %v")

	ErrStarMisuse = errors.NewKind("invalid usage of '*' in %s")

	ErrMultipleGenerators = errors.NewKind("only one generator is allowed per select clause but found %d: %s")

	ErrGeneratorAliasArity = errors.NewKind("the number of aliases supplied in the AS clause does not match the number of columns output by the generator")

	ErrInvalidOrdinal = errors.NewKind("%s position %d is not in select list")

	ErrOrdinalOnAggregate = errors.NewKind("GROUP BY position %d refers to an expression that contains an aggregate function")

	ErrGroupingWithoutGrouping = errors.NewKind("%s is not allowed without GROUPING SETS/CUBE/ROLLUP")

	ErrWindowFrameMismatch = errors.NewKind("window function %s requires a different frame than the one that was specified")

	ErrWindowOrderMissing = errors.NewKind("window function %s requires a window ORDER BY clause")

	ErrUpCastTruncation = errors.NewKind("cannot up cast %s from %s to %s as it may truncate")

	ErrMultipleTimeWindows = errors.NewKind("multiple time window expressions would produce a cartesian product of window matches")

	ErrUndefinedWindowSpec = errors.NewKind("window specification %s is not defined")

	ErrOuterScopeMissing = errors.NewKind("could not access outer scope for inner class %s; consider lifting the class to a top level")

	ErrConvergenceFailure = errors.NewKind("exceeded max analysis iterations (%d) in batch %q")

	ErrLiftedAttributeNotGrouped = errors.NewKind("attribute %q resolved outside the select list but is not part of the GROUP BY expressions")

	ErrPivotNoOp = errors.NewKind("aggregate function %s does not reference the pivot column and cannot be pivoted")

	ErrInvalidNodeType = errors.NewKind("%s: invalid node of type: %T")

	ErrInAnalysis = errors.NewKind("error in analysis: %s")

	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

	ErrMissingDeserializerField = errors.NewKind("no such struct field %s in deserializer input")

	ErrNoSuchTable = errors.NewKind("table not found: %s")

	ErrNoSuchFunction = errors.NewKind("function %s not found")
)

// AnalysisException is the single diagnostic type spec.md §6 mandates for
// all user-facing analyzer errors: a message plus an optional plan
// position (the node being analyzed when the failure was detected).
type AnalysisException struct {
	Cause error
	Plan  Node
}

// NewAnalysisException wraps cause with the plan node under analysis when
// the failure was raised, if known.
func NewAnalysisException(cause error, plan Node) *AnalysisException {
	return &AnalysisException{Cause: cause, Plan: plan}
}

func (e *AnalysisException) Error() string {
	if e.Plan != nil {
		return fmt.Sprintf("%s\n%s", e.Cause.Error(), e.Plan.String())
	}
	return e.Cause.Error()
}

func (e *AnalysisException) Unwrap() error { return e.Cause }

// Is supports errors.Is against the wrapped error-kind sentinels.
func (e *AnalysisException) Is(target error) bool {
	return e.Cause == target
}

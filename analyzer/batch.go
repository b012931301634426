// Package analyzer implements the fixed-point rule executor and the full
// rule-batch sequence that rewrites an unresolved logical plan into a
// resolved one: Substitution, Resolution (structural rules + external
// type coercion + extension rules), Nondeterministic, UDF, and Cleanup.
// Grounded on the teacher's sql/analyzer package: same Batch/Rule shape,
// same Analyzer.Analyze driving an ordered list of batches.
package analyzer

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// Strategy selects how many passes a Batch's rules get before the
// executor moves on.
type Strategy int

const (
	// Once caps a batch at a single full pass over its rules.
	Once Strategy = iota
	// FixedPoint re-runs a batch's rules until a pass makes no change, up
	// to MaxIterations passes.
	FixedPoint
)

// Rule is a single named plan-to-plan rewrite.
type Rule struct {
	Name  string
	Apply func(ctx *sql.Context, plan sql.Node) (sql.Node, error)
}

// Batch is a named, ordered list of rules plus a convergence policy
// (§4.B).
type Batch struct {
	Name          string
	Strategy      Strategy
	MaxIterations int
	Rules         []Rule
}

// Eval repeatedly applies b's rules in order to plan until a full pass
// makes no change (FixedPoint) or the iteration cap is hit; Once caps at
// exactly one pass regardless of MaxIterations. Grounded on the teacher's
// sql/analyzer/batch.go Batch.Eval/evalOnce.
func (b *Batch) Eval(ctx *sql.Context, plan sql.Node) (sql.Node, error) {
	maxIter := b.MaxIterations
	if b.Strategy == Once || maxIter <= 0 {
		maxIter = 1
	}
	current := plan
	for i := 0; i < maxIter; i++ {
		next, err := b.evalOnce(ctx, current)
		if err != nil {
			return nil, err
		}
		unchanged := sql.NodesEqual(current, next)
		current = next
		if unchanged {
			return current, nil
		}
		if b.Strategy == Once {
			return current, nil
		}
	}
	if b.Strategy == FixedPoint {
		return current, sql.NewAnalysisException(sql.ErrConvergenceFailure.New(maxIter, b.Name), current)
	}
	return current, nil
}

// evalOnce applies every rule in b.Rules in order, once, threading the
// rewritten plan from one rule into the next.
func (b *Batch) evalOnce(ctx *sql.Context, plan sql.Node) (sql.Node, error) {
	current := plan
	for _, r := range b.Rules {
		span, rctx := ctx.Span(fmt.Sprintf("rule.%s", r.Name), nil)
		next, err := r.Apply(rctx, current)
		span.Finish()
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// CheckAnalysis is the terminal validation pass (§2/§3): it asserts every
// invariant 1-8 holds over the fully-batched plan and raises the first
// diagnostic it finds. Since the Resolution batch's speculative rules
// (ResolveReferences, ResolveMissingReferences, ResolveSubqueries)
// swallow their own AnalysisExceptions and simply leave a node
// unresolved (§4's propagation policy), this is also where a query that
// never converged produces its actual error message. Grounded on the
// teacher's sql/analyzer/check_analysis.go.
func CheckAnalysis(ctx *sql.Context, p sql.Node) error {
	return checkNode(p)
}

func checkNode(n sql.Node) error {
	for _, c := range n.Children() {
		if err := checkNode(c); err != nil {
			return err
		}
	}

	if err := checkNotInlinedScope(n); err != nil {
		return err
	}
	if err := checkExpressionsResolved(n); err != nil {
		return err
	}
	if !n.Resolved() {
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("plan is not resolved: "+n.String()), n)
	}
	if err := checkInputCoverage(n); err != nil {
		return err
	}
	if err := checkAggregatePlacement(n); err != nil {
		return err
	}
	if err := checkGeneratorPlacement(n); err != nil {
		return err
	}
	if err := checkWindowPlacement(n); err != nil {
		return err
	}
	return nil
}

// checkNotInlinedScope asserts invariant 8: CTE/window-definition scoping
// nodes must already be erased by the Substitution batch.
func checkNotInlinedScope(n sql.Node) error {
	switch n.(type) {
	case *plan.With:
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("With node survived past the Substitution batch"), n)
	case *plan.WithWindowDefinition:
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("WithWindowDefinition node survived past the Substitution batch"), n)
	case *plan.UnresolvedRelation:
		return sql.NewAnalysisException(sql.ErrUnknownRelation.New(n.String()), n)
	}
	return nil
}

// checkExpressionsResolved asserts invariants 1 and 7 with a specific
// diagnostic for whichever Unresolved* placeholder is still reachable.
func checkExpressionsResolved(n sql.Node) error {
	for _, e := range n.Expressions() {
		if err := checkExprResolved(n, e); err != nil {
			return err
		}
	}
	return nil
}

func checkExprResolved(n sql.Node, e sql.Expression) error {
	switch x := e.(type) {
	case *expression.UnresolvedAttribute:
		return sql.NewAnalysisException(sql.ErrUnknownColumn.New(x.String()), n)
	case *expression.UnresolvedFunction:
		return sql.NewAnalysisException(sql.ErrNoSuchFunction.New(x.Id), n)
	case *expression.UnresolvedGenerator:
		return sql.NewAnalysisException(sql.ErrNoSuchFunction.New(x.Id), n)
	case *expression.UnresolvedAlias:
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("unresolved alias: "+x.String()), n)
	case *expression.MultiAlias:
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("unresolved alias: "+x.String()), n)
	case *expression.UnresolvedExtractValue:
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("unresolved field access: "+x.String()), n)
	case *expression.UnresolvedWindowExpression:
		return sql.NewAnalysisException(sql.ErrUndefinedWindowSpec.New(x.WindowRef), n)
	case *expression.Star:
		return sql.NewAnalysisException(sql.ErrStarMisuse.New(n.String()), n)
	case *expression.UnresolvedDeserializer:
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("unresolved deserializer"), n)
	}
	for _, c := range e.Children() {
		if err := checkExprResolved(n, c); err != nil {
			return err
		}
	}
	return nil
}

// checkInputCoverage asserts invariant 2: every attribute an operator's
// own expressions reference must come from one of its children (or, for
// Window's own WindowExpressions referencing its PartitionSpec/OrderSpec
// output, itself - InputSet already folds in a node's LeafNode-produced
// attributes where relevant, so a plain InputSet comparison suffices
// here).
func checkInputCoverage(n sql.Node) error {
	exprs := n.Expressions()
	if len(exprs) == 0 {
		return nil
	}
	refs := sql.AttributeSet{}
	for _, e := range exprs {
		refs = refs.Union(e.References())
	}
	if refs.IsEmpty() {
		return nil
	}
	available := sql.InputSet(n)
	for _, a := range refs.ToSlice() {
		if !available.ContainsId(a.ExprId()) {
			return sql.NewAnalysisException(sql.ErrUnknownColumn.New(a.Name()), n)
		}
	}
	return nil
}

// checkAggregatePlacement asserts invariant 4: an AggregateFunction may
// only appear inside an Aggregate operator's own aggregate list, or bare
// inside a WindowExpression's Fn slot.
func checkAggregatePlacement(n sql.Node) error {
	switch node := n.(type) {
	case *plan.Aggregate:
		return nil
	case *plan.Window:
		for _, e := range node.WindowExpressions {
			we, ok := e.(*expression.WindowExpression)
			if !ok {
				continue
			}
			for _, c := range we.Fn.Children() {
				if err := forbidAggregate(n, c); err != nil {
					return err
				}
			}
		}
		for _, e := range node.PartitionSpec {
			if err := forbidAggregate(n, e); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, e := range n.Expressions() {
			if err := forbidAggregate(n, e); err != nil {
				return err
			}
		}
		return nil
	}
}

func forbidAggregate(n sql.Node, e sql.Expression) error {
	if _, ok := e.(*expression.AggregateExpression); ok {
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("aggregate function found outside an Aggregate or Window operator: "+e.String()), n)
	}
	if _, ok := e.(expression.AggregateFunction); ok {
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("aggregate function found outside an Aggregate or Window operator: "+e.String()), n)
	}
	for _, c := range e.Children() {
		if err := forbidAggregate(n, c); err != nil {
			return err
		}
	}
	return nil
}

// checkGeneratorPlacement asserts invariant 5: a Generator may only
// appear as a Generate operator's own Generator field.
func checkGeneratorPlacement(n sql.Node) error {
	if _, ok := n.(*plan.Generate); ok {
		return nil
	}
	for _, e := range n.Expressions() {
		if err := forbidGenerator(n, e); err != nil {
			return err
		}
	}
	return nil
}

func forbidGenerator(n sql.Node, e sql.Expression) error {
	if _, ok := e.(expression.Generator); ok {
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("generator found outside a Generate operator: "+e.String()), n)
	}
	for _, c := range e.Children() {
		if err := forbidGenerator(n, c); err != nil {
			return err
		}
	}
	return nil
}

// checkWindowPlacement asserts invariant 6: a WindowExpression may only
// appear inside a Window operator's own WindowExpressions.
func checkWindowPlacement(n sql.Node) error {
	if _, ok := n.(*plan.Window); ok {
		return nil
	}
	for _, e := range n.Expressions() {
		if err := forbidWindowExpression(n, e); err != nil {
			return err
		}
	}
	return nil
}

func forbidWindowExpression(n sql.Node, e sql.Expression) error {
	if _, ok := e.(*expression.WindowExpression); ok {
		return sql.NewAnalysisException(sql.ErrInAnalysis.New("window expression found outside a Window operator: "+e.String()), n)
	}
	for _, c := range e.Children() {
		if err := forbidWindowExpression(n, c); err != nil {
			return err
		}
	}
	return nil
}

package analyzer

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveGroupingSets desugars GROUP BY CUBE/ROLLUP/GROUPING SETS into an
// Expand+Aggregate pair, and grounds grouping()/grouping_id() calls in the
// synthetic grouping-id column Expand produces (§4.G). The Resolution
// batch's fixed point drives this to completion in two steps: an
// Aggregate carrying a bare GroupingSetsMarker first becomes a
// plan.GroupingSets node (mirroring spec.md's literal "Aggregate([Cube(
// exprs)], aggs, child) becomes GroupingSets(...)"); once every grouping
// expression is resolved, that node is lowered into Expand+Aggregate.
// Grounded on the teacher's sql/analyzer/resolve_grouping.go
// (ResolveGroupingAnalytics) desugaring shape.
func ResolveGroupingSets(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		switch node := n.(type) {
		case *plan.Aggregate:
			if len(node.GroupingExpressions) != 1 {
				return checkNoStrayGroupingCalls(node)
			}
			marker, ok := node.GroupingExpressions[0].(*plan.GroupingSetsMarker)
			if !ok {
				return checkNoStrayGroupingCalls(node)
			}
			return plan.NewGroupingSetsNode(marker.Bitmasks, marker.Exprs, node.AggregateExpressions, node.Child), nil
		case *plan.GroupingSets:
			if !sql.ExpressionsResolved(node.Exprs) {
				return node, nil
			}
			return desugarGroupingSets(node)
		default:
			return checkNoStrayGroupingCalls(node)
		}
	})
}

// checkNoStrayGroupingCalls rejects a grouping()/grouping_id() call found
// anywhere in n's own expressions: by the time this default path runs, any
// legitimate use has already been desugared away by desugarGroupingSets.
func checkNoStrayGroupingCalls(n sql.Node) (sql.Node, error) {
	for _, e := range n.Expressions() {
		if name, found := findGroupingCall(e); found {
			return nil, sql.NewAnalysisException(sql.ErrGroupingWithoutGrouping.New(name), n)
		}
	}
	return n, nil
}

func findGroupingCall(e sql.Expression) (string, bool) {
	if uf, ok := e.(*expression.UnresolvedFunction); ok {
		switch normalizeGroupingName(uf.Id) {
		case "grouping", "grouping_id", "grouping__id":
			return uf.Id, true
		}
	}
	for _, c := range e.Children() {
		if name, found := findGroupingCall(c); found {
			return name, true
		}
	}
	return "", false
}

func normalizeGroupingName(id string) string {
	return strings.ToLower(id)
}

// desugarGroupingSets lowers a fully-expression-resolved GroupingSets node
// into Expand+Aggregate per spec.md §4.G: alias every grouping expression,
// build the Expand's per-bitmask rows (a grouping expression's alias where
// its bit is set, NULL otherwise, plus every other attribute the
// aggregates reference passed through unchanged), append the synthetic
// grouping-id column, rewrite the aggregate expressions to read the
// Expand-produced attributes and to bind grouping()/grouping_id(), and
// emit the final Aggregate grouping on every Expand output attribute.
func desugarGroupingSets(node *plan.GroupingSets) (sql.Node, error) {
	n := len(node.Exprs)

	aliases := make([]*expression.Alias, n)
	groupingAttrs := make([]sql.Attribute, n)
	for i, e := range node.Exprs {
		aliases[i] = expression.NewAlias(e, nameOfGroupingExpr(e))
		nullable := e.Nullable() || !presentInEveryBitmask(i, node.Bitmasks)
		groupingAttrs[i] = expression.NewAttributeReferenceWithId(
			aliases[i].Name(), e.DataType(), nullable, "", aliases[i].ExprId())
	}

	groupingIds := sql.AttributeSet{}
	for i, e := range node.Exprs {
		if ne, ok := e.(sql.NamedExpression); ok {
			_ = i
			groupingIds[ne.ExprId()] = ne.ToAttribute()
		}
	}

	refs := sql.AttributeSet{}
	for _, agg := range node.Aggregates {
		refs = refs.Union(agg.References())
	}
	var passthrough []sql.Attribute
	for _, a := range node.Child.Output() {
		if refs.ContainsId(a.ExprId()) && !groupingIds.ContainsId(a.ExprId()) {
			passthrough = append(passthrough, a)
		}
	}

	groupingIdAttr := expression.NewAttributeReference("grouping_id", sql.BigIntType, false, "")

	width := n + len(passthrough) + 1
	rows := make([][]sql.Expression, len(node.Bitmasks))
	for r, mask := range node.Bitmasks {
		row := make([]sql.Expression, width)
		for i := range aliases {
			if mask&(uint64(1)<<uint(i)) != 0 {
				row[i] = aliases[i].Child
			} else {
				row[i] = expression.NewLiteral(nil, node.Exprs[i].DataType())
			}
		}
		for j, a := range passthrough {
			row[n+j] = a
		}
		row[width-1] = expression.NewLiteral(int64(mask), sql.BigIntType)
		rows[r] = row
	}

	expandOutputs := make([]sql.Attribute, 0, width)
	expandOutputs = append(expandOutputs, groupingAttrs...)
	expandOutputs = append(expandOutputs, passthrough...)
	expandOutputs = append(expandOutputs, groupingIdAttr)

	expand := plan.NewExpand(rows, expandOutputs, node.Child)

	rewritten := make([]sql.Expression, len(node.Aggregates))
	for i, agg := range node.Aggregates {
		ra, err := rewriteAggregateForGroupingSets(agg, node.Exprs, groupingAttrs, groupingIdAttr)
		if err != nil {
			return nil, err
		}
		rewritten[i] = ra
	}

	finalGrouping := make([]sql.Expression, 0, n+1)
	for _, a := range groupingAttrs {
		finalGrouping = append(finalGrouping, a)
	}
	finalGrouping = append(finalGrouping, groupingIdAttr)

	return plan.NewAggregate(finalGrouping, rewritten, expand), nil
}

func nameOfGroupingExpr(e sql.Expression) string {
	if ne, ok := e.(sql.NamedExpression); ok {
		return ne.Name()
	}
	return e.String()
}

func presentInEveryBitmask(i int, bitmasks []uint64) bool {
	bit := uint64(1) << uint(i)
	for _, m := range bitmasks {
		if m&bit == 0 {
			return false
		}
	}
	return true
}

// rewriteAggregateForGroupingSets replaces every occurrence of a grouping
// expression inside agg with the Expand-produced attribute that now
// carries its (possibly nulled) value, and binds grouping(col)/
// grouping_id(...)/the deprecated grouping__id() to the synthetic
// grouping-id column.
func rewriteAggregateForGroupingSets(agg sql.Expression, exprs []sql.Expression, groupingAttrs []sql.Attribute, groupingIdAttr sql.Attribute) (sql.Expression, error) {
	return sql.ExprTransformUp(agg, func(e sql.Expression) (sql.Expression, error) {
		if uf, ok := e.(*expression.UnresolvedFunction); ok {
			switch normalizeGroupingName(uf.Id) {
			case "grouping":
				if len(uf.Args) != 1 {
					return nil, sql.ErrGroupingWithoutGrouping.New(uf.Id)
				}
				idx, found := matchGroupingExpr(uf.Args[0], exprs)
				if !found {
					return nil, sql.ErrGroupingWithoutGrouping.New(uf.Id)
				}
				n := len(exprs)
				shift := expression.NewShiftRight(groupingIdAttr, expression.NewLiteral(int64(n-1-idx), sql.IntType))
				masked := expression.NewBitwiseAnd(shift, expression.NewLiteral(int64(1), sql.IntType))
				return expression.NewCast(masked, sql.ByteType), nil
			case "grouping_id":
				return groupingIdAttr, nil
			case "grouping__id":
				logrus.StandardLogger().Warn("grouping__id is deprecated; use grouping_id(...) instead")
				return groupingIdAttr, nil
			}
		}

		if idx, found := matchGroupingExpr(e, exprs); found {
			return groupingAttrs[idx], nil
		}
		return e, nil
	})
}

func matchGroupingExpr(e sql.Expression, exprs []sql.Expression) (int, bool) {
	if !e.Resolved() {
		return -1, false
	}
	for i, ge := range exprs {
		if sql.SemanticEquals(e, ge) {
			return i, true
		}
	}
	return -1, false
}

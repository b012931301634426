package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ResolveTimeWindows desugars a single TimeWindow expression found in a
// unary operator's own expressions into an Expand+Filter pair inserted
// below that operator, substituting the TimeWindow's use sites by the
// Expand-produced `window` struct attribute (§4.J). A sliding window can
// match more than one bucket per input row, so Expand emits one output row
// per candidate bucket index i in [0, maxNumOverlapping]; Filter then
// drops the buckets a row does not actually fall in. More than one
// distinct TimeWindow expression surfacing in the same operator would
// multiply that fan-out into a cartesian product, so it is rejected
// outright. Grounded on the teacher's sql/analyzer/resolve_window_ranges.go
// desugar-via-Expand shape, reusing the same Expand primitive
// grouping_sets.go lowers CUBE/ROLLUP into.
func ResolveTimeWindows(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		children := n.Children()
		if len(children) != 1 {
			return n, nil
		}
		child := children[0]

		exprs := n.Expressions()
		if len(exprs) == 0 {
			return n, nil
		}

		tw, err := findSoleTimeWindow(exprs, n)
		if err != nil {
			return nil, err
		}
		if tw == nil || !tw.TimeColumn.Resolved() {
			return n, nil
		}

		windowAttr := expression.NewAttributeReference("window", tw.DataType(), false, "")

		maxNum := tw.MaxNumOverlapping()
		passthrough := attrsToExprs(child.Output())
		rows := make([][]sql.Expression, 0, maxNum+1)
		for i := int64(0); i <= maxNum; i++ {
			row := make([]sql.Expression, 0, 1+len(passthrough))
			row = append(row, timeWindowStructExpr(tw, maxNum, i))
			row = append(row, passthrough...)
			rows = append(rows, row)
		}

		outputAttrs := append([]sql.Attribute{windowAttr}, child.Output()...)
		expand := plan.NewExpand(rows, outputAttrs, child)

		startField := sql.StructField{Name: "start", Type: sql.TimestampType}
		endField := sql.StructField{Name: "end", Type: sql.TimestampType}
		cond := expression.NewAnd(
			expression.NewGreaterThanOrEqual(tw.TimeColumn, expression.NewGetStructField(windowAttr, 0, startField)),
			expression.NewLessThan(tw.TimeColumn, expression.NewGetStructField(windowAttr, 1, endField)),
		)
		filter := plan.NewFilter(cond, expand)

		newExprs := make([]sql.Expression, len(exprs))
		for i, e := range exprs {
			ne, rerr := sql.ExprTransformUp(e, func(x sql.Expression) (sql.Expression, error) {
				if x == tw {
					return windowAttr, nil
				}
				return x, nil
			})
			if rerr != nil {
				return nil, rerr
			}
			newExprs[i] = ne
		}

		newNode, err := n.WithExpressions(newExprs...)
		if err != nil {
			return nil, err
		}
		return newNode.WithChildren(filter)
	})
}

// findSoleTimeWindow collects every distinct TimeWindow expression across
// exprs and returns it, erroring if more than one distinct window would
// otherwise fan out this operator's Expand into a cartesian product.
func findSoleTimeWindow(exprs []sql.Expression, n sql.Node) (*expression.TimeWindow, error) {
	var found []*expression.TimeWindow
	for _, e := range exprs {
		for _, tw := range expression.CollectTimeWindows(e) {
			fresh := true
			for _, existing := range found {
				if existing == tw || sql.SemanticEquals(existing, tw) {
					fresh = false
					break
				}
			}
			if fresh {
				found = append(found, tw)
			}
		}
	}
	if len(found) == 0 {
		return nil, nil
	}
	if len(found) > 1 {
		return nil, sql.NewAnalysisException(sql.ErrMultipleTimeWindows.New(), n)
	}
	return found[0], nil
}

// timeWindowStructExpr builds the i-th candidate bucket's struct(start,
// end) value per spec.md §4.J step 2:
//
//	windowStart_i = (ceil((ts-startTime)/slide) + i - maxNumOverlapping) * slide + startTime
//	windowEnd_i   = windowStart_i + windowDuration
func timeWindowStructExpr(tw *expression.TimeWindow, maxNum, i int64) sql.Expression {
	startTime := expression.NewLiteral(tw.StartTime, sql.BigIntType)
	slide := expression.NewLiteral(tw.SlideDuration, sql.BigIntType)
	duration := expression.NewLiteral(tw.WindowDuration, sql.BigIntType)

	ceilPart := expression.NewCeilDiv(expression.NewMinus(tw.TimeColumn, startTime), slide)
	shifted := expression.NewMinus(
		expression.NewPlus(ceilPart, expression.NewLiteral(i, sql.BigIntType)),
		expression.NewLiteral(maxNum, sql.BigIntType),
	)
	windowStart := expression.NewPlus(expression.NewMult(shifted, slide), startTime)
	windowEnd := expression.NewPlus(windowStart, duration)

	return expression.NewCreateStruct([]string{"start", "end"}, []sql.Expression{windowStart, windowEnd})
}

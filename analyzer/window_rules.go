package analyzer

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// ExtractWindowExpressions splits a Project or Aggregate list that mixes
// window-bearing entries with regular ones into a stack of dedicated
// Window operators feeding a trimmed-down copy of the original node,
// topped by a Project that restores the original output shape (§4.I).
// Every non-foldable, non-named expression feeding a window function (or
// its partition/order spec) is lifted out into the regular list first, so
// the Window operator only ever sees attribute references in those
// slots. Filter(cond, Aggregate(...windows...)) is special-cased so the
// Filter (HAVING) keeps filtering grouped rows before the window
// functions run over them, per spec.md's explicit ordering note.
// TransformDown is used deliberately: once a match rewrites into
// Project(..., Window(..., [Filter(...),] Aggregate/Project(regular, child)))
// the newly built regular node no longer contains a WindowExpression, so
// recursing into it does not re-trigger the rule. Grounded on the
// teacher's window-splitting rules in sql/analyzer/resolve_window*.go for
// the overall shape.
func ExtractWindowExpressions(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformDown(p, func(n sql.Node) (sql.Node, error) {
		if f, ok := n.(*plan.Filter); ok {
			if agg, ok := f.Child.(*plan.Aggregate); ok && anyContainsWindow(agg.AggregateExpressions) {
				return extractFromAggregateUnderFilter(f, agg)
			}
			return n, nil
		}

		switch node := n.(type) {
		case *plan.Project:
			if !anyContainsWindow(node.ProjectList) {
				return n, nil
			}
			return extractWindows(node.ProjectList, node.Child, func(list []sql.Expression, child sql.Node) sql.Node {
				return plan.NewProject(list, child)
			})
		case *plan.Aggregate:
			if !anyContainsWindow(node.AggregateExpressions) {
				return n, nil
			}
			return extractWindows(node.AggregateExpressions, node.Child, func(list []sql.Expression, child sql.Node) sql.Node {
				return plan.NewAggregate(node.GroupingExpressions, list, child)
			})
		default:
			return n, nil
		}
	})
}

func anyContainsWindow(list []sql.Expression) bool {
	for _, e := range list {
		if containsWindowExpression(e) {
			return true
		}
	}
	return false
}

func containsWindowExpression(e sql.Expression) bool {
	if _, ok := e.(*expression.WindowExpression); ok {
		return true
	}
	for _, c := range e.Children() {
		if containsWindowExpression(c) {
			return true
		}
	}
	return false
}

// extractWindows partitions list into regular and window-bearing
// expressions, rebuilds the owning node (via rebuild) over just the
// regular ones, stacks Window operators for the window-bearing ones, and
// wraps the whole thing in a Project restoring the original output.
func extractWindows(list []sql.Expression, child sql.Node, rebuild func([]sql.Expression, sql.Node) sql.Node) (sql.Node, error) {
	regular, windowBearing, origAttrs, err := splitWindowExpressions(list)
	if err != nil {
		return nil, err
	}
	inner := rebuild(regular, child)
	withWindows, err := addWindowStack(windowBearing, inner)
	if err != nil {
		return nil, err
	}
	return plan.NewProject(attrsToExprs(origAttrs), withWindows), nil
}

func extractFromAggregateUnderFilter(f *plan.Filter, agg *plan.Aggregate) (sql.Node, error) {
	regular, windowBearing, origAttrs, err := splitWindowExpressions(agg.AggregateExpressions)
	if err != nil {
		return nil, err
	}
	newAgg := plan.NewAggregate(agg.GroupingExpressions, regular, agg.Child)
	newFilter := plan.NewFilter(f.Condition, newAgg)
	withWindows, err := addWindowStack(windowBearing, newFilter)
	if err != nil {
		return nil, err
	}
	return plan.NewProject(attrsToExprs(origAttrs), withWindows), nil
}

// splitWindowExpressions separates list into non-window entries (left
// untouched) and window-bearing entries (with their window functions'
// non-foldable, non-named argument/partition/order children lifted into
// the regular list as fresh `_w<i>` aliases), recording each original
// entry's output attribute in order so the caller can rebuild the
// original projection shape afterward.
func splitWindowExpressions(list []sql.Expression) (regular, windowBearing []sql.Expression, origAttrs []sql.Attribute, err error) {
	liftCounter := 0
	origAttrs = make([]sql.Attribute, len(list))

	for i, e := range list {
		if !containsWindowExpression(e) {
			regular = append(regular, e)
			origAttrs[i] = namedAttr(e)
			continue
		}

		lifted, lerr := sql.ExprTransformUp(e, func(x sql.Expression) (sql.Expression, error) {
			we, ok := x.(*expression.WindowExpression)
			if !ok {
				return x, nil
			}
			return liftWindowChildren(we, &liftCounter, &regular)
		})
		if lerr != nil {
			return nil, nil, nil, lerr
		}
		windowBearing = append(windowBearing, lifted)
		origAttrs[i] = namedAttr(lifted)
	}
	return regular, windowBearing, origAttrs, nil
}

func namedAttr(e sql.Expression) sql.Attribute {
	if ne, ok := e.(sql.NamedExpression); ok {
		return ne.ToAttribute()
	}
	return nil
}

// liftWindowChildren replaces every non-foldable, non-named child of we's
// function, partition spec, and order spec with a fresh `_w<i>` attribute
// reference, appending the lifted alias to regular. This also covers a
// windowed aggregate's own argument, since it is simply one of Fn's
// children.
func liftWindowChildren(we *expression.WindowExpression, counter *int, regular *[]sql.Expression) (*expression.WindowExpression, error) {
	newPartition := make([]sql.Expression, len(we.Spec.PartitionSpec))
	for i, part := range we.Spec.PartitionSpec {
		newPartition[i] = liftIfNeeded(part, counter, regular)
	}
	newOrder := make([]expression.SortOrder, len(we.Spec.OrderSpec))
	for i, o := range we.Spec.OrderSpec {
		newOrder[i] = expression.SortOrder{Column: liftIfNeeded(o.Column, counter, regular), Ascending: o.Ascending, NullsFirst: o.NullsFirst}
	}

	newFn := we.Fn
	if children := we.Fn.Children(); len(children) > 0 {
		newChildren := make([]sql.Expression, len(children))
		changed := false
		for i, c := range children {
			lc := liftIfNeeded(c, counter, regular)
			newChildren[i] = lc
			if lc != c {
				changed = true
			}
		}
		if changed {
			nf, err := we.Fn.WithChildren(newChildren...)
			if err != nil {
				return nil, err
			}
			newFn = nf
		}
	}

	return &expression.WindowExpression{
		Fn:   newFn,
		Spec: expression.WindowSpec{PartitionSpec: newPartition, OrderSpec: newOrder, Frame: we.Spec.Frame},
	}, nil
}

// liftIfNeeded lifts e into regular as a `_w<i>` alias and returns the
// alias's attribute, unless e is already foldable (a literal) or already
// a named reference, in which case it is left inline.
func liftIfNeeded(e sql.Expression, counter *int, regular *[]sql.Expression) sql.Expression {
	if e.Foldable() {
		return e
	}
	if _, ok := e.(sql.NamedExpression); ok {
		return e
	}
	*counter++
	al := expression.NewAlias(e, fmt.Sprintf("_w%d", *counter))
	*regular = append(*regular, al)
	return al.ToAttribute()
}

// windowGroup is one (partitionSpec, orderSpec) bucket of window-bearing
// expressions, materialized as a single Window operator per invariant 6
// (§3): a Window carries exactly one partition/order pair.
type windowGroup struct {
	partition []sql.Expression
	order     []expression.SortOrder
	exprs     []sql.Expression
}

// addWindowStack groups entries by (partitionSpec, orderSpec) in
// first-seen order and stacks one Window operator per group on top of
// child, naming a bare window entry `_we<i>` since Window.Output derives
// column names from NamedExpressions.
func addWindowStack(entries []sql.Expression, child sql.Node) (sql.Node, error) {
	var groups []*windowGroup
	index := map[string]*windowGroup{}
	bareCounter := 0

	for _, e := range entries {
		we, ok := findWindowExpression(e)
		if !ok {
			return nil, sql.ErrInAnalysis.New(fmt.Sprintf("window-bearing expression %s lost its WindowExpression during lifting", e))
		}

		key := windowSpecKey(we.Spec)
		g, exists := index[key]
		if !exists {
			g = &windowGroup{partition: we.Spec.PartitionSpec, order: we.Spec.OrderSpec}
			index[key] = g
			groups = append(groups, g)
		}

		named := e
		if _, ok := e.(sql.NamedExpression); !ok {
			bareCounter++
			named = expression.NewAlias(e, fmt.Sprintf("_we%d", bareCounter))
		}
		g.exprs = append(g.exprs, named)
	}

	current := child
	for _, g := range groups {
		current = plan.NewWindow(g.exprs, g.partition, g.order, current)
	}
	return current, nil
}

func findWindowExpression(e sql.Expression) (*expression.WindowExpression, bool) {
	if we, ok := e.(*expression.WindowExpression); ok {
		return we, true
	}
	for _, c := range e.Children() {
		if we, ok := findWindowExpression(c); ok {
			return we, true
		}
	}
	return nil, false
}

func windowSpecKey(spec expression.WindowSpec) string {
	parts := make([]string, 0, len(spec.PartitionSpec)+len(spec.OrderSpec))
	for _, p := range spec.PartitionSpec {
		parts = append(parts, p.String())
	}
	parts = append(parts, "|")
	for _, o := range spec.OrderSpec {
		parts = append(parts, o.String())
	}
	return strings.Join(parts, ",")
}

// ResolveWindowFrame fills in or validates each WindowExpression's frame
// (§4.I): a FramelessOffsetFunction (LEAD/LAG) mandates its own frame,
// rejecting a conflicting explicit one; otherwise an unspecified frame
// defaults to RANGE UNBOUNDED PRECEDING..CURRENT ROW when an order spec
// exists, or ROWS UNBOUNDED PRECEDING..UNBOUNDED FOLLOWING otherwise.
func ResolveWindowFrame(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		win, ok := n.(*plan.Window)
		if !ok {
			return n, nil
		}

		exprs := win.Expressions()
		changed := false
		for i, e := range win.WindowExpressions {
			we, ok := e.(*expression.WindowExpression)
			if !ok {
				continue
			}
			frame, err := resolveFrameFor(we)
			if err != nil {
				return nil, sql.NewAnalysisException(err, n)
			}
			if frame == we.Spec.Frame {
				continue
			}
			exprs[i] = &expression.WindowExpression{Fn: we.Fn, Spec: expression.WindowSpec{
				PartitionSpec: we.Spec.PartitionSpec, OrderSpec: we.Spec.OrderSpec, Frame: frame,
			}}
			changed = true
		}
		if !changed {
			return n, nil
		}
		return win.WithExpressions(exprs...)
	})
}

func resolveFrameFor(we *expression.WindowExpression) (*expression.WindowFrame, error) {
	if fo, ok := we.Fn.(expression.FramelessOffsetFunction); ok {
		mandated := fo.MandatedFrame()
		if we.Spec.Frame != nil && *we.Spec.Frame != *mandated {
			return nil, sql.ErrWindowFrameMismatch.New(we.Fn.String())
		}
		return mandated, nil
	}
	if we.Spec.Frame != nil {
		return we.Spec.Frame, nil
	}
	if len(we.Spec.OrderSpec) > 0 {
		return &expression.WindowFrame{Type: expression.RangeFrame, Lower: expression.UnboundedPreceding, Upper: expression.CurrentRow}, nil
	}
	return &expression.WindowFrame{Type: expression.RowsFrame, Lower: expression.UnboundedPreceding, Upper: expression.UnboundedFollowing}, nil
}

// ResolveWindowOrder enforces that a RankLikeFunction carries an order
// spec, injecting its columns into the function itself so it can break
// ties deterministically (§4.I).
func ResolveWindowOrder(ctx *sql.Context, p sql.Node) (sql.Node, error) {
	return sql.TransformUp(p, func(n sql.Node) (sql.Node, error) {
		win, ok := n.(*plan.Window)
		if !ok {
			return n, nil
		}

		exprs := win.Expressions()
		changed := false
		for i, e := range win.WindowExpressions {
			we, ok := e.(*expression.WindowExpression)
			if !ok {
				continue
			}
			rl, ok := we.Fn.(expression.RankLikeFunction)
			if !ok || !rl.RequiresOrder() {
				continue
			}
			if len(we.Spec.OrderSpec) == 0 {
				return nil, sql.NewAnalysisException(sql.ErrWindowOrderMissing.New(we.Fn.String()), n)
			}
			exprs[i] = &expression.WindowExpression{Fn: rl.WithOrder(we.Spec.OrderSpec), Spec: we.Spec}
			changed = true
		}
		if !changed {
			return n, nil
		}
		return win.WithExpressions(exprs...)
	})
}

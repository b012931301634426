package expression

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
)

// FrameType distinguishes a ROWS frame (physical offsets) from a RANGE
// frame (logical offsets over the order key), per §4.I.
type FrameType int

const (
	RowsFrame FrameType = iota
	RangeFrame
)

// FrameBoundary is one edge of a window frame: an offset from
// CurrentRow, or one of the Unbounded/CurrentRow sentinels.
type FrameBoundary struct {
	Unbounded  bool
	CurrentRow bool
	Offset     int
}

var (
	UnboundedPreceding = FrameBoundary{Unbounded: true, Offset: -1}
	UnboundedFollowing = FrameBoundary{Unbounded: true, Offset: 1}
	CurrentRow         = FrameBoundary{CurrentRow: true}
)

func (b FrameBoundary) String() string {
	switch {
	case b.Unbounded && b.Offset < 0:
		return "UNBOUNDED PRECEDING"
	case b.Unbounded:
		return "UNBOUNDED FOLLOWING"
	case b.CurrentRow:
		return "CURRENT ROW"
	case b.Offset < 0:
		return fmt.Sprintf("%d PRECEDING", -b.Offset)
	default:
		return fmt.Sprintf("%d FOLLOWING", b.Offset)
	}
}

// WindowFrame is the (frameType, lower, upper) triple bounding a window
// function's neighborhood.
type WindowFrame struct {
	Type  FrameType
	Lower FrameBoundary
	Upper FrameBoundary
}

func (f *WindowFrame) String() string {
	kind := "ROWS"
	if f.Type == RangeFrame {
		kind = "RANGE"
	}
	return fmt.Sprintf("%s BETWEEN %s AND %s", kind, f.Lower, f.Upper)
}

// WindowSpec is the (partitionSpec, orderSpec, frame) triple a named
// WINDOW clause or inline OVER(...) defines.
type WindowSpec struct {
	PartitionSpec []sql.Expression
	OrderSpec     []SortOrder
	Frame         *WindowFrame
}

// WindowExpression wraps a window function (possibly an aggregate
// function used as a window function) together with the window spec it
// runs over. Invariant 6 (§3): a WindowExpression only ever appears inside
// a Window operator.
type WindowExpression struct {
	Fn   sql.Expression
	Spec WindowSpec
}

func NewWindowExpression(fn sql.Expression, spec WindowSpec) *WindowExpression {
	return &WindowExpression{Fn: fn, Spec: spec}
}

func (w *WindowExpression) Resolved() bool {
	if !w.Fn.Resolved() {
		return false
	}
	for _, p := range w.Spec.PartitionSpec {
		if !p.Resolved() {
			return false
		}
	}
	for _, o := range w.Spec.OrderSpec {
		if !o.Column.Resolved() {
			return false
		}
	}
	return w.Spec.Frame != nil
}

func (w *WindowExpression) DataType() sql.Type { return w.Fn.DataType() }
func (w *WindowExpression) Nullable() bool     { return true }

func (w *WindowExpression) Children() []sql.Expression {
	children := []sql.Expression{w.Fn}
	children = append(children, w.Spec.PartitionSpec...)
	for _, o := range w.Spec.OrderSpec {
		children = append(children, o.Column)
	}
	return children
}

func (w *WindowExpression) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	want := 1 + len(w.Spec.PartitionSpec) + len(w.Spec.OrderSpec)
	if len(children) != want {
		return nil, sql.ErrInvalidChildrenNumber.New(w, len(children), want)
	}
	np := &WindowExpression{Fn: children[0], Spec: WindowSpec{Frame: w.Spec.Frame}}
	np.Spec.PartitionSpec = append([]sql.Expression{}, children[1:1+len(w.Spec.PartitionSpec)]...)
	rest := children[1+len(w.Spec.PartitionSpec):]
	np.Spec.OrderSpec = make([]SortOrder, len(w.Spec.OrderSpec))
	for i, o := range w.Spec.OrderSpec {
		np.Spec.OrderSpec[i] = SortOrder{Column: rest[i], Ascending: o.Ascending, NullsFirst: o.NullsFirst}
	}
	return np, nil
}

func (w *WindowExpression) Foldable() bool      { return false }
func (w *WindowExpression) Deterministic() bool { return false }

func (w *WindowExpression) References() sql.AttributeSet {
	s := w.Fn.References()
	for _, p := range w.Spec.PartitionSpec {
		s = s.Union(p.References())
	}
	for _, o := range w.Spec.OrderSpec {
		s = s.Union(o.Column.References())
	}
	return s
}

func (w *WindowExpression) String() string {
	var parts []string
	if len(w.Spec.PartitionSpec) > 0 {
		ps := make([]string, len(w.Spec.PartitionSpec))
		for i, p := range w.Spec.PartitionSpec {
			ps[i] = p.String()
		}
		parts = append(parts, "PARTITION BY "+strings.Join(ps, ", "))
	}
	if len(w.Spec.OrderSpec) > 0 {
		os := make([]string, len(w.Spec.OrderSpec))
		for i, o := range w.Spec.OrderSpec {
			os[i] = o.String()
		}
		parts = append(parts, "ORDER BY "+strings.Join(os, ", "))
	}
	if w.Spec.Frame != nil {
		parts = append(parts, w.Spec.Frame.String())
	}
	return fmt.Sprintf("%s OVER (%s)", w.Fn, strings.Join(parts, " "))
}

// SortOrder is one ORDER BY key: a column together with direction and
// null ordering.
type SortOrder struct {
	Column     sql.Expression
	Ascending  bool
	NullsFirst bool
}

func (o SortOrder) String() string {
	dir := "ASC"
	if !o.Ascending {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", o.Column, dir)
}

// RankLikeFunction is implemented by window functions that require an
// ORDER BY clause (RANK, DENSE_RANK, ROW_NUMBER, ...), per §4.I's
// ResolveWindowOrder.
type RankLikeFunction interface {
	sql.Expression
	RequiresOrder() bool
	// WithOrder returns a copy with the order spec's columns injected as
	// the function's own children, the way RANK needs to see its sort
	// keys to break ties deterministically.
	WithOrder(order []SortOrder) sql.Expression
}

// FramelessOffsetFunction is implemented by window functions that mandate
// a specific frame (e.g. LEAD/LAG always use a single-row offset frame,
// never a user-specified one) — a mismatch is a WindowFrameMismatch
// diagnostic (§4.I).
type FramelessOffsetFunction interface {
	sql.Expression
	MandatedFrame() *WindowFrame
}

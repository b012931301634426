package expression

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// TimeWindow names a tumbling/sliding time-bucket expression over
// TimeColumn; resolveTimeWindows (§4.J) desugars it into an Expand+Filter
// pair and replaces this node's use sites by the Expand-produced struct
// attribute. Durations are in the same time unit throughout (the analyzer
// does not interpret units; it only divides/ceils them).
type TimeWindow struct {
	TimeColumn     sql.Expression
	WindowDuration int64
	SlideDuration  int64
	StartTime      int64
}

func NewTimeWindow(timeColumn sql.Expression, windowDuration, slideDuration, startTime int64) *TimeWindow {
	return &TimeWindow{TimeColumn: timeColumn, WindowDuration: windowDuration, SlideDuration: slideDuration, StartTime: startTime}
}

func (t *TimeWindow) Resolved() bool     { return t.TimeColumn.Resolved() }
func (t *TimeWindow) DataType() sql.Type { return &sql.StructType{Fields: []sql.StructField{{Name: "start", Type: sql.TimestampType}, {Name: "end", Type: sql.TimestampType}}} }
func (t *TimeWindow) Nullable() bool     { return false }
func (t *TimeWindow) Children() []sql.Expression { return []sql.Expression{t.TimeColumn} }
func (t *TimeWindow) Foldable() bool             { return false }
func (t *TimeWindow) Deterministic() bool        { return true }
func (t *TimeWindow) References() sql.AttributeSet { return t.TimeColumn.References() }
func (t *TimeWindow) String() string {
	return fmt.Sprintf("window(%s, %d, %d, %d)", t.TimeColumn, t.WindowDuration, t.SlideDuration, t.StartTime)
}

func (t *TimeWindow) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 1)
	}
	return &TimeWindow{TimeColumn: children[0], WindowDuration: t.WindowDuration, SlideDuration: t.SlideDuration, StartTime: t.StartTime}, nil
}

// MaxNumOverlapping is ceil(windowDuration / slideDuration), the bucket
// fan-out resolveTimeWindows' Expand produces per input row (§4.J step 1).
func (t *TimeWindow) MaxNumOverlapping() int64 {
	return ceilDivInt(t.WindowDuration, t.SlideDuration)
}

func ceilDivInt(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// ContainsTimeWindow reports whether e or any descendant is a TimeWindow.
func ContainsTimeWindow(e sql.Expression) bool {
	if _, ok := e.(*TimeWindow); ok {
		return true
	}
	for _, c := range e.Children() {
		if ContainsTimeWindow(c) {
			return true
		}
	}
	return false
}

// CollectTimeWindows returns every distinct TimeWindow expression found in
// e's tree (by pointer), used by resolveTimeWindows to detect the
// MultipleTimeWindows diagnostic (§4.J: "more than one time window in a
// single operator").
func CollectTimeWindows(e sql.Expression) []*TimeWindow {
	var out []*TimeWindow
	if tw, ok := e.(*TimeWindow); ok {
		out = append(out, tw)
	}
	for _, c := range e.Children() {
		out = append(out, CollectTimeWindows(c)...)
	}
	return out
}

package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efeller/logiplan/analyzer"
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

func TestResolveTimeWindowsDesugarsIntoExpandFilter(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	ts := attr("event_time", sql.TimestampType, "events")
	rel := plan.NewLocalRelation(ts)
	tw := expression.NewTimeWindow(ts, 10, 5, 0)
	proj := plan.NewProject([]sql.Expression{tw}, rel)

	out, err := analyzer.ResolveTimeWindows(ctx, proj)
	require.NoError(err)

	p := out.(*plan.Project)
	windowAttr, ok := p.ProjectList[0].(*expression.AttributeReference)
	require.True(ok, "the TimeWindow use site must be substituted by the Expand's window attribute")
	require.Equal("window", windowAttr.Name())

	filter, ok := p.Child.(*plan.Filter)
	require.True(ok, "an Expand+Filter pair must be inserted below the operator")
	_, ok = filter.Child.(*plan.Expand)
	require.True(ok)
}

func TestResolveTimeWindowsNoOpWhenNoTimeWindow(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	id := attr("id", sql.BigIntType, "t")
	rel := plan.NewLocalRelation(id)
	proj := plan.NewProject([]sql.Expression{id}, rel)

	out, err := analyzer.ResolveTimeWindows(ctx, proj)
	require.NoError(err)
	require.Equal(proj, out)
}

func TestResolveTimeWindowsRejectsMultipleDistinctWindows(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	ts1 := attr("t1", sql.TimestampType, "events")
	ts2 := attr("t2", sql.TimestampType, "events")
	rel := plan.NewLocalRelation(ts1, ts2)
	tw1 := expression.NewTimeWindow(ts1, 10, 5, 0)
	tw2 := expression.NewTimeWindow(ts2, 20, 10, 0)
	proj := plan.NewProject([]sql.Expression{tw1, tw2}, rel)

	_, err := analyzer.ResolveTimeWindows(ctx, proj)
	require.Error(err)
	require.True(sql.ErrMultipleTimeWindows.Is(err))
}

func TestResolveTimeWindowsExpandFanOutMatchesMaxOverlap(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	ts := attr("event_time", sql.TimestampType, "events")
	rel := plan.NewLocalRelation(ts)
	tw := expression.NewTimeWindow(ts, 10, 5, 0) // maxNumOverlapping = 2
	proj := plan.NewProject([]sql.Expression{tw}, rel)

	out, err := analyzer.ResolveTimeWindows(ctx, proj)
	require.NoError(err)

	filter := out.(*plan.Project).Child.(*plan.Filter)
	expand := filter.Child.(*plan.Expand)
	require.Len(expand.Projections, int(tw.MaxNumOverlapping())+1)
}

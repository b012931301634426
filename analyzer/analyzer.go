package analyzer

import (
	"fmt"
	"os"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/efeller/logiplan/sql"
)

// Analyzer drives the full batch sequence spec.md §2/§4.B prescribes:
// Substitution, Resolution (structural rules, then the externally
// supplied type-coercion ruleset, then extension rules), Nondeterministic,
// UDF, Cleanup, followed by a terminal CheckAnalysis pass. Grounded on the
// teacher's sql/analyzer/analyzer.go Analyzer type.
type Analyzer struct {
	Batches []*Batch
	// Debug gates per-rule logging, mirroring the teacher's Analyzer.Debug
	// flag together with the LOGIPLAN_DEBUG_ANALYZER env var.
	Debug bool
	Log   *logrus.Entry

	debugStack []string
}

// CoercionRule is the external type-coercion ruleset's shape (§6): the
// analyzer neither inspects nor reorders this list, only appends it to
// the Resolution batch.
type CoercionRule = Rule

// Builder assembles an Analyzer the way the teacher's analyzer.Builder
// composes batches, letting callers splice in the type-coercion ruleset
// and extended resolution rules without editing this package.
type Builder struct {
	catalog             sql.Catalog
	coercionRules       []CoercionRule
	extendedResolution  []Rule
	debug               bool
}

func NewBuilder(catalog sql.Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// WithCoercionRules appends the externally supplied type-coercion
// ruleset to the Resolution batch, after all structural resolution rules
// and before extension rules, per spec.md §4.B's "Resolution (fixed
// point): all binding/shape rules, followed by the externally supplied
// type-coercion ruleset, followed by user-provided extension rules."
func (b *Builder) WithCoercionRules(rules ...CoercionRule) *Builder {
	b.coercionRules = append(b.coercionRules, rules...)
	return b
}

// WithExtendedResolutionRules appends caller-supplied rules after type
// coercion (§6's "Extension point").
func (b *Builder) WithExtendedResolutionRules(rules ...Rule) *Builder {
	b.extendedResolution = append(b.extendedResolution, rules...)
	return b
}

func (b *Builder) WithDebug(debug bool) *Builder {
	b.debug = debug
	return b
}

// Build assembles the Analyzer's batch list in the exact order spec.md
// §4 prescribes.
func (b *Builder) Build() *Analyzer {
	resolutionRules := []Rule{
		{Name: "resolve_relations", Apply: ResolveRelations},
		{Name: "resolve_references", Apply: ResolveReferences},
		{Name: "resolve_ordinals", Apply: ResolveOrdinals},
		{Name: "resolve_missing_references", Apply: ResolveMissingReferences},
		{Name: "resolve_functions", Apply: ResolveFunctions},
		{Name: "global_aggregates", Apply: GlobalAggregates},
		{Name: "resolve_aggregates_in_having_and_order_by", Apply: ResolveAggregatesInHavingAndOrderBy},
		{Name: "resolve_generators", Apply: ResolveGenerate},
		{Name: "resolve_grouping_sets", Apply: ResolveGroupingSets},
		{Name: "resolve_pivot", Apply: ResolvePivot},
		{Name: "resolve_subqueries", Apply: ResolveSubqueries},
		{Name: "extract_window_expressions", Apply: ExtractWindowExpressions},
		{Name: "resolve_window_frame", Apply: ResolveWindowFrame},
		{Name: "resolve_window_order", Apply: ResolveWindowOrder},
		{Name: "resolve_time_windows", Apply: ResolveTimeWindows},
		{Name: "resolve_deserializer", Apply: ResolveDeserializer},
		{Name: "resolve_new_instance", Apply: ResolveNewInstance},
		{Name: "resolve_up_cast", Apply: ResolveUpCast},
	}
	resolutionRules = append(resolutionRules, b.coercionRules...)
	resolutionRules = append(resolutionRules, b.extendedResolution...)

	batches := []*Batch{
		{
			Name:          "Substitution",
			Strategy:      FixedPoint,
			MaxIterations: 100,
			Rules: []Rule{
				{Name: "resolve_ctes", Apply: ResolveCTEs},
				{Name: "resolve_window_definitions", Apply: ResolveWindowDefinitions},
				{Name: "resolve_unions", Apply: ResolveUnions},
			},
		},
		{
			Name:          "Resolution",
			Strategy:      FixedPoint,
			MaxIterations: 100,
			Rules:         resolutionRules,
		},
		{
			Name:     "Nondeterministic",
			Strategy: Once,
			Rules: []Rule{
				{Name: "pull_out_nondeterministic", Apply: PullOutNondeterministic},
			},
		},
		{
			Name:     "UDF",
			Strategy: Once,
			Rules: []Rule{
				{Name: "handle_null_inputs_for_udf", Apply: HandleNullInputsForUDF},
			},
		},
		{
			Name:          "Cleanup",
			Strategy:      FixedPoint,
			MaxIterations: 100,
			Rules: []Rule{
				{Name: "cleanup_aliases", Apply: CleanupAliases},
				{Name: "eliminate_subquery_aliases", Apply: EliminateSubqueryAliases},
			},
		},
	}

	log := logrus.NewEntry(logrus.StandardLogger())
	debug := b.debug || os.Getenv("LOGIPLAN_DEBUG_ANALYZER") != ""

	return &Analyzer{Batches: batches, Debug: debug, Log: log}
}

// NewDefault builds an Analyzer with no extension rules and no coercion
// rules wired in, for callers that only need the structural batches (most
// tests: the type-coercion ruleset is an external collaborator per §1/§6
// and is supplied by the caller in production use).
func NewDefault(catalog sql.Catalog) *Analyzer {
	return NewBuilder(catalog).Build()
}

// Analyze runs every batch in order over plan, then CheckAnalysis. The
// whole call opens one tracing span tagged with the stringified plan,
// mirroring the teacher's ctx.Span("analyze", ...); inside a batch, each
// rule application opens its own untagged span.
func (a *Analyzer) Analyze(ctx *sql.Context, plan sql.Node) (sql.Node, error) {
	span, actx := ctx.Span("analyze", opentracing.Tags{"plan": plan.String()})
	defer span.Finish()

	current := plan
	for _, batch := range a.Batches {
		a.LogNode(fmt.Sprintf("starting batch %s", batch.Name), current)
		a.PushDebugContext(batch.Name)
		next, err := batch.Eval(actx, current)
		a.PopDebugContext()
		if err != nil {
			return nil, err
		}
		current = next
	}

	if err := CheckAnalysis(actx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// PushDebugContext records batch as the innermost debug frame; used only
// for log-line prefixing when Debug is set.
func (a *Analyzer) PushDebugContext(name string) {
	a.debugStack = append(a.debugStack, name)
}

// PopDebugContext pops the innermost debug frame pushed by
// PushDebugContext.
func (a *Analyzer) PopDebugContext() {
	if len(a.debugStack) > 0 {
		a.debugStack = a.debugStack[:len(a.debugStack)-1]
	}
}

// LogNode logs msg together with node's stringified form when Debug is
// set, prefixed by the current debug-context stack, mirroring the
// teacher's Analyzer.Log/LogNode.
func (a *Analyzer) LogNode(msg string, node sql.Node) {
	if !a.Debug {
		return
	}
	a.Log.WithField("context", a.debugStack).WithField("plan", node.String()).Debug(msg)
}

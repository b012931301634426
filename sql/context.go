package sql

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
)

// Context is the frozen, per-invocation environment threaded through every
// rule: the catalog, the config, the derived name resolver, the tracer,
// and the read-only outer-scope registry used by inner-class deserializer
// resolution (§5). It stands in for the session/config layer spec.md §1
// places out of scope, the way the teacher threads a *sql.Context through
// every rule in sql/analyzer/rules.go.
type Context struct {
	context.Context
	Catalog     Catalog
	Config      *Config
	Resolver    Resolver
	OuterScopes map[string]interface{}
	tracer      opentracing.Tracer
}

// NewContext builds an analysis Context. If cfg is nil, DefaultConfig is
// used.
func NewContext(ctx context.Context, catalog Catalog, cfg *Config) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Context{
		Context:     ctx,
		Catalog:     catalog,
		Config:      cfg,
		Resolver:    NewResolver(cfg),
		OuterScopes: map[string]interface{}{},
		tracer:      opentracing.GlobalTracer(),
	}
}

// Span starts a new tracing span named name, returning it and a derived
// Context carrying it, mirroring the teacher's ctx.Span(...) calls at the
// top of each rule in sql/analyzer/rules.go.
func (c *Context) Span(name string, tags opentracing.Tags) (opentracing.Span, *Context) {
	var span opentracing.Span
	if tags != nil {
		span = c.tracer.StartSpan(name, tags)
	} else {
		span = c.tracer.StartSpan(name)
	}
	nc := *c
	nc.Context = opentracing.ContextWithSpan(c.Context, span)
	return span, &nc
}

// WithOuterScope returns a derived Context whose outer-scope registry has
// className bound to instance, without mutating the receiver.
func (c *Context) WithOuterScope(className string, instance interface{}) *Context {
	nc := *c
	nc.OuterScopes = make(map[string]interface{}, len(c.OuterScopes)+1)
	for k, v := range c.OuterScopes {
		nc.OuterScopes[k] = v
	}
	nc.OuterScopes[className] = instance
	return &nc
}

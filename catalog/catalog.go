// Package catalog provides an in-memory reference implementation of
// sql.Catalog: a fixed set of databases/tables/schemas plus a function and
// generator registry, resolved purely from in-process maps. Grounded on the
// teacher's sql/catalog.go and its accompanying test/test_catalog.go (the
// stripped-down, provider-free shape used in the teacher's own tests, which
// is closer to what a logical-plan-only analyzer needs than the full
// engine's lock/session-aware Catalog).
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// database is one named collection of tables, each with a fixed schema.
type database struct {
	name   string
	tables map[string]sql.Schema
}

// InMemory is a Catalog whose contents are registered up front by the
// embedder (a test, or a one-shot CLI invocation) rather than discovered
// from a live storage engine. Safe for concurrent lookups once populated.
type InMemory struct {
	mu         sync.RWMutex
	databases  map[string]*database
	defaultDB  string
	functions  map[string]FunctionBuilder
	generators map[string]GeneratorBuilder
}

// FunctionBuilder binds a scalar or aggregate function call once its
// arguments are resolved.
type FunctionBuilder func(args []sql.Expression, distinct bool) (sql.Expression, error)

// GeneratorBuilder binds a table-generating function call.
type GeneratorBuilder func(args []sql.Expression) (sql.Expression, error)

// New returns an empty InMemory catalog pre-registered with the built-in
// functions and generators (see functions.go).
func New() *InMemory {
	c := &InMemory{
		databases:  map[string]*database{},
		functions:  map[string]FunctionBuilder{},
		generators: map[string]GeneratorBuilder{},
	}
	registerBuiltinFunctions(c)
	registerBuiltinGenerators(c)
	return c
}

// AddDatabase registers an empty database. The first database registered
// becomes the default one LookupRelation falls back to when a table
// identifier omits its database qualifier.
func (c *InMemory) AddDatabase(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.databases[name] = &database{name: name, tables: map[string]sql.Schema{}}
	if c.defaultDB == "" {
		c.defaultDB = name
	}
}

// AddTable registers table with the given schema under db, which must
// already have been added via AddDatabase.
func (c *InMemory) AddTable(db, table string, schema sql.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.databases[db]
	if !ok {
		d = &database{name: db, tables: map[string]sql.Schema{}}
		c.databases[db] = d
		if c.defaultDB == "" {
			c.defaultDB = db
		}
	}
	d.tables[table] = schema
}

// RegisterFunction adds or replaces a scalar/aggregate function builder.
func (c *InMemory) RegisterFunction(name string, fn FunctionBuilder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions[strings.ToLower(name)] = fn
}

// RegisterGenerator adds or replaces a table-generating function builder.
func (c *InMemory) RegisterGenerator(name string, fn GeneratorBuilder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generators[strings.ToLower(name)] = fn
}

func (c *InMemory) resolveDatabase(name string) (*database, bool) {
	if name == "" {
		name = c.defaultDB
	}
	d, ok := c.databases[name]
	return d, ok
}

// LookupRelation implements sql.Catalog.
func (c *InMemory) LookupRelation(tableId sql.TableIdentifier, alias string) (sql.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.resolveDatabase(tableId.Database)
	if !ok {
		return nil, sql.ErrNoSuchTable.New(tableId.String())
	}
	schema, ok := d.tables[tableId.Table]
	if !ok {
		return nil, sql.ErrNoSuchTable.New(tableId.String())
	}

	return relationFromSchema(tableId, alias, schema), nil
}

// relationFromSchema mints a fresh ResolvedTable, minting one
// AttributeReference per column per plan.NewResolvedTable's contract.
func relationFromSchema(tableId sql.TableIdentifier, alias string, schema sql.Schema) sql.Node {
	return plan.NewResolvedTable(tableId, alias, schema, func(name string, typ sql.Type, nullable bool, qualifier string) sql.Attribute {
		return expression.NewAttributeReference(name, typ, nullable, qualifier)
	})
}

// DatabaseExists implements sql.Catalog.
func (c *InMemory) DatabaseExists(db string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.resolveDatabase(db)
	return ok
}

// TableExists implements sql.Catalog.
func (c *InMemory) TableExists(tableId sql.TableIdentifier) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.resolveDatabase(tableId.Database)
	if !ok {
		return false
	}
	_, ok = d.tables[tableId.Table]
	return ok
}

// LookupFunction implements sql.Catalog.
func (c *InMemory) LookupFunction(name string, args []sql.Expression, distinct bool) (sql.Expression, error) {
	c.mu.RLock()
	fn, ok := c.functions[strings.ToLower(name)]
	c.mu.RUnlock()
	if !ok {
		return nil, sql.ErrNoSuchFunction.New(name)
	}
	return fn(args, distinct)
}

// LookupGenerator implements sql.Catalog.
func (c *InMemory) LookupGenerator(name string, args []sql.Expression) (sql.Expression, error) {
	c.mu.RLock()
	fn, ok := c.generators[strings.ToLower(name)]
	c.mu.RUnlock()
	if !ok {
		return nil, sql.ErrNoSuchFunction.New(name)
	}
	return fn(args)
}

// TableNames returns the sorted table names registered under db, mainly
// for CLI introspection (`logiplan tables`).
func (c *InMemory) TableNames(db string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.resolveDatabase(db)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(d.tables))
	for t := range d.tables {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}

var _ sql.Catalog = (*InMemory)(nil)

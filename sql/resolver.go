package sql

import "strings"

// Resolver is the two-argument predicate (candidateName, queryName) -> bool
// used throughout attribute and relation binding. Grounded on the
// teacher's qualifyColumns name-index-then-compare idiom
// (sql/analyzer/rules.go), generalized into a standalone value built once
// from Config.CaseSensitiveAnalysis instead of recomputed per comparison.
type Resolver func(candidateName, queryName string) bool

// NewResolver builds a Resolver honoring cfg.CaseSensitiveAnalysis.
func NewResolver(cfg *Config) Resolver {
	if cfg != nil && cfg.CaseSensitiveAnalysis {
		return func(candidate, query string) bool { return candidate == query }
	}
	return func(candidate, query string) bool { return strings.EqualFold(candidate, query) }
}

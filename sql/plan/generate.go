package plan

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
)

// Generate evaluates a single table-generating function, Generator,
// against Child's rows, emitting zero or more rows per input row with
// the generator's produced columns (Outputs) appended. Invariant 5 (§3):
// at most one Generate per SELECT-level projection list, enforced by
// ResolveGenerate's arity check (§4.G) rather than by this type itself.
type Generate struct {
	UnaryNode
	Generator sql.Expression
	Join      bool
	Outer     bool
	Qualifier string
	Outputs   []sql.Attribute
}

func NewGenerate(generator sql.Expression, join, outer bool, qualifier string, outputs []sql.Attribute, child sql.Node) *Generate {
	return &Generate{UnaryNode{child}, generator, join, outer, qualifier, outputs}
}

func (g *Generate) Resolved() bool {
	return g.Child.Resolved() && g.Generator.Resolved()
}

func (g *Generate) Expressions() []sql.Expression { return []sql.Expression{g.Generator} }

func (g *Generate) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(exprs), 1)
	}
	return &Generate{g.UnaryNode, exprs[0], g.Join, g.Outer, g.Qualifier, g.Outputs}, nil
}

func (g *Generate) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(g, children...)
	if err != nil {
		return nil, err
	}
	return &Generate{UnaryNode{c}, g.Generator, g.Join, g.Outer, g.Qualifier, g.Outputs}, nil
}

func (g *Generate) Output() []sql.Attribute {
	if !g.Join {
		return g.Outputs
	}
	out := append([]sql.Attribute{}, g.Child.Output()...)
	return append(out, g.Outputs...)
}

func (g *Generate) String() string {
	names := make([]string, len(g.Outputs))
	for i, a := range g.Outputs {
		names[i] = a.Name()
	}
	return fmt.Sprintf("Generate(%s, outer=%v, outputs=[%s])", g.Generator, g.Outer, strings.Join(names, ", "))
}

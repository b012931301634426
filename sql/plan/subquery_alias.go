package plan

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
)

// SubqueryAlias gives Child's output a qualifier (the alias name), the
// way a derived table or CTE reference lets outer SELECTs write
// `alias.col`. EliminateSubqueryAliases (§4.M) erases this node once
// qualifier information has been consumed by attribute resolution.
type SubqueryAlias struct {
	UnaryNode
	Alias string
}

func NewSubqueryAlias(alias string, child sql.Node) *SubqueryAlias {
	return &SubqueryAlias{UnaryNode{child}, alias}
}

func (s *SubqueryAlias) Expressions() []sql.Expression { return nil }

func (s *SubqueryAlias) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(exprs), 0)
	}
	return s, nil
}

func (s *SubqueryAlias) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(s, children...)
	if err != nil {
		return nil, err
	}
	return &SubqueryAlias{UnaryNode{c}, s.Alias}, nil
}

func (s *SubqueryAlias) Output() []sql.Attribute {
	childOut := s.Child.Output()
	out := make([]sql.Attribute, len(childOut))
	for i, a := range childOut {
		out[i] = a.WithQualifier(s.Alias)
	}
	return out
}

func (s *SubqueryAlias) String() string { return fmt.Sprintf("SubqueryAlias(%s)", s.Alias) }

// With carries a set of named CTE definitions in scope for Body; CTE
// inlining (§4.D) substitutes every reference and erases this node.
type With struct {
	UnaryNode
	Ctes []CTE
}

// CTE names one WITH-clause definition; order matters only for display,
// lookup is by Name.
type CTE struct {
	Name  string
	Query sql.Node
}

// NewWith wraps body with the given CTE definitions. Body is stored as
// UnaryNode.Child so TransformUp/Down reach it automatically; the CTE
// plans themselves are not exposed through Children (mirroring how
// SubqueryExpression hides its Query) because CTE inlining walks Ctes
// directly rather than through generic tree recursion.
func NewWith(ctes []CTE, body sql.Node) *With {
	return &With{UnaryNode{body}, ctes}
}

func (w *With) Expressions() []sql.Expression { return nil }

func (w *With) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(w, len(exprs), 0)
	}
	return w, nil
}

func (w *With) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(w, children...)
	if err != nil {
		return nil, err
	}
	return &With{UnaryNode{c}, w.Ctes}, nil
}

// WithCtes returns a copy of w with its CTE definitions replaced, used
// when resolveCtes must recursively resolve relation references nested
// inside a CTE's own body before substituting it into Body.
func (w *With) WithCtes(ctes []CTE) *With {
	return &With{w.UnaryNode, ctes}
}

func (w *With) Resolved() bool {
	if !w.Child.Resolved() {
		return false
	}
	for _, c := range w.Ctes {
		if !c.Query.Resolved() {
			return false
		}
	}
	return true
}

func (w *With) Output() []sql.Attribute { return w.Child.Output() }

func (w *With) String() string {
	names := make([]string, len(w.Ctes))
	for i, c := range w.Ctes {
		names[i] = c.Name
	}
	return fmt.Sprintf("With(%v)", names)
}

// WithWindowDefinition carries a set of named WINDOW-clause definitions
// in scope for Body; window-definition inlining (§4.D) substitutes every
// UnresolvedWindowExpression reference and erases this node.
type WithWindowDefinition struct {
	UnaryNode
	Definitions map[string]*expression.WindowSpec
}

func NewWithWindowDefinition(defs map[string]*expression.WindowSpec, body sql.Node) *WithWindowDefinition {
	return &WithWindowDefinition{UnaryNode{body}, defs}
}

func (w *WithWindowDefinition) Expressions() []sql.Expression { return nil }

func (w *WithWindowDefinition) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(w, len(exprs), 0)
	}
	return w, nil
}

func (w *WithWindowDefinition) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(w, children...)
	if err != nil {
		return nil, err
	}
	return &WithWindowDefinition{UnaryNode{c}, w.Definitions}, nil
}

func (w *WithWindowDefinition) Output() []sql.Attribute { return w.Child.Output() }

func (w *WithWindowDefinition) String() string { return "WithWindowDefinition" }

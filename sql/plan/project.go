package plan

import (
	"fmt"
	"strings"

	"github.com/efeller/logiplan/sql"
)

// Project evaluates ProjectList against Child, producing one output
// column per list entry. ProjectList entries may still be
// UnresolvedAlias/Star/generator-bearing before resolution completes.
type Project struct {
	UnaryNode
	ProjectList []sql.Expression
}

func NewProject(projectList []sql.Expression, child sql.Node) *Project {
	return &Project{UnaryNode{child}, projectList}
}

func (p *Project) Resolved() bool {
	return p.Child.Resolved() && sql.ExpressionsResolved(p.ProjectList)
}

func (p *Project) Expressions() []sql.Expression { return p.ProjectList }

func (p *Project) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	return &Project{p.UnaryNode, exprs}, nil
}

func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(p, children...)
	if err != nil {
		return nil, err
	}
	return &Project{UnaryNode{c}, p.ProjectList}, nil
}

func (p *Project) Output() []sql.Attribute {
	out := make([]sql.Attribute, len(p.ProjectList))
	for i, e := range p.ProjectList {
		if ne, ok := e.(sql.NamedExpression); ok {
			out[i] = ne.ToAttribute()
		}
	}
	return out
}

func (p *Project) String() string {
	return fmt.Sprintf("Project(%s)", strings.Join(exprNames(p.ProjectList), ", "))
}

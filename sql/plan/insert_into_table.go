package plan

import (
	"fmt"

	"github.com/efeller/logiplan/sql"
)

// InsertIntoTable writes Source's rows into Destination. Relation binding
// (§4.E) special-cases an UnresolvedRelation reached through this node's
// Destination: it looks the table up and strips any enclosing
// SubqueryAlias, since an INSERT target is never itself aliased.
type InsertIntoTable struct {
	BinaryNode
	Columns []string
}

// NewInsertIntoTable builds the node with destination as Left and source
// as Right, matching BinaryNode's Left()/Right() convention.
func NewInsertIntoTable(destination, source sql.Node, columns []string) *InsertIntoTable {
	return &InsertIntoTable{BinaryNode{destination, source}, columns}
}

func (i *InsertIntoTable) Destination() sql.Node { return i.Left }
func (i *InsertIntoTable) Source() sql.Node      { return i.Right }

func (i *InsertIntoTable) Expressions() []sql.Expression { return nil }

func (i *InsertIntoTable) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(i, len(exprs), 0)
	}
	return i, nil
}

func (i *InsertIntoTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	if _, err := binaryWithChildren(i, children...); err != nil {
		return nil, err
	}
	return &InsertIntoTable{BinaryNode{children[0], children[1]}, i.Columns}, nil
}

func (i *InsertIntoTable) Output() []sql.Attribute { return nil }

func (i *InsertIntoTable) String() string {
	return fmt.Sprintf("InsertIntoTable(%s)", i.Columns)
}

// ScriptTransformation pipes Child's rows through an external Script
// (e.g. a MAP/REDUCE TRANSFORM clause); star expansion (§4.E) applies to
// its input expression list the same as Project/Aggregate.
type ScriptTransformation struct {
	UnaryNode
	Script      string
	InputExprs  []sql.Expression
	OutputAttrs []sql.Attribute
}

func NewScriptTransformation(script string, inputExprs []sql.Expression, outputAttrs []sql.Attribute, child sql.Node) *ScriptTransformation {
	return &ScriptTransformation{UnaryNode{child}, script, inputExprs, outputAttrs}
}

func (s *ScriptTransformation) Resolved() bool {
	return s.Child.Resolved() && sql.ExpressionsResolved(s.InputExprs)
}

func (s *ScriptTransformation) Expressions() []sql.Expression { return s.InputExprs }

func (s *ScriptTransformation) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	return &ScriptTransformation{s.UnaryNode, s.Script, exprs, s.OutputAttrs}, nil
}

func (s *ScriptTransformation) WithChildren(children ...sql.Node) (sql.Node, error) {
	c, err := unaryWithChildren(s, children...)
	if err != nil {
		return nil, err
	}
	return &ScriptTransformation{UnaryNode{c}, s.Script, s.InputExprs, s.OutputAttrs}, nil
}

func (s *ScriptTransformation) Output() []sql.Attribute { return s.OutputAttrs }

func (s *ScriptTransformation) String() string {
	return fmt.Sprintf("ScriptTransformation(%q)", s.Script)
}

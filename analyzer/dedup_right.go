package analyzer

import (
	"github.com/efeller/logiplan/sql"
	"github.com/efeller/logiplan/sql/expression"
	"github.com/efeller/logiplan/sql/plan"
)

// dedupRight gives a Join or Intersect's right side fresh attribute-ids
// wherever it collides with the left side's output, the mechanism
// self-joins and re-used CTEs both need to satisfy invariant 3 (§3:
// every attribute-id in a plan is produced by exactly one node).
// Grounded on the teacher's sql/analyzer/resolve_natural_joins.go and
// Catalyst's dedupRight, generalized to Intersect the same way §3 asks
// for.
func dedupRight(n sql.Node) (sql.Node, error) {
	var left, right sql.Node
	switch node := n.(type) {
	case *plan.Join:
		left, right = node.Left, node.Right
	case *plan.Intersect:
		left, right = node.Left, node.Right
	default:
		return n, nil
	}

	leftIds := sql.OutputSet(left)
	collides := false
	for _, a := range right.Output() {
		if leftIds.ContainsId(a.ExprId()) {
			collides = true
			break
		}
	}
	if !collides {
		return n, nil
	}

	newRight, _, err := freshenRelation(right)
	if err != nil {
		return nil, err
	}
	return n.WithChildren(left, newRight)
}

// freshenRelation returns a copy of n whose every output attribute carries
// a freshly minted id, together with the old->new id mapping accumulated
// along the way. It bottoms out at a MultiInstanceRelation (a base table)
// and, walking back up, re-mints the id of every Alias that a Project,
// Aggregate or Window (its WindowExpressions' own aliases) contributes to
// its own output, and of every Generate output, rewriting any
// AttributeReference elsewhere in the subtree that pointed at an
// already-remapped id. A pass-through attribute keeps the id its child
// was remapped to; a leaf that is not a MultiInstanceRelation is returned
// unchanged.
func freshenRelation(n sql.Node) (sql.Node, sql.AttributeMap, error) {
	if mir, ok := n.(sql.MultiInstanceRelation); ok {
		fresh := mir.NewInstance()
		m := sql.AttributeMap{}
		oldOut, newOut := n.Output(), fresh.Output()
		for i := range oldOut {
			m[oldOut[i].ExprId()] = newOut[i]
		}
		return fresh, m, nil
	}

	children := n.Children()
	if len(children) == 0 {
		return n, sql.AttributeMap{}, nil
	}

	newChildren := make([]sql.Node, len(children))
	childMap := sql.AttributeMap{}
	for i, c := range children {
		nc, m, err := freshenRelation(c)
		if err != nil {
			return nil, nil, err
		}
		newChildren[i] = nc
		for id, a := range m {
			childMap[id] = a
		}
	}
	rebuilt, err := n.WithChildren(newChildren...)
	if err != nil {
		return nil, nil, err
	}

	rebuilt, err = sql.TransformExpressionsUp(rebuilt, func(e sql.Expression) (sql.Expression, error) {
		return remapAttributeIds(e, childMap), nil
	})
	if err != nil {
		return nil, nil, err
	}

	ownMap := sql.AttributeMap{}
	switch node := rebuilt.(type) {
	case *plan.Project:
		newList := make([]sql.Expression, len(node.ProjectList))
		for i, e := range node.ProjectList {
			ne, oldId, newAttr, changed := remintNamedExpression(e)
			newList[i] = ne
			if changed {
				ownMap[oldId] = newAttr
			}
		}
		rebuilt, err = node.WithExpressions(newList...)
	case *plan.Aggregate:
		newAggs := make([]sql.Expression, len(node.AggregateExpressions))
		for i, e := range node.AggregateExpressions {
			ne, oldId, newAttr, changed := remintNamedExpression(e)
			newAggs[i] = ne
			if changed {
				ownMap[oldId] = newAttr
			}
		}
		rebuilt = node.WithAggregateExpressions(newAggs)
	case *plan.Window:
		newWindowExprs := make([]sql.Expression, len(node.WindowExpressions))
		for i, e := range node.WindowExpressions {
			ne, oldId, newAttr, changed := remintNamedExpression(e)
			newWindowExprs[i] = ne
			if changed {
				ownMap[oldId] = newAttr
			}
		}
		rebuilt = plan.NewWindow(newWindowExprs, node.PartitionSpec, node.OrderSpec, node.Child)
	case *plan.Generate:
		newOutputs := make([]sql.Attribute, len(node.Outputs))
		for i, a := range node.Outputs {
			oldId := a.ExprId()
			na := a.WithExprId(sql.NewExprId())
			newOutputs[i] = na
			ownMap[oldId] = na
		}
		rebuilt = plan.NewGenerate(node.Generator, node.Join, node.Outer, node.Qualifier, newOutputs, node.Child)
	}
	if err != nil {
		return nil, nil, err
	}

	for id, a := range ownMap {
		childMap[id] = a
	}
	return rebuilt, childMap, nil
}

// remapAttributeIds replaces an AttributeReference whose id is a key of m
// with its mapped replacement, leaving everything else untouched.
func remapAttributeIds(e sql.Expression, m sql.AttributeMap) sql.Expression {
	ar, ok := e.(*expression.AttributeReference)
	if !ok {
		return e
	}
	if mapped, found := m.Get(ar.ExprId()); found {
		return mapped
	}
	return e
}

// remintNamedExpression mints a fresh id for e if e is an Alias,
// returning the rewritten expression, the id it replaced, the attribute
// the new id now maps to, and whether a change was made.
func remintNamedExpression(e sql.Expression) (sql.Expression, sql.ExprId, sql.Attribute, bool) {
	switch ne := e.(type) {
	case *expression.Alias:
		na := expression.NewAliasWithId(ne.Child, ne.Name(), sql.NewExprId())
		return na, ne.ExprId(), na.ToAttribute(), true
	default:
		return e, 0, nil, false
	}
}

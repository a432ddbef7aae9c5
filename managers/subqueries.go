package managers

import (
	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/nodes"
)

// subqueryCTEs collects the registries carried by queries nested anywhere
// in clauses (IN lists, EXISTS, derived tables, joins), in the order they
// are found. A statement's own registry is merged over the result.
func subqueryCTEs(clauses ...nodes.Node) cte.Registry {
	return walkCTEs(cte.Registry{}, clauses...)
}

func coreClauses(core *nodes.SelectCore) []nodes.Node {
	out := make([]nodes.Node, 0, 1+len(core.Projections)+len(core.Joins)+len(core.Wheres)+len(core.Orders))
	out = append(out, core.From)
	out = append(out, core.Projections...)
	for _, j := range core.Joins {
		out = append(out, j)
	}
	out = append(out, core.Wheres...)
	return append(out, core.Orders...)
}

func collectCTEs(acc cte.Registry, n nodes.Node) cte.Registry {
	switch x := n.(type) {
	case nil:
		return acc
	case cte.Owner:
		return acc.Merge(x.CTEs())
	case *nodes.SelectCore:
		return walkCTEs(acc, coreClauses(x)...)
	case *nodes.TableAlias:
		return collectCTEs(acc, x.Relation)
	case *nodes.JoinNode:
		return walkCTEs(acc, x.Right, x.On)
	case *nodes.ComparisonNode:
		return walkCTEs(acc, x.Left, x.Right)
	case *nodes.AndNode:
		return walkCTEs(acc, x.Left, x.Right)
	case *nodes.OrNode:
		return walkCTEs(acc, x.Left, x.Right)
	case *nodes.NotNode:
		return collectCTEs(acc, x.Expr)
	case *nodes.GroupingNode:
		return collectCTEs(acc, x.Expr)
	case *nodes.UnaryNode:
		return collectCTEs(acc, x.Expr)
	case *nodes.InNode:
		return walkCTEs(collectCTEs(acc, x.Expr), x.Vals...)
	case *nodes.BetweenNode:
		return walkCTEs(acc, x.Expr, x.Low, x.High)
	case *nodes.ExistsNode:
		return collectCTEs(acc, x.Subquery)
	case *nodes.OrderingNode:
		return collectCTEs(acc, x.Expr)
	case *nodes.AssignmentNode:
		return walkCTEs(acc, x.Left, x.Right)
	default:
		return acc
	}
}

func walkCTEs(acc cte.Registry, ns ...nodes.Node) cte.Registry {
	for _, n := range ns {
		acc = collectCTEs(acc, n)
	}
	return acc
}

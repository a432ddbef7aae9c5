package nodes

// SelectCore holds the clauses of a single SELECT. It never renders a
// WITH prefix: CTEs live in the owning manager's registry so that nested
// queries can be hoisted into one clause.
type SelectCore struct {
	From        Node
	Projections []Node
	Wheres      []Node
	Joins       []*JoinNode
	Orders      []Node // OrderingNode values
	Limit       Node   // nil or LiteralNode
	Offset      Node   // nil or LiteralNode
	Distinct    bool
}

func (n *SelectCore) Accept(v Visitor) string { return v.VisitSelectCore(n) }

// Clone returns a copy whose slices can be appended to without touching n.
func (n *SelectCore) Clone() *SelectCore {
	return &SelectCore{
		From:        n.From,
		Projections: cloneNodes(n.Projections),
		Wheres:      cloneNodes(n.Wheres),
		Joins:       append([]*JoinNode(nil), n.Joins...),
		Orders:      cloneNodes(n.Orders),
		Limit:       n.Limit,
		Offset:      n.Offset,
		Distinct:    n.Distinct,
	}
}

func cloneNodes(in []Node) []Node {
	if in == nil {
		return nil
	}
	out := make([]Node, len(in))
	copy(out, in)
	return out
}

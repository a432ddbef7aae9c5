package nodes

// OrderDirection is ASC or DESC.
type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

// OrderingNode is an ORDER BY expression.
type OrderingNode struct {
	Expr      Node
	Direction OrderDirection
}

func (n *OrderingNode) Accept(v Visitor) string { return v.VisitOrdering(n) }

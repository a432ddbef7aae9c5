package nodes

// UnaryOp is a postfix null test.
type UnaryOp int

const (
	OpIsNull UnaryOp = iota
	OpIsNotNull
)

// UnaryNode is Expr IS [NOT] NULL.
type UnaryNode struct {
	Combinable
	Expr Node
	Op   UnaryOp
}

func (n *UnaryNode) Accept(v Visitor) string { return v.VisitUnary(n) }

// InNode is Expr [NOT] IN (Vals...).
type InNode struct {
	Combinable
	Expr   Node
	Vals   []Node
	Negate bool
}

func (n *InNode) Accept(v Visitor) string { return v.VisitIn(n) }

// BetweenNode is Expr [NOT] BETWEEN Low AND High.
type BetweenNode struct {
	Combinable
	Expr   Node
	Low    Node
	High   Node
	Negate bool
}

func (n *BetweenNode) Accept(v Visitor) string { return v.VisitBetween(n) }

// ExistsNode is [NOT] EXISTS (Subquery).
type ExistsNode struct {
	Combinable
	Subquery Node
	Negated  bool
}

func (n *ExistsNode) Accept(v Visitor) string { return v.VisitExists(n) }

// Exists creates EXISTS (subquery).
func Exists(subquery Node) *ExistsNode {
	n := &ExistsNode{Subquery: subquery}
	n.self = n
	return n
}

// NotExists creates NOT EXISTS (subquery).
func NotExists(subquery Node) *ExistsNode {
	n := &ExistsNode{Subquery: subquery, Negated: true}
	n.self = n
	return n
}

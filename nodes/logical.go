package nodes

// Combinable gives a node And, Or and Not. The self field must point at
// the embedding node.
type Combinable struct {
	self Node
}

// And creates self AND other.
func (c Combinable) And(other Node) *AndNode {
	n := &AndNode{Left: c.self, Right: other}
	n.self = n
	return n
}

// Or creates (self OR other). The grouping keeps precedence when the
// result is later combined with AND.
func (c Combinable) Or(other Node) *GroupingNode {
	or := &OrNode{Left: c.self, Right: other}
	or.self = or
	return Group(or)
}

// Not creates NOT (self).
func (c Combinable) Not() *NotNode {
	n := &NotNode{Expr: c.self}
	n.self = n
	return n
}

// AndNode is Left AND Right.
type AndNode struct {
	Combinable
	Left  Node
	Right Node
}

func (n *AndNode) Accept(v Visitor) string { return v.VisitAnd(n) }

// OrNode is Left OR Right.
type OrNode struct {
	Combinable
	Left  Node
	Right Node
}

func (n *OrNode) Accept(v Visitor) string { return v.VisitOr(n) }

// NotNode is NOT (Expr).
type NotNode struct {
	Combinable
	Expr Node
}

func (n *NotNode) Accept(v Visitor) string { return v.VisitNot(n) }

// GroupingNode wraps an expression in parentheses.
type GroupingNode struct {
	Combinable
	Expr Node
}

func (n *GroupingNode) Accept(v Visitor) string { return v.VisitGrouping(n) }

// Group wraps expr in a GroupingNode.
func Group(expr Node) *GroupingNode {
	g := &GroupingNode{Expr: expr}
	g.self = g
	return g
}

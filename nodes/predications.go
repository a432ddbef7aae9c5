package nodes

// Predications provides comparison methods to types that embed it.
// The self field must point at the embedding node.
type Predications struct {
	self Node
}

func (p Predications) compare(val any, op ComparisonOp) *ComparisonNode {
	return NewComparisonNode(p.self, Literal(val), op)
}

// Eq creates self = val.
func (p Predications) Eq(val any) *ComparisonNode { return p.compare(val, OpEq) }

// NotEq creates self != val.
func (p Predications) NotEq(val any) *ComparisonNode { return p.compare(val, OpNotEq) }

// Gt creates self > val.
func (p Predications) Gt(val any) *ComparisonNode { return p.compare(val, OpGt) }

// GtEq creates self >= val.
func (p Predications) GtEq(val any) *ComparisonNode { return p.compare(val, OpGtEq) }

// Lt creates self < val.
func (p Predications) Lt(val any) *ComparisonNode { return p.compare(val, OpLt) }

// LtEq creates self <= val.
func (p Predications) LtEq(val any) *ComparisonNode { return p.compare(val, OpLtEq) }

// Like creates self LIKE val.
func (p Predications) Like(val any) *ComparisonNode { return p.compare(val, OpLike) }

// NotLike creates self NOT LIKE val.
func (p Predications) NotLike(val any) *ComparisonNode { return p.compare(val, OpNotLike) }

// In creates self IN (vals...). A single Node argument (for example a
// subquery) is used as-is.
func (p Predications) In(vals ...any) *InNode {
	n := &InNode{Expr: p.self, Vals: literals(vals)}
	n.self = n
	return n
}

// NotIn creates self NOT IN (vals...).
func (p Predications) NotIn(vals ...any) *InNode {
	n := &InNode{Expr: p.self, Vals: literals(vals), Negate: true}
	n.self = n
	return n
}

// Between creates self BETWEEN low AND high.
func (p Predications) Between(low, high any) *BetweenNode {
	n := &BetweenNode{Expr: p.self, Low: Literal(low), High: Literal(high)}
	n.self = n
	return n
}

// NotBetween creates self NOT BETWEEN low AND high.
func (p Predications) NotBetween(low, high any) *BetweenNode {
	n := &BetweenNode{Expr: p.self, Low: Literal(low), High: Literal(high), Negate: true}
	n.self = n
	return n
}

// IsNull creates self IS NULL.
func (p Predications) IsNull() *UnaryNode {
	n := &UnaryNode{Expr: p.self, Op: OpIsNull}
	n.self = n
	return n
}

// IsNotNull creates self IS NOT NULL.
func (p Predications) IsNotNull() *UnaryNode {
	n := &UnaryNode{Expr: p.self, Op: OpIsNotNull}
	n.self = n
	return n
}

// Asc creates an ascending ordering.
func (p Predications) Asc() *OrderingNode {
	return &OrderingNode{Expr: p.self, Direction: Asc}
}

// Desc creates a descending ordering.
func (p Predications) Desc() *OrderingNode {
	return &OrderingNode{Expr: p.self, Direction: Desc}
}

func literals(vals []any) []Node {
	out := make([]Node, len(vals))
	for i, v := range vals {
		out[i] = Literal(v)
	}
	return out
}

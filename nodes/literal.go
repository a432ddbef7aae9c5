package nodes

// LiteralNode wraps a Go value (string, number, bool, nil).
type LiteralNode struct {
	Predications
	Combinable
	Value any
}

func (n *LiteralNode) Accept(v Visitor) string { return v.VisitLiteral(n) }

// StarNode is * or table.*.
type StarNode struct {
	Table *Table // nil for an unqualified *
}

func (n *StarNode) Accept(v Visitor) string { return v.VisitStar(n) }

// Star returns an unqualified *.
func Star() *StarNode {
	return &StarNode{}
}

// SqlLiteral is a raw SQL fragment written to the output verbatim.
//
// SECURITY: Raw is never escaped. Only Binds are parameterized; never build
// Raw from user input.
type SqlLiteral struct {
	Predications
	Combinable
	Raw   string
	Binds []any
}

func (n *SqlLiteral) Accept(v Visitor) string { return v.VisitSqlLiteral(n) }

// NewSqlLiteral creates a raw fragment.
func NewSqlLiteral(raw string, binds ...any) *SqlLiteral {
	n := &SqlLiteral{Raw: raw, Binds: binds}
	n.Predications.self = n
	n.Combinable.self = n
	return n
}

// BindParamNode is always emitted as a placeholder in parameterized mode,
// and as a literal otherwise.
type BindParamNode struct {
	Value any
}

func (n *BindParamNode) Accept(v Visitor) string { return v.VisitBindParam(n) }

// NewBindParam creates a BindParamNode.
func NewBindParam(value any) *BindParamNode {
	return &BindParamNode{Value: value}
}

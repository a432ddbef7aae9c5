// Package nodes defines the AST node types used to represent SQL statements.
package nodes

// Node is the interface that all AST nodes implement.
type Node interface {
	Accept(visitor Visitor) string
}

// Visitor walks the AST and produces SQL text.
// Concrete visitors (Postgres, MySQL, SQLite) implement this interface.
type Visitor interface {
	VisitTable(node *Table) string
	VisitTableAlias(node *TableAlias) string
	VisitAttribute(node *Attribute) string
	VisitLiteral(node *LiteralNode) string
	VisitStar(node *StarNode) string
	VisitSqlLiteral(node *SqlLiteral) string
	VisitComparison(node *ComparisonNode) string
	VisitUnary(node *UnaryNode) string
	VisitAnd(node *AndNode) string
	VisitOr(node *OrNode) string
	VisitNot(node *NotNode) string
	VisitIn(node *InNode) string
	VisitBetween(node *BetweenNode) string
	VisitGrouping(node *GroupingNode) string
	VisitJoin(node *JoinNode) string
	VisitOrdering(node *OrderingNode) string
	VisitExists(node *ExistsNode) string
	VisitSelectCore(node *SelectCore) string
	VisitUpdateStatement(node *UpdateStatement) string
	VisitDeleteStatement(node *DeleteStatement) string
	VisitAssignment(node *AssignmentNode) string
	VisitCTE(node *CTENode) string
	VisitBindParam(node *BindParamNode) string
}

// Parameterizer is implemented by visitors that collect bind parameters.
// Callers type-assert a Visitor to read the values after generation.
type Parameterizer interface {
	Params() []any
	Reset()
}

// Literal wraps a raw Go value into a LiteralNode. Values that are
// already a Node are returned unchanged.
func Literal(val any) Node {
	if n, ok := val.(Node); ok {
		return n
	}
	lit := &LiteralNode{Value: val}
	lit.Predications.self = lit
	lit.Combinable.self = lit
	return lit
}

// AssignmentNode is a column = value pair in a SET clause.
type AssignmentNode struct {
	Left  Node
	Right Node
}

func (n *AssignmentNode) Accept(v Visitor) string { return v.VisitAssignment(n) }

// UpdateStatement represents UPDATE ... SET ... WHERE.
// The WITH prefix, if any, is owned by the manager's CTE registry.
type UpdateStatement struct {
	Table       Node
	Assignments []*AssignmentNode
	Wheres      []Node
	Returning   []Node
}

func (n *UpdateStatement) Accept(v Visitor) string { return v.VisitUpdateStatement(n) }

// DeleteStatement represents DELETE FROM ... WHERE.
type DeleteStatement struct {
	From      Node
	Wheres    []Node
	Returning []Node
}

func (n *DeleteStatement) Accept(v Visitor) string { return v.VisitDeleteStatement(n) }

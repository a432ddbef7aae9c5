package nodes

// JoinType is the kind of SQL JOIN.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
	StringJoin // raw SQL join fragment
)

// String returns the SQL keyword for the join type.
func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER JOIN"
	case LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case RightOuterJoin:
		return "RIGHT OUTER JOIN"
	case FullOuterJoin:
		return "FULL OUTER JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	case StringJoin:
		return ""
	default:
		return "JOIN"
	}
}

// JoinNode is one JOIN of a SELECT.
type JoinNode struct {
	Right Node // table, CTE reference or subquery
	Type  JoinType
	On    Node // nil for CROSS and raw joins
}

func (n *JoinNode) Accept(v Visitor) string { return v.VisitJoin(n) }

package nodes

// CTENode is one "name AS (query)" entry of a WITH clause. The clause
// itself, and the order of its entries, is assembled by package cte.
type CTENode struct {
	Name  string
	Query Node
}

func (n *CTENode) Accept(v Visitor) string { return v.VisitCTE(n) }

// CTERef returns a table reference to a CTE by name, for use in FROM and
// JOIN clauses and for qualifying columns.
func CTERef(name string) *Table {
	return NewTable(name)
}

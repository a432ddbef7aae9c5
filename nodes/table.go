package nodes

// Table is a table (or CTE) reference.
type Table struct {
	Name string
}

// NewTable creates a table reference.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) Accept(v Visitor) string { return v.VisitTable(t) }

// Col creates a column of this table.
func (t *Table) Col(name string) *Attribute {
	return NewAttribute(t, name)
}

// Alias creates an aliased reference to this table.
func (t *Table) Alias(name string) *TableAlias {
	return &TableAlias{Relation: t, AliasName: name}
}

// Star creates table.*.
func (t *Table) Star() *StarNode {
	return &StarNode{Table: t}
}

// TableAlias is "relation AS alias" where relation is a table or subquery.
type TableAlias struct {
	Relation  Node
	AliasName string
}

func (ta *TableAlias) Accept(v Visitor) string { return v.VisitTableAlias(ta) }

// Col creates a column qualified by the alias.
func (ta *TableAlias) Col(name string) *Attribute {
	return NewAttribute(ta, name)
}

// RelationName returns the name used to qualify columns of n: the table
// name for a Table and the alias for a TableAlias.
func RelationName(n Node) string {
	switch r := n.(type) {
	case *Table:
		return r.Name
	case *TableAlias:
		return r.AliasName
	default:
		return ""
	}
}

// TableSourceName returns the underlying table name of n, looking through
// aliases of plain tables.
func TableSourceName(n Node) string {
	if ta, ok := n.(*TableAlias); ok {
		if tbl, ok := ta.Relation.(*Table); ok {
			return tbl.Name
		}
		return ta.AliasName
	}
	return RelationName(n)
}

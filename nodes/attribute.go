package nodes

// Attribute is a column reference bound to a table, alias or CTE.
type Attribute struct {
	Predications
	Combinable
	Name     string
	Relation Node // *Table or *TableAlias
}

// NewAttribute creates an Attribute with its embedded helpers pointing at
// the new node.
func NewAttribute(relation Node, name string) *Attribute {
	a := &Attribute{Name: name, Relation: relation}
	a.Predications.self = a
	a.Combinable.self = a
	return a
}

func (a *Attribute) Accept(v Visitor) string { return v.VisitAttribute(a) }

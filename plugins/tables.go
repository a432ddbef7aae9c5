package plugins

import "github.com/bawdo/ctebee/nodes"

// TableRef holds a reference to a table relation and its underlying name.
// Relation is the node used to create column references (preserving aliases),
// and Name is the underlying table name (for matching/filtering).
type TableRef struct {
	Relation nodes.Node // *nodes.Table or *nodes.TableAlias
	Name     string     // underlying table name
}

// CollectTables returns the table relations referenced in a SelectCore:
// the FROM table and all JOIN targets. Subqueries, raw joins and any name
// listed in skip (typically CTE names) are left out.
func CollectTables(core *nodes.SelectCore, skip ...string) []TableRef {
	var refs []TableRef
	add := func(n nodes.Node) {
		ref, ok := extractTableRef(n)
		if !ok || contains(skip, ref.Name) {
			return
		}
		refs = append(refs, ref)
	}
	add(core.From)
	for _, j := range core.Joins {
		add(j.Right)
	}
	return refs
}

func extractTableRef(n nodes.Node) (TableRef, bool) {
	switch r := n.(type) {
	case *nodes.Table:
		return TableRef{Relation: r, Name: r.Name}, true
	case *nodes.TableAlias:
		if tbl, ok := r.Relation.(*nodes.Table); ok {
			return TableRef{Relation: r, Name: tbl.Name}, true
		}
		return TableRef{}, false
	default:
		return TableRef{}, false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package plan

import (
	"fmt"
	"strings"

	"github.com/bawdo/ctebee/nodes"
)

// relation is a FROM source that can qualify columns.
type relation interface {
	Col(name string) *nodes.Attribute
}

// Column resolves a column reference. "table.column" names the relation
// explicitly, a bare "column" belongs to from, and "*" is all columns.
func Column(ref string, from nodes.Node) (nodes.Node, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty column reference")
	}
	if ref == "*" {
		return nodes.Star(), nil
	}
	if table, col, ok := strings.Cut(ref, "."); ok {
		if table == "" || col == "" {
			return nil, fmt.Errorf("malformed column reference %q", ref)
		}
		if col == "*" {
			return nodes.NewTable(table).Star(), nil
		}
		return nodes.NewTable(table).Col(col), nil
	}
	r, ok := from.(relation)
	if !ok {
		return nil, fmt.Errorf("column %q needs a table qualifier", ref)
	}
	return r.Col(ref), nil
}

func attribute(ref string, from nodes.Node) (*nodes.Attribute, error) {
	n, err := Column(ref, from)
	if err != nil {
		return nil, err
	}
	attr, ok := n.(*nodes.Attribute)
	if !ok {
		return nil, fmt.Errorf("%q is not a single column", ref)
	}
	return attr, nil
}

// Operators lists the comparison operators a Condition accepts.
var Operators = []string{
	"=", "!=", "<>", ">", ">=", "<", "<=",
	"like", "not like", "in", "not in", "is null", "is not null",
}

// Node builds the predicate, resolving bare columns against from.
func (c Condition) Node(from nodes.Node) (nodes.Node, error) {
	col, err := attribute(c.Column, from)
	if err != nil {
		return nil, err
	}
	op := strings.Join(strings.Fields(strings.ToLower(c.Op)), " ")
	switch op {
	case "=":
		return col.Eq(c.Value), nil
	case "!=", "<>":
		return col.NotEq(c.Value), nil
	case ">":
		return col.Gt(c.Value), nil
	case ">=":
		return col.GtEq(c.Value), nil
	case "<":
		return col.Lt(c.Value), nil
	case "<=":
		return col.LtEq(c.Value), nil
	case "like":
		return col.Like(c.Value), nil
	case "not like":
		return col.NotLike(c.Value), nil
	case "in", "not in":
		vals, ok := c.Value.([]any)
		if !ok {
			vals = []any{c.Value}
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("%s on %q needs at least one value", op, c.Column)
		}
		if op == "in" {
			return col.In(vals...), nil
		}
		return col.NotIn(vals...), nil
	case "is null":
		return col.IsNull(), nil
	case "is not null":
		return col.IsNotNull(), nil
	default:
		return nil, fmt.Errorf("unsupported operator %q", c.Op)
	}
}

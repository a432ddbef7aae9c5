package cte

import (
	"strings"

	"github.com/bawdo/ctebee/nodes"
)

// Render prefixes base with a WITH clause made of the already compiled
// definitions, in the order given. It returns base unchanged when there are
// no definitions.
func Render(recursive bool, definitions []string, base string) string {
	if len(definitions) == 0 {
		return base
	}
	var sb strings.Builder
	sb.WriteString("WITH ")
	if recursive {
		sb.WriteString("RECURSIVE ")
	}
	for i, d := range definitions {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d)
	}
	sb.WriteString(" ")
	sb.WriteString(base)
	return sb.String()
}

// Compile generates the full statement for base: each definition is compiled
// through v in registry order, then base itself. Definitions go first so
// positional bind parameters are collected in the order they appear in the
// output.
//
// The registry is expected to be flattened already; Compile does not
// reorder or validate entries.
func (r Registry) Compile(v nodes.Visitor, base nodes.Node) string {
	if r.IsEmpty() {
		return base.Accept(v)
	}
	parts := make([]string, len(r.defs))
	for i, d := range r.defs {
		parts[i] = (&nodes.CTENode{Name: d.Name, Query: d.Body}).Accept(v)
	}
	return Render(r.recursive, parts, base.Accept(v))
}

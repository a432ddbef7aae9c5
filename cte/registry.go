// Package cte tracks the Common Table Expressions attached to a query and
// renders them as a single WITH clause.
//
// A Registry is an immutable, ordered set of named definitions. Every
// operation returns a new Registry, so a value may be shared between
// queries (and goroutines) without copying.
//
// When the same name is attached more than once the entry keeps the
// position of its first insertion and the body of its last write:
//
//	r, _ := cte.Registry{}.Attach("a", q1)
//	r, _ = r.Attach("b", q2)
//	r, _ = r.Attach("a", q3)
//	// WITH "a" AS (q3), "b" AS (q2)
package cte

import "github.com/bawdo/ctebee/nodes"

// Definition is a single named CTE body.
type Definition struct {
	Name string
	Body nodes.Node

	// hoisted is set once Flatten has absorbed the body's own registry
	// into the enclosing clause.
	hoisted bool
}

// Define is shorthand for Definition{Name: name, Body: body}.
func Define(name string, body nodes.Node) Definition {
	return Definition{Name: name, Body: body}
}

// Owner is implemented by query types that carry their own registry.
// A Definition whose Body implements Owner has that registry hoisted
// into the enclosing clause by Flatten.
type Owner interface {
	CTEs() Registry
}

// Registry is an ordered collection of CTE definitions plus a clause-wide
// RECURSIVE flag. The zero value is an empty registry.
type Registry struct {
	defs      []Definition
	recursive bool
}

// Len returns the number of definitions.
func (r Registry) Len() int { return len(r.defs) }

// IsEmpty reports whether the registry has no definitions.
func (r Registry) IsEmpty() bool { return len(r.defs) == 0 }

// Recursive reports whether the clause renders as WITH RECURSIVE.
func (r Registry) Recursive() bool { return r.recursive }

// Names returns the definition names in emission order.
func (r Registry) Names() []string {
	names := make([]string, len(r.defs))
	for i, d := range r.defs {
		names[i] = d.Name
	}
	return names
}

// Definitions returns a copy of the definitions in emission order.
func (r Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	for i, d := range r.defs {
		out[i] = Define(d.Name, d.Body)
	}
	return out
}

// Lookup returns the definition registered under name.
func (r Registry) Lookup(name string) (Definition, bool) {
	if i := r.index(name); i >= 0 {
		return Define(r.defs[i].Name, r.defs[i].Body), true
	}
	return Definition{}, false
}

func (r Registry) index(name string) int {
	for i, d := range r.defs {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// clone returns a registry with its own backing array, sized for extra
// additional entries.
func (r Registry) clone(extra int) Registry {
	defs := make([]Definition, len(r.defs), len(r.defs)+extra)
	copy(defs, r.defs)
	return Registry{defs: defs, recursive: r.recursive}
}

// put writes d into a registry the caller owns. An existing name keeps its
// slot and takes the new body.
func (r *Registry) put(d Definition) {
	if i := r.index(d.Name); i >= 0 {
		r.defs[i] = d
		return
	}
	r.defs = append(r.defs, d)
}

// Attach returns a registry with body registered under name. Names must be
// plain SQL identifiers; see ValidateName.
func (r Registry) Attach(name string, body nodes.Node) (Registry, error) {
	return r.AttachAll(Definition{Name: name, Body: body})
}

// AttachAll attaches defs in order. If any definition is rejected the
// receiver is returned unchanged together with the error.
func (r Registry) AttachAll(defs ...Definition) (Registry, error) {
	for _, d := range defs {
		if err := ValidateName(d.Name); err != nil {
			return r, err
		}
		if d.Body == nil {
			return r, &NilBodyError{Name: d.Name}
		}
	}
	out := r.clone(len(defs))
	for _, d := range defs {
		// a fresh attach hoists the body's registry again
		d.hoisted = false
		out.put(d)
	}
	return out, nil
}

// MarkRecursive returns a copy of the registry flagged as RECURSIVE.
func (r Registry) MarkRecursive() Registry {
	out := r.clone(0)
	out.recursive = true
	return out
}

// Merge combines r with other. Entries of r come first in their existing
// order, followed by names only other defines. For names present in both,
// other's body wins and r's position is kept. The result is recursive if
// either input is.
func (r Registry) Merge(other Registry) Registry {
	out := r.clone(len(other.defs))
	for _, d := range other.defs {
		out.put(d)
	}
	out.recursive = r.recursive || other.recursive
	return out
}

// Transform returns a registry whose bodies are replaced by fn's result.
// Names, order and the recursive flag are unchanged.
func (r Registry) Transform(fn func(Definition) (nodes.Node, error)) (Registry, error) {
	out := r.clone(0)
	for i, d := range out.defs {
		body, err := fn(d)
		if err != nil {
			return r, err
		}
		if body == nil {
			return r, &NilBodyError{Name: d.Name}
		}
		out.defs[i].Body = body
	}
	return out, nil
}

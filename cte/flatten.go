package cte

// Flatten hoists the registries carried by definition bodies into a single
// flat registry. Nested definitions are placed before the definition that
// references them, keeping their own relative order, and are themselves
// flattened first. Name collisions follow Merge: first position, last body.
// The result is recursive if r or any hoisted registry is.
//
// Flatten is idempotent. Bodies are never modified; a hoisted definition is
// only marked so its registry is not pulled in a second time.
func (r Registry) Flatten() Registry {
	out := Registry{
		defs:      make([]Definition, 0, len(r.defs)),
		recursive: r.recursive,
	}
	for _, d := range r.defs {
		if !d.hoisted {
			if owner, ok := d.Body.(Owner); ok {
				nested := owner.CTEs().Flatten()
				out = out.Merge(nested)
			}
			d.hoisted = true
		}
		out.put(d)
	}
	return out
}

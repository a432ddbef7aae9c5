package managers

import (
	"fmt"
	"reflect"

	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/plugins"
)

// treeManager is the shared base for all manager types. It holds the
// transformer pipeline and the CTE registry common to Select, Update and
// Delete managers. Both are treated as immutable: derived managers get a
// fresh transformer slice and share the (immutable) registry.
type treeManager struct {
	transformers []plugins.Transformer
	ctes         cte.Registry
}

func (tm treeManager) clone() treeManager {
	return treeManager{
		transformers: append([]plugins.Transformer(nil), tm.transformers...),
		ctes:         tm.ctes,
	}
}

// Transformers returns the registered transformer pipeline.
func (tm *treeManager) Transformers() []plugins.Transformer {
	return append([]plugins.Transformer(nil), tm.transformers...)
}

// attach extends the registry of a manager the caller owns.
func (tm *treeManager) attach(recursive bool, defs []cte.Definition) error {
	ctes, err := tm.ctes.AttachAll(defs...)
	if err != nil {
		return err
	}
	if recursive {
		ctes = ctes.MarkRecursive()
	}
	tm.ctes = ctes
	return nil
}

// finalCTEs flattens reg and runs the transformer pipeline over every CTE
// body built with a SelectManager. It returns the prepared registry
// together with the pipeline bound to its CTE names, ready for the main
// statement.
func (tm *treeManager) finalCTEs(reg cte.Registry) (cte.Registry, []plugins.Transformer, error) {
	flat := reg.Flatten()
	names := flat.Names()
	pipeline := plugins.Scope(tm.transformers, names)

	prepared, err := flat.Transform(func(d cte.Definition) (nodes.Node, error) {
		sub, ok := d.Body.(*SelectManager)
		if !ok {
			return d.Body, nil
		}
		bodyPipeline := plugins.Scope(union(sub.transformers, tm.transformers), names)
		core, err := transformSelect(sub.Core.Clone(), bodyPipeline)
		if err != nil {
			return nil, fmt.Errorf("cte %q: %w", d.Name, err)
		}
		return core, nil
	})
	if err != nil {
		return cte.Registry{}, nil, err
	}
	return prepared, pipeline, nil
}

// union returns a followed by the transformers of b not already in a, so a
// plugin registered on both a CTE body and its outer query runs once.
func union(a, b []plugins.Transformer) []plugins.Transformer {
	out := append([]plugins.Transformer(nil), a...)
	for _, t := range b {
		if !containsTransformer(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func containsTransformer(list []plugins.Transformer, t plugins.Transformer) bool {
	for _, x := range list {
		if reflect.TypeOf(x).Comparable() && x == t {
			return true
		}
	}
	return false
}

func transformSelect(core *nodes.SelectCore, pipeline []plugins.Transformer) (*nodes.SelectCore, error) {
	for _, t := range pipeline {
		var err error
		core, err = t.TransformSelect(core)
		if err != nil {
			return nil, err
		}
	}
	return core, nil
}

// toSQLParams is a helper that resets a parameterizer (if present), calls
// the provided generate function, and returns SQL + params.
func toSQLParams(v nodes.Visitor, generate func(nodes.Visitor) (string, error)) (string, []any, error) {
	p, _ := v.(nodes.Parameterizer)
	if p != nil {
		p.Reset()
	}

	sql, err := generate(v)
	if err != nil {
		return "", nil, err
	}

	if p != nil {
		return sql, p.Params(), nil
	}
	return sql, nil, nil
}

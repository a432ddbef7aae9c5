// Package plugins defines the Transformer interface for AST middleware.
package plugins

import "github.com/bawdo/ctebee/nodes"

// Transformer is the interface that AST transformation plugins implement.
// Plugins embed BaseTransformer and override only the methods they need.
//
// Managers run the pipeline over the main statement and over every CTE
// body built with a SelectManager, always on copies.
type Transformer interface {
	TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error)
	TransformUpdate(stmt *nodes.UpdateStatement) (*nodes.UpdateStatement, error)
	TransformDelete(stmt *nodes.DeleteStatement) (*nodes.DeleteStatement, error)
}

// CTEAware is implemented by transformers that must tell CTE references
// apart from real tables. Before transforming, managers call WithCTEs with
// the names defined in the statement's WITH clause and use the returned
// transformer in place of the original.
type CTEAware interface {
	WithCTEs(names []string) Transformer
}

// BaseTransformer provides no-op defaults for all Transformer methods.
// Plugins embed this and override only the methods they care about.
type BaseTransformer struct{}

func (BaseTransformer) TransformSelect(c *nodes.SelectCore) (*nodes.SelectCore, error) {
	return c, nil
}
func (BaseTransformer) TransformUpdate(s *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	return s, nil
}
func (BaseTransformer) TransformDelete(s *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	return s, nil
}

// Scope returns ts with every CTEAware transformer bound to names.
// The input slice is not modified.
func Scope(ts []Transformer, names []string) []Transformer {
	out := make([]Transformer, len(ts))
	for i, t := range ts {
		if ca, ok := t.(CTEAware); ok {
			out[i] = ca.WithCTEs(names)
			continue
		}
		out[i] = t
	}
	return out
}

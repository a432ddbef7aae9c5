package managers

import (
	"errors"

	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/plugins"
	"github.com/bawdo/ctebee/visitors"
)

func pg() nodes.Visitor { return visitors.NewPostgresVisitor(visitors.WithoutParams()) }

// countingTransformer appends a where clause and counts invocations.
type countingTransformer struct {
	plugins.BaseTransformer
	called int
}

func (ct *countingTransformer) TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	ct.called++
	col := nodes.NewAttribute(core.From, "injected")
	core.Wheres = append(core.Wheres, col.Eq("by_plugin"))
	return core, nil
}

func (ct *countingTransformer) TransformUpdate(stmt *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	ct.called++
	return stmt, nil
}

func (ct *countingTransformer) TransformDelete(stmt *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	ct.called++
	col := nodes.NewAttribute(stmt.From, "injected")
	stmt.Wheres = append(stmt.Wheres, col.Eq("by_plugin"))
	return stmt, nil
}

var errDenied = errors.New("policy violation: access denied")

// failingTransformer returns an error.
type failingTransformer struct {
	plugins.BaseTransformer
}

func (failingTransformer) TransformSelect(*nodes.SelectCore) (*nodes.SelectCore, error) {
	return nil, errDenied
}

func (failingTransformer) TransformUpdate(*nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	return nil, errDenied
}

func (failingTransformer) TransformDelete(*nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	return nil, errDenied
}

package managers

import (
	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/plugins"
)

// DeleteManager provides a fluent API for building DELETE statements,
// optionally prefixed by a WITH clause.
type DeleteManager struct {
	treeManager
	Statement *nodes.DeleteStatement
}

// NewDeleteManager creates a new DeleteManager targeting the given table.
func NewDeleteManager(from nodes.Node) *DeleteManager {
	return &DeleteManager{
		Statement: &nodes.DeleteStatement{From: from},
	}
}

func (m *DeleteManager) derive() *DeleteManager {
	return &DeleteManager{treeManager: m.treeManager.clone(), Statement: cloneDelete(m.Statement)}
}

// Where appends conditions to the WHERE clause.
func (m *DeleteManager) Where(conditions ...nodes.Node) *DeleteManager {
	out := m.derive()
	out.Statement.Wheres = append(out.Statement.Wheres, conditions...)
	return out
}

// Returning sets the RETURNING clause columns.
func (m *DeleteManager) Returning(cols ...nodes.Node) *DeleteManager {
	out := m.derive()
	out.Statement.Returning = append([]nodes.Node(nil), cols...)
	return out
}

// With attaches named CTEs. It panics on an invalid name; see TryWith.
func (m *DeleteManager) With(defs ...cte.Definition) *DeleteManager {
	out, err := m.TryWith(defs...)
	if err != nil {
		panic(err)
	}
	return out
}

// TryWith attaches named CTEs, returning the receiver and the error if a
// name is invalid.
func (m *DeleteManager) TryWith(defs ...cte.Definition) (*DeleteManager, error) {
	out := m.derive()
	if err := out.attach(false, defs); err != nil {
		return m, err
	}
	return out, nil
}

// WithRecursive marks the clause RECURSIVE and attaches defs.
func (m *DeleteManager) WithRecursive(defs ...cte.Definition) *DeleteManager {
	out := m.derive()
	if err := out.attach(true, defs); err != nil {
		panic(err)
	}
	return out
}

// Merge merges other's CTE registry into this statement's.
func (m *DeleteManager) Merge(other cte.Owner) *DeleteManager {
	out := m.derive()
	out.ctes = out.ctes.Merge(other.CTEs())
	return out
}

// CTEs returns the statement's registry, preceded by the CTEs of
// subqueries in its WHERE clause.
func (m *DeleteManager) CTEs() cte.Registry {
	return subqueryCTEs(append([]nodes.Node{m.Statement.From}, m.Statement.Wheres...)...).Merge(m.ctes)
}

// Use registers a transformer plugin.
func (m *DeleteManager) Use(t plugins.Transformer) *DeleteManager {
	out := m.derive()
	out.transformers = append(out.transformers, t)
	return out
}

func (m *DeleteManager) compile(v nodes.Visitor) (string, error) {
	ctes, pipeline, err := m.finalCTEs(m.CTEs())
	if err != nil {
		return "", err
	}
	stmt := cloneDelete(m.Statement)
	for _, t := range pipeline {
		stmt, err = t.TransformDelete(stmt)
		if err != nil {
			return "", err
		}
	}
	return ctes.Compile(v, stmt), nil
}

// ToSQL applies transformers and generates SQL with parameters.
func (m *DeleteManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	return toSQLParams(v, m.compile)
}

func cloneDelete(s *nodes.DeleteStatement) *nodes.DeleteStatement {
	return &nodes.DeleteStatement{
		From:      s.From,
		Wheres:    append([]nodes.Node(nil), s.Wheres...),
		Returning: append([]nodes.Node(nil), s.Returning...),
	}
}

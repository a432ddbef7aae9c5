package managers

import (
	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/plugins"
)

// UpdateManager provides a fluent API for building UPDATE statements,
// optionally prefixed by a WITH clause.
type UpdateManager struct {
	treeManager
	Statement *nodes.UpdateStatement
}

// NewUpdateManager creates a new UpdateManager targeting the given table.
func NewUpdateManager(table nodes.Node) *UpdateManager {
	return &UpdateManager{
		Statement: &nodes.UpdateStatement{Table: table},
	}
}

func (m *UpdateManager) derive() *UpdateManager {
	return &UpdateManager{treeManager: m.treeManager.clone(), Statement: cloneUpdate(m.Statement)}
}

// Set adds a column assignment to the SET clause.
// val can be a raw Go value or a Node.
func (m *UpdateManager) Set(col nodes.Node, val any) *UpdateManager {
	out := m.derive()
	out.Statement.Assignments = append(out.Statement.Assignments, &nodes.AssignmentNode{
		Left:  col,
		Right: nodes.Literal(val),
	})
	return out
}

// Where appends conditions to the WHERE clause.
func (m *UpdateManager) Where(conditions ...nodes.Node) *UpdateManager {
	out := m.derive()
	out.Statement.Wheres = append(out.Statement.Wheres, conditions...)
	return out
}

// Returning sets the RETURNING clause columns.
func (m *UpdateManager) Returning(cols ...nodes.Node) *UpdateManager {
	out := m.derive()
	out.Statement.Returning = append([]nodes.Node(nil), cols...)
	return out
}

// With attaches named CTEs. It panics on an invalid name; see TryWith.
func (m *UpdateManager) With(defs ...cte.Definition) *UpdateManager {
	out, err := m.TryWith(defs...)
	if err != nil {
		panic(err)
	}
	return out
}

// TryWith attaches named CTEs, returning the receiver and the error if a
// name is invalid.
func (m *UpdateManager) TryWith(defs ...cte.Definition) (*UpdateManager, error) {
	out := m.derive()
	if err := out.attach(false, defs); err != nil {
		return m, err
	}
	return out, nil
}

// WithRecursive marks the clause RECURSIVE and attaches defs.
func (m *UpdateManager) WithRecursive(defs ...cte.Definition) *UpdateManager {
	out := m.derive()
	if err := out.attach(true, defs); err != nil {
		panic(err)
	}
	return out
}

// Merge merges other's CTE registry into this statement's.
func (m *UpdateManager) Merge(other cte.Owner) *UpdateManager {
	out := m.derive()
	out.ctes = out.ctes.Merge(other.CTEs())
	return out
}

// CTEs returns the statement's registry, preceded by the CTEs of
// subqueries in its SET and WHERE clauses.
func (m *UpdateManager) CTEs() cte.Registry {
	clauses := []nodes.Node{m.Statement.Table}
	for _, a := range m.Statement.Assignments {
		clauses = append(clauses, a)
	}
	return subqueryCTEs(append(clauses, m.Statement.Wheres...)...).Merge(m.ctes)
}

// Use registers a transformer plugin.
func (m *UpdateManager) Use(t plugins.Transformer) *UpdateManager {
	out := m.derive()
	out.transformers = append(out.transformers, t)
	return out
}

func (m *UpdateManager) compile(v nodes.Visitor) (string, error) {
	ctes, pipeline, err := m.finalCTEs(m.CTEs())
	if err != nil {
		return "", err
	}
	stmt := cloneUpdate(m.Statement)
	for _, t := range pipeline {
		stmt, err = t.TransformUpdate(stmt)
		if err != nil {
			return "", err
		}
	}
	return ctes.Compile(v, stmt), nil
}

// ToSQL applies transformers and generates SQL with parameters.
func (m *UpdateManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	return toSQLParams(v, m.compile)
}

func cloneUpdate(s *nodes.UpdateStatement) *nodes.UpdateStatement {
	return &nodes.UpdateStatement{
		Table:       s.Table,
		Assignments: append([]*nodes.AssignmentNode(nil), s.Assignments...),
		Wheres:      append([]nodes.Node(nil), s.Wheres...),
		Returning:   append([]nodes.Node(nil), s.Returning...),
	}
}

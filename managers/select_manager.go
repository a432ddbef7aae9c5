// Package managers provides high-level fluent APIs for building SQL ASTs.
//
// Managers are copy-on-write: every chained call returns a new manager and
// leaves its receiver untouched, so a partially built query can be reused
// as the starting point (or a CTE body) of several others.
package managers

import (
	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/plugins"
)

// SelectManager provides a fluent API for building SELECT queries.
// It wraps a SelectCore and a CTE registry and applies transformer plugins
// before SQL generation.
type SelectManager struct {
	treeManager
	// Core is the SELECT being built. Treat it as read-only; it may be
	// shared with managers derived from this one.
	Core *nodes.SelectCore
}

var (
	_ nodes.Node = (*SelectManager)(nil)
	_ cte.Owner  = (*SelectManager)(nil)
)

// NewSelectManager creates a new SelectManager with the given table as FROM.
// If from is nil, the FROM clause is left unset.
func NewSelectManager(from nodes.Node) *SelectManager {
	return &SelectManager{
		Core: &nodes.SelectCore{From: from},
	}
}

func (m *SelectManager) derive() *SelectManager {
	return &SelectManager{treeManager: m.treeManager.clone(), Core: m.Core.Clone()}
}

// Select sets the projection list, replacing any existing projections.
func (m *SelectManager) Select(projections ...nodes.Node) *SelectManager {
	out := m.derive()
	out.Core.Projections = append([]nodes.Node(nil), projections...)
	return out
}

// Distinct enables or disables the DISTINCT modifier.
func (m *SelectManager) Distinct(on ...bool) *SelectManager {
	out := m.derive()
	out.Core.Distinct = len(on) == 0 || on[0]
	return out
}

// Where appends one or more conditions to the WHERE clause. Conditions
// are combined with AND.
func (m *SelectManager) Where(conditions ...nodes.Node) *SelectManager {
	out := m.derive()
	out.Core.Wheres = append(out.Core.Wheres, conditions...)
	return out
}

// From sets or changes the FROM source.
func (m *SelectManager) From(table nodes.Node) *SelectManager {
	out := m.derive()
	out.Core.From = table
	return out
}

// Join starts a join and returns a JoinContext for the ON condition. The
// default join type is InnerJoin. table may be a table, a CTE reference
// or a subquery.
func (m *SelectManager) Join(table nodes.Node, joinTypes ...nodes.JoinType) *JoinContext {
	jt := nodes.InnerJoin
	if len(joinTypes) > 0 {
		jt = joinTypes[0]
	}
	return &JoinContext{manager: m, right: table, joinType: jt}
}

// OuterJoin is a convenience for Join with LeftOuterJoin type.
func (m *SelectManager) OuterJoin(table nodes.Node) *JoinContext {
	return m.Join(table, nodes.LeftOuterJoin)
}

// CrossJoin adds a cross join (no ON clause).
func (m *SelectManager) CrossJoin(table nodes.Node) *SelectManager {
	return m.withJoin(&nodes.JoinNode{Right: table, Type: nodes.CrossJoin})
}

// StringJoin adds a raw SQL join fragment.
//
// SECURITY: The raw string is injected verbatim into SQL output.
// Never pass user-controlled input to this method.
func (m *SelectManager) StringJoin(raw string) *SelectManager {
	return m.withJoin(&nodes.JoinNode{Right: nodes.NewSqlLiteral(raw), Type: nodes.StringJoin})
}

func (m *SelectManager) withJoin(join *nodes.JoinNode) *SelectManager {
	out := m.derive()
	out.Core.Joins = append(out.Core.Joins, join)
	return out
}

// Order appends to the ORDER BY clause. Pass OrderingNode values
// (e.g., table.Col("name").Asc()).
func (m *SelectManager) Order(orderings ...nodes.Node) *SelectManager {
	out := m.derive()
	out.Core.Orders = append(out.Core.Orders, orderings...)
	return out
}

// Limit sets the LIMIT value.
func (m *SelectManager) Limit(n int) *SelectManager {
	out := m.derive()
	out.Core.Limit = nodes.Literal(n)
	return out
}

// Offset sets the OFFSET value.
func (m *SelectManager) Offset(n int) *SelectManager {
	out := m.derive()
	out.Core.Offset = nodes.Literal(n)
	return out
}

// With attaches one or more named CTEs in order. Attaching a name that is
// already present replaces its body but keeps its position.
//
// With panics with a *cte.InvalidIdentifierError if a name is not a plain
// identifier; use TryWith when names come from user input.
func (m *SelectManager) With(defs ...cte.Definition) *SelectManager {
	out, err := m.TryWith(defs...)
	if err != nil {
		panic(err)
	}
	return out
}

// TryWith is like With but returns the validation error instead of
// panicking. On error the receiver is returned.
func (m *SelectManager) TryWith(defs ...cte.Definition) (*SelectManager, error) {
	return m.withCTEs(false, defs)
}

// WithRecursive marks the WITH clause RECURSIVE and attaches defs. With no
// arguments it only sets the flag. The flag is clause wide.
func (m *SelectManager) WithRecursive(defs ...cte.Definition) *SelectManager {
	out, err := m.withCTEs(true, defs)
	if err != nil {
		panic(err)
	}
	return out
}

func (m *SelectManager) withCTEs(recursive bool, defs []cte.Definition) (*SelectManager, error) {
	out := m.derive()
	if err := out.treeManager.attach(recursive, defs); err != nil {
		return m, err
	}
	return out, nil
}

// Merge combines other into this query: other's CTEs are merged into the
// registry (other wins on body, this query keeps positions), and its WHERE
// conditions and joins are appended. FROM, projections, ordering and
// limits of the receiver are kept.
func (m *SelectManager) Merge(other *SelectManager) *SelectManager {
	out := m.derive()
	out.ctes = out.ctes.Merge(other.ctes)
	out.Core.Wheres = append(out.Core.Wheres, other.Core.Wheres...)
	out.Core.Joins = append(out.Core.Joins, other.Core.Joins...)
	return out
}

// CTEs returns the registry the statement renders with: the CTEs of any
// subquery in its clauses followed by its own.
func (m *SelectManager) CTEs() cte.Registry {
	return subqueryCTEs(coreClauses(m.Core)...).Merge(m.ctes)
}

// Use registers a transformer plugin to be applied before SQL generation.
func (m *SelectManager) Use(t plugins.Transformer) *SelectManager {
	out := m.derive()
	out.transformers = append(out.transformers, t)
	return out
}

// compile flattens the CTE registry, applies all registered transformers
// to copies of the core and the CTE bodies, then generates SQL.
func (m *SelectManager) compile(v nodes.Visitor) (string, error) {
	ctes, pipeline, err := m.finalCTEs(m.CTEs())
	if err != nil {
		return "", err
	}
	core, err := transformSelect(m.Core.Clone(), pipeline)
	if err != nil {
		return "", err
	}
	return ctes.Compile(v, core), nil
}

// ToSQL applies all registered transformers and generates SQL with its
// single WITH clause. Parameters are collected when the visitor has
// parameterisation enabled.
func (m *SelectManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	return toSQLParams(v, m.compile)
}

// Accept implements the Node interface so that a SelectManager can be
// used as a subquery. It renders the SELECT without CTEs or transformers;
// the enclosing statement hoists its CTEs through CTEs.
func (m *SelectManager) Accept(v nodes.Visitor) string {
	return m.Core.Accept(v)
}

// As wraps the query in a TableAlias, enabling it to be used as a named
// subquery in FROM or JOIN clauses. Its CTEs are hoisted into the
// enclosing statement.
func (m *SelectManager) As(name string) *nodes.TableAlias {
	return &nodes.TableAlias{Relation: m, AliasName: name}
}

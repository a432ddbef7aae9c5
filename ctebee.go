// Package ctebee provides a fluent SQL query builder for Go with named,
// composable Common Table Expressions.
//
// This package re-exports commonly used types and functions from subpackages
// for convenience. Advanced users can import subpackages directly:
//   - github.com/bawdo/ctebee/managers (query builders)
//   - github.com/bawdo/ctebee/cte (the CTE registry)
//   - github.com/bawdo/ctebee/nodes (AST nodes)
//   - github.com/bawdo/ctebee/visitors (SQL generation)
//   - github.com/bawdo/ctebee/plugins (query transformers)
//
// A query built with its own CTEs can itself be attached as a CTE; its
// definitions are hoisted so the final statement has a single WITH clause:
//
//	users := ctebee.NewTable("users")
//	q1 := ctebee.NewSelect(users).Where(users.Col("personal_id").Eq(1))
//	q2 := ctebee.NewSelect(users).Where(users.Col("personal_id").Eq(2))
//	s := q2.With(ctebee.CTE("u1", q1))
//	sql, params, err := ctebee.NewSelect(users).
//	    With(ctebee.CTE("u2", s)).
//	    ToSQL(ctebee.NewPostgresVisitor(ctebee.WithParams()))
//	// WITH "u1" AS (...), "u2" AS (...) SELECT * FROM "users"
package ctebee

import (
	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/managers"
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/visitors"
)

// --- Manager Types ---

// SelectManager provides a fluent API for building SELECT queries.
type SelectManager = managers.SelectManager

// UpdateManager provides a fluent API for building UPDATE queries.
type UpdateManager = managers.UpdateManager

// DeleteManager provides a fluent API for building DELETE queries.
type DeleteManager = managers.DeleteManager

// --- Manager Constructors ---

// NewSelect creates a new SelectManager with the given table as FROM.
func NewSelect(from nodes.Node) *managers.SelectManager {
	return managers.NewSelectManager(from)
}

// NewUpdate creates a new UpdateManager for updating the given table.
func NewUpdate(table nodes.Node) *managers.UpdateManager {
	return managers.NewUpdateManager(table)
}

// NewDelete creates a new DeleteManager for deleting from the given table.
func NewDelete(from nodes.Node) *managers.DeleteManager {
	return managers.NewDeleteManager(from)
}

// --- CTEs ---

// Definition is a named CTE body.
type Definition = cte.Definition

// Registry is the immutable set of CTEs attached to a query.
type Registry = cte.Registry

// CTE names body for use with With and WithRecursive.
func CTE(name string, body nodes.Node) cte.Definition {
	return cte.Define(name, body)
}

// CTERef references a CTE by name in FROM, JOIN or column qualifiers.
func CTERef(name string) *nodes.Table {
	return nodes.CTERef(name)
}

// ErrInvalidIdentifier is matched by errors from attaching a CTE under a
// name that is not a plain SQL identifier.
var ErrInvalidIdentifier = cte.ErrInvalidIdentifier

// --- Core Node Types ---

// Table represents a SQL table reference.
type Table = nodes.Table

// Attribute represents a column reference (e.g., table.column).
type Attribute = nodes.Attribute

// Node is the base interface all AST nodes implement.
type Node = nodes.Node

// --- Common Node Constructors ---

// NewTable creates a new table reference.
func NewTable(name string) *nodes.Table {
	return nodes.NewTable(name)
}

// Literal creates a SQL literal node (e.g., numbers, strings).
func Literal(value any) nodes.Node {
	return nodes.Literal(value)
}

// BindParam creates a parameterised placeholder (e.g., $1, ?).
func BindParam(value any) *nodes.BindParamNode {
	return nodes.NewBindParam(value)
}

// Star creates an unqualified star (*) for SELECT *.
func Star() *nodes.StarNode {
	return nodes.Star()
}

// Raw creates a raw SQL fragment with optional bind values.
//
// SECURITY: sql is written verbatim; never build it from user input.
func Raw(sql string, binds ...any) *nodes.SqlLiteral {
	return nodes.NewSqlLiteral(sql, binds...)
}

// --- Visitor Types ---

// SQLiteVisitor generates SQLite-compatible SQL.
type SQLiteVisitor = visitors.SQLiteVisitor

// PostgresVisitor generates PostgreSQL-compatible SQL.
type PostgresVisitor = visitors.PostgresVisitor

// MySQLVisitor generates MySQL-compatible SQL.
type MySQLVisitor = visitors.MySQLVisitor

// --- Visitor Constructors ---

// NewSQLiteVisitor creates a new SQLite visitor.
func NewSQLiteVisitor(opts ...visitors.Option) *visitors.SQLiteVisitor {
	return visitors.NewSQLiteVisitor(opts...)
}

// NewPostgresVisitor creates a new PostgreSQL visitor.
func NewPostgresVisitor(opts ...visitors.Option) *visitors.PostgresVisitor {
	return visitors.NewPostgresVisitor(opts...)
}

// NewMySQLVisitor creates a new MySQL visitor.
func NewMySQLVisitor(opts ...visitors.Option) *visitors.MySQLVisitor {
	return visitors.NewMySQLVisitor(opts...)
}

// --- Visitor Options ---

// WithParams enables parameterised query mode.
func WithParams() visitors.Option {
	return visitors.WithParams()
}

// WithoutParams disables parameterised query mode.
//
// WARNING: only for debugging or fully trusted values.
func WithoutParams() visitors.Option {
	return visitors.WithoutParams()
}

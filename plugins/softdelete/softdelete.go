// Package softdelete provides a Transformer that hides soft-deleted rows by
// appending "column IS NULL" to SELECT queries.
//
// Every table referenced in FROM and JOIN gets the condition, qualified by
// its alias when it has one. CTE references are not tables: managers bind
// the transformer to the statement's CTE names (see plugins.CTEAware), and
// the filter is applied inside each CTE body instead.
//
//	sd := softdelete.New()
//	recent := managers.NewSelectManager(orders).Where(orders.Col("total").Gt(100))
//	q := managers.NewSelectManager(nodes.CTERef("recent")).
//	    With(cte.Define("recent", recent)).
//	    Use(sd)
//	// WITH "recent" AS (SELECT * FROM "orders" WHERE "orders"."total" > 100
//	//   AND "orders"."deleted_at" IS NULL) SELECT * FROM "recent"
//
// The column and the set of tables can be changed with WithColumn,
// WithTables and WithTableColumn.
package softdelete

import (
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/plugins"
)

// DefaultColumn is the soft-delete column used when none is configured.
const DefaultColumn = "deleted_at"

// SoftDelete is a Transformer that appends IS NULL conditions for a
// soft-delete column on every referenced table (or a configured subset).
type SoftDelete struct {
	plugins.BaseTransformer
	Column  string
	Columns map[string]string // per-table column overrides (table name → column name)
	tables  map[string]bool   // nil means apply to all tables
	ctes    []string          // relation names that are CTEs, never filtered
}

var (
	_ plugins.Transformer = (*SoftDelete)(nil)
	_ plugins.CTEAware    = (*SoftDelete)(nil)
)

// Option configures a SoftDelete transformer.
type Option func(*SoftDelete)

// WithColumn sets the soft-delete column name. Default is "deleted_at".
func WithColumn(name string) Option {
	return func(sd *SoftDelete) { sd.Column = name }
}

// WithTables restricts the plugin to only the named tables.
func WithTables(names ...string) Option {
	return func(sd *SoftDelete) {
		sd.tables = make(map[string]bool, len(names))
		for _, n := range names {
			sd.tables[n] = true
		}
	}
}

// WithTableColumn sets a per-table column override. The table is added to
// the whitelist, restricting the plugin's scope.
func WithTableColumn(table, column string) Option {
	return func(sd *SoftDelete) {
		if sd.Columns == nil {
			sd.Columns = make(map[string]string)
		}
		sd.Columns[table] = column
		if sd.tables == nil {
			sd.tables = make(map[string]bool)
		}
		sd.tables[table] = true
	}
}

// New creates a SoftDelete transformer with the given options.
func New(opts ...Option) *SoftDelete {
	sd := &SoftDelete{Column: DefaultColumn}
	for _, o := range opts {
		o(sd)
	}
	return sd
}

// WithCTEs returns a copy of sd that leaves the named relations alone.
func (sd *SoftDelete) WithCTEs(names []string) plugins.Transformer {
	scoped := *sd
	scoped.ctes = append([]string(nil), names...)
	return &scoped
}

// TransformSelect appends "column IS NULL" to the WHERE clause for each
// matching table referenced in the query (FROM and JOINs).
func (sd *SoftDelete) TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	for _, ref := range plugins.CollectTables(core, sd.ctes...) {
		if sd.appliesTo(ref.Name) {
			attr := nodes.NewAttribute(ref.Relation, sd.columnFor(ref.Name))
			core.Wheres = append(core.Wheres, attr.IsNull())
		}
	}
	return core, nil
}

func (sd *SoftDelete) appliesTo(tableName string) bool {
	if sd.tables == nil {
		return true
	}
	return sd.tables[tableName]
}

func (sd *SoftDelete) columnFor(tableName string) string {
	if col, ok := sd.Columns[tableName]; ok {
		return col
	}
	return sd.Column
}

// Package db runs generated SQL against PostgreSQL (pgx), MySQL or SQLite
// through database/sql.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/bawdo/ctebee/internal/log"
)

var driverNames = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// DriverName returns the database/sql driver registered for engine.
func DriverName(engine string) (string, bool) {
	name, ok := driverNames[engine]
	return name, ok
}

const (
	schemaTTL     = 5 * time.Minute
	schemaCleanup = 10 * time.Minute
	tablesKey     = "tables"
)

// DB is an open connection pool for one engine.
type DB struct {
	db     *sql.DB
	engine string
	dsn    string
	schema *cache.Cache
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, engine, dsn string) (*DB, error) {
	driver, ok := DriverName(engine)
	if !ok {
		return nil, fmt.Errorf("db: no driver for engine %q", engine)
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	if engine == "sqlite" {
		// every connection to ":memory:" is a separate database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	log.Info("db: connected", zap.String("engine", engine), zap.String("dsn", SanitizeDSN(engine, dsn)))
	return &DB{
		db:     sqlDB,
		engine: engine,
		dsn:    dsn,
		schema: cache.New(schemaTTL, schemaCleanup),
	}, nil
}

// Engine returns the engine name the connection was opened with.
func (d *DB) Engine() string { return d.engine }

// DSN returns the connection string with any password masked.
func (d *DB) DSN() string { return SanitizeDSN(d.engine, d.dsn) }

// Close closes the pool.
func (d *DB) Close() error {
	d.schema.Flush()
	return d.db.Close()
}

// Exec runs a statement that returns no rows and reports the affected row
// count. Cached schema information is dropped.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db: exec: %w", err)
	}
	d.InvalidateSchema()
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db: rows affected: %w", err)
	}
	log.Debug("db: exec", zap.String("sql", query), zap.Int("params", len(args)),
		zap.Int64("rows", n), zap.Duration("took", time.Since(start)))
	return n, nil
}

// Query runs query and reads at most maxRows rows as text. maxRows <= 0
// reads every row.
func (d *DB) Query(ctx context.Context, maxRows int, query string, args ...any) (*Result, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	res, err := readRows(rows, maxRows)
	if err != nil {
		return nil, err
	}
	log.Debug("db: query", zap.String("sql", query), zap.Int("params", len(args)),
		zap.Int("rows", len(res.Rows)), zap.Bool("truncated", res.Truncated),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

func readRows(rows *sql.Rows, maxRows int) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("db: columns: %w", err)
	}
	res := &Result{Columns: columns}
	for rows.Next() {
		if maxRows > 0 && len(res.Rows) >= maxRows {
			res.Truncated = true
			break
		}
		vals := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("db: scan: %w", err)
		}
		row := make([]string, len(columns))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: rows: %w", err)
	}
	return res, nil
}

// Tables lists the tables of the current schema. Results are cached for a
// few minutes; see InvalidateSchema. The returned slice is the caller's.
func (d *DB) Tables(ctx context.Context) ([]string, error) {
	if v, ok := d.schema.Get(tablesKey); ok {
		return slices.Clone(v.([]string)), nil
	}
	var query string
	switch d.engine {
	case "postgres":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	case "mysql":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	default:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}
	tables, err := d.stringColumn(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db: tables: %w", err)
	}
	d.schema.SetDefault(tablesKey, tables)
	return slices.Clone(tables), nil
}

// Columns lists the columns of table in ordinal order. Results are cached
// like Tables.
func (d *DB) Columns(ctx context.Context, table string) ([]string, error) {
	key := "columns:" + table
	if v, ok := d.schema.Get(key); ok {
		return slices.Clone(v.([]string)), nil
	}
	var query string
	switch d.engine {
	case "postgres":
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position"
	case "mysql":
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position"
	default:
		query = "SELECT name FROM pragma_table_info(?)"
	}
	cols, err := d.stringColumn(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("db: columns of %q: %w", table, err)
	}
	d.schema.SetDefault(key, cols)
	return slices.Clone(cols), nil
}

// InvalidateSchema drops cached table and column lists.
func (d *DB) InvalidateSchema() {
	d.schema.Flush()
}

func (d *DB) stringColumn(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

package visitors

import "github.com/bawdo/ctebee/internal/quoting"

// SQLiteVisitor generates SQLite SQL with ANSI double-quoted identifiers
// and ? placeholders.
type SQLiteVisitor struct {
	*baseVisitor
}

// NewSQLiteVisitor creates a SQLiteVisitor. Parameterized mode is off
// unless WithParams is passed.
func NewSQLiteVisitor(opts ...Option) *SQLiteVisitor {
	v := &SQLiteVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:       v,
		quoteIdent:  quoting.DoubleQuote,
		placeholder: func(int) string { return "?" },
	}
	v.applyOptions(opts)
	return v
}

package visitors

import (
	"fmt"

	"github.com/bawdo/ctebee/internal/quoting"
)

// PostgresVisitor generates PostgreSQL SQL. Identifiers are double quoted
// and bind placeholders are numbered: $1, $2.
type PostgresVisitor struct {
	*baseVisitor
}

// NewPostgresVisitor creates a PostgresVisitor. Parameterized mode is off
// unless WithParams is passed.
func NewPostgresVisitor(opts ...Option) *PostgresVisitor {
	v := &PostgresVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:       v,
		quoteIdent:  quoting.DoubleQuote,
		placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	}
	v.applyOptions(opts)
	return v
}

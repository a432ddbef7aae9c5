package visitors

import (
	"github.com/bawdo/ctebee/internal/quoting"
	"github.com/bawdo/ctebee/nodes"
)

// MySQLVisitor generates MySQL SQL with backtick identifiers and ?
// placeholders.
type MySQLVisitor struct {
	*baseVisitor
}

// NewMySQLVisitor creates a MySQLVisitor. Parameterized mode is on by
// default; pass WithoutParams to interpolate literals instead.
func NewMySQLVisitor(opts ...Option) *MySQLVisitor {
	v := &MySQLVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:        v,
		quoteIdent:   quoting.Backtick,
		placeholder:  func(int) string { return "?" },
		parameterize: true,
	}
	v.applyOptions(opts)
	return v
}

// VisitUpdateStatement drops RETURNING, which MySQL does not support.
func (v *MySQLVisitor) VisitUpdateStatement(n *nodes.UpdateStatement) string {
	stmt := *n
	stmt.Returning = nil
	return v.baseVisitor.VisitUpdateStatement(&stmt)
}

// VisitDeleteStatement drops RETURNING, which MySQL does not support.
func (v *MySQLVisitor) VisitDeleteStatement(n *nodes.DeleteStatement) string {
	stmt := *n
	stmt.Returning = nil
	return v.baseVisitor.VisitDeleteStatement(&stmt)
}

// Package visitors provides SQL dialect generators that walk the AST.
package visitors

import (
	"fmt"
	"strings"

	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/internal/quoting"
	"github.com/bawdo/ctebee/nodes"
)

// SQL operators for ComparisonOp values.
var comparisonOpSQL = [...]string{
	nodes.OpEq:      "=",
	nodes.OpNotEq:   "!=",
	nodes.OpGt:      ">",
	nodes.OpGtEq:    ">=",
	nodes.OpLt:      "<",
	nodes.OpLtEq:    "<=",
	nodes.OpLike:    "LIKE",
	nodes.OpNotLike: "NOT LIKE",
}

// Option configures a visitor at construction time.
type Option func(*baseVisitor)

// WithParams enables parameterized mode: literal values become bind
// placeholders and are collected for Params.
func WithParams() Option {
	return func(b *baseVisitor) {
		b.parameterize = true
	}
}

// WithoutParams disables parameterized mode. Literals are interpolated with
// basic escaping only.
//
// WARNING: only use this for display or debugging, never for statements
// built from untrusted input.
func WithoutParams() Option {
	return func(b *baseVisitor) {
		b.parameterize = false
	}
}

// baseVisitor holds the SQL generation shared by all dialects. Dialect
// visitors embed *baseVisitor and set outer to themselves so recursive
// Accept calls reach dialect overrides.
type baseVisitor struct {
	outer nodes.Visitor

	quoteIdent  func(string) string
	placeholder func(int) string

	parameterize bool
	params       []any
	paramIndex   int
}

func (b *baseVisitor) applyOptions(opts []Option) {
	for _, o := range opts {
		o(b)
	}
}

// Params returns the bind values collected since the last Reset.
func (b *baseVisitor) Params() []any {
	return b.params
}

// Reset clears collected parameters.
func (b *baseVisitor) Reset() {
	b.params = nil
	b.paramIndex = 0
}

func (b *baseVisitor) bind(val any) string {
	b.paramIndex++
	b.params = append(b.params, val)
	return b.placeholder(b.paramIndex)
}

func (b *baseVisitor) VisitTable(n *nodes.Table) string {
	return b.quoteIdent(n.Name)
}

func (b *baseVisitor) VisitTableAlias(n *nodes.TableAlias) string {
	if tbl, ok := n.Relation.(*nodes.Table); ok {
		return b.quoteIdent(tbl.Name) + " AS " + b.quoteIdent(n.AliasName)
	}
	return "(" + n.Relation.Accept(b.outer) + ") AS " + b.quoteIdent(n.AliasName)
}

func (b *baseVisitor) VisitAttribute(n *nodes.Attribute) string {
	return b.quoteIdent(nodes.RelationName(n.Relation)) + "." + b.quoteIdent(n.Name)
}

func (b *baseVisitor) VisitLiteral(n *nodes.LiteralNode) string {
	return b.literalToSQL(n.Value)
}

func (b *baseVisitor) literalToSQL(val any) string {
	if val == nil {
		return "NULL"
	}
	if b.parameterize {
		return b.bind(val)
	}
	switch v := val.(type) {
	case string:
		return "'" + quoting.EscapeString(v) + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	default:
		panic(fmt.Sprintf("ctebee: unsupported literal type %T", v))
	}
}

func (b *baseVisitor) VisitStar(n *nodes.StarNode) string {
	if n.Table != nil {
		return b.quoteIdent(n.Table.Name) + ".*"
	}
	return "*"
}

func (b *baseVisitor) VisitSqlLiteral(n *nodes.SqlLiteral) string {
	if b.parameterize {
		for _, v := range n.Binds {
			b.paramIndex++
			b.params = append(b.params, v)
		}
	}
	return n.Raw
}

func (b *baseVisitor) VisitComparison(n *nodes.ComparisonNode) string {
	return n.Left.Accept(b.outer) + " " + comparisonOpSQL[n.Op] + " " + n.Right.Accept(b.outer)
}

func (b *baseVisitor) VisitUnary(n *nodes.UnaryNode) string {
	expr := n.Expr.Accept(b.outer)
	if n.Op == nodes.OpIsNotNull {
		return expr + " IS NOT NULL"
	}
	return expr + " IS NULL"
}

func (b *baseVisitor) VisitAnd(n *nodes.AndNode) string {
	return n.Left.Accept(b.outer) + " AND " + n.Right.Accept(b.outer)
}

func (b *baseVisitor) VisitOr(n *nodes.OrNode) string {
	return n.Left.Accept(b.outer) + " OR " + n.Right.Accept(b.outer)
}

func (b *baseVisitor) VisitNot(n *nodes.NotNode) string {
	return "NOT (" + n.Expr.Accept(b.outer) + ")"
}

func (b *baseVisitor) VisitIn(n *nodes.InNode) string {
	keyword := " IN ("
	if n.Negate {
		keyword = " NOT IN ("
	}
	return n.Expr.Accept(b.outer) + keyword + b.join(n.Vals, ", ") + ")"
}

func (b *baseVisitor) VisitBetween(n *nodes.BetweenNode) string {
	keyword := " BETWEEN "
	if n.Negate {
		keyword = " NOT BETWEEN "
	}
	return n.Expr.Accept(b.outer) + keyword + n.Low.Accept(b.outer) + " AND " + n.High.Accept(b.outer)
}

func (b *baseVisitor) VisitGrouping(n *nodes.GroupingNode) string {
	return "(" + n.Expr.Accept(b.outer) + ")"
}

func (b *baseVisitor) VisitOrdering(n *nodes.OrderingNode) string {
	if n.Direction == nodes.Desc {
		return n.Expr.Accept(b.outer) + " DESC"
	}
	return n.Expr.Accept(b.outer) + " ASC"
}

func (b *baseVisitor) VisitExists(n *nodes.ExistsNode) string {
	prefix := "EXISTS ("
	if n.Negated {
		prefix = "NOT EXISTS ("
	}
	return prefix + n.Subquery.Accept(b.outer) + ")"
}

func (b *baseVisitor) VisitJoin(n *nodes.JoinNode) string {
	if n.Type == nodes.StringJoin {
		return n.Right.Accept(b.outer)
	}
	right := n.Right.Accept(b.outer)
	if isSubquery(n.Right) {
		right = "(" + right + ")"
	}
	out := n.Type.String() + " " + right
	if n.On != nil {
		out += " ON " + n.On.Accept(b.outer)
	}
	return out
}

// VisitCTE renders one WITH entry. The WITH keyword and the separators
// between entries are written by cte.Render.
func (b *baseVisitor) VisitCTE(n *nodes.CTENode) string {
	return b.quoteIdent(n.Name) + " AS (" + n.Query.Accept(b.outer) + ")"
}

func (b *baseVisitor) VisitBindParam(n *nodes.BindParamNode) string {
	if b.parameterize {
		return b.bind(n.Value)
	}
	return b.literalToSQL(n.Value)
}

func (b *baseVisitor) VisitAssignment(n *nodes.AssignmentNode) string {
	return n.Left.Accept(b.outer) + " = " + n.Right.Accept(b.outer)
}

func (b *baseVisitor) VisitSelectCore(n *nodes.SelectCore) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if n.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(n.Projections) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(b.join(n.Projections, ", "))
	}
	if n.From != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(n.From.Accept(b.outer))
	}
	for _, j := range n.Joins {
		sb.WriteString(" ")
		sb.WriteString(j.Accept(b.outer))
	}
	b.writeClause(&sb, " WHERE ", n.Wheres, " AND ")
	b.writeClause(&sb, " ORDER BY ", n.Orders, ", ")
	if n.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(n.Limit.Accept(b.outer))
	}
	if n.Offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(n.Offset.Accept(b.outer))
	}
	return sb.String()
}

func (b *baseVisitor) VisitUpdateStatement(n *nodes.UpdateStatement) string {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(n.Table.Accept(b.outer))
	if len(n.Assignments) > 0 {
		sb.WriteString(" SET ")
		for i, a := range n.Assignments {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.Accept(b.outer))
		}
	}
	b.writeClause(&sb, " WHERE ", n.Wheres, " AND ")
	b.writeClause(&sb, " RETURNING ", n.Returning, ", ")
	return sb.String()
}

func (b *baseVisitor) VisitDeleteStatement(n *nodes.DeleteStatement) string {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(n.From.Accept(b.outer))
	b.writeClause(&sb, " WHERE ", n.Wheres, " AND ")
	b.writeClause(&sb, " RETURNING ", n.Returning, ", ")
	return sb.String()
}

// writeClause writes "keyword item1 sep item2 ..." when items is non-empty.
func (b *baseVisitor) writeClause(sb *strings.Builder, keyword string, items []nodes.Node, sep string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(keyword)
	sb.WriteString(b.join(items, sep))
}

func (b *baseVisitor) join(items []nodes.Node, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Accept(b.outer)
	}
	return strings.Join(parts, sep)
}

// isSubquery reports whether n renders a bare SELECT that needs
// parentheses when used as a join target.
func isSubquery(n nodes.Node) bool {
	switch n.(type) {
	case *nodes.SelectCore, cte.Owner:
		return true
	}
	return false
}

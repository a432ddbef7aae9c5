package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/internal/db"
	"github.com/bawdo/ctebee/internal/log"
	"github.com/bawdo/ctebee/internal/plan"
	"github.com/bawdo/ctebee/managers"
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/plugins/softdelete"
	"github.com/bawdo/ctebee/visitors"
)

var errNoQuery = errors.New("no query defined (use 'from <table>' first)")

// Session holds the REPL state: the query being built, the named queries
// saved for use as CTEs, the dialect and the database connection.
type Session struct {
	engine       string
	parameterize bool
	visitor      nodes.Visitor
	query        *managers.SelectManager
	saved        map[string]*managers.SelectManager
	softDelete   *softdelete.SoftDelete // nil when off
	commands     []commandEntry
	conn         *db.DB // nil when disconnected
	lastDSN      string
	maxRows      int
	ctx          context.Context
	out          io.Writer
}

// NewSession creates a session for engine. Unknown engines fall back to
// postgres.
func NewSession(engine string, parameterize bool) *Session {
	s := &Session{
		saved:        make(map[string]*managers.SelectManager),
		parameterize: parameterize,
		maxRows:      100,
		ctx:          context.Background(),
		out:          os.Stdout,
	}
	s.setEngine(engine)
	s.initCommands()
	return s
}

func (s *Session) setEngine(engine string) {
	v, err := visitors.ForEngine(engine, visitors.ParamOption(s.parameterize))
	if err != nil {
		engine = "postgres"
		v = visitors.NewPostgresVisitor(visitors.ParamOption(s.parameterize))
	}
	s.engine = engine
	s.visitor = v
}

// current returns the query with session-wide transformers applied.
func (s *Session) current() (*managers.SelectManager, error) {
	if s.query == nil {
		return nil, errNoQuery
	}
	if s.softDelete != nil {
		return s.query.Use(s.softDelete), nil
	}
	return s.query, nil
}

// GenerateSQL produces the SQL and bind values for the current query.
func (s *Session) GenerateSQL() (string, []any, error) {
	return s.generate(s.visitor)
}

func (s *Session) generate(v nodes.Visitor) (string, []any, error) {
	q, err := s.current()
	if err != nil {
		return "", nil, err
	}
	return q.ToSQL(v)
}

// savedNames returns the saved query names in sorted order.
func (s *Session) savedNames() []string {
	names := make([]string, 0, len(s.saved))
	for name := range s.saved {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute parses and runs a single REPL command.
func (s *Session) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	lower := strings.ToLower(line)

	for _, cmd := range s.commands {
		if strings.HasSuffix(cmd.prefix, " ") {
			if strings.HasPrefix(lower, cmd.prefix) {
				return cmd.handler(line[len(cmd.prefix):])
			}
		} else if lower == cmd.prefix {
			return cmd.handler("")
		}
	}

	word := strings.Fields(line)[0]
	return fmt.Errorf("unknown command: %s (type 'help' for commands)", word)
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// --- query building ---

func (s *Session) cmdFrom(args string) error {
	name := strings.TrimSpace(args)
	if name == "" {
		return errors.New("usage: from <table>")
	}
	s.query = managers.NewSelectManager(nodes.NewTable(name))
	s.printf("  Query FROM %q\n", name)
	return nil
}

func (s *Session) cmdSelect(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	refs := splitList(args)
	if len(refs) == 0 {
		return errors.New("usage: select <col>[, <col>...]")
	}
	projs := make([]nodes.Node, len(refs))
	for i, ref := range refs {
		col, err := plan.Column(ref, s.query.Core.From)
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}
		projs[i] = col
	}
	s.query = s.query.Select(projs...)
	s.printf("  Projections set (%d columns)\n", len(projs))
	return nil
}

func (s *Session) cmdDistinct() error {
	if s.query == nil {
		return errNoQuery
	}
	s.query = s.query.Distinct()
	s.printf("  DISTINCT enabled\n")
	return nil
}

func (s *Session) cmdWhere(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	c, err := parseCondition(strings.TrimSpace(args))
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}
	cond, err := c.Node(s.query.Core.From)
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}
	s.query = s.query.Where(cond)
	s.printf("  WHERE condition added\n")
	return nil
}

// cmdJoin handles "<table> on <left> = <right>".
func (s *Session) cmdJoin(args string, joinType nodes.JoinType) error {
	if s.query == nil {
		return errNoQuery
	}
	lower := strings.ToLower(args)
	onIdx := strings.Index(lower, " on ")
	if onIdx < 0 {
		return errors.New("expected: <table> on <left> = <right>")
	}
	name := strings.TrimSpace(args[:onIdx])
	tokens := tokenize(args[onIdx+4:])
	if len(tokens) != 3 || tokens[1] != "=" {
		return errors.New("join condition must be <left> = <right>")
	}
	table := nodes.NewTable(name)
	left, err := plan.Column(tokens[0], s.query.Core.From)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	right, err := plan.Column(tokens[2], table)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	s.query = s.query.Join(table, joinType).On(nodes.NewComparisonNode(left, right, nodes.OpEq))
	s.printf("  %s %q added\n", joinType, name)
	return nil
}

func (s *Session) cmdCrossJoin(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	name := strings.TrimSpace(args)
	if name == "" {
		return errors.New("usage: cross join <table>")
	}
	s.query = s.query.CrossJoin(nodes.NewTable(name))
	s.printf("  CROSS JOIN %q added\n", name)
	return nil
}

func (s *Session) cmdRawJoin(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	raw := strings.TrimSpace(args)
	if raw == "" {
		return errors.New("usage: raw join <SQL text>")
	}
	s.query = s.query.StringJoin(raw)
	s.printf("  String join added\n")
	return nil
}

func (s *Session) cmdOrder(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	var orderings []nodes.Node
	for _, p := range splitList(args) {
		fields := strings.Fields(p)
		if len(fields) > 2 {
			return fmt.Errorf("expected <col> [asc|desc], got %q", p)
		}
		n, err := plan.Column(fields[0], s.query.Core.From)
		if err != nil {
			return fmt.Errorf("order: %w", err)
		}
		col, ok := n.(*nodes.Attribute)
		if !ok {
			return fmt.Errorf("order: %q is not a single column", fields[0])
		}
		ordering := col.Asc()
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				ordering = col.Desc()
			default:
				return fmt.Errorf("expected ASC or DESC, got %q", fields[1])
			}
		}
		orderings = append(orderings, ordering)
	}
	if len(orderings) == 0 {
		return errors.New("usage: order <col> [asc|desc][, ...]")
	}
	s.query = s.query.Order(orderings...)
	s.printf("  ORDER BY set (%d columns)\n", len(orderings))
	return nil
}

func (s *Session) cmdLimit(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 0 {
		return fmt.Errorf("limit requires a non-negative integer, got %q", args)
	}
	s.query = s.query.Limit(n)
	s.printf("  LIMIT set to %d\n", n)
	return nil
}

func (s *Session) cmdOffset(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 0 {
		return fmt.Errorf("offset requires a non-negative integer, got %q", args)
	}
	s.query = s.query.Offset(n)
	s.printf("  OFFSET set to %d\n", n)
	return nil
}

// --- CTEs ---

// cmdSave stores the current query under name so later queries can attach
// it with 'with' or fold it in with 'merge'. The current query is kept.
func (s *Session) cmdSave(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	name := strings.TrimSpace(args)
	if name == "" {
		return errors.New("usage: save <name>")
	}
	if err := cte.ValidateName(name); err != nil {
		return err
	}
	_, replaced := s.saved[name]
	s.saved[name] = s.query
	if replaced {
		s.printf("  Replaced saved query %q\n", name)
	} else {
		s.printf("  Saved query %q\n", name)
	}
	return nil
}

func (s *Session) lookupSaved(name string) (*managers.SelectManager, error) {
	q, ok := s.saved[name]
	if !ok {
		return nil, fmt.Errorf("no saved query %q (use 'save %s' first)", name, name)
	}
	return q, nil
}

// cmdWith attaches saved queries, in the order given, as CTEs named after
// them.
func (s *Session) cmdWith(args string, recursive bool) error {
	if s.query == nil {
		return errNoQuery
	}
	names := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(names) == 0 {
		if recursive {
			return errors.New("usage: with recursive <name> [<name>...]")
		}
		return errors.New("usage: with <name> [<name>...]")
	}
	defs := make([]cte.Definition, len(names))
	for i, name := range names {
		q, err := s.lookupSaved(name)
		if err != nil {
			return err
		}
		defs[i] = cte.Define(name, q)
	}
	q, err := s.query.TryWith(defs...)
	if err != nil {
		return err
	}
	if recursive {
		q = q.WithRecursive()
	}
	s.query = q
	kind := "CTE"
	if recursive {
		kind = "recursive CTE"
	}
	s.printf("  Attached %s %s\n", kind, strings.Join(names, ", "))
	return nil
}

func (s *Session) cmdRecursive() error {
	if s.query == nil {
		return errNoQuery
	}
	s.query = s.query.WithRecursive()
	s.printf("  WITH clause marked RECURSIVE\n")
	return nil
}

func (s *Session) cmdMerge(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	name := strings.TrimSpace(args)
	if name == "" {
		return errors.New("usage: merge <name>")
	}
	other, err := s.lookupSaved(name)
	if err != nil {
		return err
	}
	s.query = s.query.Merge(other)
	s.printf("  Merged %q\n", name)
	return nil
}

// cmdCTEs lists the CTEs the current query will emit, nested ones
// included, in clause order.
func (s *Session) cmdCTEs() error {
	if s.query == nil {
		return errNoQuery
	}
	reg := s.query.CTEs().Flatten()
	if reg.IsEmpty() {
		s.printf("  No CTEs attached\n")
		return nil
	}
	if reg.Recursive() {
		s.printf("  WITH RECURSIVE\n")
	}
	for i, name := range reg.Names() {
		s.printf("  %d. %s\n", i+1, name)
	}
	return nil
}

func (s *Session) cmdQueries() error {
	names := s.savedNames()
	if len(names) == 0 {
		s.printf("  No saved queries\n")
		return nil
	}
	for _, name := range names {
		s.printf("  %s\n", name)
	}
	return nil
}

// --- output / settings ---

func (s *Session) cmdSQL() error {
	sql, params, err := s.GenerateSQL()
	if err != nil {
		return err
	}
	s.printf("  %s;\n", sql)
	if len(params) > 0 {
		s.printf("  Params: %v\n", params)
	}
	return nil
}

func (s *Session) cmdEngine(args string) error {
	name := strings.TrimSpace(strings.ToLower(args))
	if _, err := visitors.ForEngine(name); err != nil {
		return fmt.Errorf("unknown engine %q (choose: %s)", name, strings.Join(visitors.Engines, ", "))
	}
	s.setEngine(name)
	s.printf("  Engine set to %s\n", s.engine)
	return nil
}

func (s *Session) cmdParameterize() error {
	s.parameterize = !s.parameterize
	s.setEngine(s.engine)
	if s.parameterize {
		s.printf("  Parameterized queries enabled\n")
	} else {
		s.printf("  Parameterized queries disabled\n")
	}
	return nil
}

// cmdSoftDelete configures the soft-delete filter:
//
//	softdelete                       deleted_at on every table
//	softdelete removed_at            custom column on every table
//	softdelete removed_at on a b     custom column on tables a and b
//	softdelete off
func (s *Session) cmdSoftDelete(args string) error {
	fields := strings.Fields(args)
	switch {
	case len(fields) == 1 && strings.ToLower(fields[0]) == "off":
		if s.softDelete == nil {
			return errors.New("soft delete is not enabled")
		}
		s.softDelete = nil
		s.printf("  Soft delete disabled\n")
		return nil
	case len(fields) == 0:
		s.softDelete = softdelete.New()
	case len(fields) == 1:
		s.softDelete = softdelete.New(softdelete.WithColumn(fields[0]))
	case len(fields) > 2 && strings.ToLower(fields[1]) == "on":
		s.softDelete = softdelete.New(softdelete.WithColumn(fields[0]), softdelete.WithTables(fields[2:]...))
	default:
		return errors.New("usage: softdelete [<column> [on <table>...]] | softdelete off")
	}
	s.printf("  Soft delete enabled (column: %s)\n", s.softDelete.Column)
	return nil
}

func (s *Session) cmdReset() error {
	s.query = nil
	s.saved = make(map[string]*managers.SelectManager)
	s.printf("  Query and saved queries cleared\n")
	return nil
}

// --- database ---

func (s *Session) cmdConnect(args string) error {
	if s.conn != nil {
		return fmt.Errorf("already connected to %s (use 'disconnect' first)", s.conn.DSN())
	}
	dsn := strings.TrimSpace(args)
	if dsn == "" {
		dsn = s.lastDSN
	}
	if dsn == "" {
		return errors.New("usage: connect <dsn>")
	}
	conn, err := db.Open(s.ctx, s.engine, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.conn = conn
	s.lastDSN = dsn
	s.printf("  Connected to %s (%s)\n", conn.DSN(), s.engine)
	return nil
}

func (s *Session) cmdDisconnect() error {
	if s.conn == nil {
		return errors.New("not connected")
	}
	dsn := s.conn.DSN()
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	s.printf("  Disconnected from %s\n", dsn)
	return nil
}

// cmdExec runs the current query against the connection, always with bind
// parameters.
func (s *Session) cmdExec() error {
	if s.conn == nil {
		return errors.New("not connected (use 'connect <dsn>' first)")
	}
	if s.conn.Engine() != s.engine {
		s.printf("  Warning: connected to %s but engine is set to %s\n", s.conn.Engine(), s.engine)
	}
	v, err := visitors.ForEngine(s.conn.Engine(), visitors.WithParams())
	if err != nil {
		return err
	}
	sql, params, err := s.generate(v)
	if err != nil {
		return err
	}
	s.printf("  %s;\n", sql)
	if len(params) > 0 {
		s.printf("  Params: %v\n", params)
	}
	res, err := s.conn.Query(s.ctx, s.maxRows, sql, params...)
	if err != nil {
		log.Warn("repl: exec failed", zap.Error(err))
		return err
	}
	_, _ = fmt.Fprint(s.out, res.Format())
	return nil
}

func (s *Session) close() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

func (s *Session) cmdHelp() {
	_, _ = fmt.Fprint(s.out, `
  Query Building:
    from <table>                  Start a new query (a table or CTE name)
    select <cols>                 Set projections (col, table.col, *, table.*)
    distinct                      Enable DISTINCT
    where <col> <op> <value>      Add a WHERE condition
                                  ops: = != <> > >= < <= like, not like,
                                  in (..), not in (..), is null, is not null
    join <table> on <a> = <b>     Add an INNER JOIN (also left/right/full join)
    cross join <table>            Add a CROSS JOIN
    raw join <sql>                Add a join fragment verbatim
    order <col> [asc|desc], ...   Add ORDER BY
    limit <n> / offset <n>        Set LIMIT / OFFSET

  CTEs:
    save <name>                   Save the current query under name
    with <name> [<name>...]       Attach saved queries as CTEs
    with recursive <name>...      Attach and mark the clause RECURSIVE
    recursive                     Mark the clause RECURSIVE
    merge <name>                  Merge a saved query (CTEs, wheres, joins)
    ctes                          List the CTEs the query will emit
    queries                       List saved queries

  Output:
    sql                           Show the generated SQL
    engine <postgres|mysql|sqlite>  Switch dialect
    parameterize                  Toggle bind parameters
    softdelete [col [on t...]]    Filter soft-deleted rows ('softdelete off')
    reset                         Clear the query and saved queries

  Database:
    connect [<dsn>]               Connect (reconnects to the last DSN)
    disconnect                    Close the connection
    exec                          Run the current query

    help                          Show this help
    exit / quit                   Leave the REPL
`)
}

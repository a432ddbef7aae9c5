package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/visitors"
)

func render(t *testing.T, doc string) string {
	t.Helper()
	p, err := Parse([]byte(doc))
	require.NoError(t, err)
	m, err := p.Build()
	require.NoError(t, err)
	sql, _, err := m.ToSQL(visitors.NewPostgresVisitor(visitors.WithoutParams()))
	require.NoError(t, err)
	return sql
}

func buildErr(t *testing.T, doc string) error {
	t.Helper()
	p, err := Parse([]byte(doc))
	require.NoError(t, err)
	_, err = p.Build()
	require.Error(t, err)
	return err
}

const nestedPlan = `
engine: postgres
queries:
  one:
    from: users
    where:
      - {column: personal_id, op: "=", value: 1}
  two:
    from: users
    where:
      - {column: personal_id, op: "=", value: 2}
    with: [one]
main:
  from: users
  select: [id, name]
  with: [two]
`

func TestParseKeepsQueryOrder(t *testing.T) {
	t.Parallel()
	p, err := Parse([]byte(nestedPlan))
	require.NoError(t, err)
	assert.Equal(t, "postgres", p.Engine)
	require.Len(t, p.Queries, 2)
	assert.Equal(t, "one", p.Queries[0].Name)
	assert.Equal(t, "two", p.Queries[1].Name)
	assert.Equal(t, []string{"one"}, p.Queries[1].Query.With)
}

func TestBuildHoistsNestedQueries(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		`WITH "one" AS (SELECT * FROM "users" WHERE "users"."personal_id" = 1), `+
			`"two" AS (SELECT * FROM "users" WHERE "users"."personal_id" = 2) `+
			`SELECT "users"."id", "users"."name" FROM "users"`,
		render(t, nestedPlan))
}

func TestBuildFullSelect(t *testing.T) {
	t.Parallel()
	sql := render(t, `
queries:
  recent:
    from: orders
    where:
      - {column: created_at, op: ">=", value: "2024-01-01"}
main:
  from: users
  distinct: true
  select: [users.id, recent.total]
  with: [recent]
  joins:
    - {table: recent, on: {left: id, right: user_id}}
    - {raw: "CROSS JOIN LATERAL (SELECT 1) x"}
  where:
    - {column: status, op: in, value: [active, trial]}
    - {column: deleted_at, op: is null}
  order:
    - {column: id, desc: true}
  limit: 10
  offset: 20
`)
	assert.Equal(t,
		`WITH "recent" AS (SELECT * FROM "orders" WHERE "orders"."created_at" >= '2024-01-01') `+
			`SELECT DISTINCT "users"."id", "recent"."total" FROM "users" `+
			`INNER JOIN "recent" ON "users"."id" = "recent"."user_id" `+
			`CROSS JOIN LATERAL (SELECT 1) x `+
			`WHERE "users"."status" IN ('active', 'trial') AND "users"."deleted_at" IS NULL `+
			`ORDER BY "users"."id" DESC LIMIT 10 OFFSET 20`,
		sql)
}

func TestBuildMergeCombinesRegistriesAndWheres(t *testing.T) {
	t.Parallel()
	sql := render(t, `
queries:
  a:
    from: users
    where: [{column: personal_id, op: "=", value: 1}]
  filtered:
    from: users
    where: [{column: age, op: ">", value: 18}]
    with: [a]
main:
  from: users
  where: [{column: active, op: "=", value: true}]
  merge: [filtered]
`)
	assert.Equal(t,
		`WITH "a" AS (SELECT * FROM "users" WHERE "users"."personal_id" = 1) `+
			`SELECT * FROM "users" WHERE "users"."active" = TRUE AND "users"."age" > 18`,
		sql)
}

func TestBuildRecursiveRawBody(t *testing.T) {
	t.Parallel()
	sql := render(t, `
queries:
  tree:
    raw: "SELECT id FROM nodes WHERE parent_id IS NULL UNION ALL SELECT n.id FROM nodes n JOIN tree t ON n.parent_id = t.id"
main:
  from: tree
  with: [tree]
  recursive: true
`)
	assert.Equal(t,
		`WITH RECURSIVE "tree" AS (SELECT id FROM nodes WHERE parent_id IS NULL UNION ALL `+
			`SELECT n.id FROM nodes n JOIN tree t ON n.parent_id = t.id) SELECT * FROM "tree"`,
		sql)
}

func TestBuildSoftDeleteReachesBodies(t *testing.T) {
	t.Parallel()
	sql := render(t, `
queries:
  active:
    from: users
    where: [{column: active, op: "=", value: true}]
main:
  from: active
  with: [active]
softdelete: {}
`)
	assert.Equal(t,
		`WITH "active" AS (SELECT * FROM "users" WHERE "users"."active" = TRUE AND "users"."deleted_at" IS NULL) `+
			`SELECT * FROM "active"`,
		sql)
}

func TestBuildSoftDeleteTables(t *testing.T) {
	t.Parallel()
	sql := render(t, `
main:
  from: users
  joins:
    - {table: posts, on: {left: id, right: user_id}}
softdelete:
  column: removed_at
  tables: [posts]
`)
	assert.Equal(t,
		`SELECT * FROM "users" INNER JOIN "posts" ON "users"."id" = "posts"."user_id" WHERE "posts"."removed_at" IS NULL`,
		sql)
}

func TestBuildParamsFollowTextOrder(t *testing.T) {
	t.Parallel()
	p, err := Parse([]byte(nestedPlan))
	require.NoError(t, err)
	m, err := p.Build()
	require.NoError(t, err)
	m = m.Where(nodes.NewTable("users").Col("age").Gt(30))

	sql, params, err := m.ToSQL(visitors.NewPostgresVisitor(visitors.WithParams()))
	require.NoError(t, err)
	assert.Contains(t, sql, `"users"."personal_id" = $1`)
	assert.Contains(t, sql, `"users"."personal_id" = $2`)
	assert.Contains(t, sql, `"users"."age" > $3`)
	assert.Equal(t, []any{1, 2, 30}, params)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		doc  string
		is   error
		msg  string
	}{
		{
			name: "forward reference",
			doc: `
queries:
  a: {from: users, with: [b]}
  b: {from: users}
main: {from: a, with: [a]}
`,
			is:  ErrUnknownQuery,
			msg: `plan: query "a": with: unknown query "b"`,
		},
		{
			name: "self reference",
			doc: `
queries:
  a: {from: users, with: [a]}
main: {from: a}
`,
			is: ErrUnknownQuery,
		},
		{
			name: "unknown in main",
			doc:  `main: {from: users, merge: [nope]}`,
			is:   ErrUnknownQuery,
			msg:  `plan: main: merge: unknown query "nope"`,
		},
		{
			name: "invalid name",
			doc: `
queries:
  "bad-name": {from: users}
main: {from: users}
`,
			is: cte.ErrInvalidIdentifier,
		},
		{
			name: "missing main",
			doc:  `queries: {a: {from: users}}`,
			is:   ErrNoMain,
		},
		{name: "missing from", doc: `main: {select: [id]}`, msg: "plan: main: from is required"},
		{name: "bad operator", doc: `main: {from: u, where: [{column: a, op: "~~", value: 1}]}`, msg: `plan: main: where[0]: unsupported operator "~~"`},
		{name: "empty in", doc: `main: {from: u, where: [{column: a, op: in, value: []}]}`, msg: "needs at least one value"},
		{name: "join without on", doc: `main: {from: u, joins: [{table: p}]}`, msg: "plan: main: joins[0]: inner join needs an on clause"},
		{name: "cross join with on", doc: `main: {from: u, joins: [{table: p, type: cross, on: {left: a, right: b}}]}`, msg: "takes no on clause"},
		{name: "bad join type", doc: `main: {from: u, joins: [{table: p, type: sideways, on: {left: a, right: b}}]}`, msg: `unknown join type "sideways"`},
		{name: "raw main", doc: `main: {raw: "SELECT 1"}`, msg: "only allowed for named queries"},
		{name: "raw with from", doc: "queries: {a: {raw: \"SELECT 1\", from: u}}\nmain: {from: a}", msg: "raw cannot be combined"},
		{
			name: "merge raw",
			doc: `
queries:
  r: {raw: "SELECT 1"}
main: {from: u, merge: [r]}
`,
			msg: `merge: query "r" is raw SQL`,
		},
		{name: "order on star", doc: `main: {from: u, order: [{column: "*"}]}`, msg: "is not a single column"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := buildErr(t, tc.doc)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
			if tc.msg != "" {
				assert.ErrorContains(t, err, tc.msg)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"empty":            "",
		"unknown field":    "main: {from: users}\nbogus: 1\n",
		"unknown in main":  "main: {from: users, frm: x}\n",
		"unknown in query": "queries: {a: {form: users}}\nmain: {from: a}\n",
		"queries list":     "queries: [a, b]\nmain: {from: a}\n",
		"duplicate query":  "queries:\n  a: {from: u}\n  a: {from: v}\nmain: {from: a}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(nestedPlan), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, p.Queries, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestColumn(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	v := visitors.NewPostgresVisitor()
	cases := []struct {
		ref  string
		want string
	}{
		{"id", `"users"."id"`},
		{"posts.title", `"posts"."title"`},
		{"*", "*"},
		{"posts.*", `"posts".*`},
	}
	for _, tc := range cases {
		n, err := Column(tc.ref, users)
		require.NoError(t, err, tc.ref)
		assert.Equal(t, tc.want, n.Accept(v), tc.ref)
	}

	_, err := Column("id", nil)
	assert.ErrorContains(t, err, "needs a table qualifier")
	_, err = Column(".id", users)
	assert.Error(t, err)
	_, err = Column("  ", users)
	assert.Error(t, err)
}

func TestConditionOperators(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	v := visitors.NewPostgresVisitor()
	cases := []struct {
		cond Condition
		want string
	}{
		{Condition{"age", "=", 1}, `"users"."age" = 1`},
		{Condition{"age", "!=", 1}, `"users"."age" != 1`},
		{Condition{"age", "<>", 1}, `"users"."age" != 1`},
		{Condition{"age", ">", 1}, `"users"."age" > 1`},
		{Condition{"age", ">=", 1}, `"users"."age" >= 1`},
		{Condition{"age", "<", 1}, `"users"."age" < 1`},
		{Condition{"age", "<=", 1}, `"users"."age" <= 1`},
		{Condition{"name", "LIKE", "a%"}, `"users"."name" LIKE 'a%'`},
		{Condition{"name", "not  like", "a%"}, `"users"."name" NOT LIKE 'a%'`},
		{Condition{"id", "in", []any{1, 2}}, `"users"."id" IN (1, 2)`},
		{Condition{"id", "in", 3}, `"users"."id" IN (3)`},
		{Condition{"id", "not in", []any{4}}, `"users"."id" NOT IN (4)`},
		{Condition{"deleted_at", "is null", nil}, `"users"."deleted_at" IS NULL`},
		{Condition{"deleted_at", "IS NOT NULL", nil}, `"users"."deleted_at" IS NOT NULL`},
	}
	for _, tc := range cases {
		n, err := tc.cond.Node(users)
		require.NoError(t, err, tc.cond.Op)
		assert.Equal(t, tc.want, n.Accept(v), tc.cond.Op)
	}
	assert.Len(t, Operators, 13)
}

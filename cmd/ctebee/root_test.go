package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ctebee/internal/config"
	"github.com/bawdo/ctebee/internal/db"
)

const testPlan = `
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
  from: two
  select: [name]
  with: [two]
`

// isolate points config discovery at empty directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePlan(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	path := writePlan(t, dir, testPlan)

	out, err := execute(t, "render", path, "--params=false")
	require.NoError(t, err)
	assert.Equal(t,
		`WITH "one" AS (SELECT * FROM "users" WHERE "users"."personal_id" = 1), `+
			`"two" AS (SELECT * FROM "users" WHERE "users"."personal_id" = 2) `+
			`SELECT "two"."name" FROM "two";`+"\n",
		out)
}

func TestRenderCommandParamsAndEngine(t *testing.T) {
	dir := isolate(t)
	path := writePlan(t, dir, testPlan)

	out, err := execute(t, "render", path, "--engine", "mysql")
	require.NoError(t, err)
	assert.Equal(t,
		"WITH `one` AS (SELECT * FROM `users` WHERE `users`.`personal_id` = ?), "+
			"`two` AS (SELECT * FROM `users` WHERE `users`.`personal_id` = ?) "+
			"SELECT `two`.`name` FROM `two`;\n-- params: [1 2]\n",
		out)
}

func TestRenderUsesConfigFileAndPlanEngine(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ctebee.yaml"), []byte("engine: mysql\nparameterize: false\n"), 0o600))

	out, err := execute(t, "render", writePlan(t, dir, testPlan))
	require.NoError(t, err)
	assert.Contains(t, out, "WITH `one` AS")
	assert.NotContains(t, out, "params")

	out, err = execute(t, "render", writePlan(t, dir, "engine: postgres\n"+testPlan))
	require.NoError(t, err)
	assert.Contains(t, out, `WITH "one" AS`)
}

func TestRenderErrors(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "render")
	assert.Error(t, err)

	_, err = execute(t, "render", filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, "render", writePlan(t, dir, "main: {from: users, with: [nope]}\n"))
	assert.ErrorContains(t, err, `unknown query "nope"`)

	_, err = execute(t, "render", writePlan(t, dir, testPlan), "--engine", "oracle")
	assert.ErrorContains(t, err, `unknown engine "oracle"`)

	_, err = execute(t, "render", writePlan(t, dir, testPlan), "--log-level", "loud")
	assert.ErrorContains(t, err, "log:")
}

func TestExecCommand(t *testing.T) {
	dir := isolate(t)
	dsn := filepath.Join(dir, "test.db")

	conn, err := db.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	_, err = conn.Exec(context.Background(), `CREATE TABLE users (id INTEGER, personal_id INTEGER, name TEXT)`)
	require.NoError(t, err)
	_, err = conn.Exec(context.Background(), `INSERT INTO users VALUES (1, 1, 'ada'), (2, 2, 'bob'), (3, 2, 'cy')`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	path := writePlan(t, dir, testPlan)
	out, err := execute(t, "exec", path, "--engine", "sqlite", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "| bob  |")
	assert.Contains(t, out, "| cy   |")
	assert.Contains(t, out, "(2 rows)")

	out, err = execute(t, "exec", path, "--engine", "sqlite", "--dsn", dsn, "--max-rows", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "(truncated at 1 rows)")
}

func TestExecRequiresDSN(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "exec", writePlan(t, dir, testPlan))
	assert.ErrorContains(t, err, "no database configured")
}

func TestExecUsesDatabaseURL(t *testing.T) {
	dir := isolate(t)
	dsn := filepath.Join(dir, "env.db")
	t.Setenv("DATABASE_URL", dsn)
	t.Setenv("CTEBEE_ENGINE", "sqlite")

	_, err := execute(t, "exec", writePlan(t, dir, testPlan))
	// the database exists but has no users table
	assert.ErrorContains(t, err, "db: query")
}

func TestFlagDefaultsMatchConfig(t *testing.T) {
	isolate(t)
	defaults := config.Defaults()
	f := newRootCmd().PersistentFlags()

	assert.Equal(t, strconv.Itoa(defaults.MaxRows), f.Lookup("max-rows").DefValue)
	assert.Equal(t, defaults.Engine, f.Lookup("engine").DefValue)
	assert.Equal(t, defaults.LogLevel, f.Lookup("log-level").DefValue)
	assert.Equal(t, strconv.FormatBool(defaults.Parameterize), f.Lookup("params").DefValue)
}

func TestExecDefaultRowLimit(t *testing.T) {
	dir := isolate(t)
	dsn := filepath.Join(dir, "many.db")

	conn, err := db.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	_, err = conn.Exec(context.Background(),
		`CREATE TABLE nums AS WITH RECURSIVE n(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM n WHERE x < 150) SELECT x FROM n`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	out, err := execute(t, "exec", writePlan(t, dir, "main: {from: nums}\n"), "--engine", "sqlite", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "(truncated at 100 rows)")
}

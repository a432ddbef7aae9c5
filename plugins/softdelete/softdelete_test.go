package softdelete

import (
	"testing"

	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/visitors"
)

func toSQL(t *testing.T, core *nodes.SelectCore) string {
	t.Helper()
	return core.Accept(visitors.NewPostgresVisitor())
}

func usersJoinPosts() *nodes.SelectCore {
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")
	return &nodes.SelectCore{
		From: users,
		Joins: []*nodes.JoinNode{{
			Right: posts,
			Type:  nodes.InnerJoin,
			On:    users.Col("id").Eq(posts.Col("user_id")),
		}},
	}
}

const joinPrefix = `SELECT * FROM "users" INNER JOIN "posts" ON "users"."id" = "posts"."user_id"`

func TestTransformSelect(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	tests := []struct {
		name     string
		core     *nodes.SelectCore
		sd       *SoftDelete
		expected string
	}{
		{
			"default column",
			&nodes.SelectCore{From: users},
			New(),
			`SELECT * FROM "users" WHERE "users"."deleted_at" IS NULL`,
		},
		{
			"custom column",
			&nodes.SelectCore{From: users},
			New(WithColumn("removed_at")),
			`SELECT * FROM "users" WHERE "users"."removed_at" IS NULL`,
		},
		{
			"keeps existing wheres",
			&nodes.SelectCore{From: users, Wheres: []nodes.Node{users.Col("active").Eq(true)}},
			New(),
			`SELECT * FROM "users" WHERE "users"."active" = TRUE AND "users"."deleted_at" IS NULL`,
		},
		{
			"joined tables",
			usersJoinPosts(),
			New(),
			joinPrefix + ` WHERE "users"."deleted_at" IS NULL AND "posts"."deleted_at" IS NULL`,
		},
		{
			"restricted tables",
			usersJoinPosts(),
			New(WithTables("users")),
			joinPrefix + ` WHERE "users"."deleted_at" IS NULL`,
		},
		{
			"alias qualifies column",
			&nodes.SelectCore{From: users.Alias("u")},
			New(),
			`SELECT * FROM "users" AS "u" WHERE "u"."deleted_at" IS NULL`,
		},
		{
			"alias matched by table name",
			&nodes.SelectCore{From: users.Alias("u")},
			New(WithTables("users")),
			`SELECT * FROM "users" AS "u" WHERE "u"."deleted_at" IS NULL`,
		},
		{
			"per-table columns",
			usersJoinPosts(),
			New(WithTableColumn("users", "deleted_at"), WithTableColumn("posts", "removed_at")),
			joinPrefix + ` WHERE "users"."deleted_at" IS NULL AND "posts"."removed_at" IS NULL`,
		},
		{
			"per-table column falls back to default",
			usersJoinPosts(),
			New(WithTableColumn("posts", "removed_at"), WithTables("users", "posts")),
			joinPrefix + ` WHERE "users"."deleted_at" IS NULL AND "posts"."removed_at" IS NULL`,
		},
		{
			"no tables",
			&nodes.SelectCore{},
			New(),
			`SELECT *`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.sd.TransformSelect(tt.core)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := toSQL(t, result); got != tt.expected {
				t.Errorf("expected:\n  %s\ngot:\n  %s", tt.expected, got)
			}
		})
	}
}

// --- CTE references ---

func TestWithCTEsSkipsCTEReferences(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	core := &nodes.SelectCore{
		From: nodes.CTERef("recent"),
		Joins: []*nodes.JoinNode{{
			Right: users,
			Type:  nodes.InnerJoin,
			On:    users.Col("id").Eq(nodes.CTERef("recent").Col("user_id")),
		}},
	}

	sd := New().WithCTEs([]string{"recent"})
	result, err := sd.TransformSelect(core)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `SELECT * FROM "recent" INNER JOIN "users" ON "users"."id" = "recent"."user_id" WHERE "users"."deleted_at" IS NULL`
	if got := toSQL(t, result); got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func TestWithCTEsLeavesOriginalUnscoped(t *testing.T) {
	t.Parallel()
	sd := New(WithColumn("removed_at"))
	scoped, ok := sd.WithCTEs([]string{"users"}).(*SoftDelete)
	if !ok {
		t.Fatal("expected *SoftDelete")
	}
	if scoped == sd {
		t.Fatal("expected a copy")
	}
	if scoped.Column != "removed_at" {
		t.Errorf("expected column to carry over, got %q", scoped.Column)
	}
	if len(sd.ctes) != 0 {
		t.Errorf("expected original to stay unscoped, got %v", sd.ctes)
	}

	result, _ := sd.TransformSelect(&nodes.SelectCore{From: nodes.NewTable("users")})
	if len(result.Wheres) != 1 {
		t.Errorf("expected original to filter users, got %d wheres", len(result.Wheres))
	}
}

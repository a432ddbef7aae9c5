package cte_test

import (
	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/internal/testutil"
	"github.com/bawdo/ctebee/nodes"
)

// query is a body that carries its own registry.
type query struct {
	sql  string
	ctes cte.Registry
}

func (q *query) Accept(nodes.Visitor) string { return q.sql }
func (q *query) CTEs() cte.Registry        { return q.ctes }

func raw(sql string) nodes.Node { return nodes.NewSqlLiteral(sql) }

// compile renders r (flattened) over a fixed base with the stub visitor:
// each entry reads name(body).
func compile(r cte.Registry) string {
	return r.Flatten().Compile(testutil.StubVisitor{}, raw("base"))
}

func mustAttach(r cte.Registry, name string, body nodes.Node) cte.Registry {
	out, err := r.Attach(name, body)
	if err != nil {
		panic(err)
	}
	return out
}

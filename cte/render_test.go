package cte_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bawdo/ctebee/cte"
)

func TestRender(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		recursive bool
		defs      []string
		want      string
	}{
		{"empty", false, nil, "SELECT 1"},
		{"empty recursive", true, nil, "SELECT 1"},
		{"single", false, []string{`"a" AS (x)`}, `WITH "a" AS (x) SELECT 1`},
		{"many", false, []string{`"a" AS (x)`, `"b" AS (y)`}, `WITH "a" AS (x), "b" AS (y) SELECT 1`},
		{"recursive", true, []string{`"a" AS (x)`}, `WITH RECURSIVE "a" AS (x) SELECT 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cte.Render(tt.recursive, tt.defs, "SELECT 1"))
		})
	}
}

func TestRenderDoesNotReorder(t *testing.T) {
	t.Parallel()
	got := cte.Render(false, []string{"z", "a"}, "base")
	assert.Equal(t, "WITH z, a base", got)
}

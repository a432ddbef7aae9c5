package main

import (
	"sort"
	"strings"

	"github.com/bawdo/ctebee/internal/plan"
	"github.com/bawdo/ctebee/visitors"
)

// completionContext describes what kind of completion is appropriate.
type completionContext int

const (
	contextCommand   completionContext = iota // start of line or partial command
	contextTableName                          // after from/join
	contextColumnRef                          // after select/where
	contextEngine                             // after engine
	contextOrderDir                           // after a column ref in order context
	contextOperator                           // after a column ref in condition context
	contextSaved                              // after with/merge
)

var orderDirs = []string{"asc", "desc"}

// replCompleter implements readline's AutoCompleter interface.
type replCompleter struct {
	sess *Session
}

// Do returns completion candidates for the current line/cursor position.
// length is the number of chars from end of line[:pos] that form the prefix being completed.
// newLine contains the suffixes to append for each candidate.
func (c *replCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	ctx, prefix := c.parseContext(string(line[:pos]))

	var candidates []string
	switch ctx {
	case contextCommand:
		candidates = filterPrefix(c.sess.commandNames(), prefix)
	case contextTableName:
		candidates = c.completeTableNames(prefix)
	case contextColumnRef:
		candidates = c.completeColumnRef(prefix)
	case contextEngine:
		candidates = filterPrefix(visitors.Engines, prefix)
	case contextOrderDir:
		candidates = filterPrefix(orderDirs, prefix)
	case contextOperator:
		candidates = filterPrefix(plan.Operators, prefix)
	case contextSaved:
		candidates = filterPrefix(c.sess.savedNames(), prefix)
	}

	for _, cand := range candidates {
		newLine = append(newLine, []rune(cand[len(prefix):]+" "))
	}
	return newLine, len([]rune(prefix))
}

// parseContext examines the line up to cursor and determines what kind of
// completion is needed and the current prefix being typed.
func (c *replCompleter) parseContext(line string) (completionContext, string) {
	lower := strings.ToLower(line)
	for _, cmd := range c.sess.commands {
		if !strings.HasSuffix(cmd.prefix, " ") || cmd.completer == nil {
			continue
		}
		if strings.HasPrefix(lower, cmd.prefix) {
			return cmd.completer(line[len(cmd.prefix):])
		}
	}
	return contextCommand, strings.TrimSpace(line)
}

// completeTableNames offers saved query names and, when connected, the
// database's tables.
func (c *replCompleter) completeTableNames(prefix string) []string {
	names := c.sess.savedNames()
	if c.sess.conn != nil {
		if tables, err := c.sess.conn.Tables(c.sess.ctx); err == nil {
			names = append(names, tables...)
		}
	}
	names = dedup(names)
	sort.Strings(names)
	return filterPrefix(names, prefix)
}

// completeColumnRef completes "table." into the table's columns when
// connected, and bare words into table names.
func (c *replCompleter) completeColumnRef(prefix string) []string {
	table, _, ok := strings.Cut(prefix, ".")
	if !ok {
		return c.completeTableNames(prefix)
	}
	candidates := []string{table + ".*"}
	if c.sess.conn != nil {
		if cols, err := c.sess.conn.Columns(c.sess.ctx, table); err == nil {
			for _, col := range cols {
				candidates = append(candidates, table+"."+col)
			}
		}
	}
	return filterPrefix(candidates, prefix)
}

// filterPrefix returns items that start with prefix (case-insensitive).
func filterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		return append([]string(nil), items...)
	}
	lowerPrefix := strings.ToLower(prefix)
	var result []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), lowerPrefix) {
			result = append(result, item)
		}
	}
	return result
}

func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	var result []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}

// lastToken returns the text after the last space or comma.
func lastToken(s string) string {
	if i := strings.LastIndexAny(s, " ,\t"); i >= 0 {
		return s[i+1:]
	}
	return s
}

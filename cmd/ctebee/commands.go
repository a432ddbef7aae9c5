package main

import (
	"sort"
	"strings"

	"github.com/bawdo/ctebee/nodes"
)

// commandEntry maps a REPL prefix to its handler and optional tab-completer.
type commandEntry struct {
	prefix    string
	handler   func(args string) error
	completer func(args string) (completionContext, string) // nil = no arg completion
}

// initCommands builds the command registry and sorts by prefix length descending.
func (s *Session) initCommands() {
	s.commands = []commandEntry{
		{prefix: "sql", handler: func(_ string) error { return s.cmdSQL() }},
		{prefix: "reset", handler: func(_ string) error { return s.cmdReset() }},
		{prefix: "help", handler: func(_ string) error { s.cmdHelp(); return nil }},

		// --- query building ---
		{prefix: "from ", handler: s.cmdFrom, completer: completeTableArgs},
		{prefix: "select ", handler: s.cmdSelect, completer: completeColumnArgs},
		{prefix: "distinct", handler: func(_ string) error { return s.cmdDistinct() }},
		{prefix: "where ", handler: s.cmdWhere, completer: completeColumnArgs},
		{prefix: "order ", handler: s.cmdOrder, completer: completeOrderArgs},
		{prefix: "limit ", handler: s.cmdLimit},
		{prefix: "offset ", handler: s.cmdOffset},

		// --- joins ---
		{prefix: "join ", handler: func(a string) error { return s.cmdJoin(a, nodes.InnerJoin) }, completer: completeJoinArgs},
		{prefix: "left join ", handler: func(a string) error { return s.cmdJoin(a, nodes.LeftOuterJoin) }, completer: completeJoinArgs},
		{prefix: "right join ", handler: func(a string) error { return s.cmdJoin(a, nodes.RightOuterJoin) }, completer: completeJoinArgs},
		{prefix: "full join ", handler: func(a string) error { return s.cmdJoin(a, nodes.FullOuterJoin) }, completer: completeJoinArgs},
		{prefix: "cross join ", handler: s.cmdCrossJoin, completer: completeJoinArgs},
		{prefix: "raw join ", handler: s.cmdRawJoin},

		// --- CTEs ---
		{prefix: "save ", handler: s.cmdSave},
		{prefix: "with recursive ", handler: func(a string) error { return s.cmdWith(a, true) }, completer: completeSavedArgs},
		{prefix: "with ", handler: func(a string) error { return s.cmdWith(a, false) }, completer: completeSavedArgs},
		{prefix: "recursive", handler: func(_ string) error { return s.cmdRecursive() }},
		{prefix: "merge ", handler: s.cmdMerge, completer: completeSavedArgs},
		{prefix: "ctes", handler: func(_ string) error { return s.cmdCTEs() }},
		{prefix: "queries", handler: func(_ string) error { return s.cmdQueries() }},

		// --- settings ---
		{prefix: "engine ", handler: s.cmdEngine, completer: completeEngineArgs},
		{prefix: "parameterize", handler: func(_ string) error { return s.cmdParameterize() }},
		{prefix: "softdelete ", handler: s.cmdSoftDelete},
		{prefix: "softdelete", handler: func(_ string) error { return s.cmdSoftDelete("") }},

		// --- database connectivity ---
		{prefix: "connect ", handler: s.cmdConnect},
		{prefix: "connect", handler: func(_ string) error { return s.cmdConnect("") }},
		{prefix: "disconnect", handler: func(_ string) error { return s.cmdDisconnect() }},
		{prefix: "exec", handler: func(_ string) error { return s.cmdExec() }},
	}

	sort.SliceStable(s.commands, func(i, j int) bool {
		return len(s.commands[i].prefix) > len(s.commands[j].prefix)
	})
}

// commandNames derives the command name list from the registry for tab completion.
func (s *Session) commandNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range s.commands {
		name := strings.TrimRight(cmd.prefix, " ")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	// exit/quit are handled by the REPL loop, not Execute().
	names = append(names, "exit", "quit")
	sort.Strings(names)
	return names
}

// --- argument completers ---

// completeJoinArgs: table name, then column refs in the ON clause.
func completeJoinArgs(args string) (completionContext, string) {
	words := strings.Fields(args)
	if len(words) == 0 {
		return contextTableName, ""
	}
	if strings.Contains(args, " ") {
		if strings.HasSuffix(args, " ") {
			return contextColumnRef, ""
		}
		return contextColumnRef, words[len(words)-1]
	}
	return contextTableName, args
}

func completeTableArgs(args string) (completionContext, string) {
	return contextTableName, strings.TrimSpace(args)
}

// completeColumnArgs completes column refs, then operators after a
// qualified column.
func completeColumnArgs(args string) (completionContext, string) {
	if strings.HasSuffix(args, " ") {
		prev := strings.Fields(args)
		if len(prev) > 0 && strings.Contains(prev[len(prev)-1], ".") {
			return contextOperator, ""
		}
		return contextColumnRef, ""
	}
	return contextColumnRef, lastToken(args)
}

// completeOrderArgs completes column refs, then a direction.
func completeOrderArgs(args string) (completionContext, string) {
	if strings.HasSuffix(args, " ") {
		parts := strings.Fields(args)
		if len(parts) > 0 && strings.Contains(parts[len(parts)-1], ".") {
			return contextOrderDir, ""
		}
		return contextColumnRef, ""
	}
	last := lastToken(args)
	switch strings.ToLower(last) {
	case "a", "as", "d", "de", "des":
		return contextOrderDir, last
	}
	return contextColumnRef, last
}

func completeEngineArgs(args string) (completionContext, string) {
	return contextEngine, strings.TrimSpace(args)
}

func completeSavedArgs(args string) (completionContext, string) {
	return contextSaved, lastToken(args)
}

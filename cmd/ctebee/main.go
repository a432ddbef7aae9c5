// Command ctebee renders and runs SQL queries built from common table
// expressions.
//
// Usage:
//
//	ctebee render plan.yaml             print the SQL for a plan file
//	ctebee exec plan.yaml --dsn <dsn>   run a plan against a database
//	ctebee repl                         build queries interactively
//
// Settings come from flags, CTEBEE_* environment variables (DATABASE_URL
// for the DSN), a .env file and ./.ctebee.yaml or ~/.config/ctebee/config.yaml.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

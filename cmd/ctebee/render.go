package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bawdo/ctebee/internal/db"
	"github.com/bawdo/ctebee/internal/log"
	"github.com/bawdo/ctebee/internal/plan"
	"github.com/bawdo/ctebee/managers"
	"github.com/bawdo/ctebee/visitors"
)

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render <plan.yaml>",
		Short: "Print the SQL and bind values for a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, q, err := a.loadPlan(args[0])
			if err != nil {
				return err
			}
			v, err := visitors.ForEngine(engine, visitors.ParamOption(a.cfg.Parameterize))
			if err != nil {
				return err
			}
			sql, params, err := q.ToSQL(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s;\n", sql)
			if len(params) > 0 {
				_, _ = fmt.Fprintf(out, "-- params: %v\n", params)
			}
			return nil
		},
	}
}

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <plan.yaml>",
		Short: "Run a plan file against --dsn and print the rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DSN == "" {
				return errors.New("no database configured (set --dsn or DATABASE_URL)")
			}
			engine, q, err := a.loadPlan(args[0])
			if err != nil {
				return err
			}
			v, err := visitors.ForEngine(engine, visitors.WithParams())
			if err != nil {
				return err
			}
			sql, params, err := q.ToSQL(v)
			if err != nil {
				return err
			}

			conn, err := db.Open(cmd.Context(), engine, a.cfg.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			res, err := conn.Query(cmd.Context(), a.cfg.MaxRows, sql, params...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), res.Format())
			return nil
		},
	}
}

// loadPlan reads and builds a plan. The plan's engine, when set, overrides
// the configured one.
func (a *app) loadPlan(path string) (string, *managers.SelectManager, error) {
	p, err := plan.Load(path)
	if err != nil {
		return "", nil, err
	}
	q, err := p.Build()
	if err != nil {
		return "", nil, err
	}
	engine := a.cfg.Engine
	if p.Engine != "" {
		engine = p.Engine
	}
	log.Debug("plan loaded", zap.String("path", path), zap.String("engine", engine),
		zap.Strings("ctes", q.CTEs().Flatten().Names()))
	return engine, q, nil
}

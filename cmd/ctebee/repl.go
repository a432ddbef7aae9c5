package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
)

const replPrompt = "ctebee> "

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Build queries interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := NewSession(a.cfg.Engine, a.cfg.Parameterize)
			sess.ctx = cmd.Context()
			sess.maxRows = a.cfg.MaxRows
			sess.out = cmd.OutOrStdout()
			defer sess.close()

			rl, err := readline.NewFromConfig(&readline.Config{
				Prompt:          replPrompt,
				HistoryFile:     a.cfg.HistoryFile,
				HistoryLimit:    500,
				AutoComplete:    &replCompleter{sess: sess},
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("readline init: %w", err)
			}
			defer func() { _ = rl.Close() }()

			if a.cfg.DSN != "" {
				if err := sess.Execute("connect " + a.cfg.DSN); err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  Warning: connect failed: %v\n", err)
				}
			}

			_, _ = fmt.Fprintf(sess.out, "ctebee REPL (%s): type 'help' for commands, 'exit' to quit\n\n", sess.engine)
			return runLoop(rl, sess, cmd.ErrOrStderr())
		},
	}
}

// lineReader is the part of *readline.Instance the loop uses.
type lineReader interface {
	ReadLine() (string, error)
}

func runLoop(rl lineReader, sess *Session, errOut io.Writer) error {
	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := sess.Execute(line); err != nil {
			_, _ = fmt.Fprintf(errOut, "  Error: %v\n", err)
		}
	}
}

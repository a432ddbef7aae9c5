package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bawdo/ctebee/internal/config"
	"github.com/bawdo/ctebee/internal/log"
)

// app carries the settings shared by every subcommand.
type app struct {
	v          *viper.Viper
	cfg        config.Config
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "ctebee",
		Short:         "Build SQL statements with common table expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			log.Sync()
		},
	}

	defaults := config.Defaults()
	f := root.PersistentFlags()
	f.StringVarP(&a.configFile, "config", "c", "", "config file (default ./.ctebee.yaml or ~/.config/ctebee/config.yaml)")
	f.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	f.String("engine", defaults.Engine, "SQL dialect: postgres, mysql or sqlite")
	f.String("dsn", "", "database connection string (default $DATABASE_URL)")
	f.String("log-level", defaults.LogLevel, "log level: debug, info, warn, error or off")
	f.Bool("params", defaults.Parameterize, "render literals as bind parameters")
	f.Int("max-rows", defaults.MaxRows, "maximum rows printed by exec (0 for no limit)")

	for key, flag := range map[string]string{
		"engine":       "engine",
		"dsn":          "dsn",
		"log_level":    "log-level",
		"parameterize": "params",
		"max_rows":     "max-rows",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}

	root.AddCommand(newRenderCmd(a), newExecCmd(a), newReplCmd(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configFile, a.envFile)
	if err != nil {
		return err
	}
	if err := log.Setup(cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg
	log.Debug("config loaded",
		zap.String("engine", cfg.Engine),
		zap.Bool("parameterize", cfg.Parameterize),
		zap.String("file", a.v.ConfigFileUsed()))
	return nil
}

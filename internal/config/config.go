// Package config loads ctebee settings from defaults, an optional YAML
// file, a .env file and CTEBEE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bawdo/ctebee/visitors"
)

// Config is the resolved CLI configuration.
type Config struct {
	Engine       string `mapstructure:"engine"`
	DSN          string `mapstructure:"dsn"`
	Parameterize bool   `mapstructure:"parameterize"`
	HistoryFile  string `mapstructure:"history_file"`
	LogLevel     string `mapstructure:"log_level"`
	MaxRows      int    `mapstructure:"max_rows"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".ctebee_history")
	}
	return Config{
		Engine:       "postgres",
		Parameterize: true,
		HistoryFile:  history,
		LogLevel:     "off",
		MaxRows:      100,
	}
}

// New returns a viper instance with defaults and environment bindings
// installed. Callers may bind command-line flags to it before Load.
func New() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("engine", d.Engine)
	v.SetDefault("dsn", d.DSN)
	v.SetDefault("parameterize", d.Parameterize)
	v.SetDefault("history_file", d.HistoryFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("max_rows", d.MaxRows)

	v.SetEnvPrefix("CTEBEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("dsn", "CTEBEE_DSN", "DATABASE_URL")
	return v
}

// Load reads configuration into a Config. If file is empty, the first of
// ./.ctebee.yaml and ~/.config/ctebee/config.yaml that exists is used; a
// missing default file is not an error. dotenv names a .env file to load
// into the process environment first; variables already set win.
func Load(v *viper.Viper, file, dotenv string) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", dotenv, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else if _, err := os.Stat(".ctebee.yaml"); err == nil {
		v.SetConfigFile(".ctebee.yaml")
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ctebee"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	if !ValidEngine(c.Engine) {
		return fmt.Errorf("config: unknown engine %q (want one of %s)", c.Engine, strings.Join(visitors.Engines, ", "))
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("config: max_rows must not be negative, got %d", c.MaxRows)
	}
	return nil
}

// ValidEngine reports whether name is a supported engine.
func ValidEngine(name string) bool {
	for _, e := range visitors.Engines {
		if e == name {
			return true
		}
	}
	return false
}

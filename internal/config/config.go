// Package config loads runtime settings from .homotopy.yaml, HOMOTOPY_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/typecheck"
)

// Config holds all runtime configuration for a homotopy session.
type Config struct {
	Parallel      bool          `mapstructure:"parallel"`
	MaxWorkers    int           `mapstructure:"max_workers"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Database      string        `mapstructure:"database"`
	LogLevel      string        `mapstructure:"log_level"`
	TypecheckMode string        `mapstructure:"typecheck_mode"`
}

// New returns a viper instance reading cfgFile, or .homotopy.yaml from the
// working directory and then the home directory when cfgFile is empty. A
// missing default file is not an error; a missing explicit one is.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".homotopy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("HOMOTOPY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load reads configuration from v, applying built-in defaults for any values
// not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	v.SetDefault("parallel", false)
	v.SetDefault("max_workers", 4)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("database", "homotopy.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("typecheck_mode", "shallow")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be positive, got %d", c.MaxWorkers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel: debug, info, warn or error.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Mode parses TypecheckMode.
func (c Config) Mode() (typecheck.Mode, error) {
	m, err := typecheck.ParseMode(c.TypecheckMode)
	if err != nil {
		return typecheck.Shallow, fmt.Errorf("typecheck_mode: %w", err)
	}
	return m, nil
}

// Executor returns the executor structural operations should use.
func (c Config) Executor() core.Executor {
	if !c.Parallel {
		return core.Sequential{}
	}
	return core.NewBounded(c.MaxWorkers)
}

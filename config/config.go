// Package config loads service settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the full service configuration, read from the environment.
type Config struct {
	HTTP    HTTPConfig
	Seed    SeedConfig
	Session SessionConfig
	Log     LogConfig
}

// HTTPConfig configures the listener and graceful shutdown.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// SeedConfig selects where the initial accounts come from.
type SeedConfig struct {
	// DatabaseURL selects the Postgres seed source. Empty means the built-in accounts.
	DatabaseURL     string `env:"DATABASE_URL" env-default:""`
	InstallDefaults bool   `env:"SEED_INSTALL_DEFAULTS" env-default:"true"`
}

// SessionConfig controls login sessions.
type SessionConfig struct {
	TTL time.Duration `env:"SESSION_TTL" env-default:"10m"`
}

// LogConfig sets the log level and output format.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// Load reads an optional .env file from the working directory and then the environment.
// Variables already set in the environment win over the .env file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if _, err := cfg.Log.ParseLevel(); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json", "logfmt":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be text, json or logfmt, got %q", cfg.Log.Format)
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.Session.TTL)
	}
	return cfg, nil
}

// ParseLevel maps the configured level name onto a charmbracelet/log level.
func (c LogConfig) ParseLevel() (log.Level, error) {
	return log.ParseLevel(strings.ToLower(c.Level))
}

// Formatter maps the configured format onto a charmbracelet/log formatter.
func (c LogConfig) Formatter() log.Formatter {
	switch strings.ToLower(c.Format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

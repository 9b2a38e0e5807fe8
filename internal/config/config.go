// Package config loads service configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Question store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Engine    EngineConfig    `yaml:"engine"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Questions QuestionsConfig `yaml:"questions"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
	// EventBuffer is the event bus channel size.
	EventBuffer int `yaml:"event_buffer"`
}

// EngineConfig configures the layering engine.
type EngineConfig struct {
	RequireQuestionRelevance bool `yaml:"require_question_relevance"`
	StrictFlags              bool `yaml:"strict_flags"`
	StrictContext            bool `yaml:"strict_context"`
}

// CatalogConfig selects the add-on catalog. An empty path uses the
// embedded catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// QuestionsConfig configures the question store.
type QuestionsConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite
	DSN    string `yaml:"dsn"`
	// BankPath seeds the store from a YAML bank instead of the embedded one.
	BankPath string `yaml:"bank_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			EventBuffer: 256,
		},
		Questions: QuestionsConfig{
			Driver: DriverMemory,
			DSN:    "file:signatures.db?_pragma=busy_timeout(5000)",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file, then applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if p := os.Getenv("PORT"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%w: PORT %q: %v", ErrInvalidConfig, p, err)
		}
		c.Server.Port = v
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Questions.DSN = dsn
		c.Questions.Driver = DriverSQLite
	}
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		c.Catalog.Path = path
	}
	if path := os.Getenv("QUESTION_BANK_PATH"); path != "" {
		c.Questions.BankPath = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	flags := []struct {
		env string
		dst *bool
	}{
		{"REQUIRE_QUESTION_RELEVANCE", &c.Engine.RequireQuestionRelevance},
		{"STRICT_FLAGS", &c.Engine.StrictFlags},
		{"STRICT_CONTEXT", &c.Engine.StrictContext},
	}
	for _, f := range flags {
		raw := os.Getenv(f.env)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, f.env, raw, err)
		}
		*f.dst = v
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	switch c.Questions.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Questions.DSN == "" {
			return fmt.Errorf("%w: sqlite question store needs a dsn", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown question driver %q (valid: %s, %s)",
			ErrInvalidConfig, c.Questions.Driver, DriverMemory, DriverSQLite)
	}
	if _, err := c.Log.ZapLevel(); err != nil {
		return err
	}
	return nil
}

// ZapLevel parses the configured log level.
func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	if l.Level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return lvl, fmt.Errorf("%w: log level %q", ErrInvalidConfig, l.Level)
	}
	return lvl, nil
}

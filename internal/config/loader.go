// Package config assembles runtime configuration for the planner process:
// built-in defaults, then an optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures the values the planner process starts from.
type Config struct {
	// StorageDSN locates the durable per-client store.
	StorageDSN string `yaml:"storage_dsn"`
	// BaseURL is the address share links are built on. Empty produces
	// relative links.
	BaseURL string `yaml:"base_url"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StorageDSN: "file:planner.db",
		LogLevel:   "info",
	}
}

// Load assembles the effective configuration. A `.env` file is applied to
// the environment first when present; `PLANNER_CONFIG` may name a YAML file;
// `PLANNER_*` variables override individual fields last.
func Load() (Config, error) {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("PLANNER_CONFIG")); path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.merge(fileCfg)
	}

	if dsn := strings.TrimSpace(os.Getenv("PLANNER_STORAGE_DSN")); dsn != "" {
		cfg.StorageDSN = dsn
	}
	if base := strings.TrimSpace(os.Getenv("PLANNER_BASE_URL")); base != "" {
		cfg.BaseURL = base
	}
	if level := strings.TrimSpace(os.Getenv("PLANNER_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile reads a YAML configuration file. A missing file is tolerated so a
// configured-but-unwritten path behaves like defaults.
func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// merge copies the non-empty fields of other into the receiver.
func (c *Config) merge(other Config) {
	if other.StorageDSN != "" {
		c.StorageDSN = other.StorageDSN
	}
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

func (c Config) validate() error {
	invalid := make([]string, 0, 1)
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		invalid = append(invalid, "log_level")
	}
	if strings.TrimSpace(c.StorageDSN) == "" {
		invalid = append(invalid, "storage_dsn")
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

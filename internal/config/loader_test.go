package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearPlannerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PLANNER_CONFIG", "PLANNER_STORAGE_DSN", "PLANNER_BASE_URL", "PLANNER_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearPlannerEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StorageDSN != "file:planner.db" {
		t.Errorf("StorageDSN = %q, want default", cfg.StorageDSN)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty", cfg.BaseURL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearPlannerEnv(t)
	t.Setenv("PLANNER_STORAGE_DSN", "file:elsewhere.db")
	t.Setenv("PLANNER_BASE_URL", "https://planner.test/")
	t.Setenv("PLANNER_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StorageDSN != "file:elsewhere.db" {
		t.Errorf("StorageDSN = %q", cfg.StorageDSN)
	}
	if cfg.BaseURL != "https://planner.test/" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearPlannerEnv(t)

	path := filepath.Join(t.TempDir(), "planner.yaml")
	body := "storage_dsn: file:from-yaml.db\nbase_url: https://yaml.test/\nlog_level: warn\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	t.Setenv("PLANNER_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StorageDSN != "file:from-yaml.db" {
		t.Errorf("StorageDSN = %q", cfg.StorageDSN)
	}
	if cfg.BaseURL != "https://yaml.test/" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	clearPlannerEnv(t)

	path := filepath.Join(t.TempDir(), "planner.yaml")
	if err := os.WriteFile(path, []byte("storage_dsn: file:from-yaml.db\n"), 0o600); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	t.Setenv("PLANNER_CONFIG", path)
	t.Setenv("PLANNER_STORAGE_DSN", "file:from-env.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StorageDSN != "file:from-env.db" {
		t.Errorf("StorageDSN = %q, want env override", cfg.StorageDSN)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearPlannerEnv(t)
	t.Setenv("PLANNER_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StorageDSN != "file:planner.db" {
		t.Errorf("StorageDSN = %q, want default", cfg.StorageDSN)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearPlannerEnv(t)

	path := filepath.Join(t.TempDir(), "planner.yaml")
	if err := os.WriteFile(path, []byte("storage_dsn: [unclosed"), 0o600); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	t.Setenv("PLANNER_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a malformed config file")
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	clearPlannerEnv(t)
	t.Setenv("PLANNER_LOG_LEVEL", "loud")

	_, err := Load()
	if err == nil {
		t.Fatal("Load accepted an invalid log level")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error %q does not name the invalid field", err)
	}
}

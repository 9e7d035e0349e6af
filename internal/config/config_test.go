package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/macrolab/fredmcp/internal/config"
	"github.com/macrolab/fredmcp/internal/fault"
)

// clearEnv isolates a test from the caller's FRED_* environment. Chdir keeps a
// stray config.json in the working directory out of the resolution chain.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvDataDir, "")
	t.Setenv(config.EnvWorkers, "")
	t.Setenv(config.EnvRetryMax, "")
	t.Chdir(t.TempDir())
}

// ─── Defaults ─────────────────────────────────────────────────────────────────

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(config.Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.Workers != config.DefaultWorkers {
		t.Errorf("expected default workers %d, got %d", config.DefaultWorkers, cfg.Workers)
	}
	if cfg.Rate != config.DefaultRate {
		t.Errorf("expected default rate %g, got %g", config.DefaultRate, cfg.Rate)
	}
	if cfg.BaseURL != "https://api.stlouisfed.org/fred/" {
		t.Errorf("unexpected base URL %q", cfg.BaseURL)
	}
	if cfg.DataDir == "" || cfg.DBPath == "" {
		t.Error("data dir and db path should always resolve to something")
	}
}

// ─── Layering ─────────────────────────────────────────────────────────────────

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	writeConfigFile(t, `{"api_key": "from-file", "workers": 2}`)
	t.Setenv(config.EnvAPIKey, "from-env")

	cfg, err := config.Load(config.Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("env should beat file, got %q", cfg.APIKey)
	}
	if cfg.Workers != 2 {
		t.Errorf("file value without an env override should stick, got %d", cfg.Workers)
	}
	if cfg.ConfigPath == "" {
		t.Error("ConfigPath should record the loaded file")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAPIKey, "from-env")
	t.Setenv(config.EnvDataDir, "/env/data")

	cfg, err := config.Load(config.Flags{
		APIKey:  "from-flag",
		DataDir: "/flag/data",
		Workers: 8,
		Timeout: "45s",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "from-flag" {
		t.Errorf("flag should beat env, got %q", cfg.APIKey)
	}
	if cfg.DataDir != "/flag/data" {
		t.Errorf("flag should beat env, got %q", cfg.DataDir)
	}
	if cfg.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Workers)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", cfg.Timeout)
	}
}

func TestEnvWorkersIgnoredWhenInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvWorkers, "banana")

	cfg, err := config.Load(config.Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workers != config.DefaultWorkers {
		t.Errorf("unparseable env value should keep the default, got %d", cfg.Workers)
	}
}

// ─── Validate ─────────────────────────────────────────────────────────────────

func TestValidateMissingKey(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(config.Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); !fault.Is(err, fault.ConfigMissing) {
		t.Errorf("expected config_missing, got %v", err)
	}
}

func TestValidateWithKey(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(config.Flags{APIKey: "abcdef123456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

// ─── Redaction ────────────────────────────────────────────────────────────────

func TestRedactedAPIKey(t *testing.T) {
	cfg := &config.Config{APIKey: "abcdef123456"}
	got := cfg.RedactedAPIKey()
	if got != "ab****56" {
		t.Errorf("expected ab****56, got %q", got)
	}
	short := &config.Config{APIKey: "abc"}
	if short.RedactedAPIKey() != "****" {
		t.Errorf("short keys should redact fully, got %q", short.RedactedAPIKey())
	}
}

func writeConfigFile(t *testing.T, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(".", config.DefaultConfigFile), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

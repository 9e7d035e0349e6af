// Package config handles loading and resolving fredmcp configuration.
// Resolution order (first non-empty value wins):
//  1. CLI flags (--api-key, --data-dir, ...)
//  2. Environment variables (FRED_API_KEY, FRED_DATA_DIR, ...)
//  3. config.json in the current working directory
//
// The resolved Config is immutable after startup and passed into every
// component; there is no process-global mutable state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/macrolab/fredmcp/internal/fault"
)

const (
	DefaultConfigFile = "config.json"
	DefaultTimeout    = 30 * time.Second
	DefaultHardLimit  = 60 * time.Second
	DefaultWorkers    = 4
	DefaultRetryMax   = 4
	DefaultRate       = 5.0

	EnvAPIKey   = "FRED_API_KEY"
	EnvDataDir  = "FRED_DATA_DIR"
	EnvWorkers  = "FRED_WORKERS"
	EnvRetryMax = "FRED_RETRY_MAX"
)

// File is the on-disk representation of config.json.
type File struct {
	APIKey   string  `json:"api_key"`
	DataDir  string  `json:"data_dir"`
	Timeout  string  `json:"timeout"`
	Workers  int     `json:"workers"`
	RetryMax int     `json:"retry_max"`
	Rate     float64 `json:"rate"`
	BaseURL  string  `json:"base_url"`
	DBPath   string  `json:"db_path"`
}

// Config is the fully-resolved runtime configuration.
type Config struct {
	APIKey      string
	DataDir     string        // root for series folders and dataset folders
	Timeout     time.Duration // gateway soft deadline
	HardTimeout time.Duration // gateway hard deadline
	Workers     int           // tools/call worker cap
	RetryMax    int           // gateway retry budget
	Rate        float64       // gateway requests per second
	BaseURL     string
	DBPath      string // bbolt series-metadata cache
	ConfigPath  string // path of the config.json that was loaded (empty if none)
	Debug       bool
}

// Flags holds CLI flag overrides applied on top of file and environment.
type Flags struct {
	APIKey  string
	DataDir string
	Workers int
	Rate    float64
	Timeout string
	Debug   bool
}

// Load resolves configuration from all sources.
func Load(flags Flags) (*Config, error) {
	cfg := &Config{
		Timeout:     DefaultTimeout,
		HardTimeout: DefaultHardLimit,
		Workers:     DefaultWorkers,
		RetryMax:    DefaultRetryMax,
		Rate:        DefaultRate,
		BaseURL:     "https://api.stlouisfed.org/fred/",
	}

	// Layer 1: config.json (lowest priority)
	if f, path, err := loadFile(); err == nil {
		applyFile(cfg, f, path)
	}

	// Layer 2: environment
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv(EnvRetryMax); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetryMax = n
		}
	}

	// Layer 3: CLI flags (highest priority)
	if flags.APIKey != "" {
		cfg.APIKey = flags.APIKey
	}
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	if flags.Workers > 0 {
		cfg.Workers = flags.Workers
	}
	if flags.Rate > 0 {
		cfg.Rate = flags.Rate
	}
	if flags.Timeout != "" {
		if d, err := time.ParseDuration(flags.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	cfg.Debug = flags.Debug

	// Defaults for paths still unset
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DataDir = filepath.Join(home, "FRED_Data")
		} else {
			cfg.DataDir = "FRED_Data"
		}
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".fredmcp", "meta.db")
		} else {
			cfg.DBPath = filepath.Join(cfg.DataDir, "meta.db")
		}
	}

	return cfg, nil
}

// Validate returns a fatal configuration error if required fields are missing.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fault.New(fault.ConfigMissing,
			"FRED_API_KEY is not set; export FRED_API_KEY=YOUR_KEY or add api_key to config.json "+
				"(get a free key at https://fred.stlouisfed.org/docs/api/api_key.html)")
	}
	return nil
}

// RedactedAPIKey returns the API key with most characters replaced by
// asterisks. Safe for logging and display.
func (c *Config) RedactedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return "****"
	}
	return c.APIKey[:2] + "****" + c.APIKey[len(c.APIKey)-2:]
}

// loadFile attempts to read config.json from the current working directory.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// applyFile copies values from a parsed File into cfg, skipping zero fields.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
	if f.RetryMax > 0 {
		cfg.RetryMax = f.RetryMax
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
}

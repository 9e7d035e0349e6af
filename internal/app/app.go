// Package app wires configuration, the gateway client, the store and the
// metadata cache into a single Deps struct the commands receive at runtime.
package app

import (
	"log/slog"
	"os"

	"github.com/macrolab/fredmcp/internal/config"
	"github.com/macrolab/fredmcp/internal/dataset"
	"github.com/macrolab/fredmcp/internal/fred"
	"github.com/macrolab/fredmcp/internal/plot"
	"github.com/macrolab/fredmcp/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Client  *fred.Client
	Store   *store.Store
	Meta    *store.MetaCache // nil when the cache could not be opened
	Builder *dataset.Builder
	Plotter *plot.Plotter
	Catalog *dataset.Catalog
}

// New builds a Deps from resolved config. The metadata cache is best-effort:
// an unopenable database degrades title lookups, nothing else.
func New(cfg *config.Config) *Deps {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	// Log to stderr; stdout belongs to the MCP transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client := fred.NewClient(
		cfg.APIKey,
		cfg.BaseURL,
		cfg.Timeout,
		cfg.HardTimeout,
		cfg.Rate,
		cfg.RetryMax,
		cfg.Debug,
	)
	st := store.New(cfg.DataDir)

	meta, err := store.OpenMetaCache(cfg.DBPath)
	if err != nil {
		logger.Warn("metadata cache unavailable", "path", cfg.DBPath, "err", err)
		meta = nil
	}

	return &Deps{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Store:   st,
		Meta:    meta,
		Builder: dataset.NewBuilder(client, st, logger),
		Plotter: plot.NewPlotter(client, st, meta, logger),
		Catalog: dataset.NewCatalog(cfg.DataDir),
	}
}

// Close releases resources held by Deps.
func (d *Deps) Close() {
	if d.Meta != nil {
		d.Meta.Close()
	}
}

// Package cmd implements the fredmcp CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/macrolab/fredmcp/internal/app"
	"github.com/macrolab/fredmcp/internal/config"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags config.Flags

// rootCmd is the base command. Running `fredmcp` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "fredmcp",
	Short: "fredmcp — FRED economic data over the Model Context Protocol",
	Long: `fredmcp exposes Federal Reserve Economic Data (FRED®) to MCP clients:
series search and fetch, multi-series dataset building with transformations,
and chart generation, all persisted under a local data directory.

Data sourced from FRED®, Federal Reserve Bank of St. Louis;
https://fred.stlouisfed.org/

Get a free API key at: https://fred.stlouisfed.org/docs/api/api_key.html

Quick start:
  export FRED_API_KEY=YOUR_KEY
  fredmcp serve                # start the MCP server on stdio
  fredmcp datasets             # list datasets built so far`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load(globalFlags)
	if err != nil {
		return nil, err
	}
	return app.New(cfg), nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.APIKey, "api-key", "",
		"FRED API key (overrides env FRED_API_KEY and config.json)")
	pf.StringVar(&globalFlags.DataDir, "data-dir", "",
		"root directory for series and dataset artifacts (default: ~/FRED_Data)")
	pf.IntVar(&globalFlags.Workers, "workers", 0,
		"max concurrent tool calls (default: 4)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 5.0)")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m)")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log requests and tool calls to stderr (API key redacted)")
}

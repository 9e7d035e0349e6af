package cmd

import (
	"github.com/spf13/cobra"

	"github.com/macrolab/fredmcp/internal/server"
	"github.com/macrolab/fredmcp/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Start the MCP server. The protocol runs over stdin/stdout, so this
command is meant to be launched by an MCP client (it logs to stderr only).

Requires a FRED API key (flag --api-key, env FRED_API_KEY, or config.json).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := deps.Config.Validate(); err != nil {
			return err
		}

		reg := &tools.Registry{
			Client:  deps.Client,
			Builder: deps.Builder,
			Plotter: deps.Plotter,
			Catalog: deps.Catalog,
			Meta:    deps.Meta,
			Logger:  deps.Logger,
		}
		s := server.New(reg, deps.Catalog, server.Options{
			Version: Version,
			Workers: deps.Config.Workers,
			Logger:  deps.Logger,
		})

		deps.Logger.Info("mcp server starting",
			"version", Version,
			"data_dir", deps.Config.DataDir,
			"workers", deps.Config.Workers,
			"api_key", deps.Config.RedactedAPIKey())
		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

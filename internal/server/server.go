// Package server assembles the MCP surface: tool registration, the recent-
// datasets resource, the bounded worker pool for tool calls and the stdio
// transport loop.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/semaphore"

	"github.com/macrolab/fredmcp/internal/dataset"
	"github.com/macrolab/fredmcp/internal/tools"
)

// ServerName is the implementation name advertised during initialize.
const ServerName = "fredmcp"

// DatasetsResourceURI is the URI of the recent-datasets resource.
const DatasetsResourceURI = "fred://datasets/recent"

// Options configures the MCP server assembly.
type Options struct {
	Version string
	Workers int // max concurrent tool calls; <=0 means 4
	Logger  *slog.Logger
}

// New builds the MCP server: registers every tool through the registry, the
// datasets resource, panic recovery and the concurrency-capping middleware.
func New(reg *tools.Registry, catalog *dataset.Catalog, opts Options) *mcpserver.MCPServer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	s := mcpserver.NewMCPServer(
		ServerName,
		opts.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithRecovery(),
		mcpserver.WithToolHandlerMiddleware(workerCap(workers)),
		mcpserver.WithToolHandlerMiddleware(logCalls(logger)),
	)

	reg.Register(s)
	registerDatasetsResource(s, catalog, logger)
	return s
}

// ServeStdio runs the blocking stdio transport loop.
func ServeStdio(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}

// workerCap bounds concurrent tool executions. Waiting respects the request
// context, so a cancelled call never occupies a slot.
func workerCap(n int) mcpserver.ToolHandlerMiddleware {
	sem := semaphore.NewWeighted(int64(n))
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := sem.Acquire(ctx, 1); err != nil {
				return nil, err
			}
			defer sem.Release(1)
			return next(ctx, request)
		}
	}
}

// logCalls emits one debug line per tool call with its outcome and duration.
func logCalls(logger *slog.Logger) mcpserver.ToolHandlerMiddleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, request)
			isError := err != nil || (result != nil && result.IsError)
			logger.Debug("tool call",
				"tool", request.Params.Name,
				"error", isError,
				"duration", time.Since(start).Round(time.Millisecond))
			return result, err
		}
	}
}

func registerDatasetsResource(s *mcpserver.MCPServer, catalog *dataset.Catalog, logger *slog.Logger) {
	s.AddResource(
		mcp.NewResource(
			DatasetsResourceURI,
			"Recent FRED datasets",
			mcp.WithResourceDescription("The most recently built FRED datasets with their columns (including transformation suffixes like _YoY), transformations, observation windows and CSV paths. Check this before calling plot_from_dataset_tool."),
			mcp.WithMIMEType("text/plain"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			entries, err := catalog.Recent(dataset.DefaultCatalogLimit)
			if err != nil {
				return nil, err
			}
			logger.Debug("datasets resource read", "entries", len(entries))
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      request.Params.URI,
					MIMEType: "text/plain",
					Text:     dataset.RenderText(entries),
				},
			}, nil
		},
	)
}

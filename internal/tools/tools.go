// Package tools defines the MCP tool registry: typed tool declarations with
// JSON-schema inputs and the handlers that dispatch into the gateway, the
// dataset builder and the plot service. Handlers hold no cross-request state;
// everything durable lives on disk.
package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/macrolab/fredmcp/internal/dataset"
	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/fred"
	"github.com/macrolab/fredmcp/internal/plot"
	"github.com/macrolab/fredmcp/internal/store"
)

// Registry bundles the dependencies tool handlers dispatch into.
type Registry struct {
	Client  *fred.Client
	Builder *dataset.Builder
	Plotter *plot.Plotter
	Catalog *dataset.Catalog
	Meta    *store.MetaCache // optional
	Logger  *slog.Logger
}

// Register adds every tool to the MCP server.
func (r *Registry) Register(s *server.MCPServer) {
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	r.registerFetchTools(s)
	r.registerBuildTools(s)
	r.registerPlotTools(s)
	r.registerDemoTools(s)
}

// jsonResult serializes a success payload as an indented JSON text result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorf("internal: encoding result: %s", err)
	}
	return mcp.NewToolResultText(string(data))
}

// errResult converts a classified error into a tool error result the client
// can reason about. The fault kind leads so it is machine-matchable.
func errResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultErrorf("%s: %s", fault.KindOf(err), err.Error())
}

func argStringSlice(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s must contain only strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func argStringMap(args map[string]any, key string) (map[string]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object mapping strings to strings", key)
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%s] must be a string", key, k)
		}
		out[k] = s
	}
	return out, nil
}

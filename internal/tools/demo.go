package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerDemoTools adds the placeholder country-level tools. They return
// fixed-shape records so clients can exercise the call path; real indicator
// data comes from the series tools.
func (r *Registry) registerDemoTools(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("get_economic_indicator",
			mcp.WithDescription("Returns a placeholder economic indicator record for a country. For real data, search FRED series instead (search_fred_series_tool)."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("country",
				mcp.Required(),
				mcp.Description("Country name (e.g. 'United States')"),
			),
			mcp.WithString("indicator",
				mcp.Required(),
				mcp.Description("Indicator name (e.g. 'GDP', 'unemployment')"),
			),
		),
		r.handleEconomicIndicator,
	)
	s.AddTool(
		mcp.NewTool("compare_economies",
			mcp.WithDescription("Returns a placeholder comparison record for two countries. For real comparisons, build a dataset or use plot_dual_axis_tool with country-specific FRED series."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("country1",
				mcp.Required(),
				mcp.Description("First country name"),
			),
			mcp.WithString("country2",
				mcp.Required(),
				mcp.Description("Second country name"),
			),
		),
		r.handleCompareEconomies,
	)
}

func (r *Registry) handleEconomicIndicator(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	country, err := request.RequireString("country")
	if err != nil {
		return mcp.NewToolResultError("country must be set"), nil
	}
	indicator, err := request.RequireString("indicator")
	if err != nil {
		return mcp.NewToolResultError("indicator must be set"), nil
	}
	return jsonResult(map[string]any{
		"country":   country,
		"indicator": indicator,
		"value":     0.0,
		"year":      time.Now().UTC().Year(),
		"unit":      "TBD",
	}), nil
}

func (r *Registry) handleCompareEconomies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	country1, err := request.RequireString("country1")
	if err != nil {
		return mcp.NewToolResultError("country1 must be set"), nil
	}
	country2, err := request.RequireString("country2")
	if err != nil {
		return mcp.NewToolResultError("country2 must be set"), nil
	}
	return jsonResult(map[string]any{
		"country1":   country1,
		"country2":   country2,
		"comparison": "comparison data pending implementation; use series tools for real figures",
	}), nil
}

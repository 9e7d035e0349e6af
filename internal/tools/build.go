package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/macrolab/fredmcp/internal/dataset"
)

// registerBuildTools adds the dataset ETL tool.
func (r *Registry) registerBuildTools(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("build_fred_dataset_tool",
			mcp.WithDescription("Builds a unified dataset from multiple FRED series: downloads each series, merges them on dates, applies per-series transformations and saves CSV + Excel + metadata JSON. Available transformations: none, YoY, QoQ, MoM, diff, pct_change, log, log_diff. The build succeeds if at least one series can be fetched; failed series are reported per-series in the payload."),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithArray("series_list",
				mcp.Required(),
				mcp.Description("FRED series IDs to include (e.g. ['UNRATE', 'CPIAUCSL', 'GDP']). Duplicates are rejected."),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithObject("transformations",
				mcp.Description("Optional map from series ID to transformation (e.g. {'CPIAUCSL': 'YoY', 'GDP': 'QoQ'}). Series not listed keep raw values. Keys must appear in series_list."),
				mcp.AdditionalProperties(map[string]any{"type": "string"}),
			),
			mcp.WithString("observation_start",
				mcp.Description("Start date in YYYY-MM-DD format. Optional."),
			),
			mcp.WithString("observation_end",
				mcp.Description("End date in YYYY-MM-DD format. Optional."),
			),
			mcp.WithString("merge_strategy",
				mcp.Description("How to align series dates: 'inner' keeps only common dates (default), 'outer' keeps all, 'left'/'right' follow the first/last series."),
				mcp.Enum("inner", "outer", "left", "right"),
			),
		),
		r.handleBuildDataset,
	)
}

func (r *Registry) handleBuildDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	seriesList, err := argStringSlice(args, "series_list")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(seriesList) == 0 {
		return mcp.NewToolResultError("series_list must be a non-empty array of series IDs"), nil
	}
	transformations, err := argStringMap(args, "transformations")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := r.Builder.Build(ctx, dataset.BuildRequest{
		SeriesList:       seriesList,
		Transformations:  transformations,
		ObservationStart: request.GetString("observation_start", ""),
		ObservationEnd:   request.GetString("observation_end", ""),
		MergeStrategy:    request.GetString("merge_strategy", ""),
	})
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(result), nil
}

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/macrolab/fredmcp/internal/plot"
)

// registerPlotTools adds the chart-producing tools. Each returns the file
// paths it wrote, never image bytes.
func (r *Registry) registerPlotTools(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("plot_fred_series_tool",
			mcp.WithDescription("Creates a line chart PNG of a FRED series and exports the exact plotted window as CSV + Excel. Returns the file paths."),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("series_id",
				mcp.Required(),
				mcp.Description("FRED series ID (e.g. 'GDP', 'CPIAUCSL', 'UNRATE')"),
			),
			mcp.WithString("observation_start",
				mcp.Description("Start date in YYYY-MM-DD format. Optional."),
			),
			mcp.WithString("observation_end",
				mcp.Description("End date in YYYY-MM-DD format. Optional."),
			),
		),
		r.handlePlotSeries,
	)
	s.AddTool(
		mcp.NewTool("plot_dual_axis_tool",
			mcp.WithDescription("Compares two FRED series on a dual-axis chart: left Y-axis for the first series, right Y-axis for the second, aligned on their common dates. Saves PNG plus CSV/Excel of the aligned window and returns the paths."),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("series_id_left",
				mcp.Required(),
				mcp.Description("FRED series ID for the left Y-axis (e.g. 'UNRATE')"),
			),
			mcp.WithString("series_id_right",
				mcp.Required(),
				mcp.Description("FRED series ID for the right Y-axis (e.g. 'CPIAUCSL')"),
			),
			mcp.WithString("observation_start",
				mcp.Description("Start date in YYYY-MM-DD format. Optional."),
			),
			mcp.WithString("observation_end",
				mcp.Description("End date in YYYY-MM-DD format. Optional."),
			),
			mcp.WithString("left_color",
				mcp.Description("Hex color for the left series (default '#2E5090')"),
			),
			mcp.WithString("right_color",
				mcp.Description("Hex color for the right series (default '#C1272D')"),
			),
		),
		r.handlePlotDualAxis,
	)
	s.AddTool(
		mcp.NewTool("analyze_differencing_tool",
			mcp.WithDescription("Analyzes stationarity of a FRED series: computes first and second differences, runs an augmented Dickey-Fuller test on each, renders one chart per level and exports the three columns as CSV + Excel. The payload includes test statistics, p-values, critical values and the lowest differencing order found stationary at 5%."),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("series_id",
				mcp.Required(),
				mcp.Description("FRED series ID (e.g. 'GDP', 'CPIAUCSL', 'UNRATE')"),
			),
			mcp.WithString("observation_start",
				mcp.Description("Start date in YYYY-MM-DD format. Optional."),
			),
			mcp.WithString("observation_end",
				mcp.Description("End date in YYYY-MM-DD format. Optional."),
			),
		),
		r.handleAnalyzeDifferencing,
	)
	s.AddTool(
		mcp.NewTool("plot_from_dataset_tool",
			mcp.WithDescription("Plots two columns from a previously built dataset on a dual-axis chart without re-downloading anything. Column names include transformation suffixes (e.g. 'CPIAUCSL_YoY'). If dataset_path is omitted, the most recent dataset containing both columns is used; check the fred://datasets/recent resource to see what exists."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("column_left",
				mcp.Required(),
				mcp.Description("Column name for the left Y-axis (e.g. 'UNRATE')"),
			),
			mcp.WithString("column_right",
				mcp.Required(),
				mcp.Description("Column name for the right Y-axis (e.g. 'CPIAUCSL_YoY')"),
			),
			mcp.WithString("dataset_path",
				mcp.Description("Path to a dataset folder or file. Optional; defaults to the newest dataset with both columns."),
			),
			mcp.WithString("left_color",
				mcp.Description("Hex color for the left series (default '#2E5090')"),
			),
			mcp.WithString("right_color",
				mcp.Description("Hex color for the right series (default '#C1272D')"),
			),
		),
		r.handlePlotFromDataset,
	)
}

func (r *Registry) handlePlotSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seriesID, err := request.RequireString("series_id")
	if err != nil {
		return mcp.NewToolResultError("series_id must be set"), nil
	}
	result, err := r.Plotter.PlotSeries(ctx, seriesID,
		request.GetString("observation_start", ""),
		request.GetString("observation_end", ""))
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(result), nil
}

func (r *Registry) handlePlotDualAxis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	left, err := request.RequireString("series_id_left")
	if err != nil {
		return mcp.NewToolResultError("series_id_left must be set"), nil
	}
	right, err := request.RequireString("series_id_right")
	if err != nil {
		return mcp.NewToolResultError("series_id_right must be set"), nil
	}
	result, err := r.Plotter.PlotDualAxis(ctx, plot.DualAxisRequest{
		SeriesLeft:  left,
		SeriesRight: right,
		Start:       request.GetString("observation_start", ""),
		End:         request.GetString("observation_end", ""),
		ColorLeft:   request.GetString("left_color", ""),
		ColorRight:  request.GetString("right_color", ""),
	})
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(result), nil
}

func (r *Registry) handleAnalyzeDifferencing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seriesID, err := request.RequireString("series_id")
	if err != nil {
		return mcp.NewToolResultError("series_id must be set"), nil
	}
	result, err := r.Plotter.AnalyzeDifferencing(ctx, seriesID,
		request.GetString("observation_start", ""),
		request.GetString("observation_end", ""))
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(result), nil
}

func (r *Registry) handlePlotFromDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	left, err := request.RequireString("column_left")
	if err != nil {
		return mcp.NewToolResultError("column_left must be set"), nil
	}
	right, err := request.RequireString("column_right")
	if err != nil {
		return mcp.NewToolResultError("column_right must be set"), nil
	}
	result, err := r.Plotter.PlotFromDataset(r.Catalog, plot.FromDatasetRequest{
		ColumnLeft:  left,
		ColumnRight: right,
		DatasetPath: request.GetString("dataset_path", ""),
		ColorLeft:   request.GetString("left_color", ""),
		ColorRight:  request.GetString("right_color", ""),
	})
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(result), nil
}

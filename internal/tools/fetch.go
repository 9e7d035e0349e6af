package tools

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/macrolab/fredmcp/internal/fred"
	"github.com/macrolab/fredmcp/internal/model"
)

// registerFetchTools adds the read-only FRED directory and series tools.
func (r *Registry) registerFetchTools(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("fetch_series_metadata_tool",
			mcp.WithDescription("Fetches metadata for a FRED series: title, units, frequency, seasonal adjustment, observation window, popularity and notes."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("series_id",
				mcp.Required(),
				mcp.Description("FRED series ID (e.g. 'GDP', 'UNRATE', 'CPIAUCSL')"),
			),
		),
		r.handleSeriesMetadata,
	)
	s.AddTool(
		mcp.NewTool("fetch_series_observations_tool",
			mcp.WithDescription("Fetches historical observations (date/value pairs) for a FRED series. Missing values are returned as null, never zero."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("series_id",
				mcp.Required(),
				mcp.Description("FRED series ID (e.g. 'GDP', 'UNRATE', 'CPIAUCSL')"),
			),
			mcp.WithString("observation_start",
				mcp.Description("Start date in YYYY-MM-DD format. Optional; defaults to full history."),
			),
			mcp.WithString("observation_end",
				mcp.Description("End date in YYYY-MM-DD format. Optional; defaults to latest."),
			),
		),
		r.handleSeriesObservations,
	)
	s.AddTool(
		mcp.NewTool("search_fred_series_tool",
			mcp.WithDescription("Searches FRED series by free-text query, ordered by popularity."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("search_text",
				mcp.Required(),
				mcp.Description("Search query (e.g. 'unemployment', 'inflation', 'GDP')"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 50)"),
			),
		),
		r.handleSearchSeries,
	)
	s.AddTool(
		mcp.NewTool("fetch_fred_releases_tool",
			mcp.WithDescription("Lists all FRED data releases."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of releases (default 1000)"),
			),
		),
		r.handleReleases,
	)
	s.AddTool(
		mcp.NewTool("fetch_release_details_tool",
			mcp.WithDescription("Fetches details for a specific FRED release."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("release_id",
				mcp.Required(),
				mcp.Description("FRED release ID (e.g. '53' for Gross Domestic Product)"),
			),
		),
		r.handleReleaseDetails,
	)
	s.AddTool(
		mcp.NewTool("fetch_release_dates_tool",
			mcp.WithDescription("Fetches scheduled and past publication dates for a FRED release, newest first."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("release_id",
				mcp.Required(),
				mcp.Description("FRED release ID (e.g. '53')"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of dates (default 20)"),
			),
		),
		r.handleReleaseDates,
	)
	s.AddTool(
		mcp.NewTool("fetch_category_details_tool",
			mcp.WithDescription("Fetches a FRED category and its child categories."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("category_id",
				mcp.Required(),
				mcp.Description("FRED category ID (e.g. '32991' for Money, Banking, & Finance; '0' is the root)"),
			),
		),
		r.handleCategoryDetails,
	)
	s.AddTool(
		mcp.NewTool("fetch_fred_sources_tool",
			mcp.WithDescription("Lists all FRED data sources (publishing institutions). Pass source_id to fetch a single source instead."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("source_id",
				mcp.Description("FRED source ID (e.g. '1' for the Board of Governors). Optional; omit to list every source."),
			),
		),
		r.handleSources,
	)
}

func (r *Registry) handleSeriesMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seriesID, err := request.RequireString("series_id")
	if err != nil {
		return mcp.NewToolResultError("series_id must be set"), nil
	}
	meta, err := r.Client.GetSeries(ctx, seriesID)
	if err != nil {
		return errResult(err), nil
	}
	if r.Meta != nil {
		if err := r.Meta.PutSeriesMeta(*meta); err != nil {
			r.Logger.Debug("meta cache write failed", "series", meta.ID, "err", err)
		}
	}
	return jsonResult(meta), nil
}

// observationPayload is the wire shape for observation lists: missing values
// marshal as null via the pointer.
type observationPayload struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

func (r *Registry) handleSeriesObservations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seriesID, err := request.RequireString("series_id")
	if err != nil {
		return mcp.NewToolResultError("series_id must be set"), nil
	}
	data, err := r.Client.GetObservations(ctx, seriesID, fred.ObsOptions{
		Start: request.GetString("observation_start", ""),
		End:   request.GetString("observation_end", ""),
	})
	if err != nil {
		return errResult(err), nil
	}

	obs := make([]observationPayload, len(data.Obs))
	for i, o := range data.Obs {
		p := observationPayload{Date: o.Date.Format("2006-01-02")}
		if !o.IsMissing() {
			v := o.Value
			p.Value = &v
		}
		obs[i] = p
	}
	return jsonResult(map[string]any{
		"series_id":    data.SeriesID,
		"count":        len(obs),
		"observations": obs,
	}), nil
}

func (r *Registry) handleSearchSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("search_text")
	if err != nil {
		return mcp.NewToolResultError("search_text must be set"), nil
	}
	results, err := r.Client.SearchSeries(ctx, query, request.GetInt("limit", 0))
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	}), nil
}

func (r *Registry) handleReleases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	releases, err := r.Client.ListReleases(ctx, request.GetInt("limit", 0))
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"count":    len(releases),
		"releases": releases,
	}), nil
}

func (r *Registry) handleReleaseDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireIntString(request, "release_id")
	if res != nil {
		return res, nil
	}
	release, err := r.Client.GetRelease(ctx, id)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(release), nil
}

func (r *Registry) handleReleaseDates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireIntString(request, "release_id")
	if res != nil {
		return res, nil
	}
	dates, err := r.Client.GetReleaseDates(ctx, id, request.GetInt("limit", 0))
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"release_id":    id,
		"count":         len(dates),
		"release_dates": dates,
	}), nil
}

func (r *Registry) handleCategoryDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireIntString(request, "category_id")
	if res != nil {
		return res, nil
	}
	category, err := r.Client.GetCategory(ctx, id)
	if err != nil {
		return errResult(err), nil
	}
	children, err := r.Client.GetCategoryChildren(ctx, id)
	if err != nil {
		return errResult(err), nil
	}
	if children == nil {
		children = []model.Category{}
	}
	return jsonResult(map[string]any{
		"category": category,
		"children": children,
	}), nil
}

func (r *Registry) handleSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if raw := request.GetString("source_id", ""); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 0 {
			return mcp.NewToolResultErrorf("source_id must be a non-negative integer, got %q", raw), nil
		}
		source, err := r.Client.GetSource(ctx, id)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(source), nil
	}
	sources, err := r.Client.ListSources(ctx, 0)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"count":   len(sources),
		"sources": sources,
	}), nil
}

// requireIntString reads a numeric ID the protocol carries as a string.
func requireIntString(request mcp.CallToolRequest, key string) (int, *mcp.CallToolResult) {
	raw, err := request.RequireString(key)
	if err != nil {
		return 0, mcp.NewToolResultErrorf("%s must be set", key)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, mcp.NewToolResultErrorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return id, nil
}

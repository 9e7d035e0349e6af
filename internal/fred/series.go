package fred

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/macrolab/fredmcp/internal/model"
	"github.com/macrolab/fredmcp/internal/util"
)

// ObsOptions holds optional parameters for GetObservations.
type ObsOptions struct {
	Start string // YYYY-MM-DD; empty = full available history
	End   string // YYYY-MM-DD; empty = latest
	Limit int
}

// GetObservations fetches time series observations for a single series.
// Dates are strictly ascending in the result; observations the provider
// marks missing ("." values) come back as NaN.
func (c *Client) GetObservations(ctx context.Context, seriesID string, opts ObsOptions) (*model.SeriesData, error) {
	params := url.Values{}
	params.Set("series_id", strings.ToUpper(seriesID))
	if opts.Start != "" {
		params.Set("observation_start", opts.Start)
	}
	if opts.End != "" {
		params.Set("observation_end", opts.End)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var raw struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}

	if err := c.get(ctx, "series/observations", params, &raw); err != nil {
		return nil, wrapSeries(err, "observations", seriesID)
	}

	obs := make([]model.Observation, 0, len(raw.Observations))
	var prev time.Time
	for _, o := range raw.Observations {
		date, err := util.ParseDate(o.Date)
		if err != nil {
			continue // skip malformed dates
		}
		if !prev.IsZero() && !date.After(prev) {
			continue // drop out-of-order or duplicate dates
		}
		prev = date
		obs = append(obs, model.Observation{
			Date:     date,
			Value:    util.ParseObsValue(o.Value),
			ValueRaw: o.Value,
		})
	}

	return &model.SeriesData{
		SeriesID: strings.ToUpper(seriesID),
		Obs:      obs,
	}, nil
}

// GetSeries fetches metadata for a single series ID.
func (c *Client) GetSeries(ctx context.Context, seriesID string) (*model.SeriesMeta, error) {
	params := url.Values{}
	params.Set("series_id", strings.ToUpper(seriesID))

	var raw struct {
		Seriess []rawSeriesMeta `json:"seriess"`
	}
	if err := c.get(ctx, "series", params, &raw); err != nil {
		return nil, wrapSeries(err, "series", seriesID)
	}
	if len(raw.Seriess) == 0 {
		return nil, notFoundSeries(seriesID)
	}
	m := normalizeSeriesMeta(raw.Seriess[0])
	return &m, nil
}

// SearchSeries searches for series matching query, ordered by popularity.
func (c *Client) SearchSeries(ctx context.Context, query string, limit int) ([]model.SeriesMeta, error) {
	params := url.Values{}
	params.Set("search_text", query)
	params.Set("search_type", "full_text")
	params.Set("order_by", "popularity")
	params.Set("sort_order", "desc")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	} else {
		params.Set("limit", "50")
	}

	var raw struct {
		Seriess []rawSeriesMeta `json:"seriess"`
	}
	if err := c.get(ctx, "series/search", params, &raw); err != nil {
		return nil, wrapQuery(err, "series search", query)
	}

	result := make([]model.SeriesMeta, len(raw.Seriess))
	for i, s := range raw.Seriess {
		result[i] = normalizeSeriesMeta(s)
	}
	return result, nil
}

// ─── Internal helpers ─────────────────────────────────────────────────────────

type rawSeriesMeta struct {
	ID                      string `json:"id"`
	Title                   string `json:"title"`
	ObservationStart        string `json:"observation_start"`
	ObservationEnd          string `json:"observation_end"`
	Frequency               string `json:"frequency"`
	FrequencyShort          string `json:"frequency_short"`
	Units                   string `json:"units"`
	UnitsShort              string `json:"units_short"`
	SeasonalAdjustment      string `json:"seasonal_adjustment"`
	SeasonalAdjustmentShort string `json:"seasonal_adjustment_short"`
	LastUpdated             string `json:"last_updated"`
	Popularity              int    `json:"popularity"`
	Notes                   string `json:"notes"`
}

func normalizeSeriesMeta(r rawSeriesMeta) model.SeriesMeta {
	return model.SeriesMeta{
		ID:                      r.ID,
		Title:                   r.Title,
		ObservationStart:        r.ObservationStart,
		ObservationEnd:          r.ObservationEnd,
		Frequency:               r.Frequency,
		FrequencyShort:          r.FrequencyShort,
		Units:                   r.Units,
		UnitsShort:              r.UnitsShort,
		SeasonalAdjustment:      r.SeasonalAdjustment,
		SeasonalAdjustmentShort: r.SeasonalAdjustmentShort,
		LastUpdated:             r.LastUpdated,
		Popularity:              r.Popularity,
		Notes:                   r.Notes,
		FetchedAt:               time.Now().UTC(),
	}
}

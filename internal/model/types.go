// Package model defines the canonical data types used throughout fredmcp.
// These types are the single source of truth for all FRED API entities and
// for the dataset artifacts the builder writes to disk.
package model

import (
	"math"
	"time"
)

// ─── FRED Entity Types ────────────────────────────────────────────────────────

// Category represents a FRED data category node in the hierarchy.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent_id"`
}

// SeriesMeta holds metadata for a single FRED data series.
type SeriesMeta struct {
	ID                      string    `json:"id"`
	Title                   string    `json:"title"`
	ObservationStart        string    `json:"observation_start"`
	ObservationEnd          string    `json:"observation_end"`
	Frequency               string    `json:"frequency"`
	FrequencyShort          string    `json:"frequency_short"`
	Units                   string    `json:"units"`
	UnitsShort              string    `json:"units_short"`
	SeasonalAdjustment      string    `json:"seasonal_adjustment"`
	SeasonalAdjustmentShort string    `json:"seasonal_adjustment_short"`
	LastUpdated             string    `json:"last_updated"`
	Popularity              int       `json:"popularity"`
	Notes                   string    `json:"notes"`
	FetchedAt               time.Time `json:"fetched_at,omitempty"`
}

// Release represents a FRED data release.
type Release struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PressRelease bool   `json:"press_release"`
	Link         string `json:"link"`
	Notes        string `json:"notes"`
}

// ReleaseDate is a single scheduled or actual release date record.
type ReleaseDate struct {
	ReleaseID   int    `json:"release_id"`
	ReleaseName string `json:"release_name"`
	Date        string `json:"date"`
}

// Source represents a FRED data source (institution).
type Source struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Link  string `json:"link"`
	Notes string `json:"notes"`
}

// ─── Time Series Types ────────────────────────────────────────────────────────

// Observation is a single data point in a time series.
// Value is NaN when the raw value is "." or empty (missing data).
// On the wire and on disk missing values are encoded as null, never zero.
type Observation struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	ValueRaw string    `json:"value_raw,omitempty"`
}

// IsMissing returns true if the observation value is NaN (missing data).
func (o Observation) IsMissing() bool {
	return math.IsNaN(o.Value)
}

// SeriesData bundles observations with optional metadata for a single series.
type SeriesData struct {
	SeriesID string        `json:"series_id"`
	Meta     *SeriesMeta   `json:"meta,omitempty"`
	Obs      []Observation `json:"observations"`
}

// Window returns the first and last observation dates, or ok=false when the
// series is empty.
func (s SeriesData) Window() (start, end time.Time, ok bool) {
	if len(s.Obs) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Obs[0].Date, s.Obs[len(s.Obs)-1].Date, true
}

// ─── Dataset Artifacts ────────────────────────────────────────────────────────

// DatasetMetadata is the JSON sidecar written next to a dataset's CSV/XLSX.
// Its presence is the commit marker: readers must skip a dataset folder that
// has no parseable sidecar.
type DatasetMetadata struct {
	Name             string            `json:"name"`
	SeriesList       []string          `json:"series_list"`
	Transformations  map[string]string `json:"transformations"`
	MergeStrategy    string            `json:"merge_strategy"`
	ObservationStart string            `json:"observation_start"`
	ObservationEnd   string            `json:"observation_end"`
	Columns          []string          `json:"columns"`
	RowCount         int               `json:"row_count"`
	CreatedAt        time.Time         `json:"created_at"`
	CSVPath          string            `json:"csv_path"`
	XLSXPath         string            `json:"xlsx_path"`
}

// SeriesError reports a per-series failure inside an otherwise successful
// multi-series operation.
type SeriesError struct {
	SeriesID string `json:"series_id"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

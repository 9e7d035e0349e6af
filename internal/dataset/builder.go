package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/fred"
	"github.com/macrolab/fredmcp/internal/model"
	"github.com/macrolab/fredmcp/internal/store"
	"github.com/macrolab/fredmcp/internal/transform"
	"github.com/macrolab/fredmcp/internal/util"
)

// maxFetchConcurrency caps the parallel series fetches per build. The
// gateway's rate limiter still governs the aggregate request rate.
const maxFetchConcurrency = 4

// Builder fetches, merges, transforms and persists multi-series datasets.
type Builder struct {
	client *fred.Client
	store  *store.Store
	logger *slog.Logger
}

// NewBuilder wires a Builder over the gateway client and the data store.
func NewBuilder(client *fred.Client, st *store.Store, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{client: client, store: st, logger: logger}
}

// BuildRequest describes one dataset build.
type BuildRequest struct {
	SeriesList       []string
	Transformations  map[string]string // series ID -> transformation tag
	ObservationStart string            // YYYY-MM-DD, empty = full history
	ObservationEnd   string
	MergeStrategy    string // inner (default), outer, left, right
}

// BuildResult reports a completed build: the committed artifact paths come
// from the sidecar metadata, SeriesErrors lists inputs that were dropped.
type BuildResult struct {
	Metadata     model.DatasetMetadata `json:"metadata"`
	MetadataPath string                `json:"metadata_path"`
	SeriesUsed   []string              `json:"series_used"`
	SeriesErrors []model.SeriesError   `json:"series_errors,omitempty"`
}

// Build runs the full pipeline: validate, fetch concurrently, merge,
// transform, trim, and commit CSV → XLSX → sidecar. The build fails only
// when no series can be fetched; partial failures are reported per series.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	tags, strategy, err := b.validate(req)
	if err != nil {
		return nil, err
	}

	fetched, serr := b.fetchAll(ctx, req)
	if len(fetched) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, fault.Wrap(fault.Cancelled, err, "dataset build cancelled")
		}
		merr := &util.MultiError{}
		for _, e := range serr {
			merr.Add(fmt.Errorf("%s (%s)", e.SeriesID, e.Kind))
		}
		return nil, fault.Wrap(fault.UpstreamUnavailable, merr.Err(), "no series could be fetched")
	}

	table := Merge(fetched, strategy)
	if table.Rows() == 0 {
		return nil, fault.New(fault.EmptyIntersection,
			"merge %q produced no rows; observed windows: %s", strategy, describeWindows(fetched))
	}

	for i := range table.Columns {
		id := table.Columns[i].Name
		tag := tags[id]
		out, err := transform.Apply(tag, table.Columns[i].Values)
		if err != nil {
			return nil, fault.Wrap(fault.InvalidParams, err, "transforming %s", id)
		}
		table.Columns[i].Values = out
		table.Columns[i].Name = transform.ColumnName(id, tag)
	}

	table.TrimNullEdges()
	if table.Rows() == 0 {
		return nil, fault.New(fault.EmptyIntersection,
			"all rows are null after transformation; observed windows: %s", describeWindows(fetched))
	}

	used := make([]string, len(fetched))
	for i, s := range fetched {
		used[i] = s.SeriesID
	}

	meta, metaPath, err := b.commit(ctx, req, used, table)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("dataset built",
		"name", meta.Name, "rows", meta.RowCount, "columns", len(meta.Columns),
		"dropped", len(serr))

	return &BuildResult{
		Metadata:     *meta,
		MetadataPath: metaPath,
		SeriesUsed:   used,
		SeriesErrors: serr,
	}, nil
}

// validate rejects malformed requests before any network traffic.
func (b *Builder) validate(req BuildRequest) (map[string]transform.Tag, MergeStrategy, error) {
	if len(req.SeriesList) == 0 {
		return nil, "", fault.New(fault.InvalidParams, "series_list must not be empty")
	}
	seen := make(map[string]bool, len(req.SeriesList))
	for _, id := range req.SeriesList {
		key := strings.ToUpper(id)
		if seen[key] {
			return nil, "", fault.New(fault.DuplicateSeries, "series %s appears more than once", key)
		}
		seen[key] = true
	}
	for _, bound := range []string{req.ObservationStart, req.ObservationEnd} {
		if bound == "" {
			continue
		}
		if _, err := util.ParseDate(bound); err != nil {
			return nil, "", fault.New(fault.InvalidParams, "invalid date %q (want YYYY-MM-DD)", bound)
		}
	}

	tags := make(map[string]transform.Tag, len(req.SeriesList))
	for _, id := range req.SeriesList {
		tags[strings.ToUpper(id)] = transform.None
	}
	for id, raw := range req.Transformations {
		key := strings.ToUpper(id)
		if !seen[key] {
			return nil, "", fault.New(fault.InvalidParams,
				"transformation given for %s, which is not in series_list", key)
		}
		tag, err := transform.Parse(raw)
		if err != nil {
			return nil, "", fault.Wrap(fault.InvalidParams, err, "series %s", key)
		}
		tags[key] = tag
	}

	strategy, err := ParseMergeStrategy(req.MergeStrategy)
	if err != nil {
		return nil, "", err
	}
	return tags, strategy, nil
}

// fetchAll fetches every requested series with bounded concurrency. The
// result preserves the caller's order and omits series that failed; those
// are reported in the returned error list.
func (b *Builder) fetchAll(ctx context.Context, req BuildRequest) ([]*model.SeriesData, []model.SeriesError) {
	results := make([]*model.SeriesData, len(req.SeriesList))
	errs := make([]*model.SeriesError, len(req.SeriesList))

	g, gctx := errgroup.WithContext(ctx)
	limit := maxFetchConcurrency
	if len(req.SeriesList) < limit {
		limit = len(req.SeriesList)
	}
	g.SetLimit(limit)

	for i, id := range req.SeriesList {
		g.Go(func() error {
			data, err := b.client.GetObservations(gctx, id, fred.ObsOptions{
				Start: req.ObservationStart,
				End:   req.ObservationEnd,
			})
			if err != nil {
				errs[i] = &model.SeriesError{
					SeriesID: strings.ToUpper(id),
					Kind:     string(fault.KindOf(err)),
					Message:  err.Error(),
				}
				return nil // per-series failure, keep fetching the rest
			}
			results[i] = data
			return nil
		})
	}
	g.Wait() // goroutines never return errors

	var fetched []*model.SeriesData
	var serr []model.SeriesError
	for i := range results {
		if results[i] != nil {
			fetched = append(fetched, results[i])
		} else if errs[i] != nil {
			b.logger.Debug("series dropped from build", "series", errs[i].SeriesID, "kind", errs[i].Kind)
			serr = append(serr, *errs[i])
		}
	}
	return fetched, serr
}

// commit writes the three dataset files in order: CSV, XLSX, then the JSON
// sidecar as the commit marker. A cancellation between writes removes the
// partial CSV/XLSX so no committed-looking garbage survives.
func (b *Builder) commit(ctx context.Context, req BuildRequest, used []string, t *Table) (*model.DatasetMetadata, string, error) {
	basename := Basename(used)
	dir, err := b.store.DatasetDir(basename)
	if err != nil {
		return nil, "", fault.Wrap(fault.Internal, err, "preparing dataset dir")
	}

	unlock := b.store.Lock(basename)
	defer unlock()

	now := time.Now().UTC()
	start, end := util.FormatDate(t.Dates[0]), util.FormatDate(t.Dates[len(t.Dates)-1])
	stem := fmt.Sprintf("%s_%s_to_%s_built_%s", basename, start, end, util.StampDay(now))
	csvPath := filepath.Join(dir, stem+".csv")
	xlsxPath := filepath.Join(dir, stem+".xlsx")
	metaPath := filepath.Join(dir, fmt.Sprintf("%s_metadata_%s.json", basename, util.StampDay(now)))

	header := append([]string{"date"}, t.ColumnNames()...)
	cols := make([][]float64, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Values
	}

	cleanup := func() {
		os.Remove(csvPath)
		os.Remove(xlsxPath)
	}

	if err := store.WriteCSV(csvPath, header, t.Dates, cols); err != nil {
		cleanup()
		return nil, "", fault.Wrap(fault.Internal, err, "writing dataset csv")
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return nil, "", fault.Wrap(fault.Cancelled, err, "dataset build cancelled")
	}
	if err := store.WriteXLSX(xlsxPath, header, t.Dates, cols); err != nil {
		cleanup()
		return nil, "", fault.Wrap(fault.Internal, err, "writing dataset xlsx")
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return nil, "", fault.Wrap(fault.Cancelled, err, "dataset build cancelled")
	}

	inArtifact := make(map[string]bool, len(used))
	for _, id := range used {
		inArtifact[id] = true
	}
	// Only series that made it into the artifact belong in the sidecar; a
	// transformation requested for a dropped series must not be recorded.
	transforms := make(map[string]string)
	for id, raw := range req.Transformations {
		key := strings.ToUpper(id)
		if !inArtifact[key] {
			continue
		}
		if raw != "" && raw != string(transform.None) {
			transforms[key] = raw
		}
	}
	strategy := req.MergeStrategy
	if strategy == "" {
		strategy = string(MergeInner)
	}
	meta := &model.DatasetMetadata{
		Name:             basename,
		SeriesList:       used,
		Transformations:  transforms,
		MergeStrategy:    strategy,
		ObservationStart: start,
		ObservationEnd:   end,
		Columns:          t.ColumnNames(),
		RowCount:         t.Rows(),
		CreatedAt:        now,
		CSVPath:          csvPath,
		XLSXPath:         xlsxPath,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		cleanup()
		return nil, "", fault.Wrap(fault.Internal, err, "encoding dataset metadata")
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		cleanup()
		return nil, "", fault.Wrap(fault.Internal, err, "writing dataset metadata")
	}
	return meta, metaPath, nil
}

// Basename derives the dataset folder name from the series that made it into
// the artifact, in input order: FRED_dataset_<A>_<B>_...
func Basename(seriesIDs []string) string {
	return "FRED_dataset_" + strings.Join(seriesIDs, "_")
}

func describeWindows(series []*model.SeriesData) string {
	parts := make([]string, len(series))
	for i, s := range series {
		start, end, ok := s.Window()
		if !ok {
			parts[i] = s.SeriesID + " (empty)"
			continue
		}
		parts[i] = fmt.Sprintf("%s %s..%s", s.SeriesID, util.FormatDate(start), util.FormatDate(end))
	}
	return strings.Join(parts, ", ")
}

package plot

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/fred"
	"github.com/macrolab/fredmcp/internal/model"
	"github.com/macrolab/fredmcp/internal/store"
	"github.com/macrolab/fredmcp/internal/util"
)

// Plotter generates chart artifacts. It writes PNGs and data exports through
// the store but never touches dataset folders, which belong to the builder.
type Plotter struct {
	client *fred.Client
	store  *store.Store
	meta   *store.MetaCache // optional, used for titles without refetching
	logger *slog.Logger
}

// NewPlotter wires a Plotter. meta may be nil; titles then always refetch.
func NewPlotter(client *fred.Client, st *store.Store, meta *store.MetaCache, logger *slog.Logger) *Plotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plotter{client: client, store: st, meta: meta, logger: logger}
}

// SeriesPlotResult reports a single-series plot.
type SeriesPlotResult struct {
	SeriesID  string `json:"series_id"`
	Title     string `json:"title"`
	PlotPath  string `json:"plot_path"`
	CSVPath   string `json:"csv_path"`
	XLSXPath  string `json:"xlsx_path"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	RowCount  int    `json:"row_count"`
}

// PlotSeries fetches a series window, persists CSV+XLSX under
// <root>/<ID>/series/ and renders the line chart PNG under
// <root>/<ID>/grafico/.
func (p *Plotter) PlotSeries(ctx context.Context, seriesID, start, end string) (*SeriesPlotResult, error) {
	data, err := p.client.GetObservations(ctx, seriesID, fred.ObsOptions{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	first, last, ok := data.Window()
	if !ok {
		return nil, fault.New(fault.NotFound, "no observations for %s in the requested window", data.SeriesID)
	}

	csvPath, xlsxPath, err := p.store.WriteSeriesData(data.SeriesID, data.Obs, "downloaded")
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "persisting %s", data.SeriesID)
	}

	dates := make([]time.Time, len(data.Obs))
	values := make([]float64, len(data.Obs))
	for i, o := range data.Obs {
		dates[i] = o.Date
		values[i] = o.Value
	}
	if err := requireDrawable(data.SeriesID, values); err != nil {
		return nil, err
	}

	title := p.seriesTitle(ctx, data.SeriesID)
	dir, err := p.store.PlotDir(data.SeriesID)
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "preparing plot dir")
	}
	now := time.Now().UTC()
	plotPath := filepath.Join(dir, store.SeriesBasename(data.SeriesID, first, last, "plot", now)+".png")

	s := lineSeries(title, DefaultLeftColor, dates, values, chart.YAxisPrimary)
	if err := renderPNG(plotPath, title, "", "", s); err != nil {
		return nil, err
	}
	p.logger.Debug("series plotted", "series", data.SeriesID, "path", plotPath)

	return &SeriesPlotResult{
		SeriesID:  data.SeriesID,
		Title:     title,
		PlotPath:  plotPath,
		CSVPath:   csvPath,
		XLSXPath:  xlsxPath,
		StartDate: util.FormatDate(first),
		EndDate:   util.FormatDate(last),
		RowCount:  len(data.Obs),
	}, nil
}

// seriesTitle resolves a display title, preferring the metadata cache and
// falling back to the bare ID if the gateway cannot help.
func (p *Plotter) seriesTitle(ctx context.Context, seriesID string) string {
	if p.meta != nil {
		if m, found, err := p.meta.GetSeriesMeta(seriesID); err == nil && found {
			return m.Title
		}
	}
	m, err := p.client.GetSeries(ctx, seriesID)
	if err != nil {
		p.logger.Debug("title lookup failed", "series", seriesID, "err", err)
		return seriesID
	}
	if p.meta != nil {
		if err := p.meta.PutSeriesMeta(*m); err != nil {
			p.logger.Debug("meta cache write failed", "series", seriesID, "err", err)
		}
	}
	return m.Title
}

// ─── Dual axis ────────────────────────────────────────────────────────────────

// DualAxisRequest parameterizes a two-series comparison plot.
type DualAxisRequest struct {
	SeriesLeft  string
	SeriesRight string
	Start       string
	End         string
	ColorLeft   string // hex, defaults to DefaultLeftColor
	ColorRight  string
}

// DualAxisResult reports a comparison plot.
type DualAxisResult struct {
	SeriesLeft  string `json:"series_left"`
	SeriesRight string `json:"series_right"`
	TitleLeft   string `json:"title_left"`
	TitleRight  string `json:"title_right"`
	PlotPath    string `json:"plot_path"`
	CSVPath     string `json:"csv_path"`
	XLSXPath    string `json:"xlsx_path"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	RowCount    int    `json:"row_count"`
}

// PlotDualAxis fetches two series, aligns them on the intersection of their
// dates and renders them on independent left/right axes. The aligned window
// is persisted under <root>/<L>_vs_<R>/series/ next to the PNG's grafico dir.
func (p *Plotter) PlotDualAxis(ctx context.Context, req DualAxisRequest) (*DualAxisResult, error) {
	left, err := p.client.GetObservations(ctx, req.SeriesLeft, fred.ObsOptions{Start: req.Start, End: req.End})
	if err != nil {
		return nil, err
	}
	right, err := p.client.GetObservations(ctx, req.SeriesRight, fred.ObsOptions{Start: req.Start, End: req.End})
	if err != nil {
		return nil, err
	}

	dates, leftVals, rightVals := alignIntersection(left, right)
	if len(dates) == 0 {
		return nil, fault.New(fault.EmptyIntersection,
			"%s and %s share no observation dates in the requested window",
			left.SeriesID, right.SeriesID)
	}
	if err := requireDrawable(left.SeriesID, leftVals); err != nil {
		return nil, err
	}
	if err := requireDrawable(right.SeriesID, rightVals); err != nil {
		return nil, err
	}

	name := comparisonName(left.SeriesID, right.SeriesID)
	first, last := dates[0], dates[len(dates)-1]
	now := time.Now().UTC()

	seriesDir, err := p.store.SeriesDir(name)
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "preparing comparison dir")
	}
	base := store.SeriesBasename(name, first, last, "downloaded", now)
	csvPath := filepath.Join(seriesDir, base+".csv")
	xlsxPath := filepath.Join(seriesDir, base+".xlsx")
	header := []string{"date", left.SeriesID, right.SeriesID}
	cols := [][]float64{leftVals, rightVals}
	if err := store.WriteCSV(csvPath, header, dates, cols); err != nil {
		return nil, fault.Wrap(fault.Internal, err, "writing comparison csv")
	}
	if err := store.WriteXLSX(xlsxPath, header, dates, cols); err != nil {
		return nil, fault.Wrap(fault.Internal, err, "writing comparison xlsx")
	}

	titleLeft := p.seriesTitle(ctx, left.SeriesID)
	titleRight := p.seriesTitle(ctx, right.SeriesID)
	colorLeft, colorRight := req.ColorLeft, req.ColorRight
	if colorLeft == "" {
		colorLeft = DefaultLeftColor
	}
	if colorRight == "" {
		colorRight = DefaultRightColor
	}

	plotDir, err := p.store.PlotDir(name)
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "preparing plot dir")
	}
	plotPath := filepath.Join(plotDir, store.SeriesBasename(name, first, last, "plot", now)+".png")

	err = renderPNG(plotPath,
		fmt.Sprintf("Comparison: %s vs %s", titleLeft, titleRight),
		left.SeriesID, right.SeriesID,
		lineSeries(titleLeft, colorLeft, dates, leftVals, chart.YAxisPrimary),
		lineSeries(titleRight, colorRight, dates, rightVals, chart.YAxisSecondary),
	)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("dual-axis plotted", "comparison", name, "path", plotPath)

	return &DualAxisResult{
		SeriesLeft:  left.SeriesID,
		SeriesRight: right.SeriesID,
		TitleLeft:   titleLeft,
		TitleRight:  titleRight,
		PlotPath:    plotPath,
		CSVPath:     csvPath,
		XLSXPath:    xlsxPath,
		StartDate:   util.FormatDate(first),
		EndDate:     util.FormatDate(last),
		RowCount:    len(dates),
	}, nil
}

// alignIntersection keeps only dates present in both series, preserving
// the left series' order.
func alignIntersection(left, right *model.SeriesData) (dates []time.Time, leftVals, rightVals []float64) {
	rightByDate := make(map[int64]float64, len(right.Obs))
	for _, o := range right.Obs {
		rightByDate[o.Date.Unix()] = o.Value
	}
	for _, o := range left.Obs {
		rv, ok := rightByDate[o.Date.Unix()]
		if !ok {
			continue
		}
		dates = append(dates, o.Date)
		leftVals = append(leftVals, o.Value)
		rightVals = append(rightVals, rv)
	}
	return dates, leftVals, rightVals
}

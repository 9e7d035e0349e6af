package plot

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/fred"
	"github.com/macrolab/fredmcp/internal/stats"
	"github.com/macrolab/fredmcp/internal/store"
	"github.com/macrolab/fredmcp/internal/transform"
	"github.com/macrolab/fredmcp/internal/util"
)

// differencing plot colors: level, first difference, second difference.
var diffColors = [3]string{"#2E5090", "#D4526E", "#13B5B1"}

// DifferencingResult reports the differencing analysis: stationarity tests
// for the level, first and second differences plus the artifact paths.
type DifferencingResult struct {
	SeriesID  string `json:"series_id"`
	Title     string `json:"title"`
	CSVPath   string `json:"csv_path"`
	XLSXPath  string `json:"xlsx_path"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	PlotPaths map[string]string          `json:"plot_paths"` // level, first_diff, second_diff
	ADF       map[string]stats.ADFResult `json:"adf_results"`

	// RecommendedOrder is the lowest differencing order the test finds
	// stationary at 5%, or -1 when none qualifies.
	RecommendedOrder int `json:"recommended_order"`
}

// AnalyzeDifferencing fetches a series, computes its first and second
// differences, runs an augmented Dickey-Fuller test on each, renders one
// chart per level, and exports the three columns as CSV+XLSX.
func (p *Plotter) AnalyzeDifferencing(ctx context.Context, seriesID, start, end string) (*DifferencingResult, error) {
	data, err := p.client.GetObservations(ctx, seriesID, fred.ObsOptions{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	first, last, ok := data.Window()
	if !ok {
		return nil, fault.New(fault.NotFound, "no observations for %s in the requested window", data.SeriesID)
	}

	dates := make([]time.Time, len(data.Obs))
	level := make([]float64, len(data.Obs))
	for i, o := range data.Obs {
		dates[i] = o.Date
		level[i] = o.Value
	}
	firstDiff, err := transform.Apply(transform.Diff, level)
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "first difference")
	}
	secondDiff, err := transform.Apply(transform.Diff, firstDiff)
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "second difference")
	}

	// Export all three columns under the differencing label.
	seriesDir, err := p.store.SeriesDir(data.SeriesID)
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "preparing series dir")
	}
	now := time.Now().UTC()
	base := store.SeriesBasename(data.SeriesID, first, last, "differencing", now)
	csvPath := filepath.Join(seriesDir, base+".csv")
	xlsxPath := filepath.Join(seriesDir, base+".xlsx")
	header := []string{"date", "value", "first_diff", "second_diff"}
	cols := [][]float64{level, firstDiff, secondDiff}
	if err := store.WriteCSV(csvPath, header, dates, cols); err != nil {
		return nil, fault.Wrap(fault.Internal, err, "writing differencing csv")
	}
	if err := store.WriteXLSX(xlsxPath, header, dates, cols); err != nil {
		return nil, fault.Wrap(fault.Internal, err, "writing differencing xlsx")
	}

	adf := make(map[string]stats.ADFResult, 3)
	for name, values := range map[string][]float64{
		"level":       level,
		"first_diff":  firstDiff,
		"second_diff": secondDiff,
	} {
		r, err := stats.ADF(values)
		if err != nil {
			return nil, fault.Wrap(fault.InvalidParams, err, "stationarity test on %s %s", data.SeriesID, name)
		}
		adf[name] = r
	}

	title := p.seriesTitle(ctx, data.SeriesID)
	plotDir, err := p.store.PlotDir(data.SeriesID)
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "preparing plot dir")
	}
	plots := make(map[string]string, 3)
	levels := []struct {
		key    string
		label  string
		color  string
		values []float64
	}{
		{"level", "Original Series", diffColors[0], level},
		{"first_diff", "First Difference", diffColors[1], firstDiff},
		{"second_diff", "Second Difference", diffColors[2], secondDiff},
	}
	for _, lv := range levels {
		if err := requireDrawable(data.SeriesID+" "+lv.key, lv.values); err != nil {
			return nil, err
		}
		path := filepath.Join(plotDir, fmt.Sprintf("%s_%s.png", base, lv.key))
		chartTitle := fmt.Sprintf("%s - %s (ADF p=%s)", title, lv.label, formatP(adf[lv.key].PValue))
		s := lineSeries(lv.label, lv.color, dates, lv.values, chart.YAxisPrimary)
		if err := renderPNG(path, chartTitle, "", "", s); err != nil {
			return nil, err
		}
		plots[lv.key] = path
	}

	res := &DifferencingResult{
		SeriesID:         data.SeriesID,
		Title:            title,
		CSVPath:          csvPath,
		XLSXPath:         xlsxPath,
		StartDate:        util.FormatDate(first),
		EndDate:          util.FormatDate(last),
		PlotPaths:        plots,
		ADF:              adf,
		RecommendedOrder: recommendOrder(adf),
	}
	p.logger.Debug("differencing analyzed", "series", data.SeriesID,
		"recommended_order", res.RecommendedOrder)
	return res, nil
}

func recommendOrder(adf map[string]stats.ADFResult) int {
	for order, key := range []string{"level", "first_diff", "second_diff"} {
		if adf[key].Stationary {
			return order
		}
	}
	return -1
}

func formatP(p float64) string {
	if math.IsNaN(p) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", p)
}

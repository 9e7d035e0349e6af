// Package plot renders PNG line charts for series, comparisons, differencing
// analysis and dataset columns. Every operation returns the file paths it
// wrote, never image bytes; data exports go through the store so the CSV/XLSX
// siblings always cover the exact plotted window.
package plot

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/macrolab/fredmcp/internal/fault"
)

// Default line colors, left/primary and right/secondary.
const (
	DefaultLeftColor  = "#2E5090"
	DefaultRightColor = "#C1272D"
)

const (
	chartWidth  = 1280
	chartHeight = 720
)

// lineSeries builds a time series for rendering, dropping missing points so
// the line stays continuous.
func lineSeries(name, hexColor string, dates []time.Time, values []float64, axis chart.YAxisType) chart.TimeSeries {
	xs := make([]time.Time, 0, len(dates))
	ys := make([]float64, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, dates[i])
		ys = append(ys, v)
	}
	return chart.TimeSeries{
		Name:    name,
		YAxis:   axis,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: parseHexColor(hexColor),
			StrokeWidth: 2.0,
		},
	}
}

func parseHexColor(s string) drawing.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(s)
}

// renderPNG draws the chart to path. Charts with fewer than two drawable
// points per series cannot render; callers validate first.
func renderPNG(path, title string, leftLabel, rightLabel string, series ...chart.Series) error {
	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: chart.YAxis{
			Name: leftLabel,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Series: series,
	}
	if rightLabel != "" {
		graph.YAxisSecondary = chart.YAxis{Name: rightLabel}
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(fault.Internal, err, "creating plot file")
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		os.Remove(path)
		return fault.Wrap(fault.Internal, err, "rendering %s", path)
	}
	return f.Close()
}

// drawableCount returns the number of non-missing points.
func drawableCount(values []float64) int {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

func requireDrawable(name string, values []float64) error {
	if drawableCount(values) < 2 {
		return fault.New(fault.InvalidParams,
			"%s has fewer than 2 plottable observations", name)
	}
	return nil
}

func comparisonName(left, right string) string {
	return fmt.Sprintf("%s_vs_%s", left, right)
}

package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/macrolab/fredmcp/internal/dataset"
	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/util"
)

// FromDatasetRequest parameterizes a plot over committed dataset columns.
type FromDatasetRequest struct {
	ColumnLeft  string
	ColumnRight string
	DatasetPath string // optional; empty = newest dataset with both columns
	ColorLeft   string
	ColorRight  string
}

// FromDatasetResult reports a dataset-column plot.
type FromDatasetResult struct {
	Dataset     string `json:"dataset"`
	DatasetPath string `json:"dataset_path"`
	ColumnLeft  string `json:"column_left"`
	ColumnRight string `json:"column_right"`
	PlotPath    string `json:"plot_path"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	RowCount    int    `json:"row_count"`
}

// PlotFromDataset renders two columns of a committed dataset on independent
// axes. Everything is read from disk; no gateway traffic. The PNG lands in
// the dataset's plots/ folder so it travels with the data it came from.
func (p *Plotter) PlotFromDataset(catalog *dataset.Catalog, req FromDatasetRequest) (*FromDatasetResult, error) {
	if req.ColumnLeft == "" || req.ColumnRight == "" {
		return nil, fault.New(fault.InvalidParams, "column_left and column_right are both required")
	}

	entry, err := catalog.Resolve(req.DatasetPath, []string{req.ColumnLeft, req.ColumnRight})
	if err != nil {
		return nil, err
	}

	table, err := dataset.ReadCSV(entry.Meta.CSVPath)
	if err != nil {
		return nil, err
	}
	li := table.ColumnIndex(req.ColumnLeft)
	ri := table.ColumnIndex(req.ColumnRight)
	if li < 0 || ri < 0 {
		// Sidecar said yes but the CSV disagrees; treat the artifact as broken.
		return nil, fault.New(fault.IncompleteDataset,
			"dataset %s csv is missing columns listed in its metadata (has: %s)",
			entry.Meta.Name, strings.Join(table.ColumnNames(), ", "))
	}
	if table.Rows() == 0 {
		return nil, fault.New(fault.IncompleteDataset, "dataset %s csv has no rows", entry.Meta.Name)
	}

	leftVals := table.Columns[li].Values
	rightVals := table.Columns[ri].Values
	if err := requireDrawable(req.ColumnLeft, leftVals); err != nil {
		return nil, err
	}
	if err := requireDrawable(req.ColumnRight, rightVals); err != nil {
		return nil, err
	}

	colorLeft, colorRight := req.ColorLeft, req.ColorRight
	if colorLeft == "" {
		colorLeft = DefaultLeftColor
	}
	if colorRight == "" {
		colorRight = DefaultRightColor
	}

	plotDir := filepath.Join(entry.Dir, "plots")
	if err := os.MkdirAll(plotDir, 0o755); err != nil {
		return nil, fault.Wrap(fault.Internal, err, "preparing dataset plots dir")
	}
	now := time.Now().UTC()
	plotPath := filepath.Join(plotDir,
		fmt.Sprintf("%s_vs_%s_plot_%s.png", req.ColumnLeft, req.ColumnRight, util.StampDay(now)))

	err = renderPNG(plotPath,
		fmt.Sprintf("%s vs %s (%s)", req.ColumnLeft, req.ColumnRight, entry.Meta.Name),
		req.ColumnLeft, req.ColumnRight,
		lineSeries(req.ColumnLeft, colorLeft, table.Dates, leftVals, chart.YAxisPrimary),
		lineSeries(req.ColumnRight, colorRight, table.Dates, rightVals, chart.YAxisSecondary),
	)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("dataset columns plotted", "dataset", entry.Meta.Name, "path", plotPath)

	return &FromDatasetResult{
		Dataset:     entry.Meta.Name,
		DatasetPath: entry.Dir,
		ColumnLeft:  req.ColumnLeft,
		ColumnRight: req.ColumnRight,
		PlotPath:    plotPath,
		StartDate:   util.FormatDate(table.Dates[0]),
		EndDate:     util.FormatDate(table.Dates[len(table.Dates)-1]),
		RowCount:    table.Rows(),
	}, nil
}

package plot_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/macrolab/fredmcp/internal/dataset"
	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/model"
	"github.com/macrolab/fredmcp/internal/plot"
	"github.com/macrolab/fredmcp/internal/store"
)

// writeDatasetFixture commits a small two-column dataset under root.
func writeDatasetFixture(t *testing.T, root string) string {
	t.Helper()
	name := "FRED_dataset_GDP_UNRATE"
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, name+"_2020-01-01_to_2020-06-01_built_20200701.csv")
	body := strings.Join([]string{
		"date,GDP,UNRATE",
		"2020-01-01,100,3.5",
		"2020-02-01,101,3.6",
		"2020-03-01,,14.7",
		"2020-04-01,95,13.2",
		"2020-05-01,97,11.1",
		"2020-06-01,99,10.2",
		"",
	}, "\n")
	if err := os.WriteFile(csvPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := model.DatasetMetadata{
		Name:             name,
		SeriesList:       []string{"GDP", "UNRATE"},
		MergeStrategy:    "inner",
		ObservationStart: "2020-01-01",
		ObservationEnd:   "2020-06-01",
		Columns:          []string{"GDP", "UNRATE"},
		RowCount:         6,
		CreatedAt:        time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC),
		CSVPath:          csvPath,
		XLSXPath:         strings.TrimSuffix(csvPath, ".csv") + ".xlsx",
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+"_metadata_20200701.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func newTestPlotter(root string) *plot.Plotter {
	return plot.NewPlotter(nil, store.New(root), nil, nil)
}

// ─── PlotFromDataset ──────────────────────────────────────────────────────────

func TestPlotFromDataset(t *testing.T) {
	root := t.TempDir()
	dir := writeDatasetFixture(t, root)
	p := newTestPlotter(root)
	cat := dataset.NewCatalog(root)

	res, err := p.PlotFromDataset(cat, plot.FromDatasetRequest{
		ColumnLeft:  "GDP",
		ColumnRight: "UNRATE",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Dataset != "FRED_dataset_GDP_UNRATE" {
		t.Errorf("unexpected dataset %q", res.Dataset)
	}
	if res.StartDate != "2020-01-01" || res.EndDate != "2020-06-01" || res.RowCount != 6 {
		t.Errorf("unexpected window %s..%s (%d rows)", res.StartDate, res.EndDate, res.RowCount)
	}

	if filepath.Dir(res.PlotPath) != filepath.Join(dir, "plots") {
		t.Errorf("plot should land in the dataset's plots folder, got %s", res.PlotPath)
	}
	if !strings.HasPrefix(filepath.Base(res.PlotPath), "GDP_vs_UNRATE_plot_") {
		t.Errorf("unexpected plot filename %q", filepath.Base(res.PlotPath))
	}
	info, err := os.Stat(res.PlotPath)
	if err != nil {
		t.Fatalf("expected the png to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("rendered png is empty")
	}
}

func TestPlotFromDatasetRequiresBothColumns(t *testing.T) {
	root := t.TempDir()
	writeDatasetFixture(t, root)
	p := newTestPlotter(root)

	_, err := p.PlotFromDataset(dataset.NewCatalog(root), plot.FromDatasetRequest{
		ColumnLeft: "GDP",
	})
	if !fault.Is(err, fault.InvalidParams) {
		t.Errorf("expected invalid_params, got %v", err)
	}
}

func TestPlotFromDatasetUnknownColumn(t *testing.T) {
	root := t.TempDir()
	writeDatasetFixture(t, root)
	p := newTestPlotter(root)

	_, err := p.PlotFromDataset(dataset.NewCatalog(root), plot.FromDatasetRequest{
		ColumnLeft:  "GDP",
		ColumnRight: "CPIAUCSL",
	})
	if !fault.Is(err, fault.UnknownColumn) {
		t.Errorf("expected unknown_column, got %v", err)
	}
}

func TestPlotFromDatasetEmptyCatalog(t *testing.T) {
	root := t.TempDir()
	p := newTestPlotter(root)

	_, err := p.PlotFromDataset(dataset.NewCatalog(root), plot.FromDatasetRequest{
		ColumnLeft:  "GDP",
		ColumnRight: "UNRATE",
	})
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestPlotFromDatasetByExplicitPath(t *testing.T) {
	root := t.TempDir()
	dir := writeDatasetFixture(t, root)
	p := newTestPlotter(root)

	res, err := p.PlotFromDataset(dataset.NewCatalog(root), plot.FromDatasetRequest{
		ColumnLeft:  "UNRATE",
		ColumnRight: "GDP",
		DatasetPath: dir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DatasetPath != dir {
		t.Errorf("expected dataset path %s, got %s", dir, res.DatasetPath)
	}
}

package dataset_test

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/macrolab/fredmcp/internal/dataset"
	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/model"
)

// ─── Fixtures ─────────────────────────────────────────────────────────────────

// writeDataset commits a minimal dataset under root: a CSV plus its sidecar.
func writeDataset(t *testing.T, root, name string, created time.Time, columns []string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, name+"_2020-01-01_to_2020-03-01_built_20200401.csv")
	var rows strings.Builder
	rows.WriteString("date," + strings.Join(columns, ",") + "\n")
	rows.WriteString("2020-01-01,1" + strings.Repeat(",1", len(columns)-1) + "\n")
	rows.WriteString("2020-02-01," + strings.Repeat(",", len(columns)-1) + "\n")
	rows.WriteString("2020-03-01,3" + strings.Repeat(",3", len(columns)-1) + "\n")
	if err := os.WriteFile(csvPath, []byte(rows.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := model.DatasetMetadata{
		Name:             name,
		SeriesList:       columns,
		MergeStrategy:    "inner",
		ObservationStart: "2020-01-01",
		ObservationEnd:   "2020-03-01",
		Columns:          columns,
		RowCount:         3,
		CreatedAt:        created,
		CSVPath:          csvPath,
		XLSXPath:         strings.TrimSuffix(csvPath, ".csv") + ".xlsx",
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	sidecar := filepath.Join(dir, name+"_metadata_20200401.json")
	if err := os.WriteFile(sidecar, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// ─── Recent ───────────────────────────────────────────────────────────────────

func TestRecentNewestFirst(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2020, 4, 1, 12, 0, 0, 0, time.UTC)
	writeDataset(t, root, "FRED_dataset_GDP", base, []string{"GDP"})
	writeDataset(t, root, "FRED_dataset_UNRATE", base.Add(time.Hour), []string{"UNRATE"})

	entries, err := dataset.NewCatalog(root).Recent(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(entries))
	}
	if entries[0].Meta.Name != "FRED_dataset_UNRATE" {
		t.Errorf("newest dataset should come first, got %q", entries[0].Meta.Name)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"A", "B", "C"} {
		writeDataset(t, root, "FRED_dataset_"+id, base, []string{id})
		base = base.Add(time.Minute)
	}
	entries, err := dataset.NewCatalog(root).Recent(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected limit of 2, got %d entries", len(entries))
	}
}

func TestRecentSkipsUncommitted(t *testing.T) {
	root := t.TempDir()
	created := time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)
	writeDataset(t, root, "FRED_dataset_GOOD", created, []string{"GOOD"})

	// Folder with a CSV but no sidecar: an interrupted build.
	partial := filepath.Join(root, "FRED_dataset_PARTIAL")
	os.MkdirAll(partial, 0o755)
	os.WriteFile(filepath.Join(partial, "orphan.csv"), []byte("date,PARTIAL\n"), 0o644)

	// Sidecar whose CSV is gone.
	broken := writeDataset(t, root, "FRED_dataset_BROKEN", created, []string{"BROKEN"})
	entriesBefore, _ := dataset.NewCatalog(root).Recent(0)
	if len(entriesBefore) != 2 {
		t.Fatalf("expected 2 committed datasets before breaking one, got %d", len(entriesBefore))
	}
	csvs, _ := filepath.Glob(filepath.Join(broken, "*.csv"))
	for _, p := range csvs {
		os.Remove(p)
	}

	entries, err := dataset.NewCatalog(root).Recent(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Meta.Name != "FRED_dataset_GOOD" {
		t.Errorf("only the committed dataset should be listed, got %+v", entries)
	}
}

func TestRecentMissingRoot(t *testing.T) {
	entries, err := dataset.NewCatalog(filepath.Join(t.TempDir(), "nope")).Recent(0)
	if err != nil {
		t.Fatalf("missing root should not error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty listing, got %d entries", len(entries))
	}
}

// ─── Resolve ──────────────────────────────────────────────────────────────────

func TestResolveByColumns(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)
	writeDataset(t, root, "FRED_dataset_GDP_UNRATE", base, []string{"GDP", "UNRATE"})
	writeDataset(t, root, "FRED_dataset_CPIAUCSL", base.Add(time.Hour), []string{"CPIAUCSL_YoY"})

	// The newest dataset lacks the wanted columns; resolution falls through
	// to the older one that has them.
	e, err := dataset.NewCatalog(root).Resolve("", []string{"GDP", "UNRATE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Meta.Name != "FRED_dataset_GDP_UNRATE" {
		t.Errorf("resolved wrong dataset: %q", e.Meta.Name)
	}
}

func TestResolveUnknownColumn(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root, "FRED_dataset_GDP",
		time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), []string{"GDP"})

	_, err := dataset.NewCatalog(root).Resolve("", []string{"UNRATE"})
	if !fault.Is(err, fault.UnknownColumn) {
		t.Fatalf("expected unknown_column, got %v", err)
	}
	if !strings.Contains(err.Error(), "GDP") {
		t.Errorf("error should name the available columns, got: %s", err)
	}
}

func TestResolveEmptyCatalog(t *testing.T) {
	_, err := dataset.NewCatalog(t.TempDir()).Resolve("", []string{"GDP"})
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestResolveByExplicitPath(t *testing.T) {
	root := t.TempDir()
	dir := writeDataset(t, root, "FRED_dataset_GDP",
		time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), []string{"GDP"})

	cat := dataset.NewCatalog(root)
	e, err := cat.Resolve(dir, []string{"GDP"})
	if err != nil {
		t.Fatalf("resolving by directory: %v", err)
	}
	if e.Dir != dir {
		t.Errorf("expected dir %s, got %s", dir, e.Dir)
	}

	// A file inside the dataset folder resolves to the same dataset.
	e, err = cat.Resolve(e.Meta.CSVPath, []string{"GDP"})
	if err != nil {
		t.Fatalf("resolving by file path: %v", err)
	}
	if e.Meta.Name != "FRED_dataset_GDP" {
		t.Errorf("unexpected dataset %q", e.Meta.Name)
	}
}

func TestResolveMissingPath(t *testing.T) {
	_, err := dataset.NewCatalog(t.TempDir()).Resolve("/does/not/exist", nil)
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestResolvePathWithoutSidecar(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "FRED_dataset_RAW")
	os.MkdirAll(dir, 0o755)
	_, err := dataset.NewCatalog(root).Resolve(dir, nil)
	if !fault.Is(err, fault.IncompleteDataset) {
		t.Errorf("expected incomplete_dataset, got %v", err)
	}
}

// ─── ReadCSV ──────────────────────────────────────────────────────────────────

func TestReadCSVNullCells(t *testing.T) {
	root := t.TempDir()
	dir := writeDataset(t, root, "FRED_dataset_GDP",
		time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), []string{"GDP"})
	csvs, _ := filepath.Glob(filepath.Join(dir, "*.csv"))
	if len(csvs) != 1 {
		t.Fatalf("expected 1 csv, found %d", len(csvs))
	}

	table, err := dataset.ReadCSV(csvs[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Rows())
	}
	if !math.IsNaN(table.Columns[0].Values[1]) {
		t.Errorf("empty cell should read back as null, got %g", table.Columns[0].Values[1])
	}
	if table.Columns[0].Values[0] != 1 || table.Columns[0].Values[2] != 3 {
		t.Errorf("unexpected values %v", table.Columns[0].Values)
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := dataset.ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if !fault.Is(err, fault.IncompleteDataset) {
		t.Errorf("expected incomplete_dataset, got %v", err)
	}
}

// ─── RenderText ───────────────────────────────────────────────────────────────

func TestRenderText(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root, "FRED_dataset_GDP_UNRATE",
		time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), []string{"GDP", "UNRATE"})
	entries, err := dataset.NewCatalog(root).Recent(0)
	if err != nil {
		t.Fatal(err)
	}

	text := dataset.RenderText(entries)
	for _, want := range []string{
		"RECENT FRED DATASETS (1)",
		"FRED_dataset_GDP_UNRATE",
		"GDP, UNRATE",
		"2020-01-01 to 2020-03-01 (3 rows)",
		"plot_from_dataset_tool",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("listing should contain %q:\n%s", want, text)
		}
	}
}

func TestRenderTextEmpty(t *testing.T) {
	text := dataset.RenderText(nil)
	if !strings.Contains(text, "No datasets built yet") {
		t.Errorf("empty listing should say so, got:\n%s", text)
	}
}

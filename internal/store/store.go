// Package store owns the on-disk layout under the data root:
//
//	<root>/<SERIES_ID>/series/   — raw series CSV+XLSX exports
//	<root>/<SERIES_ID>/grafico/  — PNG plots for the series
//	<root>/FRED_dataset_*/       — dataset folders written by the builder
//
// Filenames embed the producing parameters (observed window, download day)
// so re-invoking with identical parameters overwrites in place. The store
// also hands out per-basename write locks so concurrent builds of the same
// dataset serialize their three-file commit.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/macrolab/fredmcp/internal/model"
	"github.com/macrolab/fredmcp/internal/util"
)

// Store manages the data root directory layout.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Store rooted at dir. The directory is created lazily on the
// first write, not here.
func New(dir string) *Store {
	return &Store{
		root:  dir,
		locks: make(map[string]*sync.Mutex),
	}
}

// Root returns the data root directory.
func (s *Store) Root() string { return s.root }

// SeriesDir returns (creating it) the series data folder for a series or
// comparison name, e.g. <root>/UNRATE/series.
func (s *Store) SeriesDir(name string) (string, error) {
	dir := filepath.Join(s.root, name, "series")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating series dir: %w", err)
	}
	return dir, nil
}

// PlotDir returns (creating it) the plot folder for a series or comparison
// name, e.g. <root>/UNRATE/grafico.
func (s *Store) PlotDir(name string) (string, error) {
	dir := filepath.Join(s.root, name, "grafico")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating plot dir: %w", err)
	}
	return dir, nil
}

// DatasetDir returns (creating it) the folder for a dataset basename,
// e.g. <root>/FRED_dataset_UNRATE_CPIAUCSL.
func (s *Store) DatasetDir(basename string) (string, error) {
	dir := filepath.Join(s.root, basename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dataset dir: %w", err)
	}
	return dir, nil
}

// Lock acquires the write lock for a dataset basename and returns the
// release function. Locks are per-process; the on-disk commit protocol
// (sidecar written last) covers cross-process readers.
func (s *Store) Lock(basename string) func() {
	s.mu.Lock()
	l, ok := s.locks[basename]
	if !ok {
		l = &sync.Mutex{}
		s.locks[basename] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// SeriesBasename derives the artifact basename for a series export:
// <NAME>_<start>_to_<end>_<label>_<YYYYMMDD>. Start/end are the actual
// observed window, not the requested bounds.
func SeriesBasename(name string, start, end time.Time, label string, day time.Time) string {
	return fmt.Sprintf("%s_%s_to_%s_%s_%s",
		name, util.FormatDate(start), util.FormatDate(end), label, util.StampDay(day))
}

// WriteSeriesData persists a single series window as CSV+XLSX under
// <root>/<name>/series/ and returns both paths.
func (s *Store) WriteSeriesData(name string, obs []model.Observation, label string) (csvPath, xlsxPath string, err error) {
	if len(obs) == 0 {
		return "", "", fmt.Errorf("no observations to persist for %s", name)
	}
	dir, err := s.SeriesDir(name)
	if err != nil {
		return "", "", err
	}

	dates := make([]time.Time, len(obs))
	values := make([]float64, len(obs))
	for i, o := range obs {
		dates[i] = o.Date
		values[i] = o.Value
	}

	base := SeriesBasename(name, dates[0], dates[len(dates)-1], label, time.Now().UTC())
	csvPath = filepath.Join(dir, base+".csv")
	xlsxPath = filepath.Join(dir, base+".xlsx")

	header := []string{"date", "value"}
	if err := WriteCSV(csvPath, header, dates, [][]float64{values}); err != nil {
		return "", "", err
	}
	if err := WriteXLSX(xlsxPath, header, dates, [][]float64{values}); err != nil {
		return "", "", err
	}
	return csvPath, xlsxPath, nil
}

package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/model"
)

// DefaultCatalogLimit is how many datasets the recent listing shows when the
// caller does not say otherwise.
const DefaultCatalogLimit = 10

// Catalog lists built datasets by scanning the data root. It keeps no state:
// every call reprojects the current on-disk layout, so datasets written by
// other processes appear without coordination.
type Catalog struct {
	root string
}

// NewCatalog creates a catalog over the data root directory.
func NewCatalog(root string) *Catalog {
	return &Catalog{root: root}
}

// Entry is one committed dataset: its sidecar metadata plus where it lives.
type Entry struct {
	Meta        model.DatasetMetadata `json:"metadata"`
	Dir         string                `json:"dir"`
	SidecarPath string                `json:"sidecar_path"`
}

// Recent returns up to limit committed datasets, newest first. Dataset
// folders without a parseable sidecar, or whose CSV is missing, are treated
// as uncommitted and skipped. A missing data root yields an empty listing.
func (c *Catalog) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultCatalogLimit
	}
	dirs, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fault.Wrap(fault.Internal, err, "scanning data root %s", c.root)
	}

	var entries []Entry
	for _, d := range dirs {
		if !d.IsDir() || !strings.HasPrefix(d.Name(), "FRED_dataset_") {
			continue
		}
		dir := filepath.Join(c.root, d.Name())
		e, ok := c.readDataset(dir)
		if ok {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Meta.CreatedAt.After(entries[j].Meta.CreatedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// readDataset loads the newest sidecar in a dataset folder. ok is false when
// the folder holds no complete, committed dataset.
func (c *Catalog) readDataset(dir string) (Entry, bool) {
	sidecars, err := filepath.Glob(filepath.Join(dir, "*_metadata_*.json"))
	if err != nil || len(sidecars) == 0 {
		return Entry{}, false
	}

	var best Entry
	found := false
	for _, path := range sidecars {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var meta model.DatasetMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		if meta.CSVPath == "" {
			continue
		}
		if _, err := os.Stat(meta.CSVPath); err != nil {
			continue // sidecar points at a missing artifact
		}
		if !found || meta.CreatedAt.After(best.Meta.CreatedAt) {
			best = Entry{Meta: meta, Dir: dir, SidecarPath: path}
			found = true
		}
	}
	return best, found
}

// Resolve finds the dataset to plot from. With an explicit path it loads that
// dataset directory (or sidecar file); otherwise it returns the most recent
// dataset whose columns include every name in want.
func (c *Catalog) Resolve(path string, want []string) (*Entry, error) {
	if path != "" {
		return c.resolvePath(path, want)
	}

	entries, err := c.Recent(0)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if hasColumns(entries[i].Meta.Columns, want) {
			return &entries[i], nil
		}
	}
	if len(entries) == 0 {
		return nil, fault.New(fault.NotFound, "no built datasets found under %s", c.root)
	}
	return nil, fault.New(fault.UnknownColumn,
		"no dataset contains columns %s; most recent dataset %s has: %s",
		strings.Join(want, ", "), entries[0].Meta.Name, strings.Join(entries[0].Meta.Columns, ", "))
}

func (c *Catalog) resolvePath(path string, want []string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fault.Wrap(fault.NotFound, err, "dataset path %s", path)
	}
	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}
	e, ok := c.readDataset(dir)
	if !ok {
		return nil, fault.New(fault.IncompleteDataset,
			"%s holds no committed dataset (missing or unreadable metadata sidecar)", dir)
	}
	if !hasColumns(e.Meta.Columns, want) {
		return nil, fault.New(fault.UnknownColumn,
			"dataset %s has columns: %s", e.Meta.Name, strings.Join(e.Meta.Columns, ", "))
	}
	return &e, nil
}

func hasColumns(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// RenderText formats a recent-datasets listing as the plain-text body served
// for the catalog resource.
func RenderText(entries []Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RECENT FRED DATASETS (%d)\n\n", len(entries))
	if len(entries) == 0 {
		b.WriteString("No datasets built yet. Use build_fred_dataset_tool to create one.\n")
		return b.String()
	}
	for i, e := range entries {
		m := e.Meta
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.Name)
		fmt.Fprintf(&b, "   Created:         %s\n", m.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(&b, "   Period:          %s to %s (%d rows)\n", m.ObservationStart, m.ObservationEnd, m.RowCount)
		fmt.Fprintf(&b, "   Columns:         %s\n", strings.Join(m.Columns, ", "))
		if len(m.Transformations) > 0 {
			pairs := make([]string, 0, len(m.Transformations))
			for id, tag := range m.Transformations {
				pairs = append(pairs, id+"="+tag)
			}
			sort.Strings(pairs)
			fmt.Fprintf(&b, "   Transformations: %s\n", strings.Join(pairs, ", "))
		}
		fmt.Fprintf(&b, "   Merge:           %s\n", m.MergeStrategy)
		fmt.Fprintf(&b, "   CSV:             %s\n", m.CSVPath)
		b.WriteString("\n")
	}
	b.WriteString("Plot any two columns with plot_from_dataset_tool(column_left, column_right);\n")
	b.WriteString("omit dataset_path to use the most recent dataset containing both columns.\n")
	return b.String()
}

// Package dataset implements the ETL core: multi-series fetch, frequency
// alignment by merge, transformation application, artifact emission with a
// metadata sidecar, and the catalog that reprojects the on-disk layout.
//
// Transformations run after the merge, over the merged index. A YoY on a
// quarterly series inner-merged into monthly data therefore means "12 rows
// back in the merged index", not "12 calendar months back".
package dataset

import (
	"math"
	"sort"
	"time"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/model"
)

// MergeStrategy selects which dates survive the multi-series merge.
type MergeStrategy string

const (
	MergeInner MergeStrategy = "inner" // only dates present in every series
	MergeOuter MergeStrategy = "outer" // union of all dates, null fill
	MergeLeft  MergeStrategy = "left"  // dates of the first input
	MergeRight MergeStrategy = "right" // dates of the last input
)

// ParseMergeStrategy validates a strategy string. Empty defaults to inner.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch MergeStrategy(s) {
	case "":
		return MergeInner, nil
	case MergeInner, MergeOuter, MergeLeft, MergeRight:
		return MergeStrategy(s), nil
	default:
		return "", fault.New(fault.InvalidParams,
			"unknown merge strategy %q (valid: inner, outer, left, right)", s)
	}
}

// Column is a named value vector aligned to a Table's date index.
type Column struct {
	Name   string
	Values []float64 // NaN = missing
}

// Table is a date-indexed set of columns. Dates are strictly ascending and
// every column has exactly len(Dates) values.
type Table struct {
	Dates   []time.Time
	Columns []Column
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return len(t.Dates) }

// Merge aligns the given series on their dates using the requested strategy.
// Column order follows the input order; column names are the series IDs.
func Merge(series []*model.SeriesData, strategy MergeStrategy) *Table {
	maps := make([]map[int64]float64, len(series))
	for i, s := range series {
		m := make(map[int64]float64, len(s.Obs))
		for _, o := range s.Obs {
			m[o.Date.Unix()] = o.Value
		}
		maps[i] = m
	}

	index := mergedIndex(series, maps, strategy)

	t := &Table{
		Dates:   index,
		Columns: make([]Column, len(series)),
	}
	for i, s := range series {
		values := make([]float64, len(index))
		for j, d := range index {
			if v, ok := maps[i][d.Unix()]; ok {
				values[j] = v
			} else {
				values[j] = math.NaN()
			}
		}
		t.Columns[i] = Column{Name: s.SeriesID, Values: values}
	}
	return t
}

// mergedIndex computes the surviving date index for a merge.
func mergedIndex(series []*model.SeriesData, maps []map[int64]float64, strategy MergeStrategy) []time.Time {
	switch strategy {
	case MergeLeft:
		return datesOf(series[0])
	case MergeRight:
		return datesOf(series[len(series)-1])
	case MergeOuter:
		seen := make(map[int64]time.Time)
		for _, s := range series {
			for _, o := range s.Obs {
				seen[o.Date.Unix()] = o.Date
			}
		}
		out := make([]time.Time, 0, len(seen))
		for _, d := range seen {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
		return out
	default: // inner
		var out []time.Time
		for _, o := range series[0].Obs {
			inAll := true
			for _, m := range maps[1:] {
				if _, ok := m[o.Date.Unix()]; !ok {
					inAll = false
					break
				}
			}
			if inAll {
				out = append(out, o.Date)
			}
		}
		return out
	}
}

func datesOf(s *model.SeriesData) []time.Time {
	out := make([]time.Time, len(s.Obs))
	for i, o := range s.Obs {
		out[i] = o.Date
	}
	return out
}

// TrimNullEdges removes leading and trailing rows where every column is NaN.
// Interior all-NaN rows are preserved.
func (t *Table) TrimNullEdges() {
	first, last := 0, len(t.Dates)-1
	for first <= last && t.rowAllNaN(first) {
		first++
	}
	for last >= first && t.rowAllNaN(last) {
		last--
	}
	if first == 0 && last == len(t.Dates)-1 {
		return
	}
	if first > last {
		t.Dates = nil
		for i := range t.Columns {
			t.Columns[i].Values = nil
		}
		return
	}
	t.Dates = t.Dates[first : last+1]
	for i := range t.Columns {
		t.Columns[i].Values = t.Columns[i].Values[first : last+1]
	}
}

func (t *Table) rowAllNaN(row int) bool {
	for _, c := range t.Columns {
		if !math.IsNaN(c.Values[row]) {
			return false
		}
	}
	return true
}

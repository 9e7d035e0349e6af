package dataset

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/util"
)

// ReadCSV loads a committed dataset CSV back into a Table. Empty cells
// decode as NaN; rows with unparseable dates are dropped.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(fault.IncompleteDataset, err, "opening dataset csv")
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fault.Wrap(fault.IncompleteDataset, err, "reading dataset header %s", path)
	}
	if len(header) < 2 {
		return nil, fault.New(fault.IncompleteDataset, "dataset %s has no value columns", path)
	}

	t := &Table{Columns: make([]Column, len(header)-1)}
	for i, name := range header[1:] {
		t.Columns[i] = Column{Name: name}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fault.Wrap(fault.IncompleteDataset, err, "reading dataset rows %s", path)
	}
	var dates []time.Time
	for _, row := range rows {
		if len(row) != len(header) {
			continue
		}
		date, err := util.ParseDate(row[0])
		if err != nil {
			continue
		}
		dates = append(dates, date)
		for c, cell := range row[1:] {
			v := math.NaN()
			if cell != "" {
				if parsed, err := strconv.ParseFloat(cell, 64); err == nil {
					v = parsed
				}
			}
			t.Columns[c].Values = append(t.Columns[c].Values, v)
		}
	}
	t.Dates = dates
	return t, nil
}

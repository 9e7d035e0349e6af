package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/macrolab/fredmcp/internal/util"
)

// WriteCSV writes a date-indexed table to path. The first header entry names
// the date column; cols holds one value slice per remaining header entry,
// each aligned to dates. NaN values are written as empty cells (null), never
// as zeros.
func WriteCSV(path string, header []string, dates []time.Time, cols [][]float64) error {
	if len(header) != len(cols)+1 {
		return fmt.Errorf("csv %s: header has %d fields for %d value columns", path, len(header), len(cols))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for i, d := range dates {
		row[0] = util.FormatDate(d)
		for c, col := range cols {
			row[c+1] = util.FormatValue(col[i])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteXLSX writes the same date-indexed table as an Excel workbook with a
// single sheet. Missing values are left as blank cells.
func WriteXLSX(path string, header []string, dates []time.Time, cols [][]float64) error {
	if len(header) != len(cols)+1 {
		return fmt.Errorf("xlsx %s: header has %d fields for %d value columns", path, len(header), len(cols))
	}
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for c, name := range header {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for i, d := range dates {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, util.FormatDate(d)); err != nil {
			return err
		}
		for c, col := range cols {
			v := col[i]
			if v != v { // NaN: leave the cell blank
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+2, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

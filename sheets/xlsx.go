package sheets

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// OpenXLSX reads every sheet of an xlsx file into a Workbook. The file is not kept open.
func OpenXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open data file %s: %w", path, err)
	}
	defer f.Close()

	wb := NewWorkbook()
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("could not read sheet %q of %s: %w", name, path, err)
		}
		wb.AddSheet(name, trimTrailingEmptyRows(rows))
	}
	return wb, nil
}

// WriteXLSX saves the Workbook as an xlsx file, one worksheet per sheet.
func WriteXLSX(path string, wb *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	keepDefault := false
	for _, name := range wb.SheetNames() {
		if name == defaultSheet {
			keepDefault = true
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("could not create sheet %q: %w", name, err)
		}
		for i, row := range wb.Rows(name) {
			cells := make([]interface{}, len(row))
			for j, c := range row {
				cells[j] = c
			}
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return fmt.Errorf("could not write sheet %q: %w", name, err)
			}
		}
	}
	if !keepDefault && len(wb.SheetNames()) > 0 {
		if idx, err := f.GetSheetIndex(wb.SheetNames()[0]); err == nil {
			f.SetActiveSheet(idx)
		}
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}

// GetRows can return rows with no cells at the end of a sheet that only has formatting there.
func trimTrailingEmptyRows(rows [][]string) [][]string {
	for len(rows) > 0 {
		last := rows[len(rows)-1]
		empty := true
		for _, c := range last {
			if c != "" {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		rows = rows[:len(rows)-1]
	}
	return rows
}

// Package sheets provides framework.DataSource implementations backed by tables of cells: an
// in-memory Workbook and an xlsx loader.
package sheets

import (
	"errors"

	"github.com/crudcheck/crud-contract-tests/framework"
)

var (
	errNoSheet  = errors.New("no such sheet")
	errNoRow    = errors.New("no such row")
	errNoColumn = errors.New("no such column")
)

// Workbook is a set of named sheets held in memory. It is read-only once it has been handed to
// a suite, and safe for concurrent reads.
//
// Spreadsheet rows are ragged: a row may be shorter than its header if its trailing cells are
// empty. Any cell within the header's width reads as "" in that case.
type Workbook struct {
	sheets map[string][][]string
	order  []string
}

func NewWorkbook() *Workbook {
	return &Workbook{sheets: make(map[string][][]string)}
}

// AddSheet adds or replaces a sheet. Row 0 is the header row.
func (w *Workbook) AddSheet(name string, rows [][]string) *Workbook {
	if _, exists := w.sheets[name]; !exists {
		w.order = append(w.order, name)
	}
	w.sheets[name] = rows
	return w
}

// SheetNames returns the sheet names in the order they were added.
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.order...)
}

// Rows returns the rows of a sheet, or nil if there is no such sheet.
func (w *Workbook) Rows(sheet string) [][]string {
	return w.sheets[sheet]
}

func (w *Workbook) CellAt(sheet string, row, col int) (string, error) {
	rows, ok := w.sheets[sheet]
	if !ok {
		return "", &framework.DataAccessError{Sheet: sheet, Row: -1, Col: -1, Err: errNoSheet}
	}
	if row < 0 || row >= len(rows) {
		return "", &framework.DataAccessError{Sheet: sheet, Row: row, Col: -1, Err: errNoRow}
	}
	width := len(rows[row])
	if framework.HeaderRow < len(rows) && len(rows[framework.HeaderRow]) > width {
		width = len(rows[framework.HeaderRow])
	}
	if col < 0 || col >= width {
		return "", &framework.DataAccessError{Sheet: sheet, Row: row, Col: col, Err: errNoColumn}
	}
	if col >= len(rows[row]) {
		return "", nil
	}
	return rows[row][col], nil
}

func (w *Workbook) RowCount(sheet string) (int, error) {
	rows, ok := w.sheets[sheet]
	if !ok {
		return 0, &framework.DataAccessError{Sheet: sheet, Row: -1, Col: -1, Err: errNoSheet}
	}
	return len(rows), nil
}

func (w *Workbook) ColCount(sheet string, headerRow int) (int, error) {
	rows, ok := w.sheets[sheet]
	if !ok {
		return 0, &framework.DataAccessError{Sheet: sheet, Row: -1, Col: -1, Err: errNoSheet}
	}
	if headerRow < 0 || headerRow >= len(rows) {
		return 0, &framework.DataAccessError{Sheet: sheet, Row: headerRow, Col: -1, Err: errNoRow}
	}
	return len(rows[headerRow]), nil
}

// ColumnIndex returns the index of the header cell with the given name, or -1.
func (w *Workbook) ColumnIndex(sheet, name string) int {
	rows := w.sheets[sheet]
	if len(rows) <= framework.HeaderRow {
		return -1
	}
	for i, h := range rows[framework.HeaderRow] {
		if h == name {
			return i
		}
	}
	return -1
}

package framework

import "errors"

// HeaderRow is the row index that holds column names in every sheet. Data rows start at 1.
const HeaderRow = 0

// DataSource provides read access to tabular test data.
//
// Row and column indexes are zero-based. RowCount includes the header row, so the data rows of
// a sheet are 1 through RowCount-1. All methods fail with a *DataAccessError if the sheet or
// the coordinates do not exist. An empty string is a valid cell value, distinct from a missing
// coordinate.
type DataSource interface {
	CellAt(sheet string, row, col int) (string, error)
	RowCount(sheet string) (int, error)
	ColCount(sheet string, headerRow int) (int, error)
}

var errNoDataSource = errors.New("no data source is configured")

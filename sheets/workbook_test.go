package sheets

import (
	"path/filepath"
	"testing"

	"github.com/crudcheck/crud-contract-tests/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeUsers() *Workbook {
	return NewWorkbook().AddSheet("Sheet1", [][]string{
		{"name", "job", "email"},
		{"Ann Lee", "QA", "ann@x.io"},
		{"Bob Ray"},
	})
}

func TestWorkbookCells(t *testing.T) {
	wb := makeUsers()

	v, err := wb.CellAt("Sheet1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", v)

	v, err = wb.CellAt("Sheet1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "", v, "short rows read as empty within the header width")

	rows, err := wb.RowCount("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	cols, err := wb.ColCount("Sheet1", framework.HeaderRow)
	require.NoError(t, err)
	assert.Equal(t, 3, cols)

	assert.Equal(t, 2, wb.ColumnIndex("Sheet1", "email"))
	assert.Equal(t, -1, wb.ColumnIndex("Sheet1", "age"))
}

func TestWorkbookMissingCoordinates(t *testing.T) {
	wb := makeUsers()

	for _, p := range []struct {
		name        string
		sheet       string
		row, col    int
		expectedCol int
	}{
		{"sheet", "Nope", 1, 0, -1},
		{"row", "Sheet1", 3, 0, -1},
		{"negative row", "Sheet1", -1, 0, -1},
		{"column", "Sheet1", 1, 3, 3},
	} {
		t.Run(p.name, func(t *testing.T) {
			_, err := wb.CellAt(p.sheet, p.row, p.col)
			var dae *framework.DataAccessError
			require.ErrorAs(t, err, &dae)
			assert.Equal(t, p.sheet, dae.Sheet)
			assert.Equal(t, p.expectedCol, dae.Col)
		})
	}

	_, err := wb.RowCount("Nope")
	assert.Error(t, err)
	_, err = wb.ColCount("Sheet1", 5)
	assert.Error(t, err)
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.xlsx")
	wb := makeUsers().AddSheet("Other", [][]string{{"id"}, {"7"}})
	require.NoError(t, WriteXLSX(path, wb))

	loaded, err := OpenXLSX(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sheet1", "Other"}, loaded.SheetNames())
	v, err := loaded.CellAt("Sheet1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", v)
	v, err = loaded.CellAt("Other", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "7", v)
	rows, err := loaded.RowCount("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
}

func TestWriteXLSXWithoutDefaultSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, WriteXLSX(path, NewWorkbook().AddSheet("Users", [][]string{{"name"}, {"Ann"}})))

	loaded, err := OpenXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Users"}, loaded.SheetNames())
}

func TestOpenXLSXMissingFile(t *testing.T) {
	_, err := OpenXLSX(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestTrimTrailingEmptyRows(t *testing.T) {
	assert.Equal(t, [][]string{{"a"}}, trimTrailingEmptyRows([][]string{{"a"}, {}, {"", ""}}))
}

package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/crudcheck/crud-contract-tests/framework"

	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet     = "Results"
	environmentSheet = "Environment"

	patternType  = "pattern"
	patternValue = 1

	failedBgColor  = "FF5900"
	erroredBgColor = "FFC7CE"
	skippedBgColor = "FFEB9C"
	headerBgColor  = "D9E1F2"

	defaultColumnWidth = 14
	wideColumnWidth    = 60
)

var resultHeaders = []string{
	"Test", "Step", "#", "Status", "Message", "Duration (ms)", "Timestamp", "Narration",
}

// WriteXLSX saves the report as a workbook with a results sheet, a summary block below the
// results, and a sheet of environment labels.
func WriteXLSX(path string, report framework.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(environmentSheet); err != nil {
		return err
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	for i := range resultHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(defaultColumnWidth)
		if resultHeaders[i] == "Message" || resultHeaders[i] == "Narration" || resultHeaders[i] == "Test" {
			width = wideColumnWidth
		}
		if err := f.SetColWidth(resultsSheet, col, col, width); err != nil {
			return err
		}
	}
	if err := writeRow(f, resultsSheet, 1, toCells(resultHeaders), styles.header); err != nil {
		return err
	}

	for i, o := range report.Outcomes {
		cells := []interface{}{
			o.TestName,
			o.StepName,
			o.StepIndex + 1,
			o.Status.String(),
			o.Message,
			float64(o.Duration.Microseconds()) / 1000,
			o.Timestamp.Format(time.RFC3339),
			strings.Join(o.Narration, "\n"),
		}
		if err := writeRow(f, resultsSheet, i+2, cells, styles.forStatus(o.Status)); err != nil {
			return err
		}
	}

	if err := writeSummary(f, len(report.Outcomes)+3, report); err != nil {
		return err
	}
	if err := writeEnvironment(f, report.Environment, styles.header); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save report %s: %w", path, err)
	}
	return nil
}

type reportStyles struct {
	header, failed, errored, skipped int
}

func (s reportStyles) forStatus(status framework.Status) int {
	switch status {
	case framework.Failed:
		return s.failed
	case framework.Errored:
		return s.errored
	case framework.Skipped:
		return s.skipped
	}
	return 0
}

func newStyles(f *excelize.File) (reportStyles, error) {
	fill := func(color string, bold bool) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: patternType, Pattern: patternValue, Color: []string{color}},
			Font:      &excelize.Font{Bold: bold},
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		})
	}
	var s reportStyles
	var err error
	if s.header, err = fill(headerBgColor, true); err != nil {
		return s, err
	}
	if s.failed, err = fill(failedBgColor, false); err != nil {
		return s, err
	}
	if s.errored, err = fill(erroredBgColor, false); err != nil {
		return s, err
	}
	if s.skipped, err = fill(skippedBgColor, false); err != nil {
		return s, err
	}
	return s, nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &cells); err != nil {
		return err
	}
	if style == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(cells), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func writeSummary(f *excelize.File, startRow int, report framework.Report) error {
	summary := framework.Summarize(report.Outcomes)
	lines := [][]interface{}{
		{"Summary"},
		{"Suite", report.Suite},
		{"Run ID", report.RunID},
		{"Started", report.StartTime.Format(time.RFC3339)},
		{"Finished", report.FinishTime.Format(time.RFC3339)},
		{"Duration (ms)", float64(report.FinishTime.Sub(report.StartTime).Microseconds()) / 1000},
		{"Total", summary.Total()},
		{"Passed", summary.Passed},
		{"Failed", summary.Failed},
		{"Errored", summary.Errored},
		{"Skipped", summary.Skipped},
	}
	for i, line := range lines {
		if err := writeRow(f, resultsSheet, startRow+i, line, 0); err != nil {
			return err
		}
	}
	return nil
}

func writeEnvironment(f *excelize.File, env map[string]string, headerStyle int) error {
	if err := f.SetColWidth(environmentSheet, "A", "B", wideColumnWidth/2); err != nil {
		return err
	}
	if err := writeRow(f, environmentSheet, 1, []interface{}{"Name", "Value"}, headerStyle); err != nil {
		return err
	}
	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)
	for i, name := range names {
		if err := writeRow(f, environmentSheet, i+2, []interface{}{name, env[name]}, 0); err != nil {
			return err
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	ret := make([]interface{}, len(values))
	for i, v := range values {
		ret[i] = v
	}
	return ret
}

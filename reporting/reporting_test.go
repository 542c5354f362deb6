package reporting

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/crudcheck/crud-contract-tests/framework"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	color.NoColor = true
}

var startTime = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func makeReport() framework.Report {
	return framework.Report{
		RunID:       "run-1",
		Suite:       "users",
		StartTime:   startTime,
		FinishTime:  startTime.Add(time.Second * 2),
		Environment: map[string]string{"Application": "ReqRes API", "Environment": "QA"},
		Outcomes: []framework.StepOutcome{
			{TestName: "Create user", StepName: "create", Status: framework.Passed, Timestamp: startTime,
				Duration: time.Millisecond * 120, Narration: []string{"Sending create request", "Received status 201"}},
			{TestName: "Get user", StepName: "read", Status: framework.Failed, Timestamp: startTime,
				Message: "statusCodeEquals(200): expected 200, actual 404\nfieldNotNull(id): expected non-null value, actual missing"},
			{TestName: "Update user", StepName: "update", StepIndex: 0, Status: framework.Skipped, Timestamp: startTime,
				Message: `fixture "userId" was never published`},
			{TestName: "List users", StepName: "list", Status: framework.Errored, Timestamp: startTime,
				Message: "list request failed: connection refused"},
		},
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "API-Test-Report-2026.03.04.05.06.07.000", BaseName(startTime))
	assert.NotEqual(t, BaseName(startTime), BaseName(startTime.Add(time.Millisecond)))
}

func TestWriteJSONAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := makeReport()
	require.NoError(t, WriteJSON(path, report))

	loaded, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, loaded.RunID)
	assert.True(t, report.StartTime.Equal(loaded.StartTime))
	require.Len(t, loaded.Outcomes, 4)
	assert.Equal(t, framework.Failed, loaded.Outcomes[1].Status)
	assert.Equal(t, report.Outcomes[0].Duration, loaded.Outcomes[0].Duration)
	assert.Equal(t, report.Outcomes[0].Narration, loaded.Outcomes[0].Narration)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(path, makeReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{resultsSheet, environmentSheet}, f.GetSheetList())

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	assert.Equal(t, resultHeaders, rows[0])
	assert.Equal(t, []string{"Create user", "create", "1", "passed"}, rows[1][:4])
	assert.Equal(t, "failed", rows[2][3])
	assert.Equal(t, "Sending create request\nReceived status 201", rows[1][7])

	summary := make(map[string]string)
	for _, r := range rows[6:] {
		if len(r) >= 2 {
			summary[r[0]] = r[1]
		}
	}
	assert.Equal(t, "4", summary["Total"])
	assert.Equal(t, "1", summary["Failed"])
	assert.Equal(t, "1", summary["Errored"])
	assert.Equal(t, "run-1", summary["Run ID"])

	env, err := f.GetRows(environmentSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Value"}, {"Application", "ReqRes API"}, {"Environment", "QA"}}, env)
}

func TestWriteAllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	paths, err := Write(dir, []string{"json", "xlsx"}, makeReport())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "API-Test-Report-2026.03.04.05.06.07.000.json"),
		filepath.Join(dir, "API-Test-Report-2026.03.04.05.06.07.000.xlsx"),
	}, paths)

	_, err = Write(dir, []string{"html"}, makeReport())
	assert.Error(t, err)
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	PrintResults(&buf, makeReport())
	out := buf.String()

	assert.Contains(t, out, `Suite "users" finished in 2.000s: 4 steps`)
	assert.Contains(t, out, "passed:  1")
	assert.Contains(t, out, "skipped: 1")
	assert.Contains(t, out, "FAILED STEPS:")
	assert.Contains(t, out, "[Get user/read] FAILED\n    statusCodeEquals(200): expected 200, actual 404\n    fieldNotNull(id)")
	assert.Contains(t, out, "[List users/list] ERRORED")
	assert.NotContains(t, out, "Update user/update")
}

func TestPrintResultsAllPassed(t *testing.T) {
	report := makeReport()
	report.Outcomes = report.Outcomes[:1]
	var buf bytes.Buffer
	PrintResults(&buf, report)
	assert.NotContains(t, buf.String(), "FAILED STEPS")
}

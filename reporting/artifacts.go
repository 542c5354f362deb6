// Package reporting turns a finished framework.Report into files and console output.
package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crudcheck/crud-contract-tests/framework"
)

// TimestampLayout is the timestamp format used in artifact file names.
const TimestampLayout = "2006.01.02.15.04.05.000"

const baseNamePrefix = "API-Test-Report-"

// BaseName is the file name, without extension, of the artifacts of a report started at t.
func BaseName(t time.Time) string {
	return baseNamePrefix + t.Format(TimestampLayout)
}

// Write saves the report in each of the given formats ("json", "xlsx") into dir, creating
// dir if needed, and returns the paths written.
func Write(dir string, formats []string, report framework.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create report directory: %w", err)
	}
	base := filepath.Join(dir, BaseName(report.StartTime))
	var paths []string
	for _, format := range formats {
		path := base + "." + format
		var err error
		switch format {
		case "json":
			err = WriteJSON(path, report)
		case "xlsx":
			err = WriteXLSX(path, report)
		default:
			err = fmt.Errorf("unknown report format %q", format)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type jsonReport struct {
	framework.Report
	Summary framework.Summary `json:"summary"`
}

// WriteJSON saves the report and its summary as indented JSON.
func WriteJSON(path string, report framework.Report) error {
	data, err := json.MarshalIndent(jsonReport{Report: report, Summary: framework.Summarize(report.Outcomes)}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (framework.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return framework.Report{}, err
	}
	var r jsonReport
	if err := json.Unmarshal(data, &r); err != nil {
		return framework.Report{}, fmt.Errorf("malformed report %s: %w", path, err)
	}
	return r.Report, nil
}

package framework

import (
	"errors"
	"fmt"
)

// ErrSealedReport is returned by ReportSink.Append once the report has been finalized.
var ErrSealedReport = errors.New("report has already been finalized")

// ErrAlreadyStarted is returned by SuiteDriver.Start when it is called more than once.
var ErrAlreadyStarted = errors.New("suite has already been started")

// DataAccessError means that a sheet, or a coordinate within it, does not exist.
type DataAccessError struct {
	Sheet string
	Row   int
	Col   int
	Err   error
}

func (e *DataAccessError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("data source: sheet %q: %s", e.Sheet, e.Err)
	}
	if e.Col < 0 {
		return fmt.Sprintf("data source: sheet %q row %d: %s", e.Sheet, e.Row, e.Err)
	}
	return fmt.Sprintf("data source: sheet %q row %d col %d: %s", e.Sheet, e.Row, e.Col, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// TransportError means that the HTTP call could not be completed at all: connection failure,
// timeout, or an unreadable response.
type TransportError struct {
	Operation Operation
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FixtureMissingError means that a Step referenced a fixture that no earlier Step published.
type FixtureMissingError struct {
	Key string
}

func (e *FixtureMissingError) Error() string {
	return fmt.Sprintf("fixture %q was never published", e.Key)
}

// DefinitionError reports a suite definition that can never run, such as a row-bound input
// pointing outside its sheet. It is detected before any Step executes.
type DefinitionError struct {
	Case   string
	Step   int
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("test case %q: %s", e.Case, e.Reason)
	}
	return fmt.Sprintf("test case %q step %d: %s", e.Case, e.Step, e.Reason)
}

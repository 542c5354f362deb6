package framework

import (
	"fmt"
	"strings"
	"time"
)

// Status is the result of a single Step.
type Status int

const (
	// Passed means the call completed and every assertion held.
	Passed Status = iota
	// Failed means the call completed but at least one assertion did not hold.
	Failed
	// Errored means the call could not be completed, so no assertions were evaluated.
	Errored
	// Skipped means the Step was not attempted, usually because a fixture it needs is missing.
	Skipped
)

var statusNames = []string{"passed", "failed", "errored", "skipped"}

func (s Status) String() string {
	if int(s) >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(data []byte) error {
	for i, name := range statusNames {
		if name == string(data) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(data))
}

// TestID identifies a case or a step within a case.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// StepOutcome is the immutable record of one Step.
type StepOutcome struct {
	TestName  string        `json:"testName"`
	StepIndex int           `json:"stepIndex"`
	StepName  string        `json:"stepName"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Narration []string      `json:"narration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"durationNs"`
}

func (o StepOutcome) ID() TestID {
	name := o.StepName
	if name == "" {
		name = fmt.Sprintf("step %d", o.StepIndex+1)
	}
	return TestID{Path: []string{o.TestName, name}}
}

// Summary counts outcomes by status.
type Summary struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Skipped int `json:"skipped"`
}

func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Errored + s.Skipped
}

// OK is true if nothing failed or errored. Skipped steps do not make a run unsuccessful.
func (s Summary) OK() bool {
	return s.Failed+s.Errored == 0
}

// Summarize counts the outcomes of a report.
func Summarize(outcomes []StepOutcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case Passed:
			s.Passed++
		case Failed:
			s.Failed++
		case Errored:
			s.Errored++
		case Skipped:
			s.Skipped++
		}
	}
	return s
}

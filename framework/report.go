package framework

import (
	"maps"
	"sync"
	"time"
)

// Report is the ordered list of outcomes of one suite run plus its metadata.
type Report struct {
	RunID       string            `json:"runId"`
	Suite       string            `json:"suite"`
	StartTime   time.Time         `json:"startTime"`
	FinishTime  time.Time         `json:"finishTime"`
	Environment map[string]string `json:"environment,omitempty"`
	Outcomes    []StepOutcome     `json:"outcomes"`
}

// ReportSink accumulates outcomes in the order they are appended. It is safe for concurrent use.
type ReportSink struct {
	report Report
	sealed bool
	now    func() time.Time
	lock   sync.Mutex
}

// NewReportSink starts a report with the given metadata. The start time is taken now.
func NewReportSink(runID, suite string, environment map[string]string) *ReportSink {
	s := &ReportSink{now: time.Now}
	env := make(map[string]string, len(environment))
	for k, v := range environment {
		env[k] = v
	}
	s.report = Report{
		RunID:       runID,
		Suite:       suite,
		StartTime:   s.now(),
		Environment: env,
	}
	return s
}

// Append adds outcomes to the end of the report. A batch is appended atomically, so concurrent
// callers never interleave within one call. It returns ErrSealedReport after Finalize.
func (s *ReportSink) Append(outcomes ...StepOutcome) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.sealed {
		return ErrSealedReport
	}
	for _, o := range outcomes {
		s.report.Outcomes = append(s.report.Outcomes, o.clone())
	}
	return nil
}

// Finalize seals the report and returns a copy of it. Calling it again returns an equal copy;
// changing a returned report does not affect the sink.
func (s *ReportSink) Finalize() Report {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.sealed {
		s.sealed = true
		s.report.FinishTime = s.now()
	}
	return s.report.clone()
}

// Sealed reports whether Finalize has been called.
func (s *ReportSink) Sealed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.sealed
}

// Summary counts the outcomes appended so far.
func (s *ReportSink) Summary() Summary {
	s.lock.Lock()
	defer s.lock.Unlock()
	return Summarize(s.report.Outcomes)
}

func (r Report) clone() Report {
	ret := r
	ret.Environment = maps.Clone(r.Environment)
	if r.Outcomes != nil {
		ret.Outcomes = make([]StepOutcome, len(r.Outcomes))
		for i, o := range r.Outcomes {
			ret.Outcomes[i] = o.clone()
		}
	}
	return ret
}

func (o StepOutcome) clone() StepOutcome {
	if o.Narration != nil {
		o.Narration = append([]string(nil), o.Narration...)
	}
	return o
}

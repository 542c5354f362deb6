package framework

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"
)

// DefaultStepTimeout bounds how long the CaseRunner waits for a single EndpointClient call.
const DefaultStepTimeout = time.Second * 30

// CaseRunner executes the Steps of one TestCase and produces exactly one StepOutcome per Step.
type CaseRunner struct {
	client      EndpointClient
	data        DataSource
	stepTimeout time.Duration
	debugLogger Logger
	testLogger  TestLogger
	now         func() time.Time
}

// NewCaseRunner creates a CaseRunner. data may be nil if no Step is row-bound. A zero
// stepTimeout means DefaultStepTimeout.
func NewCaseRunner(
	client EndpointClient,
	data DataSource,
	stepTimeout time.Duration,
	debugLogger Logger,
	testLogger TestLogger,
) *CaseRunner {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	return &CaseRunner{
		client:      client,
		data:        data,
		stepTimeout: stepTimeout,
		debugLogger: debugLogger,
		testLogger:  testLogger,
		now:         time.Now,
	}
}

// Run executes every Step of tc in order. Failures of individual Steps never stop the case:
// a Step that needs an unavailable fixture is Skipped, and so is every later Step that needs
// the same fixture, while Steps that do not need it still run.
func (r *CaseRunner) Run(tc TestCase, fixtures *Fixtures) []StepOutcome {
	outcomes := make([]StepOutcome, 0, len(tc.Steps))
	unavailable := make(map[string]string) // fixture name -> reason

	var blocked []string
	for _, key := range tc.Requires {
		if _, ok := fixtures.Get(key); !ok {
			blocked = append(blocked, key)
		}
	}

	for i, step := range tc.Steps {
		id := TestID{Path: []string{tc.Name, stepName(step, i)}}
		r.testLogger.TestStarted(id)

		if len(blocked) > 0 {
			reason := fmt.Sprintf("test case requires fixture %q, which is not available", blocked[0])
			outcomes = append(outcomes, r.skip(tc.Name, i, step, reason))
			r.testLogger.TestSkipped(id, reason)
			continue
		}
		if reason := dependencyReason(step, unavailable); reason != "" {
			outcomes = append(outcomes, r.skip(tc.Name, i, step, reason))
			r.testLogger.TestSkipped(id, reason)
			r.markUnpublished(step, i, unavailable)
			continue
		}

		run := r.runStep(tc.Name, i, step, fixtures)
		outcome, output := run.outcome, run.output
		if run.missingKey != "" {
			unavailable[run.missingKey] = fmt.Sprintf("fixture %q was never published", run.missingKey)
		}
		for _, c := range step.Publish {
			if !run.published[c.Name] {
				unavailable[c.Name] = fmt.Sprintf("fixture %q was not published by step %d", c.Name, i+1)
			} else {
				delete(unavailable, c.Name)
			}
		}
		outcomes = append(outcomes, outcome)

		switch outcome.Status {
		case Skipped:
			r.testLogger.TestSkipped(id, outcome.Message)
		case Errored:
			r.testLogger.TestError(id, errors.New(outcome.Message))
			r.testLogger.TestFinished(id, outcome, output)
		case Failed:
			for _, line := range strings.Split(outcome.Message, "\n") {
				r.testLogger.TestError(id, errors.New(line))
			}
			r.testLogger.TestFinished(id, outcome, output)
		default:
			r.testLogger.TestFinished(id, outcome, output)
		}
	}
	return outcomes
}

// SkipAll produces a Skipped outcome for every Step of tc without running anything.
func (r *CaseRunner) SkipAll(tc TestCase, reason string) []StepOutcome {
	outcomes := make([]StepOutcome, 0, len(tc.Steps))
	for i, step := range tc.Steps {
		id := TestID{Path: []string{tc.Name, stepName(step, i)}}
		r.testLogger.TestStarted(id)
		outcomes = append(outcomes, r.skip(tc.Name, i, step, reason))
		r.testLogger.TestSkipped(id, reason)
	}
	return outcomes
}

func (r *CaseRunner) skip(testName string, index int, step Step, reason string) StepOutcome {
	return StepOutcome{
		TestName:  testName,
		StepIndex: index,
		StepName:  stepName(step, index),
		Status:    Skipped,
		Message:   reason,
		Timestamp: r.now(),
	}
}

// markUnpublished records that the fixtures a Step would have published are not available, so
// that a stale value from an earlier case is not used by this case's later Steps.
func (r *CaseRunner) markUnpublished(step Step, index int, unavailable map[string]string) {
	for _, c := range step.Publish {
		unavailable[c.Name] = fmt.Sprintf("fixture %q was not published by step %d", c.Name, index+1)
	}
}

func dependencyReason(step Step, unavailable map[string]string) string {
	for _, key := range step.fixturesUsed() {
		if reason, ok := unavailable[key]; ok {
			return reason
		}
	}
	return ""
}

type stepRun struct {
	outcome    StepOutcome
	output     CapturedOutput
	missingKey string
	published  map[string]bool
}

func (r *CaseRunner) runStep(testName string, index int, step Step, fixtures *Fixtures) (run stepRun) {
	var capture CapturingLogger
	logger := teeLogger{loggers: []Logger{&capture, r.debugLogger}}
	start := r.now()
	run.published = make(map[string]bool)
	outcome := &run.outcome
	*outcome = StepOutcome{
		TestName:  testName,
		StepIndex: index,
		StepName:  stepName(step, index),
		Timestamp: start,
	}

	defer func() {
		if p := recover(); p != nil {
			outcome.Status = Errored
			outcome.Message = fmt.Sprintf("unexpected panic in step: %+v\n%s", p, string(debug.Stack()))
		}
		outcome.Duration = r.now().Sub(start)
		run.output = capture.Output()
	}()

	req, err := r.resolveRequest(step, fixtures)
	if err != nil {
		var fm *FixtureMissingError
		if errors.As(err, &fm) {
			outcome.Status = Skipped
			outcome.Message = err.Error()
			run.missingKey = fm.Key
			return run
		}
		outcome.Status = Errored
		outcome.Message = fmt.Sprintf("could not resolve step input: %s", err)
		return run
	}

	outcome.Narration = append(outcome.Narration, describeRequest(step.Operation, req))
	logger.Printf("[%s] %s", outcome.ID(), outcome.Narration[0])

	result, err := r.execute(step.Operation, req, logger)
	if err != nil {
		outcome.Status = Errored
		outcome.Message = err.Error()
		return run
	}
	outcome.Narration = append(outcome.Narration, fmt.Sprintf("Received status %d", result.StatusCode))

	var failures []string
	for _, a := range step.Assertions {
		res := a.evaluate(result)
		if res.passed {
			outcome.Narration = append(outcome.Narration, fmt.Sprintf("PASS %s", a.Describe()))
			continue
		}
		line := fmt.Sprintf("%s: expected %s, actual %s", a.Describe(), res.expected, res.actual)
		outcome.Narration = append(outcome.Narration, "FAIL "+line)
		failures = append(failures, line)
	}

	for _, c := range step.Publish {
		v, found, err := Lookup(result.Body, c.Path)
		switch {
		case err != nil:
			failures = append(failures, fmt.Sprintf("publish %s: %s", c.Name, err))
		case !found || v.IsNull():
			failures = append(failures, fmt.Sprintf("publish %s: no value at %q in response", c.Name, c.Path))
		default:
			fixtures.Set(c.Name, v)
			run.published[c.Name] = true
			outcome.Narration = append(outcome.Narration, fmt.Sprintf("Published fixture %s=%s", c.Name, v.JSONString()))
		}
	}

	if len(failures) == 0 {
		outcome.Status = Passed
	} else {
		outcome.Status = Failed
		outcome.Message = strings.Join(failures, "\n")
	}
	return run
}

func (r *CaseRunner) resolveRequest(step Step, fixtures *Fixtures) (Request, error) {
	req := Request{
		PathParams:  make(map[string]string, len(step.PathParams)),
		QueryParams: make(map[string]string, len(step.QueryParams)),
	}
	for _, name := range sortedKeys(step.PathParams) {
		v, err := step.PathParams[name].resolve(r.data, fixtures)
		if err != nil {
			return Request{}, err
		}
		req.PathParams[name] = paramString(v)
	}
	for _, name := range sortedKeys(step.QueryParams) {
		v, err := step.QueryParams[name].resolve(r.data, fixtures)
		if err != nil {
			return Request{}, err
		}
		if !v.IsNull() {
			req.QueryParams[name] = paramString(v)
		}
	}
	if step.Body != nil {
		v, err := step.Body.resolve(r.data, fixtures)
		if err != nil {
			return Request{}, err
		}
		req.Body = v
	}
	return req, nil
}

// execute calls the client but never waits longer than the step timeout. The call gets its own
// context, so cancelling the suite does not interrupt it.
func (r *CaseRunner) execute(op Operation, req Request, logger Logger) (Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.stepTimeout)
	defer cancel()

	type response struct {
		result Result
		err    error
	}
	ch := make(chan response, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- response{err: fmt.Errorf("unexpected panic in endpoint client: %+v", p)}
			}
		}()
		result, err := r.client.Execute(ctx, op, req, logger)
		ch <- response{result: result, err: err}
	}()

	select {
	case resp := <-ch:
		if resp.err != nil {
			var te *TransportError
			if !errors.As(resp.err, &te) {
				return Result{}, &TransportError{Operation: op, Err: resp.err}
			}
			return Result{}, resp.err
		}
		return resp.result, nil
	case <-ctx.Done():
		return Result{}, &TransportError{Operation: op, Err: fmt.Errorf("no response within %s", r.stepTimeout)}
	}
}

func describeRequest(op Operation, req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sending %s request", op)
	var parts []string
	for _, k := range sortedStringKeys(req.PathParams) {
		parts = append(parts, fmt.Sprintf("%s=%s", k, req.PathParams[k]))
	}
	for _, k := range sortedStringKeys(req.QueryParams) {
		parts = append(parts, fmt.Sprintf("?%s=%s", k, req.QueryParams[k]))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	if !req.Body.IsNull() {
		fmt.Fprintf(&b, " with body %s", req.Body.JSONString())
	}
	return b.String()
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stepName(step Step, index int) string {
	if step.Name != "" {
		return step.Name
	}
	return fmt.Sprintf("step %d", index+1)
}

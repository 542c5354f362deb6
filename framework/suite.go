package framework

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SuiteState is the lifecycle state of a SuiteDriver.
type SuiteState int

const (
	Idle SuiteState = iota
	Running
	Completed
)

func (s SuiteState) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// SuiteConfig describes one suite run.
type SuiteConfig struct {
	Name        string
	Cases       []TestCase
	Client      EndpointClient
	Data        DataSource
	Environment map[string]string

	// Setup seeds shared fixtures, such as a generated payload, before any case runs.
	Setup func(*Fixtures) error

	// Filter excludes cases by name; excluded cases are reported as Skipped.
	Filter Filter

	// Concurrency greater than 1 runs cases that share no fixtures on separate goroutines.
	Concurrency int

	StepTimeout time.Duration
	RunID       string
	DebugLogger Logger
	TestLogger  TestLogger
}

// SuiteDriver runs the declared TestCases in order and collects their outcomes into a Report.
// A SuiteDriver can be started only once.
type SuiteDriver struct {
	config   SuiteConfig
	runner   *CaseRunner
	sink     *ReportSink
	fixtures *Fixtures
	state    SuiteState
	lock     sync.Mutex
}

// NewSuiteDriver creates a SuiteDriver. A missing RunID is generated.
func NewSuiteDriver(config SuiteConfig) *SuiteDriver {
	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.DebugLogger == nil {
		config.DebugLogger = NullLogger()
	}
	return &SuiteDriver{
		config:   config,
		runner:   NewCaseRunner(config.Client, config.Data, config.StepTimeout, config.DebugLogger, config.TestLogger),
		sink:     NewReportSink(config.RunID, config.Name, config.Environment),
		fixtures: NewFixtures(),
	}
}

// State returns the driver's current lifecycle state.
func (d *SuiteDriver) State() SuiteState {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.state
}

// Sink returns the driver's report sink, e.g. to read a summary.
func (d *SuiteDriver) Sink() *ReportSink {
	return d.sink
}

// Fixtures returns the fixtures shared by all cases of this suite.
func (d *SuiteDriver) Fixtures() *Fixtures {
	return d.fixtures
}

// Start runs the whole suite and returns the sealed Report.
//
// Errors are returned only for problems that make the run impossible: the suite was already
// started (ErrAlreadyStarted), the data source does not match the suite definition
// (*DataAccessError or *DefinitionError), or Setup failed. Failures of individual Steps are
// always reported as outcomes instead.
//
// If ctx is cancelled, cases that have not started yet are reported as Skipped; a Step that
// is already in flight is allowed to finish.
func (d *SuiteDriver) Start(ctx context.Context) (Report, error) {
	d.lock.Lock()
	if d.state != Idle {
		d.lock.Unlock()
		return Report{}, ErrAlreadyStarted
	}
	d.state = Running
	d.lock.Unlock()

	defer func() {
		d.lock.Lock()
		d.state = Completed
		d.lock.Unlock()
	}()

	cases, err := d.prepare()
	if err != nil {
		return Report{}, err
	}
	if d.config.Setup != nil {
		if err := d.config.Setup(d.fixtures); err != nil {
			return Report{}, fmt.Errorf("suite setup failed: %w", err)
		}
	}

	d.config.DebugLogger.Printf("Running suite %q (%d cases, %d steps)", d.config.Name, len(cases), StepCount(cases))
	if d.config.Concurrency > 1 {
		err = d.runConcurrently(ctx, cases)
	} else {
		err = d.runSequentially(ctx, cases)
	}
	if err != nil {
		return Report{}, err
	}
	return d.sink.Finalize(), nil
}

func (d *SuiteDriver) runSequentially(ctx context.Context, cases []TestCase) error {
	for _, tc := range cases {
		if err := d.sink.Append(d.runCase(ctx, tc)...); err != nil {
			return err
		}
	}
	return nil
}

func (d *SuiteDriver) runConcurrently(ctx context.Context, cases []TestCase) error {
	groups := independentGroups(cases, d.fixtures.Keys())
	jobs := make(chan []TestCase, len(groups))
	for _, g := range groups {
		jobs <- g
	}
	close(jobs)

	workers := d.config.Concurrency
	if workers > len(groups) {
		workers = len(groups)
	}

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				for _, tc := range group {
					if err := d.sink.Append(d.runCase(ctx, tc)...); err != nil {
						errOnce.Do(func() { firstErr = err })
					}
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

func (d *SuiteDriver) runCase(ctx context.Context, tc TestCase) []StepOutcome {
	if ctx.Err() != nil {
		return d.runner.SkipAll(tc, "suite was cancelled before this test case started")
	}
	if d.config.Filter != nil && !d.config.Filter(TestID{Path: []string{tc.Name}}) {
		return d.runner.SkipAll(tc, "excluded by filter parameters")
	}
	return d.runner.Run(tc, d.fixtures)
}

// prepare expands data-driven cases and checks every row-bound input against the data source,
// so that a bad suite definition fails before any Step executes.
func (d *SuiteDriver) prepare() ([]TestCase, error) {
	data := d.config.Data
	cases, err := ExpandCases(d.config.Cases, data)
	if err != nil {
		return nil, err
	}
	for _, tc := range cases {
		for i, step := range tc.Steps {
			for _, in := range step.inputs() {
				if err := checkInput(data, tc.Name, i, in); err != nil {
					return nil, err
				}
			}
		}
	}
	return cases, nil
}

// ExpandCases replaces each data-driven case with one case per data row of its sheet. A sheet
// with a header and no data rows expands to nothing.
func ExpandCases(cases []TestCase, data DataSource) ([]TestCase, error) {
	var ret []TestCase
	for _, tc := range cases {
		if tc.DataRows == nil {
			ret = append(ret, tc)
			continue
		}
		if data == nil {
			return nil, &DataAccessError{Sheet: tc.DataRows.Sheet, Row: -1, Col: -1, Err: errNoDataSource}
		}
		rows, err := data.RowCount(tc.DataRows.Sheet)
		if err != nil {
			return nil, err
		}
		for row := HeaderRow + 1; row < rows; row++ {
			ret = append(ret, tc.expandForRow(row))
		}
	}
	return ret, nil
}

func checkInput(data DataSource, caseName string, stepIndex int, in Input) error {
	if !in.isRowBound() {
		return nil
	}
	if in.row == CurrentRow {
		return &DefinitionError{Case: caseName, Step: stepIndex,
			Reason: fmt.Sprintf("input %s refers to the current row, but the test case is not data-driven", in)}
	}
	if data == nil {
		return &DataAccessError{Sheet: in.sheet, Row: in.row, Col: -1, Err: errNoDataSource}
	}
	rows, err := data.RowCount(in.sheet)
	if err != nil {
		return err
	}
	if in.row <= HeaderRow || in.row >= rows {
		return &DataAccessError{Sheet: in.sheet, Row: in.row, Col: -1,
			Err: fmt.Errorf("row is outside the data rows 1..%d", rows-1)}
	}
	cols, err := data.ColCount(in.sheet, HeaderRow)
	if err != nil {
		return err
	}
	for _, f := range in.fields {
		if f.Col < 0 || f.Col >= cols {
			return &DataAccessError{Sheet: in.sheet, Row: in.row, Col: f.Col,
				Err: fmt.Errorf("column is outside the header's %d columns", cols)}
		}
	}
	return nil
}

// independentGroups partitions cases so that any two cases connected through a fixture (one
// publishes what the other consumes, or both publish it) are in the same group. Groups and the
// cases within them keep declaration order. Fixtures seeded by Setup connect nothing.
func independentGroups(cases []TestCase, seeded []string) [][]TestCase {
	parent := make([]int, len(cases))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	producers := make(map[string][]int)
	consumers := make(map[string][]int)
	for i, tc := range cases {
		for _, key := range tc.Requires {
			consumers[key] = append(consumers[key], i)
		}
		for _, step := range tc.Steps {
			for _, key := range step.fixturesUsed() {
				consumers[key] = append(consumers[key], i)
			}
			for _, c := range step.Publish {
				producers[c.Name] = append(producers[c.Name], i)
			}
		}
	}
	isSeeded := make(map[string]bool, len(seeded))
	for _, k := range seeded {
		isSeeded[k] = true
	}
	for key, ps := range producers {
		for _, p := range ps[1:] {
			union(ps[0], p)
		}
		for _, c := range consumers[key] {
			union(ps[0], c)
		}
	}
	for key, cs := range consumers {
		if _, produced := producers[key]; produced || isSeeded[key] {
			continue
		}
		// nobody publishes this fixture; keep its consumers together so they skip in order
		for _, c := range cs[1:] {
			union(cs[0], c)
		}
	}

	var groups [][]TestCase
	index := make(map[int]int)
	for i, tc := range cases {
		root := find(i)
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], tc)
	}
	return groups
}

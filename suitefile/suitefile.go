// Package suitefile loads test suites from YAML definitions.
//
// A suite file names its cases and steps, the operation each step performs, where each request
// value comes from (a literal, a fixture, or a data sheet) and what to check in the response.
// See suites/users.yaml for an example.
package suitefile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/crudcheck/crud-contract-tests/framework"
	"github.com/crudcheck/crud-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

//go:embed suites/users.yaml
var exampleSuite []byte

// Suite is a parsed suite file.
type Suite struct {
	Name        string
	Sheet       string
	Environment map[string]string
	Routes      servicedef.Routes
	Cases       []framework.TestCase

	// Fixtures are seeded with these values before any case runs.
	Fixtures map[string]ldvalue.Value

	// FakeUsers lists fixtures that are seeded with a generated user payload.
	FakeUsers []string

	StepTimeoutMS ldvalue.OptionalInt
	Concurrency   ldvalue.OptionalInt
}

// Example returns the definition of the bundled example suite.
func Example() []byte {
	return exampleSuite
}

// Load reads and parses a suite file. Row-bound inputs that do not name a sheet use the
// suite's "sheet" setting, or defaultSheet if the file has none.
func Load(path, defaultSheet string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}
	s, err := Parse(data, defaultSheet)
	if err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}
	return s, nil
}

// Parse parses a suite definition.
func Parse(data []byte, defaultSheet string) (*Suite, error) {
	var doc suiteDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("suite definition is empty")
		}
		return nil, err
	}
	return doc.toSuite(defaultSheet)
}

// Setup returns a suite setup function that seeds the suite's fixtures. Generated users use
// the given seed; 0 is random.
func (s *Suite) Setup(seed int64) func(*framework.Fixtures) error {
	return func(f *framework.Fixtures) error {
		for key, value := range s.Fixtures {
			f.Set(key, value)
		}
		users := servicedef.FakeUsers(len(s.FakeUsers), seed)
		for i, key := range s.FakeUsers {
			f.Set(key, users[i].AsValue())
		}
		return nil
	}
}

type suiteDoc struct {
	Name          string                      `yaml:"name"`
	Sheet         string                      `yaml:"sheet"`
	Environment   map[string]string           `yaml:"environment"`
	Routes        map[string]servicedef.Route `yaml:"routes"`
	Fixtures      map[string]valueDoc         `yaml:"fixtures"`
	FakeUsers     []string                    `yaml:"fakeUsers"`
	StepTimeoutMS *int                        `yaml:"stepTimeoutMs"`
	Concurrency   *int                        `yaml:"concurrency"`
	Cases         []caseDoc                   `yaml:"cases"`
}

type caseDoc struct {
	Name     string    `yaml:"name"`
	Requires []string  `yaml:"requires"`
	Rows     string    `yaml:"rows"`
	Steps    []stepDoc `yaml:"steps"`
}

type stepDoc struct {
	Name    string              `yaml:"name"`
	Op      framework.Operation `yaml:"op"`
	Path    map[string]inputDoc `yaml:"path"`
	Query   map[string]inputDoc `yaml:"query"`
	Body    *inputDoc           `yaml:"body"`
	Expect  []assertionDoc      `yaml:"expect"`
	Publish map[string]string   `yaml:"publish"`

	line int
}

func (s *stepDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain stepDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = stepDoc(p)
	s.line = node.Line
	if !hasKey(node, "op") {
		return fmt.Errorf("line %d: step has no op", node.Line)
	}
	return checkKeys(node, "name", "op", "path", "query", "body", "expect", "publish")
}

func (d suiteDoc) toSuite(defaultSheet string) (*Suite, error) {
	s := &Suite{
		Name:        d.Name,
		Sheet:       d.Sheet,
		Environment: d.Environment,
		Routes:      servicedef.UserRoutes(),
		Fixtures:    make(map[string]ldvalue.Value),
		FakeUsers:   d.FakeUsers,
	}
	if s.Name == "" {
		return nil, errors.New("suite has no name")
	}
	if s.Sheet == "" {
		s.Sheet = defaultSheet
	}
	s.StepTimeoutMS = ldvalue.NewOptionalIntFromPointer(d.StepTimeoutMS)
	s.Concurrency = ldvalue.NewOptionalIntFromPointer(d.Concurrency)

	for name, route := range d.Routes {
		op, err := framework.ParseOperation(name)
		if err != nil {
			return nil, fmt.Errorf("routes: %w", err)
		}
		if err := route.Validate(); err != nil {
			return nil, fmt.Errorf("routes: %w", err)
		}
		s.Routes[op] = route
	}
	for key, v := range d.Fixtures {
		s.Fixtures[key] = v.value
	}

	if len(d.Cases) == 0 {
		return nil, errors.New("suite has no cases")
	}
	names := make(map[string]bool)
	for i, c := range d.Cases {
		if c.Name == "" {
			return nil, fmt.Errorf("case %d has no name", i+1)
		}
		if names[c.Name] {
			return nil, fmt.Errorf("duplicate case name %q", c.Name)
		}
		names[c.Name] = true
		tc, err := c.toTestCase(s.Sheet)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", c.Name, err)
		}
		s.Cases = append(s.Cases, tc)
	}
	return s, nil
}

func (c caseDoc) toTestCase(sheet string) (framework.TestCase, error) {
	tc := framework.TestCase{Name: c.Name, Requires: c.Requires}
	if c.Rows != "" {
		tc.DataRows = &framework.RowSource{Sheet: c.Rows}
	}
	if len(c.Steps) == 0 {
		return tc, errors.New("case has no steps")
	}
	for i, sd := range c.Steps {
		step, err := sd.toStep(sheet)
		if err != nil {
			return tc, fmt.Errorf("step %d (line %d): %w", i+1, sd.line, err)
		}
		tc.Steps = append(tc.Steps, step)
	}
	return tc, nil
}

func (sd stepDoc) toStep(sheet string) (framework.Step, error) {
	step := framework.Step{Name: sd.Name, Operation: sd.Op}
	var err error
	if step.PathParams, err = toInputs(sd.Path, sheet); err != nil {
		return step, fmt.Errorf("path: %w", err)
	}
	if step.QueryParams, err = toInputs(sd.Query, sheet); err != nil {
		return step, fmt.Errorf("query: %w", err)
	}
	if sd.Body != nil {
		body, err := sd.Body.toInput(sheet)
		if err != nil {
			return step, fmt.Errorf("body: %w", err)
		}
		step.Body = &body
	}
	if len(sd.Expect) == 0 {
		return step, errors.New("step has no expectations")
	}
	for _, a := range sd.Expect {
		step.Assertions = append(step.Assertions, a.assertion)
	}
	names := make([]string, 0, len(sd.Publish))
	for name := range sd.Publish {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		step.Publish = append(step.Publish, framework.Capture{Name: name, Path: sd.Publish[name]})
	}
	return step, nil
}

func toInputs(docs map[string]inputDoc, sheet string) (map[string]framework.Input, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	ret := make(map[string]framework.Input, len(docs))
	for name, d := range docs {
		in, err := d.toInput(sheet)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		ret[name] = in
	}
	return ret, nil
}

// checkKeys rejects mapping keys that are not in allowed. Decoders used by custom
// unmarshalers do not inherit KnownFields.
func checkKeys(node *yaml.Node, allowed ...string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		found := false
		for _, a := range allowed {
			if key.Value == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}
	}
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

package framework

import (
	"fmt"
	"net/mail"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// CurrentRow is a row index placeholder meaning "the data row this case was expanded for".
// It is only valid inside a TestCase that has DataRows.
const CurrentRow = -1

// TestCase is a named, ordered list of Steps. It must not be modified once the suite starts.
type TestCase struct {
	Name  string
	Steps []Step

	// Requires lists fixtures that must exist before the case starts. If any is missing,
	// every Step of the case is skipped.
	Requires []string

	// DataRows makes this a data-driven case: it is expanded into one case per data row of
	// the sheet, and row-bound inputs using CurrentRow refer to that row.
	DataRows *RowSource
}

// RowSource names the sheet that drives a data-driven TestCase.
type RowSource struct {
	Sheet string
}

// Step is one HTTP interaction and the assertions run against its result.
type Step struct {
	Name        string
	Operation   Operation
	PathParams  map[string]Input
	QueryParams map[string]Input
	Body        *Input
	Assertions  []Assertion
	Publish     []Capture
}

// Capture publishes the value at Path in the response body as the fixture Name.
type Capture struct {
	Name string
	Path string
}

// FieldType controls how a cell's text is converted into a request value.
type FieldType int

const (
	StringField FieldType = iota
	IntField
	EmailField
)

func (t FieldType) String() string {
	switch t {
	case IntField:
		return "int"
	case EmailField:
		return "email"
	default:
		return "string"
	}
}

// ParseFieldType accepts "string", "int" or "email"; an empty string means "string".
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return StringField, nil
	case "int", "integer":
		return IntField, nil
	case "email":
		return EmailField, nil
	}
	return 0, fmt.Errorf("unknown field type %q", s)
}

// Field binds one column of a data row to a named request field.
type Field struct {
	Name string
	Col  int
	Type FieldType
}

type inputKind int

const (
	literalInput inputKind = iota
	rowInput
	cellInput
	fixtureInput
)

// Input describes where a request value comes from. Construct it with Literal, FromRow,
// FromCell or FromFixture.
type Input struct {
	kind    inputKind
	literal ldvalue.Value
	sheet   string
	row     int
	fields  []Field
	fixture string
}

// Literal is a value used as-is.
func Literal(v ldvalue.Value) Input {
	return Input{kind: literalInput, literal: v}
}

// FromRow builds a JSON object out of the given columns of one data row.
func FromRow(sheet string, row int, fields ...Field) Input {
	return Input{kind: rowInput, sheet: sheet, row: row, fields: fields}
}

// FromCell reads a single scalar value from the data source.
func FromCell(sheet string, row, col int, fieldType FieldType) Input {
	return Input{kind: cellInput, sheet: sheet, row: row, fields: []Field{{Col: col, Type: fieldType}}}
}

// FromFixture reads a value published by an earlier Step, or seeded by the suite setup.
func FromFixture(key string) Input {
	return Input{kind: fixtureInput, fixture: key}
}

// FixtureKey returns the referenced fixture name, or "" if the input is not fixture-bound.
func (in Input) FixtureKey() string {
	if in.kind == fixtureInput {
		return in.fixture
	}
	return ""
}

func (in Input) String() string {
	switch in.kind {
	case rowInput:
		return fmt.Sprintf("row(%s!%s)", in.sheet, rowLabel(in.row))
	case cellInput:
		return fmt.Sprintf("cell(%s!%s:%d)", in.sheet, rowLabel(in.row), in.fields[0].Col)
	case fixtureInput:
		return fmt.Sprintf("fixture(%s)", in.fixture)
	default:
		return in.literal.JSONString()
	}
}

func rowLabel(row int) string {
	if row == CurrentRow {
		return "current"
	}
	return strconv.Itoa(row)
}

func (in Input) isRowBound() bool {
	return in.kind == rowInput || in.kind == cellInput
}

func (in Input) withRow(row int) Input {
	if in.isRowBound() && in.row == CurrentRow {
		in.row = row
	}
	return in
}

func (in Input) resolve(ds DataSource, fixtures *Fixtures) (ldvalue.Value, error) {
	switch in.kind {
	case literalInput:
		return in.literal, nil
	case fixtureInput:
		v, ok := fixtures.Get(in.fixture)
		if !ok {
			return ldvalue.Null(), &FixtureMissingError{Key: in.fixture}
		}
		return v, nil
	case cellInput:
		return readField(ds, in.sheet, in.row, in.fields[0])
	case rowInput:
		obj := ldvalue.ObjectBuild()
		for _, f := range in.fields {
			v, err := readField(ds, in.sheet, in.row, f)
			if err != nil {
				return ldvalue.Null(), err
			}
			obj.Set(f.Name, v)
		}
		return obj.Build(), nil
	}
	return ldvalue.Null(), fmt.Errorf("unknown input kind %d", in.kind)
}

func readField(ds DataSource, sheet string, row int, f Field) (ldvalue.Value, error) {
	if ds == nil {
		return ldvalue.Null(), &DataAccessError{Sheet: sheet, Row: row, Col: f.Col, Err: errNoDataSource}
	}
	text, err := ds.CellAt(sheet, row, f.Col)
	if err != nil {
		return ldvalue.Null(), err
	}
	return coerce(text, f.Type)
}

// coerce converts cell text. An empty cell is an empty string for string and email fields, and
// null for int fields.
func coerce(text string, t FieldType) (ldvalue.Value, error) {
	switch t {
	case IntField:
		s := strings.TrimSpace(text)
		if s == "" {
			return ldvalue.Null(), nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			// spreadsheets often store whole numbers as "7.0"
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || f != float64(int(f)) {
				return ldvalue.Null(), fmt.Errorf("%q is not an integer", text)
			}
			n = int(f)
		}
		return ldvalue.Int(n), nil
	case EmailField:
		s := strings.TrimSpace(text)
		if s == "" {
			return ldvalue.String(""), nil
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return ldvalue.Null(), fmt.Errorf("%q is not an email address", text)
		}
		return ldvalue.String(s), nil
	default:
		return ldvalue.String(text), nil
	}
}

// inputs returns every input of the step in a stable order.
func (s Step) inputs() []Input {
	var ret []Input
	for _, k := range sortedKeys(s.PathParams) {
		ret = append(ret, s.PathParams[k])
	}
	for _, k := range sortedKeys(s.QueryParams) {
		ret = append(ret, s.QueryParams[k])
	}
	if s.Body != nil {
		ret = append(ret, *s.Body)
	}
	return ret
}

// fixturesUsed returns the fixture keys the step consumes.
func (s Step) fixturesUsed() []string {
	var keys []string
	for _, in := range s.inputs() {
		if k := in.FixtureKey(); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func sortedKeys(m map[string]Input) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// expandForRow returns a copy of the case bound to a single data row.
func (tc TestCase) expandForRow(row int) TestCase {
	ret := TestCase{
		Name:     fmt.Sprintf("%s [row %d]", tc.Name, row),
		Requires: tc.Requires,
	}
	for _, s := range tc.Steps {
		s2 := s
		s2.PathParams = rebindRow(s.PathParams, row)
		s2.QueryParams = rebindRow(s.QueryParams, row)
		if s.Body != nil {
			b := s.Body.withRow(row)
			s2.Body = &b
		}
		ret.Steps = append(ret.Steps, s2)
	}
	return ret
}

func rebindRow(m map[string]Input, row int) map[string]Input {
	if m == nil {
		return nil
	}
	ret := make(map[string]Input, len(m))
	for k, in := range m {
		ret[k] = in.withRow(row)
	}
	return ret
}

// StepCount returns the number of outcomes a list of already expanded cases will produce.
func StepCount(cases []TestCase) int {
	n := 0
	for _, tc := range cases {
		n += len(tc.Steps)
	}
	return n
}

package suitefile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crudcheck/crud-contract-tests/framework"
	"github.com/crudcheck/crud-contract-tests/mockapi"
	"github.com/crudcheck/crud-contract-tests/restclient"
	"github.com/crudcheck/crud-contract-tests/servicedef"
	"github.com/crudcheck/crud-contract-tests/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func parseOne(t *testing.T, step string) framework.Step {
	t.Helper()
	s, err := Parse([]byte("name: t\ncases:\n  - name: c\n    steps:\n"+step), "Data")
	require.NoError(t, err)
	require.Len(t, s.Cases, 1)
	require.Len(t, s.Cases[0].Steps, 1)
	return s.Cases[0].Steps[0]
}

func TestParseExample(t *testing.T) {
	s, err := Parse(Example(), "Other")
	require.NoError(t, err)

	assert.Equal(t, "users", s.Name)
	assert.Equal(t, "Sheet1", s.Sheet)
	assert.Equal(t, "QA", s.Environment["Environment"])
	assert.Equal(t, []string{"newUser", "updatedUser"}, s.FakeUsers)
	assert.Equal(t, servicedef.Route{Method: http.MethodPatch, Path: "/users/{id}"}, s.Routes[framework.Update])
	assert.Equal(t, servicedef.UserRoutes()[framework.Create], s.Routes[framework.Create])
	assert.False(t, s.StepTimeoutMS.IsDefined())

	require.Len(t, s.Cases, 6)
	create := s.Cases[0].Steps[0]
	assert.Equal(t, framework.Create, create.Operation)
	assert.Equal(t, "fixture(newUser)", create.Body.String())
	assert.Equal(t, []framework.Capture{{Name: "createdUserId", Path: "id"}}, create.Publish)

	updateCase := s.Cases[2]
	assert.Equal(t, []string{"createdUserId"}, updateCase.Requires)
	require.Len(t, updateCase.Steps, 2)
	assert.Equal(t, framework.Delete, updateCase.Steps[1].Operation)

	sheetCase := s.Cases[5]
	require.NotNil(t, sheetCase.DataRows)
	assert.Equal(t, "Sheet1", sheetCase.DataRows.Sheet)
	assert.Equal(t, framework.FromRow("Sheet1", framework.CurrentRow,
		framework.Field{Name: "name", Col: 0},
		framework.Field{Name: "job", Col: 1},
		framework.Field{Name: "email", Col: 2, Type: framework.EmailField},
	), *sheetCase.Steps[0].Body)
}

func TestExampleSuitePassesAgainstMockAPI(t *testing.T) {
	s, err := Parse(Example(), "Sheet1")
	require.NoError(t, err)

	api := httptest.NewServer(mockapi.NewRouter(mockapi.NewUserStore(servicedef.FakeUsers(10, 1)), mockapi.Options{}))
	t.Cleanup(api.Close)

	rows := [][]string{servicedef.UserSheetHeader}
	for _, u := range servicedef.FakeUsers(3, 2) {
		rows = append(rows, u.Row())
	}

	driver := framework.NewSuiteDriver(framework.SuiteConfig{
		Name:   s.Name,
		Cases:  s.Cases,
		Setup:  s.Setup(9),
		Client: restclient.NewClient(api.URL, s.Routes, time.Second*5),
		Data:   sheets.NewWorkbook().AddSheet("Sheet1", rows),
	})
	report, err := driver.Start(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 9)
	for _, o := range report.Outcomes {
		assert.Equal(t, framework.Passed, o.Status, "%s: %s", o.ID(), o.Message)
	}
}

func TestInputForms(t *testing.T) {
	step := parseOne(t, `
      - op: list
        query:
          page: 2
          plain: {name: x}
          wrapped: {literal: {fixture: notAFixture}}
          fixture: {fixture: userId}
          cell: {cell: {row: 3, col: C, type: int}}
          other: {cell: {sheet: Users, row: current, col: 1}}
          nothing: null
        expect:
          - status: 200
`)
	q := step.QueryParams
	assert.Equal(t, framework.Literal(ldvalue.Int(2)), q["page"])
	assert.Equal(t, `{"name":"x"}`, q["plain"].String())
	assert.Equal(t, `{"fixture":"notAFixture"}`, q["wrapped"].String())
	assert.Equal(t, "userId", q["fixture"].FixtureKey())
	assert.Equal(t, framework.FromCell("Data", 3, 2, framework.IntField), q["cell"])
	assert.Equal(t, framework.FromCell("Users", framework.CurrentRow, 1, framework.StringField), q["other"])
	assert.Equal(t, framework.Literal(ldvalue.Null()), q["nothing"])
	assert.Nil(t, step.Body)
	assert.Nil(t, step.PathParams)
}

func TestAssertionForms(t *testing.T) {
	step := parseOne(t, `
      - op: read
        path: {id: 1}
        expect:
          - status: 200
          - notNull: data.id
          - nonEmpty: $.data
          - equals: {path: "data[0].name", value: Ann}
          - equals: {path: missing, value: null}
`)
	assert.Equal(t, []framework.Assertion{
		framework.StatusCodeEquals{Code: 200},
		framework.FieldNotNull{Path: "data.id"},
		framework.ListNonEmpty{Path: "$.data"},
		framework.FieldEquals{Path: "data[0].name", Value: ldvalue.String("Ann")},
		framework.FieldEquals{Path: "missing", Value: ldvalue.Null()},
	}, step.Assertions)
}

func TestSuiteSettings(t *testing.T) {
	s, err := Parse([]byte(`
name: t
stepTimeoutMs: 1500
concurrency: 4
fixtures:
  userId: 7
  payload: {name: Ann}
fakeUsers: [generated]
cases:
  - name: c
    steps:
      - op: read
        path: {id: {fixture: userId}}
        expect: [{status: 200}]
`), "Data")
	require.NoError(t, err)
	assert.Equal(t, ldvalue.NewOptionalInt(1500), s.StepTimeoutMS)
	assert.Equal(t, ldvalue.NewOptionalInt(4), s.Concurrency)

	f := framework.NewFixtures()
	require.NoError(t, s.Setup(1)(f))
	assert.Equal(t, []string{"generated", "payload", "userId"}, f.Keys())
	v, _ := f.Get("userId")
	assert.Equal(t, 7, v.IntValue())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no name", "cases: []"},
		{"no cases", "name: t"},
		{"unknown suite field", "name: t\ncolour: red\ncases: []"},
		{"bad route operation", "name: t\nroutes: {patch: {method: PATCH, path: /u}}\ncases: [{name: c, steps: [{op: read, expect: [{status: 200}]}]}]"},
		{"bad route method", "name: t\nroutes: {read: {method: FETCH, path: /u}}\ncases: [{name: c, steps: [{op: read, expect: [{status: 200}]}]}]"},
		{"unnamed case", "name: t\ncases: [{steps: [{op: read, expect: [{status: 200}]}]}]"},
		{"duplicate case", "name: t\ncases: [{name: c, steps: [{op: read, expect: [{status: 200}]}]}, {name: c, steps: [{op: read, expect: [{status: 200}]}]}]"},
		{"no steps", "name: t\ncases: [{name: c}]"},
		{"no op", "name: t\ncases: [{name: c, steps: [{expect: [{status: 200}]}]}]"},
		{"bad op", "name: t\ncases: [{name: c, steps: [{op: patch, expect: [{status: 200}]}]}]"},
		{"unknown step field", "name: t\ncases: [{name: c, steps: [{op: read, headers: {}, expect: [{status: 200}]}]}]"},
		{"no expectations", "name: t\ncases: [{name: c, steps: [{op: read}]}]"},
		{"unknown expectation", "name: t\ncases: [{name: c, steps: [{op: read, expect: [{contains: x}]}]}]"},
		{"two-key expectation", "name: t\ncases: [{name: c, steps: [{op: read, expect: [{status: 200, notNull: id}]}]}]"},
		{"bad status", "name: t\ncases: [{name: c, steps: [{op: read, expect: [{status: 42}]}]}]"},
		{"bad path", "name: t\ncases: [{name: c, steps: [{op: read, expect: [{notNull: a..b}]}]}]"},
		{"equals without value", "name: t\ncases: [{name: c, steps: [{op: read, expect: [{equals: {path: id}}]}]}]"},
		{"bad row", "name: t\ncases: [{name: c, steps: [{op: create, body: {cell: {row: next, col: 0}}, expect: [{status: 201}]}]}]"},
		{"bad column", "name: t\ncases: [{name: c, steps: [{op: create, body: {cell: {row: 1, col: '1A'}}, expect: [{status: 201}]}]}]"},
		{"cell without column", "name: t\ncases: [{name: c, steps: [{op: create, body: {cell: {row: 1}}, expect: [{status: 201}]}]}]"},
		{"row without fields", "name: t\ncases: [{name: c, steps: [{op: create, body: {row: {row: 1}}, expect: [{status: 201}]}]}]"},
		{"bad field type", "name: t\ncases: [{name: c, steps: [{op: create, body: {row: {fields: [{name: a, col: 0, type: date}]}}, expect: [{status: 201}]}]}]"},
		{"unknown field setting", "name: t\ncases: [{name: c, steps: [{op: create, body: {row: {fields: [{name: a, col: 0, tpye: int}]}}, expect: [{status: 201}]}]}]"},
		{"unknown row field", "name: t\ncases: [{name: c, steps: [{op: create, body: {row: {colums: []}}, expect: [{status: 201}]}]}]"},
		{"empty fixture name", "name: t\ncases: [{name: c, steps: [{op: create, body: {fixture: ''}, expect: [{status: 201}]}]}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "Data")
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, Example(), 0o600))

	s, err := Load(path, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "users", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), "Sheet1")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("name: t\ncases: [{name: c}]"), 0o600))
	_, err = Load(path, "Sheet1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

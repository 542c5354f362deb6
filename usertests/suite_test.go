package usertests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crudcheck/crud-contract-tests/framework"
	"github.com/crudcheck/crud-contract-tests/mockapi"
	"github.com/crudcheck/crud-contract-tests/restclient"
	"github.com/crudcheck/crud-contract-tests/servicedef"
	"github.com/crudcheck/crud-contract-tests/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSheet = "Sheet1"

type testAPI struct {
	store *mockapi.UserStore
	url   string
}

func startAPI(t *testing.T, options mockapi.Options, wrap func(http.Handler) http.Handler) testAPI {
	t.Helper()
	store := mockapi.NewUserStore(servicedef.FakeUsers(10, 1))
	handler := mockapi.NewRouter(store, options)
	if wrap != nil {
		handler = wrap(handler)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return testAPI{store: store, url: srv.URL}
}

func userWorkbook() *sheets.Workbook {
	rows := [][]string{servicedef.UserSheetHeader}
	for _, u := range servicedef.FakeUsers(2, 7) {
		rows = append(rows, u.Row())
	}
	return sheets.NewWorkbook().AddSheet(userSheet, rows)
}

func runSuite(t *testing.T, api testAPI, options Options) (framework.Report, *framework.SuiteDriver) {
	t.Helper()
	driver := framework.NewSuiteDriver(framework.SuiteConfig{
		Name:        SuiteName,
		Cases:       Cases(options),
		Setup:       Setup(options),
		Client:      restclient.NewClient(api.url, nil, time.Second*5),
		Data:        userWorkbook(),
		StepTimeout: time.Second * 5,
	})
	report, err := driver.Start(context.Background())
	require.NoError(t, err)
	return report, driver
}

func statusByTest(report framework.Report) map[string]framework.Status {
	ret := make(map[string]framework.Status)
	for _, o := range report.Outcomes {
		ret[o.TestName] = o.Status
	}
	return ret
}

func TestSuitePassesAgainstMockAPI(t *testing.T) {
	api := startAPI(t, mockapi.Options{}, nil)
	report, _ := runSuite(t, api, Options{DataSheet: userSheet, Seed: 3})

	require.Len(t, report.Outcomes, 8)
	for _, o := range report.Outcomes {
		assert.Equal(t, framework.Passed, o.Status, "%s: %s", o.ID(), o.Message)
	}
	assert.Equal(t, "Create User From Sheet [row 1]", report.Outcomes[6].TestName)
	assert.Equal(t, "Create User From Sheet [row 2]", report.Outcomes[7].TestName)

	_, found := api.store.Get(defaultUserID)
	assert.False(t, found, "the default target user should have been deleted")
}

func TestSuiteWithCreatedUser(t *testing.T) {
	api := startAPI(t, mockapi.Options{}, nil)
	report, driver := runSuite(t, api, Options{UseCreatedUser: true, Seed: 3})

	assert.True(t, framework.Summarize(report.Outcomes).OK())

	created, ok := driver.Fixtures().Get(CreatedIDFixture)
	require.True(t, ok)
	assert.Equal(t, 11, created.IntValue())

	_, found := api.store.Get(11)
	assert.False(t, found, "the created user should have been deleted")
	_, found = api.store.Get(defaultUserID)
	assert.True(t, found)
}

func TestSuiteReportsDeleteStatusMismatch(t *testing.T) {
	api := startAPI(t, mockapi.Options{DeleteStatus: http.StatusNoContent}, nil)
	report, _ := runSuite(t, api, Options{})

	statuses := statusByTest(report)
	assert.Equal(t, framework.Failed, statuses["Delete User"])
	assert.Equal(t, framework.Passed, statuses["Get User List"])

	report, _ = runSuite(t, startAPI(t, mockapi.Options{DeleteStatus: http.StatusNoContent}, nil),
		Options{DeleteStatus: http.StatusNoContent})
	assert.Equal(t, framework.Passed, statusByTest(report)["Delete User"])
}

func TestDependentCasesAreSkippedWhenCreateFails(t *testing.T) {
	failCreate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	api := startAPI(t, mockapi.Options{}, failCreate)
	report, _ := runSuite(t, api, Options{UseCreatedUser: true})

	statuses := statusByTest(report)
	assert.Equal(t, framework.Failed, statuses["Create User"])
	assert.Equal(t, framework.Skipped, statuses["Get User"])
	assert.Equal(t, framework.Skipped, statuses["Update User"])
	assert.Equal(t, framework.Skipped, statuses["Delete User"])
	assert.Equal(t, framework.Passed, statuses["Get User List"])
	assert.Equal(t, framework.Passed, statuses["Get Missing User"])
}

func TestEnvelopeChangesAssertionPaths(t *testing.T) {
	cases := Cases(Options{Envelope: "data"})

	var described []string
	for _, a := range cases[1].Steps[0].Assertions {
		described = append(described, a.Describe())
	}
	assert.Equal(t, []string{"statusCodeEquals(200)", "fieldNotNull(data.id)", "fieldNotNull(data.email)"}, described)
	assert.Equal(t, "listNonEmpty(data)", cases[4].Steps[0].Assertions[1].Describe())
}

func TestCasesWithoutDataSheet(t *testing.T) {
	cases := Cases(Options{})
	require.Len(t, cases, 6)
	for _, tc := range cases {
		assert.Nil(t, tc.DataRows)
	}
}

func TestSetupSeedsPayloads(t *testing.T) {
	f := framework.NewFixtures()
	require.NoError(t, Setup(Options{Seed: 5})(f))

	newUser, ok := f.Get(NewUserFixture)
	require.True(t, ok)
	assert.NotEmpty(t, newUser.GetByKey(servicedef.ColumnEmail).StringValue())

	updated, ok := f.Get(UpdatedUserFixture)
	require.True(t, ok)
	assert.False(t, newUser.Equal(updated))
}

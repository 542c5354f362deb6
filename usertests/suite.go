package usertests

import (
	"net/http"

	"github.com/crudcheck/crud-contract-tests/framework"
	"github.com/crudcheck/crud-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// SuiteName is the name reported for the built-in suite.
const SuiteName = "users"

// Fixture keys used by the built-in suite.
const (
	NewUserFixture     = "newUser"
	UpdatedUserFixture = "updatedUser"
	CreatedIDFixture   = "createdUserId"
)

const (
	idParam = "id"

	defaultUserID        = 2
	defaultMissingUserID = 999
	defaultListPage      = 2
)

// Options adjusts the built-in suite to the API under test.
type Options struct {
	// UserID is the existing user read, updated and deleted when UseCreatedUser is false.
	UserID int

	// MissingUserID is a user that must not exist.
	MissingUserID int

	ListPage int

	// DeleteStatus is the expected status of a successful delete; 0 means 200.
	DeleteStatus int

	// Envelope is the field that wraps single users and user lists in responses, such as
	// "data"; empty means they are returned at the top level.
	Envelope string

	// UseCreatedUser makes the read, update and delete cases target the user created by the
	// create case instead of UserID. Those cases are then skipped if the create case fails.
	UseCreatedUser bool

	// DataSheet, if set, adds a data-driven create case for every row of that sheet. The
	// sheet's columns are servicedef.UserSheetHeader.
	DataSheet string

	// Seed controls the generated payloads; 0 is random.
	Seed int64
}

func (o Options) withDefaults() Options {
	if o.UserID == 0 {
		o.UserID = defaultUserID
	}
	if o.MissingUserID == 0 {
		o.MissingUserID = defaultMissingUserID
	}
	if o.ListPage == 0 {
		o.ListPage = defaultListPage
	}
	if o.DeleteStatus == 0 {
		o.DeleteStatus = http.StatusOK
	}
	return o
}

func (o Options) field(name string) string {
	if o.Envelope == "" {
		return name
	}
	return o.Envelope + "." + name
}

func (o Options) listPath() string {
	if o.Envelope == "" {
		return "$"
	}
	return o.Envelope
}

func (o Options) targetUser() map[string]framework.Input {
	if o.UseCreatedUser {
		return map[string]framework.Input{idParam: framework.FromFixture(CreatedIDFixture)}
	}
	return map[string]framework.Input{idParam: framework.Literal(ldvalue.Int(o.UserID))}
}

// Setup returns the suite setup function, which seeds generated create and update payloads.
func Setup(options Options) func(*framework.Fixtures) error {
	return func(f *framework.Fixtures) error {
		users := servicedef.FakeUsers(2, options.Seed)
		f.Set(NewUserFixture, users[0].AsValue())
		f.Set(UpdatedUserFixture, users[1].AsValue())
		return nil
	}
}

// Cases returns the built-in test cases in the order they should run.
func Cases(options Options) []framework.TestCase {
	o := options.withDefaults()

	newUser := framework.FromFixture(NewUserFixture)
	updatedUser := framework.FromFixture(UpdatedUserFixture)

	cases := []framework.TestCase{
		{
			Name: "Create User",
			Steps: []framework.Step{{
				Name:      "create user",
				Operation: framework.Create,
				Body:      &newUser,
				Assertions: []framework.Assertion{
					framework.StatusCodeEquals{Code: http.StatusCreated},
					framework.FieldNotNull{Path: "id"},
					framework.FieldNotNull{Path: "createdAt"},
				},
				Publish: []framework.Capture{{Name: CreatedIDFixture, Path: "id"}},
			}},
		},
		{
			Name: "Get User",
			Steps: []framework.Step{{
				Name:       "get user",
				Operation:  framework.Read,
				PathParams: o.targetUser(),
				Assertions: []framework.Assertion{
					framework.StatusCodeEquals{Code: http.StatusOK},
					framework.FieldNotNull{Path: o.field("id")},
					framework.FieldNotNull{Path: o.field("email")},
				},
			}},
		},
		{
			Name: "Update User",
			Steps: []framework.Step{{
				Name:       "update user",
				Operation:  framework.Update,
				PathParams: o.targetUser(),
				Body:       &updatedUser,
				Assertions: []framework.Assertion{
					framework.StatusCodeEquals{Code: http.StatusOK},
					framework.FieldNotNull{Path: "updatedAt"},
				},
			}},
		},
		{
			Name: "Delete User",
			Steps: []framework.Step{{
				Name:       "delete user",
				Operation:  framework.Delete,
				PathParams: o.targetUser(),
				Assertions: []framework.Assertion{
					framework.StatusCodeEquals{Code: o.DeleteStatus},
				},
			}},
		},
		{
			Name: "Get User List",
			Steps: []framework.Step{{
				Name:      "list users",
				Operation: framework.List,
				QueryParams: map[string]framework.Input{
					servicedef.PageParam: framework.Literal(ldvalue.Int(o.ListPage)),
				},
				Assertions: []framework.Assertion{
					framework.StatusCodeEquals{Code: http.StatusOK},
					framework.ListNonEmpty{Path: o.listPath()},
				},
			}},
		},
		{
			Name: "Get Missing User",
			Steps: []framework.Step{{
				Name:       "get missing user",
				Operation:  framework.Read,
				PathParams: map[string]framework.Input{idParam: framework.Literal(ldvalue.Int(o.MissingUserID))},
				Assertions: []framework.Assertion{
					framework.StatusCodeEquals{Code: http.StatusNotFound},
				},
			}},
		},
	}

	if o.DataSheet != "" {
		cases = append(cases, dataDrivenCreate(o.DataSheet))
	}
	return cases
}

func dataDrivenCreate(sheet string) framework.TestCase {
	body := framework.FromRow(sheet, framework.CurrentRow,
		framework.Field{Name: servicedef.ColumnName, Col: 0, Type: framework.StringField},
		framework.Field{Name: servicedef.ColumnJob, Col: 1, Type: framework.StringField},
		framework.Field{Name: servicedef.ColumnEmail, Col: 2, Type: framework.EmailField},
	)
	return framework.TestCase{
		Name:     "Create User From Sheet",
		DataRows: &framework.RowSource{Sheet: sheet},
		Steps: []framework.Step{{
			Name:      "create user",
			Operation: framework.Create,
			Body:      &body,
			Assertions: []framework.Assertion{
				framework.StatusCodeEquals{Code: http.StatusCreated},
				framework.FieldNotNull{Path: "id"},
			},
		}},
	}
}

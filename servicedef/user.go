package servicedef

import (
	"github.com/brianvoe/gofakeit/v6"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Column names of a user data sheet, in order.
const (
	ColumnName  = "name"
	ColumnJob   = "job"
	ColumnEmail = "email"
)

var UserSheetHeader = []string{ColumnName, ColumnJob, ColumnEmail}

// User is the payload sent when creating or updating a user.
type User struct {
	Name  string `json:"name"`
	Job   string `json:"job"`
	Email string `json:"email"`
}

// UserRecord is a user as returned by the users API.
type UserRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name,omitempty"`
	Job       string `json:"job,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (u User) AsValue() ldvalue.Value {
	return ldvalue.ObjectBuild().
		Set(ColumnName, ldvalue.String(u.Name)).
		Set(ColumnJob, ldvalue.String(u.Job)).
		Set(ColumnEmail, ldvalue.String(u.Email)).
		Build()
}

// Row returns the user's cells in UserSheetHeader order.
func (u User) Row() []string {
	return []string{u.Name, u.Job, u.Email}
}

// FakeUsers generates n users with random names, jobs and email addresses. The same seed
// always generates the same users; a seed of 0 is random.
func FakeUsers(n int, seed int64) []User {
	faker := gofakeit.New(seed)
	users := make([]User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, User{
			Name:  faker.Name(),
			Job:   faker.JobTitle(),
			Email: faker.Email(),
		})
	}
	return users
}

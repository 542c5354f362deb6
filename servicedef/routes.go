// Package servicedef describes the remote users resource: its payloads and how each
// operation maps onto an HTTP route.
package servicedef

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/crudcheck/crud-contract-tests/framework"
)

const (
	UsersPath = "/users"
	UserPath  = "/users/{id}"

	// PageParam is the query parameter used by the list operation.
	PageParam = "page"
)

// Route is an HTTP method and a path template. Path placeholders look like "{id}".
type Route struct {
	Method string `yaml:"method" json:"method"`
	Path   string `yaml:"path" json:"path"`
}

func (r Route) String() string {
	return r.Method + " " + r.Path
}

// Routes maps each operation to its route.
type Routes map[framework.Operation]Route

// UserRoutes returns the routes of the users resource.
func UserRoutes() Routes {
	return Routes{
		framework.Create: {Method: http.MethodPost, Path: UsersPath},
		framework.Read:   {Method: http.MethodGet, Path: UserPath},
		framework.Update: {Method: http.MethodPut, Path: UserPath},
		framework.Delete: {Method: http.MethodDelete, Path: UserPath},
		framework.List:   {Method: http.MethodGet, Path: UsersPath},
	}
}

// Placeholders returns the names of the path placeholders of the route, in order.
func (r Route) Placeholders() []string {
	var names []string
	rest := r.Path
	for {
		start := strings.Index(rest, "{")
		if start < 0 {
			return names
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			return names
		}
		names = append(names, rest[start+1:start+end])
		rest = rest[start+end+1:]
	}
}

// Validate checks that the method is known and the placeholders are well formed.
func (r Route) Validate() error {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return fmt.Errorf("route %q: unsupported method %q", r.Path, r.Method)
	}
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("route %q: path must start with /", r.Path)
	}
	if strings.Count(r.Path, "{") != strings.Count(r.Path, "}") {
		return fmt.Errorf("route %q: unbalanced placeholder braces", r.Path)
	}
	for _, name := range r.Placeholders() {
		if name == "" {
			return fmt.Errorf("route %q: empty placeholder", r.Path)
		}
	}
	return nil
}

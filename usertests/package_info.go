// Package usertests contains the built-in CRUD contract tests for a users resource.
//
// The tests are plain framework.TestCase values; all of the HTTP and data source plumbing
// lives in the framework, restclient and sheets packages.
package usertests

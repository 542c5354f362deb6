package framework

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Assertion is a predicate over a Result. The set of implementations is closed: use
// StatusCodeEquals, FieldNotNull, FieldEquals or ListNonEmpty.
type Assertion interface {
	// Describe returns a short name such as `statusCodeEquals(201)`.
	Describe() string
	evaluate(result Result) assertionOutcome
}

type assertionOutcome struct {
	passed   bool
	expected string
	actual   string
}

// StatusCodeEquals checks the HTTP status code.
type StatusCodeEquals struct {
	Code int
}

// FieldNotNull checks that the value at Path exists and is not null.
type FieldNotNull struct {
	Path string
}

// FieldEquals checks that the value at Path equals Value. Numbers compare by value, so
// ldvalue.Int(7) equals a parsed 7.0.
type FieldEquals struct {
	Path  string
	Value ldvalue.Value
}

// ListNonEmpty checks that the value at Path is an array with at least one element.
type ListNonEmpty struct {
	Path string
}

func (a StatusCodeEquals) Describe() string { return fmt.Sprintf("statusCodeEquals(%d)", a.Code) }

func (a StatusCodeEquals) evaluate(result Result) assertionOutcome {
	return assertionOutcome{
		passed:   result.StatusCode == a.Code,
		expected: fmt.Sprintf("%d", a.Code),
		actual:   fmt.Sprintf("%d", result.StatusCode),
	}
}

func (a FieldNotNull) Describe() string { return fmt.Sprintf("fieldNotNull(%s)", a.Path) }

func (a FieldNotNull) evaluate(result Result) assertionOutcome {
	out := assertionOutcome{expected: "non-null value"}
	v, found, err := Lookup(result.Body, a.Path)
	switch {
	case err != nil:
		out.actual = err.Error()
	case !found:
		out.actual = "missing"
	case v.IsNull():
		out.actual = "null"
	default:
		out.passed = true
		out.actual = v.JSONString()
	}
	return out
}

func (a FieldEquals) Describe() string {
	return fmt.Sprintf("fieldEquals(%s, %s)", a.Path, a.Value.JSONString())
}

func (a FieldEquals) evaluate(result Result) assertionOutcome {
	out := assertionOutcome{expected: a.Value.JSONString()}
	v, found, err := Lookup(result.Body, a.Path)
	switch {
	case err != nil:
		out.actual = err.Error()
	case !found:
		out.actual = "missing"
	default:
		out.passed = v.Equal(a.Value)
		out.actual = v.JSONString()
	}
	return out
}

func (a ListNonEmpty) Describe() string { return fmt.Sprintf("listNonEmpty(%s)", a.Path) }

func (a ListNonEmpty) evaluate(result Result) assertionOutcome {
	out := assertionOutcome{expected: "non-empty list"}
	v, found, err := Lookup(result.Body, a.Path)
	switch {
	case err != nil:
		out.actual = err.Error()
	case !found:
		out.actual = "missing"
	case v.Type() != ldvalue.ArrayType:
		out.actual = fmt.Sprintf("%s value %s", v.Type(), v.JSONString())
	case v.Count() == 0:
		out.actual = "empty list"
	default:
		out.passed = true
		out.actual = fmt.Sprintf("list of %d", v.Count())
	}
	return out
}

package framework

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// memData is a DataSource over plain string tables.
type memData map[string][][]string

func (m memData) CellAt(sheet string, row, col int) (string, error) {
	rows, ok := m[sheet]
	if !ok {
		return "", &DataAccessError{Sheet: sheet, Row: -1, Col: -1, Err: errors.New("no such sheet")}
	}
	if row < 0 || row >= len(rows) {
		return "", &DataAccessError{Sheet: sheet, Row: row, Col: -1, Err: errors.New("no such row")}
	}
	if col < 0 || col >= len(rows[HeaderRow]) {
		return "", &DataAccessError{Sheet: sheet, Row: row, Col: col, Err: errors.New("no such column")}
	}
	if col >= len(rows[row]) {
		return "", nil
	}
	return rows[row][col], nil
}

func (m memData) RowCount(sheet string) (int, error) {
	rows, ok := m[sheet]
	if !ok {
		return 0, &DataAccessError{Sheet: sheet, Row: -1, Col: -1, Err: errors.New("no such sheet")}
	}
	return len(rows), nil
}

func (m memData) ColCount(sheet string, headerRow int) (int, error) {
	rows, ok := m[sheet]
	if !ok || headerRow >= len(rows) {
		return 0, &DataAccessError{Sheet: sheet, Row: headerRow, Col: -1, Err: errors.New("no such row")}
	}
	return len(rows[headerRow]), nil
}

var userData = memData{
	"Sheet1": {
		{"name", "job", "email"},
		{"Ann Lee", "QA", "ann@x.io"},
		{"Bob Ray", "Dev", "bob@x.io"},
	},
}

var userFields = []Field{
	{Name: "name", Col: 0},
	{Name: "job", Col: 1},
	{Name: "email", Col: 2, Type: EmailField},
}

type recordedCall struct {
	op  Operation
	req Request
}

// fakeClient answers each call with the handler for its operation, and records every call.
type fakeClient struct {
	handlers map[Operation]func(Request) (Result, error)
	calls    []recordedCall
	lock     sync.Mutex
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[Operation]func(Request) (Result, error))}
}

func (c *fakeClient) on(op Operation, h func(Request) (Result, error)) *fakeClient {
	c.handlers[op] = h
	return c
}

func (c *fakeClient) Execute(ctx context.Context, op Operation, req Request, logger Logger) (Result, error) {
	c.lock.Lock()
	c.calls = append(c.calls, recordedCall{op: op, req: req})
	h := c.handlers[op]
	c.lock.Unlock()
	logger.Printf("fake %s", op)
	if h == nil {
		return Result{}, &TransportError{Operation: op, Err: fmt.Errorf("no handler for %s", op)}
	}
	return h(req)
}

func (c *fakeClient) callCount() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.calls)
}

func respond(status int, body string) func(Request) (Result, error) {
	return func(Request) (Result, error) {
		return Result{StatusCode: status, Body: ldvalue.Parse([]byte(body)), RawBody: []byte(body)}, nil
	}
}

func refuse(Request) (Result, error) {
	return Result{}, errors.New("connection refused")
}

func statusIs(code int) Assertion { return StatusCodeEquals{Code: code} }

func statuses(outcomes []StepOutcome) []Status {
	ret := make([]Status, 0, len(outcomes))
	for _, o := range outcomes {
		ret = append(ret, o.Status)
	}
	return ret
}

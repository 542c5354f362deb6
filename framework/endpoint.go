package framework

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Operation is the kind of interaction a Step performs against the remote resource.
type Operation int

const (
	Create Operation = iota
	Read
	Update
	Delete
	List
)

var operationNames = map[Operation]string{
	Create: "create",
	Read:   "read",
	Update: "update",
	Delete: "delete",
	List:   "list",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// ParseOperation accepts the operation names used in suite files. "get" is an alias for read.
func ParseOperation(s string) (Operation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "get" {
		return Read, nil
	}
	for op, n := range operationNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

func (o Operation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operation) UnmarshalText(data []byte) error {
	op, err := ParseOperation(string(data))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Request is a fully resolved Step input. Body is ldvalue.Null() when there is no body.
type Request struct {
	PathParams  map[string]string
	QueryParams map[string]string
	Body        ldvalue.Value
}

// Result is what the remote resource returned. Body is the parsed JSON document, or
// ldvalue.Null() if the response was empty or not JSON; RawBody is always the exact bytes.
type Result struct {
	StatusCode int
	Body       ldvalue.Value
	RawBody    []byte
	Headers    http.Header
}

// EndpointClient performs a single operation against the remote resource.
//
// Execute returns a *TransportError if the call could not be completed. Any response from
// the server, whatever its status code, is a successful call. Request narration should be
// written to the supplied logger.
type EndpointClient interface {
	Execute(ctx context.Context, op Operation, req Request, logger Logger) (Result, error)
}

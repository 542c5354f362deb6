package restclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/crudcheck/crud-contract-tests/framework"
	"github.com/crudcheck/crud-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DefaultRequestTimeout is used by NewClient if no timeout is given.
const DefaultRequestTimeout = time.Second * 10

// How much of a response body is written to the debug log.
const maxLoggedBody = 2000

// Client is a framework.EndpointClient that performs each operation as an HTTP request with a
// JSON body against a base URL.
type Client struct {
	baseURL    string
	routes     servicedef.Routes
	httpClient *http.Client
	headers    http.Header
}

// Option customizes a Client.
type Option func(*Client)

// WithHeader adds a header to every request.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		c.headers.Add(name, value)
	}
}

// WithHTTPClient replaces the default HTTP client. Its timeout is used as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client. routes may be nil to use servicedef.UserRoutes.
func NewClient(baseURL string, routes servicedef.Routes, timeout time.Duration, options ...Option) *Client {
	if routes == nil {
		routes = servicedef.UserRoutes()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		routes:     routes,
		httpClient: &http.Client{Timeout: timeout},
		headers:    make(http.Header),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Execute implements framework.EndpointClient.
func (c *Client) Execute(
	ctx context.Context,
	op framework.Operation,
	req framework.Request,
	logger framework.Logger,
) (framework.Result, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	fail := func(err error) (framework.Result, error) {
		return framework.Result{}, &framework.TransportError{Operation: op, Err: err}
	}

	route, ok := c.routes[op]
	if !ok {
		return fail(fmt.Errorf("no route is configured for %s", op))
	}
	target, err := c.buildURL(route, req)
	if err != nil {
		return fail(err)
	}

	var body []byte
	if !req.Body.IsNull() {
		body = []byte(req.Body.JSONString())
	}
	httpReq, err := http.NewRequestWithContext(ctx, route.Method, target, bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	for name, values := range c.headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	logger.Printf("Request: %s", curlCommand(httpReq, body))
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Printf("Request failed: %s", err)
		return fail(unwrapURLError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Printf("Failed reading response body: %s", err)
		return fail(fmt.Errorf("could not read response body: %w", err))
	}
	logger.Printf("Response: %d after %s: %s", resp.StatusCode, time.Since(start).Round(time.Millisecond), truncate(raw))

	return framework.Result{
		StatusCode: resp.StatusCode,
		Body:       parseBody(raw),
		RawBody:    raw,
		Headers:    resp.Header,
	}, nil
}

func (c *Client) buildURL(route servicedef.Route, req framework.Request) (string, error) {
	path := route.Path
	for _, name := range route.Placeholders() {
		value, ok := req.PathParams[name]
		if !ok {
			return "", fmt.Errorf("no value for path parameter %q of %s", name, route)
		}
		path = strings.Replace(path, "{"+name+"}", url.PathEscape(value), 1)
	}
	target := c.baseURL + path
	if len(req.QueryParams) > 0 {
		q := make(url.Values, len(req.QueryParams))
		for k, v := range req.QueryParams {
			q.Set(k, v)
		}
		target += "?" + q.Encode()
	}
	return target, nil
}

// parseBody returns ldvalue.Null() for an empty or non-JSON body.
func parseBody(raw []byte) ldvalue.Value {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ldvalue.Null()
	}
	return ldvalue.Parse(raw)
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func truncate(raw []byte) string {
	if len(raw) <= maxLoggedBody {
		return string(raw)
	}
	return string(raw[:maxLoggedBody]) + "..."
}

func sortedHeaderNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

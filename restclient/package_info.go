// Package restclient implements framework.EndpointClient over HTTP. Each operation is mapped
// to a route whose path placeholders are filled from the step's path parameters; request and
// response bodies are JSON. The request is written to the step's debug log as a curl command.
package restclient

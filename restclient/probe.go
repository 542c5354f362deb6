package restclient

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// WaitForService polls url until it answers with any HTTP response, printing progress to output.
// A server error status still counts as an answer: the suite will report it through its steps.
func WaitForService(url string, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to API at %s", url)

	client := &http.Client{Timeout: time.Second * 5}
	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			fmt.Fprintln(output)
			fmt.Fprintf(output, "API responded with status %d\n", resp.StatusCode)
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

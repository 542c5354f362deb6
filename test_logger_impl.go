package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/crudcheck/crud-contract-tests/framework"

	"github.com/fatih/color"
)

var (
	failedLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	skippedLabel = color.New(color.FgYellow).SprintFunc()
)

// ConsoleTestLogger prints each step as it runs. Output for a step is buffered until the step
// finishes, so that steps of cases running concurrently do not interleave.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	out     io.Writer
	pending map[string]*bytes.Buffer
	lock    sync.Mutex
}

func NewConsoleTestLogger(out io.Writer, debugOnFailure, debugOnSuccess bool) *ConsoleTestLogger {
	return &ConsoleTestLogger{
		DebugOutputOnFailure: debugOnFailure,
		DebugOutputOnSuccess: debugOnSuccess,
		out:                  out,
		pending:              make(map[string]*bytes.Buffer),
	}
}

func (c *ConsoleTestLogger) buffer(id framework.TestID) *bytes.Buffer {
	key := id.String()
	buf := c.pending[key]
	if buf == nil {
		buf = new(bytes.Buffer)
		c.pending[key] = buf
	}
	return buf
}

func (c *ConsoleTestLogger) flush(id framework.TestID) {
	key := id.String()
	if buf := c.pending[key]; buf != nil {
		_, _ = buf.WriteTo(c.out)
		delete(c.pending, key)
	}
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	fmt.Fprintf(c.buffer(id), "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	buf := c.buffer(id)
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(buf, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, outcome framework.StepOutcome, debugOutput framework.CapturedOutput) {
	c.lock.Lock()
	defer c.lock.Unlock()
	buf := c.buffer(id)
	failed := outcome.Status == framework.Failed || outcome.Status == framework.Errored
	if failed {
		fmt.Fprintf(buf, "  %s: %s\n", failedLabel(strings.ToUpper(outcome.Status.String())), id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(buf, "    DEBUG ")
	}
	c.flush(id)
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	buf := c.buffer(id)
	if reason == "" {
		fmt.Fprintf(buf, "  %s: %s\n", skippedLabel("SKIPPED"), id)
	} else {
		fmt.Fprintf(buf, "  %s: %s (%s)\n", skippedLabel("SKIPPED"), id, reason)
	}
	c.flush(id)
}

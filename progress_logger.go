package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/crudcheck/crud-contract-tests/framework"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressTestLogger shows a progress bar on stderr instead of per-step output.
type ProgressTestLogger struct {
	bar                     *progressbar.ProgressBar
	passed, failed, skipped int
	lock                    sync.Mutex
}

func NewProgressTestLogger(steps int) *ProgressTestLogger {
	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetDescription(progressDescription(0, 0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressTestLogger{bar: bar}
}

func progressDescription(passed, failed, skipped int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d", failed) +
		" | " +
		color.YellowString("skipped: %d]", skipped)
}

func (p *ProgressTestLogger) update() {
	_ = p.bar.Set(p.passed + p.failed + p.skipped)
	p.bar.Describe(progressDescription(p.passed, p.failed, p.skipped))
}

func (p *ProgressTestLogger) TestStarted(framework.TestID)      {}
func (p *ProgressTestLogger) TestError(framework.TestID, error) {}

func (p *ProgressTestLogger) TestFinished(_ framework.TestID, outcome framework.StepOutcome, _ framework.CapturedOutput) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if outcome.Status == framework.Passed {
		p.passed++
	} else {
		p.failed++
	}
	p.update()
}

func (p *ProgressTestLogger) TestSkipped(framework.TestID, string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.skipped++
	p.update()
}

// Finish completes the bar, even if a cancelled run ended early.
func (p *ProgressTestLogger) Finish() {
	p.lock.Lock()
	defer p.lock.Unlock()
	_ = p.bar.Finish()
}

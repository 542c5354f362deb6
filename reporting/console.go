package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/crudcheck/crud-contract-tests/framework"

	"github.com/fatih/color"
)

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed, color.Bold)
	errorColor = color.New(color.FgRed)
	skipColor  = color.New(color.FgYellow)
)

// PrintResults writes the summary of a report, followed by every step that failed or errored.
func PrintResults(w io.Writer, report framework.Report) {
	summary := framework.Summarize(report.Outcomes)
	duration := report.FinishTime.Sub(report.StartTime)

	fmt.Fprintf(w, "Suite %q finished in %.3fs: %d steps\n", report.Suite, duration.Seconds(), summary.Total())
	passColor.Fprintf(w, "  passed:  %d\n", summary.Passed)
	printCount(w, failColor, "failed: ", summary.Failed)
	printCount(w, errorColor, "errored:", summary.Errored)
	printCount(w, skipColor, "skipped:", summary.Skipped)

	if summary.OK() {
		return
	}
	fmt.Fprintln(w)
	failColor.Fprintln(w, "FAILED STEPS:")
	for _, o := range report.Outcomes {
		if o.Status != framework.Failed && o.Status != framework.Errored {
			continue
		}
		fmt.Fprintf(w, "  [%s] %s\n", o.ID(), strings.ToUpper(o.Status.String()))
		for _, line := range strings.Split(o.Message, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func printCount(w io.Writer, c *color.Color, label string, n int) {
	if n == 0 {
		fmt.Fprintf(w, "  %s %d\n", label, n)
		return
	}
	c.Fprintf(w, "  %s %d\n", label, n)
}

// PrintArtifacts lists the files a run produced.
func PrintArtifacts(w io.Writer, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(w, "Report written to %s\n", p)
	}
}

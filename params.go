package main

import (
	"strings"
	"time"

	"github.com/crudcheck/crud-contract-tests/config"
	"github.com/crudcheck/crud-contract-tests/framework"

	"github.com/spf13/cobra"
)

type runParams struct {
	envFile        string
	suiteFile      string
	dataFile       string
	sheet          string
	baseURL        string
	filters        framework.RegexFilters
	concurrency    int
	stepTimeout    time.Duration
	requestTimeout time.Duration
	reportDir      string
	formats        []string
	createdUser    bool
	deleteStatus   int
	seed           int64
	wait           bool
	progress       bool
	debug          bool
	debugAll       bool
}

func (p *runParams) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&p.envFile, "env-file", config.DefaultEnvFile, "file of CRUD_* settings to load before the environment")
	fs.StringVar(&p.suiteFile, "suite", "", "YAML suite definition (default: the built-in users suite)")
	fs.StringVar(&p.dataFile, "data", "", "xlsx workbook with test data")
	fs.StringVar(&p.sheet, "sheet", config.DefaultSheet, "default sheet for data-driven cases")
	fs.StringVar(&p.baseURL, "url", config.DefaultBaseURL, "base URL of the API under test")
	fs.Var(&p.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&p.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.IntVar(&p.concurrency, "concurrency", config.DefaultConcurrency, "number of independent test cases to run at once")
	fs.DurationVar(&p.stepTimeout, "step-timeout", config.DefaultStepTimeout, "maximum time for one step")
	fs.DurationVar(&p.requestTimeout, "request-timeout", config.DefaultRequestTimeout, "HTTP client timeout")
	fs.StringVar(&p.reportDir, "report-dir", config.DefaultReportDir, "directory for report files")
	fs.StringSliceVar(&p.formats, "format", config.DefaultFormats, "report formats (json, xlsx)")
	fs.BoolVar(&p.createdUser, "created-user", false, "built-in suite: read, update and delete the user created by the suite")
	fs.IntVar(&p.deleteStatus, "delete-status", 0, "built-in suite: expected status of a successful delete (default 200)")
	fs.Int64Var(&p.seed, "seed", 0, "seed for generated payloads (default random)")
	fs.BoolVar(&p.wait, "wait", false, "wait for the API to respond before running")
	fs.BoolVar(&p.progress, "progress", false, "show a progress bar instead of per-test output")
	fs.BoolVar(&p.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&p.debugAll, "debug-all", false, "enable debug logging for all tests")
}

// apply overrides cfg with every flag that was set explicitly on the command line.
func (p *runParams) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("suite") {
		cfg.SuiteFile = p.suiteFile
	}
	if changed("data") {
		cfg.DataFile = p.dataFile
	}
	if changed("sheet") {
		cfg.Sheet = p.sheet
	}
	if changed("url") {
		cfg.BaseURL = p.baseURL
	}
	if changed("concurrency") {
		cfg.Concurrency = p.concurrency
	}
	if changed("step-timeout") {
		cfg.StepTimeout = p.stepTimeout
	}
	if changed("request-timeout") {
		cfg.RequestTimeout = p.requestTimeout
	}
	if changed("report-dir") {
		cfg.ReportDir = p.reportDir
	}
	if changed("format") {
		cfg.Formats = config.SplitList(strings.Join(p.formats, ","))
	}
}

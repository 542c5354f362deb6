package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/crudcheck/crud-contract-tests/config"
	"github.com/crudcheck/crud-contract-tests/framework"
	"github.com/crudcheck/crud-contract-tests/reporting"
	"github.com/crudcheck/crud-contract-tests/restclient"
	"github.com/crudcheck/crud-contract-tests/servicedef"
	"github.com/crudcheck/crud-contract-tests/sheets"
	"github.com/crudcheck/crud-contract-tests/suitefile"
	"github.com/crudcheck/crud-contract-tests/usertests"

	"github.com/spf13/cobra"
)

var runArgs runParams

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a test suite against an API",
	Long: "Runs the built-in users suite, or the suite given with --suite, against --url.\n" +
		"Exit code 0 if every step passed or was skipped, 1 otherwise.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runArgs.envFile)
		if err != nil {
			return err
		}
		runArgs.apply(cmd, cfg)
		ok, err := runSuite(cmd, cfg, &runArgs)
		if err != nil {
			return err
		}
		if !ok {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	runArgs.register(runCmd)
	rootCmd.AddCommand(runCmd)
}

// suiteDefinition is everything a run needs from either the built-in suite or a suite file.
type suiteDefinition struct {
	name        string
	cases       []framework.TestCase
	routes      servicedef.Routes
	setup       func(*framework.Fixtures) error
	environment map[string]string
}

func loadSuite(cmd *cobra.Command, cfg *config.Config, p *runParams, hasData bool) (suiteDefinition, error) {
	if cfg.SuiteFile == "" {
		options := usertests.Options{
			UseCreatedUser: p.createdUser,
			DeleteStatus:   p.deleteStatus,
			Seed:           p.seed,
		}
		if hasData {
			options.DataSheet = cfg.Sheet
		}
		return suiteDefinition{
			name:  usertests.SuiteName,
			cases: usertests.Cases(options),
			setup: usertests.Setup(options),
		}, nil
	}

	s, err := suitefile.Load(cfg.SuiteFile, cfg.Sheet)
	if err != nil {
		return suiteDefinition{}, err
	}
	if s.StepTimeoutMS.IsDefined() && !cmd.Flags().Changed("step-timeout") {
		cfg.StepTimeout = time.Duration(s.StepTimeoutMS.IntValue()) * time.Millisecond
	}
	if s.Concurrency.IsDefined() && !cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = s.Concurrency.IntValue()
	}
	return suiteDefinition{
		name:        s.Name,
		cases:       s.Cases,
		routes:      s.Routes,
		setup:       s.Setup(p.seed),
		environment: s.Environment,
	}, nil
}

func runSuite(cmd *cobra.Command, cfg *config.Config, p *runParams) (bool, error) {
	var data framework.DataSource
	if cfg.DataFile != "" {
		wb, err := sheets.OpenXLSX(cfg.DataFile)
		if err != nil {
			return false, err
		}
		data = wb
	}

	suite, err := loadSuite(cmd, cfg, p, data != nil)
	if err != nil {
		return false, err
	}
	if err := cfg.Validate(); err != nil {
		return false, err
	}

	if p.wait {
		if err := restclient.WaitForService(cfg.BaseURL, cfg.WaitTimeout, os.Stdout); err != nil {
			return false, fmt.Errorf("API is not available: %w", err)
		}
	}

	var clientOptions []restclient.Option
	if cfg.AuthToken != "" {
		clientOptions = append(clientOptions, restclient.WithHeader("Authorization", "Bearer "+cfg.AuthToken))
	}
	client := restclient.NewClient(cfg.BaseURL, suite.routes, cfg.RequestTimeout, clientOptions...)

	environment := cfg.EnvironmentLabels()
	for k, v := range suite.environment {
		environment[k] = v
	}

	mainDebugLogger := framework.NullLogger()
	if p.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	var testLogger framework.TestLogger
	var progress *ProgressTestLogger
	if p.progress {
		expanded, err := framework.ExpandCases(suite.cases, data)
		if err != nil {
			return false, err
		}
		progress = NewProgressTestLogger(framework.StepCount(expanded))
		testLogger = progress
	} else {
		testLogger = NewConsoleTestLogger(os.Stdout, p.debug || p.debugAll, p.debugAll)
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, p.filters)
	fmt.Printf("Running test suite %q against %s\n", suite.name, cfg.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	driver := framework.NewSuiteDriver(framework.SuiteConfig{
		Name:        suite.name,
		Cases:       suite.cases,
		Client:      client,
		Data:        data,
		Environment: environment,
		Setup:       suite.setup,
		Filter:      p.filters.AsFilter,
		Concurrency: cfg.Concurrency,
		StepTimeout: cfg.StepTimeout,
		DebugLogger: mainDebugLogger,
		TestLogger:  testLogger,
	})
	report, err := driver.Start(ctx)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return false, err
	}

	fmt.Println()
	reporting.PrintResults(os.Stdout, report)
	paths, err := reporting.Write(cfg.ReportDir, cfg.Formats, report)
	if err != nil {
		return false, fmt.Errorf("could not write report: %w", err)
	}
	reporting.PrintArtifacts(os.Stdout, paths)

	return framework.Summarize(report.Outcomes).OK(), nil
}

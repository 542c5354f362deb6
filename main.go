package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultPort = 8111

var rootCmd = &cobra.Command{
	Use:   "crud-contract-tests",
	Short: "Data-driven contract tests for CRUD HTTP APIs",
	Long: "Runs a suite of create/read/update/delete/list test cases against an HTTP API, with\n" +
		"request data taken from literals, spreadsheet rows or values captured from earlier\n" +
		"responses, and writes timestamped JSON and xlsx reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

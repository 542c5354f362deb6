package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/crudcheck/crud-contract-tests/suitefile"

	"github.com/spf13/cobra"
)

var initSuiteForce bool

var initSuiteCmd = &cobra.Command{
	Use:   "init-suite [file]",
	Short: "Write an example suite definition to start from",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "suite.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if !initSuiteForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		if err := os.WriteFile(path, suitefile.Example(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Wrote example suite to %s\n", path)
		return nil
	},
}

func init() {
	initSuiteCmd.Flags().BoolVar(&initSuiteForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initSuiteCmd)
}

package main

import (
	"errors"
	"fmt"

	"github.com/crudcheck/crud-contract-tests/config"
	"github.com/crudcheck/crud-contract-tests/servicedef"
	"github.com/crudcheck/crud-contract-tests/sheets"

	"github.com/spf13/cobra"
)

var (
	generateOutput string
	generateSheet  string
	generateCount  int
	generateSeed   int64
)

var generateCmd = &cobra.Command{
	Use:   "generate-data",
	Short: "Write a workbook of generated users for data-driven runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateCount < 1 {
			return errors.New("--count must be at least 1")
		}
		rows := [][]string{servicedef.UserSheetHeader}
		for _, u := range servicedef.FakeUsers(generateCount, generateSeed) {
			rows = append(rows, u.Row())
		}
		wb := sheets.NewWorkbook().AddSheet(generateSheet, rows)
		if err := sheets.WriteXLSX(generateOutput, wb); err != nil {
			return err
		}
		fmt.Printf("Wrote %d users to %s!%s\n", generateCount, generateOutput, generateSheet)
		return nil
	},
}

func init() {
	fs := generateCmd.Flags()
	fs.StringVarP(&generateOutput, "output", "o", "testdata.xlsx", "workbook to write")
	fs.StringVar(&generateSheet, "sheet", config.DefaultSheet, "sheet name")
	fs.IntVarP(&generateCount, "count", "n", 5, "number of users")
	fs.Int64Var(&generateSeed, "seed", 0, "seed for the generated users (default random)")
	rootCmd.AddCommand(generateCmd)
}

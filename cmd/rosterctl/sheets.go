package main

import (
	"github.com/spf13/cobra"

	"rosterlens/internal/service/excel"
)

func newSheetsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <file.xlsx>",
		Short: "List the sheets of a workbook with their row counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheets, err := excel.ListSheets(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sheets, root.compact)
		},
	}
}

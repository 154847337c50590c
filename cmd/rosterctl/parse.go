package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"rosterlens/internal/importer"
	"rosterlens/internal/model"
	"rosterlens/internal/parser"
	"rosterlens/internal/service/excel"
)

type parseOptions struct {
	sheet       string
	headerRow   int
	strict      bool
	aliasFile   string
	sampleSize  int
	failOnError bool
	report      string
}

func newParseCmd(root *rootOptions) *cobra.Command {
	opts := &parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a roster or employee workbook and print the parse response",
	}
	cmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "sheet name (default: active sheet)")
	cmd.PersistentFlags().IntVar(&opts.headerRow, "header-row", 0, "1-based header row (default: auto-detect)")
	cmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "promote ambiguity warnings to row errors")
	cmd.PersistentFlags().StringVar(&opts.aliasFile, "aliases", "", "TOML header alias table (default: built-in)")
	cmd.PersistentFlags().IntVar(&opts.sampleSize, "samples", 3, "sample rows kept per issue group")
	cmd.PersistentFlags().StringVar(&opts.report, "report", "", "also write an issue report workbook to this .xlsx path")
	cmd.PersistentFlags().BoolVar(&opts.failOnError, "fail-on-error", false, "exit non-zero when any error issue is reported")

	cmd.AddCommand(&cobra.Command{
		Use:   "roster <file.xlsx>",
		Short: "Parse a roster workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, root, opts, args[0], (*importer.Coordinator).ParseRoster)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "employees <file.xlsx>",
		Short: "Parse an employee workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, root, opts, args[0], (*importer.Coordinator).ParseEmployees)
		},
	})
	return cmd
}

type parseFunc func(*importer.Coordinator, context.Context, importer.ImportOptions) *model.ParseResponse

func runParse(cmd *cobra.Command, root *rootOptions, opts *parseOptions, path string, parse parseFunc) error {
	if opts.headerRow < 0 {
		return fmt.Errorf("--header-row must be >= 1, got %d", opts.headerRow)
	}
	resolver, err := parser.LoadResolver(opts.aliasFile)
	if err != nil {
		return err
	}

	mode := model.ParseModeLenient
	if opts.strict {
		mode = model.ParseModeStrict
	}
	coord := importer.NewCoordinator(resolver, importer.WithSampleSize(opts.sampleSize))
	resp := parse(coord, cmd.Context(), importer.ImportOptions{
		FilePath:  path,
		Sheet:     opts.sheet,
		HeaderRow: opts.headerRow,
		Mode:      mode,
	})
	if err := printJSON(cmd.OutOrStdout(), resp, root.compact); err != nil {
		return err
	}
	if opts.report != "" {
		if err := writeReport(resp, path, opts.report); err != nil {
			return err
		}
	}
	if opts.failOnError && resp.Summary.ErrorCount > 0 {
		return fmt.Errorf("%s: %d error issue(s)", resp.Summary.Status, resp.Summary.ErrorCount)
	}
	return nil
}

func writeReport(resp *model.ParseResponse, source, dst string) error {
	f, err := excel.NewExporter().ExportIssues(resp, filepath.Base(source))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(dst); err != nil {
		return fmt.Errorf("保存报告失败: %w", err)
	}
	return nil
}

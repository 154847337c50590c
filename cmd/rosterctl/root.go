package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rosterlens/internal/logger"
)

// rootOptions 全局参数
type rootOptions struct {
	logLevel string
	compact  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Parse roster and employee workbooks and build remediation plans",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init(logger.Options{Level: opts.logLevel, Format: "console", Writer: cmd.ErrOrStderr()})
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().BoolVar(&opts.compact, "compact", false, "print compact JSON")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newPlanCmd(opts))
	root.AddCommand(newSheetsCmd(opts))
	return root
}

// printJSON 输出 JSON 结果
func printJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("输出 JSON 失败: %w", err)
	}
	return nil
}

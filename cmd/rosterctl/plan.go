package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rosterlens/internal/actionplan"
	"rosterlens/internal/model"
)

func newPlanCmd(root *rootOptions) *cobra.Command {
	var (
		templates  string
		question   string
		hasHistory bool
		attach     string
	)
	cmd := &cobra.Command{
		Use:   "plan <validation.json>",
		Short: "Build the top-3 remediation plan from a validation result",
		Long: `Reads a compliance validation result (JSON, camelCase fields) and prints
the ranked action plan. Use "-" to read from stdin. With --attach=first_turn
a follow-up --question (detected against --history) prints null.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readValidation(cmd, args[0])
			if err != nil {
				return err
			}
			policy, err := actionplan.PolicyByName(attach)
			if err != nil {
				return err
			}
			opts := []actionplan.Option{actionplan.WithAttachPolicy(policy)}
			if templates != "" {
				data, err := os.ReadFile(templates)
				if err != nil {
					return fmt.Errorf("读取计划模板失败: %w", err)
				}
				tpl, err := actionplan.ParseTemplates(data)
				if err != nil {
					return err
				}
				opts = append(opts, actionplan.WithTemplates(tpl))
			}
			followUp := actionplan.IsFollowUp(question, hasHistory)
			return printJSON(cmd.OutOrStdout(), actionplan.New(opts...).BuildFor(v, question, followUp), root.compact)
		},
	}
	cmd.Flags().StringVar(&templates, "templates", "", "YAML template file (default: built-in)")
	cmd.Flags().StringVar(&question, "question", "", "question the plan answers")
	cmd.Flags().BoolVar(&hasHistory, "history", false, "the question continues an earlier conversation")
	cmd.Flags().StringVar(&attach, "attach", actionplan.AttachAlways, "attach policy: always|first_turn")
	return cmd
}

func readValidation(cmd *cobra.Command, path string) (*model.ValidationResult, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("读取校验结果失败: %w", err)
	}
	var v model.ValidationResult
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("解析校验结果失败: %w", err)
	}
	return &v, nil
}

package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"rosterlens/internal/model"
)

// 解析报告的工作表名
const (
	ReportSummarySheet = "Summary"
	ReportIssuesSheet  = "Issues"
	ReportGroupsSheet  = "Issue Groups"
)

// Exporter 解析报告导出器：把 ParseResponse 的问题列表写成工作簿，便于在表格软件中逐行修正
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportIssues 导出解析报告：汇总、问题明细、问题分组三张表
func (e *Exporter) ExportIssues(resp *model.ParseResponse, source string) (*excelize.File, error) {
	if resp == nil {
		return nil, fmt.Errorf("parse response is nil")
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ReportSummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("创建汇总表失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	steps := []func(*excelize.File, int) error{
		func(f *excelize.File, style int) error { return writeSummary(f, style, resp, source) },
		func(f *excelize.File, style int) error { return writeIssues(f, style, resp.Issues) },
		func(f *excelize.File, style int) error { return writeGroups(f, style, resp.IssueSummary) },
	}
	for _, step := range steps {
		if err := step(f, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSummary(f *excelize.File, style int, resp *model.ParseResponse, source string) error {
	s := resp.Summary
	data := [][]interface{}{
		{"Item", "Value"},
		{"Source", source},
		{"Status", string(s.Status)},
		{"Total issues", s.TotalIssues},
		{"Errors", s.ErrorCount},
		{"Warnings", s.WarningCount},
		{"Blocking", s.BlockingCount},
	}
	if r := resp.Roster(); r != nil {
		data = append(data,
			[]interface{}{"Shifts", r.TotalShifts()},
			[]interface{}{"Total hours", r.TotalHours().InexactFloat64()},
			[]interface{}{"Employees", r.UniqueEmployees()},
		)
	} else if emp := resp.Employees(); emp != nil {
		data = append(data, []interface{}{"Employees", len(emp.Entries)})
	}
	if err := writeRows(f, ReportSummarySheet, data); err != nil {
		return err
	}
	if err := f.SetRowStyle(ReportSummarySheet, 1, 1, style); err != nil {
		return fmt.Errorf("设置表头样式失败: %w", err)
	}
	return f.SetColWidth(ReportSummarySheet, "A", "B", 20)
}

func writeIssues(f *excelize.File, style int, list []model.ParseIssue) error {
	if _, err := f.NewSheet(ReportIssuesSheet); err != nil {
		return fmt.Errorf("创建问题表失败: %w", err)
	}
	data := [][]interface{}{{"Row", "Severity", "Code", "Column", "Value", "Message", "Hint"}}
	for _, i := range list {
		row := interface{}(i.Row)
		if i.Row == 0 {
			row = "file"
		}
		data = append(data, []interface{}{row, string(i.Severity), i.Code, i.Column, i.Value, i.Message, i.Hint})
	}
	if err := writeRows(f, ReportIssuesSheet, data); err != nil {
		return err
	}
	if err := f.SetRowStyle(ReportIssuesSheet, 1, 1, style); err != nil {
		return fmt.Errorf("设置表头样式失败: %w", err)
	}
	if err := f.SetColWidth(ReportIssuesSheet, "A", "E", 16); err != nil {
		return err
	}
	return f.SetColWidth(ReportIssuesSheet, "F", "G", 60)
}

func writeGroups(f *excelize.File, style int, groups []model.IssueGroupSummary) error {
	if _, err := f.NewSheet(ReportGroupsSheet); err != nil {
		return fmt.Errorf("创建问题分组表失败: %w", err)
	}
	data := [][]interface{}{{"Severity", "Code", "Column", "Count", "Sample rows", "Sample message"}}
	for _, g := range groups {
		rows := make([]string, len(g.SampleRows))
		for i, r := range g.SampleRows {
			rows[i] = fmt.Sprint(r)
		}
		msg := ""
		if len(g.SampleMessages) > 0 {
			msg = g.SampleMessages[0]
		}
		data = append(data, []interface{}{string(g.Severity), g.Code, g.Column, g.Count, strings.Join(rows, ", "), msg})
	}
	if err := writeRows(f, ReportGroupsSheet, data); err != nil {
		return err
	}
	if err := f.SetRowStyle(ReportGroupsSheet, 1, 1, style); err != nil {
		return fmt.Errorf("设置表头样式失败: %w", err)
	}
	return f.SetColWidth(ReportGroupsSheet, "A", "E", 18)
}

func writeRows(f *excelize.File, sheet string, data [][]interface{}) error {
	for i, values := range data {
		vals := values
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("写入 %s 第 %d 行失败: %w", sheet, i+1, err)
		}
	}
	return nil
}

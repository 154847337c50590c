// Package issues 汇总解析问题：整体状态、按 (code, column, severity) 分组与响应构造
package issues

import (
	"sort"

	"rosterlens/internal/model"
)

// DefaultSampleSize 每组保留的样例数
const DefaultSampleSize = 3

// Summarize 统计问题数量并推导整体状态：blocking > row_error > warning > ok
func Summarize(list []model.ParseIssue) model.ParseSummary {
	s := model.ParseSummary{TotalIssues: len(list)}
	for _, issue := range list {
		switch issue.Severity {
		case model.SeverityError:
			s.ErrorCount++
		case model.SeverityWarning:
			s.WarningCount++
		}
		if issue.IsBlocking() {
			s.BlockingCount++
		}
	}

	switch {
	case s.BlockingCount > 0:
		s.Status = model.StatusBlocking
	case s.ErrorCount > 0:
		s.Status = model.StatusRowError
	case s.WarningCount > 0:
		s.Status = model.StatusWarning
	default:
		s.Status = model.StatusOK
	}
	return s
}

type groupKey struct {
	code     string
	column   string
	severity model.Severity
}

// Group 按 (code, column, severity) 分组
// 排序：错误在前，数量降序，code 升序；其余保持首次出现顺序
func Group(list []model.ParseIssue, sampleSize int) []model.IssueGroupSummary {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	index := make(map[groupKey]int)
	groups := make([]model.IssueGroupSummary, 0)
	for _, issue := range list {
		key := groupKey{code: issue.Code, column: issue.Column, severity: issue.Severity}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.IssueGroupSummary{
				Code:           issue.Code,
				Column:         issue.Column,
				Severity:       issue.Severity,
				SampleRows:     []int{},
				SampleMessages: []string{},
			})
		}
		g := &groups[i]
		g.Count++
		if len(g.SampleRows) < sampleSize {
			g.SampleRows = append(g.SampleRows, issue.Row)
		}
		if len(g.SampleMessages) < sampleSize {
			g.SampleMessages = append(g.SampleMessages, issue.Message)
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ra, rb := severityRank(groups[a].Severity), severityRank(groups[b].Severity)
		if ra != rb {
			return ra < rb
		}
		if groups[a].Count != groups[b].Count {
			return groups[a].Count > groups[b].Count
		}
		return groups[a].Code < groups[b].Code
	})
	return groups
}

func severityRank(s model.Severity) int {
	if s == model.SeverityError {
		return 0
	}
	return 1
}

// BuildResponse 组装解析响应，issues 为 nil 时输出空列表
func BuildResponse(result any, list []model.ParseIssue, sampleSize int) *model.ParseResponse {
	if list == nil {
		list = []model.ParseIssue{}
	}
	return &model.ParseResponse{
		Result:       result,
		Issues:       list,
		Summary:      Summarize(list),
		IssueSummary: Group(list, sampleSize),
	}
}

// Blocking 构造只含单个整文件错误的响应
func Blocking(result any, code, message string) *model.ParseResponse {
	return BuildResponse(result, []model.ParseIssue{model.FileIssue(code, message)}, DefaultSampleSize)
}

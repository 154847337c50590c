package model

// ParseSummary 解析结果汇总
type ParseSummary struct {
	Status        ParseResultStatus `json:"status"`
	TotalIssues   int               `json:"totalIssues"`
	ErrorCount    int               `json:"errorCount"`
	WarningCount  int               `json:"warningCount"`
	BlockingCount int               `json:"blockingCount"`
}

// IssueGroupSummary 按 (code, column, severity) 聚合的问题组
type IssueGroupSummary struct {
	Code           string   `json:"code"`
	Column         string   `json:"column,omitempty"`
	Severity       Severity `json:"severity"`
	Count          int      `json:"count"`
	SampleRows     []int    `json:"sampleRows"`
	SampleMessages []string `json:"sampleMessages"`
}

// ParseResponse 解析调用返回的唯一契约对象，构造后不再修改
type ParseResponse struct {
	Result       any                 `json:"result"`
	Issues       []ParseIssue        `json:"issues"`
	Summary      ParseSummary        `json:"summary"`
	IssueSummary []IssueGroupSummary `json:"issueSummary"`
}

// Roster 返回排班结果（类型不符时为 nil）
func (r *ParseResponse) Roster() *RosterParseResult {
	switch v := r.Result.(type) {
	case *RosterParseResult:
		return v
	case RosterParseResult:
		return &v
	}
	return nil
}

// Employees 返回员工结果（类型不符时为 nil）
func (r *ParseResponse) Employees() *EmployeeParseResult {
	switch v := r.Result.(type) {
	case *EmployeeParseResult:
		return v
	case EmployeeParseResult:
		return &v
	}
	return nil
}

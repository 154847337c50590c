package model

// ValidationIssue 合规校验产生的单条问题（来自外部校验服务）
type ValidationIssue struct {
	ID            string `json:"id,omitempty"`
	ShiftID       string `json:"shiftId,omitempty"`
	EmployeeID    string `json:"employeeId,omitempty"`
	EmployeeName  string `json:"employeeName,omitempty"`
	CheckType     string `json:"checkType"`
	Severity      string `json:"severity"`
	Description   string `json:"description"`
	AffectedDates string `json:"affectedDates,omitempty"`
}

// ValidationResult 合规校验结果（计数 + 可选的问题明细）
type ValidationResult struct {
	ValidationID      string            `json:"validationId"`
	Status            string            `json:"status,omitempty"`
	TotalShifts       int               `json:"totalShifts" binding:"gte=0"`
	PassedShifts      int               `json:"passedShifts" binding:"gte=0"`
	FailedShifts      int               `json:"failedShifts" binding:"gte=0"`
	TotalIssues       int               `json:"totalIssues" binding:"gte=0"`
	CriticalIssues    int               `json:"criticalIssues" binding:"gte=0"`
	AffectedEmployees int               `json:"affectedEmployees" binding:"gte=0"`
	WeekStartDate     string            `json:"weekStartDate,omitempty"`
	WeekEndDate       string            `json:"weekEndDate,omitempty"`
	Issues            []ValidationIssue `json:"issues"`
}

// AffectedShift 受影响的班次样例
type AffectedShift struct {
	Employee    string `json:"employee"`
	Dates       string `json:"dates"`
	Description string `json:"description"`
}

// Action 整改动作
type Action struct {
	ID              string          `json:"id"`
	Priority        string          `json:"priority"`
	Title           string          `json:"title"`
	Owner           string          `json:"owner"`
	CheckType       string          `json:"checkType"`
	IssueCount      int             `json:"issueCount"`
	CriticalCount   int             `json:"criticalCount"`
	AffectedShifts  []AffectedShift `json:"affectedShifts"`
	WhatToChange    string          `json:"whatToChange"`
	Why             string          `json:"why"`
	ExpectedOutcome string          `json:"expectedOutcome"`
	RiskIfIgnored   string          `json:"riskIfIgnored"`
	FocusExamples   string          `json:"focusExamples"`
}

// QuickFollowUp 快捷追问
type QuickFollowUp struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Prompt   string `json:"prompt"`
	ActionID string `json:"actionId"`
}

// ActionPlan 排序后的前三项整改计划
type ActionPlan struct {
	Title          string          `json:"title"`
	ValidationID   string          `json:"validationId"`
	Actions        []Action        `json:"actions"`
	QuickFollowUps []QuickFollowUp `json:"quickFollowUps"`
}

package model

import "fmt"

// Severity 问题严重级别
type Severity string

const (
	SeverityError   Severity = "error"   // 行被丢弃
	SeverityWarning Severity = "warning" // 行保留，问题上报
)

// ParseMode 解析严格程度
type ParseMode string

const (
	ParseModeStrict  ParseMode = "strict"
	ParseModeLenient ParseMode = "lenient"
)

// ParseModeFrom 将外部输入转换为 ParseMode，无法识别时返回 false
func ParseModeFrom(s string) (ParseMode, bool) {
	switch ParseMode(s) {
	case ParseModeStrict:
		return ParseModeStrict, true
	case ParseModeLenient:
		return ParseModeLenient, true
	}
	return "", false
}

// ParseResultStatus 整体解析结果状态（由问题列表推导，不单独存储）
type ParseResultStatus string

const (
	StatusOK       ParseResultStatus = "ok"
	StatusWarning  ParseResultStatus = "warning"
	StatusRowError ParseResultStatus = "row_error"
	StatusBlocking ParseResultStatus = "blocking"
)

// 问题代码
const (
	// 整个文件级别（row = 0）
	CodeFileNotFound           = "FILE_NOT_FOUND"
	CodeUnsupportedFileType    = "UNSUPPORTED_FILE_TYPE"
	CodeFileReadError          = "FILE_READ_ERROR"
	CodeSheetNotFound          = "SHEET_NOT_FOUND"
	CodeInvalidHeaderRow       = "INVALID_HEADER_ROW"
	CodeEmptyFile              = "EMPTY_FILE"
	CodeMissingRequiredColumns = "MISSING_REQUIRED_COLUMNS"

	// 行级别
	CodeMissingRequiredField      = "MISSING_REQUIRED_FIELD"
	CodeInvalidEmail              = "INVALID_EMAIL"
	CodeInvalidDate               = "INVALID_DATE"
	CodeInvalidTime               = "INVALID_TIME"
	CodeOvernightAssumed          = "OVERNIGHT_ASSUMED"
	CodeFractionalValueRounded    = "FRACTIONAL_VALUE_ROUNDED"
	CodeInvalidDurationNegative   = "INVALID_DURATION_NEGATIVE"
	CodeMealBreakDurationMissing  = "MEAL_BREAK_DURATION_MISSING"
	CodeRestBreaksDurationMissing = "REST_BREAKS_DURATION_MISSING"
	CodeBreakExceedsShiftDuration = "BREAK_EXCEEDS_SHIFT_DURATION"
	CodeEmploymentTypeMissing     = "EMPLOYMENT_TYPE_MISSING"
	CodeEmploymentTypeUnknown     = "EMPLOYMENT_TYPE_UNRECOGNIZED"
	CodeDuplicateCanonicalColumn  = "DUPLICATE_CANONICAL_COLUMN_IN_ROW"
	CodeRowParseError             = "ROW_PARSE_ERROR"
)

// ParseIssue 解析问题（错误或警告），创建后不再修改
type ParseIssue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Row      int      `json:"row"` // 0 表示整个文件
	Column   string   `json:"column,omitempty"`
	Value    string   `json:"value,omitempty"`
	Hint     string   `json:"hint,omitempty"`
}

// IsBlocking 是否阻断整个导入
func (i ParseIssue) IsBlocking() bool {
	return i.Row == 0 && i.Severity == SeverityError
}

// AsError 返回同一问题的 ERROR 副本（严格模式升级用）
func (i ParseIssue) AsError() ParseIssue {
	i.Severity = SeverityError
	return i
}

// FileIssue 构造整个文件级别的阻断问题
func FileIssue(code, message string) ParseIssue {
	return ParseIssue{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Row:      0,
	}
}

// IssueError 行级致命问题，中止当前行
type IssueError struct {
	Issue ParseIssue
}

// NewIssueError 包装致命问题，保证其级别为 ERROR
func NewIssueError(issue ParseIssue) *IssueError {
	return &IssueError{Issue: issue.AsError()}
}

func (e *IssueError) Error() string {
	if e.Issue.Column != "" {
		return fmt.Sprintf("row %d %s: %s", e.Issue.Row, e.Issue.Column, e.Issue.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Issue.Row, e.Issue.Message)
}

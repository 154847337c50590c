package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"rosterlens/internal/model"
)

const (
	hintDate       = "Expected formats: YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY, or Excel date number"
	hintTime       = "Expected formats: HH:MM (24-hour), H:MM AM/PM, or Excel time number"
	hintTimeRange  = "Use separate 'Start Time' and 'End Time' columns."
	hintWholeMin   = "Duration should be a whole number in minutes"
	hintNegative   = "Duration must be a positive number in minutes"
	hintEmployment = "Use full-time, part-time, or casual."
)

// validator.Validate 可并发使用
var validate = validator.New()

// IsValidEmail 邮箱格式校验
func IsValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// rowContext 单行解析上下文：收集警告，严格模式下将可升级的警告转为致命错误
type rowContext struct {
	row      int
	mode     model.ParseMode
	warnings []model.ParseIssue
}

func newRowContext(row int, mode model.ParseMode) *rowContext {
	return &rowContext{row: row, mode: mode}
}

func (c *rowContext) warn(issue model.ParseIssue) {
	issue.Severity = model.SeverityWarning
	issue.Row = c.row
	c.warnings = append(c.warnings, issue)
}

// escalate 宽松模式记为警告，严格模式中止该行
func (c *rowContext) escalate(issue model.ParseIssue) error {
	if c.mode == model.ParseModeStrict {
		return c.fail(issue)
	}
	c.warn(issue)
	return nil
}

func (c *rowContext) fail(issue model.ParseIssue) error {
	issue.Row = c.row
	return model.NewIssueError(issue)
}

// reportDuplicates 处理同一行中多列映射到同一字段
func (c *rowContext) reportDuplicates(duplicates []Duplicate) error {
	for _, d := range duplicates {
		err := c.escalate(model.ParseIssue{
			Code:    model.CodeDuplicateCanonicalColumn,
			Message: fmt.Sprintf("Multiple columns map to '%s': %s", d.Field, strings.Join(d.Headers, ", ")),
			Column:  string(d.Field),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *rowContext) requireString(row CanonicalRow, f Field, message string) (string, error) {
	s := GetString(row.Get(f))
	if s == "" {
		return "", c.fail(model.ParseIssue{
			Code:    model.CodeMissingRequiredField,
			Message: message,
			Column:  string(f),
		})
	}
	return s, nil
}

func (c *rowContext) optionalEmail(row CanonicalRow, f Field) (string, error) {
	email := GetString(row.Get(f))
	if email == "" || IsValidEmail(email) {
		return email, nil
	}
	return "", c.fail(model.ParseIssue{
		Code:    model.CodeInvalidEmail,
		Message: "Invalid email format: " + email,
		Column:  string(f),
		Value:   email,
	})
}

func (c *rowContext) date(row CanonicalRow, f Field, hint string) (*model.Date, error) {
	raw := row.Get(f)
	d, err := ParseDate(raw)
	if err != nil {
		return nil, c.fail(model.ParseIssue{
			Code:    model.CodeInvalidDate,
			Message: err.Error(),
			Column:  string(f),
			Value:   GetString(raw),
			Hint:    hint,
		})
	}
	return d, nil
}

func (c *rowContext) timeOfDay(row CanonicalRow, f Field, label string) (model.TimeOfDay, error) {
	raw := row.Get(f)
	t, err := ParseTime(raw)
	if err != nil {
		hint := hintTime
		var rangeErr *TimeRangeError
		if errors.As(err, &rangeErr) {
			hint = hintTimeRange
		}
		return 0, c.fail(model.ParseIssue{
			Code:    model.CodeInvalidTime,
			Message: err.Error(),
			Column:  string(f),
			Value:   GetString(raw),
			Hint:    hint,
		})
	}
	if t == nil {
		return 0, c.fail(model.ParseIssue{
			Code:    model.CodeMissingRequiredField,
			Message: label + " is required",
			Column:  string(f),
		})
	}
	return *t, nil
}

// duration 解析休息分钟数：小数取整提示、负数置空提示
func (c *rowContext) duration(row CanonicalRow, f Field, label string) *int {
	raw := row.Get(f)
	minutes, note := ParseInt(raw)
	if note != "" {
		c.warn(model.ParseIssue{
			Code:    model.CodeFractionalValueRounded,
			Message: note,
			Column:  string(f),
			Value:   GetString(raw),
			Hint:    hintWholeMin,
		})
	}
	if minutes != nil && *minutes < 0 {
		c.warn(model.ParseIssue{
			Code:    model.CodeInvalidDurationNegative,
			Message: fmt.Sprintf("%s duration cannot be negative: %d", label, *minutes),
			Column:  string(f),
			Value:   fmt.Sprint(*minutes),
			Hint:    hintNegative,
		})
		return nil
	}
	return minutes
}

package parser

import (
	"fmt"
	"math"
	"strings"

	"rosterlens/internal/model"
)

// ParseRosterRow 解析排班行
// 返回的 error 为 *model.IssueError 时该行被丢弃，此时警告不返回
func ParseRosterRow(row model.SheetRow, resolver *Resolver, mode model.ParseMode) (*model.RosterEntry, []model.ParseIssue, error) {
	ctx := newRowContext(row.Row, mode)
	canonical, duplicates := resolver.Normalize(row)
	if err := ctx.reportDuplicates(duplicates); err != nil {
		return nil, nil, err
	}

	number, err := ctx.requireString(canonical, FieldEmployeeNumber, "Employee Number is required for roster import (email is optional)")
	if err != nil {
		return nil, nil, err
	}
	email, err := ctx.optionalEmail(canonical, FieldEmployeeEmail)
	if err != nil {
		return nil, nil, err
	}

	date, err := ctx.date(canonical, FieldDate, hintDate)
	if err != nil {
		return nil, nil, err
	}
	if date == nil {
		return nil, nil, ctx.fail(model.ParseIssue{
			Code:    model.CodeMissingRequiredField,
			Message: "Date is required",
			Column:  string(FieldDate),
		})
	}

	start, err := ctx.timeOfDay(canonical, FieldStartTime, "Start Time")
	if err != nil {
		return nil, nil, err
	}
	end, err := ctx.timeOfDay(canonical, FieldEndTime, "End Time")
	if err != nil {
		return nil, nil, err
	}

	// 显式填写 is_overnight 时以其为准，否则结束早于开始即视为跨夜
	rawOvernight := canonical.Get(FieldIsOvernight)
	explicit := rawOvernight != nil && GetString(rawOvernight) != ""
	overnight := end < start
	if explicit {
		overnight = ParseBool(rawOvernight)
	} else if overnight {
		err := ctx.escalate(model.ParseIssue{
			Code:    model.CodeOvernightAssumed,
			Message: "end_time is earlier than start_time; overnight assumed",
			Column:  string(FieldEndTime),
			Value:   start.String() + "-" + end.String(),
			Hint:    "Confirm end time or set 'Is Overnight' explicitly.",
		})
		if err != nil {
			return nil, nil, err
		}
	}

	hasMeal := ParseBool(canonical.Get(FieldHasMealBreak))
	meal := ctx.duration(canonical, FieldMealBreakDuration, "Meal break")
	if hasMeal && meal == nil {
		ctx.warn(model.ParseIssue{
			Code:    model.CodeMealBreakDurationMissing,
			Message: "has_meal_break=true but meal_break_duration is missing",
			Column:  string(FieldMealBreakDuration),
		})
	}

	hasRest := ParseBool(canonical.Get(FieldHasRestBreaks))
	rest := ctx.duration(canonical, FieldRestBreaksDuration, "Rest breaks")
	if hasRest && rest == nil {
		ctx.warn(model.ParseIssue{
			Code:    model.CodeRestBreaksDurationMissing,
			Message: "has_rest_breaks=true but rest_breaks_duration is missing",
			Column:  string(FieldRestBreaksDuration),
		})
	}

	entry := &model.RosterEntry{
		ExcelRow:           row.Row,
		EmployeeEmail:      email,
		EmployeeNumber:     number,
		EmployeeName:       GetString(canonical.Get(FieldEmployeeName)),
		Date:               *date,
		StartTime:          start,
		EndTime:            end,
		IsOvernight:        overnight,
		HasMealBreak:       hasMeal,
		MealBreakDuration:  meal,
		HasRestBreaks:      hasRest,
		RestBreaksDuration: rest,
		IsPublicHoliday:    ParseBool(canonical.Get(FieldIsPublicHoliday)),
		PublicHolidayName:  GetString(canonical.Get(FieldPublicHolidayName)),
		IsOnCall:           ParseBool(canonical.Get(FieldIsOnCall)),
		Location:           GetString(canonical.Get(FieldLocation)),
		Notes:              GetString(canonical.Get(FieldNotes)),
	}

	checkBreaks(ctx, entry)

	if err := checkEmploymentType(ctx, canonical, entry); err != nil {
		return nil, nil, err
	}

	return entry, ctx.warnings, nil
}

// checkBreaks 休息总分钟数超过班次时长时提示
func checkBreaks(ctx *rowContext, entry *model.RosterEntry) {
	total := entry.BreakMinutes()
	if total <= 0 {
		return
	}
	shiftMinutes := int(math.RoundToEven(float64(entry.ShiftSeconds()) / 60))
	if shiftMinutes <= 0 || total <= shiftMinutes {
		return
	}
	column := FieldRestBreaksDuration
	if entry.MealBreakDuration != nil && *entry.MealBreakDuration != 0 {
		column = FieldMealBreakDuration
	}
	ctx.warn(model.ParseIssue{
		Code: model.CodeBreakExceedsShiftDuration,
		Message: fmt.Sprintf("Total break minutes (%d) exceed shift duration minutes (%d). This will distort net-hours calculations.",
			total, shiftMinutes),
		Column: string(column),
		Value:  fmt.Sprint(total),
		Hint:   "Fix break durations or shift times so breaks do not exceed the shift length.",
	})
}

// checkEmploymentType 用工类型缺失或无法识别；无法识别时保留原文
func checkEmploymentType(ctx *rowContext, canonical CanonicalRow, entry *model.RosterEntry) error {
	raw := GetString(canonical.Get(FieldEmploymentType))
	if raw == "" {
		return ctx.escalate(model.ParseIssue{
			Code:    model.CodeEmploymentTypeMissing,
			Message: "employment_type is missing",
			Column:  string(FieldEmploymentType),
			Hint:    hintEmployment,
		})
	}
	if normalized := NormalizeEmploymentType(raw); normalized != "" {
		entry.EmploymentType = normalized
		return nil
	}
	entry.EmploymentType = strings.TrimSpace(raw)
	return ctx.escalate(model.ParseIssue{
		Code:    model.CodeEmploymentTypeUnknown,
		Message: "employment_type is unrecognized: " + raw,
		Column:  string(FieldEmploymentType),
		Value:   raw,
		Hint:    hintEmployment,
	})
}

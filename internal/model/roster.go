package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Hours 两位小数定点工时，JSON 中输出为数字（如 7.50）
type Hours struct {
	decimal.Decimal
}

// HoursFromSeconds 秒数换算为小时（四舍五入到两位）
func HoursFromSeconds(seconds int64) Hours {
	return Hours{decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600)).Round(2)}
}

// MarshalJSON 固定两位小数
func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(h.StringFixed(2)), nil
}

// UnmarshalJSON 兼容数字或字符串
func (h *Hours) UnmarshalJSON(b []byte) error {
	return h.Decimal.UnmarshalJSON(b)
}

// RosterEntry 排班行（一个班次）
type RosterEntry struct {
	ExcelRow           int       `json:"excelRow"`
	EmployeeEmail      string    `json:"employeeEmail,omitempty"`
	EmployeeNumber     string    `json:"employeeNumber"`
	EmployeeName       string    `json:"employeeName,omitempty"`
	EmploymentType     string    `json:"employmentType,omitempty"`
	Date               Date      `json:"date"`
	StartTime          TimeOfDay `json:"startTime"`
	EndTime            TimeOfDay `json:"endTime"`
	IsOvernight        bool      `json:"isOvernight"`
	HasMealBreak       bool      `json:"hasMealBreak"`
	MealBreakDuration  *int      `json:"mealBreakDuration"`
	HasRestBreaks      bool      `json:"hasRestBreaks"`
	RestBreaksDuration *int      `json:"restBreaksDuration"`
	IsPublicHoliday    bool      `json:"isPublicHoliday"`
	PublicHolidayName  string    `json:"publicHolidayName,omitempty"`
	IsOnCall           bool      `json:"isOnCall"`
	Location           string    `json:"location,omitempty"`
	Notes              string    `json:"notes,omitempty"`
}

// ShiftSeconds 班次跨度（秒），跨夜时结束时间加 24 小时
func (e *RosterEntry) ShiftSeconds() int64 {
	end := int64(e.EndTime)
	if e.IsOvernight {
		end += secondsPerDay
	}
	return end - int64(e.StartTime)
}

// BreakMinutes 用餐 + 休息分钟数
func (e *RosterEntry) BreakMinutes() int {
	total := 0
	if e.MealBreakDuration != nil {
		total += *e.MealBreakDuration
	}
	if e.RestBreaksDuration != nil {
		total += *e.RestBreaksDuration
	}
	return total
}

// DurationHours 毛工时（扣除休息前）
func (e *RosterEntry) DurationHours() Hours {
	return HoursFromSeconds(e.ShiftSeconds())
}

// NetHours 净工时 = 毛工时 - 休息分钟 / 60
func (e *RosterEntry) NetHours() Hours {
	breakHours := decimal.NewFromInt(int64(e.BreakMinutes())).Div(decimal.NewFromInt(60))
	return Hours{e.DurationHours().Sub(breakHours).Round(2)}
}

// MarshalJSON 追加计算字段 durationHours / netHours
func (e RosterEntry) MarshalJSON() ([]byte, error) {
	type plain RosterEntry
	return json.Marshal(struct {
		plain
		DurationHours Hours `json:"durationHours"`
		NetHours      Hours `json:"netHours"`
	}{
		plain:         plain(e),
		DurationHours: e.DurationHours(),
		NetHours:      e.NetHours(),
	})
}

// RawRow 回显给前端的原始行（规范化列名 + 额外列）
type RawRow map[string]any

// RosterParseResult 排班文件解析结果
type RosterParseResult struct {
	Entries []*RosterEntry `json:"entries"`
	RawRows []RawRow       `json:"rawRows"`
}

// WeekStartDate 最早班次日期
func (r *RosterParseResult) WeekStartDate() *Date {
	if len(r.Entries) == 0 {
		return nil
	}
	earliest := r.Entries[0].Date
	for _, e := range r.Entries[1:] {
		if e.Date.Before(earliest.Time) {
			earliest = e.Date
		}
	}
	return &earliest
}

// WeekEndDate 最晚班次日期
func (r *RosterParseResult) WeekEndDate() *Date {
	if len(r.Entries) == 0 {
		return nil
	}
	latest := r.Entries[0].Date
	for _, e := range r.Entries[1:] {
		if e.Date.After(latest.Time) {
			latest = e.Date
		}
	}
	return &latest
}

// TotalShifts 班次数
func (r *RosterParseResult) TotalShifts() int {
	return len(r.Entries)
}

// TotalHours 所有班次毛工时合计
func (r *RosterParseResult) TotalHours() Hours {
	total := decimal.Zero
	for _, e := range r.Entries {
		total = total.Add(e.DurationHours().Decimal)
	}
	return Hours{total.Round(2)}
}

// UniqueEmployees 去重员工数：优先员工编号，其次邮箱
func (r *RosterParseResult) UniqueEmployees() int {
	keys := make(map[string]struct{}, len(r.Entries))
	for _, e := range r.Entries {
		switch {
		case strings.TrimSpace(e.EmployeeNumber) != "":
			keys["num:"+strings.ToLower(strings.TrimSpace(e.EmployeeNumber))] = struct{}{}
		case strings.TrimSpace(e.EmployeeEmail) != "":
			keys["email:"+strings.ToLower(strings.TrimSpace(e.EmployeeEmail))] = struct{}{}
		default:
			keys["unknown"] = struct{}{}
		}
	}
	return len(keys)
}

// MarshalJSON 追加汇总计算字段
func (r RosterParseResult) MarshalJSON() ([]byte, error) {
	entries := r.Entries
	if entries == nil {
		entries = []*RosterEntry{}
	}
	rawRows := r.RawRows
	if rawRows == nil {
		rawRows = []RawRow{}
	}
	return json.Marshal(struct {
		Entries         []*RosterEntry `json:"entries"`
		RawRows         []RawRow       `json:"rawRows"`
		WeekStartDate   *Date          `json:"weekStartDate"`
		WeekEndDate     *Date          `json:"weekEndDate"`
		TotalShifts     int            `json:"totalShifts"`
		TotalHours      Hours          `json:"totalHours"`
		UniqueEmployees int            `json:"uniqueEmployees"`
	}{
		Entries:         entries,
		RawRows:         rawRows,
		WeekStartDate:   r.WeekStartDate(),
		WeekEndDate:     r.WeekEndDate(),
		TotalShifts:     r.TotalShifts(),
		TotalHours:      r.TotalHours(),
		UniqueEmployees: r.UniqueEmployees(),
	})
}

// EmployeeEntry 员工行
type EmployeeEntry struct {
	ExcelRow   int    `json:"excelRow"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	StartDate  *Date  `json:"startDate"`
}

// EmployeeParseResult 员工文件解析结果
type EmployeeParseResult struct {
	Entries []*EmployeeEntry `json:"entries"`
	RawRows []RawRow         `json:"rawRows"`
}

// MarshalJSON 空列表输出为 []
func (r EmployeeParseResult) MarshalJSON() ([]byte, error) {
	type plain EmployeeParseResult
	p := plain(r)
	if p.Entries == nil {
		p.Entries = []*EmployeeEntry{}
	}
	if p.RawRows == nil {
		p.RawRows = []RawRow{}
	}
	return json.Marshal(p)
}

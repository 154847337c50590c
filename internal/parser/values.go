package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rosterlens/internal/model"
)

// TimeRangeError 单元格中写的是时间区间而非单个时间
type TimeRangeError struct {
	Value string
}

func (e *TimeRangeError) Error() string {
	return fmt.Sprintf("Time range detected: '%s'. Please use separate 'Start Time' and 'End Time' columns.", e.Value)
}

var employmentTypes = map[string]string{
	"fulltime": "full-time",
	"ft":       "full-time",
	"parttime": "part-time",
	"pt":       "part-time",
	"casual":   "casual",
	"cas":      "casual",
}

// Excel (Windows) 日期序列号的零点
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"2006/1/2",
	"2.1.2006",
}

var (
	timeRangePattern = regexp.MustCompile(`(?i)\d{1,2}(?::\d{2})?\s*(?:[-~～–—]|\bto\b)\s*\d{1,2}(?::\d{2})?`)
	clockPattern     = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?$`)
	digitsPattern    = regexp.MustCompile(`^\d+$`)
)

// GetString 转为去空格的字符串，空值返回 ""
func GetString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case model.Date:
		return val.String()
	case model.TimeOfDay:
		return val.String()
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// NormalizeEmploymentType 归一化用工类型；无法识别返回 ""
func NormalizeEmploymentType(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	return employmentTypes[key]
}

// ParseDate 解析日期：Excel 序列号或常见文本格式；空值返回 nil
func ParseDate(v any) (*model.Date, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case model.Date:
		return &val, nil
	case time.Time:
		d := model.DateOf(val)
		return &d, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("Invalid Excel date number: %v", val)
		}
		days := math.Trunc(val)
		if math.Abs(days) > 3_000_000 {
			return nil, fmt.Errorf("Invalid Excel date number: %s", formatNumber(val))
		}
		d := model.DateOf(excelEpoch.AddDate(0, 0, int(days)))
		if d.Year() < 1 || d.Year() > 9999 {
			return nil, fmt.Errorf("Invalid Excel date number: %s", formatNumber(val))
		}
		return &d, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				d := model.DateOf(t)
				return &d, nil
			}
		}
		return nil, fmt.Errorf("Unable to parse date: %s. Expected formats: YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY, etc.", s)
	default:
		return nil, fmt.Errorf("Invalid date type: %T", v)
	}
}

// ParseTime 解析时刻：Excel 小数天或文本（24 小时制、AM/PM、单独小时）
// 先检测时间区间，命中时返回 *TimeRangeError
func ParseTime(v any) (*model.TimeOfDay, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case model.TimeOfDay:
		return &val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("Unable to parse time: %v", val)
		}
		seconds := math.Mod(math.RoundToEven(val*secondsInDay), secondsInDay)
		t := model.NewTimeOfDay(0, 0, int(seconds))
		return &t, nil
	case string:
		return parseTimeText(val)
	default:
		return nil, fmt.Errorf("Invalid time type: %T", v)
	}
}

const secondsInDay = 24 * 60 * 60

func parseTimeText(raw string) (*model.TimeOfDay, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if timeRangePattern.MatchString(s) {
		return nil, &TimeRangeError{Value: s}
	}

	upper := strings.ToUpper(s)
	isPM := strings.Contains(upper, "PM")
	isAM := strings.Contains(upper, "AM")
	body := strings.TrimSpace(strings.NewReplacer("AM", "", "PM", "").Replace(upper))

	adjust := func(hour int) int {
		switch {
		case isPM && hour < 12:
			return hour + 12
		case isAM && hour == 12:
			return 0
		}
		return hour
	}

	if digitsPattern.MatchString(body) {
		if hour, err := strconv.Atoi(body); err == nil {
			hour = adjust(hour)
			if hour >= 0 && hour <= 23 {
				t := model.NewTimeOfDay(hour, 0, 0)
				return &t, nil
			}
		}
	}

	if m := clockPattern.FindStringSubmatch(body); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		second := 0
		if m[3] != "" {
			second, _ = strconv.Atoi(m[3])
		}
		if hour <= 23 && minute <= 59 && second <= 59 {
			t := model.NewTimeOfDay(adjust(hour), minute, second)
			return &t, nil
		}
	}

	return nil, fmt.Errorf("Unable to parse time: %s", body)
}

// ParseBool 宽松布尔解析，从不报错；无法识别时为 false
func ParseBool(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0 && !math.IsNaN(val)
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		switch s {
		case "true", "yes", "y", "1", "on":
			return true
		case "false", "no", "n", "0", "off", "":
			return false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f != 0 && !math.IsNaN(f)
		}
		return false
	}
	return false
}

// ParseInt 解析整数分钟数；带小数时四舍六入五成双并返回提示
// 非数字文本及超出 int32 范围的数值返回 nil 且无提示
func ParseInt(v any) (*int, string) {
	switch val := v.(type) {
	case nil:
		return nil, ""
	case int:
		return &val, ""
	case float64:
		if !inIntRange(val) {
			return nil, ""
		}
		rounded := int(math.RoundToEven(val))
		if val != math.Trunc(val) {
			return &rounded, fmt.Sprintf("Value %s has decimal part, rounded to %d", formatNumber(val), rounded)
		}
		return &rounded, ""
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, ""
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !inIntRange(f) {
			return nil, ""
		}
		rounded := int(math.RoundToEven(f))
		if f != math.Trunc(f) {
			return &rounded, fmt.Sprintf("Value '%s' has decimal part, rounded to %d", s, rounded)
		}
		return &rounded, ""
	}
	return nil, ""
}

// inIntRange 排除 NaN、Inf 及转换为 int 会溢出的数值
func inIntRange(f float64) bool {
	return !math.IsNaN(f) && math.Abs(f) <= math.MaxInt32
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date 日历日期（UTC 零点，无时区含义）
type Date struct {
	time.Time
}

// NewDate 创建日期
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf 截取时间的日期部分
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// String ISO 格式
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON 输出 "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON 解析 "YYYY-MM-DD"
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// TimeOfDay 一天内的时刻（自零点起的秒数，0 <= t < 86400）
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// NewTimeOfDay 创建时刻，超出一天的部分回绕
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	total := (hour*3600 + minute*60 + second) % secondsPerDay
	if total < 0 {
		total += secondsPerDay
	}
	return TimeOfDay(total)
}

// Hour 小时
func (t TimeOfDay) Hour() int { return int(t) / 3600 }

// Minute 分钟
func (t TimeOfDay) Minute() int { return (int(t) % 3600) / 60 }

// Second 秒
func (t TimeOfDay) Second() int { return int(t) % 60 }

// String 输出 "HH:MM:SS"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// MarshalJSON 输出 "HH:MM:SS"
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON 解析 "HH:MM:SS" 或 "HH:MM"
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	var h, m, sec int
	if n, _ := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); n < 2 {
		return fmt.Errorf("invalid time %q", s)
	}
	*t = NewTimeOfDay(h, m, sec)
	return nil
}

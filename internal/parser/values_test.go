package parser

import (
	"errors"
	"math"
	"testing"

	"rosterlens/internal/model"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{"2024-01-15", "2024-01-15"},
		{"15/01/2024", "2024-01-15"},
		{"01/15/2024", "2024-01-15"},
		{"15-01-2024", "2024-01-15"},
		{"2024/01/15", "2024-01-15"},
		{"15.01.2024", "2024-01-15"},
		{"  2024-1-5 ", "2024-01-05"},
		{45306.0, "2024-01-15"},
		{45306.75, "2024-01-15"},
		{44927.0, "2023-01-01"},
	}
	for _, c := range cases {
		got, err := ParseDate(c.in)
		if err != nil {
			t.Fatalf("ParseDate(%v) err: %v", c.in, err)
		}
		if got == nil || got.String() != c.want {
			t.Fatalf("ParseDate(%v) want=%s got=%v", c.in, c.want, got)
		}
	}
}

func TestParseDate_DayFirstWinsWhenAmbiguous(t *testing.T) {
	t.Parallel()

	got, err := ParseDate("03/04/2024")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.String() != "2024-04-03" {
		t.Fatalf("want=2024-04-03 got=%s", got)
	}
}

func TestParseDate_EmptyAndInvalid(t *testing.T) {
	t.Parallel()

	for _, in := range []any{nil, "", "   "} {
		got, err := ParseDate(in)
		if err != nil || got != nil {
			t.Fatalf("ParseDate(%q) want nil,nil got %v,%v", in, got, err)
		}
	}

	_, err := ParseDate("not-a-date")
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "Unable to parse date: not-a-date. Expected formats: YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY, etc."
	if err.Error() != want {
		t.Fatalf("message want=%q got=%q", want, err.Error())
	}

	if _, err := ParseDate(true); err == nil {
		t.Fatalf("expected type error for bool")
	}
	if _, err := ParseDate(1e12); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{"09:00", "09:00:00"},
		{"9:30", "09:30:00"},
		{"17:45:10", "17:45:10"},
		{"9:30 PM", "21:30:00"},
		{"9:30pm", "21:30:00"},
		{"12:15 AM", "00:15:00"},
		{"12:00 PM", "12:00:00"},
		{"9 AM", "09:00:00"},
		{"5 PM", "17:00:00"},
		{"12 AM", "00:00:00"},
		{"17", "17:00:00"},
		{0.375, "09:00:00"},
		{0.5, "12:00:00"},
		{1.25, "06:00:00"},
		{0.0, "00:00:00"},
	}
	for _, c := range cases {
		got, err := ParseTime(c.in)
		if err != nil {
			t.Fatalf("ParseTime(%v) err: %v", c.in, err)
		}
		if got == nil || got.String() != c.want {
			t.Fatalf("ParseTime(%v) want=%s got=%v", c.in, c.want, got)
		}
	}
}

func TestParseTime_Ranges(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"9:00-17:00", "9-5", "9:00 to 17:00", "09:00～18:00", "9 TO 5", "8:00 – 16:00"} {
		_, err := ParseTime(in)
		var rangeErr *TimeRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("ParseTime(%q) want range error got %v", in, err)
		}
	}

	_, err := ParseTime("9:00-17:00")
	want := "Time range detected: '9:00-17:00'. Please use separate 'Start Time' and 'End Time' columns."
	if err.Error() != want {
		t.Fatalf("message want=%q got=%q", want, err.Error())
	}
}

func TestParseTime_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []any{"25:00", "abc", "10:75", "24", true} {
		if _, err := ParseTime(in); err == nil {
			t.Fatalf("ParseTime(%v) expected error", in)
		}
	}
	got, err := ParseTime("  ")
	if err != nil || got != nil {
		t.Fatalf("blank time want nil,nil got %v,%v", got, err)
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	truthy := []any{true, "true", "YES", " y ", "1", "on", 1.0, "2.5", -1.0}
	for _, v := range truthy {
		if !ParseBool(v) {
			t.Fatalf("ParseBool(%v) want true", v)
		}
	}
	falsy := []any{nil, false, "false", "No", "n", "0", "off", "", 0.0, "maybe", "0.0"}
	for _, v := range falsy {
		if ParseBool(v) {
			t.Fatalf("ParseBool(%v) want false", v)
		}
	}
}

func TestParseInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       any
		want     *int
		wantNote string
	}{
		{nil, nil, ""},
		{30.0, intPtr(30), ""},
		{"45", intPtr(45), ""},
		{30.4, intPtr(30), "Value 30.4 has decimal part, rounded to 30"},
		{30.5, intPtr(30), "Value 30.5 has decimal part, rounded to 30"},
		{31.5, intPtr(32), "Value 31.5 has decimal part, rounded to 32"},
		{"15.5", intPtr(16), "Value '15.5' has decimal part, rounded to 16"},
		{"abc", nil, ""},
		{"", nil, ""},
		{-10.0, intPtr(-10), ""},
		{"1e30", nil, ""},
		{-1e30, nil, ""},
		{float64(math.MaxInt32), intPtr(math.MaxInt32), ""},
	}
	for _, c := range cases {
		got, note := ParseInt(c.in)
		if (got == nil) != (c.want == nil) || (got != nil && *got != *c.want) {
			t.Fatalf("ParseInt(%v) want=%v got=%v", c.in, deref(c.want), deref(got))
		}
		if note != c.wantNote {
			t.Fatalf("ParseInt(%v) note want=%q got=%q", c.in, c.wantNote, note)
		}
	}
}

func TestNormalizeEmploymentType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Full Time": "full-time",
		"full_time": "full-time",
		"FT":        "full-time",
		"part-time": "part-time",
		"PT":        "part-time",
		"Casual":    "casual",
		"cas":       "casual",
		"contract":  "",
		"":          "",
	}
	for in, want := range cases {
		if got := NormalizeEmploymentType(in); got != want {
			t.Fatalf("NormalizeEmploymentType(%q) want=%q got=%q", in, want, got)
		}
	}
}

func TestGetString(t *testing.T) {
	t.Parallel()

	if got := GetString(1001.0); got != "1001" {
		t.Fatalf("want=1001 got=%q", got)
	}
	if got := GetString("  E1 "); got != "E1" {
		t.Fatalf("want=E1 got=%q", got)
	}
	if got := GetString(nil); got != "" {
		t.Fatalf("want empty got=%q", got)
	}
	if got := GetString(model.NewTimeOfDay(9, 0, 0)); got != "09:00:00" {
		t.Fatalf("want=09:00:00 got=%q", got)
	}
}

func intPtr(v int) *int { return &v }

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

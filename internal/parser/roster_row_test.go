package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rosterlens/internal/model"
)

func rosterRow(n int, kv ...any) model.SheetRow {
	row := model.SheetRow{Row: n}
	for i := 0; i+1 < len(kv); i += 2 {
		row.Cells = append(row.Cells, model.Cell{Header: kv[i].(string), Value: kv[i+1]})
	}
	return row
}

func baseRosterRow(n int, extra ...any) model.SheetRow {
	kv := []any{
		"Employee Number", "E1",
		"Employee Email", "a@x.com",
		"Employee Name", "Alice",
		"Employment Type", "Full Time",
		"Date", "2024-01-15",
		"Start Time", "09:00",
		"End Time", "17:00",
	}
	return rosterRow(n, append(kv, extra...)...)
}

func issueCodes(issues []model.ParseIssue) []string {
	codes := make([]string, 0, len(issues))
	for _, i := range issues {
		codes = append(codes, i.Code)
	}
	return codes
}

func fatalIssue(t *testing.T, err error) model.ParseIssue {
	t.Helper()
	var ie *model.IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *model.IssueError, got %v", err)
	}
	if ie.Issue.Severity != model.SeverityError {
		t.Fatalf("fatal issue must be error severity, got %s", ie.Issue.Severity)
	}
	return ie.Issue
}

func TestParseRosterRow_Clean(t *testing.T) {
	t.Parallel()

	entry, warnings, err := ParseRosterRow(baseRosterRow(2, "Location", "Store 1", "Shift Code", "X"), DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", issueCodes(warnings))
	}
	if entry.ExcelRow != 2 || entry.EmployeeNumber != "E1" || entry.EmployeeEmail != "a@x.com" {
		t.Fatalf("unexpected entry identity: %+v", entry)
	}
	if entry.EmploymentType != "full-time" {
		t.Fatalf("employmentType want=full-time got=%s", entry.EmploymentType)
	}
	if entry.Date.String() != "2024-01-15" || entry.StartTime.String() != "09:00:00" || entry.EndTime.String() != "17:00:00" {
		t.Fatalf("unexpected schedule: %s %s %s", entry.Date, entry.StartTime, entry.EndTime)
	}
	if entry.IsOvernight {
		t.Fatalf("not overnight")
	}
	if entry.Location != "Store 1" {
		t.Fatalf("location want=Store 1 got=%q", entry.Location)
	}
	if got := entry.DurationHours().StringFixed(2); got != "8.00" {
		t.Fatalf("durationHours want=8.00 got=%s", got)
	}
}

func TestParseRosterRow_MissingEmployeeNumber(t *testing.T) {
	t.Parallel()

	_, warnings, err := ParseRosterRow(rosterRow(3, "Employee Email", "a@x.com", "Date", "2024-01-15"), DefaultResolver(), model.ParseModeLenient)
	issue := fatalIssue(t, err)
	if warnings != nil {
		t.Fatalf("warnings must be discarded for a dropped row")
	}
	if issue.Code != model.CodeMissingRequiredField || issue.Column != "employee_number" || issue.Row != 3 {
		t.Fatalf("unexpected issue: %+v", issue)
	}
	if issue.Message != "Employee Number is required for roster import (email is optional)" {
		t.Fatalf("unexpected message: %s", issue.Message)
	}
}

func TestParseRosterRow_FatalChecks(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		row     model.SheetRow
		code    string
		column  string
		message string
		hint    string
	}{
		{
			name:    "invalid email",
			row:     rosterRow(5, "Employee Number", "E1", "Employee Email", "not-an-email", "Date", "2024-01-15", "Start Time", "9:00", "End Time", "17:00"),
			code:    model.CodeInvalidEmail,
			column:  "employee_email",
			message: "Invalid email format: not-an-email",
		},
		{
			name:    "invalid date",
			row:     rosterRow(6, "Employee Number", "E1", "Date", "31/31/2024", "Start Time", "9:00", "End Time", "17:00"),
			code:    model.CodeInvalidDate,
			column:  "date",
			message: "Unable to parse date: 31/31/2024. Expected formats: YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY, etc.",
			hint:    hintDate,
		},
		{
			name:    "missing date",
			row:     rosterRow(7, "Employee Number", "E1", "Date", nil, "Start Time", "9:00", "End Time", "17:00"),
			code:    model.CodeMissingRequiredField,
			column:  "date",
			message: "Date is required",
		},
		{
			name:    "range in start time",
			row:     rosterRow(8, "Employee Number", "E1", "Date", "2024-01-15", "Start Time", "9:00-17:00", "End Time", "17:00"),
			code:    model.CodeInvalidTime,
			column:  "start_time",
			message: "Time range detected: '9:00-17:00'. Please use separate 'Start Time' and 'End Time' columns.",
			hint:    hintTimeRange,
		},
		{
			name:    "unparseable end time",
			row:     rosterRow(9, "Employee Number", "E1", "Date", "2024-01-15", "Start Time", "9:00", "End Time", "late"),
			code:    model.CodeInvalidTime,
			column:  "end_time",
			message: "Unable to parse time: LATE",
			hint:    hintTime,
		},
		{
			name:    "missing end time",
			row:     rosterRow(10, "Employee Number", "E1", "Date", "2024-01-15", "Start Time", "9:00"),
			code:    model.CodeMissingRequiredField,
			column:  "end_time",
			message: "End Time is required",
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := ParseRosterRow(c.row, DefaultResolver(), model.ParseModeLenient)
			issue := fatalIssue(t, err)
			if issue.Code != c.code || issue.Column != c.column || issue.Message != c.message || issue.Hint != c.hint {
				t.Fatalf("unexpected issue: %+v", issue)
			}
			if issue.Row != c.row.Row {
				t.Fatalf("row want=%d got=%d", c.row.Row, issue.Row)
			}
		})
	}
}

func TestParseRosterRow_OvernightAssumed(t *testing.T) {
	t.Parallel()

	row := rosterRow(4,
		"Employee Number", "E2",
		"Employment Type", "casual",
		"Date", "2024-01-15",
		"Start Time", "22:00",
		"End Time", "06:00",
	)

	entry, warnings, err := ParseRosterRow(row, DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !entry.IsOvernight {
		t.Fatalf("expected inferred overnight")
	}
	want := []model.ParseIssue{{
		Severity: model.SeverityWarning,
		Code:     model.CodeOvernightAssumed,
		Message:  "end_time is earlier than start_time; overnight assumed",
		Row:      4,
		Column:   "end_time",
		Value:    "22:00:00-06:00:00",
		Hint:     "Confirm end time or set 'Is Overnight' explicitly.",
	}}
	if diff := cmp.Diff(want, warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if got := entry.DurationHours().StringFixed(2); got != "8.00" {
		t.Fatalf("durationHours want=8.00 got=%s", got)
	}

	_, _, err = ParseRosterRow(row, DefaultResolver(), model.ParseModeStrict)
	if issue := fatalIssue(t, err); issue.Code != model.CodeOvernightAssumed {
		t.Fatalf("strict mode want OVERNIGHT_ASSUMED error got %s", issue.Code)
	}
}

func TestParseRosterRow_ExplicitOvernightFlag(t *testing.T) {
	t.Parallel()

	row := rosterRow(4,
		"Employee Number", "E2",
		"Employment Type", "casual",
		"Date", "2024-01-15",
		"Start Time", "22:00",
		"End Time", "06:00",
		"Is Overnight", "no",
	)
	entry, warnings, err := ParseRosterRow(row, DefaultResolver(), model.ParseModeStrict)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if entry.IsOvernight || len(warnings) != 0 {
		t.Fatalf("explicit flag must win without warnings: overnight=%v warnings=%v", entry.IsOvernight, issueCodes(warnings))
	}
}

func TestParseRosterRow_BreakWarnings(t *testing.T) {
	t.Parallel()

	row := baseRosterRow(6,
		"Has Meal Break", "yes",
		"Meal Break Duration", 30.5,
		"Has Rest Breaks", "yes",
		"Rest Breaks Duration", -10.0,
	)
	entry, warnings, err := ParseRosterRow(row, DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	wantCodes := []string{
		model.CodeFractionalValueRounded,
		model.CodeInvalidDurationNegative,
		model.CodeRestBreaksDurationMissing,
	}
	if diff := cmp.Diff(wantCodes, issueCodes(warnings)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if entry.MealBreakDuration == nil || *entry.MealBreakDuration != 30 {
		t.Fatalf("meal break want=30 got=%v", deref(entry.MealBreakDuration))
	}
	if entry.RestBreaksDuration != nil {
		t.Fatalf("negative rest break must be cleared")
	}
	if warnings[1].Message != "Rest breaks duration cannot be negative: -10" {
		t.Fatalf("unexpected message: %s", warnings[1].Message)
	}
	if got := entry.NetHours().StringFixed(2); got != "7.50" {
		t.Fatalf("netHours want=7.50 got=%s", got)
	}
}

func TestParseRosterRow_MealBreakMissing(t *testing.T) {
	t.Parallel()

	entry, warnings, err := ParseRosterRow(baseRosterRow(2, "Has Meal Break", true), DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !entry.HasMealBreak {
		t.Fatalf("hasMealBreak should be true")
	}
	if diff := cmp.Diff([]string{model.CodeMealBreakDurationMissing}, issueCodes(warnings)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRosterRow_HugeDurationIsNotNegative(t *testing.T) {
	t.Parallel()

	row := baseRosterRow(4, "Has Meal Break", "yes", "Meal Break Duration", "1e30")
	entry, warnings, err := ParseRosterRow(row, DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if entry.MealBreakDuration != nil {
		t.Fatalf("out-of-range duration should be dropped, got %d", *entry.MealBreakDuration)
	}
	if diff := cmp.Diff([]string{model.CodeMealBreakDurationMissing}, issueCodes(warnings)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRosterRow_BreakExceedsShift(t *testing.T) {
	t.Parallel()

	row := rosterRow(2,
		"Employee Number", "E1",
		"Employment Type", "PT",
		"Date", "2024-01-15",
		"Start Time", "09:00",
		"End Time", "10:00",
		"Meal Break Duration", 45.0,
		"Rest Breaks Duration", 30.0,
	)
	_, warnings, err := ParseRosterRow(row, DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Code != model.CodeBreakExceedsShiftDuration {
		t.Fatalf("want single BREAK_EXCEEDS_SHIFT_DURATION got %v", issueCodes(warnings))
	}
	w := warnings[0]
	if w.Column != "meal_break_duration" || w.Value != "75" {
		t.Fatalf("unexpected column/value: %s %s", w.Column, w.Value)
	}
	want := "Total break minutes (75) exceed shift duration minutes (60). This will distort net-hours calculations."
	if w.Message != want {
		t.Fatalf("message want=%q got=%q", want, w.Message)
	}
}

func TestParseRosterRow_EmploymentType(t *testing.T) {
	t.Parallel()

	noType := rosterRow(2, "Employee Number", "E1", "Date", "2024-01-15", "Start Time", "9:00", "End Time", "17:00")
	entry, warnings, err := ParseRosterRow(noType, DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if entry.EmploymentType != "" || len(warnings) != 1 || warnings[0].Code != model.CodeEmploymentTypeMissing {
		t.Fatalf("want EMPLOYMENT_TYPE_MISSING got %v", issueCodes(warnings))
	}

	contract := rosterRow(3, "Employee Number", "E1", "Employment Type", "Contractor", "Date", "2024-01-15", "Start Time", "9:00", "End Time", "17:00")
	entry, warnings, err = ParseRosterRow(contract, DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if entry.EmploymentType != "Contractor" {
		t.Fatalf("unrecognized type must keep raw text, got %q", entry.EmploymentType)
	}
	if len(warnings) != 1 || warnings[0].Message != "employment_type is unrecognized: Contractor" {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}

	_, _, err = ParseRosterRow(contract, DefaultResolver(), model.ParseModeStrict)
	if issue := fatalIssue(t, err); issue.Code != model.CodeEmploymentTypeUnknown {
		t.Fatalf("strict want EMPLOYMENT_TYPE_UNRECOGNIZED got %s", issue.Code)
	}
}

func TestParseRosterRow_DuplicateColumns(t *testing.T) {
	t.Parallel()

	row := baseRosterRow(2, "employee_email", "b@x.com")
	entry, warnings, err := ParseRosterRow(row, DefaultResolver(), model.ParseModeLenient)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if entry.EmployeeEmail != "b@x.com" {
		t.Fatalf("last column must win, got %s", entry.EmployeeEmail)
	}
	if len(warnings) != 1 {
		t.Fatalf("want 1 warning got %v", issueCodes(warnings))
	}
	want := "Multiple columns map to 'employee_email': Employee Email, employee_email"
	if warnings[0].Code != model.CodeDuplicateCanonicalColumn || warnings[0].Message != want {
		t.Fatalf("unexpected warning: %+v", warnings[0])
	}

	_, _, err = ParseRosterRow(row, DefaultResolver(), model.ParseModeStrict)
	if issue := fatalIssue(t, err); issue.Code != model.CodeDuplicateCanonicalColumn || issue.Row != 2 {
		t.Fatalf("strict want duplicate error got %+v", issue)
	}
}

func TestParseRosterRow_ExcelSerials(t *testing.T) {
	t.Parallel()

	row := rosterRow(2,
		"Employee Number", 1001.0,
		"Employment Type", "ft",
		"Date", 45306.0,
		"Start Time", 0.375,
		"End Time", 0.708333333333,
	)
	entry, _, err := ParseRosterRow(row, DefaultResolver(), model.ParseModeStrict)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if entry.EmployeeNumber != "1001" || entry.Date.String() != "2024-01-15" {
		t.Fatalf("unexpected entry: %s %s", entry.EmployeeNumber, entry.Date)
	}
	if entry.StartTime.String() != "09:00:00" || entry.EndTime.String() != "17:00:00" {
		t.Fatalf("unexpected times: %s %s", entry.StartTime, entry.EndTime)
	}
}

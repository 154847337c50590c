package parser

import "rosterlens/internal/model"

// Field 规范字段键
type Field string

const (
	FieldEmployeeEmail      Field = "employee_email"
	FieldEmployeeNumber     Field = "employee_number"
	FieldEmployeeName       Field = "employee_name"
	FieldEmploymentType     Field = "employment_type"
	FieldDate               Field = "date"
	FieldStartTime          Field = "start_time"
	FieldEndTime            Field = "end_time"
	FieldIsOvernight        Field = "is_overnight"
	FieldHasMealBreak       Field = "has_meal_break"
	FieldMealBreakDuration  Field = "meal_break_duration"
	FieldHasRestBreaks      Field = "has_rest_breaks"
	FieldRestBreaksDuration Field = "rest_breaks_duration"
	FieldIsPublicHoliday    Field = "is_public_holiday"
	FieldPublicHolidayName  Field = "public_holiday_name"
	FieldIsOnCall           Field = "is_on_call"
	FieldLocation           Field = "location"
	FieldNotes              Field = "notes"

	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldRole       Field = "role"
	FieldDepartment Field = "department"
	FieldStartDate  Field = "start_date"
)

// ExtraKey 未识别列的统一归档键
const ExtraKey = "__extra__"

// RosterRequiredFields 排班文件必需列
var RosterRequiredFields = []Field{FieldEmployeeNumber, FieldDate, FieldStartTime, FieldEndTime}

// EmployeeRequiredFields 员工文件必需列
var EmployeeRequiredFields = []Field{FieldName, FieldRole}

// Duplicate 同一行中映射到同一规范字段的多个表头
type Duplicate struct {
	Field   Field
	Headers []string
}

// CanonicalRow 规范化后的一行
type CanonicalRow struct {
	Row    int
	Values map[Field]any
	Extras []model.Cell
}

// Get 取规范字段值（不存在时为 nil）
func (c CanonicalRow) Get(f Field) any {
	return c.Values[f]
}

// Has 是否存在该规范字段（值可以为空）
func (c CanonicalRow) Has(f Field) bool {
	_, ok := c.Values[f]
	return ok
}

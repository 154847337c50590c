package parser

import "rosterlens/internal/model"

// ParseEmployeeRow 解析员工行
func ParseEmployeeRow(row model.SheetRow, resolver *Resolver, mode model.ParseMode) (*model.EmployeeEntry, []model.ParseIssue, error) {
	ctx := newRowContext(row.Row, mode)
	canonical, duplicates := resolver.Normalize(row)
	if err := ctx.reportDuplicates(duplicates); err != nil {
		return nil, nil, err
	}

	name, err := ctx.requireString(canonical, FieldName, "Name is required")
	if err != nil {
		return nil, nil, err
	}
	email, err := ctx.optionalEmail(canonical, FieldEmail)
	if err != nil {
		return nil, nil, err
	}
	role, err := ctx.requireString(canonical, FieldRole, "Role is required")
	if err != nil {
		return nil, nil, err
	}
	startDate, err := ctx.date(canonical, FieldStartDate, "")
	if err != nil {
		return nil, nil, err
	}

	return &model.EmployeeEntry{
		ExcelRow:   row.Row,
		Name:       name,
		Email:      email,
		Role:       role,
		Department: GetString(canonical.Get(FieldDepartment)),
		StartDate:  startDate,
	}, ctx.warnings, nil
}

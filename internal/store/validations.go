package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rosterlens/internal/model"
)

// ValidationMeta 校验结果列表项
type ValidationMeta struct {
	ValidationID   string    `json:"validationId"`
	Status         string    `json:"status"`
	TotalIssues    int       `json:"totalIssues"`
	CriticalIssues int       `json:"criticalIssues"`
	WeekStartDate  string    `json:"weekStartDate,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SaveValidation 保存校验结果；ValidationID 为空时生成 uuid，已存在时整体替换
func (s *Store) SaveValidation(v *model.ValidationResult) (string, error) {
	if v == nil {
		return "", fmt.Errorf("validation result is nil")
	}
	id := v.ValidationID
	if id == "" {
		id = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM validations WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("failed to replace validation: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO validations (
			id, status, total_shifts, passed_shifts, failed_shifts,
			total_issues, critical_issues, affected_employees,
			week_start_date, week_end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, v.Status, v.TotalShifts, v.PassedShifts, v.FailedShifts,
		v.TotalIssues, v.CriticalIssues, v.AffectedEmployees,
		v.WeekStartDate, v.WeekEndDate); err != nil {
		return "", fmt.Errorf("failed to insert validation: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO validation_issues (
			validation_id, seq, issue_id, shift_id, employee_id, employee_name,
			check_type, severity, description, affected_dates
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for i, issue := range v.Issues {
		if _, err := stmt.Exec(id, i, issue.ID, issue.ShiftID, issue.EmployeeID, issue.EmployeeName,
			issue.CheckType, issue.Severity, issue.Description, issue.AffectedDates); err != nil {
			return "", fmt.Errorf("failed to insert issue %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit validation: %w", err)
	}
	return id, nil
}

// GetValidation 按 id 读取校验结果（含问题明细，按原顺序）
func (s *Store) GetValidation(id string) (*model.ValidationResult, error) {
	v := &model.ValidationResult{ValidationID: id, Issues: []model.ValidationIssue{}}
	err := s.db.QueryRow(`
		SELECT status, total_shifts, passed_shifts, failed_shifts,
			total_issues, critical_issues, affected_employees,
			week_start_date, week_end_date
		FROM validations WHERE id = ?
	`, id).Scan(&v.Status, &v.TotalShifts, &v.PassedShifts, &v.FailedShifts,
		&v.TotalIssues, &v.CriticalIssues, &v.AffectedEmployees,
		&v.WeekStartDate, &v.WeekEndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("validation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query validation: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT issue_id, shift_id, employee_id, employee_name,
			check_type, severity, description, affected_dates
		FROM validation_issues WHERE validation_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation issues: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var issue model.ValidationIssue
		if err := rows.Scan(&issue.ID, &issue.ShiftID, &issue.EmployeeID, &issue.EmployeeName,
			&issue.CheckType, &issue.Severity, &issue.Description, &issue.AffectedDates); err != nil {
			return nil, fmt.Errorf("failed to scan validation issue: %w", err)
		}
		v.Issues = append(v.Issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read validation issues: %w", err)
	}
	return v, nil
}

// ListValidations 最近的校验结果，按创建时间倒序
func (s *Store) ListValidations(limit int) ([]ValidationMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, status, total_issues, critical_issues, week_start_date, created_at
		FROM validations ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}
	defer rows.Close()

	list := []ValidationMeta{}
	for rows.Next() {
		var m ValidationMeta
		if err := rows.Scan(&m.ValidationID, &m.Status, &m.TotalIssues, &m.CriticalIssues, &m.WeekStartDate, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan validation: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// DeleteValidation 删除校验结果及其问题明细
func (s *Store) DeleteValidation(id string) error {
	res, err := s.db.Exec(`DELETE FROM validations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete validation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete validation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("validation %s: %w", id, ErrNotFound)
	}
	return nil
}

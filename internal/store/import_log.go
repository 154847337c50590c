package store

import (
	"fmt"
	"time"

	"rosterlens/internal/model"
)

// ParseRun 一次解析请求的记录
type ParseRun struct {
	ID           int64     `json:"id"`
	RequestID    string    `json:"requestId"`
	Kind         string    `json:"kind"`
	Filename     string    `json:"filename"`
	Sheet        string    `json:"sheet"`
	Mode         string    `json:"mode"`
	Status       string    `json:"status"`
	Entries      int       `json:"entries"`
	TotalIssues  int       `json:"totalIssues"`
	ErrorCount   int       `json:"errorCount"`
	WarningCount int       `json:"warningCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewParseRun 由解析结果生成记录
func NewParseRun(requestID, kind, filename, sheet string, mode model.ParseMode, entries int, summary model.ParseSummary) ParseRun {
	return ParseRun{
		RequestID:    requestID,
		Kind:         kind,
		Filename:     filename,
		Sheet:        sheet,
		Mode:         string(mode),
		Status:       string(summary.Status),
		Entries:      entries,
		TotalIssues:  summary.TotalIssues,
		ErrorCount:   summary.ErrorCount,
		WarningCount: summary.WarningCount,
	}
}

// CreateParseRun 写入解析记录，返回 id
func (s *Store) CreateParseRun(run ParseRun) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO parse_runs (
			request_id, kind, filename, sheet, mode, status,
			entries, total_issues, error_count, warning_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RequestID, run.Kind, run.Filename, run.Sheet, run.Mode, run.Status,
		run.Entries, run.TotalIssues, run.ErrorCount, run.WarningCount)
	if err != nil {
		return 0, fmt.Errorf("failed to create parse run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get parse run id: %w", err)
	}
	return id, nil
}

// ListParseRuns 最近的解析记录，按 id 倒序
func (s *Store) ListParseRuns(limit int) ([]ParseRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, request_id, kind, filename, sheet, mode, status,
			entries, total_issues, error_count, warning_count, created_at
		FROM parse_runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list parse runs: %w", err)
	}
	defer rows.Close()

	runs := []ParseRun{}
	for rows.Next() {
		var r ParseRun
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Kind, &r.Filename, &r.Sheet, &r.Mode, &r.Status,
			&r.Entries, &r.TotalIssues, &r.ErrorCount, &r.WarningCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parse run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

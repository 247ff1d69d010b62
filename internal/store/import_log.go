package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(ctx context.Context, sheetID, filename string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (sheet_id, filename, status) VALUES (?, ?, ?)
	`, sheetID, filename, string(model.ImportProcessing))
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(ctx context.Context, id int64, report model.ImportReport, status model.ImportLogStatus, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			total_columns = ?,
			total_rows = ?,
			total_cells = ?,
			total_views = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, report.Columns, report.Rows, report.Cells, report.Views, string(status), errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ImportLogStatus 查询导入日志状态
func (s *Store) ImportLogStatus(ctx context.Context, id int64) (model.ImportLogStatus, string, error) {
	var status, message string
	err := s.db.QueryRowContext(ctx, `SELECT status, error_message FROM import_logs WHERE id = ?`, id).
		Scan(&status, &message)
	if err != nil {
		return "", "", fmt.Errorf("failed to get import log: %w", err)
	}
	return model.ImportLogStatus(status), message, nil
}

// LastImportTime 最近一次成功导入的完成时间，没有记录时返回空串
func (s *Store) LastImportTime(ctx context.Context) (string, error) {
	var completedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT completed_at FROM import_logs
		WHERE status = ? ORDER BY id DESC LIMIT 1
	`, string(model.ImportCompleted)).Scan(&completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last import time: %w", err)
	}
	return completedAt.String, nil
}

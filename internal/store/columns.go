package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// CreateColumns 批量写入列（单个事务）
func (s *Store) CreateColumns(ctx context.Context, columns []model.Column) error {
	if len(columns) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO sheet_columns (id, sheet_id, name, type, width, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare column insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range columns {
			if _, err := stmt.ExecContext(ctx, c.ID, c.SheetID, c.Name, string(c.Type), c.Width, c.Position); err != nil {
				return fmt.Errorf("failed to insert column %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// UpdateColumn 更新列的类型与宽度
func (s *Store) UpdateColumn(ctx context.Context, change model.ColumnChange) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sheet_columns SET type = ?, width = ? WHERE id = ?`,
		string(change.Type), change.Width, change.ColumnID)
	if err != nil {
		return fmt.Errorf("failed to update column: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update column %s: not found", change.ColumnID)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// deleteBatchSize 单条 DELETE 语句中 id 的上限
const deleteBatchSize = 500

// CreateRows 写入一批行（单个事务）
func (s *Store) CreateRows(ctx context.Context, rows []model.Row) error {
	if len(rows) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertRows(ctx, tx, rows)
	})
}

// CreateCells 写入一批单元格（单个事务）
func (s *Store) CreateCells(ctx context.Context, cells []model.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertCells(ctx, tx, cells)
	})
}

// RestoreRows 重新写入被删除的行及其单元格（撤销删除）
func (s *Store) RestoreRows(ctx context.Context, snapshots []model.RowSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		rows := make([]model.Row, 0, len(snapshots))
		var cells []model.Cell
		for _, snap := range snapshots {
			rows = append(rows, snap.Row)
			cells = append(cells, snap.Cells...)
		}
		if err := insertRows(ctx, tx, rows); err != nil {
			return err
		}
		return insertCells(ctx, tx, cells)
	})
}

// DeleteRows 删除行及其单元格
func (s *Store) DeleteRows(ctx context.Context, rowIDs []string) error {
	if len(rowIDs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(rowIDs); start += deleteBatchSize {
			batch := rowIDs[start:min(start+deleteBatchSize, len(rowIDs))]
			placeholders, args := inClause(batch)
			if _, err := tx.ExecContext(ctx, "DELETE FROM sheet_cells WHERE row_id IN ("+placeholders+")", args...); err != nil {
				return fmt.Errorf("failed to delete cells: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM sheet_rows WHERE id IN ("+placeholders+")", args...); err != nil {
				return fmt.Errorf("failed to delete rows: %w", err)
			}
		}
		return nil
	})
}

func insertRows(ctx context.Context, tx *sql.Tx, rows []model.Row) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sheet_rows (id, sheet_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID, r.SheetID, r.Position); err != nil {
			return fmt.Errorf("failed to insert row %s: %w", r.ID, err)
		}
	}
	return nil
}

func insertCells(ctx context.Context, tx *sql.Tx, cells []model.Cell) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sheet_cells (id, sheet_id, row_id, column_id, value) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cell insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.ExecContext(ctx, c.ID, c.SheetID, c.RowID, c.ColumnID, nullableText(c.Value)); err != nil {
			return fmt.Errorf("failed to insert cell %s: %w", c.ID, err)
		}
	}
	return nil
}

// UpdateCells 按单元格 ID 更新取值
func (s *Store) UpdateCells(ctx context.Context, changes []model.CellChange) error {
	if len(changes) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE sheet_cells SET value = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare cell update: %w", err)
		}
		defer stmt.Close()

		for _, ch := range changes {
			if _, err := stmt.ExecContext(ctx, nullableText(ch.Value), ch.CellID); err != nil {
				return fmt.Errorf("failed to update cell %s: %w", ch.CellID, err)
			}
		}
		return nil
	})
}

func nullableText(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func inClause(ids []string) (string, []interface{}) {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

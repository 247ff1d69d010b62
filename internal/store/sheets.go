package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// CreateSheet 创建 sheet
func (s *Store) CreateSheet(ctx context.Context, sheet model.Sheet) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sheets (id, name) VALUES (?, ?)`, sheet.ID, sheet.Name)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	return nil
}

// GetSheet 获取单个 sheet
func (s *Store) GetSheet(ctx context.Context, id string) (model.Sheet, error) {
	var sheet model.Sheet
	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM sheets WHERE id = ?`, id).
		Scan(&sheet.ID, &sheet.Name, &sheet.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Sheet{}, ErrSheetNotFound
		}
		return model.Sheet{}, fmt.Errorf("failed to get sheet: %w", err)
	}
	return sheet, nil
}

// ListSheets 按创建时间列出所有 sheet
func (s *Store) ListSheets(ctx context.Context) ([]model.Sheet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM sheets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	sheets := []model.Sheet{}
	for rows.Next() {
		var sheet model.Sheet
		if err := rows.Scan(&sheet.ID, &sheet.Name, &sheet.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, rows.Err()
}

// DeleteSheet 删除 sheet 及其全部实体
func (s *Store) DeleteSheet(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{
			"sheet_cells", "sheet_rows", "sheet_columns", "sheet_views",
			"sheet_filters", "sheet_sorts", "sheet_groups",
		} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE sheet_id = ?", id); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sheets WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete sheet: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrSheetNotFound
		}
		return nil
	})
}

// LoadSheet 按持久化顺序读取 sheet 的全部实体
func (s *Store) LoadSheet(ctx context.Context, id string) (*model.SheetData, error) {
	sheet, err := s.GetSheet(ctx, id)
	if err != nil {
		return nil, err
	}
	data := &model.SheetData{Sheet: sheet}

	if data.Columns, err = s.loadColumns(ctx, id); err != nil {
		return nil, err
	}
	if data.Rows, err = s.loadRows(ctx, id); err != nil {
		return nil, err
	}
	if data.Cells, err = s.loadCells(ctx, id); err != nil {
		return nil, err
	}
	if data.Views, err = s.loadViews(ctx, id); err != nil {
		return nil, err
	}
	if data.Filters, err = s.loadFilters(ctx, id); err != nil {
		return nil, err
	}
	if data.Sorts, err = s.loadSorts(ctx, id); err != nil {
		return nil, err
	}
	if data.Groups, err = s.loadGroups(ctx, id); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) loadColumns(ctx context.Context, sheetID string) ([]model.Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sheet_id, name, type, width, position
		FROM sheet_columns WHERE sheet_id = ? ORDER BY position
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load columns: %w", err)
	}
	defer rows.Close()

	columns := []model.Column{}
	for rows.Next() {
		var c model.Column
		if err := rows.Scan(&c.ID, &c.SheetID, &c.Name, &c.Type, &c.Width, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

func (s *Store) loadRows(ctx context.Context, sheetID string) ([]model.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sheet_id, position FROM sheet_rows WHERE sheet_id = ? ORDER BY position, id
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}
	defer rows.Close()

	out := []model.Row{}
	for rows.Next() {
		var r model.Row
		if err := rows.Scan(&r.ID, &r.SheetID, &r.Position); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) loadCells(ctx context.Context, sheetID string) ([]model.Cell, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sheet_id, row_id, column_id, value FROM sheet_cells WHERE sheet_id = ?
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cells: %w", err)
	}
	defer rows.Close()

	cells := []model.Cell{}
	for rows.Next() {
		var c model.Cell
		var value sql.NullString
		if err := rows.Scan(&c.ID, &c.SheetID, &c.RowID, &c.ColumnID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		if value.Valid {
			v := value.String
			c.Value = &v
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

func (s *Store) loadViews(ctx context.Context, sheetID string) ([]model.View, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sheet_id, name, is_locked, visible_columns
		FROM sheet_views WHERE sheet_id = ? ORDER BY position
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}
	defer rows.Close()

	views := []model.View{}
	for rows.Next() {
		var v model.View
		var visibleJSON string
		if err := rows.Scan(&v.ID, &v.SheetID, &v.Name, &v.IsLocked, &visibleJSON); err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		if err := json.Unmarshal([]byte(visibleJSON), &v.VisibleColumns); err != nil {
			return nil, fmt.Errorf("failed to decode visible columns of view %s: %w", v.ID, err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

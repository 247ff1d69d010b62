package store

import (
	"context"
	"fmt"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// 筛选、排序、分组按 position 保存其在激活列表中的先后

// CreateFilter 追加筛选条件
func (s *Store) CreateFilter(ctx context.Context, f model.Filter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sheet_filters (id, sheet_id, column_id, operator, value, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM sheet_filters WHERE sheet_id = ?))
	`, f.ID, f.SheetID, f.ColumnID, string(f.Operator), f.Value, f.SheetID)
	if err != nil {
		return fmt.Errorf("failed to create filter: %w", err)
	}
	return nil
}

// UpdateFilter 更新筛选条件
func (s *Store) UpdateFilter(ctx context.Context, f model.Filter) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sheet_filters SET column_id = ?, operator = ?, value = ? WHERE id = ?
	`, f.ColumnID, string(f.Operator), f.Value, f.ID)
	if err != nil {
		return fmt.Errorf("failed to update filter: %w", err)
	}
	return nil
}

// DeleteFilter 删除筛选条件
func (s *Store) DeleteFilter(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sheet_filters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete filter: %w", err)
	}
	return nil
}

// CreateSort 追加排序条件
func (s *Store) CreateSort(ctx context.Context, st model.Sort) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sheet_sorts (id, sheet_id, column_id, sort_order, position)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM sheet_sorts WHERE sheet_id = ?))
	`, st.ID, st.SheetID, st.ColumnID, string(st.Order), st.SheetID)
	if err != nil {
		return fmt.Errorf("failed to create sort: %w", err)
	}
	return nil
}

// UpdateSort 更新排序条件
func (s *Store) UpdateSort(ctx context.Context, st model.Sort) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sheet_sorts SET column_id = ?, sort_order = ? WHERE id = ?
	`, st.ColumnID, string(st.Order), st.ID)
	if err != nil {
		return fmt.Errorf("failed to update sort: %w", err)
	}
	return nil
}

// DeleteSort 删除排序条件
func (s *Store) DeleteSort(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sheet_sorts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete sort: %w", err)
	}
	return nil
}

// CreateGroup 追加分组条件
func (s *Store) CreateGroup(ctx context.Context, g model.Group) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sheet_groups (id, sheet_id, column_id, sort_order, is_locked, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM sheet_groups WHERE sheet_id = ?))
	`, g.ID, g.SheetID, g.ColumnID, string(g.Order), boolToInt(g.IsLocked), g.SheetID)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// UpdateGroup 更新分组条件
func (s *Store) UpdateGroup(ctx context.Context, g model.Group) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sheet_groups SET column_id = ?, sort_order = ?, is_locked = ? WHERE id = ?
	`, g.ColumnID, string(g.Order), boolToInt(g.IsLocked), g.ID)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

// DeleteGroup 删除分组条件
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sheet_groups WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func (s *Store) loadFilters(ctx context.Context, sheetID string) ([]model.Filter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sheet_id, column_id, operator, value FROM sheet_filters WHERE sheet_id = ? ORDER BY position
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load filters: %w", err)
	}
	defer rows.Close()

	filters := []model.Filter{}
	for rows.Next() {
		var f model.Filter
		if err := rows.Scan(&f.ID, &f.SheetID, &f.ColumnID, &f.Operator, &f.Value); err != nil {
			return nil, fmt.Errorf("failed to scan filter: %w", err)
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

func (s *Store) loadSorts(ctx context.Context, sheetID string) ([]model.Sort, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sheet_id, column_id, sort_order FROM sheet_sorts WHERE sheet_id = ? ORDER BY position
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sorts: %w", err)
	}
	defer rows.Close()

	sorts := []model.Sort{}
	for rows.Next() {
		var st model.Sort
		if err := rows.Scan(&st.ID, &st.SheetID, &st.ColumnID, &st.Order); err != nil {
			return nil, fmt.Errorf("failed to scan sort: %w", err)
		}
		sorts = append(sorts, st)
	}
	return sorts, rows.Err()
}

func (s *Store) loadGroups(ctx context.Context, sheetID string) ([]model.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sheet_id, column_id, sort_order, is_locked FROM sheet_groups WHERE sheet_id = ? ORDER BY position
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.SheetID, &g.ColumnID, &g.Order, &g.IsLocked); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

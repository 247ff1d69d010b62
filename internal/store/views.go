package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// CreateView 创建视图，追加在已有视图之后
func (s *Store) CreateView(ctx context.Context, view model.View) error {
	visible, err := json.Marshal(view.VisibleColumns)
	if err != nil {
		return fmt.Errorf("failed to encode visible columns: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sheet_views (id, sheet_id, name, is_locked, visible_columns, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM sheet_views WHERE sheet_id = ?))
	`, view.ID, view.SheetID, view.Name, boolToInt(view.IsLocked), string(visible), view.SheetID)
	if err != nil {
		return fmt.Errorf("failed to create view: %w", err)
	}
	return nil
}

// UpdateView 更新视图名称、锁定状态与可见列
func (s *Store) UpdateView(ctx context.Context, view model.View) error {
	visible, err := json.Marshal(view.VisibleColumns)
	if err != nil {
		return fmt.Errorf("failed to encode visible columns: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE sheet_views SET name = ?, is_locked = ?, visible_columns = ? WHERE id = ?
	`, view.Name, boolToInt(view.IsLocked), string(visible), view.ID)
	if err != nil {
		return fmt.Errorf("failed to update view: %w", err)
	}
	return nil
}

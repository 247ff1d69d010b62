package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/service/history"
)

// Apply 在本地执行命令并排队写入（实现 history.Applier）
func (s *Session) Apply(cmd model.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(cmd)
}

// apply 先整体校验再修改本地状态，复合命令不会部分生效。调用方持有 s.mu。
func (s *Session) apply(cmd model.Command) error {
	switch cmd.Kind {
	case model.CmdUpdateCells:
		for _, ch := range cmd.Cells {
			if _, ok := s.st.cells[ch.CellID]; !ok {
				return fmt.Errorf("%w: %s", ErrUnknownCell, ch.CellID)
			}
		}
		changes := make([]model.CellChange, len(cmd.Cells))
		for i, ch := range cmd.Cells {
			s.st.cells[ch.CellID].Value = copyPtr(ch.Value)
			s.debounce.Cancel(ch.CellID)
			changes[i] = model.CellChange{CellID: ch.CellID, Value: copyPtr(ch.Value)}
		}
		s.persist("update cells", func(ctx context.Context) error {
			return s.gateway.UpdateCells(ctx, changes)
		})

	case model.CmdCreateRows:
		for _, snap := range cmd.Rows {
			if s.st.rowIndex(snap.Row.ID) >= 0 {
				return fmt.Errorf("row %s already exists", snap.Row.ID)
			}
		}
		snaps := append([]model.RowSnapshot(nil), cmd.Rows...)
		sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Position < snaps[j].Position })
		for _, snap := range snaps {
			s.st.insertRow(snap)
		}
		s.persist("create rows", func(ctx context.Context) error {
			return s.gateway.RestoreRows(ctx, snaps)
		})

	case model.CmdDeleteRows:
		for _, id := range cmd.RowIDs {
			if s.st.rowIndex(id) < 0 {
				return fmt.Errorf("%w: %s", ErrUnknownRow, id)
			}
		}
		activeRow, _ := s.machine.Active()
		for _, id := range cmd.RowIDs {
			for _, cellID := range s.st.byRow[id] {
				s.debounce.Cancel(cellID)
			}
			if id == activeRow {
				s.processActions(s.machine.Reset())
			}
			s.st.removeRow(id)
		}
		ids := append([]string(nil), cmd.RowIDs...)
		s.persist("delete rows", func(ctx context.Context) error {
			return s.gateway.DeleteRows(ctx, ids)
		})

	case model.CmdUpdateColumn:
		if cmd.Column == nil {
			return fmt.Errorf("%w: missing column change", ErrUnknownColumn)
		}
		col, ok := s.st.column(cmd.Column.ColumnID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, cmd.Column.ColumnID)
		}
		if !cmd.Column.Type.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidType, cmd.Column.Type)
		}
		col.Type = cmd.Column.Type
		col.Width = cmd.Column.Width
		change := *cmd.Column
		s.persist("update column", func(ctx context.Context) error {
			return s.gateway.UpdateColumn(ctx, change)
		})

	default:
		return fmt.Errorf("unknown command kind %q", cmd.Kind)
	}

	s.dirty = true
	return nil
}

// record 执行正向命令，成功后记入历史
func (s *Session) record(step model.HistoryStep) error {
	if err := s.apply(step.Forward); err != nil {
		return err
	}
	s.journal.Push(step)
	return nil
}

// UpdateCell 设置单元格取值并记入历史（非键盘来源，立即写入）
func (s *Session) UpdateCell(cellID string, value *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.st.cells[cellID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCell, cellID)
	}
	if s.machine.EditingCellID() == cellID {
		s.processActions(s.machine.Blur())
	}
	return s.record(model.HistoryStep{
		Label:   "update cell",
		Forward: model.Command{Kind: model.CmdUpdateCells, Cells: []model.CellChange{{CellID: cellID, Value: copyPtr(value)}}},
		Inverse: model.Command{Kind: model.CmdUpdateCells, Cells: []model.CellChange{{CellID: cellID, Value: copyPtr(cell.Value)}}},
	})
}

// InsertRow 在 afterRowID 之后插入空行（afterRowID 为空时插入到最前）
func (s *Session) InsertRow(afterRowID string) (model.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := 0
	if afterRowID != "" {
		i := s.st.rowIndex(afterRowID)
		if i < 0 {
			return model.Row{}, fmt.Errorf("%w: %s", ErrUnknownRow, afterRowID)
		}
		idx = i + 1
	}

	row := model.Row{ID: s.newID(), SheetID: s.st.sheet.ID, Position: s.positionAt(idx)}
	snap := model.RowSnapshot{Row: row, Position: idx}
	for _, col := range s.st.columns {
		snap.Cells = append(snap.Cells, model.Cell{
			ID:       s.newID(),
			SheetID:  s.st.sheet.ID,
			RowID:    row.ID,
			ColumnID: col.ID,
		})
	}

	err := s.record(model.HistoryStep{
		Label:   "insert row",
		Forward: model.Command{Kind: model.CmdCreateRows, Rows: []model.RowSnapshot{snap}},
		Inverse: model.Command{Kind: model.CmdDeleteRows, RowIDs: []string{row.ID}},
	})
	return row, err
}

// positionAt 插入到下标 idx 时的排序值：相邻两行的中点，首尾时向外扩一
func (s *Session) positionAt(idx int) float64 {
	rows := s.st.rows
	switch {
	case len(rows) == 0:
		return 0
	case idx <= 0:
		return rows[0].Position - 1
	case idx >= len(rows):
		return rows[len(rows)-1].Position + 1
	default:
		return (rows[idx-1].Position + rows[idx].Position) / 2
	}
}

// DeleteRows 删除多行，作为一个整体撤销/重做
func (s *Session) DeleteRows(rowIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteRows(rowIDs)
}

func (s *Session) deleteRows(rowIDs []string) error {
	if len(rowIDs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(rowIDs))
	snaps := make([]model.RowSnapshot, 0, len(rowIDs))
	for _, id := range rowIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		snap, ok := s.st.snapshot(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRow, id)
		}
		snaps = append(snaps, snap)
	}
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Position < snaps[j].Position })

	ids := make([]string, len(snaps))
	for i, snap := range snaps {
		ids[i] = snap.Row.ID
	}
	return s.record(model.HistoryStep{
		Label:   fmt.Sprintf("delete %d rows", len(ids)),
		Forward: model.Command{Kind: model.CmdDeleteRows, RowIDs: ids},
		Inverse: model.Command{Kind: model.CmdCreateRows, Rows: snaps},
	})
}

// DeleteSelectedRange 删除选区起点到终点之间的全部可见行
func (s *Session) DeleteSelectedRange() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.machine.RangeRows(s.layout())
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.deleteRows(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// UpdateColumn 修改列类型与宽度
func (s *Session) UpdateColumn(change model.ColumnChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.st.column(change.ColumnID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, change.ColumnID)
	}
	if change.Type == "" {
		change.Type = col.Type
	}
	if change.Width <= 0 {
		change.Width = col.Width
	}
	prior := model.ColumnChange{ColumnID: col.ID, Type: col.Type, Width: col.Width}
	return s.record(model.HistoryStep{
		Label:   "update column",
		Forward: model.Command{Kind: model.CmdUpdateColumn, Column: &change},
		Inverse: model.Command{Kind: model.CmdUpdateColumn, Column: &prior},
	})
}

// Undo 撤销最近一步；正在编辑时先提交
func (s *Session) Undo() (model.HistoryStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processActions(s.machine.Blur())
	return s.journal.Undo(history.ApplierFunc(s.apply))
}

// Redo 重做最近撤销的一步
func (s *Session) Redo() (model.HistoryStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processActions(s.machine.Blur())
	return s.journal.Redo(history.ApplierFunc(s.apply))
}

package session

import (
	"context"
	"fmt"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/service/selection"
)

// processActions 执行状态机产生的动作，调用方持有 s.mu
func (s *Session) processActions(actions []selection.Action) {
	for _, a := range actions {
		cell, ok := s.st.cells[a.CellID]
		if !ok {
			continue
		}
		switch a.Kind {
		case selection.ActionEdit:
			step := model.HistoryStep{
				Label:   "edit cell",
				Forward: model.Command{Kind: model.CmdUpdateCells, Cells: []model.CellChange{{CellID: a.CellID, Value: copyPtr(a.To)}}},
				Inverse: model.Command{Kind: model.CmdUpdateCells, Cells: []model.CellChange{{CellID: a.CellID, Value: copyPtr(a.From)}}},
			}
			if err := s.record(step); err != nil {
				s.reportLocal("edit cell", err)
			}

		case selection.ActionDraft:
			cell.Value = copyPtr(a.To)
			s.dirty = true
			s.debounce.Schedule(a.CellID)

		case selection.ActionCommit:
			cell.Value = copyPtr(a.To)
			s.dirty = true
			if s.debounce.Cancel(a.CellID) {
				change := model.CellChange{CellID: a.CellID, Value: copyPtr(a.To)}
				s.persist("commit cell", func(ctx context.Context) error {
					return s.gateway.UpdateCells(ctx, []model.CellChange{change})
				})
			}
			if !sameValue(a.From, a.To) {
				s.journal.Push(model.HistoryStep{
					Label:   "edit cell",
					Forward: model.Command{Kind: model.CmdUpdateCells, Cells: []model.CellChange{{CellID: a.CellID, Value: copyPtr(a.To)}}},
					Inverse: model.Command{Kind: model.CmdUpdateCells, Cells: []model.CellChange{{CellID: a.CellID, Value: copyPtr(a.From)}}},
				})
			}
		}
	}
}

func (s *Session) reportLocal(op string, err error) {
	if s.onPersistError != nil {
		s.onPersistError(op, err)
	}
}

// HandleKey 处理一次按键；ctrl+z / ctrl+y 映射为撤销/重做
func (s *Session) HandleKey(key string) error {
	switch key {
	case "ctrl+z":
		_, err := s.Undo()
		return err
	case "ctrl+y":
		_, err := s.Redo()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processActions(s.machine.HandleKey(key, s.layout(), s.st))
	return nil
}

// SelectCell 聚焦单元格
func (s *Session) SelectCell(cellID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.st.cells[cellID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCell, cellID)
	}
	s.processActions(s.machine.Select(cell.RowID, cell.ColumnID))
	return nil
}

// SelectAt 按行、列聚焦
func (s *Session) SelectAt(rowID, columnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.CellID(rowID, columnID); !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownCell, rowID, columnID)
	}
	s.processActions(s.machine.Select(rowID, columnID))
	return nil
}

// ExtendSelection 将选区终点扩展到指定单元格
func (s *Session) ExtendSelection(cellID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.st.cells[cellID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCell, cellID)
	}
	s.processActions(s.machine.Extend(cell.RowID, cell.ColumnID))
	return nil
}

// Activate 双击进入编辑
func (s *Session) Activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Activate(s.st)
}

// SetDraft 替换编辑中的草稿
func (s *Session) SetDraft(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processActions(s.machine.SetDraft(value))
}

// Blur 失焦提交
func (s *Session) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processActions(s.machine.Blur())
}

// SetEditingPrevented 设置禁止编辑标记
func (s *Session) SetEditingPrevented(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.SetEditingPrevented(v)
}

// SetNavigationPrevented 设置禁止导航标记
func (s *Session) SetNavigationPrevented(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.SetNavigationPrevented(v)
}

// Selection 当前选区
func (s *Session) Selection() model.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Selection(s.st)
}

// EditState 状态、活动单元格与草稿
type EditState struct {
	Mode      selection.Mode
	ActiveRow string
	ActiveCol string
	AnchorRow string
	AnchorCol string
	Draft     string
}

// EditState 当前编辑状态
func (s *Session) EditState() EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, col := s.machine.Active()
	anchorRow, anchorCol := s.machine.Anchor()
	return EditState{
		Mode:      s.machine.Mode(),
		ActiveRow: row,
		ActiveCol: col,
		AnchorRow: anchorRow,
		AnchorCol: anchorCol,
		Draft:     s.machine.Draft(),
	}
}

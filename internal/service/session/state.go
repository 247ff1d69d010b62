package session

import (
	"sort"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// state 一个 sheet 的全部本地数据。不加锁，由 Session 串行访问。
type state struct {
	sheet   model.Sheet
	columns []model.Column
	rows    []model.Row // sheet 的基础行序
	cells   map[string]*model.Cell
	byRow   map[string]map[string]string // 行 -> 列 -> 单元格 ID
	views   []model.View
	filters []model.Filter
	sorts   []model.Sort
	groups  []model.Group
}

func newState(data *model.SheetData) *state {
	st := &state{
		sheet:   data.Sheet,
		columns: append([]model.Column(nil), data.Columns...),
		rows:    append([]model.Row(nil), data.Rows...),
		cells:   make(map[string]*model.Cell, len(data.Cells)),
		byRow:   make(map[string]map[string]string, len(data.Rows)),
		views:   append([]model.View(nil), data.Views...),
		filters: append([]model.Filter(nil), data.Filters...),
		sorts:   append([]model.Sort(nil), data.Sorts...),
		groups:  append([]model.Group(nil), data.Groups...),
	}
	sort.SliceStable(st.rows, func(i, j int) bool { return st.rows[i].Position < st.rows[j].Position })
	for _, c := range data.Cells {
		st.putCell(c)
	}
	return st
}

func (st *state) putCell(c model.Cell) {
	cell := c
	st.cells[c.ID] = &cell
	byColumn, ok := st.byRow[c.RowID]
	if !ok {
		byColumn = make(map[string]string)
		st.byRow[c.RowID] = byColumn
	}
	byColumn[c.ColumnID] = c.ID
}

// CellValue 实现 resolver.CellLookup
func (st *state) CellValue(rowID, columnID string) *string {
	id, ok := st.byRow[rowID][columnID]
	if !ok {
		return nil
	}
	return st.cells[id].Value
}

// CellID 实现 selection.Cells
func (st *state) CellID(rowID, columnID string) (string, bool) {
	id, ok := st.byRow[rowID][columnID]
	return id, ok
}

// Value 实现 selection.Cells
func (st *state) Value(cellID string) *string {
	if c, ok := st.cells[cellID]; ok {
		return c.Value
	}
	return nil
}

func (st *state) rowIDs() []string {
	ids := make([]string, len(st.rows))
	for i, r := range st.rows {
		ids[i] = r.ID
	}
	return ids
}

func (st *state) rowIndex(rowID string) int {
	for i, r := range st.rows {
		if r.ID == rowID {
			return i
		}
	}
	return -1
}

func (st *state) column(columnID string) (*model.Column, bool) {
	for i := range st.columns {
		if st.columns[i].ID == columnID {
			return &st.columns[i], true
		}
	}
	return nil, false
}

// snapshot 行及其单元格（按列顺序）
func (st *state) snapshot(rowID string) (model.RowSnapshot, bool) {
	idx := st.rowIndex(rowID)
	if idx < 0 {
		return model.RowSnapshot{}, false
	}
	snap := model.RowSnapshot{Row: st.rows[idx], Position: idx}
	byColumn := st.byRow[rowID]
	for _, col := range st.columns {
		if id, ok := byColumn[col.ID]; ok {
			snap.Cells = append(snap.Cells, copyCell(*st.cells[id]))
		}
	}
	return snap, true
}

func (st *state) insertRow(snap model.RowSnapshot) {
	pos := min(max(snap.Position, 0), len(st.rows))
	st.rows = append(st.rows, model.Row{})
	copy(st.rows[pos+1:], st.rows[pos:])
	st.rows[pos] = snap.Row
	for _, c := range snap.Cells {
		st.putCell(copyCell(c))
	}
}

func (st *state) removeRow(rowID string) {
	idx := st.rowIndex(rowID)
	if idx < 0 {
		return
	}
	st.rows = append(st.rows[:idx], st.rows[idx+1:]...)
	for _, cellID := range st.byRow[rowID] {
		delete(st.cells, cellID)
	}
	delete(st.byRow, rowID)
}

// data 导出快照，单元格按行序、列序排列
func (st *state) data() model.SheetData {
	out := model.SheetData{
		Sheet:   st.sheet,
		Columns: append([]model.Column{}, st.columns...),
		Rows:    append([]model.Row{}, st.rows...),
		Cells:   make([]model.Cell, 0, len(st.cells)),
		Views:   append([]model.View{}, st.views...),
		Filters: append([]model.Filter{}, st.filters...),
		Sorts:   append([]model.Sort{}, st.sorts...),
		Groups:  append([]model.Group{}, st.groups...),
	}
	for _, r := range st.rows {
		for _, col := range st.columns {
			if id, ok := st.byRow[r.ID][col.ID]; ok {
				out.Cells = append(out.Cells, copyCell(*st.cells[id]))
			}
		}
	}
	return out
}

func copyCell(c model.Cell) model.Cell {
	if c.Value != nil {
		v := *c.Value
		c.Value = &v
	}
	return c
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// sameValue 比较文本，nil 与空串视为相同
func sameValue(a, b *string) bool {
	return text(a) == text(b)
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

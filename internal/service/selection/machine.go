package selection

import (
	"unicode"
	"unicode/utf8"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// Mode 选区状态
type Mode int

const (
	ModeIdle Mode = iota
	ModeCellSelected
	ModeCellEditing
)

func (m Mode) String() string {
	switch m {
	case ModeCellSelected:
		return "CELL_SELECTED"
	case ModeCellEditing:
		return "CELL_EDITING"
	default:
		return "IDLE"
	}
}

// Layout 当前可见的行与列，可包含 RowBreak / ColumnBreak 占位
type Layout struct {
	RowIDs    []string
	ColumnIDs []string
}

// Cells 状态机读取单元格所需的接口
type Cells interface {
	CellID(rowID, columnID string) (string, bool)
	Value(cellID string) *string
}

// ActionKind 状态机产生的动作类型
type ActionKind int

const (
	// ActionEdit 立即生效并记入历史的取值变更（输入种子、清空）
	ActionEdit ActionKind = iota
	// ActionDraft 编辑中的本地草稿，写入需经防抖
	ActionDraft
	// ActionCommit 编辑结束，From 为进入编辑时的值
	ActionCommit
)

// Action 由调用方执行的副作用描述
type Action struct {
	Kind   ActionKind
	CellID string
	From   *string
	To     *string
}

// Machine 单个 sheet 的选区/编辑状态机，本身不做任何 I/O，也不加锁
type Machine struct {
	mode      Mode
	activeRow string
	activeCol string
	anchorRow string
	anchorCol string

	editCellID string
	editStart  *string
	draft      string

	editingPrevented    bool
	navigationPrevented bool
}

// NewMachine 创建处于 IDLE 的状态机
func NewMachine() *Machine {
	return &Machine{}
}

// Mode 当前状态
func (m *Machine) Mode() Mode { return m.mode }

// Active 当前活动单元格的行、列
func (m *Machine) Active() (rowID, columnID string) { return m.activeRow, m.activeCol }

// Anchor 区域选择的起点
func (m *Machine) Anchor() (rowID, columnID string) { return m.anchorRow, m.anchorCol }

// EditingCellID 正在编辑的单元格
func (m *Machine) EditingCellID() string { return m.editCellID }

// Draft 编辑草稿
func (m *Machine) Draft() string { return m.draft }

// SetEditingPrevented 外部输入框获得/失去焦点时设置
func (m *Machine) SetEditingPrevented(v bool) { m.editingPrevented = v }

// SetNavigationPrevented 外部输入框获得/失去焦点时设置
func (m *Machine) SetNavigationPrevented(v bool) { m.navigationPrevented = v }

// Selection 导出为持久化/展示用的选区
func (m *Machine) Selection(cells Cells) model.Selection {
	sel := model.Selection{
		IsCellEditingPrevented:    m.editingPrevented,
		IsCellNavigationPrevented: m.navigationPrevented,
	}
	if m.mode == ModeIdle {
		return sel
	}
	sel.RangeStartCellID, _ = cells.CellID(m.anchorRow, m.anchorCol)
	sel.RangeEndCellID, _ = cells.CellID(m.activeRow, m.activeCol)
	return sel
}

// Select 聚焦单元格；若正在编辑其他单元格则先提交
func (m *Machine) Select(rowID, columnID string) []Action {
	actions := m.commit()
	m.mode = ModeCellSelected
	m.activeRow, m.activeCol = rowID, columnID
	m.anchorRow, m.anchorCol = rowID, columnID
	return actions
}

// Extend 保持起点，将活动单元格移到指定位置（区域选择）
func (m *Machine) Extend(rowID, columnID string) []Action {
	if m.mode == ModeIdle {
		return m.Select(rowID, columnID)
	}
	actions := m.commit()
	m.mode = ModeCellSelected
	m.activeRow, m.activeCol = rowID, columnID
	return actions
}

// Activate 双击：以当前值进入编辑
func (m *Machine) Activate(cells Cells) {
	if m.mode != ModeCellSelected || m.editingPrevented {
		return
	}
	cellID, ok := cells.CellID(m.activeRow, m.activeCol)
	if !ok {
		return
	}
	current := cells.Value(cellID)
	m.startEdit(cellID, current)
}

// Blur 失焦：提交编辑，保持选区
func (m *Machine) Blur() []Action {
	actions := m.commit()
	if m.mode == ModeCellEditing {
		m.mode = ModeCellSelected
	}
	return actions
}

// Reset 回到 IDLE（活动行被删除等），会先提交编辑
func (m *Machine) Reset() []Action {
	actions := m.commit()
	m.mode = ModeIdle
	m.activeRow, m.activeCol, m.anchorRow, m.anchorCol = "", "", "", ""
	return actions
}

// SetDraft 直接替换编辑草稿（非键盘输入源）
func (m *Machine) SetDraft(value string) []Action {
	if m.mode != ModeCellEditing || m.editingPrevented {
		return nil
	}
	m.draft = value
	return []Action{m.draftAction()}
}

// HandleKey 处理一次按键，key 采用 "up"、"shift+left"、"enter"、"a" 这样的名称
func (m *Machine) HandleKey(key string, layout Layout, cells Cells) []Action {
	switch m.mode {
	case ModeCellSelected:
		return m.handleSelectedKey(key, layout, cells)
	case ModeCellEditing:
		return m.handleEditingKey(key, layout)
	}
	return nil
}

func (m *Machine) handleSelectedKey(key string, layout Layout, cells Cells) []Action {
	switch key {
	case "up", "down", "left", "right", "tab":
		if !m.navigationPrevented {
			m.move(key, layout, false)
		}
		return nil
	case "shift+up", "shift+down", "shift+left", "shift+right":
		if !m.navigationPrevented {
			m.move(key[len("shift+"):], layout, true)
		}
		return nil
	case "esc":
		m.anchorRow, m.anchorCol = m.activeRow, m.activeCol
		return nil
	}

	if m.editingPrevented {
		return nil
	}
	cellID, ok := cells.CellID(m.activeRow, m.activeCol)
	if !ok {
		return nil
	}

	switch key {
	case "enter":
		m.startEdit(cellID, cells.Value(cellID))
		return nil
	case "delete", "backspace":
		prior := cells.Value(cellID)
		empty := ""
		m.startEdit(cellID, &empty)
		return []Action{{Kind: ActionEdit, CellID: cellID, From: prior, To: strPtr("")}}
	}

	seed, ok := printable(key)
	if !ok {
		return nil
	}
	prior := cells.Value(cellID)
	m.startEdit(cellID, &seed)
	return []Action{{Kind: ActionEdit, CellID: cellID, From: prior, To: strPtr(seed)}}
}

func (m *Machine) handleEditingKey(key string, layout Layout) []Action {
	if m.editingPrevented {
		return nil
	}

	switch key {
	case "enter", "down", "tab", "up":
		actions := m.commit()
		m.mode = ModeCellSelected
		if !m.navigationPrevented {
			dir := key
			if dir == "enter" {
				dir = "down"
			}
			m.move(dir, layout, false)
		}
		return actions
	case "esc":
		return m.Blur()
	case "backspace", "delete":
		if m.draft == "" {
			return nil
		}
		_, size := utf8.DecodeLastRuneInString(m.draft)
		m.draft = m.draft[:len(m.draft)-size]
		return []Action{m.draftAction()}
	}

	text, ok := printable(key)
	if !ok {
		return nil
	}
	m.draft += text
	return []Action{m.draftAction()}
}

func (m *Machine) startEdit(cellID string, start *string) {
	m.mode = ModeCellEditing
	m.editCellID = cellID
	m.editStart = copyPtr(start)
	m.draft = ""
	if start != nil {
		m.draft = *start
	}
	m.anchorRow, m.anchorCol = m.activeRow, m.activeCol
}

// commit 结束编辑并产生提交动作；不在编辑中时返回 nil
func (m *Machine) commit() []Action {
	if m.mode != ModeCellEditing {
		return nil
	}
	action := Action{Kind: ActionCommit, CellID: m.editCellID, From: m.editStart, To: strPtr(m.draft)}
	m.mode = ModeCellSelected
	m.editCellID = ""
	m.editStart = nil
	m.draft = ""
	return []Action{action}
}

func (m *Machine) draftAction() Action {
	return Action{Kind: ActionDraft, CellID: m.editCellID, From: m.editStart, To: strPtr(m.draft)}
}

// move 按方向移动一格，跳过占位；extend 为 false 时起点跟随
func (m *Machine) move(dir string, layout Layout, extend bool) {
	switch dir {
	case "up":
		m.activeRow = step(layout.RowIDs, m.activeRow, -1, model.RowBreak)
	case "down":
		m.activeRow = step(layout.RowIDs, m.activeRow, 1, model.RowBreak)
	case "left":
		m.activeCol = step(layout.ColumnIDs, m.activeCol, -1, model.ColumnBreak)
	case "right", "tab":
		m.activeCol = step(layout.ColumnIDs, m.activeCol, 1, model.ColumnBreak)
	}
	if !extend {
		m.anchorRow, m.anchorCol = m.activeRow, m.activeCol
	}
}

// RangeRows 起点到活动单元格之间（含两端）的可见数据行；只有一端可见时只返回该端所在行
func (m *Machine) RangeRows(layout Layout) []string {
	if m.mode == ModeIdle {
		return nil
	}
	from, to := indexOf(layout.RowIDs, m.anchorRow), indexOf(layout.RowIDs, m.activeRow)
	switch {
	case to < 0 && from >= 0:
		// 终点行被过滤掉时只删起点行
		return []string{m.anchorRow}
	case to < 0:
		return nil
	case from < 0:
		return []string{m.activeRow}
	}
	if from > to {
		from, to = to, from
	}
	var rows []string
	for _, id := range layout.RowIDs[from : to+1] {
		if id != model.RowBreak {
			rows = append(rows, id)
		}
	}
	return rows
}

// step 从 current 出发按 delta 找到下一个非占位项；越界或找不到 current 时原地不动
func step(ids []string, current string, delta int, sentinel string) string {
	i := indexOf(ids, current)
	if i < 0 {
		return current
	}
	for j := i + delta; j >= 0 && j < len(ids); j += delta {
		if ids[j] != sentinel {
			return ids[j]
		}
	}
	return current
}

func indexOf(ids []string, id string) int {
	if id == "" {
		return -1
	}
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// printable 单个可打印字符（含 "space"）
func printable(key string) (string, bool) {
	if key == "space" {
		return " ", true
	}
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || size != len(key) || !unicode.IsPrint(r) {
		return "", false
	}
	return key, true
}

func strPtr(s string) *string { return &s }

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chompchompbalboa/simplesheet/internal/exporter"
	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/service/selection"
	"github.com/chompchompbalboa/simplesheet/internal/service/session"
)

// Options 终端编辑器参数
type Options struct {
	ExportDir string // ctrl+e 导出目录，空为当前目录
}

type mode int

const (
	modeGrid mode = iota
	modeFilterPrompt
)

// Model bubbletea 模型：网格视图 + 快速筛选输入
type Model struct {
	sess *session.Session
	opts Options
	keys KeyMap
	help help.Model

	filter textinput.Model
	mode   mode

	width  int
	height int
	offset int // 首个显示的可见行下标

	status string
	err    error
}

// New 创建终端编辑器模型，并聚焦第一个可见单元格
func New(sess *session.Session, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "filter> "
	ti.Placeholder = "Column >= value;"
	ti.CharLimit = 256

	m := Model{
		sess:   sess,
		opts:   opts,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		filter: ti,
		width:  80,
		height: 24,
	}
	m.selectFirst()
	return m
}

// Run 运行终端编辑器直到退出，退出前提交正在编辑的单元格
func Run(sess *session.Session, opts Options) error {
	p := tea.NewProgram(New(sess, opts), tea.WithAltScreen())
	_, err := p.Run()
	sess.Blur()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scrollToActive()
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.sess.Blur()
			return m, tea.Quit
		}
		if m.mode == modeFilterPrompt {
			return m.updateFilterPrompt(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m Model) updateFilterPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		expr := m.filter.Value()
		m.closePrompt()
		f, err := m.sess.AddFilterExpression(expr)
		m.setResult(fmt.Sprintf("filter %s %s %s", m.columnName(f.ColumnID), f.Operator, f.Value), err)
		m.selectFirstIfLost()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	editing := m.sess.EditState().Mode == selection.ModeCellEditing
	m.err = nil

	// 编辑中只有退出与撤销类按键走应用级处理
	if !editing {
		switch {
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Filter):
			m.mode = modeFilterPrompt
			m.sess.SetEditingPrevented(true)
			m.sess.SetNavigationPrevented(true)
			cmd := m.filter.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.ClearFilters):
			m.setResult("filters cleared", m.clearFilters())
			return m, nil
		case key.Matches(msg, m.keys.InsertRow):
			m.insertRow()
			return m, nil
		case key.Matches(msg, m.keys.DeleteRows):
			n, err := m.sess.DeleteSelectedRange()
			m.setResult(fmt.Sprintf("deleted %d rows", n), err)
			m.selectFirstIfLost()
			return m, nil
		case key.Matches(msg, m.keys.NextView):
			m.setResult("view "+m.nextView(), nil)
			return m, nil
		case key.Matches(msg, m.keys.Export):
			path, err := m.export()
			m.setResult("exported to "+path, err)
			return m, nil
		}
	}

	if err := m.sess.HandleKey(msg.String()); err != nil {
		m.err = err
	} else if key.Matches(msg, m.keys.Undo) {
		m.status = "undo"
	} else if key.Matches(msg, m.keys.Redo) {
		m.status = "redo"
	}
	m.selectFirstIfLost()
	m.scrollToActive()
	return m, nil
}

// closePrompt 关闭筛选输入框，恢复表格的编辑与导航
func (m *Model) closePrompt() {
	m.mode = modeGrid
	m.filter.Blur()
	m.filter.SetValue("")
	m.sess.SetEditingPrevented(false)
	m.sess.SetNavigationPrevented(false)
}

func (m *Model) setResult(status string, err error) {
	if err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.status = status
}

// selectFirst 聚焦第一个可见数据单元格
func (m *Model) selectFirst() {
	rows := dataRows(m.sess.Resolve().VisibleRows)
	cols, _ := m.sess.VisibleColumns("")
	cols = dataColumns(cols)
	if len(rows) == 0 || len(cols) == 0 {
		return
	}
	if err := m.sess.SelectAt(rows[0], cols[0]); err != nil {
		m.err = err
	}
	m.offset = 0
}

// selectFirstIfLost 活动行被删除或被筛掉时重新聚焦；编辑中的单元格保持不动，提交后再处理
func (m *Model) selectFirstIfLost() {
	es := m.sess.EditState()
	if es.Mode == selection.ModeCellEditing {
		return
	}
	if es.Mode != selection.ModeIdle && indexOf(m.sess.Resolve().VisibleRows, es.ActiveRow) >= 0 {
		return
	}
	m.selectFirst()
}

func (m *Model) insertRow() {
	es := m.sess.EditState()
	row, err := m.sess.InsertRow(es.ActiveRow)
	if err != nil {
		m.err = err
		return
	}
	col := es.ActiveCol
	if col == "" {
		cols, _ := m.sess.VisibleColumns("")
		if cols = dataColumns(cols); len(cols) > 0 {
			col = cols[0]
		}
	}
	if col != "" {
		if err := m.sess.SelectAt(row.ID, col); err != nil {
			m.err = err
			return
		}
	}
	m.status = "row inserted"
	m.scrollToActive()
}

func (m *Model) clearFilters() error {
	for _, f := range m.sess.Data().Filters {
		if err := m.sess.RemoveFilter(f.ID); err != nil {
			return err
		}
	}
	return nil
}

// nextView 切换到下一个视图，返回视图名
func (m *Model) nextView() string {
	views := m.sess.Data().Views
	if len(views) == 0 {
		return "(all columns)"
	}
	current := m.sess.ActiveView()
	next := views[0]
	for i, v := range views {
		if v.ID == current {
			next = views[(i+1)%len(views)]
			break
		}
	}
	if err := m.sess.SetActiveView(next.ID); err != nil {
		m.err = err
	}
	m.selectFirstIfLostColumn()
	return next.Name
}

// selectFirstIfLostColumn 活动列不在新视图中时重新聚焦
func (m *Model) selectFirstIfLostColumn() {
	es := m.sess.EditState()
	cols, _ := m.sess.VisibleColumns("")
	if indexOf(cols, es.ActiveCol) < 0 {
		m.selectFirst()
	}
}

func (m *Model) export() (string, error) {
	data := m.sess.Data()
	f, err := exporter.NewExporter().Export(data, exporter.ExportOptions{
		ViewID:          m.sess.ActiveView(),
		VisibleRows:     m.sess.VisibleRows(),
		IncludeSettings: true,
	})
	if err != nil {
		return "", err
	}
	defer f.Close()

	dir := m.opts.ExportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(dir, exportFilename(data.Sheet.Name))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save export: %w", err)
	}
	return path, nil
}

func exportFilename(sheetName string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(strings.TrimSpace(sheetName))
	if name == "" {
		name = "sheet"
	}
	return name + ".xlsx"
}

// scrollToActive 保证活动行在可视区域内
func (m *Model) scrollToActive() {
	idx := indexOf(m.sess.Resolve().VisibleRows, m.sess.EditState().ActiveRow)
	if idx < 0 {
		return
	}
	h := m.gridHeight()
	if idx < m.offset {
		m.offset = idx
	}
	if idx >= m.offset+h {
		m.offset = idx - h + 1
	}
}

// gridHeight 数据行可用高度：标题、表头、分隔线、状态栏、帮助各占一行
func (m Model) gridHeight() int {
	h := m.height - 5
	if m.mode == modeFilterPrompt {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) columnName(columnID string) string {
	for _, c := range m.sess.Data().Columns {
		if c.ID == columnID {
			return c.Name
		}
	}
	return columnID
}

func dataRows(rows []string) []string {
	out := make([]string, 0, len(rows))
	for _, id := range rows {
		if id != model.RowBreak {
			out = append(out, id)
		}
	}
	return out
}

func dataColumns(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, id := range cols {
		if id != model.ColumnBreak {
			out = append(out, id)
		}
	}
	return out
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

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/service/selection"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	cursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	rangeStyle  = lipgloss.NewStyle().Background(lipgloss.Color("238"))
	editStyle   = lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const (
	pixelsPerChar  = 8
	minCellChars   = 4
	maxCellChars   = 30
	leaderChars    = 5
	breakSeparator = " ┃ "
)

// grid 一次渲染所需的快照
type grid struct {
	columns map[string]model.Column
	values  map[string]map[string]string
	visCols []string
	visRows []string
	leaders map[string]int
	state   sessionState
}

type sessionState struct {
	mode                 selection.Mode
	activeRow, activeCol string
	anchorRow, anchorCol string
	draft                string
}

func (m Model) snapshot() grid {
	data := m.sess.Data()
	res := m.sess.Resolve()
	cols, err := m.sess.VisibleColumns("")
	if err != nil {
		cols = nil
	}
	es := m.sess.EditState()

	g := grid{
		columns: make(map[string]model.Column, len(data.Columns)),
		values:  make(map[string]map[string]string, len(data.Rows)),
		visCols: cols,
		visRows: res.VisibleRows,
		leaders: res.RowLeaders,
		state: sessionState{
			mode:      es.Mode,
			activeRow: es.ActiveRow,
			activeCol: es.ActiveCol,
			anchorRow: es.AnchorRow,
			anchorCol: es.AnchorCol,
			draft:     es.Draft,
		},
	}
	for _, c := range data.Columns {
		g.columns[c.ID] = c
	}
	for i := range data.Cells {
		c := &data.Cells[i]
		byCol, ok := g.values[c.RowID]
		if !ok {
			byCol = make(map[string]string)
			g.values[c.RowID] = byCol
		}
		byCol[c.ColumnID] = c.Text()
	}
	return g
}

// inRange 单元格是否落在锚点与活动单元格围成的矩形内
func (g grid) inRange(rowIdx, colIdx int) bool {
	if g.state.anchorRow == "" || g.state.mode == selection.ModeIdle {
		return false
	}
	r1, r2 := indexOf(g.visRows, g.state.anchorRow), indexOf(g.visRows, g.state.activeRow)
	c1, c2 := indexOf(g.visCols, g.state.anchorCol), indexOf(g.visCols, g.state.activeCol)
	if r1 < 0 || r2 < 0 || c1 < 0 || c2 < 0 {
		return false
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	return rowIdx >= r1 && rowIdx <= r2 && colIdx >= c1 && colIdx <= c2
}

func cellChars(c model.Column) int {
	w := c.Width / pixelsPerChar
	if w < minCellChars {
		w = minCellChars
	}
	if w > maxCellChars {
		w = maxCellChars
	}
	return w
}

func fit(text string, width int) string {
	r := []rune(text)
	if len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return text + strings.Repeat(" ", width-len(r))
}

func alignRight(text string, width int) string {
	r := []rune(text)
	if len(r) >= width {
		return fit(text, width)
	}
	return strings.Repeat(" ", width-len(r)) + text
}

// View 渲染标题、表头、可见行、状态栏与帮助
func (m Model) View() string {
	g := m.snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render(" " + m.sess.Sheet().Name))
	if name := m.viewName(); name != "" {
		b.WriteString(dimStyle.Render("  [" + name + "]"))
	}
	b.WriteString("\n")

	// 表头
	b.WriteString(strings.Repeat(" ", leaderChars+1))
	for _, id := range g.visCols {
		if id == model.ColumnBreak {
			b.WriteString(dimStyle.Render(breakSeparator))
			continue
		}
		c := g.columns[id]
		b.WriteString(headerStyle.Render(" " + fit(c.Name, cellChars(c)) + " "))
	}
	b.WriteString("\n")

	var sep strings.Builder
	sep.WriteString(strings.Repeat("─", leaderChars+1))
	for _, id := range g.visCols {
		if id == model.ColumnBreak {
			sep.WriteString("─╂─")
			continue
		}
		sep.WriteString(strings.Repeat("─", cellChars(g.columns[id])+2))
	}
	b.WriteString(dimStyle.Render(sep.String()))
	b.WriteString("\n")

	// 数据行
	end := m.offset + m.gridHeight()
	if end > len(g.visRows) {
		end = len(g.visRows)
	}
	if len(g.visRows) == 0 {
		b.WriteString(dimStyle.Render(" (no rows)") + "\n")
	}
	for ri := m.offset; ri < end; ri++ {
		rowID := g.visRows[ri]
		if rowID == model.RowBreak {
			b.WriteString(dimStyle.Render(strings.Repeat("┄", len([]rune(sep.String())))))
			b.WriteString("\n")
			continue
		}
		b.WriteString(dimStyle.Render(alignRight(fmt.Sprint(g.leaders[rowID]), leaderChars)) + " ")
		for ci, colID := range g.visCols {
			if colID == model.ColumnBreak {
				b.WriteString(dimStyle.Render(breakSeparator))
				continue
			}
			b.WriteString(m.renderCell(g, rowID, colID, ri, ci))
		}
		b.WriteString("\n")
	}

	if m.mode == modeFilterPrompt {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine(g))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderCell(g grid, rowID, colID string, ri, ci int) string {
	c := g.columns[colID]
	w := cellChars(c)
	active := rowID == g.state.activeRow && colID == g.state.activeCol

	if active && g.state.mode == selection.ModeCellEditing {
		return editStyle.Render(" " + fit(g.state.draft+"_", w) + " ")
	}

	text := g.values[rowID][colID]
	var display string
	switch c.Type {
	case model.ColumnTypeNumber:
		display = alignRight(text, w)
	case model.ColumnTypeBoolean:
		display = fit(strings.ToUpper(text), w)
	default:
		display = fit(text, w)
	}
	cell := " " + display + " "

	switch {
	case active:
		return cursorStyle.Render(cell)
	case g.inRange(ri, ci):
		return rangeStyle.Render(cell)
	}
	return cell
}

func (m Model) statusLine(g grid) string {
	rows := len(g.leaders)
	parts := []string{
		fmt.Sprintf(" %s", g.state.mode),
		fmt.Sprintf("%d rows", rows),
	}
	if m.sess.CanUndo() {
		parts = append(parts, "undo")
	}
	if m.sess.CanRedo() {
		parts = append(parts, "redo")
	}
	line := statusStyle.Render(strings.Join(parts, "  "))
	if m.err != nil {
		return line + "  " + errorStyle.Render(m.err.Error())
	}
	if m.status != "" {
		return line + "  " + dimStyle.Render(m.status)
	}
	return line
}

func (m Model) viewName() string {
	id := m.sess.ActiveView()
	for _, v := range m.sess.Data().Views {
		if v.ID == id {
			return v.Name
		}
	}
	return ""
}

package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chompchompbalboa/simplesheet/internal/importer"
	"github.com/chompchompbalboa/simplesheet/internal/parser"
	"github.com/chompchompbalboa/simplesheet/internal/service/selection"
	"github.com/chompchompbalboa/simplesheet/internal/service/session"
	"github.com/chompchompbalboa/simplesheet/internal/store"
)

const peopleCSV = "Name,Score\nAnn,15\nBob,5\nCid,20\n"

func newTestModel(t *testing.T) (Model, *session.Session) {
	t.Helper()
	ctx := context.Background()

	st, err := store.New(filepath.Join(t.TempDir(), "simplesheet.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	records, err := parser.ReadCSV(strings.NewReader(peopleCSV))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	report, err := importer.NewCoordinator(st, importer.DefaultOptions()).ImportRecords(ctx, "people", "people.csv", records)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	data, err := st.LoadSheet(ctx, report.SheetID)
	if err != nil {
		t.Fatalf("load sheet: %v", err)
	}
	sess := session.New(data, st, session.Options{})
	t.Cleanup(func() {
		sess.Close()
		_ = st.Close()
	})
	return New(sess, Options{ExportDir: t.TempDir()}), sess
}

func press(m Model, msgs ...tea.KeyMsg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_FocusesFirstCell(t *testing.T) {
	m, sess := newTestModel(t)

	es := sess.EditState()
	if es.Mode != selection.ModeCellSelected {
		t.Fatalf("expected a selected cell, got %s", es.Mode)
	}
	cell, ok := sess.CellAt(es.ActiveRow, es.ActiveCol)
	if !ok || cell.Text() != "Ann" {
		t.Fatalf("unexpected focused cell: %+v", cell)
	}

	view := m.View()
	for _, want := range []string{"people", "Name", "Score", "Ann", "Cid", "3 rows"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_TypeAndCommit(t *testing.T) {
	m, sess := newTestModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyRight}, runes("9"), runes("9"))
	es := sess.EditState()
	if es.Mode != selection.ModeCellEditing || es.Draft != "99" {
		t.Fatalf("unexpected edit state: %+v", es)
	}
	if !strings.Contains(m.View(), "99_") {
		t.Fatalf("draft not rendered:\n%s", m.View())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	es = sess.EditState()
	if es.Mode != selection.ModeCellSelected {
		t.Fatalf("expected commit to leave editing, got %s", es.Mode)
	}
	rows := sess.VisibleRows()
	cell, _ := sess.CellAt(rows[0], es.ActiveCol)
	if cell.Text() != "99" {
		t.Fatalf("unexpected committed value: %q", cell.Text())
	}
	if es.ActiveRow != rows[1] {
		t.Fatalf("enter should move down")
	}

	// 首个字符与提交各记一步
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	cell, _ = sess.CellAt(rows[0], es.ActiveCol)
	if cell.Text() != "9" {
		t.Fatalf("first undo should restore the seed, got %q", cell.Text())
	}
	press(m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	cell, _ = sess.CellAt(rows[0], es.ActiveCol)
	if cell.Text() != "15" {
		t.Fatalf("second undo should restore 15, got %q", cell.Text())
	}
}

func TestModel_FilterPrompt(t *testing.T) {
	m, sess := newTestModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlF})
	if m.mode != modeFilterPrompt {
		t.Fatalf("expected filter prompt")
	}
	m = press(m, runes("Score >= 10;"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeGrid {
		t.Fatalf("expected grid mode after submit")
	}
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if rows := sess.VisibleRows(); len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %v", rows)
	}
	if strings.Contains(m.View(), "Bob") {
		t.Fatalf("filtered row still rendered")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlF}, runes("Nope = 1;"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.err == nil {
		t.Fatalf("expected error for unknown column")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if rows := sess.VisibleRows(); len(rows) != 3 {
		t.Fatalf("expected filters cleared, got %v", rows)
	}
}

func TestModel_EditStaysOnFilteredOutRow(t *testing.T) {
	m, sess := newTestModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlF}, runes("Name = Ann|Cid;"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	es := sess.EditState()
	annRow, nameCol := es.ActiveRow, es.ActiveCol
	if cell, _ := sess.CellAt(annRow, nameCol); cell.Text() != "Ann" {
		t.Fatalf("expected focus on Ann, got %q", cell.Text())
	}
	rows := sess.VisibleRows()
	cidRow := rows[len(rows)-1]

	// 首个字符就让该行不再满足筛选条件
	m = press(m, runes("Z"), runes("o"), runes("e"))
	es = sess.EditState()
	if es.Mode != selection.ModeCellEditing || es.ActiveRow != annRow {
		t.Fatalf("editing should stay on the original row: %+v", es)
	}
	if es.Draft != "Zoe" {
		t.Fatalf("unexpected draft: %q", es.Draft)
	}
	if cell, _ := sess.CellAt(cidRow, nameCol); cell.Text() != "Cid" {
		t.Fatalf("another row was overwritten: %q", cell.Text())
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cell, _ := sess.CellAt(annRow, nameCol); cell.Text() != "Zoe" {
		t.Fatalf("unexpected committed value: %q", cell.Text())
	}
	if cell, _ := sess.CellAt(cidRow, nameCol); cell.Text() != "Cid" {
		t.Fatalf("commit touched another row: %q", cell.Text())
	}
	if es := sess.EditState(); es.ActiveRow != cidRow {
		t.Fatalf("focus should move to the first visible row after commit, got %s", es.ActiveRow)
	}
}

func TestModel_FilterPromptBlocksGridKeys(t *testing.T) {
	m, sess := newTestModel(t)
	before := sess.EditState()

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlF})
	sel := sess.Selection()
	if !sel.IsCellEditingPrevented || !sel.IsCellNavigationPrevented {
		t.Fatalf("prompt focus should block the grid: %+v", sel)
	}
	if err := sess.HandleKey("x"); err != nil {
		t.Fatalf("HandleKey: %v", err)
	}
	if err := sess.HandleKey("down"); err != nil {
		t.Fatalf("HandleKey: %v", err)
	}
	es := sess.EditState()
	if es.Mode != selection.ModeCellSelected || es.ActiveRow != before.ActiveRow {
		t.Fatalf("grid keys leaked past the prompt: %+v", es)
	}
	if cell, _ := sess.CellAt(before.ActiveRow, before.ActiveCol); cell.Text() != "Ann" {
		t.Fatalf("cell changed while the prompt was open: %q", cell.Text())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	sel = sess.Selection()
	if sel.IsCellEditingPrevented || sel.IsCellNavigationPrevented {
		t.Fatalf("cancel should release the grid: %+v", sel)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlF}, runes("Score >= 10;"), tea.KeyMsg{Type: tea.KeyEnter})
	sel = sess.Selection()
	if sel.IsCellEditingPrevented || sel.IsCellNavigationPrevented {
		t.Fatalf("submit should release the grid: %+v", sel)
	}
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	if es := sess.EditState(); es.ActiveRow == before.ActiveRow {
		t.Fatalf("navigation should work again after the prompt closes")
	}
}

func TestModel_InsertDeleteAndExport(t *testing.T) {
	m, sess := newTestModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if rows := sess.VisibleRows(); len(rows) != 4 {
		t.Fatalf("expected 4 rows after insert, got %d", len(rows))
	}
	es := sess.EditState()
	if indexOf(sess.VisibleRows(), es.ActiveRow) != 1 {
		t.Fatalf("new row should be focused below the first one")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if rows := sess.VisibleRows(); len(rows) != 3 {
		t.Fatalf("expected 3 rows after delete, got %d", len(rows))
	}
	if sess.EditState().Mode != selection.ModeCellSelected {
		t.Fatalf("expected focus to move to a remaining cell")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.err != nil {
		t.Fatalf("export failed: %v", m.err)
	}
	if _, err := os.Stat(filepath.Join(m.opts.ExportDir, "people.xlsx")); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
}

func TestExportFilename(t *testing.T) {
	cases := map[string]string{
		"people":    "people.xlsx",
		"a/b":       "a_b.xlsx",
		"  ":        "sheet.xlsx",
		"Q1: sales": "Q1_ sales.xlsx",
	}
	for in, want := range cases {
		if got := exportFilename(in); got != want {
			t.Fatalf("exportFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

package history

import (
	"errors"
	"testing"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// recorder 记录被执行的命令
type recorder struct {
	applied []model.Command
	fail    error
}

func (r *recorder) Apply(cmd model.Command) error {
	if r.fail != nil {
		return r.fail
	}
	r.applied = append(r.applied, cmd)
	return nil
}

func cellStep(cellID, before, after string) model.HistoryStep {
	return model.HistoryStep{
		Label:   "edit " + cellID,
		Forward: model.Command{Kind: model.CmdUpdateCells, Cells: []model.CellChange{{CellID: cellID, Value: &after}}},
		Inverse: model.Command{Kind: model.CmdUpdateCells, Cells: []model.CellChange{{CellID: cellID, Value: &before}}},
	}
}

func TestJournal_UndoRedo(t *testing.T) {
	j := NewJournal()
	r := &recorder{}

	j.Push(cellStep("c1", "a", "b"))
	j.Push(cellStep("c1", "b", "c"))

	step, err := j.Undo(r)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := *r.applied[0].Cells[0].Value; got != "b" {
		t.Fatalf("undo applied %q, want b", got)
	}
	if step.Label != "edit c1" {
		t.Fatalf("unexpected step label %q", step.Label)
	}

	if _, err := j.Redo(r); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if got := *r.applied[1].Cells[0].Value; got != "c" {
		t.Fatalf("redo applied %q, want c", got)
	}

	if undo, redo := j.Len(); undo != 2 || redo != 0 {
		t.Fatalf("Len = %d,%d want 2,0", undo, redo)
	}
}

func TestJournal_PushClearsRedo(t *testing.T) {
	j := NewJournal()
	r := &recorder{}

	j.Push(cellStep("c1", "a", "b"))
	if _, err := j.Undo(r); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !j.CanRedo() {
		t.Fatal("expected redo to be available")
	}

	j.Push(cellStep("c2", "x", "y"))
	if j.CanRedo() {
		t.Fatal("push must clear the redo stack")
	}
	if _, err := j.Redo(r); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("Redo err = %v, want ErrNothingToRedo", err)
	}
}

func TestJournal_EmptyStacks(t *testing.T) {
	j := NewJournal()
	if _, err := j.Undo(&recorder{}); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("Undo err = %v, want ErrNothingToUndo", err)
	}
	if _, err := j.Redo(&recorder{}); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("Redo err = %v, want ErrNothingToRedo", err)
	}
}

func TestJournal_FailedApplyLeavesStacksIntact(t *testing.T) {
	j := NewJournal()
	j.Push(cellStep("c1", "a", "b"))

	boom := errors.New("boom")
	if _, err := j.Undo(&recorder{fail: boom}); !errors.Is(err, boom) {
		t.Fatalf("Undo err = %v, want boom", err)
	}
	if undo, redo := j.Len(); undo != 1 || redo != 0 {
		t.Fatalf("Len = %d,%d want 1,0", undo, redo)
	}
}

func TestJournal_CompositeStepIsOneUnit(t *testing.T) {
	j := NewJournal()
	r := &recorder{}

	j.Push(model.HistoryStep{
		Label:   "delete rows",
		Forward: model.Command{Kind: model.CmdDeleteRows, RowIDs: []string{"r1", "r2", "r3"}},
		Inverse: model.Command{Kind: model.CmdCreateRows, Rows: []model.RowSnapshot{
			{Row: model.Row{ID: "r1"}}, {Row: model.Row{ID: "r2"}}, {Row: model.Row{ID: "r3"}},
		}},
	})

	if _, err := j.Undo(r); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(r.applied) != 1 || len(r.applied[0].Rows) != 3 {
		t.Fatalf("expected one composite command restoring 3 rows, got %+v", r.applied)
	}
	if j.CanUndo() {
		t.Fatal("composite step must be undone as a whole")
	}
}

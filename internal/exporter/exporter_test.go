package exporter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/chompchompbalboa/simplesheet/internal/importer"
	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/parser"
)

func strPtr(s string) *string { return &s }

func sampleSheet() model.SheetData {
	return model.SheetData{
		Sheet: model.Sheet{ID: "s1", Name: "Team: Q1"},
		Columns: []model.Column{
			{ID: "c1", Name: "Name", Type: model.ColumnTypeString, Width: 120},
			{ID: "c2", Name: "Score", Type: model.ColumnTypeNumber, Width: 60},
			{ID: "c3", Name: "Active", Type: model.ColumnTypeBoolean, Width: 50},
		},
		Rows: []model.Row{{ID: "r1", Position: 0}, {ID: "r2", Position: 1}},
		Cells: []model.Cell{
			{ID: "a", RowID: "r1", ColumnID: "c1", Value: strPtr("Ann")},
			{ID: "b", RowID: "r1", ColumnID: "c2", Value: strPtr("12.5")},
			{ID: "c", RowID: "r1", ColumnID: "c3", Value: strPtr("true")},
			{ID: "d", RowID: "r2", ColumnID: "c1", Value: strPtr("Bob")},
			{ID: "e", RowID: "r2", ColumnID: "c2", Value: strPtr("007")},
			{ID: "f", RowID: "r2", ColumnID: "c3", Value: nil},
		},
		Views: []model.View{{ID: "v1", Name: "Main", VisibleColumns: []string{"c1", model.ColumnBreak, "c2", "c3"}}},
	}
}

func TestExport_TypedCellsAndOrder(t *testing.T) {
	t.Parallel()

	f, err := NewExporter().Export(sampleSheet(), ExportOptions{VisibleRows: []string{"r2", model.RowBreak, "r1"}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != "Team_ Q1" {
		t.Fatalf("unexpected sheet name %q", sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "COLUMN_BREAK_1" || rows[0][2] != "Score" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "Bob" || rows[2][0] != "Ann" {
		t.Fatalf("rows must follow the visible order: %v", rows)
	}

	typ, err := f.GetCellType(sheet, "C3")
	if err != nil {
		t.Fatalf("GetCellType: %v", err)
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		t.Fatalf("expected numeric cell, got %v", typ)
	}
	if v, _ := f.GetCellValue(sheet, "C2"); v != "007" {
		t.Fatalf("non-canonical number must keep its text, got %q", v)
	}
}

func TestExport_UnknownView(t *testing.T) {
	t.Parallel()

	if _, err := NewExporter().Export(sampleSheet(), ExportOptions{ViewID: "nope"}); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestExport_SettingsRoundTrip(t *testing.T) {
	t.Parallel()

	var progress []int
	f, err := NewExporter().Export(sampleSheet(), ExportOptions{
		IncludeSettings: true,
		Progress:        func(e ProgressEvent) { progress = append(progress, e.Percent) },
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	_ = f.Close()
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("unexpected progress: %v", progress)
	}

	records, err := parser.ReadXLSX(&buf, "")
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	b, err := importer.Build(records, importer.DefaultBuildOptions("copy"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(b.Columns) != 3 || len(b.Rows) != 2 {
		t.Fatalf("unexpected round trip: %d columns, %d rows", len(b.Columns), len(b.Rows))
	}
	if b.Columns[0].Width != 120 || b.Columns[2].Type != model.ColumnTypeBoolean {
		t.Fatalf("column settings lost: %+v", b.Columns)
	}
	if len(b.Views) != 1 || b.Views[0].Name != "Main" || b.Views[0].VisibleColumns[1] != model.ColumnBreak {
		t.Fatalf("view lost: %+v", b.Views)
	}
}

func TestExport_ProgressIsMonotonic(t *testing.T) {
	t.Parallel()

	var events []ProgressEvent
	f, err := NewExporter().Export(sampleSheet(), ExportOptions{
		Progress: func(e ProgressEvent) { events = append(events, e) },
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	if len(events) == 0 || events[len(events)-1].Percent != 100 || events[len(events)-1].Stage != "done" {
		t.Fatalf("unexpected progress events: %+v", events)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent <= events[i-1].Percent {
			t.Fatalf("progress must increase: %+v", events)
		}
	}
}

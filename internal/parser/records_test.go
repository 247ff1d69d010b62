package parser

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	input := "\ufeffName,Age,Name\nAlice,30,Alicia\n,,\nBob\n"
	records, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3 (blank row kept)", len(records))
	}
	if !reflect.DeepEqual(records[0].Names, []string{"Name", "Age"}) {
		t.Fatalf("unexpected names: %v", records[0].Names)
	}
	if records[0].Get("Name") != "Alicia" {
		t.Fatalf("duplicate column should keep last value, got %q", records[0].Get("Name"))
	}
	if got := records[1].Cells(); !reflect.DeepEqual(got, []string{"", ""}) {
		t.Fatalf("blank row should become an empty record, got %v", got)
	}
	if records[2].Get("Name") != "Bob" || records[2].Get("Age") != "" {
		t.Fatalf("short row should pad with empty text, got %v", records[2].Cells())
	}
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	rows := [][]interface{}{
		{"Name", "Score"},
		{"[TS][SHEET_VIEW_NAME=Main]", ""},
		{"Alice", "15"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := wb.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	records, err := ReadFile("input.xlsx", &buf, "")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if !IsSheetViewRecord(records[0]) {
		t.Fatalf("expected first record to be a view record")
	}
	if records[1].Get("Score") != "15" {
		t.Fatalf("unexpected score: %q", records[1].Get("Score"))
	}
}

func TestReadFile_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := ReadFile("notes.txt", strings.NewReader("x"), ""); err == nil {
		t.Fatal("expected error for unsupported file type")
	}
}

package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/parser"
	"github.com/chompchompbalboa/simplesheet/internal/store"
)

// fakeGateway 记录每次写入的批次大小
type fakeGateway struct {
	mu          sync.Mutex
	rowBatches  []int
	cellBatches []int
	columns     int
	views       []model.View
	failCells   bool
	afterRows   func()
	logStatus   model.ImportLogStatus
}

func (f *fakeGateway) CreateSheet(ctx context.Context, sheet model.Sheet) error { return nil }

func (f *fakeGateway) CreateColumns(ctx context.Context, columns []model.Column) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.columns += len(columns)
	return nil
}

func (f *fakeGateway) CreateRows(ctx context.Context, rows []model.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rowBatches = append(f.rowBatches, len(rows))
	if f.afterRows != nil {
		f.afterRows()
	}
	return nil
}

func (f *fakeGateway) CreateCells(ctx context.Context, cells []model.Cell) error {
	if f.failCells {
		return errors.New("disk full")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cellBatches = append(f.cellBatches, len(cells))
	return nil
}

func (f *fakeGateway) CreateView(ctx context.Context, view model.View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, view)
	return nil
}

func (f *fakeGateway) CreateImportLog(ctx context.Context, sheetID, filename string) (int64, error) {
	return 1, nil
}

func (f *fakeGateway) UpdateImportLog(ctx context.Context, id int64, report model.ImportReport, status model.ImportLogStatus, errorMessage string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logStatus = status
	return nil
}

func numberedRecords(n int) []parser.Record {
	names := []string{"N"}
	records := make([]parser.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, parser.NewRecord(names, []string{fmt.Sprint(i)}))
	}
	return records
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestImportRecords_Chunking(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c := NewCoordinator(gw, Options{ChunkSize: 4, MaxParallelChunks: 2})

	report, err := c.ImportRecords(context.Background(), "numbers", "numbers.csv", numberedRecords(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.rowBatches) != 3 || sum(gw.rowBatches) != 10 {
		t.Fatalf("unexpected row batches: %v", gw.rowBatches)
	}
	for _, n := range append(gw.rowBatches, gw.cellBatches...) {
		if n > 4 {
			t.Fatalf("batch exceeds chunk size: %d", n)
		}
	}
	if sum(gw.cellBatches) != 10 {
		t.Fatalf("unexpected cell batches: %v", gw.cellBatches)
	}
	if report.Chunks != 6 || report.Rows != 10 || gw.columns != 1 || len(gw.views) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if gw.logStatus != model.ImportCompleted {
		t.Fatalf("expected completed import log, got %s", gw.logStatus)
	}
}

func TestImportRecords_PersistFailure(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{failCells: true}
	c := NewCoordinator(gw, Options{ChunkSize: 4})

	if _, err := c.ImportRecords(context.Background(), "", "numbers.csv", numberedRecords(5)); err == nil {
		t.Fatalf("expected persistence error")
	}
	if gw.logStatus != model.ImportFailed {
		t.Fatalf("expected failed import log, got %s", gw.logStatus)
	}
	if len(gw.views) != 0 {
		t.Fatalf("views must not be written after a failed chunk")
	}
}

func TestImportRecords_CancelledMidImportStillLogsFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gw := &fakeGateway{afterRows: cancel}
	c := NewCoordinator(gw, Options{ChunkSize: 4})

	_, err := c.ImportRecords(ctx, "", "numbers.csv", numberedRecords(5))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if gw.logStatus != model.ImportFailed {
		t.Fatalf("cancelled import must still be logged as failed, got %q", gw.logStatus)
	}
}

func TestImport_CSVIntoStore(t *testing.T) {
	t.Parallel()

	st, err := store.New(filepath.Join(t.TempDir(), "simplesheet.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	csv := "Name,Age\n[TS][SHEET_VIEW_NAME=Main],\nAlice,30\nBob,41\n"
	c := NewCoordinator(st, DefaultOptions())
	ch := c.Import(context.Background(), ImportOptions{Filename: "people.csv", Reader: strings.NewReader(csv)})

	var report *model.ImportReport
	for evt := range ch {
		if evt.Type == "error" {
			t.Fatalf("import error event: %s", evt.Message)
		}
		if evt.Type == "done" {
			report, _ = evt.Data.(*model.ImportReport)
		}
	}
	if report == nil {
		t.Fatalf("missing done report")
	}
	if report.SheetName != "people" {
		t.Fatalf("expected sheet name from file, got %q", report.SheetName)
	}

	data, err := st.LoadSheet(context.Background(), report.SheetID)
	if err != nil {
		t.Fatalf("load sheet: %v", err)
	}
	if len(data.Columns) != 2 || len(data.Rows) != 2 || len(data.Cells) != 4 {
		t.Fatalf("unexpected sheet: %d columns, %d rows, %d cells", len(data.Columns), len(data.Rows), len(data.Cells))
	}
	if len(data.Views) != 1 || data.Views[0].Name != "Main" {
		t.Fatalf("unexpected views: %+v", data.Views)
	}

	status, _, err := st.ImportLogStatus(context.Background(), report.ImportLogID)
	if err != nil || status != model.ImportCompleted {
		t.Fatalf("expected completed import log, got %s (%v)", status, err)
	}
}

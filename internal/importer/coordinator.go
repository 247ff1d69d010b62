package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/parser"
)

// Gateway 导入所需的持久化接口
type Gateway interface {
	CreateSheet(ctx context.Context, sheet model.Sheet) error
	CreateColumns(ctx context.Context, columns []model.Column) error
	CreateRows(ctx context.Context, rows []model.Row) error
	CreateCells(ctx context.Context, cells []model.Cell) error
	CreateView(ctx context.Context, view model.View) error
	CreateImportLog(ctx context.Context, sheetID, filename string) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, report model.ImportReport, status model.ImportLogStatus, errorMessage string) error
}

// finishLogTimeout 写导入日志的时限，不受调用方取消影响
const finishLogTimeout = 5 * time.Second

// Options 导入协调器参数
type Options struct {
	ChunkSize         int
	MaxParallelChunks int
	MinColumnWidth    int
	MaxColumnWidth    int
	WidthPerChar      int
}

// DefaultOptions 默认参数：分块 2500，最多 4 个分块并发
func DefaultOptions() Options {
	return Options{
		ChunkSize:         2500,
		MaxParallelChunks: 4,
		MinColumnWidth:    50,
		MaxColumnWidth:    300,
		WidthPerChar:      8,
	}
}

// Coordinator 导入协调器
type Coordinator struct {
	gateway Gateway
	opts    Options
	newID   func() string
}

// NewCoordinator 创建导入协调器
func NewCoordinator(gateway Gateway, opts Options) *Coordinator {
	defaults := DefaultOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaults.ChunkSize
	}
	if opts.MaxParallelChunks <= 0 {
		opts.MaxParallelChunks = defaults.MaxParallelChunks
	}
	if opts.MinColumnWidth <= 0 {
		opts.MinColumnWidth = defaults.MinColumnWidth
	}
	if opts.MaxColumnWidth <= 0 {
		opts.MaxColumnWidth = defaults.MaxColumnWidth
	}
	if opts.WidthPerChar <= 0 {
		opts.WidthPerChar = defaults.WidthPerChar
	}
	return &Coordinator{gateway: gateway, opts: opts, newID: uuid.NewString}
}

// ImportOptions 单次导入的输入
type ImportOptions struct {
	Filename  string    // 决定读取格式（.csv / .xlsx）
	Reader    io.Reader // 文件内容
	SheetName string    // xlsx 工作表，空为第一个
	Name      string    // 新 sheet 名称，空则取文件名
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/chunk_done/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Import 异步执行导入，返回进度通道；done 事件的 Data 为 *model.ImportReport
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		c.sendProgress(progressChan, ProgressEvent{
			Type:      "start",
			Message:   "import started",
			Data:      map[string]string{"filename": filepath.Base(opts.Filename)},
			Timestamp: time.Now(),
		})

		records, err := parser.ReadFile(opts.Filename, opts.Reader, opts.SheetName)
		if err != nil {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "error",
				Message:   fmt.Sprintf("failed to read %s: %v", filepath.Base(opts.Filename), err),
				Timestamp: time.Now(),
			})
			return
		}

		report, err := c.run(ctx, opts.Name, opts.Filename, records, progressChan)
		if err != nil {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "error",
				Message:   err.Error(),
				Data:      report,
				Timestamp: time.Now(),
			})
			return
		}

		c.sendProgress(progressChan, ProgressEvent{
			Type:      "done",
			Message:   "import completed",
			Data:      report,
			Timestamp: time.Now(),
		})
	}()

	return progressChan
}

// ImportRecords 同步导入已解析的记录
func (c *Coordinator) ImportRecords(ctx context.Context, name, filename string, records []parser.Record) (*model.ImportReport, error) {
	return c.run(ctx, name, filename, records, nil)
}

func (c *Coordinator) run(ctx context.Context, name, filename string, records []parser.Record, progress chan ProgressEvent) (*model.ImportReport, error) {
	start := time.Now()
	if name == "" {
		name = sheetNameFromFile(filename)
	}

	sheetID := c.newID()
	report := &model.ImportReport{SheetID: sheetID, SheetName: name, Filename: filepath.Base(filename)}

	boot, err := Build(records, BuildOptions{
		SheetID:        sheetID,
		MinColumnWidth: c.opts.MinColumnWidth,
		MaxColumnWidth: c.opts.MaxColumnWidth,
		WidthPerChar:   c.opts.WidthPerChar,
		NewID:          c.newID,
	})
	if err != nil {
		return report, fmt.Errorf("failed to build sheet: %w", err)
	}
	report.Columns = len(boot.Columns)
	report.Rows = len(boot.Rows)
	report.Cells = len(boot.Cells)
	report.Views = len(boot.Views)
	report.ColumnIDs = boot.ColumnIDs

	c.sendProgress(progress, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("built %d columns, %d rows, %d views", report.Columns, report.Rows, report.Views),
		Data: map[string]interface{}{
			"sheet_id": sheetID,
			"columns":  report.Columns,
			"rows":     report.Rows,
			"cells":    report.Cells,
		},
		Timestamp: time.Now(),
	})

	if err := c.gateway.CreateSheet(ctx, model.Sheet{ID: sheetID, Name: name}); err != nil {
		return report, err
	}

	logID, err := c.gateway.CreateImportLog(ctx, sheetID, report.Filename)
	if err != nil {
		log.Printf("import: failed to create import log for %s: %v", sheetID, err)
	}
	report.ImportLogID = logID

	if err := c.persist(ctx, boot, report, progress); err != nil {
		report.Duration = time.Since(start)
		c.finishLog(ctx, report, model.ImportFailed, err.Error())
		return report, fmt.Errorf("failed to persist sheet %s: %w", sheetID, err)
	}

	report.Duration = time.Since(start)
	c.finishLog(ctx, report, model.ImportCompleted, "")
	log.Printf("import: sheet %s (%s) imported: %d columns, %d rows, %d chunks in %s",
		sheetID, name, report.Columns, report.Rows, report.Chunks, report.Duration)
	return report, nil
}

// persist 列一次写入；行、单元格按实体分块写入，全部分块完成才算导入完成
func (c *Coordinator) persist(ctx context.Context, boot *Bootstrap, report *model.ImportReport, progress chan ProgressEvent) error {
	if err := c.gateway.CreateColumns(ctx, boot.Columns); err != nil {
		return err
	}

	rowChunks := chunk(boot.Rows, c.opts.ChunkSize)
	if err := c.persistChunks(ctx, "rows", len(rowChunks), func(ctx context.Context, i int) error {
		return c.gateway.CreateRows(ctx, rowChunks[i])
	}, progress); err != nil {
		return err
	}

	cellChunks := chunk(boot.Cells, c.opts.ChunkSize)
	if err := c.persistChunks(ctx, "cells", len(cellChunks), func(ctx context.Context, i int) error {
		return c.gateway.CreateCells(ctx, cellChunks[i])
	}, progress); err != nil {
		return err
	}
	report.Chunks = len(rowChunks) + len(cellChunks)

	for _, view := range boot.Views {
		if err := c.gateway.CreateView(ctx, view); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) persistChunks(ctx context.Context, kind string, n int, write func(ctx context.Context, i int) error, progress chan ProgressEvent) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxParallelChunks)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := write(gctx, i); err != nil {
				return fmt.Errorf("%s chunk %d: %w", kind, i+1, err)
			}
			c.sendProgress(progress, ProgressEvent{
				Type:      "chunk_done",
				Message:   fmt.Sprintf("%s chunk %d/%d written", kind, i+1, n),
				Data:      map[string]interface{}{"kind": kind, "chunk": i + 1, "total": n},
				Timestamp: time.Now(),
			})
			return nil
		})
	}
	return g.Wait()
}

// finishLog 写入导入结果；调用方的 ctx 可能已被取消，日志仍需落盘
func (c *Coordinator) finishLog(ctx context.Context, report *model.ImportReport, status model.ImportLogStatus, message string) {
	if report.ImportLogID == 0 {
		return
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishLogTimeout)
	defer cancel()
	if err := c.gateway.UpdateImportLog(logCtx, report.ImportLogID, *report, status, message); err != nil {
		log.Printf("import: failed to update import log %d: %v", report.ImportLogID, err)
	}
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	if ch == nil {
		return
	}
	// 终态事件必须送达，读取方会一直读到通道关闭
	if event.Type == "done" || event.Type == "error" {
		ch <- event
		return
	}
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}

func chunk[T any](items []T, size int) [][]T {
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

func sheetNameFromFile(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return "Untitled"
	}
	return name
}

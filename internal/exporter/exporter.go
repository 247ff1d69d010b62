package exporter

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/parser"
	"github.com/chompchompbalboa/simplesheet/internal/service/celltype"
)

// ErrUnknownView 导出的视图不存在
var ErrUnknownView = errors.New("unknown view")

// pixelsPerCharWidth 列宽像素到 Excel 字符宽度的换算
const pixelsPerCharWidth = 7.0

// ExportOptions 导出选项
type ExportOptions struct {
	ViewID          string   // 空为第一个视图，没有视图时导出全部列
	VisibleRows     []string // 行顺序（可含 RowBreak），空为 sheet 基础行序
	IncludeSettings bool     // 写入列设置与视图设置记录，便于重新导入
	Progress        func(ProgressEvent)
}

// Exporter 将 sheet 写为单个工作表的 xlsx
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export 按视图的可见列与给定行序导出。
// 第一行为表头；IncludeSettings 时随后是列设置记录和视图记录，格式与导入一致。
func (e *Exporter) Export(data model.SheetData, opts ExportOptions) (*excelize.File, error) {
	view, err := pickView(data, opts.ViewID)
	if err != nil {
		return nil, err
	}
	progress := newProgressReporter(opts.Progress)
	progress.report(5, "prepare")

	columns := exportColumns(data, view)
	sheetName := sheetTitle(data.Sheet.Name)

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rowNum := 1
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	if err := writeRow(f, sheetName, rowNum, header); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := styleHeader(f, sheetName, len(columns)); err != nil {
		_ = f.Close()
		return nil, err
	}
	rowNum++

	if opts.IncludeSettings {
		settings := make([]interface{}, len(columns))
		for i, c := range columns {
			if c.column == nil {
				settings[i] = parser.FormatSettingsCell()
				continue
			}
			settings[i] = parser.FormatSettingsCell(
				parser.Setting{Key: parser.SettingCellType, Value: string(c.column.Type)},
				parser.Setting{Key: parser.SettingWidth, Value: strconv.Itoa(c.column.Width)},
			)
		}
		if err := writeRow(f, sheetName, rowNum, settings); err != nil {
			_ = f.Close()
			return nil, err
		}
		rowNum++

		if view.Name != "" {
			record := make([]interface{}, len(columns))
			for i := range record {
				record[i] = ""
			}
			if len(record) > 0 {
				record[0] = parser.FormatSettingsCell(parser.Setting{Key: parser.SettingSheetViewName, Value: view.Name})
			}
			if err := writeRow(f, sheetName, rowNum, record); err != nil {
				_ = f.Close()
				return nil, err
			}
			rowNum++
		}
	}
	progress.report(15, "header")

	cells := make(map[string]map[string]*string, len(data.Rows))
	for i := range data.Cells {
		c := data.Cells[i]
		if cells[c.RowID] == nil {
			cells[c.RowID] = make(map[string]*string)
		}
		cells[c.RowID][c.ColumnID] = c.Value
	}

	rowIDs := exportRows(data, opts.VisibleRows)
	for i, rowID := range rowIDs {
		values := make([]interface{}, len(columns))
		for j, c := range columns {
			if c.column == nil {
				values[j] = ""
				continue
			}
			values[j] = typedValue(c.column.Type, cells[rowID][c.column.ID])
		}
		if err := writeRow(f, sheetName, rowNum, values); err != nil {
			_ = f.Close()
			return nil, err
		}
		rowNum++
		if len(rowIDs) > 0 && i%500 == 0 {
			progress.report(15+80*i/len(rowIDs), "rows")
		}
	}

	for i, c := range columns {
		if c.column == nil {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, float64(c.column.Width)/pixelsPerCharWidth); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	f.SetActiveSheet(0)
	progress.report(100, "done")
	return f, nil
}

type exportColumn struct {
	header string
	column *model.Column // nil 表示列分隔
}

func pickView(data model.SheetData, viewID string) (model.View, error) {
	if viewID == "" {
		if len(data.Views) > 0 {
			return data.Views[0], nil
		}
		return model.View{}, nil
	}
	for _, v := range data.Views {
		if v.ID == viewID {
			return v, nil
		}
	}
	return model.View{}, fmt.Errorf("%w: %s", ErrUnknownView, viewID)
}

// exportColumns 视图可见列；列分隔输出为 COLUMN_BREAK_n，保证表头唯一
func exportColumns(data model.SheetData, view model.View) []exportColumn {
	byID := make(map[string]*model.Column, len(data.Columns))
	for i := range data.Columns {
		byID[data.Columns[i].ID] = &data.Columns[i]
	}

	ids := view.VisibleColumns
	if view.ID == "" {
		ids = make([]string, len(data.Columns))
		for i, c := range data.Columns {
			ids[i] = c.ID
		}
	}

	out := make([]exportColumn, 0, len(ids))
	breaks := 0
	for _, id := range ids {
		if id == model.ColumnBreak {
			breaks++
			out = append(out, exportColumn{header: fmt.Sprintf("%s_%d", model.ColumnBreak, breaks)})
			continue
		}
		if c, ok := byID[id]; ok {
			out = append(out, exportColumn{header: c.Name, column: c})
		}
	}
	return out
}

func exportRows(data model.SheetData, visible []string) []string {
	if len(visible) == 0 {
		ids := make([]string, len(data.Rows))
		for i, r := range data.Rows {
			ids[i] = r.ID
		}
		return ids
	}
	ids := make([]string, 0, len(visible))
	for _, id := range visible {
		if id != model.RowBreak {
			ids = append(ids, id)
		}
	}
	return ids
}

// typedValue 数字与布尔写为原生值；其余类型以及无法无损表示的文本按原文写出
func typedValue(t model.ColumnType, value *string) interface{} {
	if value == nil {
		return ""
	}
	text := *value
	switch t {
	case model.ColumnTypeNumber:
		native, ok := celltype.For(t).Native(text)
		if n, isFloat := native.(float64); ok && isFloat && strconv.FormatFloat(n, 'f', -1, 64) == text {
			return n
		}
	case model.ColumnTypeBoolean:
		if native, ok := celltype.For(t).Native(text); ok {
			return native
		}
	}
	return text
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, n int) error {
	if n == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(n, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// sheetTitle Excel 工作表名最长 31 个字符且不能包含 []:*?/\
func sheetTitle(name string) string {
	r := []rune(name)
	out := make([]rune, 0, len(r))
	for _, c := range r {
		switch c {
		case '[', ']', ':', '*', '?', '/', '\\':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return "Sheet1"
	}
	if len(out) > 31 {
		out = out[:31]
	}
	return string(out)
}

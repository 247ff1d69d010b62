package importer

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/parser"
	"github.com/chompchompbalboa/simplesheet/internal/service/celltype"
)

const defaultViewName = "Default"

var (
	ErrNoRecords       = errors.New("input has no records")
	ErrMissingViewName = errors.New("sheet view settings missing " + parser.SettingSheetViewName)
)

// BuildOptions 构建参数
type BuildOptions struct {
	SheetID        string
	MinColumnWidth int
	MaxColumnWidth int
	WidthPerChar   int
	NewID          func() string
}

// DefaultBuildOptions 默认列宽规则：max(50, 8×名称长度)，上限 300
func DefaultBuildOptions(sheetID string) BuildOptions {
	return BuildOptions{
		SheetID:        sheetID,
		MinColumnWidth: 50,
		MaxColumnWidth: 300,
		WidthPerChar:   8,
		NewID:          uuid.NewString,
	}
}

// Bootstrap 由原始记录构建出的全部实体
type Bootstrap struct {
	Columns        []model.Column
	Rows           []model.Row
	Cells          []model.Cell
	Views          []model.View
	ColumnIDs      []string              // 原始列位置 -> 列 ID 或 ColumnBreak
	ColumnSettings []map[string]string   // 列设置记录，按原始列位置
	ViewSettings   [][]map[string]string // 每个视图记录一组，按原始列位置
}

// Build 将原始记录转为列/行/单元格/视图，不做任何持久化
func Build(records []parser.Record, opts BuildOptions) (*Bootstrap, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	b := &Bootstrap{}
	names := records[0].Names

	// 配置记录：至多一条列设置，随后连续的视图设置
	next := 0
	if parser.IsConfigurationRecord(records[0]) && !parser.IsSheetViewRecord(records[0]) {
		b.ColumnSettings = parser.ParseSettingsRecord(records[0])
		next = 1
	}
	for ; next < len(records) && parser.IsSheetViewRecord(records[next]); next++ {
		b.ViewSettings = append(b.ViewSettings, parser.ParseSettingsRecord(records[next]))
	}

	sample := firstDataRecord(records)

	// 列
	b.ColumnIDs = make([]string, len(names))
	columnIndex := make(map[string]int, len(names))
	for pos, name := range names {
		if parser.IsColumnBreak(name) {
			b.ColumnIDs[pos] = model.ColumnBreak
			continue
		}
		column := model.Column{
			ID:       opts.NewID(),
			SheetID:  opts.SheetID,
			Name:     name,
			Type:     celltype.Infer(sample.Get(name)),
			Width:    max(opts.MinColumnWidth, opts.WidthPerChar*utf8.RuneCountInString(name)),
			Position: len(b.Columns),
		}
		columnIndex[name] = len(b.Columns)
		b.Columns = append(b.Columns, column)
		b.ColumnIDs[pos] = column.ID
	}

	// 行与单元格
	for _, rec := range records {
		if parser.IsConfigurationRecord(rec) {
			continue
		}
		row := model.Row{ID: opts.NewID(), SheetID: opts.SheetID, Position: float64(len(b.Rows))}
		b.Rows = append(b.Rows, row)

		for i := range b.Columns {
			column := &b.Columns[i]
			text := rec.Get(column.Name)
			b.Cells = append(b.Cells, model.Cell{
				ID:       opts.NewID(),
				SheetID:  opts.SheetID,
				RowID:    row.ID,
				ColumnID: column.ID,
				Value:    &text,
			})
			column.Width = min(opts.MaxColumnWidth, max(column.Width, opts.WidthPerChar*utf8.RuneCountInString(text)))
		}
	}

	applyColumnSettings(b, names, columnIndex)

	// 视图
	for i, settings := range b.ViewSettings {
		name, ok := "", false
		if len(settings) > 0 && settings[0] != nil {
			name, ok = settings[0][parser.SettingSheetViewName]
		}
		if !ok {
			return nil, fmt.Errorf("view record %d: %w", i+1, ErrMissingViewName)
		}
		b.Views = append(b.Views, newView(opts, name, b.ColumnIDs))
	}
	if len(b.Views) == 0 {
		b.Views = append(b.Views, newView(opts, defaultViewName, b.ColumnIDs))
	}

	return b, nil
}

// applyColumnSettings 应用 CELL_TYPE / WIDTH 覆盖
func applyColumnSettings(b *Bootstrap, names []string, columnIndex map[string]int) {
	for pos, settings := range b.ColumnSettings {
		if settings == nil || pos >= len(names) {
			continue
		}
		idx, ok := columnIndex[names[pos]]
		if !ok {
			continue
		}
		column := &b.Columns[idx]

		if v, ok := settings[parser.SettingCellType]; ok {
			if t := model.ColumnType(v); t.Valid() {
				column.Type = t
			} else {
				log.Printf("import: ignoring unknown %s %q for column %s", parser.SettingCellType, v, column.Name)
			}
		}
		if v, ok := settings[parser.SettingWidth]; ok {
			if w, err := strconv.Atoi(v); err == nil && w > 0 {
				column.Width = w
			} else {
				log.Printf("import: ignoring invalid %s %q for column %s", parser.SettingWidth, v, column.Name)
			}
		}
	}
}

func newView(opts BuildOptions, name string, columnIDs []string) model.View {
	visible := make([]string, len(columnIDs))
	copy(visible, columnIDs)
	return model.View{
		ID:             opts.NewID(),
		SheetID:        opts.SheetID,
		Name:           name,
		IsLocked:       false,
		VisibleColumns: visible,
	}
}

// firstDataRecord 第一条非配置记录，全部是配置时返回空记录
func firstDataRecord(records []parser.Record) parser.Record {
	for _, rec := range records {
		if !parser.IsConfigurationRecord(rec) {
			return rec
		}
	}
	return parser.Record{}
}

package parser

import "strings"

const (
	// SettingsMarker 配置记录/设置单元格的保留标记
	SettingsMarker = "[TS]"
	// SheetViewDiscriminator 视图配置记录的判别词
	SheetViewDiscriminator = "SHEET_VIEW"
	// ColumnBreakToken 列名包含该词时视为列分隔
	ColumnBreakToken = "COLUMN_BREAK"

	SettingSheetViewName = "SHEET_VIEW_NAME"
	SettingCellType      = "CELL_TYPE"
	SettingWidth         = "WIDTH"
)

// Setting 一个设置键值对
type Setting struct {
	Key   string
	Value string
}

// HasSettingsMarker 文本是否包含设置标记
func HasSettingsMarker(text string) bool {
	return strings.Contains(text, SettingsMarker)
}

// IsConfigurationRecord 第一个单元格带标记的记录是配置而非数据
func IsConfigurationRecord(rec Record) bool {
	return HasSettingsMarker(rec.FirstCell())
}

// IsSheetViewRecord 第一个单元格同时包含标记与 SHEET_VIEW 判别词
func IsSheetViewRecord(rec Record) bool {
	first := rec.FirstCell()
	return HasSettingsMarker(first) && strings.Contains(first, SheetViewDiscriminator)
}

// IsColumnBreak 列名是否表示列分隔
func IsColumnBreak(name string) bool {
	return strings.Contains(name, ColumnBreakToken)
}

// ParseSettingsCell 解析 MARKER[k1=v1][k2=v2]… 形式的单元格。
// 无标记时返回 nil；缺少 = 的片段直接丢弃；值中的后续 = 保留。
func ParseSettingsCell(text string) map[string]string {
	if !HasSettingsMarker(text) {
		return nil
	}

	raw := strings.ReplaceAll(text, SettingsMarker, "")
	settings := make(map[string]string)
	for _, fragment := range strings.Split(raw, "]") {
		fragment = strings.TrimPrefix(fragment, "[")
		key, value, ok := strings.Cut(fragment, "=")
		if !ok {
			continue
		}
		settings[key] = value
	}
	return settings
}

// ParseSettingsRecord 逐个位置解析记录中的设置单元格
func ParseSettingsRecord(rec Record) []map[string]string {
	cells := rec.Cells()
	out := make([]map[string]string, len(cells))
	for i, text := range cells {
		out[i] = ParseSettingsCell(text)
	}
	return out
}

// FormatSettingsCell 生成设置单元格文本，保持传入顺序
func FormatSettingsCell(settings ...Setting) string {
	var b strings.Builder
	b.WriteString(SettingsMarker)
	for _, s := range settings {
		b.WriteString("[")
		b.WriteString(s.Key)
		b.WriteString("=")
		b.WriteString(s.Value)
		b.WriteString("]")
	}
	return b.String()
}

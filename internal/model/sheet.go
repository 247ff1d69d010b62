package model

// ColumnType 列数据类型
type ColumnType string

const (
	ColumnTypeString   ColumnType = "STRING"
	ColumnTypeNumber   ColumnType = "NUMBER"
	ColumnTypeBoolean  ColumnType = "BOOLEAN"
	ColumnTypeDatetime ColumnType = "DATETIME"
)

// Valid 是否为已知列类型
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnTypeString, ColumnTypeNumber, ColumnTypeBoolean, ColumnTypeDatetime:
		return true
	}
	return false
}

const (
	// ColumnBreak 视图可见列中的分隔占位（非数据列）
	ColumnBreak = "COLUMN_BREAK"
	// RowBreak 可见行序列中的分组分隔占位（非数据行）
	RowBreak = "ROW_BREAK"
)

// Sheet 表格文档
type Sheet struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Column 列
type Column struct {
	ID       string     `json:"id"`
	SheetID  string     `json:"sheetId"`
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Width    int        `json:"width"`
	Position int        `json:"position"`
}

// Row 行，Position 决定在 sheet 中的基础顺序
type Row struct {
	ID       string  `json:"id"`
	SheetID  string  `json:"sheetId"`
	Position float64 `json:"position"`
}

// Cell 单元格，每个 (RowID, ColumnID) 恰好一个
type Cell struct {
	ID       string  `json:"id"`
	SheetID  string  `json:"sheetId"`
	RowID    string  `json:"rowId"`
	ColumnID string  `json:"columnId"`
	Value    *string `json:"value"`
}

// Text 返回单元格文本（nil 视为空串）
func (c *Cell) Text() string {
	if c == nil || c.Value == nil {
		return ""
	}
	return *c.Value
}

// View 视图
type View struct {
	ID             string   `json:"id"`
	SheetID        string   `json:"sheetId"`
	Name           string   `json:"name"`
	IsLocked       bool     `json:"isLocked"`
	VisibleColumns []string `json:"visibleColumns"` // 列 ID 或 ColumnBreak
}

// FilterOperator 筛选运算符
type FilterOperator string

const (
	OpEqual          FilterOperator = "="
	OpNotEqual       FilterOperator = "!="
	OpGreater        FilterOperator = ">"
	OpGreaterOrEqual FilterOperator = ">="
	OpLess           FilterOperator = "<"
	OpLessOrEqual    FilterOperator = "<="
)

// FilterOperators 全部合法运算符（长运算符在前，便于前缀匹配）
var FilterOperators = []FilterOperator{OpNotEqual, OpGreaterOrEqual, OpLessOrEqual, OpEqual, OpGreater, OpLess}

// Valid 是否为合法运算符
func (op FilterOperator) Valid() bool {
	for _, known := range FilterOperators {
		if op == known {
			return true
		}
	}
	return false
}

// Filter 筛选条件，Value 可用 | 分隔多个候选值
type Filter struct {
	ID       string         `json:"id"`
	SheetID  string         `json:"sheetId"`
	ColumnID string         `json:"columnId"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

// SortOrder 排序方向
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// Valid 是否为合法方向
func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// Sort 排序条件，列表中的先后即优先级
type Sort struct {
	ID       string    `json:"id"`
	SheetID  string    `json:"sheetId"`
	ColumnID string    `json:"columnId"`
	Order    SortOrder `json:"order"`
}

// Group 分组条件
type Group struct {
	ID       string    `json:"id"`
	SheetID  string    `json:"sheetId"`
	ColumnID string    `json:"columnId"`
	Order    SortOrder `json:"order"`
	IsLocked bool      `json:"isLocked"`
}

// Selection 每个 sheet 的选区状态
type Selection struct {
	RangeStartCellID          string `json:"rangeStartCellId"`
	RangeEndCellID            string `json:"rangeEndCellId"`
	IsCellEditingPrevented    bool   `json:"isCellEditingPrevented"`
	IsCellNavigationPrevented bool   `json:"isCellNavigationPrevented"`
}

// SheetData 一个 sheet 的完整快照（加载/导出使用）
type SheetData struct {
	Sheet   Sheet    `json:"sheet"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
	Cells   []Cell   `json:"cells"`
	Views   []View   `json:"views"`
	Filters []Filter `json:"filters"`
	Sorts   []Sort   `json:"sorts"`
	Groups  []Group  `json:"groups"`
}

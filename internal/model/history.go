package model

// CommandKind 可逆命令类型
type CommandKind string

const (
	CmdUpdateCells  CommandKind = "UPDATE_CELLS"
	CmdCreateRows   CommandKind = "CREATE_ROWS"
	CmdDeleteRows   CommandKind = "DELETE_ROWS"
	CmdUpdateColumn CommandKind = "UPDATE_COLUMN"
)

// CellChange 单元格取值变更
type CellChange struct {
	CellID string  `json:"cellId"`
	Value  *string `json:"value"`
}

// RowSnapshot 行及其全部单元格，Position 为在 sheet 行序中的下标
type RowSnapshot struct {
	Row      Row    `json:"row"`
	Cells    []Cell `json:"cells"`
	Position int    `json:"position"`
}

// ColumnChange 列属性变更
type ColumnChange struct {
	ColumnID string     `json:"columnId"`
	Type     ColumnType `json:"type"`
	Width    int        `json:"width"`
}

// Command 自包含的命令，回放时不依赖任何外部状态
type Command struct {
	Kind   CommandKind   `json:"kind"`
	Cells  []CellChange  `json:"cells,omitempty"`
	Rows   []RowSnapshot `json:"rows,omitempty"`
	RowIDs []string      `json:"rowIds,omitempty"`
	Column *ColumnChange `json:"column,omitempty"`
}

// HistoryStep 一个原子的撤销/重做单元
type HistoryStep struct {
	Label   string  `json:"label"`
	Forward Command `json:"forward"`
	Inverse Command `json:"inverse"`
}

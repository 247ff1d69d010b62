package model

import "time"

// ImportReport 一次导入的汇总
type ImportReport struct {
	SheetID     string        `json:"sheetId"`
	SheetName   string        `json:"sheetName"`
	Filename    string        `json:"filename"`
	Columns     int           `json:"columns"`
	Rows        int           `json:"rows"`
	Cells       int           `json:"cells"`
	Views       int           `json:"views"`
	Chunks      int           `json:"chunks"`
	ColumnIDs   []string      `json:"columnIds"` // 原始列位置 -> 列 ID 或 ColumnBreak
	ImportLogID int64         `json:"importLogId"`
	Duration    time.Duration `json:"duration"`
}

// ImportLogStatus 导入日志状态
type ImportLogStatus string

const (
	ImportProcessing ImportLogStatus = "processing"
	ImportCompleted  ImportLogStatus = "completed"
	ImportFailed     ImportLogStatus = "failed"
)

package parser

import "errors"

// ErrEmptyInput 输入中没有表头
var ErrEmptyInput = errors.New("input has no header row")

// Record 一条原始记录：有序的列名 -> 文本映射
type Record struct {
	Names  []string
	Values map[string]string
}

// NewRecord 按列名顺序构建记录，values 不足的位置补空串
func NewRecord(names []string, values []string) Record {
	rec := Record{
		Names:  names,
		Values: make(map[string]string, len(names)),
	}
	for i, name := range names {
		if i < len(values) {
			rec.Values[name] = values[i]
		} else if _, ok := rec.Values[name]; !ok {
			rec.Values[name] = ""
		}
	}
	return rec
}

// Get 读取某列文本，缺失时返回空串
func (r Record) Get(name string) string {
	return r.Values[name]
}

// FirstCell 第一个位置的文本
func (r Record) FirstCell() string {
	if len(r.Names) == 0 {
		return ""
	}
	return r.Values[r.Names[0]]
}

// Cells 按列顺序返回每个位置的文本
func (r Record) Cells() []string {
	out := make([]string, len(r.Names))
	for i, name := range r.Names {
		out[i] = r.Values[name]
	}
	return out
}

// RecordsFromRows 第一行为表头，其余行转为记录，全空的行也保留为空记录。重复的列名只保留第一次出现的位置，取值以最后一次为准。
func RecordsFromRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyInput
	}

	header := rows[0]
	names := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			continue
		}
		seen[h] = true
		names = append(names, h)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := Record{Names: names, Values: make(map[string]string, len(names))}
		for i, h := range header {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			rec.Values[h] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

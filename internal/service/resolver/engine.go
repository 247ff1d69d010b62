package resolver

import (
	"sort"
	"strings"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// groupKeySeparator 组合分组键的分隔符，单元格文本无法伪造
const groupKeySeparator = "\x1f"

// CellLookup 按 (行, 列) 读取单元格取值，不存在时返回 nil
type CellLookup interface {
	CellValue(rowID, columnID string) *string
}

// CellMap 以行 ID、列 ID 为键的简单 CellLookup 实现
type CellMap map[string]map[string]*string

// CellValue 实现 CellLookup
func (m CellMap) CellValue(rowID, columnID string) *string {
	return m[rowID][columnID]
}

// NewCellMap 由单元格列表构建 CellMap
func NewCellMap(cells []model.Cell) CellMap {
	m := make(CellMap)
	for i := range cells {
		c := cells[i]
		byColumn, ok := m[c.RowID]
		if !ok {
			byColumn = make(map[string]*string)
			m[c.RowID] = byColumn
		}
		byColumn[c.ColumnID] = c.Value
	}
	return m
}

// Input 视图解析的全部输入
type Input struct {
	RowIDs  []string
	Cells   CellLookup
	Filters []model.Filter
	Sorts   []model.Sort
	Groups  []model.Group
}

// Result 可见行序列及行号
type Result struct {
	VisibleRows []string       `json:"visibleRows"`
	RowLeaders  map[string]int `json:"rowLeaders"`
}

// VisibleRows 依次执行筛选、稳定多键排序、分组，返回夹带 RowBreak 的行 ID 序列。
// 纯函数：同样的输入总是得到同样的输出。
func VisibleRows(in Input) []string {
	filtered := filterRows(in)
	sortRows(filtered, in)
	if len(in.Groups) == 0 {
		return filtered
	}
	return groupRows(filtered, in)
}

// Resolve 计算可见行以及每行的显示行号
func Resolve(in Input) Result {
	visible := VisibleRows(in)
	return Result{
		VisibleRows: visible,
		RowLeaders:  RowLeaders(visible),
	}
}

// RowLeaders 为可见行编号（从 1 开始，跳过分组分隔）
func RowLeaders(visible []string) map[string]int {
	leaders := make(map[string]int, len(visible))
	n := 0
	for _, id := range visible {
		if id == model.RowBreak {
			continue
		}
		n++
		leaders[id] = n
	}
	return leaders
}

func filterRows(in Input) []string {
	out := make([]string, 0, len(in.RowIDs))
	if len(in.Filters) == 0 {
		return append(out, in.RowIDs...)
	}

	evaluators := make([]*Evaluator, len(in.Filters))
	for i, f := range in.Filters {
		evaluators[i] = NewEvaluator(f.Value, f.Operator)
	}

	for _, rowID := range in.RowIDs {
		keep := true
		for i, f := range in.Filters {
			if !evaluators[i].Match(lookup(in.Cells, rowID, f.ColumnID)) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rowID)
		}
	}
	return out
}

func sortRows(rowIDs []string, in Input) {
	if len(in.Sorts) == 0 {
		return
	}

	// 预先计算排序键，避免比较时重复解析
	keys := make(map[string][]Value, len(rowIDs))
	for _, rowID := range rowIDs {
		k := make([]Value, len(in.Sorts))
		for i, s := range in.Sorts {
			k[i] = resolvePtr(lookup(in.Cells, rowID, s.ColumnID))
		}
		keys[rowID] = k
	}

	sort.SliceStable(rowIDs, func(a, b int) bool {
		ka, kb := keys[rowIDs[a]], keys[rowIDs[b]]
		for i, s := range in.Sorts {
			c := compareSortKeys(ka[i], kb[i])
			if c == 0 {
				continue
			}
			if s.Order == model.OrderDesc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareSortKeys 排序用比较：数值排在字符串之前，同类内部按 Compare
func compareSortKeys(a, b Value) int {
	if a.IsNum != b.IsNum {
		if a.IsNum {
			return -1
		}
		return 1
	}
	return a.Compare(b)
}

func groupRows(rowIDs []string, in Input) []string {
	clusters := make(map[string][]string)
	var keys []string
	for _, rowID := range rowIDs {
		key := groupKey(rowID, in)
		if _, ok := clusters[key]; !ok {
			keys = append(keys, key)
		}
		clusters[key] = append(clusters[key], rowID)
	}

	sort.Strings(keys)
	if in.Groups[0].Order == model.OrderDesc {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}

	out := make([]string, 0, len(rowIDs)+len(keys))
	for i, key := range keys {
		if i > 0 {
			out = append(out, model.RowBreak)
		}
		out = append(out, clusters[key]...)
	}
	return out
}

func groupKey(rowID string, in Input) string {
	parts := make([]string, len(in.Groups))
	for i, g := range in.Groups {
		parts[i] = strings.ToLower(resolvePtr(lookup(in.Cells, rowID, g.ColumnID)).String())
	}
	return strings.Join(parts, groupKeySeparator)
}

func lookup(cells CellLookup, rowID, columnID string) *string {
	if cells == nil {
		return nil
	}
	return cells.CellValue(rowID, columnID)
}

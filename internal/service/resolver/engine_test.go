package resolver

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// buildInput 按列名构造输入，rows 中每一项为一行的各列取值
func buildInput(columns []string, rows [][]string) Input {
	in := Input{Cells: make(CellMap)}
	cells := in.Cells.(CellMap)
	for i, values := range rows {
		rowID := fmt.Sprintf("r%d", i+1)
		in.RowIDs = append(in.RowIDs, rowID)
		cells[rowID] = make(map[string]*string)
		for j, col := range columns {
			v := values[j]
			cells[rowID][col] = &v
		}
	}
	return in
}

func TestVisibleRows_NoConfigurationKeepsBaseOrder(t *testing.T) {
	in := buildInput([]string{"name"}, [][]string{{"c"}, {"a"}, {"b"}})
	got := VisibleRows(in)
	want := []string{"r1", "r2", "r3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("VisibleRows = %v, want %v", got, want)
	}
	// 输出不能与输入共享底层数组
	got[0] = "mutated"
	if in.RowIDs[0] != "r1" {
		t.Fatal("VisibleRows must not alias the input row slice")
	}
}

func TestVisibleRows_FilterExactness(t *testing.T) {
	in := buildInput([]string{"score", "team"}, [][]string{
		{"15", "red"},
		{"5", "red"},
		{"20", "blue"},
		{"", "blue"},
		{"30", "red"},
	})
	in.Filters = []model.Filter{
		{ID: "f1", ColumnID: "score", Operator: model.OpGreaterOrEqual, Value: "10|20"},
		{ID: "f2", ColumnID: "team", Operator: model.OpEqual, Value: "red"},
	}

	got := VisibleRows(in)
	want := []string{"r1", "r5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("VisibleRows = %v, want %v", got, want)
	}
}

func TestVisibleRows_MissingCellIsEmptyString(t *testing.T) {
	in := buildInput([]string{"a"}, [][]string{{"x"}, {"y"}})
	in.RowIDs = append(in.RowIDs, "orphan")
	in.Filters = []model.Filter{{ColumnID: "a", Operator: model.OpEqual, Value: ""}}

	got := VisibleRows(in)
	if !reflect.DeepEqual(got, []string{"orphan"}) {
		t.Fatalf("VisibleRows = %v, want [orphan]", got)
	}
}

func TestVisibleRows_MultiKeySortIsStable(t *testing.T) {
	in := buildInput([]string{"team", "score"}, [][]string{
		{"red", "1"},
		{"blue", "3"},
		{"red", "3"},
		{"blue", "3"},
		{"red", "10"},
	})
	in.Sorts = []model.Sort{
		{ColumnID: "score", Order: model.OrderDesc},
		{ColumnID: "team", Order: model.OrderAsc},
	}

	got := VisibleRows(in)
	// 10 > 3 > 1 按数值；3 分数内 blue 在 red 前，两个 blue 保持原相对顺序
	want := []string{"r5", "r2", "r4", "r3", "r1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("VisibleRows = %v, want %v", got, want)
	}
}

func TestVisibleRows_SortPlacesNumbersBeforeText(t *testing.T) {
	in := buildInput([]string{"v"}, [][]string{{"b"}, {"10"}, {""}, {"2"}, {"a"}})
	in.Sorts = []model.Sort{{ColumnID: "v", Order: model.OrderAsc}}

	got := VisibleRows(in)
	want := []string{"r4", "r2", "r3", "r5", "r1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("VisibleRows = %v, want %v", got, want)
	}
}

func TestVisibleRows_GroupClusters(t *testing.T) {
	in := buildInput([]string{"team", "score"}, [][]string{
		{"Red", "1"},
		{"blue", "2"},
		{"red", "3"},
		{"green", "4"},
		{"Blue", "5"},
	})
	in.Sorts = []model.Sort{{ColumnID: "score", Order: model.OrderDesc}}
	in.Groups = []model.Group{{ColumnID: "team", Order: model.OrderAsc}}

	got := VisibleRows(in)
	want := []string{"r5", "r2", model.RowBreak, "r4", model.RowBreak, "r3", "r1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("VisibleRows = %v, want %v", got, want)
	}
}

func TestVisibleRows_FirstGroupDirectionGovernsClusterOrder(t *testing.T) {
	in := buildInput([]string{"a", "b"}, [][]string{
		{"x", "1"},
		{"y", "1"},
		{"x", "2"},
	})
	in.Groups = []model.Group{
		{ColumnID: "a", Order: model.OrderDesc},
		{ColumnID: "b", Order: model.OrderAsc},
	}

	got := VisibleRows(in)
	// 键: x␟1, y␟1, x␟2；整体按第一个分组方向 DESC 排列
	want := []string{"r2", model.RowBreak, "r3", model.RowBreak, "r1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("VisibleRows = %v, want %v", got, want)
	}
}

func TestVisibleRows_SingleClusterHasNoBreak(t *testing.T) {
	in := buildInput([]string{"a"}, [][]string{{"same"}, {"SAME"}})
	in.Groups = []model.Group{{ColumnID: "a", Order: model.OrderAsc}}

	got := VisibleRows(in)
	if !reflect.DeepEqual(got, []string{"r1", "r2"}) {
		t.Fatalf("VisibleRows = %v", got)
	}
}

func TestVisibleRows_EmptyAfterFilterWithGroups(t *testing.T) {
	in := buildInput([]string{"a"}, [][]string{{"1"}})
	in.Filters = []model.Filter{{ColumnID: "a", Operator: model.OpEqual, Value: "2"}}
	in.Groups = []model.Group{{ColumnID: "a", Order: model.OrderAsc}}

	if got := VisibleRows(in); len(got) != 0 {
		t.Fatalf("VisibleRows = %v, want empty", got)
	}
}

func TestVisibleRows_Idempotent(t *testing.T) {
	var rows [][]string
	for i := 0; i < 200; i++ {
		rows = append(rows, []string{fmt.Sprint(i % 7), fmt.Sprint(i % 3), fmt.Sprintf("n%d", i%11)})
	}
	in := buildInput([]string{"a", "b", "c"}, rows)
	in.Filters = []model.Filter{{ColumnID: "a", Operator: model.OpNotEqual, Value: "3|4"}}
	in.Sorts = []model.Sort{{ColumnID: "c", Order: model.OrderAsc}}
	in.Groups = []model.Group{{ColumnID: "b", Order: model.OrderDesc}}

	first := strings.Join(VisibleRows(in), ",")
	for i := 0; i < 5; i++ {
		if got := strings.Join(VisibleRows(in), ","); got != first {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestVisibleRows_GroupRunsAreContiguous(t *testing.T) {
	var rows [][]string
	for i := 0; i < 60; i++ {
		rows = append(rows, []string{fmt.Sprint(i % 4), fmt.Sprint(i)})
	}
	in := buildInput([]string{"g", "n"}, rows)
	in.Sorts = []model.Sort{{ColumnID: "n", Order: model.OrderDesc}}
	in.Groups = []model.Group{{ColumnID: "g", Order: model.OrderAsc}}

	got := VisibleRows(in)
	cells := in.Cells.(CellMap)

	seen := map[string]bool{}
	current := ""
	breaks := 0
	for i, id := range got {
		if id == model.RowBreak {
			breaks++
			if i == 0 || i == len(got)-1 || got[i-1] == model.RowBreak {
				t.Fatalf("misplaced break at %d", i)
			}
			continue
		}
		g := *cells[id]["g"]
		if g != current {
			if seen[g] {
				t.Fatalf("group %s is not contiguous", g)
			}
			if current != "" && got[i-1] != model.RowBreak {
				t.Fatalf("missing break before group %s", g)
			}
			seen[g] = true
			current = g
		} else if got[i-1] == model.RowBreak {
			t.Fatalf("break inside group %s", g)
		}
	}
	if breaks != 3 {
		t.Fatalf("breaks = %d, want 3", breaks)
	}
}

func TestRowLeaders(t *testing.T) {
	leaders := RowLeaders([]string{"a", "b", model.RowBreak, "c"})
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	if !reflect.DeepEqual(leaders, want) {
		t.Fatalf("RowLeaders = %v, want %v", leaders, want)
	}
}

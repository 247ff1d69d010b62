package resolver

import (
	"strconv"
	"strings"

	"github.com/chompchompbalboa/simplesheet/internal/service/celltype"
)

// Value 比较前的强制转换结果：数值或字符串
type Value struct {
	Num   float64
	Str   string
	IsNum bool
}

// ResolveValue 去掉所有 % 后，能完整解析为数字则取数值，否则保留（可能为空的）字符串
func ResolveValue(text string) Value {
	stripped := strings.ReplaceAll(text, "%", "")
	if n, ok := celltype.ParseNumber(stripped); ok {
		return Value{Num: n, IsNum: true}
	}
	return Value{Str: stripped}
}

// resolvePtr nil 按空串处理
func resolvePtr(text *string) Value {
	if text == nil {
		return ResolveValue("")
	}
	return ResolveValue(*text)
}

// String 字符串形式（数值使用最短表示）
func (v Value) String() string {
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Equal 宽松相等：数值与数值按数值比较，字符串与字符串按文本比较，混合类型永不相等
func (v Value) Equal(other Value) bool {
	if v.IsNum != other.IsNum {
		return false
	}
	if v.IsNum {
		return v.Num == other.Num
	}
	return v.Str == other.Str
}

// Compare 两者都是数值时按数值比较，否则按字符串字典序比较
func (v Value) Compare(other Value) int {
	if v.IsNum && other.IsNum {
		switch {
		case v.Num < other.Num:
			return -1
		case v.Num > other.Num:
			return 1
		}
		return 0
	}
	return strings.Compare(v.String(), other.String())
}

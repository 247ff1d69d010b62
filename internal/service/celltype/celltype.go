package celltype

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// Handler 单一列类型的处理器
type Handler interface {
	// Type 处理的列类型
	Type() model.ColumnType
	// Matches 样本值是否属于该类型（用于推断）
	Matches(text string) bool
	// Native 将文本转为该类型的原生值，无法转换时返回 false
	Native(text string) (any, bool)
}

// handlers 推断优先级顺序，STRING 必须在最后
var handlers = []Handler{
	booleanHandler{},
	numberHandler{},
	datetimeHandler{},
	stringHandler{},
}

// Infer 按 BOOLEAN -> NUMBER -> DATETIME -> STRING 的顺序推断类型，首个命中即返回
func Infer(sample string) model.ColumnType {
	for _, h := range handlers {
		if h.Matches(sample) {
			return h.Type()
		}
	}
	return model.ColumnTypeString
}

// For 获取类型对应的处理器，未知类型按 STRING 处理
func For(t model.ColumnType) Handler {
	for _, h := range handlers {
		if h.Type() == t {
			return h
		}
	}
	return stringHandler{}
}

type booleanHandler struct{}

func (booleanHandler) Type() model.ColumnType { return model.ColumnTypeBoolean }

func (booleanHandler) Matches(text string) bool {
	return strings.EqualFold(text, "true") || strings.EqualFold(text, "false")
}

func (h booleanHandler) Native(text string) (any, bool) {
	if !h.Matches(text) {
		return nil, false
	}
	return strings.EqualFold(text, "true"), true
}

type numberHandler struct{}

func (numberHandler) Type() model.ColumnType { return model.ColumnTypeNumber }

func (numberHandler) Matches(text string) bool {
	_, ok := ParseNumber(strings.TrimSuffix(text, "%"))
	return ok
}

func (numberHandler) Native(text string) (any, bool) {
	percent := strings.HasSuffix(text, "%")
	n, ok := ParseNumber(strings.TrimSuffix(text, "%"))
	if !ok {
		return nil, false
	}
	if percent {
		return n / 100, true
	}
	return n, true
}

type datetimeHandler struct{}

func (datetimeHandler) Type() model.ColumnType { return model.ColumnTypeDatetime }

func (datetimeHandler) Matches(text string) bool {
	_, ok := ParseDatetime(text)
	return ok
}

func (datetimeHandler) Native(text string) (any, bool) {
	t, ok := ParseDatetime(text)
	if !ok {
		return nil, false
	}
	return t, true
}

type stringHandler struct{}

func (stringHandler) Type() model.ColumnType { return model.ColumnTypeString }

func (stringHandler) Matches(string) bool { return true }

func (stringHandler) Native(text string) (any, bool) { return text, true }

// ParseNumber 完整解析整数或浮点数；拒绝空串、NaN、Inf、十六进制和下划线写法
func ParseNumber(text string) (float64, bool) {
	if text == "" || strings.ContainsAny(text, "_xXpP") {
		return 0, false
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// datetimeLayouts 可识别的日期时间格式
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
	time.RFC1123Z,
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
}

// ParseDatetime 尝试按已知格式解析日期时间
func ParseDatetime(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

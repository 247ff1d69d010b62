package parser

import (
	"errors"
	"strings"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// ErrInvalidFilterExpression 快捷筛选表达式格式错误
var ErrInvalidFilterExpression = errors.New("invalid filter expression")

// FilterExpression 快捷筛选表达式的解析结果
type FilterExpression struct {
	ColumnID string
	Operator model.FilterOperator
	Value    string
}

// ParseFilterExpression 解析 "列名 运算符 值;" 形式的表达式。
// 列名可以包含空格（取最长的匹配），值必须以 ; 结尾。
func ParseFilterExpression(expr string, columns []model.Column) (FilterExpression, error) {
	tokens := strings.Split(strings.TrimSpace(expr), " ")
	if len(tokens) < 3 {
		return FilterExpression{}, ErrInvalidFilterExpression
	}

	byName := make(map[string]string, len(columns))
	for _, c := range columns {
		byName[c.Name] = c.ID
	}

	for split := len(tokens) - 2; split >= 1; split-- {
		columnID, ok := byName[strings.Join(tokens[:split], " ")]
		if !ok {
			continue
		}
		op := model.FilterOperator(tokens[split])
		if !op.Valid() {
			return FilterExpression{}, ErrInvalidFilterExpression
		}
		value := strings.Join(tokens[split+1:], " ")
		if value == "" || !strings.HasSuffix(value, ";") {
			return FilterExpression{}, ErrInvalidFilterExpression
		}
		return FilterExpression{
			ColumnID: columnID,
			Operator: op,
			Value:    strings.TrimSuffix(value, ";"),
		}, nil
	}
	return FilterExpression{}, ErrInvalidFilterExpression
}

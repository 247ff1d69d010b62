package resolver

import (
	"strings"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// Evaluator 预先解析好候选值的单个筛选条件
type Evaluator struct {
	op           model.FilterOperator
	alternatives []Value
}

// NewEvaluator 拆分 | 分隔的候选值并逐个强制转换
func NewEvaluator(filterValue string, op model.FilterOperator) *Evaluator {
	parts := strings.Split(filterValue, "|")
	alternatives := make([]Value, 0, len(parts))
	for _, p := range parts {
		alternatives = append(alternatives, ResolveValue(strings.TrimSpace(p)))
	}
	return &Evaluator{op: op, alternatives: alternatives}
}

// Match 判断单元格取值是否满足条件
func (e *Evaluator) Match(cellValue *string) bool {
	v := resolvePtr(cellValue)

	if e.op == model.OpNotEqual {
		for _, alt := range e.alternatives {
			if v.Equal(alt) {
				return false
			}
		}
		return true
	}

	for _, alt := range e.alternatives {
		if matchOne(v, alt, e.op) {
			return true
		}
	}
	return false
}

func matchOne(v, alt Value, op model.FilterOperator) bool {
	switch op {
	case model.OpEqual:
		return v.Equal(alt)
	case model.OpGreater:
		return v.Compare(alt) > 0
	case model.OpGreaterOrEqual:
		return v.Compare(alt) >= 0
	case model.OpLess:
		return v.Compare(alt) < 0
	case model.OpLessOrEqual:
		return v.Compare(alt) <= 0
	}
	return false
}

// ResolveFilter 对单个单元格取值求值一个筛选条件
func ResolveFilter(cellValue *string, filterValue string, op model.FilterOperator) bool {
	return NewEvaluator(filterValue, op).Match(cellValue)
}

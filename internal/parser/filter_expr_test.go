package parser

import (
	"errors"
	"testing"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

func TestParseFilterExpression(t *testing.T) {
	t.Parallel()

	columns := []model.Column{
		{ID: "c-score", Name: "Score"},
		{ID: "c-first", Name: "First Name"},
	}

	cases := []struct {
		expr string
		want FilterExpression
	}{
		{"Score >= 10|20;", FilterExpression{ColumnID: "c-score", Operator: model.OpGreaterOrEqual, Value: "10|20"}},
		{"First Name = Mary Ann;", FilterExpression{ColumnID: "c-first", Operator: model.OpEqual, Value: "Mary Ann"}},
		{"Score != A|B;", FilterExpression{ColumnID: "c-score", Operator: model.OpNotEqual, Value: "A|B"}},
	}
	for _, tc := range cases {
		got, err := ParseFilterExpression(tc.expr, columns)
		if err != nil {
			t.Fatalf("%q: %v", tc.expr, err)
		}
		if got != tc.want {
			t.Fatalf("%q = %+v, want %+v", tc.expr, got, tc.want)
		}
	}
}

func TestParseFilterExpression_Invalid(t *testing.T) {
	t.Parallel()

	columns := []model.Column{{ID: "c-score", Name: "Score"}}
	for _, expr := range []string{
		"Score >= 10",  // 缺少 ;
		"Score ~ 10;",  // 未知运算符
		"Missing = 1;", // 未知列
		"Score =",      // 缺少值
		"",
	} {
		if _, err := ParseFilterExpression(expr, columns); !errors.Is(err, ErrInvalidFilterExpression) {
			t.Fatalf("%q: err = %v, want ErrInvalidFilterExpression", expr, err)
		}
	}
}

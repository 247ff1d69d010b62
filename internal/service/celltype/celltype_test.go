package celltype

import (
	"testing"
	"time"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

func TestInfer(t *testing.T) {
	cases := []struct {
		sample string
		want   model.ColumnType
	}{
		{"true", model.ColumnTypeBoolean},
		{"FALSE", model.ColumnTypeBoolean},
		{"True", model.ColumnTypeBoolean},
		{"30", model.ColumnTypeNumber},
		{"-1.25", model.ColumnTypeNumber},
		{"45%", model.ColumnTypeNumber},
		{"1e3", model.ColumnTypeNumber},
		{"2024-03-01", model.ColumnTypeDatetime},
		{"2024-03-01 12:30:00", model.ColumnTypeDatetime},
		{"03/01/2024", model.ColumnTypeDatetime},
		{"Jan 2, 2006", model.ColumnTypeDatetime},
		{"Alice", model.ColumnTypeString},
		{"", model.ColumnTypeString},
		{"NaN", model.ColumnTypeString},
		{"Infinity", model.ColumnTypeString},
		{"0x1F", model.ColumnTypeString},
		{"1_000", model.ColumnTypeString},
		{"%", model.ColumnTypeString},
		{"yes", model.ColumnTypeString},
	}

	for _, tc := range cases {
		if got := Infer(tc.sample); got != tc.want {
			t.Errorf("Infer(%q) = %s, want %s", tc.sample, got, tc.want)
		}
	}
}

func TestInfer_FirstMatchWins(t *testing.T) {
	// 纯数字同样可被某些日期格式吞掉，必须先判为 NUMBER
	if got := Infer("2024"); got != model.ColumnTypeNumber {
		t.Fatalf("Infer(2024) = %s, want NUMBER", got)
	}
}

func TestHandlerNative(t *testing.T) {
	v, ok := For(model.ColumnTypeNumber).Native("50%")
	if !ok || v.(float64) != 0.5 {
		t.Fatalf("number native = %v,%v want 0.5,true", v, ok)
	}

	v, ok = For(model.ColumnTypeBoolean).Native("TRUE")
	if !ok || v.(bool) != true {
		t.Fatalf("boolean native = %v,%v want true,true", v, ok)
	}

	v, ok = For(model.ColumnTypeDatetime).Native("2024-03-01")
	if !ok || !v.(time.Time).Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("datetime native = %v,%v", v, ok)
	}

	if _, ok := For(model.ColumnTypeNumber).Native("abc"); ok {
		t.Fatal("number native should reject abc")
	}

	if got := For(model.ColumnType("BOGUS")).Type(); got != model.ColumnTypeString {
		t.Fatalf("unknown type handler = %s, want STRING", got)
	}
}

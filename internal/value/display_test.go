package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"unit", Unit{}, "()"},
		{"bool", Bool(true), "true"},
		{"u64 max", U64(math.MaxUint64), "18446744073709551615"},
		{"i8 negative", I8(-7), "-7"},
		{"f64", F64(1.5), "1.5"},
		{"f64 integral", F64(3), "3"},
		{"f32", F32(0.1), "0.1"},
		{"nan", F64(math.NaN()), "NaN"},
		{"inf", F64(math.Inf(1)), "inf"},
		{"neg inf", F32(float32(math.Inf(-1))), "-inf"},
		{"char", Char('λ'), "λ"},
		{"string raw", NewStr(`say "hi"`), `say "hi"`},
		{"bytes", NewBytes([]byte("hi")), "[104, 105]"},
		{"empty bytes", NewBytes(nil), "[]"},
		{"seq", NewSeq(I32(1), NewStr("a")), "[1,a]"},
		{"empty seq", NewSeq(), "[]"},
		{"nested", NewSeq(NewSeq(), NewSeq(Bool(false))), "[[],[false]]"},
		{"map", MapFromEntries(
			Entry{Key: NewStr("y"), Value: I32(2)},
			Entry{Key: NewStr("x"), Value: I32(1)},
		), "{x:1,y:2}"},
		{"empty map", MapFromEntries(), "{}"},
		{"some", Some(NewSeq(I32(1))), "Some([1])"},
		{"none", None(), "None"},
		{"newtype", Wrap(NewStr("inner")), "inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

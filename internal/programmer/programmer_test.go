package programmer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantisuite/internal/calc"
)

type entry struct {
	kind       calc.Kind
	expression string
	result     string
}

type recorder struct{ entries []entry }

func (r *recorder) Record(kind calc.Kind, expression, result string) {
	r.entries = append(r.entries, entry{kind, expression, result})
}

func TestApply(t *testing.T) {
	tests := []struct {
		op   Op
		a, b int32
		want int32
	}{
		{NOT, 5, 0, -6},
		{AND, 12, 10, 8},
		{OR, 12, 10, 14},
		{XOR, 12, 10, 6},
		{SHL, 1, 4, 16},
		{SHL, 1, 31, math.MinInt32},
		{SHL, 1, 32, 1},
		{SHR, -16, 2, -4},
		{SHR, 256, 36, 16},
	}
	for _, tt := range tests {
		got, err := Apply(tt.op, tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%d %s %d", tt.a, tt.op, tt.b)
	}

	_, err := Apply("NAND", 1, 1)
	assert.ErrorIs(t, err, ErrUnknownOp)
}

func TestParseWrapsTo32Bits(t *testing.T) {
	v, err := Parse("FFFFFFFF", Hexadecimal)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), v)

	v, err = Parse("4294967297", Decimal)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	v, err = Parse("-101", Binary)
	require.NoError(t, err)
	assert.Equal(t, int32(-5), v)

	_, err = Parse("12", Binary)
	assert.ErrorIs(t, err, ErrInvalidDigit)

	_, err = Parse("FFFFFFFFFFFFFFFFF", Hexadecimal)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestCalculatorAppend(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "0", c.Display())

	require.NoError(t, c.Append('4'))
	require.NoError(t, c.Append('2'))
	assert.Equal(t, "42", c.Display())
	assert.Equal(t, Results{Bin: "101010", Oct: "52", Dec: "42", Hex: "2A"}, c.Results())

	c.SetBase(Binary)
	assert.Equal(t, "101010", c.Display())
	assert.ErrorIs(t, c.Append('2'), ErrInvalidDigit)
	assert.Equal(t, "101010", c.Display(), "rejected digit leaves state")
	require.NoError(t, c.Append('1'))
	assert.Equal(t, int32(85), c.Value())

	c.SetBase(Hexadecimal)
	assert.Equal(t, "55", c.Display())
	require.NoError(t, c.Append('f'))
	assert.Equal(t, "55F", c.Display())
	assert.Equal(t, int32(0x55f), c.Value())

	c.Clear()
	assert.Equal(t, "0", c.Display())
	assert.Equal(t, int32(0), c.Value())
}

func TestCalculatorOperate(t *testing.T) {
	rec := &recorder{}
	c := New(rec)

	require.NoError(t, c.Append('1'))
	require.NoError(t, c.Append('2'))
	require.NoError(t, c.Operate(AND))
	assert.Equal(t, "0", c.Display())
	assert.Equal(t, "12 AND", c.Preview())

	require.NoError(t, c.Append('1'))
	require.NoError(t, c.Append('0'))
	require.NoError(t, c.Operate(OR), "second call uses the pending op")
	assert.Equal(t, "8", c.Display())
	assert.Empty(t, c.Preview())

	require.NoError(t, c.Operate(NOT))
	assert.Equal(t, "-9", c.Display())

	assert.Equal(t, []entry{
		{calc.KindProgrammer, "12 AND 10", "8"},
		{calc.KindProgrammer, "NOT 8", "-9"},
	}, rec.entries)
}

func TestCalculatorShift(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Append('1'))
	require.NoError(t, c.Operate(SHL))
	require.NoError(t, c.Append('8'))
	require.NoError(t, c.Operate(SHL))
	assert.Equal(t, int32(256), c.Value())

	c.SetBase(Hexadecimal)
	assert.Equal(t, "100", c.Display())
}

func TestParseBaseAndOp(t *testing.T) {
	b, err := ParseBase("HEX")
	require.NoError(t, err)
	assert.Equal(t, Hexadecimal, b)

	_, err = ParseBase("base64")
	assert.ErrorIs(t, err, ErrUnknownBase)

	op, err := ParseOp("xor")
	require.NoError(t, err)
	assert.Equal(t, XOR, op)

	_, err = ParseOp("+")
	assert.ErrorIs(t, err, ErrUnknownOp)
}

package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"10/4", 2.5},
		{"-2*-3", 6},
		{"+5", 5},
		{" 1 + 2 ", 3},
		{"1.5e3", 1500},
		{".5*4", 2},
		{"@pi", math.Pi},
		{"2*@e", 2 * math.E},
		{"@pow(2,10)", 1024},
		{"@sqrt(16)", 4},
		{"@cbrt(27)", 3},
		{"@abs(-5)", 5},
		{"@ln(@e)", 1},
		{"@exp(0)", 1},
		{"@num(7)", 7},
		{"@fact(5)", 120},
		{"@fact(0)", 1},
		{"@fact(20)", 2432902008176640000},
		{"@sin(0)+@cos(0)", 1},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluateVarsAndRand(t *testing.T) {
	got, err := Evaluate("x*x+1", WithVar("x", 3))
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)

	got, err = Evaluate("@rand()*4", WithRand(func() float64 { return 0.25 }))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	_, err = Evaluate("y+1", WithVar("x", 3))
	assert.ErrorIs(t, err, ErrMalformedExpression)
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"1/0", ErrNonFinite},
		{"0/0", ErrNonFinite},
		{"@asin(2)", ErrNonFinite},
		{"@sqrt(-1)", ErrNonFinite},
		{"@ln(0)", ErrNonFinite},
		{"@pow(10,400)", ErrNonFinite},
		{"@fact(171)", ErrNonFinite},
		{"@fact(-3)", ErrFactorialDomain},
		{"@fact(2.5)", ErrFactorialDomain},
		{"@fact(1001)", ErrFactorialOverflow},
		{"1e400", ErrNonFinite},
		{"2*-1e400", ErrNonFinite},
		{"2+", ErrMalformedExpression},
		{"(2", ErrMalformedExpression},
		{"2)", ErrMalformedExpression},
		{"", ErrMalformedExpression},
		{"abc", ErrMalformedExpression},
		{"@pow(2)", ErrMalformedExpression},
		{"@nope(1)", ErrMalformedExpression},
		{"@tau", ErrMalformedExpression},
		{"@", ErrMalformedExpression},
		{"1..2", ErrMalformedExpression},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Evaluate(tt.expr)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOverflowingLiteral(t *testing.T) {
	_, err := Calculate("1e400", Radians)
	assert.ErrorIs(t, err, ErrNonFinite)
	assert.False(t, errors.Is(err, ErrMalformedExpression))

	res, err := Calculate("1e-400", Radians)
	require.NoError(t, err)
	assert.Equal(t, "0", res.Text)
}

func TestFactorialDomainIsNonFinite(t *testing.T) {
	_, err := Evaluate("@fact(-1)")
	assert.True(t, errors.Is(err, ErrFactorialDomain))
	assert.True(t, errors.Is(err, ErrNonFinite))

	_, err = Evaluate("@fact(1001)")
	assert.False(t, errors.Is(err, ErrNonFinite))
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		raw  string
		mode AngleMode
		want string
	}{
		{"2+3*4", Radians, "14"},
		{"0.1+0.2", Radians, "0.3"},
		{"5!", Radians, "120"},
		{"0!", Radians, "1"},
		{"20!", Radians, "2432902008176600000"},
		{"sqrt(16)", Radians, "4"},
		{"2sqrt(9)", Radians, "6"},
		{"2sqrt9", Radians, "6"},
		{"√16+∛27", Radians, "7"},
		{"sin(90)", Degrees, "1"},
		{"cos(60)", Degrees, "0.5"},
		{"tan(45)", Degrees, "1"},
		{"asin(1)", Degrees, "90"},
		{"acos(0.5)", Degrees, "60"},
		{"arctan(1)", Degrees, "45"},
		{"sin(PI/2)", Radians, "1"},
		{"log(100)", Radians, "2"},
		{"log(8,2)", Radians, "3"},
		{"ln(E)", Radians, "1"},
		{"2^10", Radians, "1024"},
		{"(1+2)^(2)", Radians, "9"},
		{"pow(2,0.5)*pow(2,0.5)", Radians, "2"},
		{"3pow(2)", Radians, "9"},
		{"2PI", Radians, "6.2831853071796"},
		{"|-5|+3", Radians, "8"},
		{"50%", Radians, "0.5"},
		{"2(3+4)", Radians, "14"},
		{"(3+4)2", Radians, "14"},
		{"6×2÷3", Radians, "4"},
		{"exp(0)", Radians, "1"},
		{"2-3!", Radians, "-4"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.raw, func(t *testing.T) {
			res, err := Calculate(tt.raw, tt.mode)
			require.NoError(t, err, "rewritten: %s", res.Rewritten)
			assert.Equal(t, tt.want, res.Text)
			assert.Equal(t, tt.raw, res.Expression)
		})
	}
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"1/0", ErrNonFinite},
		{"-3!", ErrFactorialDomain},
		{"2*-3!", ErrFactorialDomain},
		{"2.5!", ErrFactorialDomain},
		{"1001!", ErrFactorialOverflow},
		{"171!", ErrNonFinite},
		{"asin(2)", ErrNonFinite},
		{"log(0)", ErrNonFinite},
		{"2+", ErrMalformedExpression},
		{"sin(", ErrMalformedExpression},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := Calculate(tt.raw, Radians)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCalculateRand(t *testing.T) {
	res, err := Calculate("2RND", Radians, WithRand(func() float64 { return 0.25 }))
	require.NoError(t, err)
	assert.Equal(t, "0.5", res.Text)

	for range 20 {
		res, err := Calculate("RND", Radians)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Value, 0.0)
		assert.Less(t, res.Value, 1.0)
	}
}

func TestPowerMatchesPrimitive(t *testing.T) {
	pairs := []struct{ a, b string }{
		{"2", "10"},
		{"1.5", "2"},
		{"9", "0.5"},
		{"10", "3"},
		{"2", "0"},
	}
	for _, mode := range []AngleMode{Radians, Degrees} {
		for _, p := range pairs {
			res, err := Calculate(p.a+"^"+p.b, mode)
			require.NoError(t, err)
			want, err := Evaluate("@pow(" + p.a + "," + p.b + ")")
			require.NoError(t, err)
			assert.Equal(t, Round(want), res.Value, "%s^%s", p.a, p.b)
		}
	}
}

func TestDegreeRoundTrip(t *testing.T) {
	for _, x := range []string{"0", "0.25", "0.5", "1"} {
		res, err := Calculate("sin(asin("+x+"))", Degrees)
		require.NoError(t, err)
		assert.Equal(t, x, res.Text)
	}
}

func TestDegreesConvertTypedConversions(t *testing.T) {
	res, err := Calculate("sin((30)*PI/180)", Degrees)
	require.NoError(t, err)
	assert.Equal(t, "@sin(@rad((30)*@pi/180))", res.Rewritten)
	assert.InDelta(t, 0.009138395397176, res.Value, 1e-12)

	res, err = Calculate("(asin(1)*180/PI)", Degrees)
	require.NoError(t, err)
	assert.Equal(t, "(@deg(@asin(@num(1)))*180/@pi)", res.Rewritten)
	assert.InDelta(t, 5156.6201561774, res.Value, 1e-9)
}

func TestEvaluateSimple(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"2+3*4", 14},
		{"10/4", 2.5},
		{"(1+2)*3", 9},
		{"2+abc3", 5},
		{"1 000+1", 1001},
		{"-4*2", -8},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := EvaluateSimple(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EvaluateSimple("1/0")
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = EvaluateSimple("sqrt")
	assert.ErrorIs(t, err, ErrMalformedExpression)
}

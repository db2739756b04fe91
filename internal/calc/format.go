package calc

import (
	"math"
	"strconv"
	"strings"
)

// Round keeps 14 significant digits, which hides binary noise such as
// 0.1+0.2 = 0.30000000000000004.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'e', 13, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Format renders v rounded to 14 significant digits in its shortest exact
// decimal form. Magnitudes of 1e21 and above or below 1e-6 use an exponent.
func Format(v float64) string {
	return shortest(Round(v))
}

// FormatPrecision is Format with a custom number of significant digits.
func FormatPrecision(v float64, digits int) string {
	if digits < 1 {
		digits = 1
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return shortest(v)
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'e', digits-1, 64), 64)
	if err != nil {
		return shortest(v)
	}
	return shortest(r)
}

func shortest(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + exp[:1] + digits
}

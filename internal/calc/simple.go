package calc

import "regexp"

var simpleStrip = regexp.MustCompile(`[^-()\d/*+.]`)

// EvaluateSimple drops everything except digits, '.', parentheses and the
// four operators, then evaluates what is left as plain infix arithmetic.
func EvaluateSimple(raw string) (float64, error) {
	return Evaluate(simpleStrip.ReplaceAllString(raw, ""))
}

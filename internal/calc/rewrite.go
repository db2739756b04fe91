package calc

import (
	"fmt"
	"regexp"
	"strings"
)

// AngleMode selects radian or degree semantics for trig primitives.
type AngleMode int

const (
	Radians AngleMode = iota
	Degrees
)

func (m AngleMode) String() string {
	if m == Degrees {
		return "DEG"
	}
	return "RAD"
}

// ParseAngleMode accepts RAD/DEG in any case, and the long names.
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RAD", "RADIAN", "RADIANS", "":
		return Radians, nil
	case "DEG", "DEGREE", "DEGREES":
		return Degrees, nil
	}
	return Radians, fmt.Errorf("unknown angle mode %q", s)
}

// Stage is one named step of the rewrite pipeline. Stages run strictly in
// order; later stages rely on the surface form left by earlier ones.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Rewrite turns calculator notation into an expression Evaluate accepts.
// Stages that do not match leave the text alone, and rewriting an already
// rewritten expression changes nothing.
func Rewrite(raw string, mode AngleMode) string {
	s := raw
	for _, st := range Stages(mode) {
		s = st.Apply(s)
	}
	return s
}

// Stages returns the pipeline for mode. Degree conversion is appended last.
func Stages(mode AngleMode) []Stage {
	if mode == Degrees {
		return append(stages[:len(stages):len(stages)], degreeStage)
	}
	return stages
}

const number = `\d+(?:\.\d+)?`

// rule is a single regexp substitution. A bare rule skips matches glued to a
// preceding identifier character, so "asin(" never matches "sin(" and
// "@sqrt(" never matches "sqrt(".
type rule struct {
	re   *regexp.Regexp
	repl string
	bare bool
	skip func(s string, m []int) bool
}

func sub(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl}
}

func bareSub(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl, bare: true}
}

func lit(old, repl string) rule {
	return rule{re: regexp.MustCompile(regexp.QuoteMeta(old)), repl: repl}
}

func (r rule) apply(s string) string {
	if !r.bare && r.skip == nil {
		return r.re.ReplaceAllString(s, r.repl)
	}
	matches := r.re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}
	var b []byte
	last := 0
	for _, m := range matches {
		if (r.bare && gluedLeft(s, m[0])) || (r.skip != nil && r.skip(s, m)) {
			continue
		}
		b = append(b, s[last:m[0]]...)
		b = r.re.ExpandString(b, r.repl, s, m)
		last = m[1]
	}
	return string(append(b, s[last:]...))
}

func gluedLeft(s string, i int) bool {
	return i > 0 && (isLetter(s[i-1]) || s[i-1] == '@')
}

// pipe chains rules and call rewrites into one stage body.
func pipe(steps ...func(string) string) func(string) string {
	return func(s string) string {
		for _, step := range steps {
			s = step(s)
		}
		return s
	}
}

func rules(rs ...rule) []func(string) string {
	out := make([]func(string) string, len(rs))
	for i, r := range rs {
		out[i] = r.apply
	}
	return out
}

var stages = []Stage{
	{"aliases", pipe(rules(
		lit("PI", "@pi"),
		lit("E", "@e"),
		lit("×", "*"),
		lit("÷", "/"),
		lit("RND", "@rand()"),
	)...)},
	{"abs", pipe(rules(
		sub(`\|([^|]+)\|`, "@abs(${1})"),
		lit("|x|", "@abs(x)"),
	)...)},
	{"power", pipe(append([]func(string) string{explicitPow}, rules(
		sub(`\(([^()]+)\)\s*\^\s*\(([^)]+)\)`, "@pow((${1}),(${2}))"),
		sub(`(`+number+`)\s*\^\s*(`+number+`)`, "@pow(${1},${2})"),
		sub(`(`+number+`)\s*\^\s*\(([^)]+)\)`, "@pow(${1},(${2}))"),
		sub(`(\d+)pow\(([^)]+)\)`, "@pow(${1},${2})"),
		sub(`(\d+)pow(\d+)`, "@pow(${1},${2})"),
	)...)...)},
	{"exponential", pipe(rules(
		bareSub(`eˣ`, "@exp"),
		bareSub(`exp\(`, "@exp("),
		bareSub(`e\^(`+number+`|x\b)`, "@exp(${1})"),
		bareSub(`e\^\(`, "@exp("),
	)...)},
	{"roots", pipe(rules(
		bareSub(`sqrt\(`, "@sqrt("),
		bareSub(`cbrt\(`, "@cbrt("),
		sub(`(\d+)sqrt(`+number+`)`, "(${1}*@sqrt(${2}))"),
		sub(`(\d+)cbrt(`+number+`)`, "(${1}*@cbrt(${2}))"),
		lit("√(", "@sqrt("),
		lit("∛(", "@cbrt("),
		sub(`√(`+number+`)`, "@sqrt(${1})"),
		sub(`∛(`+number+`)`, "@cbrt(${1})"),
	)...)},
	{"inverse-trig", pipe(append(rules(
		bareSub(`arcsin\(`, "@asin("),
		bareSub(`arccos\(`, "@acos("),
		bareSub(`arctan\(`, "@atan("),
		bareSub(`sin⁻¹\(`, "@asin("),
		bareSub(`cos⁻¹\(`, "@acos("),
		bareSub(`tan⁻¹\(`, "@atan("),
		bareSub(`asin\(`, "@asin("),
		bareSub(`acos\(`, "@acos("),
		bareSub(`atan\(`, "@atan("),
	), coerce("@asin"), coerce("@acos"), coerce("@atan"))...)},
	{"logarithms", pipe(append([]func(string) string{logWithBase, logDecimal}, rules(
		bareSub(`ln\(`, "@ln("),
	)...)...)},
	{"trig", pipe(rules(
		bareSub(`sin\(`, "@sin("),
		bareSub(`cos\(`, "@cos("),
		bareSub(`tan\(`, "@tan("),
	)...)},
	{"implicit-multiplication", pipe(rules(
		sub(`(\d)(@(?:pi|e))\b`, "${1}*${2}"),
		sub(`(\d)((?:asin|acos|atan|sin|cos|tan|log|ln|sqrt|cbrt|abs|exp)\()`, "${1}*${2}"),
		sub(`(\d)(@[a-z]+\()`, "${1}*${2}"),
		sub(`(\d)\(`, "${1}*("),
		sub(`\)(\d)`, ")*${1}"),
		sub(`\)(@[a-z]+)`, ")*${1}"),
	)...)},
	{"percent", pipe(rules(
		sub(`(`+number+`)%`, "(${1}/100)"),
	)...)},
	{"factorial", pipe(rules(
		sub(`(^|[-+*/(,])-(`+number+`)!`, "${1}@fact(-${2})"),
		sub(`(`+number+`)!`, "@fact(${1})"),
	)...)},
	{"reciprocal", pipe(rules(
		rule{re: regexp.MustCompile(`1/x`), repl: "(1/x)", skip: reciprocalDone},
	)...)},
}

var degreeStage = Stage{"degrees", pipe(
	toRadians("@sin"), toRadians("@cos"), toRadians("@tan"),
	toDegrees("@asin"), toDegrees("@acos"), toDegrees("@atan"),
)}

// reciprocalDone skips 1/x that is already wrapped or is the tail of a
// longer number or identifier.
func reciprocalDone(s string, m []int) bool {
	if m[0] > 0 && (isDigit(s[m[0]-1]) || s[m[0]-1] == '.') {
		return true
	}
	if m[1] < len(s) && (isLetter(s[m[1]]) || isDigit(s[m[1]])) {
		return true
	}
	return m[0] > 0 && s[m[0]-1] == '(' && m[1] < len(s) && s[m[1]] == ')'
}

// call is one name(...) occurrence found by mapCalls.
type call struct {
	inner  string // argument text, already rewritten
	before string
	after  string
}

// mapCalls rewrites every bare occurrence of name(...) with balanced
// parentheses, innermost first. Unbalanced calls are left untouched.
func mapCalls(s, name string, f func(c call) string) string {
	var b strings.Builder
	i := 0
	for {
		j := indexCall(s, name, i)
		if j < 0 {
			break
		}
		open := j + len(name)
		end := matchParen(s, open)
		if end < 0 {
			break
		}
		b.WriteString(s[i:j])
		inner := mapCalls(s[open+1:end], name, f)
		b.WriteString(f(call{inner: inner, before: s[:j], after: s[end+1:]}))
		i = end + 1
	}
	b.WriteString(s[i:])
	return b.String()
}

func indexCall(s, name string, from int) int {
	needle := name + "("
	for from <= len(s) {
		k := strings.Index(s[from:], needle)
		if k < 0 {
			return -1
		}
		j := from + k
		if name[0] == '@' || !gluedLeft(s, j) {
			return j
		}
		from = j + 1
	}
	return -1
}

// matchParen returns the index of the parenthesis closing s[open], or -1.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitArgs splits a call's argument text on top-level commas.
func splitArgs(inner string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(inner[start:]))
}

// isCall reports whether s is exactly one name(...) call.
func isCall(s, name string) bool {
	return strings.HasPrefix(s, name+"(") && matchParen(s, len(name)) == len(s)-1
}

// explicitPow turns pow(a,b) into the primitive. Single-argument pow(...)
// is left for the legacy Npow(args) rule.
func explicitPow(s string) string {
	return mapCalls(s, "pow", func(c call) string {
		if len(splitArgs(c.inner)) < 2 {
			return "pow(" + c.inner + ")"
		}
		return "@pow(" + c.inner + ")"
	})
}

// coerce wraps inverse-trig arguments in @num so the primitive always
// receives a number.
func coerce(name string) func(string) string {
	return func(s string) string {
		return mapCalls(s, name, func(c call) string {
			if isCall(c.inner, "@num") {
				return name + "(" + c.inner + ")"
			}
			return name + "(@num(" + c.inner + "))"
		})
	}
}

// logWithBase handles log(x,b). It must run before logDecimal.
func logWithBase(s string) string {
	return mapCalls(s, "log", func(c call) string {
		args := splitArgs(c.inner)
		if len(args) != 2 {
			return "log(" + c.inner + ")"
		}
		return "(@ln(" + args[0] + ")/@ln(" + args[1] + "))"
	})
}

func logDecimal(s string) string {
	return mapCalls(s, "log", func(c call) string {
		if len(splitArgs(c.inner)) != 1 {
			return "log(" + c.inner + ")"
		}
		return "(@ln(" + c.inner + ")/@ln(10))"
	})
}

// toRadians wraps a forward trig argument in @rad. An argument that is
// already a single @rad(...) call came from an earlier pass.
func toRadians(name string) func(string) string {
	return func(s string) string {
		return mapCalls(s, name, func(c call) string {
			if isCall(c.inner, "@rad") {
				return name + "(" + c.inner + ")"
			}
			return name + "(@rad(" + c.inner + "))"
		})
	}
}

// toDegrees wraps an inverse trig result in @deg.
func toDegrees(name string) func(string) string {
	return func(s string) string {
		return mapCalls(s, name, func(c call) string {
			out := name + "(" + c.inner + ")"
			if strings.HasSuffix(c.before, "@deg(") && strings.HasPrefix(c.after, ")") {
				return out
			}
			return "@deg(" + out + ")"
		})
	}
}

package calc

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/rand/v2"
	"strconv"
)

// maxFactorial is the largest argument @fact accepts.
const maxFactorial = 1000

// Option configures a single evaluation.
type Option func(*parser)

// WithVar binds a bare identifier (the grapher binds x).
func WithVar(name string, value float64) Option {
	return func(p *parser) {
		if p.vars == nil {
			p.vars = map[string]float64{}
		}
		p.vars[name] = value
	}
}

// WithRand replaces the source used by @rand().
func WithRand(f func() float64) Option {
	return func(p *parser) {
		p.rand = f
	}
}

// Evaluate executes an expression produced by Rewrite. Every intermediate
// result must be finite.
func Evaluate(expr string, opts ...Option) (float64, error) {
	p := parser{
		input: expr,
		pos:   0,
		rand:  rand.Float64,
	}
	for _, opt := range opts {
		opt(&p)
	}

	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, p.errorf("unexpected %q", p.input[p.pos:])
	}
	return val, nil
}

type parser struct {
	input string
	pos   int
	vars  map[string]float64
	rand  func() float64
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformedExpression, fmt.Sprintf(format, args...), p.pos)
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) parseExpr() (float64, error) {
	return p.parseAddSub()
}

func (p *parser) parseAddSub() (float64, error) {
	val, err := p.parseMulDiv()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			break
		}
		p.pos++
		right, err := p.parseMulDiv()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			val = val + right
		} else {
			val = val - right
		}
		if val, err = finite(val); err != nil {
			return 0, err
		}
	}
	return val, nil
}

func (p *parser) parseMulDiv() (float64, error) {
	val, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			break
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			val = val * right
		} else {
			val = val / right
		}
		if val, err = finite(val); err != nil {
			return 0, err
		}
	}
	return val, nil
}

func (p *parser) parseFactor() (float64, error) {
	p.skipSpaces()
	if p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == '+' {
			p.pos++
			return p.parseFactor()
		}
		if ch == '-' {
			p.pos++
			v, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			return -v, nil
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, p.errorf("unexpected end of input")
	}
	ch := p.input[p.pos]
	if ch == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	if isDigit(ch) || ch == '.' {
		return p.parseNumber()
	}

	// primitive: @name or @name(args)
	if ch == '@' {
		p.pos++
		name := p.scanLetters()
		if name == "" {
			return 0, p.errorf("missing primitive name")
		}
		p.skipSpaces()
		if p.pos < len(p.input) && p.input[p.pos] == '(' {
			p.pos++
			args, err := p.parseArgs()
			if err != nil {
				return 0, err
			}
			return p.call(name, args)
		}
		switch name {
		case "pi":
			return math.Pi, nil
		case "e":
			return math.E, nil
		}
		return 0, p.errorf("unknown constant @%s", name)
	}

	// bound variable
	if isLetter(ch) {
		name := p.scanLetters()
		if v, ok := p.vars[name]; ok {
			return v, nil
		}
		return 0, p.errorf("unknown identifier %q", name)
	}

	return 0, p.errorf("unexpected %q", string(ch))
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	j := p.pos
	seenDot := false
	seenE := false
	for j < len(p.input) {
		c := p.input[j]
		if c >= '0' && c <= '9' {
			j++
			continue
		}
		if c == '.' {
			if seenDot || seenE {
				break
			}
			seenDot = true
			j++
			continue
		}
		if c == 'e' || c == 'E' {
			if seenE {
				break
			}
			seenE = true
			j++
			if j < len(p.input) && (p.input[j] == '+' || p.input[j] == '-') {
				j++
			}
			continue
		}
		break
	}
	numStr := p.input[start:j]
	p.pos = j
	v, err := strconv.ParseFloat(numStr, 64)
	if errors.Is(err, strconv.ErrRange) && math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNonFinite, numStr)
	}
	if err != nil {
		return 0, p.errorf("bad number %q", numStr)
	}
	return v, nil
}

// parseArgs reads a comma separated argument list; the opening
// parenthesis has already been consumed.
func (p *parser) parseArgs() ([]float64, error) {
	var args []float64
	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == ')' {
		p.pos++
		return args, nil
	}
	for {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, p.errorf("missing closing parenthesis")
		}
		switch p.input[p.pos] {
		case ',':
			p.pos++
			continue
		case ')':
			p.pos++
			return args, nil
		}
		return nil, p.errorf("unexpected %q in argument list", string(p.input[p.pos]))
	}
}

func (p *parser) scanLetters() string {
	start := p.pos
	for p.pos < len(p.input) && isLetter(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

var unaryPrimitives = map[string]func(float64) float64{
	"abs":  math.Abs,
	"exp":  math.Exp,
	"sqrt": math.Sqrt,
	"cbrt": math.Cbrt,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"ln":   math.Log,
	"num":  func(v float64) float64 { return v },
	"rad":  func(v float64) float64 { return v * math.Pi / 180 },
	"deg":  func(v float64) float64 { return v * 180 / math.Pi },
}

func (p *parser) call(name string, args []float64) (float64, error) {
	var (
		v   float64
		err error
	)
	switch name {
	case "rand":
		if len(args) != 0 {
			return 0, p.errorf("@rand takes no arguments")
		}
		v = p.rand()
	case "pow":
		if len(args) != 2 {
			return 0, p.errorf("@pow takes 2 arguments, got %d", len(args))
		}
		v = math.Pow(args[0], args[1])
	case "fact":
		if len(args) != 1 {
			return 0, p.errorf("@fact takes 1 argument, got %d", len(args))
		}
		if v, err = factorial(args[0]); err != nil {
			return 0, err
		}
	default:
		fn, ok := unaryPrimitives[name]
		if !ok {
			return 0, p.errorf("unknown primitive @%s", name)
		}
		if len(args) != 1 {
			return 0, p.errorf("@%s takes 1 argument, got %d", name, len(args))
		}
		v = fn(args[0])
	}
	return finite(v)
}

// factorial multiplies exactly with big.Int and narrows once, so results
// are correctly rounded (20! is exact). Arguments from 171 up overflow
// float64 and come back as +Inf.
func factorial(n float64) (float64, error) {
	if n < 0 || n != math.Trunc(n) {
		return 0, fmt.Errorf("%w: %s", ErrFactorialDomain, strconv.FormatFloat(n, 'g', -1, 64))
	}
	if n > maxFactorial {
		return 0, fmt.Errorf("%w: %s", ErrFactorialOverflow, strconv.FormatFloat(n, 'g', -1, 64))
	}
	if n < 2 {
		return 1, nil
	}
	prod := new(big.Int).MulRange(1, int64(n))
	f, _ := new(big.Float).SetInt(prod).Float64()
	return f, nil
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
func isDigit(b byte) bool {
	return (b >= '0' && b <= '9')
}

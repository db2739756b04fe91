package programmer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"quantisuite/internal/calc"
)

var (
	ErrInvalidDigit = errors.New("invalid digit for base")
	ErrUnknownBase  = errors.New("unknown base")
	ErrUnknownOp    = errors.New("unknown operation")
	ErrOverflow     = errors.New("value does not fit in 64 bits")
)

// Base is a display radix.
type Base int

const (
	Decimal     Base = 10
	Binary      Base = 2
	Octal       Base = 8
	Hexadecimal Base = 16
)

func (b Base) String() string {
	switch b {
	case Binary:
		return "binary"
	case Octal:
		return "octal"
	case Hexadecimal:
		return "hexadecimal"
	}
	return "decimal"
}

// ParseBase accepts the long names, their three letter forms and the radix.
func ParseBase(s string) (Base, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "decimal", "dec", "10", "":
		return Decimal, nil
	case "binary", "bin", "2":
		return Binary, nil
	case "octal", "oct", "8":
		return Octal, nil
	case "hexadecimal", "hex", "16":
		return Hexadecimal, nil
	}
	return Decimal, fmt.Errorf("%w: %q", ErrUnknownBase, s)
}

// Op is a bitwise operation.
type Op string

const (
	NOT Op = "NOT"
	AND Op = "AND"
	OR  Op = "OR"
	XOR Op = "XOR"
	SHL Op = "<<"
	SHR Op = ">>"
)

func ParseOp(s string) (Op, error) {
	op := Op(strings.ToUpper(strings.TrimSpace(s)))
	switch op {
	case NOT, AND, OR, XOR, SHL, SHR:
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Apply computes a op b on 32-bit signed integers. NOT ignores b. Shift
// counts use their low 5 bits.
func Apply(op Op, a, b int32) (int32, error) {
	switch op {
	case NOT:
		return ^a, nil
	case AND:
		return a & b, nil
	case OR:
		return a | b, nil
	case XOR:
		return a ^ b, nil
	case SHL:
		return a << (uint32(b) & 31), nil
	case SHR:
		return a >> (uint32(b) & 31), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

// Format renders v in base, hexadecimal upper-case.
func Format(v int32, b Base) string {
	return strings.ToUpper(strconv.FormatInt(int64(v), int(b)))
}

// Parse reads s in base and wraps it to 32 bits.
func Parse(s string, b Base) (int32, error) {
	neg := strings.HasPrefix(s, "-")
	u, err := strconv.ParseUint(strings.TrimPrefix(s, "-"), int(b), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrOverflow
		}
		return 0, fmt.Errorf("%w: %q in %s", ErrInvalidDigit, s, b)
	}
	v := int32(uint32(u))
	if neg {
		v = -v
	}
	return v, nil
}

// Results is a value shown in every base.
type Results struct {
	Bin, Oct, Dec, Hex string
}

// Calculator is the programmer keypad state: the display text in the current
// base and an optional pending two-operand operation.
type Calculator struct {
	base    Base
	display string
	value   int32
	first   int32
	pending Op
	rec     calc.Recorder
}

func New(rec calc.Recorder) *Calculator {
	return &Calculator{base: Decimal, display: "0", rec: rec}
}

func (c *Calculator) Base() Base      { return c.base }
func (c *Calculator) Value() int32    { return c.value }
func (c *Calculator) Display() string { return c.display }

// Append adds one digit to the display. Digits outside the current base are
// rejected and leave the state unchanged.
func (c *Calculator) Append(digit rune) error {
	if !validDigit(digit, c.base) {
		return fmt.Errorf("%w: %q in %s", ErrInvalidDigit, digit, c.base)
	}
	next := string(digit)
	if c.display != "0" && c.display != "Error" {
		next = c.display + next
	}
	v, err := Parse(next, c.base)
	if err != nil {
		return err
	}
	c.display = strings.ToUpper(next)
	c.value = v
	return nil
}

func validDigit(r rune, b Base) bool {
	var d int
	switch {
	case r >= '0' && r <= '9':
		d = int(r - '0')
	case r >= 'a' && r <= 'f':
		d = int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		d = int(r-'A') + 10
	default:
		return false
	}
	return d < int(b)
}

// SetBase switches the radix and re-renders the current value.
func (c *Calculator) SetBase(b Base) {
	c.base = b
	c.display = Format(c.value, b)
}

// Clear resets the display and drops any pending operation.
func (c *Calculator) Clear() {
	c.display = "0"
	c.value = 0
	c.first = 0
	c.pending = ""
}

// Pending returns the stored operand and operation, if any.
func (c *Calculator) Pending() (int32, Op, bool) {
	return c.first, c.pending, c.pending != ""
}

// Preview is the "<a> <op>" hint shown while an operation is pending.
func (c *Calculator) Preview() string {
	if c.pending == "" {
		return ""
	}
	return fmt.Sprintf("%d %s", c.first, c.pending)
}

func (c *Calculator) Results() Results {
	return Results{
		Bin: Format(c.value, Binary),
		Oct: Format(c.value, Octal),
		Dec: Format(c.value, Decimal),
		Hex: Format(c.value, Hexadecimal),
	}
}

// Operate applies op. NOT acts at once. The other operations store the
// current value on the first call; the next call computes with the stored
// operation, whatever op it is given.
func (c *Calculator) Operate(op Op) error {
	if op == NOT {
		a := c.value
		c.value = ^a
		c.display = Format(c.value, c.base)
		c.record(fmt.Sprintf("NOT %d", a), c.value)
		return nil
	}
	if _, err := Apply(op, 0, 0); err != nil {
		return err
	}

	if c.pending == "" {
		c.first = c.value
		c.pending = op
		c.value = 0
		c.display = "0"
		return nil
	}

	a, b, pending := c.first, c.value, c.pending
	res, err := Apply(pending, a, b)
	if err != nil {
		return err
	}
	c.value = res
	c.display = Format(res, c.base)
	c.first = 0
	c.pending = ""
	c.record(fmt.Sprintf("%d %s %d", a, pending, b), res)
	return nil
}

func (c *Calculator) record(expr string, v int32) {
	if c.rec != nil {
		c.rec.Record(calc.KindProgrammer, expr, strconv.Itoa(int(v)))
	}
}

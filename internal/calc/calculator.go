package calc

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
)

// Kind tags a calculation for history.
type Kind string

const (
	KindSimple     Kind = "simple"
	KindScientific Kind = "scientific"
	KindProgrammer Kind = "programmer"
)

// Recorder receives every successful calculation.
type Recorder interface {
	Record(kind Kind, expression, result string)
}

// Result is a successful calculation.
type Result struct {
	Expression string
	Rewritten  string
	Value      float64 // rounded to 14 significant digits
	Text       string
}

// Calculate rewrites raw under mode and evaluates it.
func Calculate(raw string, mode AngleMode, opts ...Option) (Result, error) {
	rewritten := Rewrite(raw, mode)
	v, err := Evaluate(rewritten, opts...)
	if err != nil {
		return Result{Expression: raw, Rewritten: rewritten}, err
	}
	return Result{
		Expression: raw,
		Rewritten:  rewritten,
		Value:      Round(v),
		Text:       Format(v),
	}, nil
}

// CalculateSimple evaluates raw with the simple calculator rules.
func CalculateSimple(raw string) (Result, error) {
	v, err := EvaluateSimple(raw)
	if err != nil {
		return Result{Expression: raw}, err
	}
	return Result{
		Expression: raw,
		Rewritten:  simpleStrip.ReplaceAllString(raw, ""),
		Value:      Round(v),
		Text:       Format(v),
	}, nil
}

// Calculator carries the angle mode between calls and reports results to
// history. The mode is only changed between calculations.
type Calculator struct {
	mode   AngleMode
	rec    Recorder
	logger *slog.Logger
	rand   func() float64
}

type CalculatorOption func(*Calculator)

func WithAngleMode(m AngleMode) CalculatorOption {
	return func(c *Calculator) {
		c.mode = m
	}
}

func WithRecorder(r Recorder) CalculatorOption {
	return func(c *Calculator) {
		c.rec = r
	}
}

func WithLogger(l *slog.Logger) CalculatorOption {
	return func(c *Calculator) {
		c.logger = l
	}
}

// WithRandSource replaces the RND source, mostly for tests.
func WithRandSource(f func() float64) CalculatorOption {
	return func(c *Calculator) {
		c.rand = f
	}
}

func New(opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		mode:   Radians,
		logger: slog.New(slog.DiscardHandler),
		rand:   rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Mode() AngleMode {
	return c.mode
}

func (c *Calculator) SetMode(m AngleMode) {
	c.mode = m
}

// ToggleAngleMode flips RAD and DEG and returns the new mode.
func (c *Calculator) ToggleAngleMode() AngleMode {
	if c.mode == Radians {
		c.mode = Degrees
	} else {
		c.mode = Radians
	}
	return c.mode
}

// Scientific runs the rewrite pipeline and evaluates the result.
func (c *Calculator) Scientific(raw string) (Result, error) {
	if isBlank(raw) {
		return Result{Expression: raw}, ErrEmptyExpression
	}
	res, err := Calculate(raw, c.mode, WithRand(c.rand))
	c.logger.Debug("scientific expression",
		"expression", raw,
		"rewritten", res.Rewritten,
		"mode", c.mode.String(),
	)
	if err != nil {
		c.logger.Debug("calculation failed", "expression", raw, "error", err)
		return res, fmt.Errorf("calculate %q: %w", raw, err)
	}
	c.record(KindScientific, res)
	return res, nil
}

// Simple evaluates raw with the whitelist-only simple calculator.
func (c *Calculator) Simple(raw string) (Result, error) {
	if isBlank(raw) {
		return Result{Expression: raw}, ErrEmptyExpression
	}
	res, err := CalculateSimple(raw)
	if err != nil {
		c.logger.Debug("calculation failed", "expression", raw, "error", err)
		return res, fmt.Errorf("calculate %q: %w", raw, err)
	}
	c.record(KindSimple, res)
	return res, nil
}

func (c *Calculator) record(kind Kind, res Result) {
	if c.rec != nil {
		c.rec.Record(kind, res.Expression, res.Text)
	}
}

// isBlank treats the display's error placeholder as empty input.
func isBlank(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || s == "Error"
}

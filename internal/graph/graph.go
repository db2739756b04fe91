package graph

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"quantisuite/internal/calc"
)

var (
	ErrNotAnEquation   = errors.New("enter an equation in the form y=... or f(x)=...")
	ErrInvalidEquation = errors.New("invalid equation")
)

var (
	yForm = regexp.MustCompile(`(?i)^\s*y\s*=\s*(.+)$`)
	fForm = regexp.MustCompile(`(?i)^\s*f\s*\(\s*x\s*\)\s*=\s*(.+)$`)
)

const number = `\d+(?:\.\d+)?`

// body rewrites that make x usable by the calculator pipeline
var prep = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`X`), "x"},
	{regexp.MustCompile(`(\d)(x)`), "${1}*${2}"},
	{regexp.MustCompile(`(x)(\d)`), "${1}*${2}"},
	{regexp.MustCompile(`\bx\s*\^\s*\(([^()]+)\)`), "pow(x,(${1}))"},
	{regexp.MustCompile(`\bx\s*\^\s*(` + number + `)`), "pow(x,${1})"},
	{regexp.MustCompile(`\(([^()]+)\)\s*\^\s*(` + number + `)`), "pow((${1}),${2})"},
}

// Function is a parsed y = f(x).
type Function struct {
	Equation string
	Body     string
	Expr     string // rewritten, ready for calc.Evaluate
}

// Parse accepts "y = body" or "f(x) = body".
func Parse(equation string) (*Function, error) {
	m := yForm.FindStringSubmatch(equation)
	if m == nil {
		m = fForm.FindStringSubmatch(equation)
	}
	if m == nil {
		return nil, ErrNotAnEquation
	}

	body := strings.TrimSpace(m[1])
	for _, p := range prep {
		body = p.re.ReplaceAllString(body, p.repl)
	}
	fn := &Function{
		Equation: strings.TrimSpace(equation),
		Body:     body,
		Expr:     calc.Rewrite(body, calc.Radians),
	}

	// probe once so syntax errors surface at parse time
	if _, err := fn.Eval(0.5); errors.Is(err, calc.ErrMalformedExpression) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEquation, err)
	}
	return fn, nil
}

func (f *Function) Eval(x float64) (float64, error) {
	return calc.Evaluate(f.Expr, calc.WithVar("x", x))
}

// Point is one sample. Y is meaningless when Valid is false.
type Point struct {
	X     float64
	Y     float64
	Valid bool
}

const (
	DefaultFrom = -10.0
	DefaultTo   = 10.0
	DefaultStep = 0.1

	// MaxPoints bounds one sampling run. Finer steps are widened to fit.
	MaxPoints = 10_000
)

// Sample evaluates f over [from, to]. X values are rounded to 2 decimals.
func (f *Function) Sample(from, to, step float64) []Point {
	if !(step > 0) || !(to >= from) || math.IsInf(to-from, 0) {
		return nil
	}
	count := math.Floor((to-from)/step+1e-9) + 1
	if count > MaxPoints {
		count = MaxPoints
		step = (to - from) / (MaxPoints - 1)
	}
	n := int(count)
	out := make([]Point, 0, n)
	for i := range n {
		x := math.Round((from+float64(i)*step)*100) / 100
		y, err := f.Eval(x)
		out = append(out, Point{X: x, Y: y, Valid: err == nil})
	}
	return out
}

// Plot rasterises points into height lines of width runes, with axes where
// zero falls inside the range.
func Plot(points []Point, width, height int) []string {
	if width < 2 || height < 2 {
		return nil
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	xmin, xmax, ymin, ymax, ok := bounds(points)
	if !ok {
		return render(canvas)
	}
	col := func(x float64) int {
		return int(math.Round((x - xmin) / (xmax - xmin) * float64(width-1)))
	}
	row := func(y float64) int {
		return int(math.Round((ymax - y) / (ymax - ymin) * float64(height-1)))
	}

	if ymin <= 0 && ymax >= 0 {
		r := row(0)
		for c := range width {
			canvas[r][c] = '─'
		}
	}
	if xmin <= 0 && xmax >= 0 {
		c := col(0)
		for r := range height {
			if canvas[r][c] == '─' {
				canvas[r][c] = '┼'
			} else {
				canvas[r][c] = '│'
			}
		}
	}
	for _, p := range points {
		if p.Valid {
			canvas[row(p.Y)][col(p.X)] = '•'
		}
	}
	return render(canvas)
}

func bounds(points []Point) (xmin, xmax, ymin, ymax float64, ok bool) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		if p.Valid {
			ymin = math.Min(ymin, p.Y)
			ymax = math.Max(ymax, p.Y)
			ok = true
		}
	}
	if !ok {
		return
	}
	if xmax == xmin {
		xmin, xmax = xmin-1, xmax+1
	}
	if ymax == ymin {
		ymin, ymax = ymin-1, ymax+1
	}
	return
}

func render(canvas [][]rune) []string {
	out := make([]string, len(canvas))
	for i, line := range canvas {
		out[i] = string(line)
	}
	return out
}

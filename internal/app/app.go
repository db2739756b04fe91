package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"quantisuite/internal/calc"
	"quantisuite/internal/convert"
	"quantisuite/internal/graph"
	"quantisuite/internal/history"
	"quantisuite/internal/keypad"
	"quantisuite/internal/programmer"
	"quantisuite/internal/storage"

	"github.com/gdamore/tcell/v2"
)

type Tab int

const (
	TabSimple Tab = iota
	TabScientific
	TabProgrammer
	TabConverter
	TabGraph
	TabHistory
	tabCount
)

var tabNames = [...]string{"Simple", "Scientific", "Programmer", "Converter", "Graph", "History"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "?"
	}
	return tabNames[t]
}

// runes typed straight into the display
const (
	simpleRunes     = "0123456789.+-*/()"
	scientificRunes = simpleRunes + "^%!,|×÷√∛"
)

var histFilters = []string{
	history.FilterAll,
	history.FilterToday,
	history.FilterWeek,
	string(calc.KindSimple),
	string(calc.KindScientific),
	string(calc.KindProgrammer),
}

// Converter fields, top to bottom.
const (
	fieldCategory = iota
	fieldFrom
	fieldTo
	fieldValue
	fieldCount
)

type converterState struct {
	Category int
	From     int
	To       int
	Field    int
	Value    string
	Result   string
}

type graphState struct {
	Equation string
	From, To float64
	fn       *graph.Function
}

type historyState struct {
	Filter int
	Search string
	Cursor int
}

// Options wires the app to the rest of the suite.
type Options struct {
	Calc    *calc.Calculator
	History *history.Log
	Logger  *slog.Logger

	// Screen defaults to the terminal.
	Screen   tcell.Screen
	NoSplash bool
}

type App struct {
	Tab         Tab
	Displays    map[Tab]string
	Pads        map[Tab]*keypad.Pad
	Status      string
	HelpVisible bool
	Quit        bool

	Conv        converterState
	Graph       graphState
	HistoryView historyState

	ctx     context.Context
	calc    *calc.Calculator
	prog    *programmer.Calculator
	history *history.Log
	logger  *slog.Logger

	// prompt shows a one-line editor; replaced in tests
	prompt func(s tcell.Screen, prompt, initial string) (string, bool)
}

func NewApp(ctx context.Context, opts Options) *App {
	a := &App{
		Tab:      TabScientific,
		Displays: map[Tab]string{TabSimple: "0", TabScientific: "0"},
		Pads: map[Tab]*keypad.Pad{
			TabSimple:     keypad.Simple(),
			TabScientific: keypad.Scientific(),
			TabProgrammer: keypad.Programmer(),
		},
		Conv:    converterState{To: 1, Value: "1"},
		Graph:   graphState{From: graph.DefaultFrom, To: graph.DefaultTo},
		ctx:     ctx,
		calc:    opts.Calc,
		history: opts.History,
		logger:  opts.Logger,
	}
	if a.calc == nil {
		a.calc = calc.New()
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	var rec calc.Recorder
	if a.history != nil {
		rec = a.history
	}
	a.prog = programmer.New(rec)
	a.prompt = a.PopupInput
	a.convert()
	return a
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	// help popup swallows everything but its close keys
	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.Quit = true
		return
	case tcell.KeyF1, tcell.KeyF2, tcell.KeyF3, tcell.KeyF4, tcell.KeyF5, tcell.KeyF6:
		a.SetTab(Tab(ev.Key() - tcell.KeyF1))
		return
	case tcell.KeyTab:
		a.SetTab((a.Tab + 1) % tabCount)
		return
	case tcell.KeyBacktab:
		a.SetTab((a.Tab + tabCount - 1) % tabCount)
		return
	case tcell.KeyRune:
		switch ev.Rune() {
		case '?':
			a.HelpVisible = true
			return
		case 'q':
			a.Quit = true
			return
		}
	}

	switch a.Tab {
	case TabSimple, TabScientific:
		a.handleCalcKey(s, ev)
	case TabProgrammer:
		a.handleProgrammerKey(s, ev)
	case TabConverter:
		a.handleConverterKey(s, ev)
	case TabGraph:
		a.handleGraphKey(s, ev)
	case TabHistory:
		a.handleHistoryKey(s, ev)
	}
}

func (a *App) SetTab(t Tab) {
	if t < 0 || t >= tabCount {
		return
	}
	a.Tab = t
	a.Status = ""
	if t == TabHistory {
		a.HistoryView.Cursor = 0
	}
}

// movePad handles the arrow keys shared by every keypad tab.
func (a *App) movePad(ev *tcell.EventKey) bool {
	pad := a.Pads[a.Tab]
	if pad == nil {
		return false
	}
	switch ev.Key() {
	case tcell.KeyUp:
		pad.Move(-1, 0)
	case tcell.KeyDown:
		pad.Move(1, 0)
	case tcell.KeyLeft:
		pad.Move(0, -1)
	case tcell.KeyRight:
		pad.Move(0, 1)
	default:
		return false
	}
	return true
}

func (a *App) jumpPad(s tcell.Screen) {
	pad := a.Pads[a.Tab]
	ref, ok := a.prompt(s, "Key:", pad.Name())
	if !ok {
		return
	}
	if !pad.Jump(ref) {
		a.Status = fmt.Sprintf("No key at %q", ref)
	}
}

func (a *App) handleCalcKey(s tcell.Screen, ev *tcell.EventKey) {
	if a.movePad(ev) {
		return
	}
	scientific := a.Tab == TabScientific
	switch ev.Key() {
	case tcell.KeyEnter:
		a.Calculate()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.Backspace()
	case tcell.KeyEsc:
		a.Clear()
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r == ' ':
			a.Press(a.Pads[a.Tab].Selected())
		case r == '=':
			a.Calculate()
		case r == 'c':
			a.Clear()
		case r == 'g':
			a.jumpPad(s)
		case r == 'p' && scientific:
			a.Insert("PI")
		case r == 'r' && scientific:
			a.ToggleAngleMode()
		case r == 'e' && scientific:
			if expr, ok := a.prompt(s, "Expression:", a.display()); ok {
				a.Displays[a.Tab] = expr
				a.Calculate()
			}
		case strings.ContainsRune(simpleRunes, r),
			scientific && strings.ContainsRune(scientificRunes, r):
			a.Insert(string(r))
		}
	}
}

// Press activates a keypad key on the current tab.
func (a *App) Press(k keypad.Key) {
	if a.Tab == TabProgrammer {
		a.pressProgrammer(k)
		return
	}
	switch k.Action {
	case keypad.Insert:
		a.Insert(k.Text)
	case keypad.Equals:
		a.Calculate()
	case keypad.Clear:
		a.Clear()
	case keypad.Backspace:
		a.Backspace()
	case keypad.ToggleAngle:
		a.ToggleAngleMode()
	}
}

func (a *App) display() string {
	return a.Displays[a.Tab]
}

// Insert appends text to the display, replacing a lone zero or an error.
func (a *App) Insert(text string) {
	d := a.display()
	if d == "Error" || (d == "0" && text != ".") {
		d = ""
	}
	a.Displays[a.Tab] = d + text
}

func (a *App) Backspace() {
	r := []rune(a.display())
	if len(r) <= 1 {
		a.Displays[a.Tab] = "0"
		return
	}
	a.Displays[a.Tab] = string(r[:len(r)-1])
}

func (a *App) Clear() {
	a.Displays[a.Tab] = "0"
	a.Status = ""
}

func (a *App) ToggleAngleMode() {
	m := a.calc.ToggleAngleMode()
	a.Status = "Angle mode: " + m.String()
}

// Calculate evaluates the display of the simple or scientific tab. The
// display shows the result, or "Error" with the reason in the status line.
func (a *App) Calculate() {
	raw := a.display()
	run := a.calc.Scientific
	if a.Tab == TabSimple {
		run = a.calc.Simple
	}
	res, err := run(raw)
	switch {
	case errors.Is(err, calc.ErrEmptyExpression):
		a.Status = "Nothing to calculate"
	case err != nil:
		a.Displays[a.Tab] = "Error"
		a.Status = errorText(err)
	default:
		a.Displays[a.Tab] = res.Text
		a.Status = raw + " = " + res.Text
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, calc.ErrFactorialDomain):
		return "Factorial needs a non-negative integer"
	case errors.Is(err, calc.ErrFactorialOverflow):
		return "Factorial too large"
	case errors.Is(err, calc.ErrNonFinite):
		return "Result is not a finite number"
	}
	return "Invalid expression"
}

// ----------------------------- Programmer -----------------------------

func (a *App) handleProgrammerKey(s tcell.Screen, ev *tcell.EventKey) {
	if a.movePad(ev) {
		return
	}
	switch ev.Key() {
	case tcell.KeyEnter:
		a.progEquals()
		return
	case tcell.KeyEsc:
		a.prog.Clear()
		a.Status = ""
		return
	case tcell.KeyRune:
	default:
		return
	}

	r := ev.Rune()
	switch r {
	case ' ':
		a.pressProgrammer(a.Pads[TabProgrammer].Selected())
	case '=':
		a.progEquals()
	case 'c':
		a.prog.Clear()
		a.Status = ""
	case 'g':
		a.jumpPad(s)
	case 'b':
		a.prog.SetBase(programmer.Binary)
	case 'o':
		a.prog.SetBase(programmer.Octal)
	case 'd':
		a.prog.SetBase(programmer.Decimal)
	case 'h':
		a.prog.SetBase(programmer.Hexadecimal)
	case '&':
		a.progOperate(programmer.AND)
	case '|':
		a.progOperate(programmer.OR)
	case '^':
		a.progOperate(programmer.XOR)
	case '~':
		a.progOperate(programmer.NOT)
	case '<':
		a.progOperate(programmer.SHL)
	case '>':
		a.progOperate(programmer.SHR)
	default:
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') {
			a.progAppend(r)
		}
	}
}

func (a *App) pressProgrammer(k keypad.Key) {
	switch k.Action {
	case keypad.Insert:
		for _, r := range k.Text {
			a.progAppend(r)
		}
	case keypad.Equals:
		a.progEquals()
	case keypad.Clear:
		a.prog.Clear()
		a.Status = ""
	case keypad.SetBase:
		b, err := programmer.ParseBase(k.Text)
		if err != nil {
			a.Status = err.Error()
			return
		}
		a.prog.SetBase(b)
	case keypad.BitOp:
		op, err := programmer.ParseOp(k.Text)
		if err != nil {
			a.Status = err.Error()
			return
		}
		a.progOperate(op)
	}
}

func (a *App) progAppend(r rune) {
	if err := a.prog.Append(r); err != nil {
		a.Status = err.Error()
		return
	}
	a.Status = a.prog.Preview()
}

func (a *App) progOperate(op programmer.Op) {
	if err := a.prog.Operate(op); err != nil {
		a.Status = err.Error()
		return
	}
	a.Status = a.prog.Preview()
}

func (a *App) progEquals() {
	if _, op, ok := a.prog.Pending(); ok {
		a.progOperate(op)
	}
}

// ----------------------------- Converter -----------------------------

func (a *App) category() convert.Category {
	cats := convert.Categories()
	return cats[a.Conv.Category%len(cats)]
}

func (a *App) handleConverterKey(s tcell.Screen, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		a.Conv.Field = (a.Conv.Field + fieldCount - 1) % fieldCount
	case tcell.KeyDown:
		a.Conv.Field = (a.Conv.Field + 1) % fieldCount
	case tcell.KeyLeft:
		a.cycleConverter(-1)
	case tcell.KeyRight:
		a.cycleConverter(1)
	case tcell.KeyEnter:
		a.editConverterValue(s)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 's':
			a.Conv.From, a.Conv.To = a.Conv.To, a.Conv.From
			a.convert()
		case 'i':
			a.editInterest(s)
		}
	}
}

func (a *App) cycleConverter(dir int) {
	wrap := func(v, n int) int { return ((v+dir)%n + n) % n }
	units := len(a.category().Units())
	switch a.Conv.Field {
	case fieldCategory:
		a.Conv.Category = wrap(a.Conv.Category, len(convert.Categories()))
		a.Conv.From, a.Conv.To = 0, min(1, len(a.category().Units())-1)
	case fieldFrom:
		a.Conv.From = wrap(a.Conv.From, units)
	case fieldTo:
		a.Conv.To = wrap(a.Conv.To, units)
	default:
		return
	}
	a.convert()
}

func (a *App) editConverterValue(s tcell.Screen) {
	v, ok := a.prompt(s, "Value:", a.Conv.Value)
	if !ok {
		return
	}
	a.Conv.Value = strings.TrimSpace(v)
	a.convert()
}

// convert recomputes the converter result from its fields.
func (a *App) convert() {
	c := a.category()
	units := c.Units()
	from, to := units[a.Conv.From], units[a.Conv.To]
	v, err := strconv.ParseFloat(a.Conv.Value, 64)
	if err != nil {
		a.Conv.Result = "Enter a valid number"
		return
	}
	out, err := convert.Convert(c.Key, from, to, v)
	if err != nil {
		a.Conv.Result = err.Error()
		return
	}
	a.Conv.Result = fmt.Sprintf("%s %s = %s %s", a.Conv.Value, from, convert.Format(out), to)
}

func (a *App) editInterest(s tcell.Screen) {
	in, ok := a.prompt(s, "Principal Rate% Years:", "")
	if !ok {
		return
	}
	f := strings.Fields(in)
	if len(f) != 3 {
		a.Status = "Enter principal, rate and years"
		return
	}
	var vals [3]float64
	for i, field := range f {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			a.Status = fmt.Sprintf("%q is not a number", field)
			return
		}
		vals[i] = v
	}
	res, err := convert.Interest(vals[0], vals[1], vals[2])
	if err != nil {
		a.Status = err.Error()
		return
	}
	a.Status = fmt.Sprintf("Interest: %s  Total: %s", res.InterestText(), res.AmountText())
}

// ----------------------------- Graph -----------------------------

func (a *App) handleGraphKey(s tcell.Screen, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		eq, ok := a.prompt(s, "Equation:", a.Graph.Equation)
		if ok {
			a.SetEquation(eq)
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case '+':
			a.zoomGraph(0.5)
		case '-':
			a.zoomGraph(2)
		case '0':
			a.Graph.From, a.Graph.To = graph.DefaultFrom, graph.DefaultTo
		}
	}
}

func (a *App) SetEquation(eq string) {
	a.Graph.Equation = eq
	fn, err := graph.Parse(eq)
	if err != nil {
		a.Graph.fn = nil
		a.Status = err.Error()
		return
	}
	a.Graph.fn = fn
	a.Status = ""
	a.logger.Debug("graph equation", "equation", eq, "expr", fn.Expr)
}

func (a *App) zoomGraph(factor float64) {
	mid := (a.Graph.From + a.Graph.To) / 2
	half := (a.Graph.To - a.Graph.From) / 2 * factor
	if half < 0.05 {
		return
	}
	a.Graph.From, a.Graph.To = mid-half, mid+half
}

// GraphLines renders the current function into width x height runes.
func (a *App) GraphLines(width, height int) []string {
	if a.Graph.fn == nil || width < 2 {
		return nil
	}
	step := (a.Graph.To - a.Graph.From) / float64(width-1)
	step = max(step, 0.01)
	return graph.Plot(a.Graph.fn.Sample(a.Graph.From, a.Graph.To, step), width, height)
}

// ----------------------------- History -----------------------------

func (a *App) HistoryEntries() []history.Entry {
	if a.history == nil {
		return nil
	}
	return a.history.Filter(history.Query{
		Filter: histFilters[a.HistoryView.Filter],
		Search: a.HistoryView.Search,
	})
}

func (a *App) handleHistoryKey(s tcell.Screen, ev *tcell.EventKey) {
	entries := a.HistoryEntries()
	switch ev.Key() {
	case tcell.KeyUp:
		a.HistoryView.Cursor = max(0, a.HistoryView.Cursor-1)
	case tcell.KeyDown:
		a.HistoryView.Cursor = max(0, min(a.HistoryView.Cursor+1, len(entries)-1))
	case tcell.KeyEnter:
		a.reuseEntry(entries)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'f':
			a.HistoryView.Filter = (a.HistoryView.Filter + 1) % len(histFilters)
			a.HistoryView.Cursor = 0
		case '/':
			if q, ok := a.prompt(s, "Search:", a.HistoryView.Search); ok {
				a.HistoryView.Search = strings.TrimSpace(q)
				a.HistoryView.Cursor = 0
			}
		case 'x':
			if name, ok := a.prompt(s, "Export CSV to:", "history.csv"); ok {
				a.exportHistory(strings.TrimSpace(name))
			}
		case 'D':
			if ans, ok := a.prompt(s, "Clear all history? (y/n)", ""); ok && strings.EqualFold(ans, "y") {
				a.clearHistory()
			}
		}
	}
}

// reuseEntry copies the selected calculation back into its calculator.
func (a *App) reuseEntry(entries []history.Entry) {
	if a.HistoryView.Cursor >= len(entries) {
		return
	}
	e := entries[a.HistoryView.Cursor]
	switch e.Type {
	case calc.KindSimple:
		a.Tab = TabSimple
	case calc.KindScientific:
		a.Tab = TabScientific
	default:
		a.Status = "Programmer entries cannot be reused"
		return
	}
	a.Displays[a.Tab] = e.Expression
	a.Status = ""
}

func (a *App) exportHistory(name string) {
	if a.history == nil || a.history.Len() == 0 {
		a.Status = "History is empty, nothing to export"
		return
	}
	if err := storage.ExportCSV(a.history.Entries(), name); err != nil {
		a.logger.Error("export history", "file", name, "error", err)
		a.Status = err.Error()
		return
	}
	a.Status = "Exported to " + name
}

func (a *App) clearHistory() {
	if a.history == nil {
		return
	}
	if err := a.history.Clear(a.ctx); err != nil {
		a.logger.Error("clear history", "error", err)
		a.Status = err.Error()
		return
	}
	a.HistoryView.Cursor = 0
	a.Status = "History cleared"
}

package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantisuite/internal/calc"
	"quantisuite/internal/graph"
	"quantisuite/internal/history"
	"quantisuite/internal/storage"
)

func newTestApp(t *testing.T) (*App, *history.Log) {
	t.Helper()
	ctx := context.Background()
	log, err := history.Open(ctx, storage.NewMemoryStore())
	require.NoError(t, err)
	a := NewApp(ctx, Options{
		Calc:    calc.New(calc.WithRecorder(log)),
		History: log,
	})
	a.prompt = func(tcell.Screen, string, string) (string, bool) {
		t.Fatal("unexpected prompt")
		return "", false
	}
	return a, log
}

// answer makes the next prompts return values in order.
func answer(a *App, values ...string) {
	a.prompt = func(_ tcell.Screen, _, _ string) (string, bool) {
		if len(values) == 0 {
			return "", false
		}
		v := values[0]
		values = values[1:]
		return v, true
	}
}

func press(a *App, k tcell.Key) {
	a.HandleKeyEvent(nil, tcell.NewEventKey(k, 0, tcell.ModNone))
}

func typeText(a *App, text string) {
	for _, r := range text {
		a.HandleKeyEvent(nil, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func selectKey(t *testing.T, a *App, label string) {
	t.Helper()
	pad := a.Pads[a.Tab]
	row, col, ok := pad.Find(label)
	require.True(t, ok, label)
	pad.Row, pad.Col = row, col
}

func TestScientificTyping(t *testing.T) {
	a, log := newTestApp(t)
	require.Equal(t, TabScientific, a.Tab)

	typeText(a, "2+3*4")
	assert.Equal(t, "2+3*4", a.Displays[TabScientific])
	press(a, tcell.KeyEnter)
	assert.Equal(t, "14", a.Displays[TabScientific])
	assert.Equal(t, "2+3*4 = 14", a.Status)

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, calc.KindScientific, entries[0].Type)

	typeText(a, "c2p=")
	assert.Equal(t, "6.2831853071796", a.Displays[TabScientific])
}

func TestScientificKeypadAndDegrees(t *testing.T) {
	a, _ := newTestApp(t)

	typeText(a, "r")
	assert.Equal(t, "Angle mode: DEG", a.Status)

	selectKey(t, a, "sin")
	typeText(a, " ")
	typeText(a, "30)")
	assert.Equal(t, "sin(30)", a.Displays[TabScientific])
	typeText(a, "=")
	assert.Equal(t, "0.5", a.Displays[TabScientific])

	selectKey(t, a, "DEG")
	typeText(a, " ")
	assert.Equal(t, calc.Radians, a.calc.Mode())

	answer(a, "log(8,2)")
	typeText(a, "e")
	assert.Equal(t, "3", a.Displays[TabScientific])
}

func TestErrorsAndEditing(t *testing.T) {
	a, log := newTestApp(t)

	typeText(a, "1/0")
	press(a, tcell.KeyEnter)
	assert.Equal(t, "Error", a.Displays[TabScientific])
	assert.Equal(t, "Result is not a finite number", a.Status)
	assert.Zero(t, log.Len())

	typeText(a, "5")
	assert.Equal(t, "5", a.Displays[TabScientific], "typing replaces the error")

	typeText(a, "-3!")
	press(a, tcell.KeyEnter)
	assert.Equal(t, "-1", a.Displays[TabScientific])

	a.Displays[TabScientific] = "0"
	typeText(a, "-3!=")
	assert.Equal(t, "Factorial needs a non-negative integer", a.Status)

	typeText(a, "12")
	press(a, tcell.KeyBackspace2)
	assert.Equal(t, "1", a.Displays[TabScientific])
	press(a, tcell.KeyBackspace2)
	assert.Equal(t, "0", a.Displays[TabScientific])
	typeText(a, ".5")
	assert.Equal(t, "0.5", a.Displays[TabScientific])
	press(a, tcell.KeyEsc)
	assert.Equal(t, "0", a.Displays[TabScientific])

	a.Displays[TabScientific] = " "
	press(a, tcell.KeyEnter)
	assert.Equal(t, "Nothing to calculate", a.Status)
}

func TestSimpleTab(t *testing.T) {
	a, log := newTestApp(t)
	press(a, tcell.KeyF1)
	require.Equal(t, TabSimple, a.Tab)

	typeText(a, "12/4+1p^")
	assert.Equal(t, "12/4+1", a.Displays[TabSimple], "scientific keys are ignored")
	typeText(a, "=")
	assert.Equal(t, "4", a.Displays[TabSimple])
	assert.Equal(t, "0", a.Displays[TabScientific])

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, calc.KindSimple, entries[0].Type)
}

func TestTabSwitching(t *testing.T) {
	a, _ := newTestApp(t)

	press(a, tcell.KeyTab)
	assert.Equal(t, TabProgrammer, a.Tab)
	press(a, tcell.KeyBacktab)
	press(a, tcell.KeyBacktab)
	assert.Equal(t, TabSimple, a.Tab)
	press(a, tcell.KeyBacktab)
	assert.Equal(t, TabHistory, a.Tab)
	press(a, tcell.KeyF5)
	assert.Equal(t, TabGraph, a.Tab)
	assert.Equal(t, "Graph", a.Tab.String())
}

func TestProgrammerTab(t *testing.T) {
	a, log := newTestApp(t)
	press(a, tcell.KeyF3)

	typeText(a, "12&")
	assert.Equal(t, "12 AND", a.Status)
	typeText(a, "10")
	assert.Equal(t, "12 AND", a.Status, "preview stays while the second operand is typed")
	press(a, tcell.KeyEnter)
	assert.Equal(t, int32(8), a.prog.Value())
	assert.Equal(t, "1000", a.prog.Results().Bin)

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "12 AND 10", entries[0].Expression)
	assert.Equal(t, calc.KindProgrammer, entries[0].Type)

	selectKey(t, a, "NOT")
	typeText(a, " ")
	assert.Equal(t, int32(-9), a.prog.Value())

	typeText(a, "c")
	selectKey(t, a, "BIN")
	typeText(a, " 2")
	assert.Contains(t, a.Status, "invalid digit")
	typeText(a, "101h")
	assert.Equal(t, "5", a.prog.Display())
	typeText(a, "F")
	assert.Equal(t, "5F", a.prog.Display())
	assert.Equal(t, int32(95), a.prog.Value())
}

func TestConverterTab(t *testing.T) {
	a, _ := newTestApp(t)
	press(a, tcell.KeyF4)
	assert.Equal(t, "1 m = 0.001 km", a.Conv.Result)

	answer(a, "2500")
	press(a, tcell.KeyEnter)
	assert.Equal(t, "2500 m = 2.5 km", a.Conv.Result)

	typeText(a, "s")
	assert.Equal(t, "2500 km = 2500000 m", a.Conv.Result)

	press(a, tcell.KeyRight)
	assert.Equal(t, "Area", a.category().Name)
	assert.Contains(t, a.Conv.Result, "km²")
	press(a, tcell.KeyLeft)
	press(a, tcell.KeyLeft)
	assert.Equal(t, "Time", a.category().Name)

	press(a, tcell.KeyDown)
	press(a, tcell.KeyRight)
	assert.Equal(t, 1, a.Conv.From)

	answer(a, "abc")
	press(a, tcell.KeyEnter)
	assert.Equal(t, "Enter a valid number", a.Conv.Result)

	answer(a, "1000 5 3")
	typeText(a, "i")
	assert.Equal(t, "Interest: 150.00  Total: 1150.00", a.Status)

	answer(a, "1000 5")
	typeText(a, "i")
	assert.Equal(t, "Enter principal, rate and years", a.Status)
}

func TestGraphTab(t *testing.T) {
	a, _ := newTestApp(t)
	press(a, tcell.KeyF5)
	assert.Nil(t, a.GraphLines(21, 11))

	answer(a, "x^2")
	press(a, tcell.KeyEnter)
	assert.Equal(t, graph.ErrNotAnEquation.Error(), a.Status)

	answer(a, "y = x^2")
	press(a, tcell.KeyEnter)
	assert.Empty(t, a.Status)
	lines := a.GraphLines(21, 11)
	require.Len(t, lines, 11)
	assert.Contains(t, strings.Join(lines, "\n"), "•")

	typeText(a, "+")
	assert.Equal(t, -5.0, a.Graph.From)
	assert.Equal(t, 5.0, a.Graph.To)
	typeText(a, "-")
	typeText(a, "-")
	assert.Equal(t, -20.0, a.Graph.From)
	typeText(a, "0")
	assert.Equal(t, graph.DefaultTo, a.Graph.To)
}

func TestHistoryTab(t *testing.T) {
	a, log := newTestApp(t)
	typeText(a, "2+3=")
	press(a, tcell.KeyF1)
	typeText(a, "6/2=")

	press(a, tcell.KeyF6)
	entries := a.HistoryEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "6/2", entries[0].Expression)

	press(a, tcell.KeyDown)
	press(a, tcell.KeyDown)
	assert.Equal(t, 1, a.HistoryView.Cursor, "cursor stops at the last entry")

	typeText(a, "f")
	assert.Len(t, a.HistoryEntries(), 2, "today")
	typeText(a, "fff")
	assert.Equal(t, "scientific", histFilters[a.HistoryView.Filter])
	require.Len(t, a.HistoryEntries(), 1)

	press(a, tcell.KeyEnter)
	assert.Equal(t, TabScientific, a.Tab)
	assert.Equal(t, "2+3", a.Displays[TabScientific])

	press(a, tcell.KeyF6)
	answer(a, "6/")
	typeText(a, "/")
	assert.Empty(t, a.HistoryEntries(), "search applies on top of the filter")

	file := t.TempDir() + "/h.csv"
	answer(a, file)
	typeText(a, "x")
	assert.Equal(t, "Exported to "+file, a.Status)
	imported, err := storage.ImportCSV(file)
	require.NoError(t, err)
	assert.Len(t, imported, 2)

	answer(a, "n")
	typeText(a, "D")
	assert.Equal(t, 2, log.Len())
	answer(a, "y")
	typeText(a, "D")
	assert.Zero(t, log.Len())
	assert.Equal(t, "History cleared", a.Status)

	answer(a, file)
	typeText(a, "x")
	assert.Equal(t, "History is empty, nothing to export", a.Status)
}

func TestHelpAndQuit(t *testing.T) {
	a, _ := newTestApp(t)

	typeText(a, "?")
	assert.True(t, a.HelpVisible)
	typeText(a, "5q")
	assert.Equal(t, "0", a.Displays[TabScientific], "help swallows keys")
	assert.False(t, a.Quit)
	press(a, tcell.KeyEsc)
	assert.False(t, a.HelpVisible)

	typeText(a, "q")
	assert.True(t, a.Quit)
}

func screenText(t *testing.T, s tcell.SimulationScreen) string {
	t.Helper()
	cells, w, h := s.GetContents()
	var b strings.Builder
	for y := range h {
		for x := range w {
			c := cells[y*w+x]
			if len(c.Runes) > 0 {
				b.WriteRune(c.Runes[0])
			} else {
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	t.Cleanup(s.Fini)
	s.SetSize(90, 32)
	return s
}

func TestDraw(t *testing.T) {
	a, _ := newTestApp(t)
	s := newSimScreen(t)

	typeText(a, "2+2")
	a.Draw(s)
	text := screenText(t, s)
	assert.Contains(t, text, "F2 Scientific")
	assert.Contains(t, text, "2+2")
	assert.Contains(t, text, "sin⁻¹")
	assert.Contains(t, text, "Scientific  RAD  ? help")

	for tab := TabSimple; tab < tabCount; tab++ {
		a.SetTab(tab)
		a.Draw(s)
	}
	a.SetTab(TabConverter)
	a.Draw(s)
	assert.Contains(t, screenText(t, s), "1 m = 0.001 km")

	a.HelpVisible = true
	a.Draw(s)
	assert.Contains(t, screenText(t, s), "toggle RAD/DEG")
}

func TestRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := tcell.NewSimulationScreen("UTF-8")

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{Screen: s, NoSplash: true})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(screenText(t, s), "Scientific")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
	assert.Equal(t, []string{"abcde", "fgh", ""}, wrapText("abcdefgh\n", 5))
}

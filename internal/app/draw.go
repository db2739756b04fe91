package app

import (
	"fmt"
	"strings"
	"time"

	"quantisuite/internal/convert"
	"quantisuite/internal/keypad"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const keyWidth = 7

var (
	styleTab      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleTabOn    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleDisplay  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleKey      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	styleKeyOn    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGray)
	styleFaint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleResult   = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true)
	styleStatus   = tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)
	stylePlot     = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleSelected = tcell.StyleDefault.Reverse(true)
)

const helpText = `F1-F6 or Tab: switch calculator
Arrows: move on the keypad, Space: press the key
Enter or =: calculate, Backspace: delete, c or Esc: clear
p: insert PI, r: toggle RAD/DEG, e: edit the expression, g: jump to a key
Programmer: b o d h set the base, & | ^ ~ < > operate
Converter: Up/Down pick a field, Left/Right change it, Enter: value, s: swap, i: interest
Graph: Enter: equation, + and -: zoom, 0: reset
History: f: filter, /: search, Enter: reuse, x: export CSV, D: clear
q or Ctrl+C: quit, ?: close this help`

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()
	if w < 20 || h < 6 {
		s.Show()
		return
	}

	a.drawTabs(s, w)
	body := h - 2
	switch a.Tab {
	case TabSimple, TabScientific:
		a.drawCalculator(s, w, body)
	case TabProgrammer:
		a.drawProgrammer(s, w, body)
	case TabConverter:
		a.drawConverter(s, w)
	case TabGraph:
		a.drawGraph(s, w, body)
	case TabHistory:
		a.drawHistory(s, w, body)
	}

	status := a.Status
	if status == "" {
		status = fmt.Sprintf(" %s  %s  ? help", a.Tab, a.calc.Mode())
	}
	printText(s, 0, h-1, status, styleStatus, w)

	if a.HelpVisible {
		a.drawHelpPopup(s, helpText)
	}
	s.Show()
}

func (a *App) drawTabs(s tcell.Screen, w int) {
	x := 0
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf(" F%d %s ", t+1, t)
		style := styleTab
		if t == a.Tab {
			style = styleTabOn
		}
		lw := runewidth.StringWidth(label)
		if x+lw > w {
			break
		}
		printText(s, x, 0, label, style, lw)
		x += lw + 1
	}
}

// drawDisplay right-aligns text in a boxed line at row y.
func drawDisplay(s tcell.Screen, y, w int, text string) {
	inner := w - 4
	tw := runewidth.StringWidth(text)
	if tw > inner {
		text = runewidth.TruncateLeft(text, tw-inner+1, "…")
		tw = runewidth.StringWidth(text)
	}
	drawFrame(s, 0, y, w, 3, styleFaint)
	printText(s, 2+inner-tw, y+1, text, styleDisplay, tw)
}

func drawPad(s tcell.Screen, x, y int, pad *keypad.Pad) {
	for r, keys := range pad.Rows {
		for c, k := range keys {
			style := styleKey
			if r == pad.Row && c == pad.Col {
				style = styleKeyOn
			}
			kx := x + c*(keyWidth+1)
			lw := runewidth.StringWidth(k.Label)
			indent := max(0, (keyWidth-lw)/2)
			printText(s, kx, y+r*2, strings.Repeat(" ", indent)+k.Label, style, keyWidth)
		}
	}
}

func (a *App) drawCalculator(s tcell.Screen, w, h int) {
	drawDisplay(s, 2, w, a.display())
	mode := "simple"
	if a.Tab == TabScientific {
		mode = a.calc.Mode().String()
	}
	pad := a.Pads[a.Tab]
	printText(s, 1, 5, fmt.Sprintf("%s  key %s", mode, pad.Name()), styleFaint, w-2)
	if 7+len(pad.Rows)*2 <= h {
		drawPad(s, 1, 7, pad)
	}
}

func (a *App) drawProgrammer(s tcell.Screen, w, h int) {
	drawDisplay(s, 2, w, a.prog.Display())
	res := a.prog.Results()
	lines := []struct{ label, value string }{
		{"BIN", res.Bin},
		{"OCT", res.Oct},
		{"DEC", res.Dec},
		{"HEX", res.Hex},
	}
	for i, l := range lines {
		style := tcell.StyleDefault
		if strings.EqualFold(l.label, a.prog.Base().String()[:3]) {
			style = styleResult
		}
		printText(s, 1, 5+i, l.label, styleFaint, 4)
		printText(s, 6, 5+i, l.value, style, w-7)
	}
	printText(s, 1, 9, a.prog.Preview(), styleFaint, w-2)
	pad := a.Pads[TabProgrammer]
	if 11+len(pad.Rows)*2 <= h {
		drawPad(s, 1, 11, pad)
	}
}

func (a *App) drawConverter(s tcell.Screen, w int) {
	c := a.category()
	units := c.Units()
	fields := []struct{ label, value string }{
		{"Category", c.Name},
		{"From", units[a.Conv.From]},
		{"To", units[a.Conv.To]},
		{"Value", a.Conv.Value},
	}
	for i, f := range fields {
		style := tcell.StyleDefault
		if i == a.Conv.Field {
			style = styleSelected
		}
		printText(s, 1, 2+i*2, f.label, styleFaint, 10)
		printText(s, 12, 2+i*2, "◀ "+f.value+" ▶", style, min(w-13, 40))
	}
	printText(s, 1, 11, a.Conv.Result, styleResult, w-2)
	printText(s, 1, 13, fmt.Sprintf("%d categories, base unit %s", len(convert.Categories()), c.Base), styleFaint, w-2)
}

func (a *App) drawGraph(s tcell.Screen, w, h int) {
	eq := a.Graph.Equation
	if eq == "" {
		eq = "Press Enter to type an equation such as y = x^2 - 4"
	}
	printText(s, 1, 2, eq, tcell.StyleDefault, w-2)
	printText(s, 1, 3, fmt.Sprintf("x from %g to %g", a.Graph.From, a.Graph.To), styleFaint, w-2)
	for i, line := range a.GraphLines(w-2, h-5) {
		printText(s, 1, 5+i, line, stylePlot, w-2)
	}
}

func (a *App) drawHistory(s tcell.Screen, w, h int) {
	entries := a.HistoryEntries()
	header := fmt.Sprintf("filter: %s", histFilters[a.HistoryView.Filter])
	if a.HistoryView.Search != "" {
		header += fmt.Sprintf("  search: %q", a.HistoryView.Search)
	}
	if a.history != nil {
		st := a.history.Stats()
		header += fmt.Sprintf("  (%d total, %d today)", st.Total, st.Today)
	}
	printText(s, 1, 2, header, styleFaint, w-2)

	if len(entries) == 0 {
		printText(s, 1, 4, "No history yet", styleFaint, w-2)
		return
	}
	rows := max(1, h-4)
	first := 0
	if a.HistoryView.Cursor >= rows {
		first = a.HistoryView.Cursor - rows + 1
	}
	for i := first; i < len(entries) && i-first < rows; i++ {
		e := entries[i]
		line := fmt.Sprintf("%s  %-10s  %s = %s",
			e.Timestamp.Local().Format(time.DateTime), e.Type, e.Expression, e.Result)
		style := tcell.StyleDefault
		if i == a.HistoryView.Cursor {
			style = styleSelected
		}
		printText(s, 1, 4+i-first, line, style, w-2)
	}
}

// ----------------------------- Helpers -----------------------------

// printText writes str at x,y padded or cut to width columns.
func printText(s tcell.Screen, x, y int, str string, style tcell.Style, width int) {
	col := 0
	for _, ch := range str {
		cw := runewidth.RuneWidth(ch)
		if cw == 0 {
			continue
		}
		if col+cw > width {
			break
		}
		s.SetContent(x+col, y, ch, nil, style)
		col += cw
	}
	for ; col < width; col++ {
		s.SetContent(x+col, y, ' ', nil, style)
	}
}

func drawFrame(s tcell.Screen, left, top, w, h int, style tcell.Style) {
	for x := left + 1; x < left+w-1; x++ {
		s.SetContent(x, top, '─', nil, style)
		s.SetContent(x, top+h-1, '─', nil, style)
	}
	for y := top + 1; y < top+h-1; y++ {
		s.SetContent(left, y, '│', nil, style)
		s.SetContent(left+w-1, y, '│', nil, style)
	}
	s.SetContent(left, top, '┌', nil, style)
	s.SetContent(left+w-1, top, '┐', nil, style)
	s.SetContent(left, top+h-1, '└', nil, style)
	s.SetContent(left+w-1, top+h-1, '┘', nil, style)
}

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	innerW := min(w-6-padding*2, 72)
	lines := wrapText(help, innerW)
	if maxLines := h - 6 - padding*2; len(lines) > maxLines {
		lines = lines[:max(0, maxLines)]
	}
	innerH := max(3, len(lines))

	pw := innerW + padding*2
	ph := innerH + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	bg := tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorWhite)
	for yy := 0; yy < ph; yy++ {
		printText(s, left, top+yy, "", bg, pw)
	}
	drawFrame(s, left, top, pw, ph, bg)
	for i, ln := range lines {
		printText(s, left+padding, top+padding+i, ln, bg, innerW)
	}
}

// wrapText breaks s into lines of at most width columns, keeping newlines.
func wrapText(s string, width int) []string {
	if width <= 2 {
		return []string{s}
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		cur := ""
		for _, word := range strings.Fields(para) {
			switch {
			case cur == "":
				cur = word
			case runewidth.StringWidth(cur)+1+runewidth.StringWidth(word) <= width:
				cur += " " + word
			default:
				out = append(out, cur)
				cur = word
			}
			for runewidth.StringWidth(cur) > width {
				head := runewidth.Truncate(cur, width, "")
				out = append(out, head)
				cur = strings.TrimPrefix(cur, head)
			}
		}
		out = append(out, cur)
	}
	return out
}

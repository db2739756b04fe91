package keypad

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is what pressing a key does.
type Action int

const (
	Insert Action = iota
	Equals
	Clear
	Backspace
	ToggleAngle
	SetBase // Text holds the base name
	BitOp   // Text holds the operation
)

// Key is one button. For Insert, Text is appended to the display.
type Key struct {
	Label  string
	Text   string
	Action Action
}

func ins(label string) Key           { return Key{Label: label, Text: label} }
func insAs(label, text string) Key   { return Key{Label: label, Text: text} }
func act(label string, a Action) Key { return Key{Label: label, Action: a} }

// Pad is a grid of keys with a cursor. Rows may have different lengths.
type Pad struct {
	Rows [][]Key
	Row  int
	Col  int
}

func New(rows [][]Key) *Pad {
	return &Pad{Rows: rows}
}

// Move shifts the cursor, clamping to the grid. Moving onto a shorter row
// pulls the column back to its last key.
func (p *Pad) Move(dRow, dCol int) {
	if len(p.Rows) == 0 {
		return
	}
	p.Row = clamp(p.Row+dRow, 0, len(p.Rows)-1)
	p.Col = clamp(p.Col+dCol, 0, len(p.Rows[p.Row])-1)
}

// Selected returns the key under the cursor.
func (p *Pad) Selected() Key {
	if len(p.Rows) == 0 || len(p.Rows[p.Row]) == 0 {
		return Key{}
	}
	return p.Rows[p.Row][p.Col]
}

// Name is the cursor position as a key reference such as "B3".
func (p *Pad) Name() string {
	return Name(p.Col, p.Row)
}

// Jump moves the cursor to a reference like "B3".
func (p *Pad) Jump(ref string) bool {
	row, col, ok := ParseRef(ref)
	if !ok || row >= len(p.Rows) || col >= len(p.Rows[row]) {
		return false
	}
	p.Row, p.Col = row, col
	return true
}

// Find returns the position of the first key with label.
func (p *Pad) Find(label string) (row, col int, ok bool) {
	for r, keys := range p.Rows {
		for c, k := range keys {
			if k.Label == label {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// Width is the length of the longest row.
func (p *Pad) Width() int {
	w := 0
	for _, keys := range p.Rows {
		w = max(w, len(keys))
	}
	return w
}

// ColToName: 0 -> A, 25 -> Z, 26 -> AA and so on
func ColToName(col int) string {
	if col < 0 {
		return "?"
	}
	name := ""
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name
}

// Name builds a reference from 0-based col and row: 0,0 -> "A1".
func Name(col, row int) string {
	return fmt.Sprintf("%s%d", ColToName(col), row+1)
}

// ParseRef parses names like A1 or aa10, returning 0-based row and col.
func ParseRef(name string) (row, col int, ok bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	i := 0
	for i < len(name) && name[i] >= 'A' && name[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(name) {
		return 0, 0, false
	}
	for j := 0; j < i; j++ {
		col = col*26 + int(name[j]-'A') + 1
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil || n < 1 {
		return 0, 0, false
	}
	return n - 1, col - 1, true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

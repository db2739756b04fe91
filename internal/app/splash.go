package app

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Splash reveals the title letter by letter and waits for a key.
func Splash(s tcell.Screen) {
	title := []rune("QUANTISUITE")
	colors := []tcell.Color{tcell.ColorWhite, tcell.ColorAqua, tcell.ColorDodgerBlue, tcell.ColorMediumPurple}
	hint := "Press any key to start  ·  ? for help"

	width, height := s.Size()
	for reveal := 1; reveal <= len(title); reveal++ {
		s.Clear()
		startX := (width - len(title)) / 2
		y := height / 2
		for i := 0; i < reveal; i++ {
			style := tcell.StyleDefault.Foreground(colors[i*len(colors)/len(title)]).Bold(true)
			s.SetContent(startX+i, y, title[i], nil, style)
		}
		hintW := runewidth.StringWidth(hint)
		printText(s, (width-hintW)/2, y+2, hint, tcell.StyleDefault.Foreground(tcell.ColorGray), hintW)
		s.Show()
		time.Sleep(60 * time.Millisecond)
	}

	for {
		switch s.PollEvent().(type) {
		case *tcell.EventKey, *tcell.EventInterrupt, nil:
			return
		case *tcell.EventResize:
			s.Sync()
		}
	}
}

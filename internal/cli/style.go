package cli

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// styler colours output when w is a terminal and leaves it plain otherwise.
type styler struct {
	out *termenv.Output
}

func newStyler(w io.Writer) styler {
	return styler{out: termenv.NewOutput(w)}
}

func (s styler) result(text string) termenv.Style {
	return s.out.String(text).Foreground(s.out.Color("#4facfe")).Bold()
}

func (s styler) faint(text string) termenv.Style {
	return s.out.String(text).Faint()
}

func (s styler) label(text string) termenv.Style {
	return s.out.String(text).Foreground(s.out.Color("#a78bfa"))
}

// printBanner writes the ASCII logo shown by serve.
func printBanner(w io.Writer) {
	s := newStyler(w)
	lines := []struct {
		text  string
		color string
	}{
		{"   ____                    __  _ _____       _ __", "#818cf8"},
		{"  / __ \\__  ______ _____  / /_(_) ___/__  __(_) /____", "#a78bfa"},
		{" / / / / / / / __ `/ __ \\/ __/ /\\__ \\/ / / / / __/ _ \\", "#c084fc"},
		{"/ /_/ / /_/ / /_/ / / / / /_/ /___/ / /_/ / / /_/  __/", "#e879f9"},
		{"\\___\\_\\__,_/\\__,_/_/ /_/\\__/_//____/\\__,_/_/\\__/\\___/", "#f472b6"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, s.out.String(l.text).Foreground(s.out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

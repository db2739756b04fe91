package app

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Run draws the app on the terminal until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	s := opts.Screen
	if s == nil {
		var err error
		if s, err = tcell.NewScreen(); err != nil {
			return fmt.Errorf("cannot create screen: %w", err)
		}
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("cannot init screen: %w", err)
	}
	defer s.Fini()
	s.Clear()

	stop := context.AfterFunc(ctx, func() {
		s.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	a := NewApp(ctx, opts)
	if !opts.NoSplash {
		Splash(s)
	}

	for !a.Quit && ctx.Err() == nil {
		a.Draw(s)
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			a.HandleKeyEvent(s, ev)
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		}
	}
	a.logger.Debug("tui closed")
	return nil
}

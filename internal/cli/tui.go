package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quantisuite/internal/app"
	"quantisuite/internal/calc"
	"quantisuite/internal/logging"
)

func newTUICmd(e *env) *cobra.Command {
	var noSplash bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal calculator (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the screen owns the terminal, so logs go to a file or nowhere
			logger := logging.NewNop()
			if path := e.cfg.LogFile; path != "" {
				f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logger = logging.NewWriter(f, logLevel(e))
			}
			e.logger = logger

			log, closeFn, err := e.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			mode, err := calc.ParseAngleMode(e.cfg.AngleMode)
			if err != nil {
				return err
			}
			c := calc.New(
				calc.WithAngleMode(mode),
				calc.WithRecorder(log),
				calc.WithLogger(logger),
			)
			return app.Run(cmd.Context(), app.Options{
				Calc:     c,
				History:  log,
				Logger:   logger,
				NoSplash: noSplash,
			})
		},
	}
	cmd.Flags().BoolVar(&noSplash, "no-splash", false, "skip the start screen")
	return cmd
}

func logLevel(e *env) slog.Level {
	if e.logLevel != "" {
		return logging.ParseLevel(e.logLevel)
	}
	return logging.ParseLevel(e.cfg.LogLevel)
}

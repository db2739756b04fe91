package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quantisuite/internal/metrics"
	"quantisuite/internal/server"
)

func newServeCmd(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators and history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log, closeFn, err := e.openHistory(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			printBanner(cmd.ErrOrStderr())
			h := server.NewHandler(&server.Server{
				History: log,
				Metrics: metrics.New(),
				Logger:  e.logger,
			})
			return server.Run(ctx, addr, h, e.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

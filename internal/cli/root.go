package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quantisuite/internal/config"
	"quantisuite/internal/logging"
)

// env is the state every command shares once flags are parsed.
type env struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree. Running it without a subcommand starts
// the terminal UI.
func NewRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "quantisuite",
		Short: "A calculator suite for the terminal",
		Long: `quantisuite bundles simple, scientific, programmer and graphing calculators,
unit and currency converters, a weather lookup and a shared calculation history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "log level: debug, info, warn, error")

	tui := newTUICmd(e)
	rootCmd.RunE = tui.RunE

	rootCmd.AddCommand(
		tui,
		newEvalCmd(e),
		newRewriteCmd(e),
		newConvertCmd(e),
		newInterestCmd(e),
		newCurrencyCmd(e),
		newWeatherCmd(e),
		newBitsCmd(e),
		newPlotCmd(e),
		newHistoryCmd(e),
		newServeCmd(e),
	)
	return rootCmd
}

func (e *env) load(cmd *cobra.Command) error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg

	level := cfg.LogLevel
	if e.logLevel != "" {
		level = e.logLevel
	}
	e.logger = logging.NewWriter(cmd.ErrOrStderr(), logging.ParseLevel(level))
	return nil
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quantisuite/internal/calc"
)

func (e *env) angleMode(deg, rad bool) (calc.AngleMode, error) {
	switch {
	case deg && rad:
		return 0, errors.New("--deg and --rad are mutually exclusive")
	case deg:
		return calc.Degrees, nil
	case rad:
		return calc.Radians, nil
	}
	return calc.ParseAngleMode(e.cfg.AngleMode)
}

func newEvalCmd(e *env) *cobra.Command {
	var (
		deg, rad    bool
		simple      bool
		showRewrite bool
		noHistory   bool
	)
	cmd := &cobra.Command{
		Use:   "eval EXPRESSION...",
		Short: "Evaluate an expression",
		Long: `Evaluate a calculator expression. The arguments are joined with spaces.

Scientific notation understood: PI, E, RND, ×, ÷, |x|, x^y, pow(a,b), e^x,
exp, sqrt, cbrt, √, ∛, sin, cos, tan and their inverses (asin, arcsin, sin⁻¹),
log(x), log(x,base), ln, n!, n% and implicit multiplication such as 2PI or 2(3+4).`,
		Example: `  quantisuite eval "2sin(30)" --deg
  quantisuite eval 'log(8,2) + 5!'
  quantisuite eval --simple "12/4+1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := e.angleMode(deg, rad)
			if err != nil {
				return err
			}
			opts := []calc.CalculatorOption{calc.WithAngleMode(mode), calc.WithLogger(e.logger)}
			if !noHistory {
				log, closeFn, err := e.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()
				opts = append(opts, calc.WithRecorder(log))
			}

			c := calc.New(opts...)
			expr := strings.Join(args, " ")
			run := c.Scientific
			if simple {
				run = c.Simple
			}
			res, err := run(expr)
			if err != nil {
				return err
			}

			w := out(cmd)
			s := newStyler(w)
			if showRewrite {
				fmt.Fprintf(w, "%s %s\n", s.faint(mode.String()), s.faint(res.Rewritten))
			}
			fmt.Fprintln(w, s.result(res.Text))
			return nil
		},
	}
	cmd.Flags().BoolVar(&deg, "deg", false, "trig functions use degrees")
	cmd.Flags().BoolVar(&rad, "rad", false, "trig functions use radians")
	cmd.Flags().BoolVar(&simple, "simple", false, "use the simple calculator (digits and + - * / only)")
	cmd.Flags().BoolVar(&showRewrite, "show-rewrite", false, "print the rewritten expression first")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the calculation")
	return cmd
}

func newRewriteCmd(e *env) *cobra.Command {
	var (
		deg, rad bool
		stages   bool
	)
	cmd := &cobra.Command{
		Use:   "rewrite EXPRESSION",
		Short: "Show how an expression is rewritten before evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := e.angleMode(deg, rad)
			if err != nil {
				return err
			}
			w := out(cmd)
			if !stages {
				fmt.Fprintln(w, calc.Rewrite(args[0], mode))
				return nil
			}

			s := newStyler(w)
			cur := args[0]
			for _, st := range calc.Stages(mode) {
				next := st.Apply(cur)
				if next != cur {
					fmt.Fprintf(w, "%-24s %s\n", s.label(st.Name), next)
				}
				cur = next
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&deg, "deg", false, "apply degree conversion")
	cmd.Flags().BoolVar(&rad, "rad", false, "skip degree conversion")
	cmd.Flags().BoolVar(&stages, "stages", false, "print the text after every stage that changed it")
	return cmd
}

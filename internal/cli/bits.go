package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantisuite/internal/calc"
	"quantisuite/internal/programmer"
)

func newBitsCmd(e *env) *cobra.Command {
	var (
		baseName  string
		noHistory bool
	)
	cmd := &cobra.Command{
		Use:   "bits A OP [B]",
		Short: "Apply a 32-bit bitwise operation",
		Long: `Apply AND, OR, XOR, NOT, << or >> to 32-bit integers and print the
result in every base. Operands are read in the base given by --base.`,
		Example: `  quantisuite bits 12 AND 10
  quantisuite bits --base hex FF '<<' 4
  quantisuite bits 5 NOT`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := programmer.ParseBase(baseName)
			if err != nil {
				return err
			}
			op, err := programmer.ParseOp(args[1])
			if err != nil {
				return err
			}
			if op == programmer.NOT && len(args) != 2 {
				return fmt.Errorf("NOT takes one operand")
			}
			if op != programmer.NOT && len(args) != 3 {
				return fmt.Errorf("%s takes two operands", op)
			}

			var rec calc.Recorder
			if !noHistory {
				log, closeFn, err := e.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()
				rec = log
			}
			pc := programmer.New(rec)
			pc.SetBase(base)

			if err := enter(pc, args[0]); err != nil {
				return err
			}
			if err := pc.Operate(op); err != nil {
				return err
			}
			if op != programmer.NOT {
				if err := enter(pc, args[2]); err != nil {
					return err
				}
				if err := pc.Operate(op); err != nil {
					return err
				}
			}

			w := out(cmd)
			s := newStyler(w)
			r := pc.Results()
			fmt.Fprintf(w, "%s %s\n", s.label("BIN"), r.Bin)
			fmt.Fprintf(w, "%s %s\n", s.label("OCT"), r.Oct)
			fmt.Fprintf(w, "%s %s\n", s.label("DEC"), s.result(r.Dec))
			fmt.Fprintf(w, "%s %s\n", s.label("HEX"), r.Hex)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseName, "base", "dec", "operand base: bin, oct, dec or hex")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the calculation")
	return cmd
}

// enter types s into the calculator digit by digit.
func enter(pc *programmer.Calculator, s string) error {
	for _, r := range s {
		if err := pc.Append(r); err != nil {
			return fmt.Errorf("operand %q: %w", s, err)
		}
	}
	return nil
}

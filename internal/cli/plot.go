package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quantisuite/internal/calc"
	"quantisuite/internal/graph"
)

func newPlotCmd(e *env) *cobra.Command {
	var (
		width, height int
		from, to      float64
		step          float64
		table         bool
	)
	cmd := &cobra.Command{
		Use:   "plot EQUATION",
		Short: "Plot y = f(x) as text",
		Example: `  quantisuite plot "y = x^2 - 4"
  quantisuite plot "f(x) = sin(x)" --from -6 --to 6
  quantisuite plot "y = 2x+1" --table --step 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := graph.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			points := f.Sample(from, to, step)
			e.logger.Debug("sampled", "equation", f.Equation, "expr", f.Expr, "points", len(points))

			w := out(cmd)
			if table {
				for _, p := range points {
					if p.Valid {
						fmt.Fprintf(w, "%8.2f  %s\n", p.X, calc.Format(p.Y))
					} else {
						fmt.Fprintf(w, "%8.2f  -\n", p.X)
					}
				}
				return nil
			}
			for _, line := range graph.Plot(points, width, height) {
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 61, "plot width in columns")
	cmd.Flags().IntVar(&height, "height", 21, "plot height in rows")
	cmd.Flags().Float64Var(&from, "from", graph.DefaultFrom, "first x value")
	cmd.Flags().Float64Var(&to, "to", graph.DefaultTo, "last x value")
	cmd.Flags().Float64Var(&step, "step", graph.DefaultStep, "x increment")
	cmd.Flags().BoolVar(&table, "table", false, "print x, y pairs instead of a plot")
	return cmd
}

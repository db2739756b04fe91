package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quantisuite/internal/convert"
	"quantisuite/internal/currency"
	"quantisuite/internal/weather"
)

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return v, nil
}

func newConvertCmd(e *env) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "convert CATEGORY FROM TO VALUE",
		Short: "Convert a value between units",
		Example: `  quantisuite convert length mi km 3
  quantisuite convert temperature Fahrenheit Celsius 98.6
  quantisuite convert --list`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.MaximumNArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(4)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := out(cmd)
			s := newStyler(w)
			if list {
				for _, c := range convert.Categories() {
					if len(args) == 1 && args[0] != c.Key {
						continue
					}
					fmt.Fprintf(w, "%-12s %s\n", s.label(c.Key), strings.Join(c.Units(), ", "))
				}
				return nil
			}

			v, err := parseFloatArg("value", args[3])
			if err != nil {
				return err
			}
			res, err := convert.Convert(args[0], args[1], args[2], v)
			if err != nil {
				return err
			}
			e.logger.Debug("converted", "category", args[0], "from", args[1], "to", args[2], "value", v)
			fmt.Fprintf(w, "%s %s\n", s.result(convert.Format(res)), args[2])
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list categories and their units")
	return cmd
}

func newInterestCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "interest PRINCIPAL RATE YEARS",
		Short:   "Compute simple interest",
		Example: "  quantisuite interest 1000 5 3",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var vals [3]float64
			for i, name := range []string{"principal", "rate", "years"} {
				v, err := parseFloatArg(name, args[i])
				if err != nil {
					return err
				}
				vals[i] = v
			}
			res, err := convert.Interest(vals[0], vals[1], vals[2])
			if err != nil {
				return err
			}
			w := out(cmd)
			s := newStyler(w)
			fmt.Fprintf(w, "%s %s\n", s.label("Total interest:"), s.result(res.InterestText()))
			fmt.Fprintf(w, "%s %s\n", s.label("Total amount:  "), s.result(res.AmountText()))
			return nil
		},
	}
}

func newCurrencyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "currency AMOUNT FROM TO",
		Short:   "Convert between currencies at the latest rates",
		Example: "  quantisuite currency 100 usd eur",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return currency.ErrInvalidAmount
			}
			cc := e.cfg.Currency
			client := currency.NewClient(cc.BaseURL, cc.APIKey, cc.Timeout)
			table, err := client.Rates(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			text, err := table.Format(amount, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), newStyler(out(cmd)).result(text))
			return nil
		},
	}
}

func newWeatherCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "weather CITY [COUNTRY]",
		Short:   "Show the current weather for a city",
		Example: `  quantisuite weather Lagos NG`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			country := ""
			if len(args) == 2 {
				country = args[1]
			}
			wc := e.cfg.Weather
			client := weather.NewClient(wc.GeocodingURL, wc.ForecastURL, wc.Timeout)
			report, err := client.Current(cmd.Context(), args[0], country)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), report.String())
			return nil
		},
	}
}

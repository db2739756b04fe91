package convert

import (
	"fmt"
	"math"
	"strconv"

	"quantisuite/internal/calc"
)

// Category is a family of interchangeable units.
type Category struct {
	Key   string
	Name  string
	Base  string
	units []unit
	// affine categories convert through a pivot instead of linear factors
	affine bool
}

type unit struct {
	name   string
	factor float64
}

// Units returns the unit names in display order.
func (c Category) Units() []string {
	out := make([]string, len(c.units))
	for i, u := range c.units {
		out[i] = u.name
	}
	return out
}

func (c Category) factor(name string) (float64, bool) {
	for _, u := range c.units {
		if u.name == name {
			return u.factor, true
		}
	}
	return 0, false
}

const (
	Celsius    = "Celsius"
	Fahrenheit = "Fahrenheit"
	Kelvin     = "Kelvin"
)

var categories = []Category{
	{Key: "length", Name: "Length", Base: "m", units: []unit{
		{"m", 1}, {"km", 1000}, {"cm", 0.01}, {"mm", 0.001},
		{"in", 0.0254}, {"ft", 0.3048}, {"yd", 0.9144}, {"mi", 1609.34},
	}},
	{Key: "area", Name: "Area", Base: "m²", units: []unit{
		{"m²", 1}, {"km²", 1e6}, {"cm²", 1e-4}, {"hectare", 10000},
		{"acre", 4046.86}, {"ft²", 0.092903},
	}},
	{Key: "volume", Name: "Volume", Base: "l", units: []unit{
		{"l", 1}, {"ml", 0.001}, {"m³", 1000}, {"gal", 3.78541}, {"fl oz", 0.0295735},
	}},
	{Key: "mass", Name: "Mass", Base: "kg", units: []unit{
		{"kg", 1}, {"g", 0.001}, {"ton", 1000}, {"lb", 0.453592}, {"oz", 0.0283495},
	}},
	{Key: "temperature", Name: "Temperature", Base: Celsius, affine: true, units: []unit{
		{Celsius, 1}, {Fahrenheit, 1}, {Kelvin, 1},
	}},
	{Key: "data", Name: "Data", Base: "bytes", units: []unit{
		{"bytes", 1}, {"KB", 1024}, {"MB", 1 << 20}, {"GB", 1 << 30}, {"TB", 1 << 40}, {"bits", 0.125},
	}},
	{Key: "speed", Name: "Speed", Base: "m/s", units: []unit{
		{"m/s", 1}, {"km/h", 0.277778}, {"mph", 0.44704}, {"knot", 0.514444},
	}},
	{Key: "time", Name: "Time", Base: "s", units: []unit{
		{"s", 1}, {"min", 60}, {"h", 3600}, {"day", 86400}, {"week", 604800},
	}},
}

// Categories returns every category in display order.
func Categories() []Category {
	return categories
}

// Lookup finds a category by key.
func Lookup(key string) (Category, error) {
	for _, c := range categories {
		if c.Key == key {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
}

// Units lists the units of the category named by key.
func Units(key string) ([]string, error) {
	c, err := Lookup(key)
	if err != nil {
		return nil, err
	}
	return c.Units(), nil
}

// Convert converts v between two units of one category.
func Convert(category, from, to string, v float64) (float64, error) {
	c, err := Lookup(category)
	if err != nil {
		return 0, err
	}
	ff, ok := c.factor(from)
	if !ok {
		return 0, fmt.Errorf("%w: %q in %s", ErrUnknownUnit, from, c.Key)
	}
	tf, ok := c.factor(to)
	if !ok {
		return 0, fmt.Errorf("%w: %q in %s", ErrUnknownUnit, to, c.Key)
	}

	var out float64
	if c.affine {
		out = fromCelsius(to, toCelsius(from, v))
	} else {
		out = v * ff / tf
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, ErrNonFinite
	}
	return out, nil
}

func toCelsius(unit string, v float64) float64 {
	switch unit {
	case Fahrenheit:
		return (v - 32) * 5 / 9
	case Kelvin:
		return v - 273.15
	}
	return v
}

func fromCelsius(unit string, c float64) float64 {
	switch unit {
	case Fahrenheit:
		return c*9/5 + 32
	case Kelvin:
		return c + 273.15
	}
	return c
}

// Format shows a conversion result with 9 significant digits.
func Format(v float64) string {
	return calc.FormatPrecision(v, 9)
}

// InterestResult is a simple-interest calculation, amounts to 2 decimals.
type InterestResult struct {
	TotalInterest float64
	TotalAmount   float64
}

func (r InterestResult) InterestText() string {
	return strconv.FormatFloat(r.TotalInterest, 'f', 2, 64)
}

func (r InterestResult) AmountText() string {
	return strconv.FormatFloat(r.TotalAmount, 'f', 2, 64)
}

// Interest computes simple interest for ratePercent per year over years.
func Interest(principal, ratePercent, years float64) (InterestResult, error) {
	interest := principal * ratePercent * years / 100
	total := principal + interest
	for _, v := range []float64{interest, total} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return InterestResult{}, ErrNonFinite
		}
	}
	return InterestResult{TotalInterest: interest, TotalAmount: total}, nil
}

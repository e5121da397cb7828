package analysis

import (
	"math"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Median returns the middle value, averaging the two central values for even lengths.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Quantile returns the p-quantile using linear interpolation between closest ranks.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	p = math.Max(0, math.Min(1, p))
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// Percent returns part as a percentage of whole, 0 when whole is 0.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// Filter keeps the values for which keep returns true.
func Filter(xs []float64, keep func(float64) bool) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out
}

var printer = message.NewPrinter(language.English)

// FormatInt renders n with thousands separators.
func FormatInt(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatMoney renders a dollar amount with thousands separators and two decimals.
func FormatMoney(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

package processors

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Bar and area colors.
const (
	ColorNegative = "rgba(255, 99, 132, 0.5)"
	ColorPositive = "rgba(75, 192, 192, 0.5)"

	fillBelowOrigin = "rgba(255, 99, 132, 0.2)"
	fillAboveOrigin = "rgba(75, 192, 192, 0.2)"
)

// toFixed formats v with exactly digits fractional digits. Rounding works on the exact
// binary value with ties away from zero, so 1.005 (stored as 1.00499...) gives "1.00"
// and 0.125 gives "0.13". Negative values that round to zero keep their sign.
func toFixed(v float64, digits int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	s := decimal.NewFromFloatWithExponent(v, -digits).StringFixed(digits)
	if v < 0 && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}

// percent renders a fraction as a percentage with two decimals.
func percent(fraction float64) string {
	return toFixed(fraction*100, 2)
}

// money renders an amount with two decimals.
func money(v float64) string {
	return toFixed(v, 2)
}

// plainNumber renders v with the fewest digits that round-trip to the same
// float64, without an exponent: 1234.5, 20 or 0.30000000000000004.
func plainNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return toFixed(v, 0)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// signColor is red for values below zero and green otherwise; zero is green.
func signColor(v float64) string {
	if v < 0 {
		return ColorNegative
	}
	return ColorPositive
}

// shareOf returns part/whole as a percentage capped at 100. A zero whole yields 0.
func shareOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	ratio := part / whole * 100
	if math.IsNaN(ratio) || math.IsInf(ratio, -1) {
		return 0
	}
	if ratio > 100 {
		ratio = 100.00
	}
	return ratio
}

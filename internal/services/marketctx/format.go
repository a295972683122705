package marketctx

import (
	"math"
	"strconv"
	"strings"

	"github.com/bobmcallan/marketctx/internal/models"
)

const none = "None"

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

// formatFloat prints the shortest round-trip form, keeping ".0" on integral
// values. Very large and very small magnitudes switch to exponent form.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return none
	}
	return formatFloat(*v)
}

func formatOptInt(v *int64) string {
	if v == nil {
		return none
	}
	return strconv.FormatInt(*v, 10)
}

// formatMarketCap prints integral caps without a decimal.
func formatMarketCap(v *float64) string {
	if v == nil {
		return none
	}
	if models.IsIntegral(*v) && math.Abs(*v) < 1e18 {
		return strconv.FormatFloat(*v, 'f', 0, 64)
	}
	return formatFloat(*v)
}

package companieshouse

import (
	"math"
	"strconv"
)

// FormatCurrency renders an amount in pounds the way the dashboard shows
// it: £1.2m, £350k or £900, with a leading minus for negatives. Halves
// round away from zero.
func FormatCurrency(value float64) string {
	abs := math.Abs(value)

	var formatted string
	switch {
	case abs >= 1_000_000:
		formatted = "£" + strconv.FormatFloat(math.Round(abs/100_000)/10, 'f', 1, 64) + "m"
	case abs >= 1_000:
		formatted = "£" + strconv.FormatFloat(math.Round(abs/1_000), 'f', 0, 64) + "k"
	default:
		formatted = "£" + strconv.FormatFloat(math.Round(abs), 'f', 0, 64)
	}

	if value < 0 {
		return "-" + formatted
	}
	return formatted
}

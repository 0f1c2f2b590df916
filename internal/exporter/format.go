package exporter

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat renders the shortest exact form, or an empty cell for NaN
// and infinities.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func joinNames(names []string) string {
	return strings.Join(names, ";")
}

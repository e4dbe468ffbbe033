package evaluator

import (
	"math"
	"strconv"
	"strings"
)

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// formatFloat renders the shortest representation that reads back to the
// same value, keeping a decimal point for integral values: 3 -> "3.0".
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEn") {
		return s
	}
	return s + ".0"
}

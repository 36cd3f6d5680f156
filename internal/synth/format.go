package synth

import (
	"math"
	"strconv"
	"strings"
)

// DefaultClassName is used when a strategy name has no non-whitespace characters.
const DefaultClassName = "CustomStrategy"

// ClassName derives a class identifier from a strategy name by removing every
// whitespace character. Punctuation is kept as-is.
func ClassName(name string) string {
	id := strings.Join(strings.Fields(name), "")
	if id == "" {
		return DefaultClassName
	}
	return id
}

// FormatPercent rounds v to two decimals and prints the shortest form with at
// least one fractional digit: 5 -> "5.0", 7.5 -> "7.5", 7.257 -> "7.26".
// Every target prints percentages through this function.
func FormatPercent(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// enumLiteral is the lowercased form used for enum values in every target.
func enumLiteral[T ~string](v T) string {
	return strings.ToLower(string(v))
}

// singleLine collapses a value so it is safe inside a line comment.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatUSD formats a dollar amount as a string like "$1,234.56".
// Negative amounts render as "-$12.00".
func FormatUSD(amount float64) string {
	neg := amount < 0
	cents := int64(math.Round(math.Abs(amount) * 100))
	if cents == 0 {
		neg = false
	}

	s := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + $ + .cc
	b.Grow(len(s) + len(s)/3 + 5)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}

	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

// FormatPercent formats a fraction as a percentage: 0.15 -> "15%", 0.125 -> "12.5%"
func FormatPercent(fraction float64) string {
	pct := math.Round(fraction*10000) / 100
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// Package helpers contains small shared formatting and market-calendar
// utilities.
package helpers

import (
	"fmt"
	"strings"
)

// FormatPrice formats a price in dollars with thousands separators, e.g.
// 1234.5 -> "$1,234.50".
func FormatPrice(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := int64(v)
	cents := int64(v*100+0.5) - whole*100
	if cents >= 100 {
		whole++
		cents -= 100
	}

	s := fmt.Sprintf("%d", whole)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := fmt.Sprintf("$%s.%02d", strings.Join(parts, ","), cents)
	if neg {
		return "-" + out
	}
	return out
}

// FormatPct formats a signed percentage, e.g. 2.0 -> "+2.00%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

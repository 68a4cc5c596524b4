// Package utils provides formatting and IST time helpers for market data.
package utils

import (
	"fmt"
	"math"
	"strconv"
)

// FormatINR formats a number in Indian Rupee format (₹12,34,567.89).
// Uses the Indian numbering system: last 3 digits, then groups of 2.
func FormatINR(amount float64) string {
	negative := amount < 0
	paise := int64(math.Round(math.Abs(amount) * 100))

	formatted := fmt.Sprintf("%s.%02d", formatIndianNumber(paise/100), paise%100)
	if negative && paise != 0 {
		return "-₹" + formatted
	}
	return "₹" + formatted
}

// FormatAmount renders an amount in the given currency. INR uses Indian
// grouping; other codes get a plain two-decimal figure with the code suffixed.
func FormatAmount(amount float64, code string) string {
	if code == "INR" {
		return FormatINR(amount)
	}
	return fmt.Sprintf("%.2f %s", amount, code)
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// formatIndianNumber formats a non-negative integer with Indian grouping.
func formatIndianNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	result := s[len(s)-3:]
	remaining := s[:len(s)-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	return remaining + "," + result
}

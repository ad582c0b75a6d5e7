// Package utils provides small formatting, naming and time helpers shared by
// the league service, the pages and the CLI.
package utils

import (
	"fmt"
	"strconv"
)

// FormatDiff formats a rating change with an explicit sign: "+16", "-6", "+0".
func FormatDiff(diff int) string {
	return fmt.Sprintf("%+d", diff)
}

// FormatPercent formats a 0..100 rate without decimals.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// Percent returns part as a percentage of whole, 0 when whole is 0.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

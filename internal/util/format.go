package util

import (
	"fmt"
	"time"
)

// FormatTokensInt formats an int64 token count with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatTokensInt(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// ShortID returns the first 8 characters of a session id, as shown in progress lines.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// TodayUTC returns the current UTC date as YYYY-MM-DD.
func TodayUTC(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

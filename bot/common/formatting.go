package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalance(-balance)
	}

	str := fmt.Sprintf("%d", balance)
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatCoins formats an amount with the currency name
func FormatCoins(amount int64) string {
	return fmt.Sprintf("%s %s", FormatBalance(amount), Currency)
}

// FormatSignedCoins formats a balance change with an explicit sign
func FormatSignedCoins(amount int64) string {
	if amount > 0 {
		return "+" + FormatCoins(amount)
	}
	return FormatCoins(amount)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// Truncate shortens s to max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		name     string
		balance  int64
		expected string
	}{
		{"zero", 0, "0"},
		{"hundreds", 999, "999"},
		{"thousands", 1000, "1,000"},
		{"millions", 1234567, "1,234,567"},
		{"negative", -25000, "-25,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBalance(tt.balance))
		})
	}
}

func TestFormatSignedCoins(t *testing.T) {
	assert.Equal(t, "+1,500 coins", FormatSignedCoins(1500))
	assert.Equal(t, "-20 coins", FormatSignedCoins(-20))
	assert.Equal(t, "0 coins", FormatSignedCoins(0))
}

func TestFormatDiscordTimestamp(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "<t:1700000000:R>", FormatDiscordTimestamp(ts, "R"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a very ...", Truncate("a very long name", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

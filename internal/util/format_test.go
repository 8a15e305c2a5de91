package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "negative is go", input: -1, expected: "GO!"},
		{name: "zero", input: 0, expected: "0s"},
		{name: "seconds", input: 42, expected: "42s"},
		{name: "one minute", input: 60, expected: "1:00"},
		{name: "minutes", input: 125, expected: "2:05"},
		{name: "hours", input: 3725, expected: "1:02:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCountdown(tt.input))
		})
	}
}

func TestFormatSkip(t *testing.T) {
	assert.Equal(t, "+10s", FormatSkip(10))
	assert.Equal(t, "+30s", FormatSkip(30))
	assert.Equal(t, "+1min", FormatSkip(60))
	assert.Equal(t, "+90s", FormatSkip(90))
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "a, c", JoinNonEmpty(", ", "a", " ", "c"))
	assert.Equal(t, "", JoinNonEmpty(", "))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "1 starter", Pluralize(1, "starter", "starters"))
	assert.Equal(t, "3 starters", Pluralize(3, "starter", "starters"))
}

func TestCountdownColor(t *testing.T) {
	assert.Equal(t, ColorRed, CountdownColor(5))
	assert.Equal(t, ColorRed, CountdownColor(0))
	assert.Equal(t, ColorYellow, CountdownColor(30))
	assert.Equal(t, ColorGreen, CountdownColor(31))
}

func TestCenterText(t *testing.T) {
	assert.Equal(t, "  ab  ", CenterText("ab", 6))
	assert.Equal(t, "abc", CenterText("abcdef", 3))
	assert.Equal(t, 6, GetDisplayWidth(CenterText("Äö", 6)))
}

package util

import (
	"fmt"
	"strings"
)

// FormatCountdown renders remaining seconds for the big countdown.
// Negative values mean the start has passed and read as "GO!".
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		return "GO!"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d:%02d", minutes, seconds%60)
	}
	return fmt.Sprintf("%d:%02d:%02d", minutes/60, minutes%60, seconds%60)
}

// FormatSkip renders a skip step the way the controls label it: +10s, +1min
func FormatSkip(seconds int) string {
	if seconds%60 == 0 {
		return fmt.Sprintf("+%dmin", seconds/60)
	}
	return fmt.Sprintf("+%ds", seconds)
}

// JoinNonEmpty joins the non-blank parts with sep
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// Pluralize picks singular or plural by count
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

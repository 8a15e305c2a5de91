package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorGray    = "\033[90m"
	ColorBold    = "\033[1m"
	ColorInverse = "\033[7m"

	ClearScreen         = "\033[2J"     // Clear entire screen
	ClearLineFromCursor = "\033[0K"     // Clear from cursor to end of line
	ClearToScreenEnd    = "\033[0J"     // Clear from cursor to end of screen
	ClearScrollback     = "\033[3J"     // Clear scrollback buffer
	EnterAltScreen      = "\033[?1049h" // Switch to alternate screen buffer
	ExitAltScreen       = "\033[?1049l" // Return to main screen buffer
	MoveCursorHome      = "\033[H"      // Move cursor to home position
	HideCursor          = "\033[?25l"   // Hide cursor
	ShowCursor          = "\033[?25h"   // Show cursor
)

// GetDisplayWidth calculates the display width of a string, accounting for
// wide runes and emojis
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Colorize wraps text in a color and reset
func Colorize(color, text string) string {
	return color + text + ColorReset
}

// FormatHeaderTitle formats main header titles (Magenta + Bold)
func FormatHeaderTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorMagenta, title, ColorReset)
}

// FormatBadge formats a highlighted badge such as the simulation marker
func FormatBadge(text string) string {
	return fmt.Sprintf("%s%s%s %s %s", ColorBold, ColorInverse, ColorYellow, text, ColorReset)
}

// CountdownColor picks the countdown color: red in the last five seconds,
// yellow within thirty, green otherwise.
func CountdownColor(seconds int) string {
	switch {
	case seconds <= 5:
		return ColorRed
	case seconds <= 30:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// FormatSectionSeparator creates a visual separator line of the given width
func FormatSectionSeparator(width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s%s%s", ColorCyan, strings.Repeat("─", width), ColorReset)
}

// CenterText centers text within the given display width
func CenterText(text string, width int) string {
	textWidth := GetDisplayWidth(text)
	if textWidth >= width {
		return runewidth.Truncate(text, width, "")
	}
	padding := (width - textWidth) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-textWidth)
}

package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	minWidth       = 40
)

// Package-level singleton Sizer instance
var sharedSizer = &Sizer{}

type Sizer struct {
}

// displayWidth calculates the actual display width of a string containing emojis and Unicode characters
func (i Sizer) displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadString pads a string to a specific display width, handling wide runes correctly
func (i Sizer) PadString(s string, width int, leftAlign bool) string {
	actualWidth := i.displayWidth(s)
	if actualWidth >= width {
		return s
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// Fit truncates s with an ellipsis when wider than width, then pads it
func (i Sizer) Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if i.displayWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return i.PadString(s, width, true)
}

// Center pads s on both sides to width
func (i Sizer) Center(s string, width int) string {
	w := i.displayWidth(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s
}

// TerminalSize returns the stdout terminal size, or 80x24 when stdout is
// not a terminal.
func (i Sizer) TerminalSize() (width, height int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w < minWidth || h <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return w, h
}

// TerminalSize reports the terminal size through the shared sizer
func TerminalSize() (width, height int) {
	return sharedSizer.TerminalSize()
}

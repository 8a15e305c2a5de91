package display

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/presentation/layout"
	"github.com/penwyp/go-start-clock/internal/util"
)

// DisplayConfig configures a TerminalDisplay
type DisplayConfig struct {
	Output io.Writer // defaults to os.Stdout

	// Size reports the terminal geometry; defaults to layout.TerminalSize
	Size func() (width, height int)
}

type TerminalDisplay struct {
	out  io.Writer
	size func() (int, int)

	mu                sync.Mutex
	inAlternateScreen bool
	lastLayoutStyle   int
	isFirstRender     bool
	currentMode       model.DisplayMode
	frame             int // loading spinner position
}

func NewTerminalDisplay(config *DisplayConfig) *TerminalDisplay {
	if config == nil {
		config = &DisplayConfig{}
	}
	td := &TerminalDisplay{
		out:           config.Output,
		size:          config.Size,
		isFirstRender: true,
		currentMode:   model.ModeNormal,
	}
	if td.out == nil {
		td.out = os.Stdout
	}
	if td.size == nil {
		td.size = layout.TerminalSize
	}
	return td
}

// EnterAlternateScreen switches to the alternate screen buffer and hides the cursor
func (td *TerminalDisplay) EnterAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.inAlternateScreen {
		return
	}
	td.write(util.EnterAltScreen + util.ClearScreen + util.ClearScrollback + util.MoveCursorHome + util.HideCursor)
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to the normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if !td.inAlternateScreen {
		return
	}
	td.write(util.ClearScreen + util.MoveCursorHome + util.ShowCursor + util.ExitAltScreen)
	td.inAlternateScreen = false
}

// determineDisplayMode determines the current display mode based on interaction state
func (td *TerminalDisplay) determineDisplayMode(state model.InteractionState) model.DisplayMode {
	return state.Mode()
}

// RenderWithState draws one frame. The whole frame is assembled first and
// written in a single call so a tick never shows a half-drawn screen.
func (td *TerminalDisplay) RenderWithState(view *model.ClockView, state model.InteractionState) {
	td.mu.Lock()
	defer td.mu.Unlock()

	width, height := td.size()
	mode := td.determineDisplayMode(state)

	var buf bytes.Buffer
	if td.isFirstRender || mode != td.currentMode || state.LayoutStyle != td.lastLayoutStyle {
		buf.WriteString(util.ClearScreen)
		td.isFirstRender = false
		td.currentMode = mode
		td.lastLayoutStyle = state.LayoutStyle
	}
	buf.WriteString(util.MoveCursorHome)

	var lines []string
	switch mode {
	case model.ModeDialog:
		lines = renderConfirmDialog(state.ConfirmDialog, width)
	case model.ModeHelp:
		lines = renderHelp(width)
	case model.ModeLoading:
		lines = td.renderLoadingScreen(state.LoadingMessage, width, height)
	default:
		strategy := layout.GetLayoutStrategy(state.LayoutStyle)
		lines = strategy.Render(view, model.LayoutParam{Width: width, Height: height})
		if state.StatusMessage != "" {
			lines = append(lines, util.Colorize(util.ColorYellow, "  Status: "+state.StatusMessage))
		}
	}

	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		buf.WriteString(line)
		buf.WriteString(util.ClearLineFromCursor)
		if i < len(lines)-1 {
			buf.WriteString("\r\n")
		}
	}
	buf.WriteString(util.ClearToScreenEnd)
	td.write(buf.String())
}

func (td *TerminalDisplay) write(s string) {
	if _, err := io.WriteString(td.out, s); err != nil {
		util.LogDebugf("terminal write failed: %v", err)
	}
}

func renderHelp(width int) []string {
	rule := strings.Repeat("═", min(width, 80))
	return []string{
		util.FormatHeaderTitle("Start Clock - Help"),
		rule,
		"",
		"Keyboard Shortcuts:",
		"",
		"  1 / 3 / 6    - Skip the simulated clock forward 10s / 30s / 1min",
		"  a            - Enable audio (test beep and speech check)",
		"  g            - Cycle the start group filter",
		"  r            - Reload the start list from its source",
		"  t            - Change layout style (Full → Compact)",
		"  x            - Clear saved settings and cached start list",
		"  h            - Show this help",
		"  q/Esc/Ctrl+C - Quit the program",
		"",
		"Countdown Colors:",
		"  " + util.Colorize(util.ColorGreen, "Green") + "  - more than 30 seconds to the next start",
		"  " + util.Colorize(util.ColorYellow, "Yellow") + " - 30 seconds or less",
		"  " + util.Colorize(util.ColorRed, "Red") + "    - final 5 seconds, start beeps play",
		"",
		"Skip keys only work in simulation mode.",
		rule,
		"Press 'h' to return...",
	}
}

func renderConfirmDialog(dialog *model.ConfirmDialog, width int) []string {
	boxWidth := 60
	if width < boxWidth+2 {
		boxWidth = max(width-2, 20)
	}
	pad := strings.Repeat(" ", max((width-boxWidth)/2, 0))
	inner := boxWidth - 2

	lines := []string{"", "", "", "",
		fmt.Sprintf("%s╔%s╗", pad, strings.Repeat("═", inner)),
		fmt.Sprintf("%s║%s║", pad, util.CenterText(dialog.Title, inner)),
		fmt.Sprintf("%s╠%s╣", pad, strings.Repeat("═", inner)),
		fmt.Sprintf("%s║%s║", pad, strings.Repeat(" ", inner)),
	}
	for _, line := range wrapText(dialog.Message, boxWidth-4) {
		fill := max(boxWidth-4-util.GetDisplayWidth(line), 0)
		lines = append(lines, fmt.Sprintf("%s║ %s%s ║", pad, line, strings.Repeat(" ", fill)))
	}
	return append(lines,
		fmt.Sprintf("%s║%s║", pad, strings.Repeat(" ", inner)),
		fmt.Sprintf("%s║%s║", pad, util.CenterText("(Y)es / (N)o", inner)),
		fmt.Sprintf("%s╚%s╝", pad, strings.Repeat("═", inner)),
	)
}

var loadingChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (td *TerminalDisplay) renderLoadingScreen(message string, width, height int) []string {
	if message == "" {
		message = "Loading start list..."
	}
	spinner := loadingChars[td.frame%len(loadingChars)]
	td.frame++

	boxWidth := 50
	inner := boxWidth - 2
	pad := strings.Repeat(" ", max((width-boxWidth)/2, 0))

	lines := make([]string, max(height/2-5, 0))
	return append(lines,
		fmt.Sprintf("%s╔%s╗", pad, strings.Repeat("═", inner)),
		fmt.Sprintf("%s║%s║", pad, util.CenterText("Start Clock", inner)),
		fmt.Sprintf("%s╠%s╣", pad, strings.Repeat("═", inner)),
		fmt.Sprintf("%s║%s║", pad, strings.Repeat(" ", inner)),
		fmt.Sprintf("%s║%s║", pad, util.CenterText(spinner+" "+message, inner)),
		fmt.Sprintf("%s║%s║", pad, strings.Repeat(" ", inner)),
		fmt.Sprintf("%s║%s║", pad, util.CenterText("Press 'q' to quit", inner)),
		fmt.Sprintf("%s╚%s╝", pad, strings.Repeat("═", inner)),
	)
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if text == "" {
		return []string{}
	}

	if util.GetDisplayWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if util.GetDisplayWidth(currentLine)+1+util.GetDisplayWidth(word) <= width {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

package interaction

import "github.com/penwyp/go-start-clock/internal/core/model"

// Action is what a key press asks the clock to do
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionSkipSmall  // 1
	ActionSkipMedium // 3
	ActionSkipLarge  // 6
	ActionEnableAudio
	ActionCycleGroup
	ActionReload
	ActionToggleLayout
	ActionToggleHelp
	ActionClearState
	ActionConfirm
	ActionCancel
)

var actionNames = map[Action]string{
	ActionNone:         "none",
	ActionQuit:         "quit",
	ActionSkipSmall:    "skip-small",
	ActionSkipMedium:   "skip-medium",
	ActionSkipLarge:    "skip-large",
	ActionEnableAudio:  "enable-audio",
	ActionCycleGroup:   "cycle-group",
	ActionReload:       "reload",
	ActionToggleLayout: "toggle-layout",
	ActionToggleHelp:   "toggle-help",
	ActionClearState:   "clear-state",
	ActionConfirm:      "confirm",
	ActionCancel:       "cancel",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// SkipIndex maps a skip action to its position in the skip step list
func (a Action) SkipIndex() (int, bool) {
	switch a {
	case ActionSkipSmall:
		return 0, true
	case ActionSkipMedium:
		return 1, true
	case ActionSkipLarge:
		return 2, true
	}
	return 0, false
}

var normalKeys = map[rune]Action{
	'1': ActionSkipSmall,
	'3': ActionSkipMedium,
	'6': ActionSkipLarge,
	'a': ActionEnableAudio,
	'g': ActionCycleGroup,
	'r': ActionReload,
	't': ActionToggleLayout,
	'h': ActionToggleHelp,
	'?': ActionToggleHelp,
	'x': ActionClearState,
	'q': ActionQuit,
}

// ActionFor resolves a key press in the given display mode. Letters are
// case-insensitive.
func ActionFor(event KeyEvent, mode model.DisplayMode) Action {
	key := event.Key
	if key >= 'A' && key <= 'Z' {
		key += 'a' - 'A'
	}

	if key == keyCtrlC {
		return ActionQuit
	}

	switch mode {
	case model.ModeDialog:
		switch {
		case key == 'y':
			return ActionConfirm
		case key == 'n', event.Type == KeyEscape:
			return ActionCancel
		}
		return ActionNone
	case model.ModeHelp:
		switch {
		case key == 'h', key == '?', event.Type == KeyEscape:
			return ActionToggleHelp
		case key == 'q':
			return ActionQuit
		}
		return ActionNone
	case model.ModeLoading:
		if key == 'q' || event.Type == KeyEscape {
			return ActionQuit
		}
		return ActionNone
	}

	if event.Type == KeyEscape {
		return ActionQuit
	}
	return normalKeys[key]
}

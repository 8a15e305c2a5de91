package startclock

import (
	"context"

	"github.com/penwyp/go-start-clock/internal/core/cue"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/presentation/interaction"
)

// ScheduleSource loads a start list from a URL or file
type ScheduleSource interface {
	Load(ctx context.Context, source string) (*model.StartList, error)
}

// AudioOutput plays the start tones and the enable-audio test beep
type AudioOutput interface {
	cue.AudioPlayer
	TestBeep() error
}

// SpeechOutput speaks announcements
type SpeechOutput interface {
	cue.Announcer
	// Probe checks that speech works without speaking aloud
	Probe() error
	// Cancel stops any utterance in progress
	Cancel()
}

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// RenderWithState draws one frame of the clock
	RenderWithState(view *model.ClockView, state model.InteractionState)
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}

// FileMonitor watches for file changes
type FileMonitor interface {
	// Events returns a channel of file change events
	Events() <-chan model.FileEvent
	// Close stops monitoring and cleans up resources
	Close() error
}

package startclock

import (
	"fmt"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/constants"
	"github.com/penwyp/go-start-clock/internal/core/cue"
	"github.com/penwyp/go-start-clock/internal/speech"
)

// ClockConfig contains configuration for the live clock view
type ClockConfig struct {
	// Start list source: http(s) URL or local path. Empty restores the
	// cached list.
	Source     string
	StartGroup string // "" shows every group
	Simulate   bool
	WatchFile  bool // reload a local source when it changes
	StateDir   string

	// Display settings
	Timezone    string
	TimeFormat  string
	LayoutStyle int

	// Timing
	TickInterval      time.Duration
	SkipSteps         []time.Duration
	AnnouncementDelay time.Duration
	LoadTimeout       time.Duration
	StatusTimeout     time.Duration // how long a status line stays up

	// Speech settings
	Language           string
	SpeechRate         float64
	SpeechCommand      string
	AnnouncementPrefix string
}

// Validate fills defaults and rejects values the clock cannot run with
func (c *ClockConfig) Validate() error {
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "24h"
	}
	if c.TickInterval == 0 {
		c.TickInterval = constants.TickInterval
	}
	if c.TickInterval < 0 || c.TickInterval > time.Second {
		return fmt.Errorf("tick interval must be between 0 and 1s, got %s", c.TickInterval)
	}
	if len(c.SkipSteps) == 0 {
		c.SkipSteps = append([]time.Duration(nil), constants.DefaultSkipSteps...)
	}
	for _, step := range c.SkipSteps {
		if step <= 0 {
			return fmt.Errorf("skip steps must be positive, got %s", step)
		}
	}
	if c.AnnouncementDelay == 0 {
		c.AnnouncementDelay = constants.AnnouncementDelay
	}
	if c.LoadTimeout == 0 {
		c.LoadTimeout = constants.LoadTimeout
	}
	if c.StatusTimeout == 0 {
		c.StatusTimeout = 5 * time.Second
	}
	if c.Language == "" {
		c.Language = speech.DefaultLanguage
	}
	if c.SpeechRate == 0 {
		c.SpeechRate = speech.DefaultRate
	}
	if c.SpeechRate < 0 {
		return fmt.Errorf("speech rate must be positive, got %g", c.SpeechRate)
	}
	if c.AnnouncementPrefix == "" {
		c.AnnouncementPrefix = cue.DefaultAnnouncementPrefix
	}
	return nil
}

package constants

import "time"

const (
	// Tick driver sampling interval
	TickInterval = 100 * time.Millisecond

	// Countdown value (seconds) at which the cue sequence fires
	TriggerThreshold = 5

	// Virtual clock starts this long before the earliest start
	SimulationLeadTime = 60 * time.Second

	// Delay from cue sequence start to the spoken announcement
	AnnouncementDelay = 5 * time.Second

	// Start beep pattern
	ShortBeepCount     = 5
	ShortBeepDuration  = 100 * time.Millisecond
	ShortBeepGap       = 900 * time.Millisecond
	ShortBeepFrequency = 800.0
	LongBeepDuration   = 500 * time.Millisecond
	LongBeepFrequency  = 1000.0

	// Countdown color thresholds (seconds)
	CountdownWarnSeconds     = 30
	CountdownCriticalSeconds = 5

	// Start list HTTP fetch timeout
	LoadTimeout = 30 * time.Second
)

// DefaultSkipSteps are the fast-forward amounts offered in simulation mode
var DefaultSkipSteps = []time.Duration{10 * time.Second, 30 * time.Second, time.Minute}

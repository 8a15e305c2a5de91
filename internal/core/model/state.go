package model

import "time"

// Snapshot is the countdown state derived on one tick. It is recomputed
// every sample and never persisted.
type Snapshot struct {
	Now time.Time

	// Key is the shared start time of the pending cohort; zero when none
	Key              time.Time
	Cohort           []Entry
	SecondsRemaining *int

	Simulated bool
}

// HasPending reports whether an upcoming cohort exists
func (s Snapshot) HasPending() bool {
	return len(s.Cohort) > 0 && s.SecondsRemaining != nil
}

// ClockView is everything one frame of the clock screen shows
type ClockView struct {
	EventName   string
	EventDate   time.Time
	Loaded      bool // a start list is available
	Snapshot    Snapshot
	StartGroup  string // "" when every group is shown
	TotalStarts int    // entries in the current view
	Started     int    // entries in the current view whose start has passed

	AudioEnabled    bool
	SpeechSupported bool
	CueFiring       bool
	SkipSteps       []time.Duration
}

// LayoutParam carries the terminal geometry to a layout strategy
type LayoutParam struct {
	Width  int
	Height int
}

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	Operation string
}

// DisplayMode is the screen currently shown
type DisplayMode int

const (
	ModeNormal DisplayMode = iota
	ModeHelp
	ModeDialog
	ModeLoading
)

// InteractionState represents the current UI interaction state
type InteractionState struct {
	ShowHelp       bool
	AudioEnabled   bool
	IsLoading      bool
	LoadingMessage string
	StatusMessage  string // transient message, e.g. a failed reload
	StartGroup     string // "" shows every start group
	LayoutStyle    int
	ConfirmDialog  *ConfirmDialog
}

// Mode picks the screen for this state: dialog, then help, then loading,
// then the clock itself
func (s InteractionState) Mode() DisplayMode {
	switch {
	case s.ConfirmDialog != nil:
		return ModeDialog
	case s.ShowHelp:
		return ModeHelp
	case s.IsLoading:
		return ModeLoading
	}
	return ModeNormal
}

// ConfirmDialog represents a confirmation dialog
type ConfirmDialog struct {
	Title     string
	Message   string
	OnConfirm func()
	OnCancel  func()
}

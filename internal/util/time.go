package util

import (
	"fmt"
	"sync"
	"time"
)

const (
	ClockLayout24h = "15:04:05"
	ClockLayout12h = "03:04:05 PM"
)

// TimeProvider formats instants for display in the configured timezone.
// It never produces "now"; the clock packages own that.
type TimeProvider struct {
	location *time.Location
	layout   string
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// NewTimeProvider builds a provider for timezone ("Local", "UTC", IANA name)
// and time format ("24h" or "12h").
func NewTimeProvider(timezone, timeFormat string) (*TimeProvider, error) {
	tp := &TimeProvider{}
	if err := tp.SetTimezone(timezone); err != nil {
		return nil, err
	}
	if err := tp.SetTimeFormat(timeFormat); err != nil {
		return nil, err
	}
	return tp, nil
}

// InitializeTimeProvider installs the provider used by FormatClock
func InitializeTimeProvider(timezone, timeFormat string) error {
	provider, err := NewTimeProvider(timezone, timeFormat)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the installed provider, defaulting to Local/24h
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	defer mu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local, layout: ClockLayout24h}
	}
	return globalTimeProvider
}

// SetTimezone updates the timezone for the time provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, Europe/Helsinki, Europe/Stockholm", timezone, err)
		}
		loc = l
	}
	tp.location = loc
	return nil
}

// SetTimeFormat selects the 12h or 24h clock layout
func (tp *TimeProvider) SetTimeFormat(timeFormat string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	switch timeFormat {
	case "", "24h":
		tp.layout = ClockLayout24h
	case "12h":
		tp.layout = ClockLayout12h
	default:
		return fmt.Errorf("invalid time format '%s': must be either '12h' or '24h'", timeFormat)
	}
	return nil
}

// Location returns the configured location
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// In converts a time to the configured timezone
func (tp *TimeProvider) In(t time.Time) time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location)
}

// Clock formats t as a wall clock reading (hh:mm:ss)
func (tp *TimeProvider) Clock(t time.Time) string {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location).Format(tp.layout)
}

// Format formats a time according to layout in the configured timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location).Format(layout)
}

// FormatClock formats t with the installed provider
func FormatClock(t time.Time) string {
	return GetTimeProvider().Clock(t)
}

// Package clock supplies "now" to the countdown engine, either straight from
// the host clock or from a virtual clock that can be fast-forwarded.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-start-clock/internal/core/constants"
	"github.com/penwyp/go-start-clock/internal/core/model"
)

// Source is the time source read by the tick driver
type Source interface {
	Now() time.Time
}

// Mode reports which time base a clock is using
type Mode int

const (
	ModeReal Mode = iota
	ModeVirtual
)

func (m Mode) String() string {
	if m == ModeVirtual {
		return "virtual"
	}
	return "real"
}

// RealSource returns host time directly
type RealSource struct {
	host clockwork.Clock
}

// NewRealSource wraps a host clock; nil means the wall clock
func NewRealSource(host clockwork.Clock) *RealSource {
	if host == nil {
		host = clockwork.NewRealClock()
	}
	return &RealSource{host: host}
}

func (r *RealSource) Now() time.Time {
	return r.host.Now()
}

// anchor pins a virtual instant to the host instant it was taken at.
// Anchors are immutable; the clock swaps whole anchors.
type anchor struct {
	virtual time.Time
	real    time.Time
}

// State is a point-in-time view of a VirtualClock
type State struct {
	Mode          Mode
	AnchorVirtual time.Time
	AnchorReal    time.Time
	Running       bool
}

// VirtualClock runs at host speed from a movable anchor. While disabled it
// reports host time.
type VirtualClock struct {
	host   clockwork.Clock
	anchor atomic.Pointer[anchor]
}

// NewVirtualClock creates a disabled virtual clock over host
func NewVirtualClock(host clockwork.Clock) *VirtualClock {
	if host == nil {
		host = clockwork.NewRealClock()
	}
	return &VirtualClock{host: host}
}

// Now returns anchorVirtual + (hostNow - anchorReal) while running,
// host time otherwise.
func (c *VirtualClock) Now() time.Time {
	hostNow := c.host.Now()
	a := c.anchor.Load()
	if a == nil {
		return hostNow
	}
	return a.virtual.Add(hostNow.Sub(a.real))
}

// Activate starts the clock one lead time before the earliest entry. An
// empty schedule disables the clock instead.
func (c *VirtualClock) Activate(entries []model.Entry) {
	if len(entries) == 0 {
		c.Disable()
		return
	}

	earliest := entries[0].StartTime
	for _, e := range entries[1:] {
		if e.StartTime.Before(earliest) {
			earliest = e.StartTime
		}
	}
	c.SetTime(earliest.Add(-constants.SimulationLeadTime))
}

// SetTime anchors the virtual clock at t and enables it
func (c *VirtualClock) SetTime(t time.Time) {
	c.anchor.Store(&anchor{virtual: t, real: c.host.Now()})
}

// SkipForward folds the elapsed host time and d into a fresh anchor in one
// swap, so repeated skips add up exactly. No-op while disabled.
func (c *VirtualClock) SkipForward(d time.Duration) {
	for {
		old := c.anchor.Load()
		if old == nil {
			return
		}
		hostNow := c.host.Now()
		next := &anchor{
			virtual: old.virtual.Add(hostNow.Sub(old.real) + d),
			real:    hostNow,
		}
		if c.anchor.CompareAndSwap(old, next) {
			return
		}
	}
}

// Disable drops the anchor; Now falls back to host time
func (c *VirtualClock) Disable() {
	c.anchor.Store(nil)
}

// Enabled reports whether the clock is in virtual mode
func (c *VirtualClock) Enabled() bool {
	return c.anchor.Load() != nil
}

// State returns the current clock state
func (c *VirtualClock) State() State {
	a := c.anchor.Load()
	if a == nil {
		return State{Mode: ModeReal}
	}
	return State{
		Mode:          ModeVirtual,
		AnchorVirtual: a.virtual,
		AnchorReal:    a.real,
		Running:       true,
	}
}

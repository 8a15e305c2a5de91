package starters

import (
	"time"

	"github.com/penwyp/go-start-clock/internal/core/model"
)

// Cursor is a forward-only position in a sorted schedule. For
// non-decreasing sample times it returns exactly what Select returns
// without rescanning from the start on every tick. A sample earlier than
// the previous one rewinds it.
type Cursor struct {
	entries []model.Entry
	idx     int
	last    time.Time
	started bool
}

// NewCursor creates a cursor over sorted entries
func NewCursor(entries []model.Entry) *Cursor {
	return &Cursor{entries: entries}
}

// Entries returns the sequence the cursor walks
func (c *Cursor) Entries() []model.Entry {
	return c.entries
}

// Reset points the cursor at a new sequence
func (c *Cursor) Reset(entries []model.Entry) {
	c.entries = entries
	c.idx = 0
	c.started = false
}

// Select behaves like the package-level Select for the cursor's entries
func (c *Cursor) Select(now time.Time) Result {
	if c.started && now.Before(c.last) {
		c.idx = 0
	}
	c.idx = firstAfter(c.entries, c.idx, now)
	c.last = now
	c.started = true
	return cohortFrom(c.entries, c.idx, now)
}

// Package starters picks the next cohort of competitors from a sorted
// schedule.
package starters

import (
	"time"

	"github.com/penwyp/go-start-clock/internal/core/model"
)

// Result is the next cohort and the whole seconds until it starts
type Result struct {
	Key              time.Time
	Cohort           []model.Entry
	SecondsRemaining *int
}

// Empty reports whether no upcoming cohort exists
func (r Result) Empty() bool {
	return len(r.Cohort) == 0
}

// Snapshot converts the result into the tick snapshot for now
func (r Result) Snapshot(now time.Time, simulated bool) model.Snapshot {
	return model.Snapshot{
		Now:              now,
		Key:              r.Key,
		Cohort:           r.Cohort,
		SecondsRemaining: r.SecondsRemaining,
		Simulated:        simulated,
	}
}

// Select returns every entry sharing the earliest start time strictly after
// now. An entry starting exactly at now has already started. entries must
// be sorted ascending by start time; the returned cohort aliases it.
func Select(entries []model.Entry, now time.Time) Result {
	return cohortFrom(entries, firstAfter(entries, 0, now), now)
}

// NextAfter returns the cohort that follows the one starting at key
func NextAfter(entries []model.Entry, key time.Time) []model.Entry {
	return Select(entries, key).Cohort
}

func firstAfter(entries []model.Entry, from int, now time.Time) int {
	i := from
	for i < len(entries) && !entries[i].StartTime.After(now) {
		i++
	}
	return i
}

func cohortFrom(entries []model.Entry, idx int, now time.Time) Result {
	if idx >= len(entries) {
		return Result{}
	}

	key := entries[idx].StartTime
	end := idx + 1
	for end < len(entries) && entries[end].StartTime.Equal(key) {
		end++
	}

	secs := floorSeconds(key.Sub(now))
	return Result{
		Key:              key,
		Cohort:           entries[idx:end:end],
		SecondsRemaining: &secs,
	}
}

// floorSeconds divides toward negative infinity
func floorSeconds(d time.Duration) int {
	secs := d / time.Second
	if d < 0 && d%time.Second != 0 {
		secs--
	}
	return int(secs)
}

package starters

import (
	"math/rand"
	"testing"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/core/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 8, 2, 11, 0, 0, 0, time.UTC)

func at(name string, offset time.Duration) model.Entry {
	return model.Entry{PersonName: name, StartTime: t0.Add(offset)}
}

func TestSelectScenarios(t *testing.T) {
	entries := []model.Entry{
		at("A", 10*time.Second),
		at("B", 10*time.Second),
		at("C", 20*time.Second),
	}

	tests := []struct {
		name    string
		now     time.Time
		cohort  []string
		seconds *int
	}{
		{name: "shared start time forms a cohort", now: t0, cohort: []string{"A", "B"}, seconds: intp(10)},
		{name: "fractional seconds floor", now: t0.Add(500 * time.Millisecond), cohort: []string{"A", "B"}, seconds: intp(9)},
		{name: "last sample before start", now: t0.Add(9900 * time.Millisecond), cohort: []string{"A", "B"}, seconds: intp(0)},
		{name: "exact start time has started", now: t0.Add(10 * time.Second), cohort: []string{"C"}, seconds: intp(10)},
		{name: "all in the past", now: t0.Add(time.Minute), cohort: nil, seconds: nil},
		{name: "exactly at last start", now: t0.Add(20 * time.Second), cohort: nil, seconds: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(entries, tt.now)
			if tt.cohort == nil {
				assert.True(t, got.Empty())
				assert.Nil(t, got.SecondsRemaining)
				assert.True(t, got.Key.IsZero())
				return
			}
			assert.Equal(t, tt.cohort, model.Names(got.Cohort))
			require.NotNil(t, got.SecondsRemaining)
			assert.Equal(t, *tt.seconds, *got.SecondsRemaining)
			assert.Equal(t, got.Cohort[0].StartTime, got.Key)
		})
	}
}

func TestSelectEmptySchedule(t *testing.T) {
	got := Select(nil, t0)
	assert.True(t, got.Empty())
	assert.Nil(t, got.SecondsRemaining)
}

func TestSelectIsPure(t *testing.T) {
	entries := randomSchedule(rand.New(rand.NewSource(7)), 200)
	now := t0.Add(17 * time.Minute)

	first := Select(entries, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Select(entries, now))
	}
}

func TestSelectProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		entries := randomSchedule(rng, rng.Intn(80))
		now := t0.Add(time.Duration(rng.Intn(3600)) * time.Second).Add(time.Duration(rng.Intn(1000)) * time.Millisecond)

		got := Select(entries, now)

		var min *time.Time
		for i := range entries {
			if entries[i].StartTime.After(now) && (min == nil || entries[i].StartTime.Before(*min)) {
				min = &entries[i].StartTime
			}
		}

		if min == nil {
			assert.True(t, got.Empty())
			assert.Nil(t, got.SecondsRemaining)
			continue
		}

		expected := 0
		for _, e := range entries {
			if e.StartTime.Equal(*min) {
				expected++
			}
		}
		require.Len(t, got.Cohort, expected)
		for _, e := range got.Cohort {
			assert.True(t, e.StartTime.Equal(*min))
		}
		require.NotNil(t, got.SecondsRemaining)
		assert.Equal(t, int(min.Sub(now)/time.Second), *got.SecondsRemaining)
	}
}

func TestNextAfter(t *testing.T) {
	entries := []model.Entry{
		at("A", 0),
		at("B", 10*time.Second),
		at("C", 10*time.Second),
		at("D", 30*time.Second),
	}

	assert.Equal(t, []string{"B", "C"}, model.Names(NextAfter(entries, t0)))
	assert.Equal(t, []string{"D"}, model.Names(NextAfter(entries, t0.Add(10*time.Second))))
	assert.Empty(t, NextAfter(entries, t0.Add(30*time.Second)))
}

func TestSnapshot(t *testing.T) {
	entries := []model.Entry{at("A", 7*time.Second)}
	snap := Select(entries, t0).Snapshot(t0, true)

	assert.True(t, snap.HasPending())
	assert.True(t, snap.Simulated)
	assert.Equal(t, 7, *snap.SecondsRemaining)
	assert.False(t, Select(entries, t0.Add(time.Hour)).Snapshot(t0, false).HasPending())
}

func TestFloorSeconds(t *testing.T) {
	assert.Equal(t, 1, floorSeconds(1999*time.Millisecond))
	assert.Equal(t, 0, floorSeconds(0))
	assert.Equal(t, -1, floorSeconds(-1*time.Millisecond))
	assert.Equal(t, -2, floorSeconds(-2*time.Second))
}

func randomSchedule(rng *rand.Rand, n int) []model.Entry {
	entries := make([]model.Entry, 0, n)
	for i := 0; i < n; i++ {
		// coarse slots so cohorts happen often
		slot := time.Duration(rng.Intn(120)) * 30 * time.Second
		entries = append(entries, model.Entry{PersonName: string(rune('A' + i%26)), StartTime: t0.Add(slot)})
	}
	return schedule.SortedCopy(entries)
}

func intp(v int) *int { return &v }

// Package schedule holds the immutable, time-ordered start list the
// countdown engine reads from.
package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/model"
)

// Schedule is an ascending-by-start-time sequence of entries. Ties keep
// their insertion order. Nothing is re-sorted after New.
type Schedule struct {
	eventName string
	eventDate time.Time
	entries   []model.Entry
	classes   []model.ClassStart
	groups    []string

	mu       sync.Mutex
	filtered map[string][]model.Entry
}

// New builds a schedule from a loaded start list. The list is not retained;
// entries are copied and stable-sorted once.
func New(list *model.StartList) *Schedule {
	s := &Schedule{filtered: make(map[string][]model.Entry)}
	if list == nil {
		return s
	}

	s.eventName = list.EventName
	s.eventDate = list.EventDate
	s.entries = SortedCopy(list.Entries)

	s.classes = make([]model.ClassStart, 0, len(list.Classes))
	for _, cls := range list.Classes {
		s.classes = append(s.classes, model.ClassStart{
			ClassName: cls.ClassName,
			Entries:   SortedCopy(cls.Entries),
		})
	}

	if len(list.StartGroups) > 0 {
		s.groups = append([]string(nil), list.StartGroups...)
	} else {
		s.groups = collectGroups(s.entries)
	}
	sort.Strings(s.groups)
	return s
}

// FromEntries builds an unnamed schedule straight from entries
func FromEntries(entries []model.Entry) *Schedule {
	return New(&model.StartList{Entries: entries})
}

// SortedCopy returns entries stable-sorted by start time
func SortedCopy(entries []model.Entry) []model.Entry {
	out := append([]model.Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func collectGroups(entries []model.Entry) []string {
	seen := make(map[string]struct{})
	groups := make([]string, 0)
	for _, e := range entries {
		if e.StartGroup == "" {
			continue
		}
		if _, ok := seen[e.StartGroup]; ok {
			continue
		}
		seen[e.StartGroup] = struct{}{}
		groups = append(groups, e.StartGroup)
	}
	return groups
}

// EventName returns the event title
func (s *Schedule) EventName() string { return s.eventName }

// EventDate returns the event date
func (s *Schedule) EventDate() time.Time { return s.eventDate }

// Len returns the number of entries
func (s *Schedule) Len() int { return len(s.entries) }

// All returns the full time-sorted sequence. Callers must not modify it.
func (s *Schedule) All() []model.Entry {
	return s.entries
}

// FilteredBy returns entries whose start group equals group, in schedule
// order. An empty group returns the full sequence. Views are computed once.
func (s *Schedule) FilteredBy(group string) []model.Entry {
	if group == "" {
		return s.entries
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if view, ok := s.filtered[group]; ok {
		return view
	}
	view := make([]model.Entry, 0)
	for _, e := range s.entries {
		if e.StartGroup == group {
			view = append(view, e)
		}
	}
	s.filtered[group] = view
	return view
}

// Groups returns the sorted distinct start group labels
func (s *Schedule) Groups() []string {
	return append([]string(nil), s.groups...)
}

// Classes returns per-class entry lists, each sorted by start time
func (s *Schedule) Classes() []model.ClassStart {
	return s.classes
}

// Earliest returns the first start time of the full schedule
func (s *Schedule) Earliest() (time.Time, bool) {
	if len(s.entries) == 0 {
		return time.Time{}, false
	}
	return s.entries[0].StartTime, true
}

// NextGroup cycles through "" (all) and each group label in order
func (s *Schedule) NextGroup(current string) string {
	if len(s.groups) == 0 {
		return ""
	}
	if current == "" {
		return s.groups[0]
	}
	for i, g := range s.groups {
		if g == current {
			if i+1 < len(s.groups) {
				return s.groups[i+1]
			}
			return ""
		}
	}
	return ""
}

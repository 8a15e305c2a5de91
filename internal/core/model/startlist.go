package model

import (
	"time"
)

// Entry is one competitor's scheduled start. Values are never mutated after
// the loader builds them.
type Entry struct {
	PersonName   string    `json:"personName"`
	Organisation string    `json:"organisation"`
	BibNumber    string    `json:"bibNumber"`
	ControlCard  string    `json:"controlCard"`
	StartTime    time.Time `json:"startTime"`
	ClassName    string    `json:"className"`
	StartGroup   string    `json:"startName"` // start location label, e.g. "Start 1"
}

// ClassStart groups the entries of one competition class
type ClassStart struct {
	ClassName string  `json:"className"`
	Entries   []Entry `json:"competitors"`
}

// StartList is the parsed start list of one event
type StartList struct {
	EventName   string       `json:"eventName"`
	EventDate   time.Time    `json:"eventDate"`
	Classes     []ClassStart `json:"classes"`
	Entries     []Entry      `json:"allCompetitors"` // sorted by start time
	StartGroups []string     `json:"startNames"`     // sorted, distinct
}

// Names returns the person names of entries in order
func Names(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.PersonName)
	}
	return names
}

// Package startlist loads IOF XML 3.0 start lists from a URL or a file.
package startlist

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/core/schedule"
	"github.com/penwyp/go-start-clock/internal/util"
	"golang.org/x/net/html/charset"
)

const (
	unknownEvent = "Unknown Event"
	unknownClass = "Unknown"
)

// Only the parts of the IOF 3.0 StartList document the clock shows are
// mapped.
type iofStartList struct {
	XMLName     xml.Name        `xml:"StartList"`
	Event       iofEvent        `xml:"Event"`
	ClassStarts []iofClassStart `xml:"ClassStart"`
}

type iofEvent struct {
	Name      string `xml:"Name"`
	StartTime struct {
		Date string `xml:"Date"`
	} `xml:"StartTime"`
}

type iofClassStart struct {
	ClassName    string           `xml:"Class>Name"`
	StartName    string           `xml:"StartName"`
	PersonStarts []iofPersonStart `xml:"PersonStart"`
}

type iofPersonStart struct {
	Given        string `xml:"Person>Name>Given"`
	Family       string `xml:"Person>Name>Family"`
	Organisation string `xml:"Organisation>Name"`
	Start        struct {
		StartTime   string `xml:"StartTime"`
		BibNumber   string `xml:"BibNumber"`
		ControlCard string `xml:"ControlCard"`
	} `xml:"Start"`
}

// ParseOptions controls how times without a zone and missing dates resolve
type ParseOptions struct {
	// Location applies to start times that carry no UTC offset
	Location *time.Location
	// Today is used as the event date when the document has none
	Today time.Time
}

// Parse decodes an IOF XML 3.0 StartList document. PersonStarts without a
// usable start time are skipped.
func Parse(data []byte, opts ParseOptions) (*model.StartList, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Today.IsZero() {
		opts.Today = time.Now()
	}

	var doc iofStartList
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode IOF XML: %w", err)
	}

	list := &model.StartList{
		EventName: strings.TrimSpace(doc.Event.Name),
		EventDate: parseEventDate(doc.Event.StartTime.Date, opts),
	}
	if list.EventName == "" {
		list.EventName = unknownEvent
	}

	groups := make(map[string]struct{})
	classIndex := make(map[string]int)

	for _, cs := range doc.ClassStarts {
		className := strings.TrimSpace(cs.ClassName)
		if className == "" {
			className = unknownClass
		}
		startName := strings.TrimSpace(cs.StartName)
		if startName != "" {
			groups[startName] = struct{}{}
		}

		for _, ps := range cs.PersonStarts {
			raw := strings.TrimSpace(ps.Start.StartTime)
			if raw == "" {
				continue
			}
			startTime, err := parseStartTime(raw, opts.Location)
			if err != nil {
				util.LogWarnf("Skipping start in class %s: %v", className, err)
				continue
			}

			entry := model.Entry{
				PersonName:   strings.TrimSpace(strings.TrimSpace(ps.Given) + " " + strings.TrimSpace(ps.Family)),
				Organisation: strings.TrimSpace(ps.Organisation),
				BibNumber:    strings.TrimSpace(ps.Start.BibNumber),
				ControlCard:  strings.TrimSpace(ps.Start.ControlCard),
				StartTime:    startTime,
				ClassName:    className,
				StartGroup:   startName,
			}

			idx, ok := classIndex[className]
			if !ok {
				idx = len(list.Classes)
				classIndex[className] = idx
				list.Classes = append(list.Classes, model.ClassStart{ClassName: className})
			}
			list.Classes[idx].Entries = append(list.Classes[idx].Entries, entry)
			list.Entries = append(list.Entries, entry)
		}
	}

	list.Entries = schedule.SortedCopy(list.Entries)
	for i := range list.Classes {
		list.Classes[i].Entries = schedule.SortedCopy(list.Classes[i].Entries)
	}

	list.StartGroups = make([]string, 0, len(groups))
	for g := range groups {
		list.StartGroups = append(list.StartGroups, g)
	}
	sort.Strings(list.StartGroups)

	return list, nil
}

var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseStartTime(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start time %q", raw)
}

func parseEventDate(raw string, opts ParseOptions) time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if t, err := time.ParseInLocation(time.DateOnly, raw, opts.Location); err == nil {
			return t
		}
	}
	y, m, d := opts.Today.In(opts.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, opts.Location)
}

package formatter

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/penwyp/go-start-clock/internal/core/model"
)

// ClassSummary aggregates the starts of one class
type ClassSummary struct {
	ClassName string
	Count     int
	First     time.Time
	Last      time.Time
	Groups    []string
}

// SummaryFormatter prints one row per class: how many start and when
type SummaryFormatter struct {
	w io.Writer
}

func NewSummaryFormatter(w io.Writer) *SummaryFormatter {
	return &SummaryFormatter{w: w}
}

func (f *SummaryFormatter) Format(listing Listing) error {
	summaries := Summarize(listing.Entries)

	t := newTable(f.w, listing)
	t.AppendHeader(table.Row{"Class", "Starters", "First start", "Last start", "Start group"})

	total := 0
	for _, s := range summaries {
		t.AppendRow(table.Row{s.ClassName, s.Count, formatStart(s.First), formatStart(s.Last), strings.Join(s.Groups, ", ")})
		total += s.Count
	}

	first, last := "", ""
	if len(listing.Entries) > 0 {
		first = formatStart(listing.Entries[0].StartTime)
		last = formatStart(listing.Entries[len(listing.Entries)-1].StartTime)
	}
	t.AppendFooter(table.Row{"Total", total, first, last, ""})
	t.Render()
	return nil
}

// Summarize groups entries by class, ordered by first start then name
func Summarize(entries []model.Entry) []ClassSummary {
	index := make(map[string]int)
	var out []ClassSummary
	groupSeen := make(map[string]map[string]struct{})

	for _, e := range entries {
		i, ok := index[e.ClassName]
		if !ok {
			i = len(out)
			index[e.ClassName] = i
			out = append(out, ClassSummary{ClassName: e.ClassName, First: e.StartTime, Last: e.StartTime})
			groupSeen[e.ClassName] = make(map[string]struct{})
		}
		s := &out[i]
		s.Count++
		if e.StartTime.Before(s.First) {
			s.First = e.StartTime
		}
		if e.StartTime.After(s.Last) {
			s.Last = e.StartTime
		}
		if _, seen := groupSeen[e.ClassName][e.StartGroup]; !seen && e.StartGroup != "" {
			groupSeen[e.ClassName][e.StartGroup] = struct{}{}
			s.Groups = append(s.Groups, e.StartGroup)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].First.Equal(out[j].First) {
			return out[i].First.Before(out[j].First)
		}
		return out[i].ClassName < out[j].ClassName
	})
	for i := range out {
		sort.Strings(out[i].Groups)
	}
	return out
}

package formatter

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/penwyp/go-start-clock/internal/util"
)

var entryHeader = table.Row{"Start", "Name", "Class", "Club", "Bib", "Card", "Start group"}

type TableFormatter struct {
	w io.Writer
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{w: w}
}

// Format prints one row per entry with a separator between start times
func (f *TableFormatter) Format(listing Listing) error {
	t := newTable(f.w, listing)
	t.AppendHeader(entryHeader)

	for i, e := range listing.Entries {
		if i > 0 && !e.StartTime.Equal(listing.Entries[i-1].StartTime) {
			t.AppendSeparator()
		}
		t.AppendRow(table.Row{
			formatStart(e.StartTime),
			e.PersonName,
			e.ClassName,
			e.Organisation,
			e.BibNumber,
			e.ControlCard,
			e.StartGroup,
		})
	}

	t.AppendFooter(table.Row{"Total", util.Pluralize(len(listing.Entries), "starter", "starters")})
	t.Render()
	return nil
}

func newTable(w io.Writer, listing Listing) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle(title(listing))
	return t
}

func title(listing Listing) string {
	date := ""
	if !listing.EventDate.IsZero() {
		date = listing.EventDate.Format("2006-01-02")
	}
	heading := util.JoinNonEmpty(" · ", listing.EventName, date)
	if listing.StartGroup != "" {
		heading = fmt.Sprintf("%s (%s)", heading, listing.StartGroup)
	}
	return heading
}

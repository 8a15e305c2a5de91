package layout

import (
	"fmt"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
)

// CompactLayoutStrategy draws a plain countdown and one line per starter,
// for small terminals
type CompactLayoutStrategy struct {
	BaseStrategy
}

func (s *CompactLayoutStrategy) GetName() string {
	return "Compact Clock"
}

func (s *CompactLayoutStrategy) Render(view *model.ClockView, param model.LayoutParam) []string {
	width := param.Width
	sizer := s.GetSizer()

	lines := []string{s.HeaderLine(view, width)}

	if !view.Snapshot.HasPending() {
		lines = append(lines, s.EmptyLines(view, width)...)
		return append(lines, s.KeysLine(view, width))
	}

	countdown := util.Colorize(CountdownColor(view.Snapshot)+util.ColorBold, CountdownText(view.Snapshot))
	lines = append(lines, fmt.Sprintf("%s  → %s  (%s)",
		countdown, util.FormatClock(view.Snapshot.Key), util.Pluralize(len(view.Snapshot.Cohort), "starter", "starters")))

	// leave room for header, countdown and keys
	room := param.Height - 3
	if banner := s.AudioBanner(view, width); banner != "" {
		room--
	}
	for i, e := range view.Snapshot.Cohort {
		if room > 0 && i >= room-1 && i < len(view.Snapshot.Cohort)-1 {
			lines = append(lines, util.Colorize(util.ColorGray, fmt.Sprintf("  … and %d more", len(view.Snapshot.Cohort)-i)))
			break
		}
		lines = append(lines, sizer.Fit("  "+util.JoinNonEmpty("  ", e.PersonName, EntryDetail(e), e.Organisation), width))
	}

	if banner := s.AudioBanner(view, width); banner != "" {
		lines = append(lines, banner)
	}
	return append(lines, s.KeysLine(view, width))
}

package layout

import (
	"fmt"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
)

// FullLayoutStrategy draws the big countdown with the cohort as cards
type FullLayoutStrategy struct {
	BaseStrategy
}

func (s *FullLayoutStrategy) GetName() string {
	return "Full Clock"
}

func (s *FullLayoutStrategy) Render(view *model.ClockView, param model.LayoutParam) []string {
	width := param.Width
	sizer := s.GetSizer()

	lines := []string{
		s.HeaderLine(view, width),
		s.InfoLine(view, width),
		util.FormatSectionSeparator(width),
		"",
	}

	if !view.Snapshot.HasPending() {
		lines = append(lines, s.EmptyLines(view, width)...)
		lines = append(lines, "", util.FormatSectionSeparator(width))
		return s.footer(lines, view, width)
	}

	text := CountdownText(view.Snapshot)
	color := CountdownColor(view.Snapshot)
	if BigTextWidth(text) <= width {
		for _, row := range BigText(text) {
			lines = append(lines, util.Colorize(color+util.ColorBold, sizer.Center(row, width)))
		}
	} else {
		lines = append(lines, util.Colorize(color+util.ColorBold, sizer.Center(text, width)))
	}
	if view.CueFiring {
		lines = append(lines, util.Colorize(util.ColorRed, sizer.Center("♪ start signal", width)))
	} else {
		lines = append(lines, "")
	}

	lines = append(lines,
		util.FormatSectionSeparator(width),
		fmt.Sprintf("Starting at %s · %s", util.FormatClock(view.Snapshot.Key), util.Pluralize(len(view.Snapshot.Cohort), "starter", "starters")),
		"",
	)
	lines = append(lines, s.RosterLines(view.Snapshot.Cohort, width)...)
	lines = append(lines, util.FormatSectionSeparator(width))
	return s.footer(lines, view, width)
}

func (s *FullLayoutStrategy) footer(lines []string, view *model.ClockView, width int) []string {
	if banner := s.AudioBanner(view, width); banner != "" {
		lines = append(lines, banner)
	}
	return append(lines, s.KeysLine(view, width))
}

package layout

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
)

const columnGap = 3

// BaseStrategy provides common functionality for all layout strategies
type BaseStrategy struct {
}

// GetSizer returns the shared sizer instance
func (b *BaseStrategy) GetSizer() *Sizer {
	return sharedSizer
}

// RosterColumns picks the roster grid width: one column up to three
// starters, two up to six, three beyond.
func RosterColumns(count int) int {
	switch {
	case count > 6:
		return 3
	case count > 3:
		return 2
	default:
		return 1
	}
}

// HeaderLine shows the event name on the left and the clock on the right
func (b *BaseStrategy) HeaderLine(view *model.ClockView, width int) string {
	clock := util.FormatClock(view.Snapshot.Now)
	right := clock
	rightPlain := clock
	if view.Snapshot.Simulated {
		right = util.FormatBadge("SIMULATION") + " " + clock
		rightPlain = " SIMULATION  " + clock
	}

	name := view.EventName
	if name == "" {
		name = "Start clock"
	}
	leftWidth := width - util.GetDisplayWidth(rightPlain) - 1
	left := b.GetSizer().Fit(name, leftWidth)
	return util.FormatHeaderTitle(left) + " " + right
}

// InfoLine shows the next start time, the start group and progress
func (b *BaseStrategy) InfoLine(view *model.ClockView, width int) string {
	next := "--:--:--"
	if view.Snapshot.HasPending() {
		next = util.FormatClock(view.Snapshot.Key)
	}
	group := view.StartGroup
	if group == "" {
		group = "All starts"
	}
	line := util.JoinNonEmpty("   ",
		"Next start "+next,
		"Group: "+group,
		fmt.Sprintf("Started %d/%d", view.Started, view.TotalStarts),
	)
	return b.GetSizer().Fit(line, width)
}

// CountdownText is the countdown label for the current snapshot
func CountdownText(snap model.Snapshot) string {
	if snap.SecondsRemaining == nil {
		return ""
	}
	return util.FormatCountdown(*snap.SecondsRemaining)
}

// CountdownColor maps the snapshot to the countdown color
func CountdownColor(snap model.Snapshot) string {
	if snap.SecondsRemaining == nil || *snap.SecondsRemaining < 0 {
		return util.ColorGreen
	}
	return util.CountdownColor(*snap.SecondsRemaining)
}

// RosterLines lays the cohort out as cards in a 1/2/3 column grid
func (b *BaseStrategy) RosterLines(cohort []model.Entry, width int) []string {
	if len(cohort) == 0 {
		return nil
	}
	cols := RosterColumns(len(cohort))
	colWidth := (width - columnGap*(cols-1)) / cols
	if colWidth < 10 {
		cols, colWidth = 1, width
	}

	sizer := b.GetSizer()
	gap := strings.Repeat(" ", columnGap)
	var lines []string
	for start := 0; start < len(cohort); start += cols {
		end := start + cols
		if end > len(cohort) {
			end = len(cohort)
		}
		var nameRow, detailRow, clubRow []string
		for _, e := range cohort[start:end] {
			nameRow = append(nameRow, util.Colorize(util.ColorBold, sizer.Fit(e.PersonName, colWidth)))
			detailRow = append(detailRow, sizer.Fit(EntryDetail(e), colWidth))
			clubRow = append(clubRow, util.Colorize(util.ColorGray, sizer.Fit(e.Organisation, colWidth)))
		}
		lines = append(lines,
			strings.TrimRight(strings.Join(nameRow, gap), " "),
			strings.TrimRight(strings.Join(detailRow, gap), " "),
			strings.TrimRight(strings.Join(clubRow, gap), " "),
			"",
		)
	}
	return lines
}

// EntryDetail joins class, bib and control card, e.g. "H21 · #102 · 8123456"
func EntryDetail(e model.Entry) string {
	bib := ""
	if e.BibNumber != "" {
		bib = "#" + e.BibNumber
	}
	return util.JoinNonEmpty(" · ", e.ClassName, bib, e.ControlCard)
}

// KeysLine lists the shortcuts available in the current mode
func (b *BaseStrategy) KeysLine(view *model.ClockView, width int) string {
	var parts []string
	if view.Snapshot.Simulated {
		keys := []string{"1", "3", "6"}
		for i, step := range view.SkipSteps {
			if i >= len(keys) {
				break
			}
			parts = append(parts, fmt.Sprintf("[%s] %s", keys[i], util.FormatSkip(int(step.Seconds()))))
		}
	}
	if !view.AudioEnabled {
		parts = append(parts, "[a] audio")
	}
	parts = append(parts, "[g] group", "[r] reload", "[t] layout", "[h] help", "[q] quit")
	return util.Colorize(util.ColorGray, b.GetSizer().Fit(strings.Join(parts, "  "), width))
}

// AudioBanner warns that cues will be silent until audio is enabled
func (b *BaseStrategy) AudioBanner(view *model.ClockView, width int) string {
	if view.AudioEnabled {
		return ""
	}
	return util.Colorize(util.ColorYellow, b.GetSizer().Fit("🔇 Audio is not enabled. Press 'a' to enable start beeps and announcements.", width))
}

// EmptyLines is shown when nothing is left to start in the current view
func (b *BaseStrategy) EmptyLines(view *model.ClockView, width int) []string {
	sizer := b.GetSizer()
	if !view.Loaded {
		return []string{
			sizer.Center("No start list loaded", width),
			sizer.Center("Run with --source <url|file> or --example", width),
		}
	}
	return []string{
		util.Colorize(util.ColorBold, sizer.Center("No upcoming starts", width)),
		sizer.Center(fmt.Sprintf("All %s in this view have started", util.Pluralize(view.TotalStarts, "starter", "starters")), width),
	}
}

package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/constants"
	"github.com/penwyp/go-start-clock/internal/core/cue"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/core/schedule"
	"github.com/penwyp/go-start-clock/internal/core/starters"
	"github.com/penwyp/go-start-clock/internal/presentation/layout"
	"github.com/penwyp/go-start-clock/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Next command flags
	nextAt     string
	nextPrefix string
)

var nextCmd = &cobra.Command{
	Use:    "next",
	Short:  "Debug command to print the next cohort and its announcement",
	Long:   `Selects the next starters at a given time and prints the countdown, the cue time and the text that would be announced, without the UI.`,
	Hidden: true, // Hidden from help
	RunE:   runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)

	nextCmd.Flags().StringVar(&nextAt, "at", "",
		"Evaluate at this time: HH:MM:SS on the event date, or RFC3339 (default now)")
	nextCmd.Flags().StringVar(&nextPrefix, "prefix", cue.DefaultAnnouncementPrefix,
		"Announcement prefix")
}

func runNext(cmd *cobra.Command, args []string) error {
	settings, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	list, err := resolveStartList(ctx, settings)
	if err != nil {
		return err
	}
	sched := schedule.New(list)
	entries, err := filterGroup(sched, settings.StartGroup)
	if err != nil {
		return err
	}

	at := time.Now()
	if nextAt != "" {
		at, err = parseAt(nextAt, sched.EventDate(), util.GetTimeProvider().Location())
		if err != nil {
			return err
		}
	}

	printNext(cmd.OutOrStdout(), sched, entries, at, nextPrefix)
	return nil
}

// parseAt reads a wall clock time on the event date, or a full timestamp
func parseAt(value string, date time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	clock, err := time.ParseInLocation(time.TimeOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: want HH:MM:SS or RFC3339", value)
	}
	if date.IsZero() {
		date = time.Now()
	}
	date = date.In(loc)
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, loc), nil
}

func printNext(w io.Writer, sched *schedule.Schedule, entries []model.Entry, at time.Time, prefix string) {
	const width = 60
	fmt.Fprintln(w, util.FormatSectionSeparator(width))
	fmt.Fprintln(w, util.FormatHeaderTitle("=== Next Starters ==="))
	fmt.Fprintf(w, "Event: %s (%s)\n", sched.EventName(), sched.EventDate().Format(time.DateOnly))
	fmt.Fprintf(w, "Time:  %s\n", util.FormatClock(at))
	fmt.Fprintln(w, util.FormatSectionSeparator(width))

	res := starters.Select(entries, at)
	if res.Empty() {
		fmt.Fprintln(w, "No upcoming starts")
		fmt.Fprintln(w, util.FormatSectionSeparator(width))
		return
	}

	fmt.Fprintf(w, "Next start: %s (in %s, %s)\n", util.FormatClock(res.Key),
		util.FormatCountdown(*res.SecondsRemaining), util.Pluralize(len(res.Cohort), "starter", "starters"))
	for _, e := range res.Cohort {
		fmt.Fprintf(w, "  %s\n", util.JoinNonEmpty("   ", e.PersonName, layout.EntryDetail(e), e.Organisation))
	}
	fmt.Fprintln(w, util.FormatSectionSeparator(width))

	fmt.Fprintf(w, "Cue fires at: %s\n", util.FormatClock(res.Key.Add(-constants.TriggerThreshold*time.Second)))
	if next := starters.NextAfter(entries, res.Key); len(next) > 0 {
		fmt.Fprintf(w, "Announcement: %q\n", cue.Announcement(prefix, next))
	} else {
		fmt.Fprintln(w, "Announcement: none (last start)")
	}
	fmt.Fprintln(w, util.FormatSectionSeparator(width))
}

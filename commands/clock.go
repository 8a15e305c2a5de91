package commands

import (
	"fmt"

	"github.com/penwyp/go-start-clock/internal/application/startclock"
	"github.com/penwyp/go-start-clock/internal/data/store"
	"github.com/penwyp/go-start-clock/internal/presentation/layout"
	"github.com/penwyp/go-start-clock/internal/speech"
	"github.com/penwyp/go-start-clock/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Mode flags
	clockSimulate bool
	clockWatch    bool

	// Display flags
	clockLayout string

	// Speech flags
	clockLanguage      string
	clockRate          float64
	clockSpeechCommand string
	clockPrefix        string
)

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Run the full-screen start clock",
	Long: `Shows a live countdown to the next start with the competitors due to
start, plays the start signal five seconds before each start and then
announces the following starters.

Simulation mode (the default) starts the clock one minute before the first
start of the list; use 1/3/6 to skip ahead. Press 'a' to enable audio,
'h' for all keys.`,
	SilenceUsage: true,
	RunE:         runClock,
}

func init() {
	rootCmd.AddCommand(clockCmd)

	// Mode flags
	clockCmd.Flags().BoolVar(&clockSimulate, "simulate", true,
		"Run on a simulated clock starting one minute before the first start")
	clockCmd.Flags().BoolVar(&clockWatch, "watch", true,
		"Reload a local start list file when it changes")

	// Display flags
	clockCmd.Flags().StringVar(&clockLayout, "layout", "full",
		"Layout style (full, compact)")

	// Speech flags
	clockCmd.Flags().StringVar(&clockLanguage, "lang", speech.DefaultLanguage,
		"Announcement voice language")
	clockCmd.Flags().Float64Var(&clockRate, "rate", speech.DefaultRate,
		"Announcement speech rate (1.0 = normal)")
	clockCmd.Flags().StringVar(&clockSpeechCommand, "speech-command", "",
		"Speech synthesizer (espeak-ng, espeak, say, spd-say); default is the first found")
	clockCmd.Flags().StringVar(&clockPrefix, "prefix", "",
		"Text spoken before the next starters' names")
}

func runClock(cmd *cobra.Command, args []string) error {
	settings, err := setup(cmd)
	if err != nil {
		return err
	}
	file := settings.File

	layoutStyle, err := parseLayout(flagOr(cmd, "layout", clockLayout, file.Layout))
	if err != nil {
		return err
	}
	skipSteps, err := file.ParseSkipSteps()
	if err != nil {
		return err
	}

	rate := clockRate
	if !cmd.Flags().Changed("rate") && file.Speech.Rate > 0 {
		rate = file.Speech.Rate
	}

	config := &startclock.ClockConfig{
		Source:             settings.Source,
		StartGroup:         settings.StartGroup,
		Simulate:           resolveSimulate(cmd, settings),
		WatchFile:          clockWatch,
		StateDir:           settings.StateDir,
		Timezone:           settings.Timezone,
		TimeFormat:         settings.TimeFormat,
		LayoutStyle:        layoutStyle,
		SkipSteps:          skipSteps,
		Language:           flagOr(cmd, "lang", clockLanguage, file.Speech.Language),
		SpeechRate:         rate,
		SpeechCommand:      flagOr(cmd, "speech-command", clockSpeechCommand, file.Speech.Command),
		AnnouncementPrefix: flagOr(cmd, "prefix", clockPrefix, file.Speech.Prefix),
	}

	orchestrator, err := startclock.NewOrchestrator(config, startclock.Dependencies{})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return orchestrator.Run(ctx)
}

// resolveSimulate picks the mode from the flag when given, else the config
// file, else the last saved choice. An explicit flag is remembered.
func resolveSimulate(cmd *cobra.Command, settings *Settings) bool {
	st, err := store.NewFileStore(settings.StateDir)
	if err != nil {
		return clockSimulate
	}

	if cmd.Flags().Changed("simulate") {
		simulate := clockSimulate
		_ = st.Update(func(s *store.State) { s.Simulation = &simulate })
		return simulate
	}
	if settings.File.Simulate != nil {
		return *settings.File.Simulate
	}
	if saved, _ := st.Load(); saved != nil && saved.Simulation != nil {
		util.LogDebugf("Using saved simulation setting: %v", *saved.Simulation)
		return *saved.Simulation
	}
	return clockSimulate
}

func parseLayout(name string) (int, error) {
	switch name {
	case "", "full":
		return layout.StyleFull, nil
	case "compact":
		return layout.StyleCompact, nil
	default:
		return 0, fmt.Errorf("invalid layout %q: must be either 'full' or 'compact'", name)
	}
}

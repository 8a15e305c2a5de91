package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/core/schedule"
	"github.com/penwyp/go-start-clock/internal/data/startlist"
	"github.com/penwyp/go-start-clock/internal/data/store"
	"github.com/penwyp/go-start-clock/internal/presentation/formatter"
	"github.com/penwyp/go-start-clock/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Start list source
	source     string
	useExample bool
	configPath string
	stateDir   string

	// Display related
	timezone   string
	timeFormat string

	// Output related
	outputFormat string
	startGroup   string
	upcomingOnly bool
	reset        bool

	rootCmd = &cobra.Command{
		Use:   "go-start-clock [flags]",
		Short: "Start clock for orienteering events",
		Long: `go-start-clock loads an IOF XML 3.0 start list and prints it, or runs a
full-screen start clock that counts down to each start, beeps the start
signal and announces the next starters.

Examples:
  go-start-clock --example                               # Print the example start list
  go-start-clock --source startlist.xml --output json    # Print a local file as JSON
  go-start-clock --source https://host/startlist.xml --start-group "Start 1"
  go-start-clock --upcoming --output summary             # Per-class summary of starts still ahead
  go-start-clock clock --example                         # Run the clock in simulation mode
  go-start-clock clock --source startlist.xml --simulate=false`,
		SilenceUsage: true,
		RunE:         runList,
	}
)

const (
	defaultLogFile = "~/.go-start-clock/logs/app.log"
)

func init() {
	// Source configuration
	rootCmd.PersistentFlags().StringVarP(&source, "source", "s", "",
		"Start list URL or file (IOF XML 3.0); defaults to the cached list")
	rootCmd.PersistentFlags().BoolVar(&useExample, "example", false,
		"Use the example start list")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default $XDG_CONFIG_HOME/go-start-clock/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "",
		"Directory for saved state (default $XDG_STATE_HOME/go-start-clock)")
	rootCmd.PersistentFlags().StringVarP(&startGroup, "start-group", "g", "",
		"Only show one start group (IOF StartName), e.g. \"Start 1\"")

	// Display configuration
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone setting (e.g., Europe/Helsinki, UTC)")
	rootCmd.PersistentFlags().StringVar(&timeFormat, "time-format", "24h",
		"Time format (12h or 24h)")

	// Output configuration
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	rootCmd.Flags().StringVar(&outputFormat, "format", "",
		"Alias for --output")
	rootCmd.Flags().BoolVar(&upcomingOnly, "upcoming", false,
		"Only list starts that have not happened yet")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&reset, "reset", "r", false,
		"Clear saved state before starting")
}

func runList(cmd *cobra.Command, args []string) error {
	// Handle format alias
	if format := cmd.Flags().Lookup("format"); format != nil && format.Changed {
		outputFormat = format.Value.String()
	}
	out, err := formatter.New(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}

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
	if upcomingOnly {
		entries = upcoming(entries, time.Now())
	}

	return out.Format(formatter.Listing{
		EventName:  sched.EventName(),
		EventDate:  sched.EventDate(),
		StartGroup: settings.StartGroup,
		Entries:    entries,
	})
}

// setup initializes logging, the time provider and saved state handling
// shared by every command
func setup(cmd *cobra.Command) (*Settings, error) {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(defaultLogFile)
	ensureDir(filepath.Dir(logFile))
	if err := util.InitLogger(logLevel, logFile, debug); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	settings, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}

	if settings.TimeFormat != "12h" && settings.TimeFormat != "24h" {
		return nil, fmt.Errorf("invalid time format '%s': must be either '12h' or '24h'", settings.TimeFormat)
	}
	if err := util.InitializeTimeProvider(settings.Timezone, settings.TimeFormat); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}

	if reset {
		if err := clearState(settings.StateDir); err != nil {
			return nil, fmt.Errorf("failed to clear saved state: %w", err)
		}
		util.LogInfo("Saved state cleared")
	}
	return settings, nil
}

// resolveStartList loads the configured source, or falls back to the
// cached list when no source is given
func resolveStartList(ctx context.Context, settings *Settings) (*model.StartList, error) {
	st, err := store.NewFileStore(settings.StateDir)
	if err != nil {
		util.LogWarnf("Running without saved state: %v", err)
	}

	if settings.Source == "" {
		if st != nil {
			if saved, _ := st.Load(); saved != nil && saved.CachedStartList != nil {
				util.LogInfof("Using cached start list from %s", saved.SourceURL)
				return saved.CachedStartList, nil
			}
		}
		return nil, fmt.Errorf("no start list: use --source <url|file> or --example")
	}

	loader := startlist.NewLoader(startlist.WithLocation(util.GetTimeProvider().Location()))
	list, err := loader.Load(ctx, settings.Source)
	if err != nil {
		return nil, err
	}
	if st != nil {
		_ = store.SaveStartList(st, list, settings.Source, time.Now())
	}
	return list, nil
}

// filterGroup returns the entries of one start group, or all of them
func filterGroup(sched *schedule.Schedule, group string) ([]model.Entry, error) {
	if group == "" {
		return sched.All(), nil
	}
	if !slices.Contains(sched.Groups(), group) {
		return nil, fmt.Errorf("unknown start group %q (available: %s)", group, strings.Join(sched.Groups(), ", "))
	}
	return sched.FilteredBy(group), nil
}

// upcoming drops entries whose start is not after now
func upcoming(entries []model.Entry, now time.Time) []model.Entry {
	kept := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.StartTime.After(now) {
			kept = append(kept, e)
		}
	}
	return kept
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// clearState removes the saved state file
func clearState(dir string) error {
	st, err := store.NewFileStore(dir)
	if err != nil {
		return err
	}
	return st.Clear()
}

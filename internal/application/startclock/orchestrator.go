// Package startclock runs the live clock view: the tick loop, keyboard
// actions and the cue trigger, wired to the terminal display.
package startclock

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-start-clock/internal/audio"
	"github.com/penwyp/go-start-clock/internal/core/clock"
	"github.com/penwyp/go-start-clock/internal/core/cue"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/core/schedule"
	"github.com/penwyp/go-start-clock/internal/core/starters"
	"github.com/penwyp/go-start-clock/internal/data/startlist"
	"github.com/penwyp/go-start-clock/internal/data/store"
	"github.com/penwyp/go-start-clock/internal/data/watcher"
	"github.com/penwyp/go-start-clock/internal/presentation/display"
	"github.com/penwyp/go-start-clock/internal/presentation/interaction"
	"github.com/penwyp/go-start-clock/internal/presentation/layout"
	"github.com/penwyp/go-start-clock/internal/speech"
	"github.com/penwyp/go-start-clock/internal/util"
)

// Dependencies lets callers replace any collaborator. Nil fields get the
// real implementation.
type Dependencies struct {
	Host     clockwork.Clock
	Clock    *clock.VirtualClock
	Source   ScheduleSource
	Store    store.Store
	Audio    AudioOutput
	Speech   SpeechOutput
	Display  DisplayController
	Keyboard InputHandler
	Watcher  FileMonitor
}

type reloadResult struct {
	list   *model.StartList
	source string
	err    error
}

// Orchestrator coordinates all components for the clock command
type Orchestrator struct {
	config *ClockConfig

	host         clockwork.Clock
	clock        *clock.VirtualClock
	dataLoader   *DataLoader
	stateManager *StateManager

	audio    AudioOutput
	speech   SpeechOutput
	display  DisplayController
	keyboard InputHandler
	watcher  FileMonitor

	sequence *cue.Sequence
	trigger  *cue.Trigger

	// Owned by the loop goroutine
	schedule    *schedule.Schedule
	loaded      bool
	source      string
	group       string
	view        []model.Entry
	cursor      *starters.Cursor
	statusUntil time.Time
	reloading   bool

	speechSupported bool
	audioEnabled    atomic.Bool
	reloads         chan reloadResult
	closeOnce       sync.Once
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(config *ClockConfig, deps Dependencies) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := util.InitializeTimeProvider(config.Timezone, config.TimeFormat); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}

	if deps.Host == nil {
		deps.Host = clockwork.NewRealClock()
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewVirtualClock(deps.Host)
	}
	if deps.Source == nil {
		deps.Source = startlist.NewLoader(
			startlist.WithLocation(util.GetTimeProvider().Location()),
			startlist.WithTimeout(config.LoadTimeout),
			startlist.WithNow(deps.Host.Now),
		)
	}
	if deps.Store == nil {
		fileStore, err := store.NewFileStore(config.StateDir)
		if err != nil {
			util.LogWarnf("Running without saved state: %v", err)
		} else {
			deps.Store = fileStore
		}
	}
	if deps.Audio == nil {
		deps.Audio = audio.NewDefaultPlayer()
	}
	if deps.Speech == nil {
		deps.Speech = speech.New(speech.Config{
			Command:  config.SpeechCommand,
			Language: config.Language,
			Rate:     config.SpeechRate,
		})
	}
	if deps.Display == nil {
		deps.Display = display.NewTerminalDisplay(nil)
	}

	stateManager := NewStateManager()
	stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.LayoutStyle = config.LayoutStyle
	})

	return &Orchestrator{
		config:       config,
		host:         deps.Host,
		clock:        deps.Clock,
		dataLoader:   NewDataLoader(deps.Source, deps.Store, deps.Host.Now),
		stateManager: stateManager,
		audio:        deps.Audio,
		speech:       deps.Speech,
		display:      deps.Display,
		keyboard:     deps.Keyboard,
		watcher:      deps.Watcher,
		sequence: cue.NewSequence(deps.Audio, deps.Speech, deps.Host, cue.SequenceConfig{
			AnnouncementDelay:  config.AnnouncementDelay,
			AnnouncementPrefix: config.AnnouncementPrefix,
		}),
		cursor:  starters.NewCursor(nil),
		reloads: make(chan reloadResult, 1),
	}, nil
}

// Run starts the orchestrator main loop. It returns nil when the user quits
// or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting start clock...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer o.Close()

	if o.keyboard == nil {
		keyboard, err := interaction.NewKeyboardReader()
		if err != nil {
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
		o.keyboard = keyboard
	}

	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	if err := o.start(ctx); err != nil {
		return err
	}

	ticker := o.host.NewTicker(o.config.TickInterval)
	defer ticker.Stop()

	o.tick()
	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down start clock...")
			return nil

		case <-ticker.Chan():
			o.tick()

		case res := <-o.reloads:
			o.applyReload(res)
			o.tick()

		case event := <-o.fileEvents():
			o.handleFileChange(ctx, event)

		case keyEvent := <-o.keyboard.Events():
			if o.handleKeyboard(ctx, keyEvent) {
				return nil
			}
			o.tick()
		}
	}
}

// Close stops cue sequences, speech, keyboard and file watching
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		if o.trigger != nil {
			o.trigger.Close()
		}
		o.speech.Cancel()
		if o.keyboard != nil {
			if err := o.keyboard.Close(); err != nil {
				util.LogWarnf("Failed to restore terminal: %v", err)
			}
		}
		if o.watcher != nil {
			o.watcher.Close()
		}
	})
}

// start loads the initial start list and arms the trigger
func (o *Orchestrator) start(ctx context.Context) error {
	o.trigger = cue.NewTrigger(ctx, audioGate{enabled: &o.audioEnabled, next: o.sequence})

	o.stateManager.SetLoadingState(true, "Loading start list...")
	o.render()

	res, err := o.dataLoader.Initial(ctx, o.config.Source)
	o.stateManager.SetLoadingState(false, "")
	if err != nil {
		return fmt.Errorf("failed to load start list: %w", err)
	}
	o.source = res.Source

	group := o.config.StartGroup
	if group == "" {
		if saved := o.dataLoader.Saved(); saved != nil {
			group = saved.SelectedStartGroup
		}
	}
	o.setSchedule(res.List, group)
	if res.Err != nil {
		o.setStatus("Source unreachable, showing cached start list")
	}

	if o.config.WatchFile && o.watcher == nil && o.source != "" && !startlist.IsURL(o.source) {
		fw, err := watcher.NewFileWatcher(o.source)
		if err != nil {
			util.LogWarnf("Not watching %s: %v", o.source, err)
		} else {
			o.watcher = fw
		}
	}
	return nil
}

// setSchedule swaps in a new start list. The virtual clock is re-anchored
// only when the earliest start moved, so reloading the same list does not
// rewind a running simulation.
func (o *Orchestrator) setSchedule(list *model.StartList, group string) {
	var prevEarliest time.Time
	hadPrev := false
	if o.schedule != nil {
		prevEarliest, hadPrev = o.schedule.Earliest()
	}

	o.schedule = schedule.New(list)
	o.loaded = list != nil
	if group != "" && !slices.Contains(o.schedule.Groups(), group) {
		util.LogWarnf("Start group %q is not in the start list, showing all starts", group)
		group = ""
	}
	o.selectGroup(group)

	earliest, ok := o.schedule.Earliest()
	switch {
	case !o.config.Simulate || !ok:
		o.clock.Disable()
	case !o.clock.Enabled() || !hadPrev || !earliest.Equal(prevEarliest):
		o.clock.Activate(o.schedule.All())
		o.trigger.Reset()
		util.LogInfof("Simulation starts at %s", util.FormatClock(o.clock.Now()))
	}
	util.LogInfof("Loaded %d starters for %q", o.schedule.Len(), o.schedule.EventName())
}

func (o *Orchestrator) selectGroup(group string) {
	o.group = group
	o.view = o.schedule.FilteredBy(group)
	o.cursor.Reset(o.view)
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.StartGroup = group
	})
}

// tick samples the clock once: select the next cohort, feed the trigger,
// publish the frame and draw it.
func (o *Orchestrator) tick() {
	now := o.clock.Now()
	snap := o.cursor.Select(now).Snapshot(now, o.clock.Enabled())
	o.trigger.Observe(snap, o.view)

	if !o.statusUntil.IsZero() && !o.host.Now().Before(o.statusUntil) {
		o.statusUntil = time.Time{}
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.StatusMessage = ""
		})
	}

	view := model.ClockView{
		Loaded:          o.loaded,
		Snapshot:        snap,
		StartGroup:      o.group,
		TotalStarts:     len(o.view),
		Started:         sort.Search(len(o.view), func(i int) bool { return o.view[i].StartTime.After(now) }),
		AudioEnabled:    o.audioEnabled.Load(),
		SpeechSupported: o.speechSupported,
		CueFiring:       o.trigger.State() == cue.StateFiring,
		SkipSteps:       o.config.SkipSteps,
	}
	if o.schedule != nil {
		view.EventName = o.schedule.EventName()
		view.EventDate = o.schedule.EventDate()
	}
	o.stateManager.SetView(view)
	o.render()
}

// render draws the current state
func (o *Orchestrator) render() {
	view := o.stateManager.GetView()
	o.display.RenderWithState(&view, o.stateManager.GetInteractionState())
}

func (o *Orchestrator) fileEvents() <-chan model.FileEvent {
	if o.watcher == nil {
		return nil
	}
	return o.watcher.Events()
}

// handleKeyboard handles keyboard events. It returns true when the user
// asked to quit.
func (o *Orchestrator) handleKeyboard(ctx context.Context, event interaction.KeyEvent) bool {
	state := o.stateManager.GetInteractionState()
	action := interaction.ActionFor(event, state.Mode())
	util.LogDebugf("Key %q -> %s", event.Key, action)

	switch action {
	case interaction.ActionQuit:
		return true
	case interaction.ActionConfirm:
		if state.ConfirmDialog != nil && state.ConfirmDialog.OnConfirm != nil {
			state.ConfirmDialog.OnConfirm()
		}
	case interaction.ActionCancel:
		if state.ConfirmDialog != nil && state.ConfirmDialog.OnCancel != nil {
			state.ConfirmDialog.OnCancel()
		}
	case interaction.ActionToggleHelp:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ShowHelp = !s.ShowHelp
		})
	case interaction.ActionToggleLayout:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.LayoutStyle = layout.NextStyle(s.LayoutStyle)
		})
	case interaction.ActionEnableAudio:
		o.enableAudio()
	case interaction.ActionCycleGroup:
		o.cycleGroup()
	case interaction.ActionReload:
		o.reload(ctx)
	case interaction.ActionClearState:
		o.confirmClearState()
	default:
		if idx, ok := action.SkipIndex(); ok {
			o.skip(idx)
		}
	}
	return false
}

// skip fast-forwards the virtual clock by the idx-th skip step
func (o *Orchestrator) skip(idx int) {
	if idx >= len(o.config.SkipSteps) {
		return
	}
	if !o.clock.Enabled() {
		o.setStatus("Skipping only works in simulation mode")
		return
	}
	step := o.config.SkipSteps[idx]
	o.clock.SkipForward(step)
	util.LogDebugf("Skipped %s to %s", step, util.FormatClock(o.clock.Now()))
}

// enableAudio plays the test beep and checks speech. Cues stay silent until
// this succeeds.
func (o *Orchestrator) enableAudio() {
	if err := o.audio.TestBeep(); err != nil {
		util.LogWarnf("Audio unavailable: %v", err)
		o.setStatus("Audio unavailable: " + err.Error())
		return
	}
	o.audioEnabled.Store(true)

	o.speechSupported = false
	if o.speech.IsSupported() {
		if err := o.speech.Probe(); err != nil {
			util.LogWarnf("Speech probe failed: %v", err)
		} else {
			o.speechSupported = true
		}
	}

	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.AudioEnabled = true
	})
	if o.speechSupported {
		o.setStatus("Audio enabled")
	} else {
		o.setStatus("Audio enabled, announcements unavailable (no speech synthesizer)")
	}
}

// cycleGroup moves to the next start group and remembers the choice
func (o *Orchestrator) cycleGroup() {
	if !o.loaded {
		return
	}
	next := o.schedule.NextGroup(o.group)
	o.selectGroup(next)
	o.dataLoader.SaveStartGroup(next)

	if next == "" {
		o.setStatus("Showing all starts")
	} else {
		o.setStatus("Showing " + next)
	}
}

// reload fetches the source in the background. The current schedule keeps
// running until the result arrives.
func (o *Orchestrator) reload(ctx context.Context) {
	if o.source == "" {
		o.setStatus("No start list source to reload")
		return
	}
	if o.reloading {
		return
	}
	o.reloading = true
	o.setStatus("Reloading start list...")

	source := o.source
	go func() {
		list, err := o.dataLoader.Reload(ctx, source)
		select {
		case o.reloads <- reloadResult{list: list, source: source, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (o *Orchestrator) applyReload(res reloadResult) {
	o.reloading = false
	if res.err != nil {
		util.LogWarnf("Reload of %s failed: %v", res.source, res.err)
		o.setStatus("Reload failed, keeping the current start list")
		return
	}
	o.setSchedule(res.list, o.group)
	o.setStatus(fmt.Sprintf("Reloaded %s", util.Pluralize(len(res.list.Entries), "starter", "starters")))
}

func (o *Orchestrator) handleFileChange(ctx context.Context, event model.FileEvent) {
	util.LogInfof("Start list file changed (%s), reloading", event.Operation)
	o.reload(ctx)
}

// confirmClearState asks before removing the saved state
func (o *Orchestrator) confirmClearState() {
	closeDialog := func() {
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ConfirmDialog = nil
		})
	}
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.ConfirmDialog = &model.ConfirmDialog{
			Title:   "Clear Saved State",
			Message: "This forgets the cached start list, its source and the selected start group. The clock keeps running. Continue?",
			OnConfirm: func() {
				closeDialog()
				if err := o.dataLoader.ClearSaved(); err != nil {
					o.setStatus("Could not clear saved state")
					return
				}
				o.setStatus("Saved state cleared")
			},
			OnCancel: closeDialog,
		}
	})
}

func (o *Orchestrator) setStatus(message string) {
	o.statusUntil = o.host.Now().Add(o.config.StatusTimeout)
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.StatusMessage = message
	})
}

// audioGate keeps cues silent until audio has been enabled
type audioGate struct {
	enabled *atomic.Bool
	next    cue.Runner
}

func (g audioGate) Run(ctx context.Context, job cue.Job) error {
	if !g.enabled.Load() {
		util.With(util.F("cue_id", job.ID)).Debug("Audio not enabled, cue is silent")
		return nil
	}
	return g.next.Run(ctx, job)
}

package startclock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/data/startlist"
	"github.com/penwyp/go-start-clock/internal/data/store"
	"github.com/penwyp/go-start-clock/internal/presentation/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// first start of the test list; the simulation anchors one minute earlier
var firstStart = time.Date(2025, 8, 2, 10, 1, 0, 0, time.UTC)

const testSource = "https://example.org/startlist.xml"

func testList(extra ...model.Entry) *model.StartList {
	at := func(d time.Duration) time.Time { return firstStart.Add(d) }
	entries := []model.Entry{
		{PersonName: "Aino Korhonen", ClassName: "D21", StartTime: at(0), StartGroup: "Start 1"},
		{PersonName: "Bertil Nyström", ClassName: "H21", StartTime: at(0), StartGroup: "Start 1"},
		{PersonName: "Cecilia Laine", ClassName: "D21", StartTime: at(time.Minute), StartGroup: "Start 2"},
		{PersonName: "Daniel Mäkinen", ClassName: "H21", StartTime: at(2 * time.Minute), StartGroup: "Start 1"},
	}
	entries = append(entries, extra...)
	return &model.StartList{
		EventName:   "Kevätrastit 2025",
		EventDate:   time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
		Entries:     entries,
		StartGroups: []string{"Start 1", "Start 2"},
	}
}

type fakeSource struct {
	mu    sync.Mutex
	list  *model.StartList
	err   error
	calls int
}

func (f *fakeSource) Load(_ context.Context, source string) (*model.StartList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, &startlist.LoadError{Source: source, Err: f.err}
	}
	return f.list, nil
}

func (f *fakeSource) set(list *model.StartList, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list, f.err = list, err
}

type fakeAudio struct {
	mu        sync.Mutex
	beeps     int
	sequences int
	beepErr   error
}

func (f *fakeAudio) Resume() error { return nil }

func (f *fakeAudio) PlayStartSequence(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sequences++
	return nil
}

func (f *fakeAudio) TestBeep() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beeps++
	return f.beepErr
}

func (f *fakeAudio) sequenceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sequences
}

type fakeSpeech struct {
	mu        sync.Mutex
	supported bool
	spoken    []string
	cancels   int
}

func (f *fakeSpeech) IsSupported() bool { return f.supported }
func (f *fakeSpeech) Probe() error      { return nil }

func (f *fakeSpeech) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeSpeech) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeSpeech) utterances() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

type fakeDisplay struct {
	mu             sync.Mutex
	frames         int
	entered        int
	exited         int
	lastState      model.InteractionState
	lastEventNames []string
}

func (f *fakeDisplay) EnterAlternateScreen() { f.entered++ }
func (f *fakeDisplay) ExitAlternateScreen()  { f.exited++ }

func (f *fakeDisplay) RenderWithState(view *model.ClockView, state model.InteractionState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames++
	f.lastState = state
	f.lastEventNames = append(f.lastEventNames, view.EventName)
}

type fakeKeyboard struct {
	ch     chan interaction.KeyEvent
	closed bool
}

func (f *fakeKeyboard) Events() <-chan interaction.KeyEvent { return f.ch }
func (f *fakeKeyboard) Close() error {
	f.closed = true
	return nil
}

type harness struct {
	o       *Orchestrator
	host    *clockwork.FakeClock
	source  *fakeSource
	audio   *fakeAudio
	speech  *fakeSpeech
	display *fakeDisplay
	dir     string
}

func newHarness(t *testing.T, configure func(*ClockConfig)) *harness {
	t.Helper()
	h := &harness{
		host:    clockwork.NewFakeClockAt(time.Date(2025, 8, 1, 18, 0, 0, 0, time.UTC)),
		source:  &fakeSource{list: testList()},
		audio:   &fakeAudio{},
		speech:  &fakeSpeech{supported: true},
		display: &fakeDisplay{},
		dir:     t.TempDir(),
	}
	config := &ClockConfig{
		Source:   testSource,
		Simulate: true,
		Timezone: "UTC",
		StateDir: h.dir,
	}
	if configure != nil {
		configure(config)
	}

	o, err := NewOrchestrator(config, Dependencies{
		Host:    h.host,
		Source:  h.source,
		Audio:   h.audio,
		Speech:  h.speech,
		Display: h.display,
	})
	require.NoError(t, err)
	h.o = o
	t.Cleanup(o.Close)
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NoError(t, h.o.start(context.Background()))
	h.o.tick()
}

func (h *harness) press(keys ...rune) {
	for _, k := range keys {
		h.o.handleKeyboard(context.Background(), interaction.KeyEvent{Key: k})
	}
	h.o.tick()
}

func (h *harness) view() model.ClockView {
	return h.o.stateManager.GetView()
}

func (h *harness) saved(t *testing.T) *store.State {
	t.Helper()
	st, err := store.NewFileStore(h.dir)
	require.NoError(t, err)
	state, err := st.Load()
	require.NoError(t, err)
	return state
}

func TestStartSimulationAnchorsBeforeEarliest(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	view := h.view()
	assert.True(t, view.Loaded)
	assert.Equal(t, "Kevätrastit 2025", view.EventName)
	assert.True(t, view.Snapshot.Simulated)
	assert.Equal(t, firstStart.Add(-time.Minute), view.Snapshot.Now)
	require.True(t, view.Snapshot.HasPending())
	assert.Equal(t, 60, *view.Snapshot.SecondsRemaining)
	assert.Equal(t, []string{"Aino Korhonen", "Bertil Nyström"}, model.Names(view.Snapshot.Cohort))
	assert.Equal(t, 4, view.TotalStarts)
	assert.Equal(t, 0, view.Started)

	state := h.saved(t)
	require.NotNil(t, state)
	assert.Equal(t, testSource, state.SourceURL)
	require.NotNil(t, state.CachedStartList)
	assert.Len(t, state.CachedStartList.Entries, 4)
}

func TestRealTimeMode(t *testing.T) {
	h := newHarness(t, func(c *ClockConfig) { c.Simulate = false })
	h.start(t)

	view := h.view()
	assert.False(t, view.Snapshot.Simulated)
	assert.Equal(t, h.host.Now(), view.Snapshot.Now)
	assert.Equal(t, 57660, *view.Snapshot.SecondsRemaining)

	h.press('1')
	assert.Equal(t, h.host.Now(), h.view().Snapshot.Now, "skips are ignored outside simulation")
	assert.Equal(t, "Skipping only works in simulation mode", h.o.stateManager.GetInteractionState().StatusMessage)
}

func TestCueFiresOnceWhenAudioEnabled(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.press('a')
	assert.Equal(t, 1, h.audio.beeps)
	assert.True(t, h.view().AudioEnabled)
	assert.True(t, h.view().SpeechSupported)

	h.host.Advance(55 * time.Second)
	h.o.tick()
	assert.Equal(t, 5, *h.view().Snapshot.SecondsRemaining)

	// the sequence waits for the announcement delay on the host clock
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.host.BlockUntilContext(ctx, 1))
	assert.Equal(t, 1, h.audio.sequenceCount())
	assert.True(t, h.view().CueFiring)

	h.host.Advance(300 * time.Millisecond)
	h.o.tick()
	h.host.Advance(4700 * time.Millisecond)
	h.o.trigger.Wait()

	assert.Equal(t, 1, h.audio.sequenceCount(), "one cue per cohort")
	assert.Equal(t, []string{"Seuraavat lähtijät: Cecilia Laine"}, h.speech.utterances())
}

func TestCueSilentUntilAudioEnabled(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.host.Advance(55 * time.Second)
	h.o.tick()
	h.o.trigger.Wait()

	fired, ok := h.o.trigger.LastKey()
	assert.True(t, ok)
	assert.Equal(t, firstStart, fired)
	assert.Zero(t, h.audio.sequenceCount())
	assert.Empty(t, h.speech.utterances())
}

func TestSkipKeys(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.press('1')
	assert.Equal(t, firstStart.Add(-50*time.Second), h.view().Snapshot.Now)

	h.press('3', '6')
	view := h.view()
	assert.Equal(t, firstStart.Add(40*time.Second), view.Snapshot.Now)
	assert.Equal(t, []string{"Cecilia Laine"}, model.Names(view.Snapshot.Cohort))
	assert.Equal(t, 20, *view.Snapshot.SecondsRemaining)
	assert.Equal(t, 2, view.Started)
}

func TestSkipPastLastStart(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	for i := 0; i < 4; i++ {
		h.press('6')
	}
	view := h.view()
	assert.False(t, view.Snapshot.HasPending())
	assert.Nil(t, view.Snapshot.SecondsRemaining)
	assert.Equal(t, 4, view.Started)
}

func TestCycleGroupPersists(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.press('g')
	assert.Equal(t, "Start 1", h.view().StartGroup)
	assert.Equal(t, 3, h.view().TotalStarts)
	assert.Equal(t, "Start 1", h.saved(t).SelectedStartGroup)

	h.press('g')
	assert.Equal(t, "Start 2", h.view().StartGroup)
	assert.Equal(t, []string{"Cecilia Laine"}, model.Names(h.view().Snapshot.Cohort))
	assert.Equal(t, 120, *h.view().Snapshot.SecondsRemaining, "clock anchors on the full schedule")

	h.press('g')
	assert.Equal(t, "", h.view().StartGroup)
	assert.Equal(t, 4, h.view().TotalStarts)
	assert.Equal(t, "", h.saved(t).SelectedStartGroup)
}

func TestStartGroupFromConfig(t *testing.T) {
	h := newHarness(t, func(c *ClockConfig) { c.StartGroup = "Start 2" })
	h.start(t)
	assert.Equal(t, 1, h.view().TotalStarts)

	h = newHarness(t, func(c *ClockConfig) { c.StartGroup = "Start 9" })
	h.start(t)
	assert.Equal(t, "", h.view().StartGroup, "unknown groups fall back to all starts")
}

func TestRestoreCachedList(t *testing.T) {
	h := newHarness(t, func(c *ClockConfig) { c.Source = "" })
	st, err := store.NewFileStore(h.dir)
	require.NoError(t, err)
	require.NoError(t, st.Save(store.State{
		SourceURL:          testSource,
		CachedStartList:    testList(),
		SelectedStartGroup: "Start 2",
	}))

	h.start(t)
	assert.Zero(t, h.source.calls)
	assert.True(t, h.view().Loaded)
	assert.Equal(t, "Start 2", h.view().StartGroup)
	assert.Equal(t, testSource, h.o.source)
}

func TestNothingToLoad(t *testing.T) {
	h := newHarness(t, func(c *ClockConfig) { c.Source = "" })
	h.start(t)

	view := h.view()
	assert.False(t, view.Loaded)
	assert.False(t, view.Snapshot.HasPending())
	assert.Zero(t, h.source.calls)

	h.press('r')
	assert.Equal(t, "No start list source to reload", h.o.stateManager.GetInteractionState().StatusMessage)
}

func TestInitialLoadFallsBackToCache(t *testing.T) {
	h := newHarness(t, nil)
	st, err := store.NewFileStore(h.dir)
	require.NoError(t, err)
	require.NoError(t, st.Save(store.State{SourceURL: testSource, CachedStartList: testList()}))
	h.source.set(nil, errors.New("connection refused"))

	h.start(t)
	assert.True(t, h.view().Loaded)
	assert.Contains(t, h.o.stateManager.GetInteractionState().StatusMessage, "cached start list")
}

func TestInitialLoadError(t *testing.T) {
	h := newHarness(t, nil)
	h.source.set(nil, errors.New("connection refused"))

	err := h.o.start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, startlist.ErrLoad)
}

func TestReload(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	h.press('3')

	h.source.set(nil, errors.New("timeout"))
	h.press('r')
	assert.True(t, h.o.reloading)
	h.o.applyReload(<-h.o.reloads)
	h.o.tick()
	assert.Equal(t, "Reload failed, keeping the current start list", h.o.stateManager.GetInteractionState().StatusMessage)
	assert.Equal(t, 4, h.view().TotalStarts)

	late := model.Entry{PersonName: "Eero Lahtinen", StartTime: firstStart.Add(3 * time.Minute), StartGroup: "Start 2"}
	h.source.set(testList(late), nil)
	h.press('r')
	h.o.applyReload(<-h.o.reloads)
	h.o.tick()

	assert.Equal(t, 5, h.view().TotalStarts)
	assert.Equal(t, "Reloaded 5 starters", h.o.stateManager.GetInteractionState().StatusMessage)
	assert.Equal(t, firstStart.Add(-30*time.Second), h.view().Snapshot.Now, "same earliest start keeps the simulation running")
	assert.Len(t, h.saved(t).CachedStartList.Entries, 5)
}

func TestClearStateDialog(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.press('x')
	state := h.o.stateManager.GetInteractionState()
	require.NotNil(t, state.ConfirmDialog)
	assert.Equal(t, model.ModeDialog, state.Mode())

	h.press('q')
	assert.NotNil(t, h.o.stateManager.GetInteractionState().ConfirmDialog, "other keys are ignored by the dialog")

	h.press('n')
	assert.Nil(t, h.o.stateManager.GetInteractionState().ConfirmDialog)
	assert.NotNil(t, h.saved(t))

	h.press('x', 'y')
	assert.Nil(t, h.o.stateManager.GetInteractionState().ConfirmDialog)
	assert.Nil(t, h.saved(t))
	assert.Equal(t, "Saved state cleared", h.o.stateManager.GetInteractionState().StatusMessage)
	assert.True(t, h.view().Loaded, "the clock keeps running")
}

func TestHelpAndLayout(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.press('t')
	assert.Equal(t, 1, h.o.stateManager.GetInteractionState().LayoutStyle)
	h.press('t')
	assert.Equal(t, 0, h.o.stateManager.GetInteractionState().LayoutStyle)

	h.press('h')
	assert.True(t, h.o.stateManager.GetInteractionState().ShowHelp)
	h.press('1')
	assert.Equal(t, firstStart.Add(-time.Minute), h.view().Snapshot.Now, "skip keys are inactive under help")

	quit := h.o.handleKeyboard(context.Background(), interaction.KeyEvent{Key: 'q'})
	assert.True(t, quit)
}

func TestEnableAudioFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.audio.beepErr = errors.New("no output device")
	h.start(t)

	h.press('a')
	assert.False(t, h.view().AudioEnabled)
	assert.Contains(t, h.o.stateManager.GetInteractionState().StatusMessage, "Audio unavailable")
}

func TestStatusMessageExpires(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.press('g')
	require.NotEmpty(t, h.o.stateManager.GetInteractionState().StatusMessage)

	h.host.Advance(5 * time.Second)
	h.o.tick()
	assert.Empty(t, h.o.stateManager.GetInteractionState().StatusMessage)
}

func TestRunQuitsOnKey(t *testing.T) {
	kb := &fakeKeyboard{ch: make(chan interaction.KeyEvent, 1)}
	h := newHarness(t, nil)
	h.o.keyboard = kb
	kb.ch <- interaction.KeyEvent{Key: 'q'}

	require.NoError(t, h.o.Run(context.Background()))
	assert.True(t, kb.closed)
	assert.Equal(t, 1, h.display.entered)
	assert.Equal(t, 1, h.display.exited)
	assert.Contains(t, h.display.lastEventNames, "Kevätrastit 2025")
	assert.Equal(t, 1, h.speech.cancels)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	h := newHarness(t, nil)
	h.o.keyboard = &fakeKeyboard{ch: make(chan interaction.KeyEvent)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.o.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, h.host.BlockUntilContext(waitCtx, 1), "ticker registered")
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// Package cue fires the audible start sequence once per start cohort.
package cue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/penwyp/go-start-clock/internal/core/constants"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
)

// State is the observable phase of the trigger
type State int

const (
	StateIdle State = iota
	StateFiring
)

func (s State) String() string {
	if s == StateFiring {
		return "firing"
	}
	return "idle"
}

// Trigger watches tick snapshots and launches a Runner when the countdown
// reads the threshold for a cohort it has not cued yet. The last fired key
// is the only de-duplication: the threshold is seen on many consecutive
// samples and sampling does not land on second boundaries.
//
// Observe is called from the tick loop only. Launched runs are detached and
// share nothing with the trigger except the job they were handed.
type Trigger struct {
	runner    Runner
	threshold int

	lastKey time.Time
	fired   bool

	ctx      context.Context
	cancel   context.CancelFunc
	inflight atomic.Int32
	wg       sync.WaitGroup
}

// NewTrigger creates a trigger whose runs are cancelled when ctx is done or
// Close is called.
func NewTrigger(ctx context.Context, runner Runner) *Trigger {
	ctx, cancel := context.WithCancel(ctx)
	return &Trigger{
		runner:    runner,
		threshold: constants.TriggerThreshold,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Observe evaluates one tick. It returns true when a cue was launched.
func (t *Trigger) Observe(snap model.Snapshot, view []model.Entry) bool {
	if !snap.HasPending() || *snap.SecondsRemaining != t.threshold {
		return false
	}
	if t.fired && snap.Key.Equal(t.lastKey) {
		return false
	}

	t.lastKey = snap.Key
	t.fired = true

	job := Job{
		ID:      uuid.NewString(),
		Key:     snap.Key,
		Cohort:  append([]model.Entry(nil), snap.Cohort...),
		Entries: view,
	}
	util.LogInfof("Cue fired for %d starter(s) at %s", len(job.Cohort), job.Key.Format("15:04:05"))

	t.inflight.Add(1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.inflight.Add(-1)
		if err := t.runner.Run(t.ctx, job); err != nil && !errors.Is(err, context.Canceled) {
			util.With(util.F("cue_id", job.ID)).Error("Cue sequence finished with errors", util.F("error", err))
		}
	}()
	return true
}

// LastKey returns the key of the most recently fired cohort
func (t *Trigger) LastKey() (time.Time, bool) {
	return t.lastKey, t.fired
}

// State reports firing while any launched sequence is still running
func (t *Trigger) State() State {
	if t.inflight.Load() > 0 {
		return StateFiring
	}
	return StateIdle
}

// Reset forgets the last fired cohort, e.g. after loading a new schedule
func (t *Trigger) Reset() {
	t.lastKey = time.Time{}
	t.fired = false
}

// Wait blocks until every launched sequence has returned
func (t *Trigger) Wait() {
	t.wg.Wait()
}

// Close cancels in-flight sequences and waits for them
func (t *Trigger) Close() {
	t.cancel()
	t.wg.Wait()
}

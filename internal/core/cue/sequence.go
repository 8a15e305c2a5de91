package cue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-start-clock/internal/core/constants"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/core/starters"
	"github.com/penwyp/go-start-clock/internal/util"
)

// ErrCue marks audio or speech failures inside a cue sequence. They are
// logged and never stop the countdown.
var ErrCue = errors.New("cue failed")

// DefaultAnnouncementPrefix reads "next starters" in Finnish
const DefaultAnnouncementPrefix = "Seuraavat lähtijät"

// AudioPlayer plays the start tones
type AudioPlayer interface {
	// Resume unsuspends audio output; calling it repeatedly is harmless
	Resume() error
	// PlayStartSequence plays the start tone pattern and returns when done
	PlayStartSequence(ctx context.Context) error
}

// Announcer speaks text aloud
type Announcer interface {
	IsSupported() bool
	// Speak cancels any pending utterance, then speaks text
	Speak(ctx context.Context, text string) error
}

// Job is everything a cue sequence needs, captured when it fires
type Job struct {
	ID      string
	Key     time.Time
	Cohort  []model.Entry
	Entries []model.Entry // the full or filtered view shown when the cue fired
}

// Runner executes a fired cue
type Runner interface {
	Run(ctx context.Context, job Job) error
}

// SequenceConfig tunes the cue sequence
type SequenceConfig struct {
	// Pause between the end of the tones and the announcement
	AnnouncementDelay time.Duration
	// Prefix spoken before the names
	AnnouncementPrefix string
}

// Sequence plays the tones, waits, then announces the cohort after the cued
// one.
type Sequence struct {
	audio  AudioPlayer
	speech Announcer
	clock  clockwork.Clock
	config SequenceConfig
}

// NewSequence builds a sequence. audio or speech may be nil when the host
// has no such output; that step is then skipped.
func NewSequence(audio AudioPlayer, speech Announcer, clock clockwork.Clock, config SequenceConfig) *Sequence {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if config.AnnouncementDelay <= 0 {
		config.AnnouncementDelay = constants.AnnouncementDelay
	}
	if config.AnnouncementPrefix == "" {
		config.AnnouncementPrefix = DefaultAnnouncementPrefix
	}
	return &Sequence{audio: audio, speech: speech, clock: clock, config: config}
}

// Run performs the sequence. Step failures are collected and returned
// wrapped in ErrCue; later steps still run.
func (s *Sequence) Run(ctx context.Context, job Job) error {
	logger := util.With(util.F("cue_id", job.ID), util.F("start", job.Key.Format(time.RFC3339)))
	var errs []error

	if s.audio != nil {
		if err := s.audio.Resume(); err != nil {
			errs = append(errs, fmt.Errorf("%w: resume audio: %v", ErrCue, err))
			logger.Warn("Audio resume failed", util.F("error", err))
		}
		if err := s.audio.PlayStartSequence(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%w: start tones: %v", ErrCue, err))
			logger.Warn("Start tones failed", util.F("error", err))
		}
	}

	select {
	case <-s.clock.After(s.config.AnnouncementDelay):
	case <-ctx.Done():
		logger.Debug("Cue sequence cancelled before announcement")
		return errors.Join(append(errs, ctx.Err())...)
	}

	next := starters.NextAfter(job.Entries, job.Key)
	if len(next) == 0 {
		logger.Debug("No later starters to announce")
		return errors.Join(errs...)
	}
	if s.speech == nil || !s.speech.IsSupported() {
		logger.Debug("Speech not supported, skipping announcement")
		return errors.Join(errs...)
	}

	text := Announcement(s.config.AnnouncementPrefix, next)
	if err := s.speech.Speak(ctx, text); err != nil {
		errs = append(errs, fmt.Errorf("%w: speak: %v", ErrCue, err))
		logger.Warn("Announcement failed", util.F("error", err))
	} else {
		logger.Info("Announced next starters", util.F("count", len(next)))
	}

	return errors.Join(errs...)
}

// Announcement builds the spoken text, e.g. "Seuraavat lähtijät: Anna, Ben"
func Announcement(prefix string, entries []model.Entry) string {
	return fmt.Sprintf("%s: %s", prefix, strings.Join(model.Names(entries), ", "))
}

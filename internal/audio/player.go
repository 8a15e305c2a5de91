package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-start-clock/internal/util"
)

// ErrAudioUnavailable is returned when no audio output can be opened
var ErrAudioUnavailable = errors.New("audio output unavailable")

// Device is a PCM sink. Play blocks until the buffer has been played or ctx
// is done.
type Device interface {
	Resume() error
	Play(ctx context.Context, pcm []byte) error
}

// Player plays the start tones through a Device
type Player struct {
	device     Device
	clock      clockwork.Clock
	sampleRate int
	channels   int

	mu sync.Mutex // one tone sequence at a time
}

// NewPlayer creates a player. A nil clock uses the real clock.
func NewPlayer(device Device, clock clockwork.Clock) *Player {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Player{
		device:     device,
		clock:      clock,
		sampleRate: DefaultSampleRate,
		channels:   DefaultChannelCount,
	}
}

// NewDefaultPlayer creates a player on the system audio output
func NewDefaultPlayer() *Player {
	return NewPlayer(NewOtoDevice(DefaultSampleRate, DefaultChannelCount), nil)
}

// Resume makes sure the output is open and running
func (p *Player) Resume() error {
	if err := p.device.Resume(); err != nil {
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	return nil
}

// PlayStartSequence plays the full start pattern and returns after the long
// beep has finished.
func (p *Player) PlayStartSequence(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, step := range StartSequence() {
		if err := p.playTone(ctx, step.Tone); err != nil {
			return fmt.Errorf("beep %d: %w", i+1, err)
		}
		if step.Pause <= 0 {
			continue
		}
		select {
		case <-p.clock.After(step.Pause):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// TestBeep resumes output and plays a short quiet blip
func (p *Player) TestBeep() error {
	if err := p.Resume(); err != nil {
		return err
	}
	return p.playTone(context.Background(), TestTone())
}

func (p *Player) playTone(ctx context.Context, tone Tone) error {
	pcm := Synthesize(tone, p.sampleRate, p.channels)
	if err := p.device.Play(ctx, pcm); err != nil {
		return err
	}
	util.LogDebugf("Played %.0fHz tone for %s", tone.Frequency, tone.Duration)
	return nil
}

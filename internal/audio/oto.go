package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const drainPoll = 5 * time.Millisecond

// OtoDevice plays PCM through the system mixer. oto allows one context per
// process, so it is opened lazily on first use and kept open.
type OtoDevice struct {
	options oto.NewContextOptions

	once sync.Once
	ctx  *oto.Context
	err  error
}

// NewOtoDevice describes a signed 16-bit output; nothing is opened yet
func NewOtoDevice(sampleRate, channels int) *OtoDevice {
	return &OtoDevice{
		options: oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		},
	}
}

func (d *OtoDevice) open() (*oto.Context, error) {
	d.once.Do(func() {
		opts := d.options
		ctx, ready, err := oto.NewContext(&opts)
		if err != nil {
			d.err = fmt.Errorf("open audio context: %w", err)
			return
		}
		<-ready
		d.ctx = ctx
	})
	return d.ctx, d.err
}

// Resume opens the context if needed and resumes a suspended one
func (d *OtoDevice) Resume() error {
	ctx, err := d.open()
	if err != nil {
		return err
	}
	return ctx.Resume()
}

// Play writes pcm to a new oto player and waits for it to drain
func (d *OtoDevice) Play(ctx context.Context, pcm []byte) error {
	octx, err := d.open()
	if err != nil {
		return err
	}
	player := octx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()

	player.Play()
	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}

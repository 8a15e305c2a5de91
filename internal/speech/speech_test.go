package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookPathFor(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
	block bool
	ready chan struct{}
}

func (r *recorder) run(ctx context.Context, name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	block := r.block
	r.mu.Unlock()

	if block {
		close(r.ready)
		<-ctx.Done()
		return errors.New("signal: killed")
	}
	return r.err
}

func TestCommandResolution(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		available []string
		want      string
	}{
		{"prefers espeak-ng", Config{}, []string{"say", "espeak-ng"}, "/usr/bin/espeak-ng"},
		{"falls back to say", Config{}, []string{"say"}, "/usr/bin/say"},
		{"configured command", Config{Command: "spd-say"}, []string{"espeak-ng", "spd-say"}, "/usr/bin/spd-say"},
		{"configured command missing", Config{Command: "festival"}, []string{"espeak-ng"}, ""},
		{"nothing installed", Config{}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAnnouncer(tt.config, lookPathFor(tt.available...), (&recorder{}).run)
			assert.Equal(t, tt.want, a.Command())
			assert.Equal(t, tt.want != "", a.IsSupported())
		})
	}
}

func TestArgs(t *testing.T) {
	text := "Seuraavat lähtijät: Anna"
	assert.Equal(t, []string{"-v", "fi", "-s", "157", text}, Args("/usr/bin/espeak-ng", "fi-FI", 0.9, text))
	assert.Equal(t, []string{"-r", "175", text}, Args("say", "fi-FI", 1.0, text))
	assert.Equal(t, []string{"-w", "-l", "sv", "-r", "-10", text}, Args("spd-say", "sv-SE", 0.9, text))
	assert.Equal(t, []string{text}, Args("/opt/tts/custom", "fi-FI", 0.9, text))
}

func TestSpeak(t *testing.T) {
	rec := &recorder{}
	a := newAnnouncer(Config{}, lookPathFor("espeak-ng"), rec.run)

	require.NoError(t, a.Speak(context.Background(), "Seuraavat lähtijät: Anna, Ben"))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"/usr/bin/espeak-ng", "-v", "fi", "-s", "157", "Seuraavat lähtijät: Anna, Ben"}, rec.calls[0])

	rec.err = errors.New("exit status 1")
	err := a.Speak(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestSpeakUnsupported(t *testing.T) {
	a := newAnnouncer(Config{}, lookPathFor(), (&recorder{}).run)
	assert.ErrorIs(t, a.Speak(context.Background(), "x"), ErrSpeechUnsupported)
	assert.ErrorIs(t, a.Probe(), ErrSpeechUnsupported)
}

func TestSpeakCancelsPrevious(t *testing.T) {
	blocking := &recorder{block: true, ready: make(chan struct{})}
	a := newAnnouncer(Config{}, lookPathFor("say"), blocking.run)

	first := make(chan error, 1)
	go func() { first <- a.Speak(context.Background(), "first") }()
	<-blocking.ready

	blocking.mu.Lock()
	blocking.block = false
	blocking.mu.Unlock()

	require.NoError(t, a.Speak(context.Background(), "second"))

	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("first utterance was not cancelled")
	}
}

func TestCancel(t *testing.T) {
	blocking := &recorder{block: true, ready: make(chan struct{})}
	a := newAnnouncer(Config{}, lookPathFor("say"), blocking.run)

	done := make(chan error, 1)
	go func() { done <- a.Speak(context.Background(), "hello") }()
	<-blocking.ready
	a.Cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("utterance was not cancelled")
	}
	a.Cancel()
}

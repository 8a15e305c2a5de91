// Package speech announces text through the host's text-to-speech command.
package speech

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/penwyp/go-start-clock/internal/util"
)

// ErrSpeechUnsupported is returned when no speech command is available
var ErrSpeechUnsupported = errors.New("speech synthesis not supported")

const (
	DefaultLanguage = "fi-FI"
	DefaultRate     = 0.9

	baseWordsPerMinute = 175
)

// Candidates are tried in order when no command is configured
var Candidates = []string{"espeak-ng", "espeak", "say", "spd-say"}

// Config selects the speech command and voice
type Config struct {
	Command  string  // empty picks the first available candidate
	Language string  // BCP 47 tag, e.g. fi-FI
	Rate     float64 // 1.0 is the engine's normal speed
}

type runFunc func(ctx context.Context, name string, args ...string) error

// Announcer runs one utterance at a time; a new Speak cancels the previous
// one.
type Announcer struct {
	config  Config
	command string
	run     runFunc

	mu      sync.Mutex
	cancel  context.CancelFunc
	current uint64
}

// New resolves the speech command on PATH. The announcer is still usable
// when nothing is found; IsSupported reports false and Speak fails.
func New(config Config) *Announcer {
	return newAnnouncer(config, exec.LookPath, runCommand)
}

func newAnnouncer(config Config, lookPath func(string) (string, error), run runFunc) *Announcer {
	if config.Language == "" {
		config.Language = DefaultLanguage
	}
	if config.Rate <= 0 {
		config.Rate = DefaultRate
	}

	candidates := Candidates
	if config.Command != "" {
		candidates = []string{config.Command}
	}

	a := &Announcer{config: config, run: run}
	for _, c := range candidates {
		if path, err := lookPath(c); err == nil {
			a.command = path
			break
		}
	}
	if a.command == "" {
		util.LogWarnf("No speech command found (tried %s)", strings.Join(candidates, ", "))
	} else {
		util.LogDebugf("Using speech command %s", a.command)
	}
	return a
}

// IsSupported reports whether a speech command was found
func (a *Announcer) IsSupported() bool {
	return a.command != ""
}

// Command returns the resolved command path, empty when unsupported
func (a *Announcer) Command() string {
	return a.command
}

// Speak cancels any utterance still in progress and speaks text. It returns
// when the command exits.
func (a *Announcer) Speak(ctx context.Context, text string) error {
	if !a.IsSupported() {
		return ErrSpeechUnsupported
	}

	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.current++
	id := a.current
	a.cancel = cancel
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		if a.current == id {
			a.cancel = nil
		}
		a.mu.Unlock()
		cancel()
	}()

	args := Args(a.command, a.config.Language, a.config.Rate, text)
	if err := a.run(ctx, a.command, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

// Probe checks that speech is available without saying anything audible
func (a *Announcer) Probe() error {
	if !a.IsSupported() {
		return ErrSpeechUnsupported
	}
	return nil
}

// Cancel stops the utterance in progress, if any
func (a *Announcer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Args builds the command line for the engine named by command
func Args(command, language string, rate float64, text string) []string {
	base := command
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	lang := strings.ToLower(strings.SplitN(language, "-", 2)[0])
	pct := int(math.Round(rate * 100))
	wpm := strconv.Itoa(baseWordsPerMinute * pct / 100)

	switch base {
	case "espeak-ng", "espeak":
		return []string{"-v", lang, "-s", wpm, text}
	case "say":
		return []string{"-r", wpm, text}
	case "spd-say":
		return []string{"-w", "-l", lang, "-r", strconv.Itoa(pct - 100), text}
	default:
		return []string{text}
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil && len(out) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return err
}

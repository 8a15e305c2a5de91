// Package audio synthesises and plays the start tones.
package audio

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/constants"
)

const (
	DefaultSampleRate   = 48000
	DefaultChannelCount = 2

	bytesPerSample = 2
	peakGain       = 0.3
	tailGain       = 0.01
	testBeepGain   = 0.1
)

// Tone is a single sine beep
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Gain      float64
}

// Step is a tone followed by silence
type Step struct {
	Tone  Tone
	Pause time.Duration
}

// StartSequence returns five short beeps one second apart and a long start beep
func StartSequence() []Step {
	steps := make([]Step, 0, constants.ShortBeepCount+1)
	for i := 0; i < constants.ShortBeepCount; i++ {
		steps = append(steps, Step{
			Tone:  Tone{Frequency: constants.ShortBeepFrequency, Duration: constants.ShortBeepDuration, Gain: peakGain},
			Pause: constants.ShortBeepGap,
		})
	}
	return append(steps, Step{
		Tone: Tone{Frequency: constants.LongBeepFrequency, Duration: constants.LongBeepDuration, Gain: peakGain},
	})
}

// TestTone is the quiet blip played when audio is enabled
func TestTone() Tone {
	return Tone{Frequency: constants.ShortBeepFrequency, Duration: 50 * time.Millisecond, Gain: testBeepGain}
}

// FrameCount returns the number of frames a tone occupies at sampleRate
func FrameCount(tone Tone, sampleRate int) int {
	return int(int64(sampleRate) * int64(tone.Duration) / int64(time.Second))
}

// Synthesize renders tone as interleaved signed 16-bit little-endian PCM.
// The gain decays exponentially from tone.Gain to 0.01 over the tone so the
// beep ends without a click.
func Synthesize(tone Tone, sampleRate, channels int) []byte {
	frames := FrameCount(tone, sampleRate)
	buf := make([]byte, frames*channels*bytesPerSample)
	if frames == 0 {
		return buf
	}

	gain := tone.Gain
	if gain <= 0 {
		gain = peakGain
	}
	decay := math.Log(tailGain/gain) / float64(frames)
	step := 2 * math.Pi * tone.Frequency / float64(sampleRate)

	offset := 0
	for i := 0; i < frames; i++ {
		amp := gain * math.Exp(decay*float64(i))
		v := int16(math.Sin(step*float64(i)) * amp * math.MaxInt16)
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint16(buf[offset:], uint16(v))
			offset += bytesPerSample
		}
	}
	return buf
}

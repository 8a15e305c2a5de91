package interaction

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	oldState *unix.Termios
	in       io.Reader
	input    chan KeyEvent
	stop     chan struct{}
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
)

const (
	keyCtrlC  = 3
	keyEscape = 27
)

// NewKeyboardReader puts stdin in raw mode and starts reading keys
func NewKeyboardReader() (*KeyboardReader, error) {
	kr := newKeyboardReader(os.Stdin)

	if err := kr.enableRawMode(); err != nil {
		return nil, err
	}

	go kr.readInput()

	return kr, nil
}

func newKeyboardReader(in io.Reader) *KeyboardReader {
	return &KeyboardReader{
		in:    in,
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
	}
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 3)

	for {
		select {
		case <-kr.stop:
			return
		default:
		}

		n, err := kr.in.Read(buf)
		if err == io.EOF {
			return
		}
		if err != nil || n == 0 {
			continue
		}

		event := kr.parseInput(buf[:n])
		if event == nil {
			continue
		}
		select {
		case kr.input <- *event:
		case <-kr.stop:
			return
		}
	}
}

// parseInput parses raw keyboard input. Arrow keys and other escape
// sequences are ignored.
func (kr *KeyboardReader) parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	if buf[0] == keyCtrlC {
		return &KeyEvent{Key: keyCtrlC, Type: KeyChar}
	}

	if buf[0] == keyEscape {
		if len(buf) == 1 {
			return &KeyEvent{Key: keyEscape, Type: KeyEscape}
		}
		return nil
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores terminal
func (kr *KeyboardReader) Close() error {
	select {
	case <-kr.stop:
		return nil
	default:
		close(kr.stop)
	}
	return kr.disableRawMode()
}

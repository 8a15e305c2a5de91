//go:build darwin || linux

package interaction

import (
	"os"

	"golang.org/x/sys/unix"
)

// enableRawMode switches stdin to unbuffered, no-echo input. ISIG stays
// set so Ctrl+C still raises SIGINT.
func (kr *KeyboardReader) enableRawMode() error {
	fd := int(os.Stdin.Fd())

	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return err
	}
	kr.oldState = oldState

	newState := *oldState
	newState.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN
	newState.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	newState.Cflag |= unix.CS8
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	return unix.IoctlSetTermios(fd, ioctlSetTermios, &newState)
}

// disableRawMode restores the terminal state saved by enableRawMode
func (kr *KeyboardReader) disableRawMode() error {
	if kr.oldState == nil {
		return nil
	}

	fd := int(os.Stdin.Fd())
	return unix.IoctlSetTermios(fd, ioctlSetTermios, kr.oldState)
}

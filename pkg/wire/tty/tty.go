// Package tty attaches the process terminal to console sessions.
package tty

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

// IsTerminal indicates stdin is an interactive terminal.
func IsTerminal() bool {
	return terminal.IsTerminal(int(os.Stdin.Fd()))
}

// MakeRaw puts the terminal into raw mode so every keystroke reaches
// the console. The returned func restores the previous state.
func MakeRaw() (func(), error) {
	fd := int(os.Stdin.Fd())
	state, err := terminal.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { terminal.Restore(fd, state) }, nil
}

// Stdio is the byte stream of the process terminal.
type Stdio struct{}

// Read implements Reader.
func (Stdio) Read(p []byte) (int, error) { return os.Stdin.Read(p) }

// Write implements Writer.
func (Stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

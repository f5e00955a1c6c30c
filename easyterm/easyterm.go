// This file is part of Retrace.
//
// Retrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Retrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Retrace.  If not, see <https://www.gnu.org/licenses/>.

// Package easyterm is a wrapper for the termios package. It puts the
// terminal into cbreak mode so that single key presses can be read without
// waiting for the return key.
//
// The HEADLESS mode of the retrace program uses it to trigger the reset and
// exit fades from the keyboard.
package easyterm

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Terminal is the main type for the package.
type Terminal struct {
	input  *os.File
	output *os.File

	canAttr    unix.Termios
	cbreakAttr unix.Termios

	crit sync.Mutex
}

// Initialise the fields in the Terminal struct. The terminal is not changed
// until CBreakMode() is called.
func (pt *Terminal) Initialise(inputFile, outputFile *os.File) error {
	if inputFile == nil {
		return fmt.Errorf("easyterm: terminal requires an input file")
	}
	if outputFile == nil {
		return fmt.Errorf("easyterm: terminal requires an output file")
	}

	pt.input = inputFile
	pt.output = outputFile

	// prepare the attributes for the different terminal modes we'll be using
	if err := termios.Tcgetattr(pt.input.Fd(), &pt.canAttr); err != nil {
		return fmt.Errorf("easyterm: %w", err)
	}
	pt.cbreakAttr = pt.canAttr
	termios.Cfmakecbreak(&pt.cbreakAttr)

	return nil
}

// CleanUp restores the terminal to canonical mode.
func (pt *Terminal) CleanUp() {
	pt.CanonicalMode()
}

// Print formats and writes a string to the terminal output.
func (pt *Terminal) Print(s string, a ...any) {
	pt.crit.Lock()
	defer pt.crit.Unlock()
	fmt.Fprintf(pt.output, s, a...)
	pt.output.Sync()
}

// CanonicalMode puts terminal into normal, everyday canonical mode.
func (pt *Terminal) CanonicalMode() {
	termios.Tcsetattr(pt.input.Fd(), termios.TCIFLUSH, &pt.canAttr)
}

// CBreakMode puts terminal into cbreak mode. Key presses are available
// immediately and are still echoed.
func (pt *Terminal) CBreakMode() {
	termios.Tcsetattr(pt.input.Fd(), termios.TCIFLUSH, &pt.cbreakAttr)
}

// Flush makes sure the terminal's input/output buffers are empty.
func (pt *Terminal) Flush() error {
	if err := termios.Tcflush(pt.input.Fd(), termios.TCIFLUSH); err != nil {
		return fmt.Errorf("easyterm: %w", err)
	}
	if err := termios.Tcflush(pt.output.Fd(), termios.TCOFLUSH); err != nil {
		return fmt.Errorf("easyterm: %w", err)
	}
	return nil
}

// Keys returns a channel that receives every key read from the terminal
// input. The channel is closed when the context is cancelled or when the
// input reaches end of file.
//
// The reading goroutine may remain blocked on the input after the context
// is cancelled until the next key is pressed.
func (pt *Terminal) Keys(ctx context.Context) <-chan rune {
	keys := make(chan rune, 1)

	go func() {
		defer close(keys)
		r := bufio.NewReader(pt.input)
		for {
			k, _, err := r.ReadRune()
			if err != nil {
				return
			}
			select {
			case keys <- k:
			case <-ctx.Done():
				return
			}
		}
	}()

	return keys
}

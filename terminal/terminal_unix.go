//go:build unix

package terminal

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type stdTerminal struct {
	originalState *term.State
	stdin         *os.File
	stdout        *os.File
}

func New() Terminal {
	return &stdTerminal{stdin: os.Stdin, stdout: os.Stdout}
}

func (t *stdTerminal) Close() error {
	return t.DisableRawMode()
}

func (t *stdTerminal) Stdin() io.Reader  { return t.stdin }
func (t *stdTerminal) Stdout() io.Writer { return t.stdout }

func (t *stdTerminal) EnableRawMode() error {
	fd := int(t.stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	t.originalState = state
	return nil
}

func (t *stdTerminal) DisableRawMode() error {
	if t.originalState == nil {
		return nil
	}
	err := term.Restore(int(t.stdin.Fd()), t.originalState)
	t.originalState = nil
	if err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return nil
}

func (t *stdTerminal) GetWindowSize() (width, height int, err error) {
	width, height, err = term.GetSize(int(t.stdout.Fd()))
	if err != nil {
		return fallbackWidth, fallbackHeight, fmt.Errorf("failed to get window size: %w", err)
	}
	return width, height, nil
}

func (t *stdTerminal) NotifyResize(ch chan<- struct{}) (stop func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGWINCH)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sig:
				select {
				case ch <- struct{}{}:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}

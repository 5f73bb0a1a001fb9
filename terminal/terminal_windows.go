//go:build windows

package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/windows"
)

type stdTerminal struct {
	originalState *winState
	stdinFile     *os.File
}

// Input and output console modes saved by EnableRawMode.
type winState [2]uint32

func New() Terminal {
	conInHandle, err := windows.CreateFile(
		windows.StringToUTF16Ptr("CONIN$"),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return &stdTerminal{stdinFile: os.Stdin}
	}
	return &stdTerminal{stdinFile: os.NewFile(uintptr(conInHandle), "CONIN$")}
}

func (t *stdTerminal) Close() error {
	rawErr := t.DisableRawMode()
	if t.stdinFile != nil && t.stdinFile != os.Stdin {
		if err := t.stdinFile.Close(); err != nil {
			return err
		}
	}
	return rawErr
}

func (t *stdTerminal) Stdin() io.Reader  { return t.stdinFile }
func (t *stdTerminal) Stdout() io.Writer { return os.Stdout }

func (t *stdTerminal) handles() (in, out windows.Handle, err error) {
	in = windows.Handle(t.stdinFile.Fd())
	out = windows.Handle(os.Stdout.Fd())
	if in == windows.InvalidHandle || out == windows.InvalidHandle {
		return 0, 0, fmt.Errorf("invalid std handles")
	}
	return in, out, nil
}

func (t *stdTerminal) EnableRawMode() error {
	inHandle, outHandle, err := t.handles()
	if err != nil {
		return err
	}

	var inMode, outMode uint32
	if err := windows.GetConsoleMode(inHandle, &inMode); err != nil {
		return fmt.Errorf("failed to get stdin console mode: %w", err)
	}
	if err := windows.GetConsoleMode(outHandle, &outMode); err != nil {
		return fmt.Errorf("failed to get stdout console mode: %w", err)
	}
	t.originalState = &winState{inMode, outMode}

	// No echo, no line editing, no Ctrl-C handling: keys arrive as VT input.
	newInMode := inMode &^ (windows.ENABLE_ECHO_INPUT | windows.ENABLE_LINE_INPUT | windows.ENABLE_PROCESSED_INPUT)
	newInMode |= windows.ENABLE_VIRTUAL_TERMINAL_INPUT
	newOutMode := outMode | windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING

	if err := windows.SetConsoleMode(inHandle, newInMode); err != nil {
		return fmt.Errorf("failed to set stdin console mode: %w", err)
	}
	if err := windows.SetConsoleMode(outHandle, newOutMode); err != nil {
		windows.SetConsoleMode(inHandle, inMode)
		return fmt.Errorf("failed to set stdout console mode: %w", err)
	}
	return nil
}

func (t *stdTerminal) DisableRawMode() error {
	if t.originalState == nil {
		return nil
	}
	inHandle, outHandle, err := t.handles()
	if err != nil {
		return err
	}
	state := t.originalState
	t.originalState = nil
	if err := windows.SetConsoleMode(inHandle, state[0]); err != nil {
		return fmt.Errorf("failed to restore stdin console mode: %w", err)
	}
	if err := windows.SetConsoleMode(outHandle, state[1]); err != nil {
		return fmt.Errorf("failed to restore stdout console mode: %w", err)
	}
	return nil
}

func (t *stdTerminal) GetWindowSize() (width, height int, err error) {
	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr("CONOUT$"),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return fallbackWidth, fallbackHeight, fmt.Errorf("failed to get CONOUT$: %w", err)
	}
	defer windows.CloseHandle(handle)

	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(handle, &info); err != nil {
		return fallbackWidth, fallbackHeight, fmt.Errorf("failed to get console screen buffer info: %w", err)
	}
	width = int(info.Window.Right - info.Window.Left + 1)
	height = int(info.Window.Bottom - info.Window.Top + 1)
	return width, height, nil
}

// NotifyResize never fires on Windows; the console has no resize signal and
// the editor polls the size after every event.
func (t *stdTerminal) NotifyResize(ch chan<- struct{}) (stop func()) {
	return func() {}
}

// Package editor implements the cursor and viewport controller, the view
// cache behind it, key decoding and the event loop that ties them to a
// terminal.
package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bulga138/tekst/buffer"
	"github.com/bulga138/tekst/config"
	"github.com/bulga138/tekst/display"
	"github.com/bulga138/tekst/terminal"
)

const saveAsPrompt = "Save as: "

// Editor runs one buffer on one terminal.
type Editor struct {
	term terminal.Terminal
	cfg  config.Config
	buf  buffer.Buffer
	log  *slog.Logger

	ctrl          *Controller
	width, height int

	isSaveAs     bool
	promptBuffer []byte
	quit         bool
}

type event struct {
	key    Key
	err    error
	resize bool
}

func New(term terminal.Terminal, cfg config.Config, buf buffer.Buffer, log *slog.Logger) *Editor {
	if log == nil {
		log = slog.Default()
	}
	return &Editor{term: term, cfg: cfg, buf: buf, log: log}
}

// Run owns the terminal until the user quits, input ends or ctx is done.
func (e *Editor) Run(ctx context.Context) error {
	if err := e.term.EnableRawMode(); err != nil {
		return err
	}
	defer func() {
		if err := e.term.DisableRawMode(); err != nil {
			e.log.Warn("restoring terminal", "err", err)
		}
	}()

	disp := display.NewANSI(e.term.Stdout())
	if err := disp.Enter(); err != nil {
		return fmt.Errorf("failed to enter alternate screen: %w", err)
	}
	defer disp.Leave()

	e.width, e.height = e.textSize()
	e.ctrl = NewController(e.buf, disp, Options{
		Height:    e.height,
		Width:     e.width,
		StatusBar: e.cfg.ShowStatusBar,
		Log:       e.log,
	})
	e.ctrl.SetMessage("Ctrl-S save | Ctrl-E save as | Ctrl-Q quit")

	done := make(chan struct{})
	defer close(done)
	events := make(chan event)
	go e.readKeys(bufio.NewReader(e.term.Stdin()), events, done)

	resized := make(chan struct{}, 1)
	stop := e.term.NotifyResize(resized)
	defer stop()

	for !e.quit {
		select {
		case <-ctx.Done():
			e.log.Info("stopping", "reason", context.Cause(ctx))
			return nil
		case <-resized:
			e.checkResize()
		case ev := <-events:
			if ev.err != nil {
				if errors.Is(ev.err, io.EOF) {
					return nil
				}
				return fmt.Errorf("reading input: %w", ev.err)
			}
			e.handleKey(ev.key)
			e.checkResize()
		}
	}
	return nil
}

func (e *Editor) readKeys(r *bufio.Reader, events chan<- event, done <-chan struct{}) {
	for {
		k, err := ReadKey(r)
		select {
		case events <- event{key: k, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// textSize is the terminal size minus the status row.
func (e *Editor) textSize() (width, height int) {
	width, height, err := e.term.GetWindowSize()
	if err != nil {
		e.log.Debug("window size unavailable", "err", err)
	}
	if e.cfg.ShowStatusBar {
		height--
	}
	return max(width, 1), max(height, 1)
}

func (e *Editor) checkResize() {
	w, h := e.textSize()
	if w == e.width && h == e.height {
		return
	}
	e.width, e.height = w, h
	e.ctrl.Resize(h, w)
}

func (e *Editor) handleKey(k Key) {
	if e.isSaveAs {
		e.handleSaveAsInput(k)
		return
	}
	switch k.Kind {
	case KeyByte:
		e.ctrl.InsertChar(k.Ch)
	case KeyEnter:
		e.ctrl.InsertChar('\n')
	case KeyBackspace:
		e.ctrl.Backspace()
	case KeyDelete:
		e.ctrl.DeleteChar()
	case KeyUp:
		e.ctrl.MoveUp()
	case KeyDown:
		e.ctrl.MoveDown()
	case KeyLeft:
		e.ctrl.MoveLeft()
	case KeyRight:
		e.ctrl.MoveRight()
	case KeyHome:
		e.ctrl.Home()
	case KeyEnd:
		e.ctrl.End()
	case KeySave:
		e.reportSave(e.ctrl.Save())
	case KeySaveAs:
		e.isSaveAs = true
		e.promptBuffer = e.promptBuffer[:0]
		e.ctrl.Prompt(saveAsPrompt)
	case KeyQuit:
		e.quit = true
	}
}

func (e *Editor) handleSaveAsInput(k Key) {
	switch k.Kind {
	case KeyEscape, KeyQuit:
		e.isSaveAs = false
		e.ctrl.Prompt("")
		e.ctrl.SetMessage("Save cancelled")
	case KeyEnter:
		e.isSaveAs = false
		e.ctrl.Prompt("")
		if len(e.promptBuffer) == 0 {
			e.ctrl.SetMessage("Save cancelled")
			return
		}
		e.reportSave(e.ctrl.SaveAs(string(e.promptBuffer)))
	case KeyBackspace:
		if n := len(e.promptBuffer); n > 0 {
			e.promptBuffer = e.promptBuffer[:n-1]
		}
		e.ctrl.Prompt(saveAsPrompt + string(e.promptBuffer))
	case KeyByte:
		if k.Ch == '\t' {
			return
		}
		e.promptBuffer = append(e.promptBuffer, k.Ch)
		e.ctrl.Prompt(saveAsPrompt + string(e.promptBuffer))
	}
}

func (e *Editor) reportSave(err error) {
	if err == nil {
		return
	}
	var saveErr *buffer.SaveError
	if errors.As(err, &saveErr) {
		e.log.Warn("save failed", "file", saveErr.Path, "err", saveErr.Err)
		return
	}
	e.log.Error("save failed", "err", err)
}

// Package display defines the surface the editor draws on and a VT100
// implementation of it.
package display

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Surface receives drawing commands. Rows and columns are zero-based and
// relative to the text viewport; the status row sits just below it.
type Surface interface {
	// SetViewport declares the text area size. Scrolling and row insertion
	// stay inside it.
	SetViewport(rows, cols int)
	// WriteAt writes text at row/col and clears the rest of the row.
	WriteAt(row, col int, text string)
	// Scroll moves the viewport content up by n rows, or down when n < 0.
	Scroll(n int)
	InsertRow(row int)
	DeleteRow(row int)
	// Status replaces the status row.
	Status(text string)
	SetCursor(row, col int)
	Flush() error
}

// ANSI escape codes
const (
	ansiHideCursor     = "\x1b[?25l"
	ansiShowCursor     = "\x1b[?25h"
	ansiClearScreen    = "\x1b[2J"
	ansiMoveToHome     = "\x1b[H"
	ansiClearLine      = "\x1b[K"
	ansiReset          = "\x1b[m"
	ansiInvert         = "\x1b[7m"
	ansiEnterAltScreen = "\x1b[?1049h"
	ansiExitAltScreen  = "\x1b[?1049l"
	ansiResetRegion    = "\x1b[r"
)

// ANSI batches VT100 sequences and writes them to out on Flush.
type ANSI struct {
	out  io.Writer
	ab   bytes.Buffer
	rows int
	cols int

	cursorRow, cursorCol int
}

// Statically check that *ANSI implements the Surface interface.
var _ Surface = (*ANSI)(nil)

func NewANSI(out io.Writer) *ANSI {
	return &ANSI{out: out, rows: 1, cols: 1}
}

// Enter switches to the alternate screen and clears it.
func (a *ANSI) Enter() error {
	_, err := io.WriteString(a.out, ansiEnterAltScreen+ansiClearScreen+ansiMoveToHome)
	return err
}

// Leave restores the scroll region and the main screen.
func (a *ANSI) Leave() error {
	_, err := io.WriteString(a.out, ansiReset+ansiResetRegion+ansiShowCursor+ansiExitAltScreen)
	return err
}

func (a *ANSI) moveTo(row, col int) {
	fmt.Fprintf(&a.ab, "\x1b[%d;%dH", row+1, col+1)
}

func (a *ANSI) SetViewport(rows, cols int) {
	a.rows, a.cols = max(rows, 1), max(cols, 1)
	a.ab.WriteString(ansiClearScreen)
	// Scroll region covers the text rows only.
	fmt.Fprintf(&a.ab, "\x1b[1;%dr", a.rows)
}

func (a *ANSI) WriteAt(row, col int, text string) {
	if row < 0 || row >= a.rows || col >= a.cols {
		return
	}
	a.moveTo(row, col)
	a.ab.WriteString(ansi.Truncate(text, a.cols-col, ""))
	a.ab.WriteString(ansiClearLine)
}

func (a *ANSI) Scroll(n int) {
	switch {
	case n > 0:
		fmt.Fprintf(&a.ab, "\x1b[%dS", n)
	case n < 0:
		fmt.Fprintf(&a.ab, "\x1b[%dT", -n)
	}
}

func (a *ANSI) InsertRow(row int) {
	if row < 0 || row >= a.rows {
		return
	}
	a.moveTo(row, 0)
	a.ab.WriteString("\x1b[L")
}

func (a *ANSI) DeleteRow(row int) {
	if row < 0 || row >= a.rows {
		return
	}
	a.moveTo(row, 0)
	a.ab.WriteString("\x1b[M")
}

func (a *ANSI) Status(text string) {
	a.moveTo(a.rows, 0)
	a.ab.WriteString(ansiInvert)
	a.ab.WriteString(runewidth.FillRight(runewidth.Truncate(text, a.cols, ""), a.cols))
	a.ab.WriteString(ansiReset)
}

func (a *ANSI) SetCursor(row, col int) {
	a.cursorRow, a.cursorCol = row, col
}

// Flush places the cursor and writes everything batched since the last
// flush in one write.
func (a *ANSI) Flush() error {
	var frame bytes.Buffer
	frame.WriteString(ansiHideCursor)
	frame.Write(a.ab.Bytes())
	fmt.Fprintf(&frame, "\x1b[%d;%dH", a.cursorRow+1, a.cursorCol+1)
	frame.WriteString(ansiShowCursor)
	a.ab.Reset()
	_, err := a.out.Write(frame.Bytes())
	return err
}

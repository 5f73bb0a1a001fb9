package editor

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bulga138/tekst/buffer"
	"github.com/bulga138/tekst/display"
	"github.com/bulga138/tekst/version"
)

const statusMessageTTL = 5 * time.Second

// Options configures a Controller.
type Options struct {
	Height    int
	Width     int
	StatusBar bool
	Log       *slog.Logger
}

// Controller turns editing intents into buffer mutations, view cache updates
// and display commands. It is not safe for concurrent use; one intent runs to
// completion before the next starts.
type Controller struct {
	buf   buffer.Buffer
	disp  display.Surface
	log   *slog.Logger
	cache *ViewCache

	height, width int
	statusBar     bool

	row     int // cursor row within the viewport
	col     int // byte offset into the clean line
	colGoal int // column vertical moves try to return to
	offset  int // buffer line shown on row 0
	leftCol int // first byte column on screen

	dirty         bool
	prompt        string
	statusMessage string
	statusTime    time.Time
}

// NewController draws the initial viewport.
func NewController(b buffer.Buffer, disp display.Surface, opts Options) *Controller {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	c := &Controller{
		buf:       b,
		disp:      disp,
		log:       opts.Log,
		statusBar: opts.StatusBar,
	}
	c.Resize(opts.Height, opts.Width)
	return c
}

// Position returns the buffer line and byte column under the cursor.
func (c *Controller) Position() (line, col int) {
	return c.offset + c.row, c.col
}

// Dirty reports whether the buffer changed since it was opened or saved.
func (c *Controller) Dirty() bool { return c.dirty }

func (c *Controller) current() string {
	return c.cache.At(c.row).Text
}

func (c *Controller) load(n int) Row {
	return loadRow(c.buf, n)
}

// --- Movement ---

func (c *Controller) MoveLeft() bool {
	ok := c.moveLeft()
	c.finish()
	return ok
}

func (c *Controller) MoveRight() bool {
	ok := c.moveRight()
	c.finish()
	return ok
}

func (c *Controller) MoveUp() bool {
	ok := c.moveUp()
	c.finish()
	return ok
}

func (c *Controller) MoveDown() bool {
	ok := c.moveDown()
	c.finish()
	return ok
}

// Home moves to column 0.
func (c *Controller) Home() {
	c.col, c.colGoal = 0, 0
	c.finish()
}

// End moves past the last byte of the line.
func (c *Controller) End() {
	c.col = buffer.CleanLen(c.current())
	c.colGoal = c.col
	c.finish()
}

func (c *Controller) moveLeft() bool {
	if c.col > 0 {
		c.col--
		c.colGoal = c.col
		return true
	}
	if !c.moveUp() {
		return false
	}
	c.col = buffer.CleanLen(c.current())
	c.colGoal = c.col
	return true
}

func (c *Controller) moveRight() bool {
	if c.col < buffer.CleanLen(c.current()) {
		c.col++
		c.colGoal = c.col
		return true
	}
	if !c.moveDown() {
		return false
	}
	c.col, c.colGoal = 0, 0
	return true
}

func (c *Controller) moveUp() bool {
	switch {
	case c.row > 0:
		c.row--
	case c.offset > 0:
		c.scrollDown()
	default:
		return false
	}
	c.clampCol()
	return true
}

func (c *Controller) moveDown() bool {
	if c.row < c.height-1 {
		if !c.cache.At(c.row + 1).OK {
			return false
		}
		c.row++
	} else {
		if !buffer.Terminated(c.current()) {
			return false
		}
		c.scrollUp()
	}
	c.clampCol()
	return true
}

// clampCol applies the column goal to the new line without forgetting it.
func (c *Controller) clampCol() {
	c.col = min(c.colGoal, buffer.CleanLen(c.current()))
}

// scrollUp shows one more line at the bottom.
func (c *Controller) scrollUp() {
	c.offset++
	c.cache.ShiftUp(c.load(c.offset + c.height - 1))
	c.disp.Scroll(1)
	c.drawRow(c.height - 1)
}

// scrollDown shows one more line at the top.
func (c *Controller) scrollDown() {
	c.offset--
	c.cache.ShiftDown(c.load(c.offset))
	c.disp.Scroll(-1)
	c.drawRow(0)
}

// --- Editing ---

// InsertChar types ch at the cursor. A line feed splits the line and moves
// the cursor to the start of the new one.
func (c *Controller) InsertChar(ch byte) {
	line := c.current()
	if c.col > buffer.CleanLen(line) {
		c.log.Warn("insert outside line ignored", "line", c.offset+c.row, "col", c.col)
		c.finish()
		return
	}
	abs := c.offset + c.row
	c.buf.InsertChar(ch, abs, c.col)
	c.dirty = true

	if ch != '\n' {
		c.cache.Set(c.row, Row{Text: line[:c.col] + string([]byte{ch}) + line[c.col:], OK: true})
		c.drawRow(c.row)
		c.col++
		c.colGoal = c.col
		c.finish()
		return
	}

	c.cache.Set(c.row, Row{Text: line[:c.col] + "\n", OK: true})
	c.drawRow(c.row)
	if c.row == c.height-1 {
		c.scrollUp()
	} else {
		c.cache.Insert(c.row+1, Row{})
		c.disp.InsertRow(c.row + 1)
		c.row++
	}
	c.cache.Set(c.row, c.load(abs+1))
	c.drawRow(c.row)
	c.col, c.colGoal = 0, 0
	c.finish()
}

// DeleteChar removes the byte under the cursor and reports whether there was
// one. Deleting the line feed joins the next line.
func (c *Controller) DeleteChar() bool {
	ok := c.deleteChar()
	c.finish()
	return ok
}

func (c *Controller) deleteChar() bool {
	line := c.current()
	if c.col < 0 || c.col >= len(line) {
		return false
	}
	abs := c.offset + c.row
	joined := line[c.col] == '\n'
	c.buf.DelChar(abs, c.col)
	c.dirty = true

	if !joined {
		c.cache.Set(c.row, Row{Text: line[:c.col] + line[c.col+1:], OK: true})
		c.drawRow(c.row)
		return true
	}

	// The merged text isn't known yet: drop both rows, then reload.
	c.cache.Remove(c.row)
	if c.row+1 < c.height {
		c.cache.Remove(c.row)
		c.disp.DeleteRow(c.row + 1)
	}
	c.cache.Insert(c.row, c.load(abs))
	c.cache.Set(c.height-1, c.load(c.offset+c.height-1))
	c.drawRow(c.row)
	c.drawRow(c.height - 1)
	return true
}

// Backspace moves left and deletes what it passed over.
func (c *Controller) Backspace() bool {
	ok := c.moveLeft() && c.deleteChar()
	c.finish()
	return ok
}

// --- Persistence ---

// Save writes the buffer to its file. A *buffer.SaveError leaves the editor
// exactly as it was.
func (c *Controller) Save() error {
	err := c.save()
	c.finish()
	return err
}

// SaveAs saves under a new name. On failure the old name is kept.
func (c *Controller) SaveAs(name string) error {
	old := c.buf.Filename()
	c.buf.SetFilename(name)
	err := c.save()
	if err != nil {
		c.buf.SetFilename(old)
	}
	c.finish()
	return err
}

func (c *Controller) save() error {
	if err := c.buf.Save(); err != nil {
		c.setStatusMessage("Save error: %v", err)
		return err
	}
	c.dirty = false
	c.setStatusMessage("%s written to %s", humanize.Bytes(uint64(c.buf.Size())), c.buf.Filename())
	c.log.Info("saved", "file", c.buf.Filename(), "bytes", c.buf.Size())
	return nil
}

// --- Viewport ---

// Resize rebuilds the view for a new text area size. The cursor stays on the
// same buffer line, scrolling if that line would fall off the bottom.
func (c *Controller) Resize(height, width int) {
	c.height, c.width = max(height, 1), max(width, 1)
	if c.row >= c.height {
		c.offset += c.row - (c.height - 1)
		c.row = c.height - 1
	}
	c.cache = newViewCache(c.buf, c.offset, c.height)
	c.disp.SetViewport(c.height, c.width)
	c.leftCol = c.horizontalOffset()
	c.redraw()
	c.log.Debug("viewport resized", "rows", c.height, "cols", c.width, "offset", c.offset)
	c.finish()
}

// Prompt shows text on the status row in place of the usual status until it
// is called with "".
func (c *Controller) Prompt(text string) {
	c.prompt = text
	c.finish()
}

// SetMessage shows a transient status message.
func (c *Controller) SetMessage(format string, a ...any) {
	c.setStatusMessage(format, a...)
	c.finish()
}

func (c *Controller) setStatusMessage(format string, a ...any) {
	c.statusMessage = fmt.Sprintf(format, a...)
	c.statusTime = time.Now()
}

// --- Drawing ---

// horizontalOffset returns the first visible column that keeps col on screen.
func (c *Controller) horizontalOffset() int {
	left := c.leftCol
	if c.col < left {
		left = c.col
	}
	if c.col >= left+c.width {
		left = c.col - c.width + 1
	}
	return left
}

func (c *Controller) redraw() {
	for r := 0; r < c.height; r++ {
		c.drawRow(r)
	}
}

func (c *Controller) drawRow(r int) {
	row := c.cache.At(r)
	if !row.OK {
		c.disp.WriteAt(r, 0, "~")
		return
	}
	c.disp.WriteAt(r, 0, visible(buffer.Clean(row.Text), c.leftCol, c.width))
}

// visible returns the on-screen part of a line. Columns are bytes, so any
// byte that is not printable ASCII is shown as a single placeholder.
func visible(line string, left, width int) string {
	if left >= len(line) {
		return ""
	}
	line = line[left:]
	if len(line) > width {
		line = line[:width]
	}
	out := []byte(line)
	for i, b := range out {
		switch {
		case b == '\t':
			out[i] = ' '
		case b < 0x20 || b >= 0x7f:
			out[i] = '?'
		}
	}
	return string(out)
}

func (c *Controller) status() string {
	if c.prompt != "" {
		return c.prompt
	}
	name := c.buf.Filename()
	if name == "" {
		name = "[No Name]"
	}
	left := fmt.Sprintf(" %.20s", filepath.Base(name))
	if c.dirty {
		left += " (modified)"
	}
	if c.statusMessage != "" && time.Since(c.statusTime) < statusMessageTTL {
		left += " | " + c.statusMessage
	}
	line, col := c.Position()
	right := fmt.Sprintf("Ln %d, Col %d  v%s ", line+1, col+1, version.GetVersion())
	padding := max(c.width-len(left)-len(right), 1)
	return left + strings.Repeat(" ", padding) + right
}

// finish brings the horizontal scroll, status row and cursor up to date and
// flushes the frame.
func (c *Controller) finish() {
	if left := c.horizontalOffset(); left != c.leftCol {
		c.leftCol = left
		c.redraw()
	}
	if c.statusBar {
		c.disp.Status(c.status())
	}
	c.disp.SetCursor(c.row, c.col-c.leftCol)
	if err := c.disp.Flush(); err != nil {
		c.log.Warn("display flush failed", "err", err)
	}
}

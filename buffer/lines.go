package buffer

import (
	"io"
	"log/slog"
)

// Lines stores the text as a slice of raw lines. Lookup is O(1) and edits
// cost O(line length), at the price of one allocation per line.
type Lines struct {
	filename string
	lines    []string
	log      *slog.Logger
}

// Statically check that *Lines implements the Buffer interface.
var _ Buffer = (*Lines)(nil)

func newLines(filename string, lines []string, log *slog.Logger) *Lines {
	return &Lines{filename: filename, lines: lines, log: log}
}

func (b *Lines) GetLine(n int) (string, bool) {
	if n < 0 || n >= len(b.lines) {
		return "", false
	}
	return b.lines[n], true
}

func (b *Lines) InsertChar(ch byte, line, col int) {
	if line < 0 || line >= len(b.lines) {
		return
	}
	s := b.lines[line]
	if col < 0 || col > CleanLen(s) {
		return
	}
	if ch != '\n' {
		b.lines[line] = s[:col] + string([]byte{ch}) + s[col:]
		return
	}
	rest := s[col:]
	b.lines[line] = s[:col] + "\n"
	b.lines = append(b.lines, "")
	copy(b.lines[line+2:], b.lines[line+1:])
	b.lines[line+1] = rest
}

func (b *Lines) DelChar(line, col int) {
	if line < 0 || line >= len(b.lines) {
		return
	}
	s := b.lines[line]
	if col < 0 || col >= len(s) {
		return
	}
	if s[col] != '\n' {
		b.lines[line] = s[:col] + s[col+1:]
		return
	}
	next := ""
	if line+1 < len(b.lines) {
		next = b.lines[line+1]
		b.lines = append(b.lines[:line+1], b.lines[line+2:]...)
	}
	b.lines[line] = s[:col] + next
}

func (b *Lines) LineCount() int {
	return len(b.lines)
}

func (b *Lines) Size() int64 {
	var n int64
	for _, s := range b.lines {
		n += int64(len(s))
	}
	return n
}

func (b *Lines) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, s := range b.lines {
		n, err := io.WriteString(w, s)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (b *Lines) Save() error {
	if err := save(b.filename, b); err != nil {
		b.log.Warn("save failed", "file", b.filename, "err", err)
		return err
	}
	b.log.Debug("saved", "file", b.filename, "lines", len(b.lines))
	return nil
}

func (b *Lines) Filename() string        { return b.filename }
func (b *Lines) SetFilename(name string) { b.filename = name }

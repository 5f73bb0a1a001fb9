package buffer

import (
	"bytes"
	"io"
	"log/slog"
)

// Contiguous stores the whole text in one growable byte slice. Line bounds
// are found by scanning for line feeds, starting from the last line looked
// up when possible, so sequential access stays cheap while random access
// costs O(offset).
type Contiguous struct {
	filename string
	text     []byte
	numLines int // line feeds + 1

	// Remembered start offset of hintLine.
	hintLine int
	hintOff  int

	log *slog.Logger
}

// Statically check that *Contiguous implements the Buffer interface.
var _ Buffer = (*Contiguous)(nil)

func newContiguous(filename string, lines []string, log *slog.Logger) *Contiguous {
	size := 0
	for _, s := range lines {
		size += len(s)
	}
	// Twice the file length so the first insertions don't reallocate.
	text := make([]byte, 0, 2*size)
	for _, s := range lines {
		text = append(text, s...)
	}
	log.Debug("contiguous buffer allocated", "bytes", size, "capacity", cap(text))
	return &Contiguous{
		filename: filename,
		text:     text,
		numLines: len(lines),
		log:      log,
	}
}

// lineBounds returns the start and end offsets of line n, the end including
// the terminator when there is one.
func (b *Contiguous) lineBounds(n int) (start, end int, ok bool) {
	if n < 0 || n >= b.numLines {
		return 0, 0, false
	}
	line, off := 0, 0
	if b.hintLine <= n {
		line, off = b.hintLine, b.hintOff
	}
	for line < n {
		i := bytes.IndexByte(b.text[off:], '\n')
		if i < 0 {
			return 0, 0, false
		}
		off += i + 1
		line++
	}
	b.hintLine, b.hintOff = line, off

	end = len(b.text)
	if i := bytes.IndexByte(b.text[off:], '\n'); i >= 0 {
		end = off + i + 1
	}
	return off, end, true
}

// invalidate drops the remembered offset if an edit on line moved it.
func (b *Contiguous) invalidate(line int) {
	if b.hintLine > line {
		b.hintLine, b.hintOff = 0, 0
	}
}

func (b *Contiguous) GetLine(n int) (string, bool) {
	start, end, ok := b.lineBounds(n)
	if !ok {
		return "", false
	}
	return string(b.text[start:end]), true
}

func (b *Contiguous) InsertChar(ch byte, line, col int) {
	start, end, ok := b.lineBounds(line)
	if !ok {
		return
	}
	clean := end - start
	if end > start && b.text[end-1] == '\n' {
		clean--
	}
	if col < 0 || col > clean {
		return
	}
	pos := start + col
	b.text = append(b.text, 0)
	copy(b.text[pos+1:], b.text[pos:])
	b.text[pos] = ch
	if ch == '\n' {
		b.numLines++
	}
	b.invalidate(line)
}

func (b *Contiguous) DelChar(line, col int) {
	start, end, ok := b.lineBounds(line)
	if !ok || col < 0 || start+col >= end {
		return
	}
	pos := start + col
	if b.text[pos] == '\n' {
		b.numLines--
	}
	b.text = append(b.text[:pos], b.text[pos+1:]...)
	b.invalidate(line)
}

func (b *Contiguous) LineCount() int {
	return b.numLines
}

func (b *Contiguous) Size() int64 {
	return int64(len(b.text))
}

func (b *Contiguous) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.text)
	return int64(n), err
}

func (b *Contiguous) Save() error {
	if err := save(b.filename, b); err != nil {
		b.log.Warn("save failed", "file", b.filename, "err", err)
		return err
	}
	b.log.Debug("saved", "file", b.filename, "bytes", len(b.text))
	return nil
}

func (b *Contiguous) Filename() string        { return b.filename }
func (b *Contiguous) SetFilename(name string) { b.filename = name }

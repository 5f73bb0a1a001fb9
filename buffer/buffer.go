package buffer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Buffer is the line-oriented contract every storage strategy implements.
//
// Lines are addressed by zero-based index and returned raw, including the
// trailing line feed when the line has one. Out of range edits are silent
// no-ops; callers check bounds with GetLine first.
type Buffer interface {
	// GetLine returns the raw content of line n, or ok == false when there is
	// no such line.
	GetLine(n int) (line string, ok bool)

	// InsertChar inserts ch at byte offset col of line. A line feed splits the
	// line in two.
	InsertChar(ch byte, line, col int)

	// DelChar deletes the byte at offset col of line. Deleting the terminator
	// joins the following line onto this one.
	DelChar(line, col int)

	// LineCount returns the number of addressable lines. It is never zero.
	LineCount() int

	// Size returns the total length of the text in bytes.
	Size() int64

	// WriteTo writes the entire contents of the buffer to an io.Writer.
	WriteTo(w io.Writer) (int64, error)

	// Save writes the buffer to its file, truncating it.
	Save() error

	Filename() string
	SetFilename(name string)
}

// Kind selects a storage strategy.
type Kind string

const (
	KindLines      Kind = "lines"
	KindContiguous Kind = "contiguous"
	KindRope       Kind = "rope"
)

// Kinds lists every supported strategy.
var Kinds = []Kind{KindLines, KindContiguous, KindRope}

// ParseKind maps a configuration value to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindLines, nil
	}
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown buffer kind %q (want one of %v)", s, Kinds)
}

// Open reads filename into a new buffer of the given kind.
//
// A missing file yields an empty buffer; the file is created by the first
// Save. Any other failure is reported as *OpenError.
func Open(kind Kind, filename string, log *slog.Logger) (Buffer, error) {
	if log == nil {
		log = slog.Default()
	}
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("file does not exist, starting empty", "file", filename)
			return NewFromReader(kind, filename, strings.NewReader(""), log)
		}
		return nil, &OpenError{Path: filename, Err: err}
	}
	defer f.Close()

	b, err := NewFromReader(kind, filename, f, log)
	if err != nil {
		return nil, &OpenError{Path: filename, Err: err}
	}
	log.Debug("opened file", "file", filename, "kind", string(kind),
		"lines", b.LineCount(), "bytes", b.Size())
	return b, nil
}

// NewFromReader builds a buffer from r, normalizing CRLF to LF.
func NewFromReader(kind Kind, filename string, r io.Reader, log *slog.Logger) (Buffer, error) {
	if log == nil {
		log = slog.Default()
	}
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindLines, "":
		return newLines(filename, lines, log), nil
	case KindContiguous:
		return newContiguous(filename, lines, log), nil
	case KindRope:
		return newRope(filename, lines, log), nil
	}
	return nil, fmt.Errorf("unknown buffer kind %q", kind)
}

// save writes src to filename. The buffer itself is never touched, so a
// failed save can simply be retried.
func save(filename string, src io.WriterTo) error {
	if filename == "" {
		return &SaveError{Path: filename, Err: errNoFilename}
	}
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &SaveError{Path: filename, Err: err}
	}
	if _, err := src.WriteTo(f); err != nil {
		f.Close()
		return &SaveError{Path: filename, Err: err}
	}
	if err := f.Close(); err != nil {
		return &SaveError{Path: filename, Err: err}
	}
	return nil
}

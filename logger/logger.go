// Package logger provides the diagnostic sink. Records are kept in memory
// while the editor owns the screen and written out by Flush when the program
// stops; optionally they are also appended to a rotating log file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is one captured log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   string
}

// Format renders the entry for the exit report.
func (e Entry) Format() string {
	s := fmt.Sprintf("%s %-5s %s", e.Time.Format("15:04:05"), e.Level.String(), e.Message)
	if e.Attrs != "" {
		s += " " + e.Attrs
	}
	return s
}

// ringBuffer is a fixed-size circular buffer for log entries.
type ringBuffer struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	head    int
	count   int
	dropped int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		entries: make([]Entry, size),
		size:    size,
	}
}

func (rb *ringBuffer) add(entry Entry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.count == rb.size {
		rb.dropped++
	}
	rb.entries[rb.head] = entry
	rb.head = (rb.head + 1) % rb.size
	if rb.count < rb.size {
		rb.count++
	}
}

func (rb *ringBuffer) getAll() ([]Entry, int) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	result := make([]Entry, rb.count)
	for i := 0; i < rb.count; i++ {
		idx := (rb.head - rb.count + i + rb.size) % rb.size
		result[i] = rb.entries[idx]
	}
	return result, rb.dropped
}

// captureHandler records entries into the ring and forwards them to inner.
type captureHandler struct {
	inner  slog.Handler
	level  slog.Leveler
	buffer *ringBuffer
	attrs  []slog.Attr
}

func (h *captureHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *captureHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs string
	add := func(a slog.Attr) bool {
		if attrs != "" {
			attrs += " "
		}
		attrs += a.String()
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)
	h.buffer.add(Entry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	if h.inner != nil && h.inner.Enabled(ctx, r.Level) {
		return h.inner.Handle(ctx, r)
	}
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	if h.inner != nil {
		nh.inner = h.inner.WithAttrs(attrs)
	}
	return &nh
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	nh := *h
	if h.inner != nil {
		nh.inner = h.inner.WithGroup(name)
	}
	return &nh
}

// Options configures a Sink.
type Options struct {
	Level slog.Level
	// File, when set, receives every record as JSON through a rotating writer.
	File      string
	MaxSizeMB int
	// Capacity bounds the in-memory history. Defaults to 256.
	Capacity int
}

// Sink owns the process's diagnostics. Create it at startup, pass Logger()
// to the components that log, and call Flush once at exit.
type Sink struct {
	log    *slog.Logger
	buffer *ringBuffer
	file   *lumberjack.Logger
	once   sync.Once
}

// New creates a Sink.
func New(opts Options) *Sink {
	if opts.Capacity <= 0 {
		opts.Capacity = 256
	}
	s := &Sink{buffer: newRingBuffer(opts.Capacity)}

	var inner slog.Handler
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		s.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		inner = slog.NewJSONHandler(s.file, &slog.HandlerOptions{Level: opts.Level})
	}
	s.log = slog.New(&captureHandler{
		inner:  inner,
		level:  opts.Level,
		buffer: s.buffer,
	})
	return s
}

// Logger returns the structured logger writing into the sink.
func (s *Sink) Logger() *slog.Logger {
	return s.log
}

// Entries returns the captured records, oldest first.
func (s *Sink) Entries() []Entry {
	entries, _ := s.buffer.getAll()
	return entries
}

// Flush writes the captured records to w and closes the log file. Only the
// first call has any effect.
func (s *Sink) Flush(w io.Writer) error {
	var err error
	s.once.Do(func() {
		entries, dropped := s.buffer.getAll()
		if dropped > 0 {
			_, err = fmt.Fprintf(w, "(%d earlier diagnostics dropped)\n", dropped)
		}
		for _, e := range entries {
			if err != nil {
				break
			}
			_, err = fmt.Fprintln(w, e.Format())
		}
		if s.file != nil {
			if cerr := s.file.Close(); err == nil {
				err = cerr
			}
		}
	})
	return err
}

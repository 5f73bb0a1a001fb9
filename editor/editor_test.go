package editor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulga138/tekst/buffer"
	"github.com/bulga138/tekst/config"
)

// mockTerminal is a test implementation of the Terminal interface
type mockTerminal struct {
	mu            sync.Mutex
	width, height int
	stdin         io.Reader
	stdout        bytes.Buffer
	raw           bool
	rawErr        error
	resize        chan<- struct{}
	registered    chan struct{}
}

func newMockTerminal(input io.Reader) *mockTerminal {
	return &mockTerminal{
		width:      80,
		height:     24,
		stdin:      input,
		registered: make(chan struct{}),
	}
}

func (m *mockTerminal) EnableRawMode() error {
	if m.rawErr != nil {
		return m.rawErr
	}
	m.raw = true
	return nil
}

func (m *mockTerminal) DisableRawMode() error {
	m.raw = false
	return nil
}

func (m *mockTerminal) GetWindowSize() (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height, nil
}

func (m *mockTerminal) setSize(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width, m.height = width, height
}

func (m *mockTerminal) Stdin() io.Reader  { return m.stdin }
func (m *mockTerminal) Stdout() io.Writer { return &m.stdout }
func (m *mockTerminal) Close() error      { return nil }

func (m *mockTerminal) NotifyResize(ch chan<- struct{}) func() {
	m.resize = ch
	close(m.registered)
	return func() {}
}

func openTemp(t *testing.T, content string) (buffer.Buffer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	b, err := buffer.Open(buffer.KindLines, path, nil)
	require.NoError(t, err)
	return b, path
}

func runEditor(t *testing.T, term *mockTerminal, b buffer.Buffer) {
	t.Helper()
	e := New(term, config.DefaultConfig(), b, nil)
	require.NoError(t, e.Run(context.Background()))
	assert.False(t, term.raw, "raw mode restored")
}

func TestEditor_TypeAndSave(t *testing.T) {
	b, path := openTemp(t, "")
	term := newMockTerminal(strings.NewReader("hello\rworld\x13\x11"))
	runEditor(t, term, b)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", string(data))
}

func TestEditor_EditExistingFile(t *testing.T) {
	b, path := openTemp(t, "abc\r\ndef\r\n")
	// Down, End, Backspace, Up, Delete, then save.
	term := newMockTerminal(strings.NewReader("\x1b[B\x1b[F\x7f\x1b[A\x1b[3~\x13\x11"))
	runEditor(t, term, b)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ab\nde\n", string(data))
}

func TestEditor_EndOfInputQuitsWithoutSaving(t *testing.T) {
	b, path := openTemp(t, "")
	term := newMockTerminal(strings.NewReader("abc"))
	runEditor(t, term, b)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing saved")
	line, _ := b.GetLine(0)
	assert.Equal(t, "abc", line)
}

func TestEditor_SaveAs(t *testing.T) {
	b, path := openTemp(t, "")
	target := filepath.Join(filepath.Dir(path), "other.txt")
	term := newMockTerminal(strings.NewReader("x\x05" + target + "\x7fX\r\x11"))
	runEditor(t, term, b)

	got := target[:len(target)-1] + "X"
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	assert.Equal(t, got, b.Filename())
	assert.Contains(t, term.stdout.String(), "Save as: ")
}

func TestEditor_SaveAsCancelled(t *testing.T) {
	b, path := openTemp(t, "")
	term := newMockTerminal(strings.NewReader("\x05abc\x1b"))
	runEditor(t, term, b)

	assert.Equal(t, path, b.Filename())
	assert.Contains(t, term.stdout.String(), "Save cancelled")
}

func TestEditor_SaveFailureKeepsRunning(t *testing.T) {
	b, err := buffer.Open(buffer.KindRope, filepath.Join(t.TempDir(), "missing", "doc.txt"), nil)
	require.NoError(t, err)
	term := newMockTerminal(strings.NewReader("a\x13b\x11"))
	runEditor(t, term, b)

	line, _ := b.GetLine(0)
	assert.Equal(t, "ab", line, "typing continued after the failed save")
	assert.Contains(t, term.stdout.String(), "Save error")
}

func TestEditor_RawModeError(t *testing.T) {
	b, _ := openTemp(t, "")
	term := newMockTerminal(strings.NewReader(""))
	term.rawErr = errors.New("not a tty")
	e := New(term, config.DefaultConfig(), b, nil)
	assert.ErrorContains(t, e.Run(context.Background()), "not a tty")
}

func TestEditor_ContextCancel(t *testing.T) {
	b, _ := openTemp(t, "")
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	term := newMockTerminal(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := New(term, config.DefaultConfig(), b, nil)
	assert.NoError(t, e.Run(ctx))
}

func TestEditor_Resize(t *testing.T) {
	b, _ := openTemp(t, "")
	pr, pw := io.Pipe()
	term := newMockTerminal(pr)

	go func() {
		defer pw.Close()
		select {
		case <-term.registered:
		case <-time.After(5 * time.Second):
			return
		}
		term.setSize(40, 10)
		term.resize <- struct{}{}
		io.WriteString(pw, "\x11")
	}()
	runEditor(t, term, b)

	out := term.stdout.String()
	assert.Contains(t, out, "\x1b[1;23r", "initial scroll region above the status row")
	assert.Contains(t, out, "\x1b[1;9r", "scroll region after resize")
}

package buffer

import (
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Constants for node size, controlling performance.
const (
	maxLeafSize = 1024 // Split leaf if it grows larger than this
)

// Rope stores the text in a binary tree of byte leaves and keeps a table of
// line start offsets, so line lookup is a table index plus an O(log N) walk.
type Rope struct {
	filename   string
	root       *node
	lineStarts []int // Byte offset of the start of each line.
	log        *slog.Logger
}

// node is a node in the rope's binary tree.
type node struct {
	left, right *node
	weight      int // Length of the left subtree
	leaf        bool
	data        []byte
}

// Statically check that *Rope implements the Buffer interface.
var _ Buffer = (*Rope)(nil)

func newRope(filename string, lines []string, log *slog.Logger) *Rope {
	r := &Rope{
		filename: filename,
		root:     buildNode([]byte(strings.Join(lines, ""))),
		log:      log,
	}
	r.rebuildLineIndex()
	log.Debug("rope built", "bytes", r.root.length(), "lines", len(r.lineStarts))
	return r
}

// buildNode splits data into a balanced tree of leaves no larger than
// maxLeafSize.
func buildNode(data []byte) *node {
	if len(data) <= maxLeafSize {
		leaf := make([]byte, len(data))
		copy(leaf, data)
		return &node{leaf: true, data: leaf}
	}
	mid := len(data) / 2
	return &node{
		left:   buildNode(data[:mid]),
		right:  buildNode(data[mid:]),
		weight: mid,
	}
}

// rebuildLineIndex scans every leaf once. Only used at construction.
func (r *Rope) rebuildLineIndex() {
	r.lineStarts = []int{0}
	off := 0
	r.root.walk(func(data []byte) {
		for i, c := range data {
			if c == '\n' {
				r.lineStarts = append(r.lineStarts, off+i+1)
			}
		}
		off += len(data)
	})
}

func (r *Rope) lineEnd(line int) int {
	if line+1 < len(r.lineStarts) {
		return r.lineStarts[line+1]
	}
	return r.root.length()
}

func (r *Rope) GetLine(n int) (string, bool) {
	if n < 0 || n >= len(r.lineStarts) {
		return "", false
	}
	var sb strings.Builder
	r.root.slice(r.lineStarts[n], r.lineEnd(n), &sb)
	return sb.String(), true
}

func (r *Rope) InsertChar(ch byte, line, col int) {
	if line < 0 || line >= len(r.lineStarts) {
		return
	}
	start, end := r.lineStarts[line], r.lineEnd(line)
	clean := end - start
	if line+1 < len(r.lineStarts) {
		clean-- // terminator
	}
	if col < 0 || col > clean {
		return
	}
	index := start + col
	r.root = r.root.insert(index, ch)
	r.updateLineIndexOnInsert(index, ch)
}

func (r *Rope) DelChar(line, col int) {
	if line < 0 || line >= len(r.lineStarts) {
		return
	}
	start, end := r.lineStarts[line], r.lineEnd(line)
	if col < 0 || start+col >= end {
		return
	}
	index := start + col
	c, ok := r.root.byteAt(index)
	if !ok {
		return
	}
	r.root = r.root.delete(index)
	r.updateLineIndexOnDelete(index, c)
}

func (r *Rope) LineCount() int {
	return len(r.lineStarts)
}

func (r *Rope) Size() int64 {
	return int64(r.root.length())
}

// WriteTo streams the leaves in order without building one big string.
func (r *Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var werr error
	r.root.walk(func(data []byte) {
		if werr != nil {
			return
		}
		n, err := w.Write(data)
		total += int64(n)
		werr = err
	})
	return total, werr
}

func (r *Rope) Save() error {
	if err := save(r.filename, r); err != nil {
		r.log.Warn("save failed", "file", r.filename, "err", err)
		return err
	}
	r.log.Debug("saved", "file", r.filename, "bytes", r.root.length())
	return nil
}

func (r *Rope) Filename() string        { return r.filename }
func (r *Rope) SetFilename(name string) { r.filename = name }

// --- Node Helper Methods ---

func (n *node) length() int {
	if n.leaf {
		return len(n.data)
	}
	total := n.weight
	if n.right != nil {
		total += n.right.length()
	}
	return total
}

// walk visits the leaves left to right.
func (n *node) walk(fn func([]byte)) {
	if n == nil {
		return
	}
	if n.leaf {
		fn(n.data)
		return
	}
	n.left.walk(fn)
	n.right.walk(fn)
}

// slice appends bytes [from, to) of the subtree to sb.
func (n *node) slice(from, to int, sb *strings.Builder) {
	if n == nil || from >= to {
		return
	}
	if n.leaf {
		if from < 0 {
			from = 0
		}
		if to > len(n.data) {
			to = len(n.data)
		}
		if from < to {
			sb.Write(n.data[from:to])
		}
		return
	}
	if from < n.weight {
		n.left.slice(from, min(to, n.weight), sb)
	}
	if to > n.weight {
		n.right.slice(max(from-n.weight, 0), to-n.weight, sb)
	}
}

func (n *node) byteAt(index int) (byte, bool) {
	if n == nil {
		return 0, false
	}
	if n.leaf {
		if index < 0 || index >= len(n.data) {
			return 0, false
		}
		return n.data[index], true
	}
	if index < n.weight {
		return n.left.byteAt(index)
	}
	return n.right.byteAt(index - n.weight)
}

func (n *node) insert(index int, c byte) *node {
	if n.leaf {
		n.data = append(n.data, 0)
		copy(n.data[index+1:], n.data[index:])
		n.data[index] = c
		if len(n.data) > maxLeafSize {
			// Split the node
			mid := len(n.data) / 2
			leftData := make([]byte, mid)
			copy(leftData, n.data[:mid])
			rightData := make([]byte, len(n.data)-mid)
			copy(rightData, n.data[mid:])
			return &node{
				left:   &node{leaf: true, data: leftData},
				right:  &node{leaf: true, data: rightData},
				weight: mid,
			}
		}
		return n
	}

	if index < n.weight {
		n.left = n.left.insert(index, c)
		n.weight++
	} else {
		n.right = n.right.insert(index-n.weight, c)
	}
	return n
}

func (n *node) delete(index int) *node {
	if n.leaf {
		n.data = append(n.data[:index], n.data[index+1:]...)
		return n
	}

	if index < n.weight {
		n.left = n.left.delete(index)
		n.weight--
	} else {
		n.right = n.right.delete(index - n.weight)
	}

	// Promote the sibling of an emptied child.
	if n.left.length() == 0 {
		return n.right
	}
	if n.right.length() == 0 {
		return n.left
	}
	return n
}

// findLine uses binary search to find the line containing index.
func (r *Rope) findLine(index int) int {
	i := sort.SearchInts(r.lineStarts, index)
	if i < len(r.lineStarts) && r.lineStarts[i] == index {
		return i
	}
	return i - 1
}

func (r *Rope) updateLineIndexOnInsert(index int, c byte) {
	line := r.findLine(index)
	for i := line + 1; i < len(r.lineStarts); i++ {
		r.lineStarts[i]++
	}
	if c == '\n' {
		r.lineStarts = append(r.lineStarts, 0)
		copy(r.lineStarts[line+2:], r.lineStarts[line+1:])
		r.lineStarts[line+1] = index + 1
	}
}

func (r *Rope) updateLineIndexOnDelete(index int, c byte) {
	line := r.findLine(index)
	if c == '\n' && line+1 < len(r.lineStarts) {
		// The line after the deleted terminator disappears.
		r.lineStarts = append(r.lineStarts[:line+1], r.lineStarts[line+2:]...)
	}
	for i := line + 1; i < len(r.lineStarts); i++ {
		r.lineStarts[i]--
	}
}

package editor

import "github.com/bulga138/tekst/buffer"

// Row is one cached display row: a line snapshot, or OK == false for a row
// past the end of the file.
type Row struct {
	Text string
	OK   bool
}

// ViewCache mirrors the buffer lines currently on screen. Row r always holds
// what GetLine(scrollOffset + r) returns; the controller keeps it that way.
type ViewCache struct {
	rows []Row
}

func newViewCache(b buffer.Buffer, offset, height int) *ViewCache {
	v := &ViewCache{rows: make([]Row, height)}
	v.Reload(b, offset)
	return v
}

func loadRow(b buffer.Buffer, n int) Row {
	text, ok := b.GetLine(n)
	return Row{Text: text, OK: ok}
}

func (v *ViewCache) Len() int { return len(v.rows) }

func (v *ViewCache) At(r int) Row {
	if r < 0 || r >= len(v.rows) {
		return Row{}
	}
	return v.rows[r]
}

func (v *ViewCache) Set(r int, row Row) {
	if r >= 0 && r < len(v.rows) {
		v.rows[r] = row
	}
}

// Reload refills every row starting at buffer line offset.
func (v *ViewCache) Reload(b buffer.Buffer, offset int) {
	for r := range v.rows {
		v.rows[r] = loadRow(b, offset+r)
	}
}

// ShiftUp drops the first row and appends bottom.
func (v *ViewCache) ShiftUp(bottom Row) {
	if len(v.rows) == 0 {
		return
	}
	copy(v.rows, v.rows[1:])
	v.rows[len(v.rows)-1] = bottom
}

// ShiftDown drops the last row and prepends top.
func (v *ViewCache) ShiftDown(top Row) {
	if len(v.rows) == 0 {
		return
	}
	copy(v.rows[1:], v.rows)
	v.rows[0] = top
}

// Insert puts row at r, pushing the rows below down; the last row falls off.
func (v *ViewCache) Insert(r int, row Row) {
	if r < 0 || r >= len(v.rows) {
		return
	}
	copy(v.rows[r+1:], v.rows[r:])
	v.rows[r] = row
}

// Remove deletes row r, pulling the rows below up. The bottom row becomes a
// placeholder the caller must reload.
func (v *ViewCache) Remove(r int) {
	if r < 0 || r >= len(v.rows) {
		return
	}
	copy(v.rows[r:], v.rows[r+1:])
	v.rows[len(v.rows)-1] = Row{}
}

package history

import (
	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

// Buffer is a fixed-capacity ring of columns, newest first.
// It is owned by the polling loop and not safe for concurrent use.
type Buffer struct {
	columns [constants.HistoryCapacity]Column
	head    int // index of the newest column
	count   int
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Push adds col as the newest column. When the ring is full the oldest
// column is evicted and returned with evicted=true.
func (b *Buffer) Push(col Column) (old Column, evicted bool) {
	b.head = (b.head - 1 + len(b.columns)) % len(b.columns)
	if b.count == len(b.columns) {
		old, evicted = b.columns[b.head], true
	} else {
		b.count++
	}
	b.columns[b.head] = col
	return old, evicted
}

func (b *Buffer) Len() int {
	return b.count
}

// At returns the column i pushes ago; At(0) is the newest
func (b *Buffer) At(i int) (Column, bool) {
	if i < 0 || i >= b.count {
		return Column{}, false
	}
	return b.columns[(b.head+i)%len(b.columns)], true
}

// Columns returns a copy of the stored columns, newest first
func (b *Buffer) Columns() []Column {
	result := make([]Column, 0, b.count)
	for i := 0; i < b.count; i++ {
		col, _ := b.At(i)
		result = append(result, col)
	}
	return result
}

func (b *Buffer) Clear() {
	*b = Buffer{}
}

// Frame renders the buffer as a matrix image. Column x is the column x
// pushes ago; slots not yet filled stay off.
func (b *Buffer) Frame() model.Frame {
	var frame model.Frame
	for x := 0; x < b.count; x++ {
		col, _ := b.At(x)
		frame[x] = col.Cells
	}
	return frame
}

// ErrorFrame is the red "X" shown once retries are exhausted
func ErrorFrame() model.Frame {
	var frame model.Frame
	for i := 1; i <= 6; i++ {
		frame[i][i] = model.ColorRed
		frame[i][7-i] = model.ColorRed
	}
	return frame
}

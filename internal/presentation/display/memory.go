package display

import (
	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

// MemoryNumeric records what a numeric display would show. It backs
// headless runs (--display none) and tests.
type MemoryNumeric struct {
	Text      string
	Separator bool
	Begun     bool
	Closed    bool
	// History of every Show call
	Shown []string
	// History of every SetSeparator call
	SeparatorChanges []bool
	// Err, when set, is returned by every call
	Err error
}

func NewMemoryNumeric() *MemoryNumeric {
	return &MemoryNumeric{}
}

func (n *MemoryNumeric) Begin() error {
	n.Begun = true
	return n.Err
}

func (n *MemoryNumeric) Show(text string) error {
	if n.Err != nil {
		return n.Err
	}
	n.Text = text
	n.Shown = append(n.Shown, text)
	return nil
}

func (n *MemoryNumeric) SetSeparator(visible bool) error {
	if n.Err != nil {
		return n.Err
	}
	n.Separator = visible
	n.SeparatorChanges = append(n.SeparatorChanges, visible)
	return nil
}

func (n *MemoryNumeric) Clear() error {
	n.Text = ""
	n.Separator = false
	return n.Err
}

func (n *MemoryNumeric) Close() error {
	n.Closed = true
	return nil
}

// MemoryMatrix records matrix frames
type MemoryMatrix struct {
	buffer  model.Frame
	Current model.Frame
	Flushes int
	Begun   bool
	Closed  bool
	// Frames holds every flushed frame
	Frames []model.Frame
	Err    error
}

func NewMemoryMatrix() *MemoryMatrix {
	return &MemoryMatrix{}
}

func (m *MemoryMatrix) Begin() error {
	m.Begun = true
	return m.Err
}

func (m *MemoryMatrix) SetPixel(x, y int, c model.Color) {
	if x < 0 || y < 0 || x >= len(m.buffer) || y >= len(m.buffer[x]) {
		return
	}
	m.buffer[x][y] = c
}

func (m *MemoryMatrix) Flush() error {
	if m.Err != nil {
		return m.Err
	}
	m.Current = m.buffer
	m.Frames = append(m.Frames, m.buffer)
	m.Flushes++
	return nil
}

func (m *MemoryMatrix) Clear() error {
	m.buffer = model.Frame{}
	return m.Flush()
}

func (m *MemoryMatrix) Close() error {
	m.Closed = true
	return nil
}

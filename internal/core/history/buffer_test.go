package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

func columnWithFilled(n int) Column {
	return Column{Filled: n}
}

func TestBufferPush(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, 0, b.Len())

	_, ok := b.At(0)
	assert.False(t, ok)

	for i := 0; i < 8; i++ {
		_, evicted := b.Push(columnWithFilled(i))
		assert.False(t, evicted)
	}
	assert.Equal(t, 8, b.Len())

	newest, ok := b.At(0)
	require.True(t, ok)
	assert.Equal(t, 7, newest.Filled)
	oldest, ok := b.At(7)
	require.True(t, ok)
	assert.Equal(t, 0, oldest.Filled)

	old, evicted := b.Push(columnWithFilled(8))
	assert.True(t, evicted)
	assert.Equal(t, 0, old.Filled)
	assert.Equal(t, 8, b.Len())

	cols := b.Columns()
	require.Len(t, cols, 8)
	for i, col := range cols {
		assert.Equal(t, 8-i, col.Filled)
	}
}

func TestBufferNeverExceedsCapacity(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < 50; i++ {
		b.Push(columnWithFilled(i % 7))
		assert.LessOrEqual(t, b.Len(), 8)
	}
	newest, _ := b.At(0)
	assert.Equal(t, 49%7, newest.Filled)
}

func TestBufferFrame(t *testing.T) {
	b := NewBuffer()
	scale := DefaultBarScale()
	b.Push(EncodeColumn(model.TravelSample{CurrentMinutes: 30, BaselineMinutes: 22, IncidentPresent: true}, scale))
	b.Push(EncodeColumn(model.TravelSample{CurrentMinutes: 24, BaselineMinutes: 22}, scale))

	frame := b.Frame()
	assert.Equal(t, model.ColorGreen, frame[0][0])
	assert.Equal(t, model.ColorOff, frame[0][1])
	assert.Equal(t, model.ColorOff, frame[0][7])

	assert.Equal(t, model.ColorYellow, frame[1][3])
	assert.Equal(t, model.ColorFlag, frame[1][7])

	for x := 2; x < 8; x++ {
		for y := 0; y < 8; y++ {
			assert.Equal(t, model.ColorOff, frame[x][y])
		}
	}

	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, model.Frame{}, b.Frame())
}

func TestErrorFrame(t *testing.T) {
	frame := ErrorFrame()
	lit := 0
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if frame[x][y] != model.ColorOff {
				assert.Equal(t, model.ColorRed, frame[x][y])
				assert.True(t, x == y || x+y == 7, "unexpected pixel %d,%d", x, y)
				lit++
			}
		}
	}
	assert.Equal(t, 12, lit)
	assert.Equal(t, model.ColorOff, frame[0][0])
	assert.Equal(t, model.ColorRed, frame[1][6])
}

package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_PlainRender(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, "Commute")
	numeric := term.Numeric()
	matrix := term.Matrix()

	require.NoError(t, numeric.Begin())
	require.NoError(t, matrix.Begin())
	assert.Empty(t, out.String(), "no control sequences on a non-terminal writer")

	require.NoError(t, numeric.Show("0829"))
	require.NoError(t, numeric.SetSeparator(true))

	matrix.SetPixel(0, 0, model.ColorGreen)
	matrix.SetPixel(0, 1, model.ColorYellow)
	matrix.SetPixel(0, 7, model.ColorFlag)
	matrix.SetPixel(7, 0, model.ColorRed)
	require.NoError(t, matrix.Flush())

	rendered := term.Render()
	assert.Contains(t, rendered, "08:29")

	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	grid := lines[len(lines)-8:]
	assert.Equal(t, ". . . . . . . !", grid[0], "top row, newest column on the right")
	assert.Equal(t, ". . . . . . . Y", grid[6])
	assert.Equal(t, "R . . . . . . G", grid[7], "bottom row")
}

func TestTerminal_SeparatorOff(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, "Commute")
	numeric := term.Numeric()

	require.NoError(t, numeric.Show("1745"))
	assert.Contains(t, term.Render(), "17 45")

	require.NoError(t, numeric.SetSeparator(true))
	assert.Contains(t, term.Render(), "17:45")
}

func TestTerminal_ShowKeepsLastFourCharacters(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, "Commute")
	require.NoError(t, term.Numeric().Show("123456"))
	assert.Contains(t, term.Render(), "34 56")
}

func TestTerminal_SetPixelBufferedUntilFlush(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, "Commute")
	matrix := term.Matrix()

	matrix.SetPixel(0, 0, model.ColorRed)
	assert.NotContains(t, term.Render(), "R")

	require.NoError(t, matrix.Flush())
	assert.Contains(t, term.Render(), "R")

	require.NoError(t, matrix.Clear())
	assert.NotContains(t, term.Render(), "R")
}

func TestTerminal_ClearNumeric(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, "Commute")
	numeric := term.Numeric()
	require.NoError(t, numeric.Show("0829"))
	require.NoError(t, numeric.SetSeparator(true))
	require.NoError(t, numeric.Clear())

	assert.NotContains(t, term.Render(), "08")
	assert.NotContains(t, term.Render(), ":")
}

func TestTerminal_RedrawsAppendToWriter(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, "Commute")
	require.NoError(t, term.Numeric().Show("0829"))
	require.NoError(t, term.Matrix().Flush())

	assert.Equal(t, 2, strings.Count(out.String(), "Commute"))
	assert.NotContains(t, out.String(), "\033[")
}

package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/util"
	"golang.org/x/term"
)

const defaultPanelWidth = 40

// Terminal renders a virtual numeric display and matrix display as one
// panel. On a TTY the panel is redrawn in place with ANSI colours; on any
// other writer each redraw is appended as plain text.
type Terminal struct {
	out       io.Writer
	ansi      bool
	title     string
	width     int
	digits    string
	separator bool
	buffer    model.Frame
	frame     model.Frame
	started   bool
	stopped   bool
}

func NewTerminal(out io.Writer, title string) *Terminal {
	t := &Terminal{
		out:   out,
		title: title,
		width: defaultPanelWidth,
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.ansi = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && w < t.width {
			t.width = w
		}
	}
	return t
}

// Numeric returns the numeric display view of the panel
func (t *Terminal) Numeric() NumericDisplay {
	return &terminalNumeric{t: t}
}

// Matrix returns the matrix display view of the panel
func (t *Terminal) Matrix() MatrixDisplay {
	return &terminalMatrix{t: t}
}

// Render returns the panel as it would currently be drawn
func (t *Terminal) Render() string {
	var b strings.Builder
	gridWidth := constants.MatrixSize*2 - 1

	title := util.PadString(t.title, t.width, true)
	if t.ansi {
		title = util.FormatHeaderTitle(title)
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(util.PadString(t.clockText(), (gridWidth+5)/2, false))
	b.WriteString("\n\n")

	// Newest column on the right, top row first
	for y := constants.MatrixSize - 1; y >= 0; y-- {
		cells := make([]string, 0, constants.MatrixSize)
		for x := constants.MatrixSize - 1; x >= 0; x-- {
			cells = append(cells, t.cell(t.frame[x][y]))
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Terminal) clockText() string {
	text := util.PadString(t.digits, constants.NumericDigits, false)
	sep := " "
	if t.separator {
		sep = ":"
	}
	return text[:2] + sep + text[2:]
}

func (t *Terminal) cell(c model.Color) string {
	if !t.ansi {
		switch c {
		case model.ColorGreen:
			return "G"
		case model.ColorYellow:
			return "Y"
		case model.ColorRed:
			return "R"
		case model.ColorFlag:
			return "!"
		default:
			return "."
		}
	}
	switch c {
	case model.ColorGreen:
		return util.Colorize(util.ColorGreen, "●")
	case model.ColorYellow, model.ColorFlag:
		return util.Colorize(util.ColorYellow, "●")
	case model.ColorRed:
		return util.Colorize(util.ColorRed, "●")
	default:
		return util.Colorize(util.ColorDim, "·")
	}
}

func (t *Terminal) redraw() error {
	var b strings.Builder
	if t.ansi {
		b.WriteString(util.MoveCursorHome + util.ClearScreen)
	}
	b.WriteString(t.Render())
	if !t.ansi {
		b.WriteString("\n")
	}
	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return fmt.Errorf("failed to draw terminal panel: %w", err)
	}
	return nil
}

func (t *Terminal) begin() error {
	if t.started {
		return nil
	}
	t.started = true
	if t.ansi {
		if _, err := io.WriteString(t.out, util.HideCursor+util.ClearScreen); err != nil {
			return err
		}
	}
	return nil
}

func (t *Terminal) close() error {
	if t.stopped {
		return nil
	}
	t.stopped = true
	if t.ansi {
		_, err := io.WriteString(t.out, util.ShowCursor)
		return err
	}
	return nil
}

type terminalNumeric struct {
	t *Terminal
}

func (n *terminalNumeric) Begin() error {
	return n.t.begin()
}

func (n *terminalNumeric) Show(text string) error {
	if len(text) > constants.NumericDigits {
		text = text[len(text)-constants.NumericDigits:]
	}
	n.t.digits = text
	return n.t.redraw()
}

func (n *terminalNumeric) SetSeparator(visible bool) error {
	if n.t.separator == visible {
		return nil
	}
	n.t.separator = visible
	return n.t.redraw()
}

func (n *terminalNumeric) Clear() error {
	n.t.digits = ""
	n.t.separator = false
	return n.t.redraw()
}

func (n *terminalNumeric) Close() error {
	return n.t.close()
}

type terminalMatrix struct {
	t *Terminal
}

func (m *terminalMatrix) Begin() error {
	return m.t.begin()
}

func (m *terminalMatrix) SetPixel(x, y int, c model.Color) {
	if x < 0 || y < 0 || x >= constants.MatrixSize || y >= constants.MatrixSize {
		return
	}
	m.t.buffer[x][y] = c
}

func (m *terminalMatrix) Flush() error {
	m.t.frame = m.t.buffer
	return m.t.redraw()
}

func (m *terminalMatrix) Clear() error {
	m.t.buffer = model.Frame{}
	return m.Flush()
}

func (m *terminalMatrix) Close() error {
	return m.t.close()
}

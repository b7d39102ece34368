package display

import (
	"context"
	"fmt"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/util"
)

// NumericDisplay is a four character display with a separator between the
// hour and minute digits
type NumericDisplay interface {
	// Begin initializes the device; it must be called once before use
	Begin() error
	// Show renders up to four characters, right aligned
	Show(text string) error
	// SetSeparator shows or hides the separator
	SetSeparator(visible bool) error
	// Clear blanks the display
	Clear() error
	Close() error
}

// MatrixDisplay is an 8x8 grid of coloured cells. SetPixel writes to a
// buffer; Flush pushes the buffer to the device.
type MatrixDisplay interface {
	Begin() error
	SetPixel(x, y int, c model.Color)
	Flush() error
	// Clear blanks the buffer and the device
	Clear() error
	Close() error
}

// DrawFrame writes a whole frame and flushes it
func DrawFrame(m MatrixDisplay, frame model.Frame) error {
	for x := 0; x < constants.MatrixSize; x++ {
		for y := 0; y < constants.MatrixSize; y++ {
			m.SetPixel(x, y, frame[x][y])
		}
	}
	if err := m.Flush(); err != nil {
		return fmt.Errorf("failed to flush matrix: %w", err)
	}
	return nil
}

// Splash draws the two chart axes one cell at a time, then erases them
func Splash(ctx context.Context, m MatrixDisplay, clock util.Clock) error {
	steps := []model.Color{model.ColorYellow, model.ColorOff}
	for _, color := range steps {
		for k := 0; k < constants.MatrixSize; k++ {
			m.SetPixel(0, k, color)
			m.SetPixel(k, 0, color)
			if err := m.Flush(); err != nil {
				return err
			}
			if err := clock.Sleep(ctx, constants.SplashStepDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

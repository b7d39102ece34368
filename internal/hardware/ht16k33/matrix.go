package ht16k33

import (
	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

// Matrix is the 8x8 bicolor backpack. Each row uses two bytes of display
// RAM: green anodes in the low byte, red in the high byte.
type Matrix struct {
	dev *Device
}

func NewMatrix(dev *Device) *Matrix {
	return &Matrix{dev: dev}
}

func (m *Matrix) Begin() error {
	return m.dev.Begin()
}

// SetPixel writes one cell to the buffer. Incident flags show yellow.
func (m *Matrix) SetPixel(x, y int, c model.Color) {
	if x < 0 || y < 0 || x >= constants.MatrixSize || y >= constants.MatrixSize {
		return
	}
	green, red := false, false
	switch c {
	case model.ColorGreen:
		green = true
	case model.ColorRed:
		red = true
	case model.ColorYellow, model.ColorFlag:
		green, red = true, true
	}
	m.dev.SetLED(y*16+x, green)
	m.dev.SetLED(y*16+x+8, red)
}

func (m *Matrix) Flush() error {
	return m.dev.WriteDisplay()
}

func (m *Matrix) Clear() error {
	m.dev.ClearBuffer()
	return m.dev.WriteDisplay()
}

func (m *Matrix) Close() error {
	return m.dev.Close()
}

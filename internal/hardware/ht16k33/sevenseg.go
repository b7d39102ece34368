package ht16k33

import (
	"fmt"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
)

// Segment patterns, bit 0 is segment A
var digitSegments = map[rune]byte{
	'0': 0x3F,
	'1': 0x06,
	'2': 0x5B,
	'3': 0x4F,
	'4': 0x66,
	'5': 0x6D,
	'6': 0x7D,
	'7': 0x07,
	'8': 0x7F,
	'9': 0x6F,
	'-': 0x40,
	' ': 0x00,
}

const colonBit byte = 0x02

// Buffer positions of the four digits; position 2 is the colon
var digitPositions = [constants.NumericDigits]int{0, 1, 3, 4}

// SevenSegment is the 4-digit backpack with a centre colon
type SevenSegment struct {
	dev   *Device
	colon bool
}

func NewSevenSegment(dev *Device) *SevenSegment {
	return &SevenSegment{dev: dev}
}

func (s *SevenSegment) Begin() error {
	return s.dev.Begin()
}

// Show renders up to four characters right aligned. Only digits, '-' and
// space are displayable.
func (s *SevenSegment) Show(text string) error {
	runes := []rune(text)
	if len(runes) > constants.NumericDigits {
		return fmt.Errorf("text %q is longer than %d characters", text, constants.NumericDigits)
	}
	padded := make([]rune, constants.NumericDigits-len(runes), constants.NumericDigits)
	for i := range padded {
		padded[i] = ' '
	}
	padded = append(padded, runes...)

	for i, r := range padded {
		seg, ok := digitSegments[r]
		if !ok {
			return fmt.Errorf("character %q cannot be shown on a seven-segment display", r)
		}
		s.setDigitRaw(digitPositions[i], seg)
	}
	s.applyColon()
	return s.dev.WriteDisplay()
}

func (s *SevenSegment) SetSeparator(visible bool) error {
	s.colon = visible
	s.applyColon()
	return s.dev.WriteDisplay()
}

func (s *SevenSegment) Clear() error {
	s.colon = false
	s.dev.ClearBuffer()
	return s.dev.WriteDisplay()
}

func (s *SevenSegment) Close() error {
	return s.dev.Close()
}

func (s *SevenSegment) setDigitRaw(pos int, bitmask byte) {
	s.dev.buffer[pos*2] = bitmask
}

func (s *SevenSegment) applyColon() {
	if s.colon {
		s.dev.buffer[4] = colonBit
	} else {
		s.dev.buffer[4] = 0
	}
}

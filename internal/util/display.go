package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorDim    = "\033[2m"
	ColorBold   = "\033[1m"

	ClearScreen    = "\033[2J"   // Clear entire screen
	MoveCursorHome = "\033[H"    // Move cursor to home position
	HideCursor     = "\033[?25l" // Hide cursor
	ShowCursor     = "\033[?25h" // Show cursor
)

// GetDisplayWidth calculates the display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadString pads s with spaces to a display width
func PadString(s string, width int, leftAlign bool) string {
	actual := GetDisplayWidth(s)
	if actual >= width {
		return s
	}
	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// Colorize wraps text in an ANSI colour
func Colorize(color, text string) string {
	return fmt.Sprintf("%s%s%s", color, text, ColorReset)
}

// FormatHeaderTitle formats header titles (Cyan + Bold)
func FormatHeaderTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorCyan, title, ColorReset)
}

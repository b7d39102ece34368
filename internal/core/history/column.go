package history

import (
	"fmt"
	"math"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

// BarScale controls how a delay becomes a lit bar.
// Green, Yellow and Red are row indices: rows below Green are green, rows
// in [Green, Yellow) are yellow and rows in [Yellow, Red) are red. Red is
// also the ceiling of the bar.
type BarScale struct {
	Green        int     `json:"green"`
	Yellow       int     `json:"yellow"`
	Red          int     `json:"red"`
	PixelMinutes float64 `json:"pixel_minutes"`
}

func DefaultBarScale() BarScale {
	return BarScale{
		Green:        constants.DefaultGreenThreshold,
		Yellow:       constants.DefaultYellowThreshold,
		Red:          constants.DefaultRedThreshold,
		PixelMinutes: constants.DefaultCommutePixelMinutes,
	}
}

func (s BarScale) Validate() error {
	if s.PixelMinutes <= 0 {
		return fmt.Errorf("commute pixel minutes must be positive, got %v", s.PixelMinutes)
	}
	if s.Green < 0 || s.Yellow < s.Green || s.Red < s.Yellow {
		return fmt.Errorf("bar thresholds must be non-decreasing, got %d/%d/%d", s.Green, s.Yellow, s.Red)
	}
	if s.Red > constants.MaxFilledRows {
		return fmt.Errorf("red threshold %d exceeds the %d rows below the incident row", s.Red, constants.MaxFilledRows)
	}
	return nil
}

// Column is one rendered tick on the scrolling matrix
type Column struct {
	Cells    [constants.MatrixSize]model.Color
	Filled   int
	Incident bool
}

// FilledRows returns floor(delay / pixelMinutes) clamped to [0, 7]
func FilledRows(delay, pixelMinutes float64) int {
	if delay <= 0 || pixelMinutes <= 0 {
		return 0
	}
	filled := int(math.Floor(delay / pixelMinutes))
	if filled > constants.MaxFilledRows {
		return constants.MaxFilledRows
	}
	return filled
}

// RowColor returns the fill colour for a lit row
func (s BarScale) RowColor(row int) model.Color {
	switch {
	case row < s.Green:
		return model.ColorGreen
	case row < s.Yellow:
		return model.ColorYellow
	default:
		return model.ColorRed
	}
}

// EncodeColumn turns a sample into a bar column
func EncodeColumn(sample model.TravelSample, scale BarScale) Column {
	filled := FilledRows(sample.Delay(), scale.PixelMinutes)
	if filled > scale.Red {
		filled = scale.Red
	}

	col := Column{Filled: filled, Incident: sample.IncidentPresent}
	for row := 0; row < filled; row++ {
		col.Cells[row] = scale.RowColor(row)
	}
	if sample.IncidentPresent {
		col.Cells[constants.IncidentRow] = model.ColorFlag
	}
	return col
}

// String renders the column bottom-up, one letter per cell
func (c Column) String() string {
	buf := make([]byte, 0, constants.MatrixSize)
	for _, cell := range c.Cells {
		switch cell {
		case model.ColorGreen:
			buf = append(buf, 'G')
		case model.ColorYellow:
			buf = append(buf, 'Y')
		case model.ColorRed:
			buf = append(buf, 'R')
		case model.ColorFlag:
			buf = append(buf, '!')
		default:
			buf = append(buf, '.')
		}
	}
	return string(buf)
}

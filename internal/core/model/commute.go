package model

import (
	"fmt"
	"math"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
)

// TravelSample is one normalized provider reading for the monitored route
type TravelSample struct {
	CurrentMinutes  float64   `json:"current_minutes"`
	BaselineMinutes float64   `json:"baseline_minutes"`
	IncidentPresent bool      `json:"incident_present"`
	Incidents       []string  `json:"incidents,omitempty"`
	Roads           []string  `json:"roads,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// Delay returns current minus baseline travel time, floored at zero
func (s TravelSample) Delay() float64 {
	if s.CurrentMinutes <= s.BaselineMinutes {
		return 0
	}
	return s.CurrentMinutes - s.BaselineMinutes
}

// Validate rejects samples that cannot describe a real trip
func (s TravelSample) Validate() error {
	if !isFinite(s.CurrentMinutes) {
		return fmt.Errorf("current travel time is not finite: %v", s.CurrentMinutes)
	}
	if !isFinite(s.BaselineMinutes) {
		return fmt.Errorf("baseline travel time is not finite: %v", s.BaselineMinutes)
	}
	if s.CurrentMinutes < 0 {
		return fmt.Errorf("current travel time is negative: %v", s.CurrentMinutes)
	}
	if s.BaselineMinutes < 0 {
		return fmt.Errorf("baseline travel time is negative: %v", s.BaselineMinutes)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DelayLevel is the coarse classification of a sample's delay
type DelayLevel int

const (
	DelayNone DelayLevel = iota
	DelayLow
	DelayMedium
	DelayHigh
)

func (l DelayLevel) String() string {
	switch l {
	case DelayNone:
		return "NONE"
	case DelayLow:
		return "LOW"
	case DelayMedium:
		return "MEDIUM"
	case DelayHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Color is a single LED cell colour on the matrix display
type Color int

const (
	ColorOff Color = iota
	ColorGreen
	ColorYellow
	ColorRed
	// ColorFlag marks an incident; devices map it to their incident colour
	ColorFlag
)

func (c Color) String() string {
	switch c {
	case ColorOff:
		return "OFF"
	case ColorGreen:
		return "GREEN"
	case ColorYellow:
		return "YELLOW"
	case ColorRed:
		return "RED"
	case ColorFlag:
		return "FLAG"
	default:
		return "UNKNOWN"
	}
}

// RouteCandidate is one path offered by a provider between origin and destination
type RouteCandidate struct {
	Roads          []string
	CurrentMinutes float64
	TypicalMinutes float64
	Miles          float64
	Incidents      []string
}

// Frame is a full matrix image indexed as Frame[x][y], x=0 the newest column, y=0 the bottom row
type Frame [constants.MatrixSize][constants.MatrixSize]Color

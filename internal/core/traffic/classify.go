package traffic

import (
	"fmt"
	"math"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

// Thresholds are the delay cut points, in minutes, between delay levels
type Thresholds struct {
	LowMinutes    float64 `json:"low_minutes"`
	MediumMinutes float64 `json:"medium_minutes"`
	HighMinutes   float64 `json:"high_minutes"`
}

// DefaultThresholds returns the 2 / 4 / 7 minute cut points
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowMinutes:    constants.DefaultLowDelayMinutes,
		MediumMinutes: constants.DefaultMediumDelayMinutes,
		HighMinutes:   constants.DefaultHighDelayMinutes,
	}
}

// Validate checks that cut points are non-negative and non-decreasing
func (t Thresholds) Validate() error {
	if t.LowMinutes < 0 {
		return fmt.Errorf("low delay threshold must not be negative, got %v", t.LowMinutes)
	}
	if t.MediumMinutes < t.LowMinutes || t.HighMinutes < t.MediumMinutes {
		return fmt.Errorf("delay thresholds must be non-decreasing, got %v/%v/%v",
			t.LowMinutes, t.MediumMinutes, t.HighMinutes)
	}
	return nil
}

// Delay returns current minus baseline, never negative
func Delay(currentMinutes, baselineMinutes float64) float64 {
	return math.Max(0, currentMinutes-baselineMinutes)
}

// Classify maps a sample's delay onto a delay level
func Classify(sample model.TravelSample, t Thresholds) model.DelayLevel {
	delay := sample.Delay()
	switch {
	case delay >= t.HighMinutes:
		return model.DelayHigh
	case delay >= t.MediumMinutes:
		return model.DelayMedium
	case delay >= t.LowMinutes:
		return model.DelayLow
	default:
		return model.DelayNone
	}
}

// EstimateArrival returns now plus the current travel time plus the travel the
// provider does not cover. Minutes are rounded to the nearest second.
func EstimateArrival(now time.Time, currentMinutes, extraMinutes float64) time.Time {
	seconds := math.Round((currentMinutes + extraMinutes) * 60)
	return now.Add(time.Duration(seconds) * time.Second)
}

// FormatNumeric renders a time as the 24-hour HHMM string the numeric display shows
func FormatNumeric(t time.Time) string {
	return t.Format(constants.NumericTimeFormat)
}

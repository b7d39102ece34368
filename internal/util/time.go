package util

import (
	"context"
	"fmt"
	"time"
)

// Clock abstracts wall time and cancellable sleeping for the polling loop
type Clock interface {
	// Now returns the current time in the display timezone
	Now() time.Time
	// Sleep blocks for d, returning ctx.Err() if ctx ends first
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the real clock, reporting times in a configured timezone
type SystemClock struct {
	location *time.Location
}

// NewSystemClock creates a clock for the given timezone name ("Local" or "" for the host zone)
func NewSystemClock(timezone string) (*SystemClock, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &SystemClock{location: loc}, nil
}

// LoadLocation resolves a timezone name with a helpful error
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/Los_Angeles, Europe/London", timezone, err)
	}
	return loc, nil
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.location)
}

func (c *SystemClock) Location() *time.Location {
	return c.location
}

// Sleep waits on a timer, which runs on the monotonic clock
func (c *SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NextAlignedTick returns the wake time interval after the start of now's minute.
// With a one minute interval this is the top of the next minute.
func NextAlignedTick(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(time.Minute).Add(interval)
}

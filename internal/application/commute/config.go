package commute

import (
	"fmt"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/history"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/core/provider"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
)

// Display backends
const (
	DisplayTerminal = "terminal"
	DisplayHT16K33  = "ht16k33"
	DisplayNone     = "none"
)

// Tuning is the part of the configuration that may change while running
type Tuning struct {
	Thresholds   traffic.Thresholds
	BarScale     history.BarScale
	ExtraMinutes float64
}

func (t Tuning) Validate() error {
	if err := t.Thresholds.Validate(); err != nil {
		return err
	}
	if err := t.BarScale.Validate(); err != nil {
		return err
	}
	if t.ExtraMinutes < 0 {
		return fmt.Errorf("extra minutes must not be negative, got %v", t.ExtraMinutes)
	}
	return nil
}

// ClockConfig contains configuration for the commute clock
type ClockConfig struct {
	// Traffic provider
	Source               string
	BaseURL              string
	Token                string
	Origin               string
	Destination          string
	PreferredRoute       []string
	RoadIDs              []string
	SegmentIDs           []string
	FixedBaselineMinutes float64
	FetchTimeout         time.Duration
	StaticSample         model.TravelSample

	// Classification and rendering
	Tuning

	// Timing
	Timezone             string
	SampleInterval       time.Duration
	MatrixUpdateInterval int
	MaxRetries           int
	RetryBackoff         time.Duration

	// Output devices
	Display         string
	I2CBus          int
	MatrixAddress   uint16
	SevenSegAddress uint16
	Brightness      int
	Splash          bool

	// Files
	LogFile    string
	ConfigFile string
}

// DefaultClockConfig returns a config with every default filled in
func DefaultClockConfig() *ClockConfig {
	cfg := &ClockConfig{
		I2CBus:     constants.DefaultI2CBus,
		Brightness: constants.DefaultBrightness,
		Tuning: Tuning{
			ExtraMinutes: constants.DefaultExtraMinutes,
		},
	}
	_ = cfg.Validate()
	return cfg
}

// Validate fills defaults and checks that the configuration is usable
func (c *ClockConfig) Validate() error {
	if c.Source == "" {
		c.Source = provider.SourcePathList
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = constants.DefaultFetchTimeout
	}
	if c.Thresholds == (traffic.Thresholds{}) {
		c.Thresholds = traffic.DefaultThresholds()
	}
	if c.BarScale == (history.BarScale{}) {
		c.BarScale = history.DefaultBarScale()
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.SampleInterval == 0 {
		c.SampleInterval = constants.DefaultSampleInterval
	}
	if c.MatrixUpdateInterval == 0 {
		c.MatrixUpdateInterval = constants.DefaultMatrixUpdateInterval
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = constants.DefaultMaxRetries
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = constants.DefaultRetryBackoff
	}
	if c.Display == "" {
		c.Display = DisplayTerminal
	}
	if c.MatrixAddress == 0 {
		c.MatrixAddress = constants.DefaultMatrixAddress
	}
	if c.SevenSegAddress == 0 {
		c.SevenSegAddress = constants.DefaultSevenSegAddress
	}

	if c.FetchTimeout < 0 {
		return fmt.Errorf("%w: fetch timeout must be positive, got %v", ErrInvalidConfig, c.FetchTimeout)
	}
	if c.SampleInterval < time.Minute || c.SampleInterval%time.Minute != 0 {
		return fmt.Errorf("%w: sample interval must be a whole number of minutes, got %v", ErrInvalidConfig, c.SampleInterval)
	}
	if c.MatrixUpdateInterval < 0 {
		return fmt.Errorf("%w: matrix update interval must be positive, got %d", ErrInvalidConfig, c.MatrixUpdateInterval)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must be positive, got %d", ErrInvalidConfig, c.MaxRetries)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("%w: retry backoff must be positive, got %v", ErrInvalidConfig, c.RetryBackoff)
	}
	if c.Brightness < 0 || c.Brightness > constants.MaxBrightness {
		return fmt.Errorf("%w: brightness must be between 0 and %d, got %d", ErrInvalidConfig, constants.MaxBrightness, c.Brightness)
	}
	if c.FixedBaselineMinutes < 0 {
		return fmt.Errorf("%w: baseline minutes must not be negative, got %v", ErrInvalidConfig, c.FixedBaselineMinutes)
	}
	switch c.Display {
	case DisplayTerminal, DisplayHT16K33, DisplayNone:
	default:
		return fmt.Errorf("%w: unknown display %q (valid: %s, %s, %s)", ErrInvalidConfig, c.Display, DisplayTerminal, DisplayHT16K33, DisplayNone)
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SourceConfig maps the provider settings onto a provider factory config
func (c *ClockConfig) SourceConfig(now func() time.Time) *provider.SourceConfig {
	return &provider.SourceConfig{
		Source:               c.Source,
		BaseURL:              c.BaseURL,
		Token:                c.Token,
		Timeout:              c.FetchTimeout,
		Origin:               c.Origin,
		Destination:          c.Destination,
		PreferredRoute:       c.PreferredRoute,
		RoadIDs:              c.RoadIDs,
		SegmentIDs:           c.SegmentIDs,
		FixedBaselineMinutes: c.FixedBaselineMinutes,
		StaticSample:         c.StaticSample,
		Now:                  now,
	}
}

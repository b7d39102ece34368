package commute

import (
	"testing"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/history"
	"github.com/penwyp/go-commute-monitor/internal/core/provider"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockConfig_ValidateFillsDefaults(t *testing.T) {
	cfg := &ClockConfig{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, provider.SourcePathList, cfg.Source)
	assert.Equal(t, constants.DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, traffic.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, history.DefaultBarScale(), cfg.BarScale)
	assert.Equal(t, "Local", cfg.Timezone)
	assert.Equal(t, time.Minute, cfg.SampleInterval)
	assert.Equal(t, constants.DefaultMatrixUpdateInterval, cfg.MatrixUpdateInterval)
	assert.Equal(t, constants.DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, constants.DefaultRetryBackoff, cfg.RetryBackoff)
	assert.Equal(t, DisplayTerminal, cfg.Display)
	assert.Equal(t, uint16(0x70), cfg.MatrixAddress)
	assert.Equal(t, uint16(0x72), cfg.SevenSegAddress)
	assert.Zero(t, cfg.ExtraMinutes, "zero extra minutes is a valid end-to-end setting")
}

func TestDefaultClockConfig(t *testing.T) {
	cfg := DefaultClockConfig()
	assert.Equal(t, float64(constants.DefaultExtraMinutes), cfg.ExtraMinutes)
	assert.Equal(t, constants.DefaultBrightness, cfg.Brightness)
	assert.Equal(t, DisplayTerminal, cfg.Display)
}

func TestClockConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *ClockConfig)
		want   string
	}{
		{"sub-minute interval", func(c *ClockConfig) { c.SampleInterval = 30 * time.Second }, "whole number of minutes"},
		{"fractional minutes", func(c *ClockConfig) { c.SampleInterval = 90 * time.Second }, "whole number of minutes"},
		{"negative matrix interval", func(c *ClockConfig) { c.MatrixUpdateInterval = -1 }, "matrix update interval"},
		{"negative retries", func(c *ClockConfig) { c.MaxRetries = -2 }, "max retries"},
		{"negative backoff", func(c *ClockConfig) { c.RetryBackoff = -time.Second }, "retry backoff"},
		{"negative timeout", func(c *ClockConfig) { c.FetchTimeout = -time.Second }, "fetch timeout"},
		{"brightness too high", func(c *ClockConfig) { c.Brightness = 16 }, "brightness"},
		{"negative baseline", func(c *ClockConfig) { c.FixedBaselineMinutes = -1 }, "baseline"},
		{"unknown display", func(c *ClockConfig) { c.Display = "lcd" }, "unknown display"},
		{"negative extra", func(c *ClockConfig) { c.ExtraMinutes = -5 }, "extra minutes"},
		{"decreasing delay thresholds", func(c *ClockConfig) {
			c.Thresholds = traffic.Thresholds{LowMinutes: 4, MediumMinutes: 2, HighMinutes: 7}
		}, "non-decreasing"},
		{"zero pixel minutes", func(c *ClockConfig) {
			c.BarScale = history.BarScale{Green: 2, Yellow: 4, Red: 7}
		}, "pixel minutes"},
		{"red above incident row", func(c *ClockConfig) {
			c.BarScale = history.BarScale{Green: 2, Yellow: 4, Red: 8, PixelMinutes: 2}
		}, "incident row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ClockConfig{}
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClockConfig_SourceConfig(t *testing.T) {
	cfg := &ClockConfig{
		Source:               provider.SourceSegments,
		Token:                "secret",
		RoadIDs:              []string{"101"},
		SegmentIDs:           []string{"a", "b"},
		FixedBaselineMinutes: 22,
	}
	require.NoError(t, cfg.Validate())

	now := func() time.Time { return loopStart }
	sc := cfg.SourceConfig(now)
	assert.Equal(t, provider.SourceSegments, sc.Source)
	assert.Equal(t, "secret", sc.Token)
	assert.Equal(t, []string{"a", "b"}, sc.SegmentIDs)
	assert.Equal(t, 22.0, sc.FixedBaselineMinutes)
	assert.Equal(t, constants.DefaultFetchTimeout, sc.Timeout)
	assert.Equal(t, loopStart, sc.Now())
}

package commute

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/history"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
	"github.com/penwyp/go-commute-monitor/internal/testing/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `{
  "source": "segments",
  "base_url": "http://localhost:8080/segments",
  "road_ids": ["101", "280"],
  "segment_ids": ["s1", "s2"],
  "preferred_route": ["US-101 S", "I-280 S"],
  "baseline_minutes": 22,
  "fetch_timeout_seconds": 5,
  "delay_thresholds": {"low_minutes": 3, "medium_minutes": 6, "high_minutes": 9},
  "bar": {"green": 1, "yellow": 3, "red": 6, "pixel_minutes": 1.5},
  "extra_minutes": 10,
  "timezone": "America/Los_Angeles",
  "sample_interval_minutes": 2,
  "matrix_update_interval": 5,
  "max_retries": 3,
  "retry_backoff_seconds": 7.5,
  "display": "ht16k33",
  "i2c_bus": 0,
  "brightness": 4,
  "splash": true,
  "log_file": "/var/log/commute.csv"
}`

func TestLoadConfigFile_Full(t *testing.T) {
	gen := fixtures.NewCommuteDataGenerator(t.TempDir())
	path, err := gen.GenerateConfig("config.json", fullConfig)
	require.NoError(t, err)

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)

	cfg := DefaultClockConfig()
	cfg.I2CBus = 1
	fc.Apply(cfg)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "segments", cfg.Source)
	assert.Equal(t, "http://localhost:8080/segments", cfg.BaseURL)
	assert.Equal(t, []string{"101", "280"}, cfg.RoadIDs)
	assert.Equal(t, []string{"s1", "s2"}, cfg.SegmentIDs)
	assert.Equal(t, []string{"US-101 S", "I-280 S"}, cfg.PreferredRoute)
	assert.Equal(t, 22.0, cfg.FixedBaselineMinutes)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, traffic.Thresholds{LowMinutes: 3, MediumMinutes: 6, HighMinutes: 9}, cfg.Thresholds)
	assert.Equal(t, history.BarScale{Green: 1, Yellow: 3, Red: 6, PixelMinutes: 1.5}, cfg.BarScale)
	assert.Equal(t, 10.0, cfg.ExtraMinutes)
	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, 2*time.Minute, cfg.SampleInterval)
	assert.Equal(t, 5, cfg.MatrixUpdateInterval)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 7500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, DisplayHT16K33, cfg.Display)
	assert.Equal(t, 0, cfg.I2CBus, "explicit zero overrides")
	assert.Equal(t, 4, cfg.Brightness)
	assert.True(t, cfg.Splash)
	assert.Equal(t, "/var/log/commute.csv", cfg.LogFile)
}

func TestLoadConfigFile_PartialLeavesOthers(t *testing.T) {
	gen := fixtures.NewCommuteDataGenerator(t.TempDir())
	path, err := gen.GenerateConfig("config.json", `{"extra_minutes": 0, "origin": "1234"}`)
	require.NoError(t, err)

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)

	cfg := DefaultClockConfig()
	cfg.Destination = "5678"
	fc.Apply(cfg)

	assert.Equal(t, 0.0, cfg.ExtraMinutes)
	assert.Equal(t, "1234", cfg.Origin)
	assert.Equal(t, "5678", cfg.Destination)
	assert.Equal(t, history.DefaultBarScale(), cfg.BarScale)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	gen := fixtures.NewCommuteDataGenerator(t.TempDir())
	path, err := gen.GenerateConfig("bad.json", `{"extra_minutes": "lots"`)
	require.NoError(t, err)
	_, err = LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestFileConfig_ApplyTuningOnly(t *testing.T) {
	extra := 3.0
	fc := &FileConfig{
		ExtraMinutes: &extra,
		Bar:          &history.BarScale{Green: 1, Yellow: 2, Red: 3, PixelMinutes: 1},
	}
	tuning := DefaultClockConfig().Tuning
	fc.ApplyTuning(&tuning)

	assert.Equal(t, 3.0, tuning.ExtraMinutes)
	assert.Equal(t, 3, tuning.BarScale.Red)
	assert.Equal(t, traffic.DefaultThresholds(), tuning.Thresholds)
}

package commute

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-commute-monitor/internal/core/history"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
)

// FileConfig is the JSON config file. Absent fields leave the current
// value untouched. Credentials are not read from the file; use the
// environment instead.
type FileConfig struct {
	Source               *string             `json:"source,omitempty"`
	BaseURL              *string             `json:"base_url,omitempty"`
	Origin               *string             `json:"origin,omitempty"`
	Destination          *string             `json:"destination,omitempty"`
	PreferredRoute       []string            `json:"preferred_route,omitempty"`
	RoadIDs              []string            `json:"road_ids,omitempty"`
	SegmentIDs           []string            `json:"segment_ids,omitempty"`
	BaselineMinutes      *float64            `json:"baseline_minutes,omitempty"`
	FetchTimeoutSeconds  *float64            `json:"fetch_timeout_seconds,omitempty"`
	DelayThresholds      *traffic.Thresholds `json:"delay_thresholds,omitempty"`
	Bar                  *history.BarScale   `json:"bar,omitempty"`
	ExtraMinutes         *float64            `json:"extra_minutes,omitempty"`
	Timezone             *string             `json:"timezone,omitempty"`
	SampleIntervalMins   *int                `json:"sample_interval_minutes,omitempty"`
	MatrixUpdateInterval *int                `json:"matrix_update_interval,omitempty"`
	MaxRetries           *int                `json:"max_retries,omitempty"`
	RetryBackoffSeconds  *float64            `json:"retry_backoff_seconds,omitempty"`
	Display              *string             `json:"display,omitempty"`
	I2CBus               *int                `json:"i2c_bus,omitempty"`
	Brightness           *int                `json:"brightness,omitempty"`
	Splash               *bool               `json:"splash,omitempty"`
	LogFile              *string             `json:"log_file,omitempty"`
}

// LoadConfigFile reads and decodes a JSON config file
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc FileConfig
	if err := sonic.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply overlays the file's settings onto cfg
func (fc *FileConfig) Apply(cfg *ClockConfig) {
	if fc.Source != nil {
		cfg.Source = *fc.Source
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.Origin != nil {
		cfg.Origin = *fc.Origin
	}
	if fc.Destination != nil {
		cfg.Destination = *fc.Destination
	}
	if fc.PreferredRoute != nil {
		cfg.PreferredRoute = fc.PreferredRoute
	}
	if fc.RoadIDs != nil {
		cfg.RoadIDs = fc.RoadIDs
	}
	if fc.SegmentIDs != nil {
		cfg.SegmentIDs = fc.SegmentIDs
	}
	if fc.BaselineMinutes != nil {
		cfg.FixedBaselineMinutes = *fc.BaselineMinutes
	}
	if fc.FetchTimeoutSeconds != nil {
		cfg.FetchTimeout = seconds(*fc.FetchTimeoutSeconds)
	}
	if fc.Timezone != nil {
		cfg.Timezone = *fc.Timezone
	}
	if fc.SampleIntervalMins != nil {
		cfg.SampleInterval = time.Duration(*fc.SampleIntervalMins) * time.Minute
	}
	if fc.MatrixUpdateInterval != nil {
		cfg.MatrixUpdateInterval = *fc.MatrixUpdateInterval
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.RetryBackoffSeconds != nil {
		cfg.RetryBackoff = seconds(*fc.RetryBackoffSeconds)
	}
	if fc.Display != nil {
		cfg.Display = *fc.Display
	}
	if fc.I2CBus != nil {
		cfg.I2CBus = *fc.I2CBus
	}
	if fc.Brightness != nil {
		cfg.Brightness = *fc.Brightness
	}
	if fc.Splash != nil {
		cfg.Splash = *fc.Splash
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	fc.ApplyTuning(&cfg.Tuning)
}

// ApplyTuning overlays only the settings that may change while running
func (fc *FileConfig) ApplyTuning(t *Tuning) {
	if fc.DelayThresholds != nil {
		t.Thresholds = *fc.DelayThresholds
	}
	if fc.Bar != nil {
		t.BarScale = *fc.Bar
	}
	if fc.ExtraMinutes != nil {
		t.ExtraMinutes = *fc.ExtraMinutes
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

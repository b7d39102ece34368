package traffic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

func TestDelay(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		baseline float64
		expected float64
	}{
		{"equal", 22, 22, 0},
		{"slower than typical", 30, 22, 8},
		{"faster than typical clamps to zero", 18, 22, 0},
		{"fractional", 22.5, 22, 0.5},
		{"zero baseline", 12, 0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Delay(tt.current, tt.baseline))
			sample := model.TravelSample{CurrentMinutes: tt.current, BaselineMinutes: tt.baseline}
			assert.Equal(t, tt.expected, sample.Delay())
		})
	}
}

func TestDelayNeverNegative(t *testing.T) {
	for current := 0.0; current <= 40; current += 0.5 {
		for baseline := 0.0; baseline <= 40; baseline += 2.5 {
			d := Delay(current, baseline)
			assert.GreaterOrEqual(t, d, 0.0)
			if current >= baseline {
				assert.Equal(t, current-baseline, d)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	thresholds := DefaultThresholds()

	tests := []struct {
		name     string
		current  float64
		baseline float64
		expected model.DelayLevel
	}{
		{"no delay", 22, 22, model.DelayNone},
		{"just below low", 23.9, 22, model.DelayNone},
		{"low boundary", 24, 22, model.DelayLow},
		{"medium boundary", 26, 22, model.DelayMedium},
		{"just below high", 28.5, 22, model.DelayMedium},
		{"high boundary", 29, 22, model.DelayHigh},
		{"heavy", 60, 22, model.DelayHigh},
		{"faster than typical", 10, 22, model.DelayNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := model.TravelSample{CurrentMinutes: tt.current, BaselineMinutes: tt.baseline}
			assert.Equal(t, tt.expected, Classify(sample, thresholds))
		})
	}
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.NoError(t, Thresholds{0, 0, 0}.Validate())
	assert.Error(t, Thresholds{-1, 2, 3}.Validate())
	assert.Error(t, Thresholds{4, 2, 7}.Validate())
	assert.Error(t, Thresholds{2, 7, 4}.Validate())
}

func TestEstimateArrival(t *testing.T) {
	now := time.Date(2024, 6, 3, 7, 45, 0, 0, time.UTC)

	eta := EstimateArrival(now, 22, 22)
	assert.Equal(t, time.Date(2024, 6, 3, 8, 29, 0, 0, time.UTC), eta)
	assert.Equal(t, "0829", FormatNumeric(eta))

	eta = EstimateArrival(now, 30.5, 0)
	assert.Equal(t, now.Add(30*time.Minute+30*time.Second), eta)

	late := time.Date(2024, 6, 3, 23, 50, 0, 0, time.UTC)
	assert.Equal(t, "0015", FormatNumeric(EstimateArrival(late, 25, 0)))
}

func TestRetryState(t *testing.T) {
	r := NewRetryState(3)
	require.Equal(t, 0, r.ConsecutiveFailures)

	assert.False(t, r.RecordFailure())
	assert.False(t, r.RecordFailure())
	r.Reset()
	assert.Equal(t, 0, r.ConsecutiveFailures)

	assert.False(t, r.RecordFailure())
	assert.False(t, r.RecordFailure())
	assert.True(t, r.RecordFailure())
	assert.True(t, r.Exhausted())
}

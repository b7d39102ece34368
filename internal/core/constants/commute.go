package constants

import "time"

const (
	// Matrix geometry
	MatrixSize        = 8
	IncidentRow       = MatrixSize - 1
	MaxFilledRows     = MatrixSize - 1
	HistoryCapacity   = MatrixSize
	NumericDigits     = 4
	NumericTimeFormat = "1504"

	// Bar colour thresholds, in rows
	DefaultGreenThreshold  = 2
	DefaultYellowThreshold = 4
	DefaultRedThreshold    = 7

	// Delay level cut points, in minutes
	DefaultLowDelayMinutes    = 2.0
	DefaultMediumDelayMinutes = 4.0
	DefaultHighDelayMinutes   = 7.0

	// Minutes of delay represented by one lit row
	DefaultCommutePixelMinutes = 2.0

	// Travel not covered by the provider: 14 min to reach the corridor, 8 min after it
	DefaultExtraMinutes = 14 + 8
)

const (
	// Tick cadence
	DefaultSampleInterval       = 1 * time.Minute
	DefaultMatrixUpdateInterval = 3
	DefaultRetryBackoff         = 15 * time.Second
	DefaultMaxRetries           = 5
	DefaultFetchTimeout         = 20 * time.Second

	// Startup splash
	SplashStepDelay = 200 * time.Millisecond
)

const (
	// HT16K33 backpacks
	DefaultI2CBus          = 1
	DefaultMatrixAddress   = 0x70
	DefaultSevenSegAddress = 0x72
	DefaultBrightness      = 15
	MaxBrightness          = 15
)

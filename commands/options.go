package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/penwyp/go-commute-monitor/internal/application/commute"
	"github.com/penwyp/go-commute-monitor/internal/core/constants"
	"github.com/penwyp/go-commute-monitor/internal/core/provider"
	"github.com/penwyp/go-commute-monitor/internal/util"
	"github.com/spf13/cobra"
)

// Environment variables read after the .env file is loaded
const (
	EnvAPIToken    = "COMMUTE_API_TOKEN"
	EnvOrigin      = "COMMUTE_ORIGIN"
	EnvDestination = "COMMUTE_DESTINATION"
)

// clockOptions holds the flag values for the commute clock
type clockOptions struct {
	// Provider flags
	source          string
	baseURL         string
	token           string
	origin          string
	destination     string
	route           []string
	roadIDs         []string
	segmentIDs      []string
	baselineMinutes float64
	fetchTimeout    time.Duration
	staticCurrent   float64
	staticBaseline  float64
	staticIncident  bool

	// Classification flags
	delayLow     float64
	delayMedium  float64
	delayHigh    float64
	green        int
	yellow       int
	red          int
	pixelMinutes float64
	extraMinutes float64

	// Timing flags
	timezone       string
	interval       time.Duration
	matrixInterval int
	maxRetries     int
	retryBackoff   time.Duration

	// Output flags
	display    string
	i2cBus     int
	brightness int
	splash     bool
	logFile    string
}

func (o *clockOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	// Provider flags
	flags.StringVar(&o.source, "provider", provider.SourcePathList,
		"Traffic provider (pathlist, segments, static)")
	flags.StringVar(&o.baseURL, "base-url", "",
		"Override the provider endpoint")
	flags.StringVar(&o.token, "token", "",
		"API credential (prefer "+EnvAPIToken+")")
	flags.StringVar(&o.origin, "origin", "",
		"Origin location id (pathlist)")
	flags.StringVar(&o.destination, "destination", "",
		"Destination location id (pathlist)")
	flags.StringSliceVar(&o.route, "route", nil,
		"Preferred route as an ordered list of road names")
	flags.StringSliceVar(&o.roadIDs, "road-ids", nil,
		"Road ids to request (segments)")
	flags.StringSliceVar(&o.segmentIDs, "segment-ids", nil,
		"Segment ids to sum (segments)")
	flags.Float64Var(&o.baselineMinutes, "baseline-minutes", 0,
		"Fixed baseline travel time; 0 uses the provider's typical time")
	flags.DurationVar(&o.fetchTimeout, "fetch-timeout", constants.DefaultFetchTimeout,
		"Maximum time to wait for the provider")
	flags.Float64Var(&o.staticCurrent, "static-current", 0,
		"Current travel time returned by the static provider")
	flags.Float64Var(&o.staticBaseline, "static-baseline", 0,
		"Baseline travel time returned by the static provider")
	flags.BoolVar(&o.staticIncident, "static-incident", false,
		"Report an incident from the static provider")

	// Classification flags
	flags.Float64Var(&o.delayLow, "delay-low", constants.DefaultLowDelayMinutes,
		"Minutes of delay classified as LOW")
	flags.Float64Var(&o.delayMedium, "delay-medium", constants.DefaultMediumDelayMinutes,
		"Minutes of delay classified as MEDIUM")
	flags.Float64Var(&o.delayHigh, "delay-high", constants.DefaultHighDelayMinutes,
		"Minutes of delay classified as HIGH")
	flags.IntVar(&o.green, "green", constants.DefaultGreenThreshold,
		"Rows below this are green")
	flags.IntVar(&o.yellow, "yellow", constants.DefaultYellowThreshold,
		"Rows below this are yellow")
	flags.IntVar(&o.red, "red", constants.DefaultRedThreshold,
		"Rows below this are red; the bar never grows past it")
	flags.Float64Var(&o.pixelMinutes, "pixel-minutes", constants.DefaultCommutePixelMinutes,
		"Minutes of delay per lit row")
	flags.Float64Var(&o.extraMinutes, "extra-minutes", constants.DefaultExtraMinutes,
		"Travel minutes not covered by the provider")

	// Timing flags
	flags.StringVar(&o.timezone, "timezone", "Local",
		"Timezone for the arrival time (e.g., America/Los_Angeles, UTC)")
	flags.DurationVar(&o.interval, "interval", constants.DefaultSampleInterval,
		"Sample interval, a whole number of minutes")
	flags.IntVar(&o.matrixInterval, "matrix-interval", constants.DefaultMatrixUpdateInterval,
		"Ticks between matrix column updates")
	flags.IntVar(&o.maxRetries, "max-retries", constants.DefaultMaxRetries,
		"Consecutive failed ticks before giving up")
	flags.DurationVar(&o.retryBackoff, "retry-backoff", constants.DefaultRetryBackoff,
		"Wait before retrying a failed fetch")

	// Output flags
	flags.StringVar(&o.display, "display", commute.DisplayTerminal,
		"Display backend (terminal, ht16k33, none)")
	flags.IntVar(&o.i2cBus, "i2c-bus", constants.DefaultI2CBus,
		"I2C bus number for the ht16k33 backpacks")
	flags.IntVar(&o.brightness, "brightness", constants.DefaultBrightness,
		"LED brightness (0-15)")
	flags.BoolVar(&o.splash, "splash", false,
		"Show the startup animation")
	flags.StringVar(&o.logFile, "log-file", "",
		"Append one CSV line per successful tick to this file")
}

// buildConfig layers defaults, the config file, the environment and the
// flags that were set explicitly
func (o *clockOptions) buildConfig(changed func(name string) bool, configPath, envPath string) (*commute.ClockConfig, error) {
	cfg := commute.DefaultClockConfig()

	if configPath != "" {
		fc, err := commute.LoadConfigFile(expandPath(configPath))
		if err != nil {
			return nil, err
		}
		fc.Apply(cfg)
	}

	if err := loadEnvFile(envPath); err != nil {
		return nil, err
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv(EnvOrigin); v != "" {
		cfg.Origin = v
	}
	if v := os.Getenv(EnvDestination); v != "" {
		cfg.Destination = v
	}

	o.applyFlags(cfg, changed)

	if cfg.LogFile != "" {
		cfg.LogFile = expandPath(cfg.LogFile)
	}
	cfg.ConfigFile = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *clockOptions) applyFlags(cfg *commute.ClockConfig, changed func(name string) bool) {
	if changed("provider") {
		cfg.Source = o.source
	}
	if changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if changed("token") {
		cfg.Token = o.token
	}
	if changed("origin") {
		cfg.Origin = o.origin
	}
	if changed("destination") {
		cfg.Destination = o.destination
	}
	if changed("route") {
		cfg.PreferredRoute = o.route
	}
	if changed("road-ids") {
		cfg.RoadIDs = o.roadIDs
	}
	if changed("segment-ids") {
		cfg.SegmentIDs = o.segmentIDs
	}
	if changed("baseline-minutes") {
		cfg.FixedBaselineMinutes = o.baselineMinutes
	}
	if changed("fetch-timeout") {
		cfg.FetchTimeout = o.fetchTimeout
	}
	if changed("static-current") || changed("static-baseline") || changed("static-incident") {
		cfg.StaticSample.CurrentMinutes = o.staticCurrent
		cfg.StaticSample.BaselineMinutes = o.staticBaseline
		cfg.StaticSample.IncidentPresent = o.staticIncident
		if o.staticIncident {
			cfg.StaticSample.Incidents = []string{"Static incident"}
		}
	}
	if changed("delay-low") {
		cfg.Thresholds.LowMinutes = o.delayLow
	}
	if changed("delay-medium") {
		cfg.Thresholds.MediumMinutes = o.delayMedium
	}
	if changed("delay-high") {
		cfg.Thresholds.HighMinutes = o.delayHigh
	}
	if changed("green") {
		cfg.BarScale.Green = o.green
	}
	if changed("yellow") {
		cfg.BarScale.Yellow = o.yellow
	}
	if changed("red") {
		cfg.BarScale.Red = o.red
	}
	if changed("pixel-minutes") {
		cfg.BarScale.PixelMinutes = o.pixelMinutes
	}
	if changed("extra-minutes") {
		cfg.ExtraMinutes = o.extraMinutes
	}
	if changed("timezone") {
		cfg.Timezone = o.timezone
	}
	if changed("interval") {
		cfg.SampleInterval = o.interval
	}
	if changed("matrix-interval") {
		cfg.MatrixUpdateInterval = o.matrixInterval
	}
	if changed("max-retries") {
		cfg.MaxRetries = o.maxRetries
	}
	if changed("retry-backoff") {
		cfg.RetryBackoff = o.retryBackoff
	}
	if changed("display") {
		cfg.Display = o.display
	}
	if changed("i2c-bus") {
		cfg.I2CBus = o.i2cBus
	}
	if changed("brightness") {
		cfg.Brightness = o.brightness
	}
	if changed("splash") {
		cfg.Splash = o.splash
	}
	if changed("log-file") {
		cfg.LogFile = o.logFile
	}
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			util.LogDebug("No env file found, using system environment", util.F("path", path))
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

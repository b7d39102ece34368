package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-commute-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug     bool
	logFormat string

	// Configuration sources
	configFile string
	envFile    string

	opts = &clockOptions{}

	rootCmd = &cobra.Command{
		Use:   "go-commute-monitor [flags]",
		Short: "Commute clock for LED displays",
		Long: `go-commute-monitor polls a traffic service once a minute and shows the estimated
arrival time on a 4-digit display and the recent delay trend on an 8x8 matrix.

Configuration is read from, lowest to highest precedence: built-in defaults,
the --config JSON file, the .env file and environment (COMMUTE_API_TOKEN,
COMMUTE_ORIGIN, COMMUTE_DESTINATION), and finally command line flags.

Examples:
  go-commute-monitor --origin 1234 --destination 5678       # Terminal displays, 511 path list
  go-commute-monitor run --display ht16k33 --brightness 8   # LED backpacks on /dev/i2c-1
  go-commute-monitor --provider segments --road-ids 101,280 --segment-ids a,b
  go-commute-monitor once --provider static --static-current 30 --static-baseline 22
  go-commute-monitor replay ~/commute.csv                   # Redraw the matrix from a log`,
		SilenceUsage: true,
		RunE:         runClock,
	}
)

const (
	defaultLogFile = "~/.go-commute-monitor/logs/app.log"
	defaultEnvFile = ".env"
)

func init() {
	// Configuration sources
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"JSON config file; display settings are reloaded when it changes")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile,
		"Environment file with credentials")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(util.FormatText),
		"Log format (text, json)")

	opts.register(rootCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// initLogging installs the global logger; the caller closes it
func initLogging() error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	format := util.LogFormat(logFormat)
	if format != util.FormatText && format != util.FormatJSON {
		return fmt.Errorf("invalid log format '%s': must be either 'text' or 'json'", logFormat)
	}

	logFile := expandPath(defaultLogFile)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return util.InitLogger(util.LoggerConfig{
		Level:          logLevel,
		Format:         format,
		File:           logFile,
		DebugToConsole: debug,
	})
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/penwyp/go-commute-monitor/internal/application/commute"
	"github.com/penwyp/go-commute-monitor/internal/core/provider"
	"github.com/penwyp/go-commute-monitor/internal/data/commutelog"
	"github.com/penwyp/go-commute-monitor/internal/hardware/ht16k33"
	"github.com/penwyp/go-commute-monitor/internal/presentation/display"
	"github.com/penwyp/go-commute-monitor/internal/util"
	"github.com/spf13/cobra"
)

const panelTitle = "Commute Monitor"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the commute clock (default)",
	Long: `Polls the traffic provider on minute boundaries, shows the estimated arrival
time on the numeric display and pushes a delay bar onto the matrix every
--matrix-interval ticks.

After --max-retries consecutive failed fetches the matrix shows a red X, the
numeric display keeps its last estimate and the process exits cleanly.
Ctrl-C blanks both displays before exiting.`,
	RunE: runClock,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runClock(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	defer util.CloseLogger()

	cfg, err := opts.buildConfig(cmd.Flags().Changed, configFile, envFile)
	if err != nil {
		return err
	}
	util.LogInfo("Configuration loaded",
		util.F("provider", cfg.Source),
		util.F("display", cfg.Display),
		util.F("token", cfg.Token),
		util.F("interval", cfg.SampleInterval.String()),
		util.F("matrix_interval", cfg.MatrixUpdateInterval),
		util.F("max_retries", cfg.MaxRetries))

	clock, err := util.NewSystemClock(cfg.Timezone)
	if err != nil {
		return err
	}

	trafficProvider, err := provider.CreateProvider(cfg.SourceConfig(clock.Now))
	if err != nil {
		return fmt.Errorf("failed to create traffic provider: %w", err)
	}

	numeric, matrix, err := openDisplays(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	deps := commute.Dependencies{
		Provider: trafficProvider,
		Numeric:  numeric,
		Matrix:   matrix,
		Clock:    clock,
	}

	if cfg.LogFile != "" {
		if err := ensureDir(filepath.Dir(cfg.LogFile)); err != nil {
			closeDisplays(numeric, matrix)
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writer, err := commutelog.Open(cfg.LogFile)
		if err != nil {
			closeDisplays(numeric, matrix)
			return err
		}
		deps.Log = writer
	}

	if cfg.ConfigFile != "" {
		watcher, err := commute.NewConfigWatcher(expandPath(cfg.ConfigFile), cfg.Tuning)
		if err != nil {
			util.LogWarn("Config file will not be reloaded", util.F("error", err.Error()))
		} else {
			defer watcher.Close()
			deps.TuningUpdates = watcher.Updates()
		}
	}

	loop, err := commute.NewLoop(cfg, deps)
	if err != nil {
		if deps.Log != nil {
			_ = deps.Log.Close()
		}
		closeDisplays(numeric, matrix)
		return err
	}

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	err = loop.Run(ctx)
	if errors.Is(err, commute.ErrRetriesExhausted) {
		util.LogError("Commute monitor stopped", util.F("error", err.Error()))
		fmt.Fprintf(cmd.ErrOrStderr(), "commute monitor stopped: %v\n", err)
		return nil
	}
	return err
}

// closeDisplays releases displays that never reached the loop
func closeDisplays(numeric display.NumericDisplay, matrix display.MatrixDisplay) {
	if err := numeric.Close(); err != nil {
		util.LogWarn("Failed to close numeric display", util.F("error", err.Error()))
	}
	if err := matrix.Close(); err != nil {
		util.LogWarn("Failed to close matrix display", util.F("error", err.Error()))
	}
}

// openDisplays creates the numeric and matrix displays for the configured backend
func openDisplays(cfg *commute.ClockConfig, out io.Writer) (display.NumericDisplay, display.MatrixDisplay, error) {
	switch cfg.Display {
	case commute.DisplayNone:
		return display.NewMemoryNumeric(), display.NewMemoryMatrix(), nil

	case commute.DisplayHT16K33:
		busPath := ht16k33.BusPath(cfg.I2CBus)
		matrixBus, err := ht16k33.OpenI2C(busPath, cfg.MatrixAddress)
		if err != nil {
			return nil, nil, err
		}
		sevenSegBus, err := ht16k33.OpenI2C(busPath, cfg.SevenSegAddress)
		if err != nil {
			_ = matrixBus.Close()
			return nil, nil, err
		}
		util.LogInfo("Using HT16K33 displays",
			util.F("bus", busPath),
			util.F("matrix_address", fmt.Sprintf("0x%02x", cfg.MatrixAddress)),
			util.F("sevenseg_address", fmt.Sprintf("0x%02x", cfg.SevenSegAddress)))
		numeric := ht16k33.NewSevenSegment(ht16k33.NewDevice(sevenSegBus, cfg.Brightness))
		matrix := ht16k33.NewMatrix(ht16k33.NewDevice(matrixBus, cfg.Brightness))
		return numeric, matrix, nil

	default:
		term := display.NewTerminal(out, panelTitle)
		return term.Numeric(), term.Matrix(), nil
	}
}

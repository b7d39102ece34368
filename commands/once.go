package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/application/commute"
	"github.com/penwyp/go-commute-monitor/internal/core/history"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/core/provider"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
	"github.com/penwyp/go-commute-monitor/internal/util"
	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Fetch one sample and print it",
	Long: `Fetches a single travel time sample and prints its delay level, the estimated
arrival time and the matrix column it would produce. Exits non-zero when the
fetch fails.`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	defer util.CloseLogger()

	cfg, err := opts.buildConfig(cmd.Flags().Changed, configFile, envFile)
	if err != nil {
		return err
	}

	clock, err := util.NewSystemClock(cfg.Timezone)
	if err != nil {
		return err
	}

	trafficProvider, err := provider.CreateProvider(cfg.SourceConfig(clock.Now))
	if err != nil {
		return fmt.Errorf("failed to create traffic provider: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	sample, err := trafficProvider.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	if err := sample.Validate(); err != nil {
		return fmt.Errorf("fetch failed: %w", traffic.Malformed("provider returned an invalid sample", err))
	}

	printSample(cmd.OutOrStdout(), trafficProvider.GetProviderName(), sample, cfg, clock.Now())
	return nil
}

// printSample writes a human readable summary of one sample
func printSample(w io.Writer, providerName string, sample model.TravelSample, cfg *commute.ClockConfig, now time.Time) {
	eta := traffic.EstimateArrival(now, sample.CurrentMinutes, cfg.ExtraMinutes)
	level := traffic.Classify(sample, cfg.Thresholds)
	column := history.EncodeColumn(sample, cfg.BarScale)

	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", util.PadString(label+":", 11, true), value)
	}

	row("Provider", providerName)
	if len(sample.Roads) > 0 {
		row("Route", strings.Join(sample.Roads, " > "))
	}
	row("Current", fmt.Sprintf("%.1f min", sample.CurrentMinutes))
	row("Baseline", fmt.Sprintf("%.1f min", sample.BaselineMinutes))
	row("Delay", fmt.Sprintf("%.1f min (%s)", sample.Delay(), level))
	if sample.IncidentPresent {
		row("Incidents", fmt.Sprintf("%d", len(sample.Incidents)))
		for _, incident := range sample.Incidents {
			fmt.Fprintf(w, "  - %s\n", incident)
		}
	} else {
		row("Incidents", "none")
	}
	row("ETA", fmt.Sprintf("%s (%s)", eta.Format("15:04"), traffic.FormatNumeric(eta)))
	row("Column", column.String())
}

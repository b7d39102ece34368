package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/penwyp/go-commute-monitor/internal/core/provider"
	"github.com/penwyp/go-commute-monitor/internal/util"
	"github.com/spf13/cobra"
)

var segmentRoads []string

var segmentsCmd = &cobra.Command{
	Use:   "segments --road-ids <ids> --road <name>",
	Short: "List segment ids on a road",
	Long: `Requests the segment feed for --road-ids and lists every segment whose road
names equal --road, in order. Use the printed ids for --segment-ids.

Example:
  go-commute-monitor segments --road-ids 511.org/8269 --road "CA-35"`,
	Args: cobra.NoArgs,
	RunE: runSegments,
}

func init() {
	segmentsCmd.Flags().StringSliceVar(&segmentRoads, "road", nil,
		"Road name sequence to match, e.g. \"CA-35\" (repeat for multi-road segments)")
	rootCmd.AddCommand(segmentsCmd)
}

func runSegments(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	defer util.CloseLogger()

	if len(segmentRoads) == 0 {
		return fmt.Errorf("--road is required")
	}

	cfg, err := opts.buildConfig(cmd.Flags().Changed, configFile, envFile)
	if err != nil {
		return err
	}
	if len(cfg.RoadIDs) == 0 {
		return fmt.Errorf("--road-ids is required")
	}
	if cfg.Token == "" {
		return fmt.Errorf("an API token is required (--token or %s)", EnvAPIToken)
	}

	source := cfg.SourceConfig(nil)
	if source.Source != provider.SourceSegments {
		source.BaseURL = ""
		if cmd.Flags().Changed("base-url") {
			source.BaseURL = cfg.BaseURL
		}
	}
	feed := provider.NewSegmentSumProvider(source)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	total, matches, err := feed.FindSegments(ctx, segmentRoads)
	if err != nil {
		return fmt.Errorf("segment search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d traffic segments.\n", total)
	fmt.Fprintf(out, "Segments for road %q:\n", strings.Join(segmentRoads, " > "))
	for _, m := range matches {
		fmt.Fprintf(out, " %s: %s from %s to %s\n", m.ID, m.Road, m.From, m.To)
	}
	fmt.Fprintf(out, "Found %d matching segments\n", len(matches))
	return nil
}

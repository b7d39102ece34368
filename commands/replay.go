package commands

import (
	"fmt"

	"github.com/penwyp/go-commute-monitor/internal/application/commute"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
	"github.com/penwyp/go-commute-monitor/internal/data/commutelog"
	"github.com/penwyp/go-commute-monitor/internal/presentation/display"
	"github.com/penwyp/go-commute-monitor/internal/util"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <log.csv>",
	Short: "Redraw the matrix from a commute log",
	Long: `Reads a commute log written with --log-file and renders the last eight matrix
columns, using the same --matrix-interval gating and bar settings as a live
run, together with the time of the newest sample. Incidents are not logged,
so the incident row stays dark.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := opts.buildConfig(cmd.Flags().Changed, configFile, envFile)
	if err != nil {
		return err
	}

	loc, err := util.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	records, err := commutelog.ReadFile(expandPath(args[0]))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("commute log %s has no records", args[0])
	}

	buf := commute.ReplayHistory(records, cfg.BarScale, cfg.MatrixUpdateInterval)
	last := records[len(records)-1]

	term := display.NewTerminal(cmd.OutOrStdout(), "Commute Replay")
	if err := term.Numeric().Show(traffic.FormatNumeric(last.Timestamp.In(loc))); err != nil {
		return err
	}
	if err := term.Numeric().SetSeparator(true); err != nil {
		return err
	}
	if err := display.DrawFrame(term.Matrix(), buf.Frame()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d records, %d columns, last sample %s\n",
		len(records), buf.Len(), last.Timestamp.In(loc).Format("2006-01-02 15:04"))
	return nil
}

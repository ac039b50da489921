package main

import (
	"github.com/spf13/cobra"

	"github.com/use-agent/tiercards/report"
	"github.com/use-agent/tiercards/snapshot"
)

var statsFlags struct {
	top      int
	markdown bool
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the tier histogram, category counts and top cards of the snapshot",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.IntVar(&statsFlags.top, "top", 0, "Number of top cards to list (env TIER_TOP_N)")
	f.BoolVar(&statsFlags.markdown, "markdown", false, "Render Markdown tables instead of ASCII")
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsFlags.top > 0 {
		cfg.Output.TopN = statsFlags.top
	}

	records, err := snapshot.Load(cfg.Output.SnapshotPath)
	if err != nil {
		return err
	}

	mode := report.ASCII
	if statsFlags.markdown {
		mode = report.Markdown
	}
	return report.Render(cmd.OutOrStdout(), report.Summarize(records, cfg.Output.TopN), mode)
}

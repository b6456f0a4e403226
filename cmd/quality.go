package cmd

import (
	"github.com/nkaminski/deeprepo/core"
	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/spf13/cobra"
)

// qualityCmd performs the closed-issue quality analysis.
var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Measure responsiveness on closed failing-test issues.",
	Long: `Aggregate quality statistics for closed failing-test issues.

Computes averages for resolution time, first-response time, comment volume,
and reactions, plus top-N lists of the slowest and most discussed issues.
Pull requests and issues without a failing-test marker are skipped.

By default only issues closed within the last 30 days are analyzed; pass
--labels to select issues by label instead of by close date.

Examples:
  # Analyze the last 30 days of closed issues
  deeprepo quality --issues issues.json

  # Analyze issues carrying specific labels
  deeprepo quality --issues issues.json --labels test-failure,flaky

  # Widen the window and the top lists
  deeprepo quality --issues issues.json --since-days 90 --top 20`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteQuality(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run quality analysis", err)
		}
	},
}

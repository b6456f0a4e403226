package cmd

import (
	"github.com/nkaminski/deeprepo/core"
	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/spf13/cobra"
)

// boomerangsCmd performs the boomerang failure correlation analysis.
var boomerangsCmd = &cobra.Command{
	Use:   "boomerangs [repo-path]",
	Short: "Find tests that fail, recover, then fail again.",
	Long: `Correlate CI test results with issue events to find boomerang failures.

A boomerang is a test that failed, was fixed (confirmed by a streak of passes),
and then failed again. These recurring failures usually mean the underlying
defect was patched rather than resolved.

Each finding carries a confidence score built from three signals:
- recency: how quickly the failure came back after recovery
- linkage: whether both failure episodes reference the same issue
- isolation: how few unrelated commits landed between the episodes

Tests that never recover are reported separately as persistent failures.

Examples:
  # Correlate a CI feed with issue events
  deeprepo boomerangs --ci-results ci.json --issue-events events.json

  # Include the repository for the isolation signal
  deeprepo boomerangs . --ci-results ci.json --issue-events events.json

  # Require three passes before a recovery counts
  deeprepo boomerangs --ci-results ci.json --pass-streak 3

  # Export findings to CSV for tracking
  deeprepo boomerangs --ci-results ci.json --output csv --output-file findings.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBoomerangs(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run boomerang analysis", err)
		}
	},
}

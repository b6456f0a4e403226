package cmd

import (
	"github.com/nkaminski/deeprepo/core"
	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/spf13/cobra"
)

// todosCmd scans generated resource files for TODO markers.
var todosCmd = &cobra.Command{
	Use:   "todos [repo-path]",
	Short: "Report TODO debt in generated compute resource files.",
	Long: `Scan generated compute resource files for TODO markers.

Walks the configured directory, matches files named resource_compute_*.go,
and reports every line containing a TODO along with a commit-pinned source
reference so the debt can be tracked over time.

Examples:
  # Scan the current checkout
  deeprepo todos .

  # Scan a specific subdirectory
  deeprepo todos ~/src/provider --todo-dir google/services/compute`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTodos(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run todo scan", err)
		}
	},
}

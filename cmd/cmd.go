// Package cmd defines the command-line interface for deeprepo.
package cmd

import (
	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(boomerangsCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(todosCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("ci-results", "", "Path to the CI results JSON feed")
	rootCmd.PersistentFlags().String("issue-events", "", "Path to the issue events JSON feed")
	rootCmd.PersistentFlags().String("issues", "", "Path to the closed issues JSON feed")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of findings to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Bool("detail", false, "Print supporting event timestamps per finding")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of boomerangsCmd to Viper
	boomerangsCmd.Flags().Bool("explain", false, "Print per-finding confidence signal breakdown")
	boomerangsCmd.Flags().Int("pass-streak", schema.DefaultPassStreak, "Consecutive passes required to confirm recovery")
	boomerangsCmd.Flags().String("recency-window", "30 days", "Window for the recency confidence signal")
	boomerangsCmd.Flags().Int("max-intervening", schema.DefaultMaxIntervening, "Commit count at which the isolation signal bottoms out")
	if err := viper.BindPFlags(boomerangsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding boomerangs flags", err)
	}

	// Bind all flags of qualityCmd to Viper
	qualityCmd.Flags().String("labels", "", "Comma-separated label filter for closed issues")
	qualityCmd.Flags().Int("since-days", contract.DefaultSinceDays, "Days of closed issues to analyze when no label filter is given")
	qualityCmd.Flags().Int("top", contract.DefaultTopCount, "Size of each top-N list in the report")
	if err := viper.BindPFlags(qualityCmd.Flags()); err != nil {
		contract.LogFatal("Error binding quality flags", err)
	}

	// Bind all flags of todosCmd to Viper
	todosCmd.Flags().String("todo-dir", "", "Directory of generated resource files, relative to the repo path")
	if err := viper.BindPFlags(todosCmd.Flags()); err != nil {
		contract.LogFatal("Error binding todos flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}

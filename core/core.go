package core

import (
	"context"
	"time"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/internal/feed"
	"github.com/nkaminski/deeprepo/internal/outwriter"
	"github.com/nkaminski/deeprepo/schema"
)

// ExecuteBoomerangs runs the full boomerang correlation pipeline and prints
// ranked findings. It serves as the main entry point for the 'boomerangs' mode.
func ExecuteBoomerangs(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	output, err := GetBoomerangResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	recordRunHistory(cfg, mgr, start, output)
	return outwriter.WriteFindings(output, cfg, time.Since(start))
}

// GetBoomerangResults runs the pipeline and returns the ranked findings and
// diagnostics without printing. Used by the MCP handlers.
func GetBoomerangResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.AnalysisOutput, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetFeedStore()
	}

	// --- 1. Feed Loading ---
	loader := feed.NewLoader(store)
	records, err := loader.LoadRunRecords(ctx, cfg.CIResultsPath, cfg.IssueEventsPath)
	if err != nil {
		return nil, err
	}

	// --- 2. Normalization ---
	events, malformed := NormalizeRecords(records)
	diag := schema.Diagnostics{
		RawRecords:       len(records),
		MalformedRecords: len(malformed),
	}

	// --- 3. Timeline Building ---
	timelines, err := BuildTimelines(events)
	if err != nil {
		return nil, err
	}

	// --- 4. Detection ---
	var scanner contract.RepoScanner
	if cfg.RepoPath != "" {
		scanner = contract.NewLocalRepoScanner()
	}
	detector := NewDetector(cfg.Detector, scanner, cfg.RepoPath)
	cycles, persistent, detectDiag := detector.DetectAll(ctx, timelines, cfg.Workers)

	diag.SkippedTests = detectDiag.SkippedTests
	diag.SparseTests = detectDiag.SparseTests
	diag.Warnings = append(diag.Warnings, detectDiag.Warnings...)

	// --- 5. Ranking ---
	findings := RankFindings(cycles, persistent, cfg.ResultLimit)

	return &schema.AnalysisOutput{Findings: findings, Diagnostics: diag}, nil
}

// ExecuteQuality runs the closed-issue quality analysis and prints the report.
func ExecuteQuality(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := GetQualityResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteQuality(report, cfg, time.Since(start))
}

// GetQualityResults loads the issue feed and aggregates quality statistics.
func GetQualityResults(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.QualityReport, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetFeedStore()
	}

	loader := feed.NewLoader(store)
	issues, err := loader.LoadIssueRecords(cfg.IssuesPath)
	if err != nil {
		return nil, err
	}
	return AnalyzeIssueQuality(issues, cfg)
}

// ExecuteTodos runs the technical-debt scan over generated resource files.
func ExecuteTodos(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	report, err := ScanTodos(ctx, cfg, contract.NewLocalRepoScanner())
	if err != nil {
		return err
	}
	return outwriter.WriteTodos(report, cfg, time.Since(start))
}

// recordRunHistory persists the run and its findings when a history store
// is configured. Failures degrade to warnings; the report still prints.
func recordRunHistory(cfg *contract.Config, mgr contract.StoreManager, start time.Time, output *schema.AnalysisOutput) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	configParams := map[string]any{
		"pass_streak":    cfg.Detector.PassStreak,
		"recency_window": cfg.Detector.RecencyWindow.String(),
		"workers":        cfg.Workers,
		"result_limit":   cfg.ResultLimit,
	}
	runID, err := store.BeginRun(start, configParams)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return
	}
	if runID <= 0 {
		return
	}

	stored := 0
	for _, f := range output.Findings {
		if err := store.RecordFinding(runID, f); err != nil {
			contract.LogWarn("Failed to record finding", err)
			continue
		}
		stored++
	}
	if err := store.EndRun(runID, time.Now(), stored); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}

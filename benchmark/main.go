// Package main provides a performance benchmarking tool for the Deeprepo CLI.
// It measures execution times across different feed sizes and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - deeprepo binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic feeds are generated
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	FeedSize    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	FeedSizes   map[string]int
	SizeOrder   []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		FeedSizes: map[string]int{
			"small":  1_000,
			"medium": 50_000,
			"large":  500_000,
		},
		SizeOrder: []string{"small", "medium", "large"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using deeprepo cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("deeprepo", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the deeprepo binary exists and the work
// directory is writable.
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if deeprepo is available
	if _, err := exec.LookPath("deeprepo"); err != nil {
		return fmt.Errorf("deeprepo binary not found in PATH")
	}

	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work directory %s: %w", config.WorkDir, err)
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured feed sizes.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d feed sizes, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.FeedSizes), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.SizeOrder {
		records := config.FeedSizes[size]
		fmt.Printf("Benchmarking %s (%d records)\n", size, records)

		ciPath, eventPath, issuePath, err := generateFeeds(config.WorkDir, size, records)
		if err != nil {
			fmt.Printf("Failed to generate feeds for %s: %v\n", size, err)
			continue
		}

		// Boomerang correlation
		args := fmt.Sprintf("--ci-results %s --issue-events %s --workers %d", ciPath, eventPath, config.Workers)
		result := runBenchmarkSuite(config, size, "boomerangs", "boomerang correlation", args)
		results = append(results, result)

		// Issue quality analysis
		args = fmt.Sprintf("--issues %s --since-days 3650", issuePath)
		result = runBenchmarkSuite(config, size, "quality", "issue quality analysis", args)
		results = append(results, result)
	}

	return results
}

// generateFeeds writes synthetic CI, issue-event, and closed-issue feeds with
// the given record count. Every tenth test carries a boomerang shape so the
// detector has real work.
func generateFeeds(workDir, size string, records int) (string, string, string, error) {
	ciPath := filepath.Join(workDir, fmt.Sprintf("ci_%s.json", size))
	eventPath := filepath.Join(workDir, fmt.Sprintf("issue_events_%s.json", size))
	issuePath := filepath.Join(workDir, fmt.Sprintf("issues_%s.json", size))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	outcomes := []string{"fail", "pass", "pass", "fail", "pass", "pass", "pass", "pass"}

	var ci strings.Builder
	ci.WriteString("[\n")
	for i := 0; i < records; i++ {
		test := i / len(outcomes)
		outcome := outcomes[i%len(outcomes)]
		if test%10 != 0 {
			outcome = "pass"
		}
		if i > 0 {
			ci.WriteString(",\n")
		}
		fmt.Fprintf(&ci,
			`  {"package": "google/compute", "test_name": "TestAccBench_%06d", "timestamp": %q, "outcome": %q, "source": "ci_run"}`,
			test, base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339), outcome)
	}
	ci.WriteString("\n]\n")
	if err := os.WriteFile(ciPath, []byte(ci.String()), 0o644); err != nil {
		return "", "", "", err
	}

	var events strings.Builder
	events.WriteString("[\n")
	for i := 0; i < records/100+1; i++ {
		if i > 0 {
			events.WriteString(",\n")
		}
		opened := base.Add(time.Duration(i*10*len(outcomes)) * time.Minute)
		fmt.Fprintf(&events,
			`  {"package": "google/compute", "test_name": "TestAccBench_%06d", "timestamp": %q, "action": "opened", "source": "issue_event", "issue": %d}`,
			i*10, opened.Format(time.RFC3339), 1000+i)
	}
	events.WriteString("\n]\n")
	if err := os.WriteFile(eventPath, []byte(events.String()), 0o644); err != nil {
		return "", "", "", err
	}

	var issues strings.Builder
	issues.WriteString("[\n")
	for i := 0; i < records/100+1; i++ {
		if i > 0 {
			issues.WriteString(",\n")
		}
		opened := base.Add(time.Duration(i) * time.Hour)
		fmt.Fprintf(&issues,
			`  {"number": %d, "title": "Failing test(s): TestAccBench_%06d", "created_at": %q, "closed_at": %q, "comments": 2, "labels": ["test-failure"]}`,
			1000+i, i*10, opened.Format(time.RFC3339), opened.Add(48*time.Hour).Format(time.RFC3339))
	}
	issues.WriteString("\n]\n")
	if err := os.WriteFile(issuePath, []byte(issues.String()), 0o644); err != nil {
		return "", "", "", err
	}

	return ciPath, eventPath, issuePath, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, size, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s feed\n", description, size)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		FeedSize:    size,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a deeprepo command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command, extraArgs, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{command, "--cache-backend", cacheBackend}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("deeprepo", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Analysis completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/deeprepo_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"feed_size", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.FeedSize, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "boomerangs", "Boomerang Correlation:")
	printCommandSummary(results, "quality", "Issue Quality Analysis:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.FeedSize, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}

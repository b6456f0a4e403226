// Package parquet provides data structures and functions for exporting
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/nkaminski/deeprepo/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single analysis run with metadata.
// This struct maps to the deeprepo_analysis_runs database table.
type AnalysisRun struct {
	// RunID is the unique identifier for this analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalFindings is the number of findings produced by this run
	TotalFindings int32 `parquet:"total_findings,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Finding represents a ranked finding produced by an analysis run.
// This struct maps to the deeprepo_findings database table.
type Finding struct {
	// RunID references the parent analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// Package is the Go package path of the flagged test
	Package string `parquet:"package,snappy"`

	// TestName is the name of the flagged test
	TestName string `parquet:"test_name,snappy"`

	// Category is the finding classification
	Category string `parquet:"category,snappy"`

	// Confidence is the composite confidence score in [0, 1]
	Confidence float64 `parquet:"confidence,snappy"`

	// Recurrences is the deduplicated cycle count for the test
	Recurrences int32 `parquet:"recurrences,snappy"`

	// RecordedAt is when the finding was stored
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// writeParquet creates the output file and streams rows through a generic
// writer with schema inference from the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFindingsParquet writes a slice of Finding structs to a Parquet file.
func WriteFindingsParquet(data []Finding, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to AnalysisRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalFindings: record.TotalFindings,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFindingRecords converts schema.FindingRecord to Finding for Parquet export.
func ConvertFindingRecords(records []schema.FindingRecord) []Finding {
	result := make([]Finding, len(records))
	for i, record := range records {
		result[i] = Finding{
			RunID:       record.RunID,
			Package:     record.Package,
			TestName:    record.TestName,
			Category:    record.Category,
			Confidence:  record.Confidence,
			Recurrences: record.Recurrences,
			RecordedAt:  record.RecordedAt,
		}
	}
	return result
}

// MockFetchAnalysisRuns generates sample AnalysisRun data for demonstration.
func MockFetchAnalysisRuns() []AnalysisRun {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := now.Add(-1*time.Hour - 58*time.Minute)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	configParams1 := `{"pass_streak":"2","recency_window":"720h0m0s","workers":"4","result_limit":"25"}`

	startTime2 := now.Add(-24 * time.Hour)
	endTime2 := startTime2.Add(90 * time.Second)
	durationMs2 := int32(endTime2.Sub(startTime2).Milliseconds())
	configParams2 := `{"pass_streak":"3","recency_window":"336h0m0s","workers":"8","result_limit":"50"}`

	startTime3 := now.Add(-10 * time.Minute)
	// Note: endTime3, durationMs3, configParams3 are nil to demonstrate nullable fields

	return []AnalysisRun{
		{
			RunID:         1,
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			TotalFindings: 12,
			ConfigParams:  &configParams1,
		},
		{
			RunID:         2,
			StartTime:     startTime2,
			EndTime:       &endTime2,
			RunDurationMs: &durationMs2,
			TotalFindings: 7,
			ConfigParams:  &configParams2,
		},
		{
			RunID:         3,
			StartTime:     startTime3,
			EndTime:       nil, // Still running - nullable field
			RunDurationMs: nil, // Not yet calculated - nullable field
			TotalFindings: 0,
			ConfigParams:  nil, // No config stored - nullable field
		},
	}
}

// MockFetchFindings generates sample Finding data for demonstration.
func MockFetchFindings() []Finding {
	now := time.Now()

	return []Finding{
		{
			RunID:       1,
			Package:     "google/compute",
			TestName:    "TestAccComputeInstance_basic",
			Category:    "boomerang",
			Confidence:  0.87,
			Recurrences: 3,
			RecordedAt:  now.Add(-2 * time.Hour),
		},
		{
			RunID:       1,
			Package:     "google/container",
			TestName:    "TestAccContainerCluster_autoscaling",
			Category:    "boomerang",
			Confidence:  0.54,
			Recurrences: 1,
			RecordedAt:  now.Add(-2 * time.Hour),
		},
		{
			RunID:       2,
			Package:     "google/storage",
			TestName:    "TestAccStorageBucket_update",
			Category:    "persistent-failure",
			Confidence:  0.40,
			Recurrences: 1,
			RecordedAt:  now.Add(-24 * time.Hour),
		},
	}
}

// ConvertFindings converts in-memory ranked findings to Finding rows so a
// single report can be exported without going through the history store.
func ConvertFindings(findings []schema.Finding) []Finding {
	now := time.Now()
	result := make([]Finding, len(findings))
	for i, f := range findings {
		result[i] = Finding{
			Package:     f.Test.Package,
			TestName:    f.Test.Name,
			Category:    string(f.Category),
			Confidence:  f.Confidence,
			Recurrences: int32(f.Recurrences),
			RecordedAt:  now,
		}
	}
	return result
}

package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOutput() *schema.AnalysisOutput {
	open := schema.RunEvent{Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), Outcome: schema.FailOutcome}
	reopen := schema.RunEvent{Timestamp: time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC), Outcome: schema.FailOutcome}
	return &schema.AnalysisOutput{
		Findings: []schema.Finding{
			{
				Test:        schema.TestID{Package: "google/compute", Name: "TestAccComputeInstance_basic"},
				Category:    schema.BoomerangCategory,
				Confidence:  0.85,
				Recurrences: 2,
				Events:      []schema.RunEvent{open, reopen},
				Breakdown: map[schema.SignalKey]float64{
					schema.SignalRecency:   0.30,
					schema.SignalLinkage:   0.33,
					schema.SignalIsolation: 0.22,
				},
			},
			{
				Test:     schema.TestID{Package: "google/compute", Name: "TestAccComputeDisk_basic"},
				Category: schema.PersistentFailureCategory,
				Events:   []schema.RunEvent{open, reopen},
			},
		},
		Diagnostics: schema.Diagnostics{RawRecords: 20, MalformedRecords: 1, SparseTests: 2},
	}
}

func TestWriteJSONResultsForFindings(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSONResultsForFindings(&buf, sampleOutput())
	require.NoError(t, err)

	// Parse the JSON to verify structure
	var result struct {
		Findings []map[string]any `json:"findings"`
		Diag     map[string]any   `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result.Findings, 2)

	assert.Equal(t, float64(1), result.Findings[0]["rank"])
	assert.Equal(t, "Strong", result.Findings[0]["label"])
	assert.Equal(t, "boomerang", result.Findings[0]["category"])
	assert.Equal(t, float64(2), result.Findings[1]["rank"])
	assert.Equal(t, "Weak", result.Findings[1]["label"])
	assert.Equal(t, float64(20), result.Diag["raw_records"])
}

func TestWriteCSVResultsForFindings(t *testing.T) {
	fmtFloat := createFormatter(2)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writeCSVResultsForFindings(w, sampleOutput().Findings, fmtFloat)
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows

	assert.Equal(t, "rank,package,test,category,confidence,label,recurrences,first_event,last_event", lines[0])
	assert.Contains(t, lines[1], "1,google/compute,TestAccComputeInstance_basic,boomerang,0.85,Strong,2")
	assert.Contains(t, lines[1], "2025-06-01T10:00:00Z")
	assert.Contains(t, lines[2], "persistent-failure")
}

func TestWriteFindingsTable(t *testing.T) {
	contract.SetColorEnabled(false)
	defer contract.SetColorEnabled(true)
	fmtFloat := createFormatter(2)

	t.Run("basic columns", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Precision: 2, Workers: 4, CacheBackend: schema.SQLiteBackend}
		err := writeFindingsTable(sampleOutput(), cfg, fmtFloat, 125*time.Millisecond, &buf)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "TestAccComputeInstance_basic")
		assert.Contains(t, out, "Strong")
		assert.Contains(t, out, "Showing 2 findings (1 boomerangs, 1 persistent failures)")
		assert.Contains(t, out, "Processed 20 records (1 malformed, 0 tests skipped, 2 sparse)")
		assert.Contains(t, out, "4 workers")
		assert.Contains(t, out, "Cache backend: sqlite")
		assert.NotContains(t, out, "First Seen")
	})

	t.Run("detail and explain columns", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Precision: 2, Detail: true, Explain: true, Workers: 1}
		err := writeFindingsTable(sampleOutput(), cfg, fmtFloat, time.Second, &buf)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "First Seen")
		assert.Contains(t, out, "Last Seen")
		assert.Contains(t, out, "linkage=0.33")
	})

	t.Run("empty findings still render summary", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Precision: 2, Workers: 1}
		empty := &schema.AnalysisOutput{}
		err := writeFindingsTable(empty, cfg, fmtFloat, time.Second, &buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Showing 0 findings")
	})
}

func TestEventSpan(t *testing.T) {
	first, last := eventSpan(nil)
	assert.Empty(t, first)
	assert.Empty(t, last)

	events := []schema.RunEvent{
		{Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)},
	}
	first, last = eventSpan(events)
	assert.Equal(t, "2025-06-01T10:00:00Z", first)
	assert.Equal(t, "2025-06-10T10:00:00Z", last)
}

func TestFormatSignalBreakdown(t *testing.T) {
	fmtFloat := createFormatter(2)

	t.Run("empty breakdown", func(t *testing.T) {
		f := &schema.Finding{}
		assert.Equal(t, "-", formatSignalBreakdown(f, fmtFloat))
	})

	t.Run("sorted by contribution descending", func(t *testing.T) {
		f := &schema.Finding{Breakdown: map[schema.SignalKey]float64{
			schema.SignalRecency:   0.10,
			schema.SignalLinkage:   0.33,
			schema.SignalIsolation: 0.20,
		}}
		assert.Equal(t, "linkage=0.33 isolation=0.20 recency=0.10", formatSignalBreakdown(f, fmtFloat))
	})

	t.Run("equal contributions order by key", func(t *testing.T) {
		f := &schema.Finding{Breakdown: map[schema.SignalKey]float64{
			schema.SignalRecency: 0.25,
			schema.SignalLinkage: 0.25,
		}}
		assert.Equal(t, "linkage=0.25 recency=0.25", formatSignalBreakdown(f, fmtFloat))
	})
}

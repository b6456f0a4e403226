package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nkaminski/deeprepo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExecuteHistoryExport verifies the end-to-end export to Parquet files.
func TestExecuteHistoryExport(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	historyPath := filepath.Join(dir, "history.db")
	require.NoError(t, InitStores("", "", schema.SQLiteBackend, historyPath))
	defer CloseStores()

	store := Manager.GetHistoryStore()
	runID, err := store.BeginRun(time.Now().UTC(), map[string]any{"workers": 4})
	require.NoError(t, err)
	require.NoError(t, store.RecordFinding(runID, schema.Finding{
		Test:       schema.TestID{Package: "google/compute", Name: "TestAccComputeInstance_basic"},
		Category:   schema.BoomerangCategory,
		Confidence: 0.8,
	}))
	require.NoError(t, store.EndRun(runID, time.Now().UTC(), 1))

	outputFile := filepath.Join(dir, "export")
	require.NoError(t, ExecuteHistoryExport(outputFile))

	for _, suffix := range []string{".analysis_runs.parquet", ".findings.parquet"} {
		info, err := os.Stat(outputFile + suffix)
		require.NoError(t, err, suffix)
		assert.Positive(t, info.Size(), suffix)
	}
}

// TestExecuteHistoryExportValidation covers the rejection paths.
func TestExecuteHistoryExportValidation(t *testing.T) {
	t.Run("missing output file", func(t *testing.T) {
		assert.ErrorContains(t, ExecuteHistoryExport(""), "--output-file is required")
	})

	t.Run("empty history", func(t *testing.T) {
		resetGlobals(t)
		historyPath := filepath.Join(t.TempDir(), "history.db")
		require.NoError(t, InitStores("", "", schema.SQLiteBackend, historyPath))
		defer CloseStores()

		err := ExecuteHistoryExport(filepath.Join(t.TempDir(), "export"))
		assert.ErrorContains(t, err, "no run history found")
	})
}

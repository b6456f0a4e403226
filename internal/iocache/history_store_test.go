package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nkaminski/deeprepo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteHistoryStore(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

// TestHistoryStoreRunLifecycle verifies begin, record, end and retrieval.
func TestHistoryStoreRunLifecycle(t *testing.T) {
	store := newSQLiteHistoryStore(t)
	start := time.Now().Add(-time.Minute).UTC()

	runID, err := store.BeginRun(start, map[string]any{"pass_streak": 2})
	require.NoError(t, err)
	assert.Positive(t, runID)

	finding := schema.Finding{
		Test:        schema.TestID{Package: "google/compute", Name: "TestAccComputeInstance_basic"},
		Category:    schema.BoomerangCategory,
		Confidence:  0.82,
		Recurrences: 3,
	}
	require.NoError(t, store.RecordFinding(runID, finding))
	require.NoError(t, store.EndRun(runID, time.Now().UTC(), 1))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.WithinDuration(t, start, run.StartTime, time.Second)
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.GreaterOrEqual(t, *run.RunDurationMs, int32(0))
	assert.Equal(t, int32(1), run.TotalFindings)
	require.NotNil(t, run.ConfigParams)
	assert.Contains(t, *run.ConfigParams, "pass_streak")

	findings, err := store.GetAllFindings()
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, runID, findings[0].RunID)
	assert.Equal(t, "google/compute", findings[0].Package)
	assert.Equal(t, "TestAccComputeInstance_basic", findings[0].TestName)
	assert.Equal(t, string(schema.BoomerangCategory), findings[0].Category)
	assert.InDelta(t, 0.82, findings[0].Confidence, 0.001)
	assert.Equal(t, int32(3), findings[0].Recurrences)
	assert.False(t, findings[0].RecordedAt.IsZero())
}

// TestHistoryStoreMultipleRuns verifies run ordering and per-run findings.
func TestHistoryStoreMultipleRuns(t *testing.T) {
	store := newSQLiteHistoryStore(t)

	first, err := store.BeginRun(time.Now().UTC(), nil)
	require.NoError(t, err)
	second, err := store.BeginRun(time.Now().UTC(), nil)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].RunID)
	assert.Equal(t, second, runs[1].RunID)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, int64(2), status.Entries)
}

// TestHistoryStoreRepeatedTestFindings verifies one run can store several
// findings for the same test, as a test with multiple cycles or a boomerang
// plus a trailing persistent failure produces.
func TestHistoryStoreRepeatedTestFindings(t *testing.T) {
	store := newSQLiteHistoryStore(t)

	runID, err := store.BeginRun(time.Now().UTC(), nil)
	require.NoError(t, err)

	test := schema.TestID{Package: "google/compute", Name: "TestAccComputeInstance_basic"}
	require.NoError(t, store.RecordFinding(runID, schema.Finding{
		Test: test, Category: schema.BoomerangCategory, Confidence: 0.82, Recurrences: 2,
	}))
	require.NoError(t, store.RecordFinding(runID, schema.Finding{
		Test: test, Category: schema.BoomerangCategory, Confidence: 0.41, Recurrences: 2,
	}))
	require.NoError(t, store.RecordFinding(runID, schema.Finding{
		Test: test, Category: schema.PersistentFailureCategory, Recurrences: 1,
	}))

	findings, err := store.GetAllFindings()
	require.NoError(t, err)
	require.Len(t, findings, 3)
	for _, f := range findings {
		assert.Equal(t, runID, f.RunID)
		assert.Equal(t, test.Package, f.Package)
		assert.Equal(t, test.Name, f.TestName)
	}
}

// TestHistoryStoreUnfinishedRun verifies a run without EndRun has no end data.
func TestHistoryStoreUnfinishedRun(t *testing.T) {
	store := newSQLiteHistoryStore(t)

	_, err := store.BeginRun(time.Now().UTC(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(0), runs[0].TotalFindings)
}

// TestHistoryStoreClear verifies both tables are emptied.
func TestHistoryStoreClear(t *testing.T) {
	store := newSQLiteHistoryStore(t)

	runID, err := store.BeginRun(time.Now().UTC(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordFinding(runID, schema.Finding{
		Test: schema.TestID{Name: "TestA"}, Category: schema.BoomerangCategory,
	}))

	require.NoError(t, store.Clear())

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
	findings, err := store.GetAllFindings()
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// TestHistoryStoreNoneBackend verifies disabled tracking is a safe no-op.
func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.RecordFinding(0, schema.Finding{}))
	assert.NoError(t, store.EndRun(0, time.Now(), 0))
	assert.NoError(t, store.Clear())

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Enabled)
}

// TestNewHistoryStoreUnsupportedBackend verifies backend validation.
func TestNewHistoryStoreUnsupportedBackend(t *testing.T) {
	_, err := NewHistoryStore("oracle", "")
	assert.ErrorContains(t, err, "unsupported backend")
}

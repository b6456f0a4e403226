package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nkaminski/deeprepo/internal/iocache"
	"github.com/nkaminski/deeprepo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeFeedFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadRunRecords verifies merging, source tagging and seq assignment.
func TestLoadRunRecords(t *testing.T) {
	dir := t.TempDir()
	ciPath := writeFeedFile(t, dir, "ci.json",
		`[{"test_name": "TestA", "outcome": "pass", "timestamp": "2025-06-01T10:00:00Z"},
		  {"test_name": "TestB", "outcome": "fail", "timestamp": "2025-06-01T11:00:00Z"}]`)
	issuePath := writeFeedFile(t, dir, "issues.json",
		`[{"test_name": "TestA", "action": "opened", "timestamp": "2025-06-01T12:00:00Z", "issue": 42}]`)

	records, err := NewLoader(nil).LoadRunRecords(context.Background(), ciPath, issuePath)

	require.NoError(t, err)
	require.Len(t, records, 3)
	// CI records first in file order, then issue events; Seq is contiguous.
	assert.Equal(t, schema.CIRunSource, records[0].Source)
	assert.Equal(t, schema.CIRunSource, records[1].Source)
	assert.Equal(t, schema.IssueEventSource, records[2].Source)
	for i, rec := range records {
		assert.Equal(t, i, rec.Seq)
	}
	assert.Equal(t, 42, records[2].Issue)
}

// TestLoadRunRecordsSingleFeed verifies either feed may be omitted.
func TestLoadRunRecordsSingleFeed(t *testing.T) {
	dir := t.TempDir()
	ciPath := writeFeedFile(t, dir, "ci.json",
		`[{"test_name": "TestA", "outcome": "pass", "timestamp": "2025-06-01T10:00:00Z"}]`)

	records, err := NewLoader(nil).LoadRunRecords(context.Background(), ciPath, "")

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// TestLoadRunRecordsErrors covers missing files and malformed JSON.
func TestLoadRunRecordsErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(nil).LoadRunRecords(context.Background(), filepath.Join(dir, "nope.json"), "")
		assert.ErrorContains(t, err, "cannot read feed")
	})

	t.Run("not a JSON array", func(t *testing.T) {
		path := writeFeedFile(t, dir, "bad.json", `{"oops": true}`)
		_, err := NewLoader(nil).LoadRunRecords(context.Background(), path, "")
		assert.ErrorContains(t, err, "not a JSON array")
	})
}

// TestLoadIssueRecords verifies the closed-issue feed decoding.
func TestLoadIssueRecords(t *testing.T) {
	dir := t.TempDir()
	path := writeFeedFile(t, dir, "closed.json",
		`[{"number": 10, "title": "Disk diff loops", "comments": 3,
		   "created_at": "2025-05-01T00:00:00Z", "closed_at": "2025-05-04T00:00:00Z"}]`)

	issues, err := NewLoader(nil).LoadIssueRecords(path)

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 10, issues[0].Number)
	assert.Equal(t, 3, issues[0].Comments)
	assert.Equal(t, int(72), int(issues[0].ClosedAt.Sub(issues[0].CreatedAt).Hours()))
}

// TestReadFileCacheMiss verifies a miss falls through to disk and populates
// the cache.
func TestReadFileCacheMiss(t *testing.T) {
	dir := t.TempDir()
	content := `[{"test_name": "TestA", "outcome": "pass", "timestamp": "2025-06-01T10:00:00Z"}]`
	path := writeFeedFile(t, dir, "ci.json", content)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.AnythingOfType("string")).Return([]byte(nil), 0, int64(0), assert.AnError)
	store.On("Set", mock.AnythingOfType("string"), []byte(content), cacheVersion, mock.AnythingOfType("int64")).Return(nil)

	records, err := NewLoader(store).LoadRunRecords(context.Background(), path, "")

	require.NoError(t, err)
	assert.Len(t, records, 1)
	store.AssertExpectations(t)
}

// TestReadFileCacheHit verifies a versioned hit skips the disk read.
func TestReadFileCacheHit(t *testing.T) {
	dir := t.TempDir()
	onDisk := `[{"test_name": "TestStale", "outcome": "pass", "timestamp": "2025-06-01T10:00:00Z"}]`
	cached := `[{"test_name": "TestCached", "outcome": "pass", "timestamp": "2025-06-01T10:00:00Z"}]`
	path := writeFeedFile(t, dir, "ci.json", onDisk)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.AnythingOfType("string")).Return([]byte(cached), cacheVersion, int64(0), nil)

	records, err := NewLoader(store).LoadRunRecords(context.Background(), path, "")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TestCached", records[0].TestName)
	store.AssertExpectations(t)
}

// TestReadFileCacheVersionMismatch verifies a stale-version entry is ignored.
func TestReadFileCacheVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	content := `[{"test_name": "TestA", "outcome": "pass", "timestamp": "2025-06-01T10:00:00Z"}]`
	path := writeFeedFile(t, dir, "ci.json", content)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.AnythingOfType("string")).Return([]byte("old"), cacheVersion-1, int64(0), nil)
	store.On("Set", mock.AnythingOfType("string"), []byte(content), cacheVersion, mock.AnythingOfType("int64")).Return(nil)

	records, err := NewLoader(store).LoadRunRecords(context.Background(), path, "")

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "TestA", records[0].TestName)
	store.AssertExpectations(t)
}

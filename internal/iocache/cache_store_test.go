package iocache

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nkaminski/deeprepo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(feedTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

// TestCacheStoreRoundtrip verifies Set/Get over a real SQLite file.
func TestCacheStoreRoundtrip(t *testing.T) {
	store := newSQLiteCacheStore(t)

	require.NoError(t, store.Set("feed|ci.json|100|1", []byte("payload"), 1, 1700000000))

	value, version, ts, err := store.Get("feed|ci.json|100|1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1700000000), ts)
}

// TestCacheStoreOverwrite verifies upsert semantics on an existing key.
func TestCacheStoreOverwrite(t *testing.T) {
	store := newSQLiteCacheStore(t)

	require.NoError(t, store.Set("key", []byte("old"), 1, 1))
	require.NoError(t, store.Set("key", []byte("new"), 2, 2))

	value, version, _, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), value)
	assert.Equal(t, 2, version)
}

// TestCacheStoreMissingKey verifies sql.ErrNoRows on a miss.
func TestCacheStoreMissingKey(t *testing.T) {
	store := newSQLiteCacheStore(t)

	_, _, _, err := store.Get("absent")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

// TestCacheStoreNoneBackend verifies the disabled store is a safe no-op.
func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(feedTable, schema.NoneBackend, "")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.NoError(t, store.Set("key", []byte("x"), 1, 1))
	_, _, _, err = store.Get("key")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Equal(t, schema.NoneBackend, status.Backend)
}

// TestNewCacheStoreErrors covers invalid inputs.
func TestNewCacheStoreErrors(t *testing.T) {
	t.Run("unsupported backend", func(t *testing.T) {
		_, err := NewCacheStore(feedTable, "oracle", "")
		assert.ErrorContains(t, err, "unsupported cache backend")
	})

	t.Run("invalid table name", func(t *testing.T) {
		_, err := NewCacheStore("bad;table", schema.SQLiteBackend, filepath.Join(t.TempDir(), "c.db"))
		assert.ErrorContains(t, err, "invalid table name")
	})
}

// TestCacheStoreGetStatus verifies entry counting.
func TestCacheStoreGetStatus(t *testing.T) {
	store := newSQLiteCacheStore(t)

	require.NoError(t, store.Set("a", []byte("1"), 1, 1))
	require.NoError(t, store.Set("b", []byte("2"), 1, 2))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, schema.SQLiteBackend, status.Backend)
	assert.Equal(t, int64(2), status.Entries)
	assert.Contains(t, status.Location, "cache.db")
}

// TestCacheStoreQueryBuilders verifies the backend-specific SQL fragments.
func TestCacheStoreQueryBuilders(t *testing.T) {
	sqlite := &CacheStoreImpl{tableName: feedTable, backend: schema.SQLiteBackend}
	mysql := &CacheStoreImpl{tableName: feedTable, backend: schema.MySQLBackend}
	pg := &CacheStoreImpl{tableName: feedTable, backend: schema.PostgreSQLBackend}

	assert.Equal(t, "?", sqlite.getPlaceholder())
	assert.Equal(t, "?", mysql.getPlaceholder())
	assert.Equal(t, "$1", pg.getPlaceholder())

	assert.Contains(t, sqlite.getUpsertQuery(), "INSERT OR REPLACE")
	assert.Contains(t, mysql.getUpsertQuery(), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, pg.getUpsertQuery(), "ON CONFLICT (cache_key)")

	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		query := getCreateTableQuery(feedTable, backend)
		assert.True(t, strings.Contains(query, "cache_key") && strings.Contains(query, "cache_value"), string(backend))
	}
}

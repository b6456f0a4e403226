// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/nkaminski/deeprepo/schema"
)

// RepoScanner defines the git operations the analysis depends on.
// This allows the core logic to be tested without a real git executable.
type RepoScanner interface {
	// CommitsTouching returns the commits that touched the given path
	// between two timestamps. Used by the isolation confidence signal.
	CommitsTouching(ctx context.Context, repoPath, path string, from, to time.Time) ([]string, error)

	// HeadCommit returns the current HEAD commit hash of the repository.
	HeadCommit(ctx context.Context, repoPath string) (string, error)
}

// StoreManager defines the interface for managing persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetFeedStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for raw feed caching.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.StoreStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking audit runs and persisting
// ranked findings across invocations.
type HistoryStore interface {
	// BeginRun creates a new audit run and returns its unique ID.
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the audit run with completion data.
	EndRun(runID int64, endTime time.Time, totalFindings int) error

	// RecordFinding stores one ranked finding for a run.
	RecordFinding(runID int64, finding schema.Finding) error

	// GetAllRuns retrieves every stored run ordered by run ID.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFindings retrieves every stored finding ordered by run ID.
	GetAllFindings() ([]schema.FindingRecord, error)

	// GetStatus returns status information about the history store.
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all stored runs and findings.
	Clear() error

	Close() error
}

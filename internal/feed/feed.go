// Package feed loads raw record feeds already fetched by external
// collaborators (GitHub issue exporters, CI result dumps). Pagination and
// API access live in those collaborators; here the feeds are plain JSON
// files on disk.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"
	"golang.org/x/sync/errgroup"
)

// cacheVersion invalidates cached feed blobs when the record schema changes.
const cacheVersion = 1

// Loader reads record feeds, optionally caching parsed blobs so repeated
// audits of large feeds skip the JSON decode.
type Loader struct {
	store contract.CacheStore // May be nil
}

// NewLoader creates a feed loader. A nil store disables caching.
func NewLoader(store contract.CacheStore) *Loader {
	return &Loader{store: store}
}

// LoadRunRecords loads the two raw feeds concurrently and merges them into
// a single ingestion-ordered record set: CI results first, then issue
// events, each in file order. The resulting Seq values are the stable
// secondary sort key the timeline builder relies on.
func (l *Loader) LoadRunRecords(ctx context.Context, ciPath, issuePath string) ([]schema.RawRecord, error) {
	var ciRecords, issueRecords []schema.RawRecord

	g, _ := errgroup.WithContext(ctx)
	if ciPath != "" {
		g.Go(func() error {
			var err error
			ciRecords, err = l.loadFeed(ciPath, schema.CIRunSource)
			return err
		})
	}
	if issuePath != "" {
		g.Go(func() error {
			var err error
			issueRecords, err = l.loadFeed(issuePath, schema.IssueEventSource)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]schema.RawRecord, 0, len(ciRecords)+len(issueRecords))
	records = append(records, ciRecords...)
	records = append(records, issueRecords...)
	for i := range records {
		records[i].Seq = i
	}
	return records, nil
}

// loadFeed reads one feed file and tags every record with its source.
func (l *Loader) loadFeed(path string, source schema.SourceKind) ([]schema.RawRecord, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}

	var records []schema.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("feed %s is not a JSON array of records: %w", path, err)
	}
	for i := range records {
		records[i].Source = source
	}
	return records, nil
}

// LoadIssueRecords reads the closed-issue feed for the quality analysis.
func (l *Loader) LoadIssueRecords(path string) ([]schema.IssueRecord, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}

	var issues []schema.IssueRecord
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("feed %s is not a JSON array of issues: %w", path, err)
	}
	return issues, nil
}

// readFile reads a feed through the cache when one is configured. The key
// incorporates size and mtime so a refreshed feed bypasses stale entries.
func (l *Loader) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read feed %s: %w", path, err)
	}

	key := fmt.Sprintf("feed|%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if l.store != nil {
		if data, version, _, err := l.store.Get(key); err == nil && version == cacheVersion && len(data) > 0 {
			return data, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read feed %s: %w", path, err)
	}

	if l.store != nil {
		if err := l.store.Set(key, data, cacheVersion, info.ModTime().Unix()); err != nil {
			contract.LogWarn("Feed cache write failed", err)
		}
	}
	return data, nil
}

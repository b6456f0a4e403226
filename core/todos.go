package core

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"
)

// Generated compute resource definitions; the scan is scoped to these
// because hand-written helpers carry TODOs with different ownership.
var resourcePattern = regexp.MustCompile(`^resource_compute_[a-z_]+\.go$`)

var todoPattern = regexp.MustCompile(`(?i)TODO`)

// ScanTodos walks the configured resource directory and collects TODO lines
// per generated resource file, recording the HEAD commit so reports can
// permalink each occurrence.
func ScanTodos(ctx context.Context, cfg *contract.Config, scanner contract.RepoScanner) (*schema.TodoReport, error) {
	if cfg.RepoPath == "" {
		return nil, fmt.Errorf("todo scan requires a repository path")
	}
	dir := filepath.Join(cfg.RepoPath, cfg.TodoDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list resource directory %s: %w", dir, err)
	}

	report := &schema.TodoReport{}
	if scanner != nil {
		head, err := scanner.HeadCommit(ctx, cfg.RepoPath)
		if err != nil {
			contract.LogWarn("Cannot resolve HEAD commit, report will omit permalinks", err)
		} else {
			report.HeadCommit = head
		}
	}

	for _, entry := range entries {
		if entry.IsDir() || !resourcePattern.MatchString(entry.Name()) {
			continue
		}
		report.ScannedFiles++

		matches, err := scanFileTodos(filepath.Join(dir, entry.Name()))
		if err != nil {
			contract.LogWarn("Cannot scan resource file", err)
			continue
		}
		if len(matches) == 0 {
			continue
		}
		relPath := entry.Name()
		if cfg.TodoDir != "" {
			relPath = filepath.ToSlash(filepath.Join(cfg.TodoDir, entry.Name()))
		}
		report.Files = append(report.Files, schema.TodoFile{Path: relPath, Matches: matches})
	}

	if report.ScannedFiles == 0 {
		return nil, fmt.Errorf("no generated compute resources found in %s. Check that the path points at a provider checkout", dir)
	}

	sort.Slice(report.Files, func(i, j int) bool {
		return report.Files[i].Path < report.Files[j].Path
	})

	return report, nil
}

// scanFileTodos collects TODO occurrences with 1-based line numbers.
func scanFileTodos(path string) ([]schema.TodoLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var matches []schema.TodoLine
	s := bufio.NewScanner(f)
	line := 0
	for s.Scan() {
		line++
		if todoPattern.MatchString(s.Text()) {
			matches = append(matches, schema.TodoLine{Line: line, Text: strings.TrimSpace(s.Text())})
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

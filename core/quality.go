package core

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"
)

// failingTestMarker excludes auto-filed test-failure issues from the
// quality statistics; those are tracked by the boomerang pipeline instead.
const failingTestMarker = "Failing test(s)"

// AnalyzeIssueQuality aggregates closed-issue quality statistics:
// resolution time, time to first comment, comment volume and reactions,
// each with a top-N worst/highest list. Issues are filtered the same way
// for every run: pull requests and auto-filed failing-test issues are
// skipped, and when no label filter is set only issues closed within the
// configured window count.
func AnalyzeIssueQuality(issues []schema.IssueRecord, cfg *contract.Config) (*schema.QualityReport, error) {
	since := time.Now().Add(-time.Duration(cfg.QualitySince) * 24 * time.Hour)

	var kept []schema.IssueRecord
	for _, issue := range issues {
		if issue.IsPull || strings.Contains(issue.Title, failingTestMarker) {
			continue
		}
		if issue.ClosedAt.IsZero() || issue.ClosedAt.Before(issue.CreatedAt) {
			continue
		}
		if len(cfg.QualityLabels) > 0 {
			if !hasAnyLabel(issue, cfg.QualityLabels) {
				continue
			}
		} else if issue.ClosedAt.Before(since) {
			continue
		}
		kept = append(kept, issue)
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("no issues matched the quality filters: %w", schema.ErrEmptyInput)
	}

	report := &schema.QualityReport{Analyzed: len(kept)}

	var totalResolution time.Duration
	var totalComments, totalReactions int
	for _, issue := range kept {
		totalResolution += issue.ClosedAt.Sub(issue.CreatedAt)
		totalComments += issue.Comments
		totalReactions += issue.Reactions
	}
	report.AvgResolution = totalResolution / time.Duration(len(kept))
	report.AvgComments = float64(totalComments) / float64(len(kept))
	report.AvgReactions = float64(totalReactions) / float64(len(kept))

	// First-response averages only consider issues with at least one comment.
	var totalResponse time.Duration
	var responded int
	for _, issue := range kept {
		if issue.Comments == 0 || issue.FirstCommentAt.IsZero() {
			continue
		}
		totalResponse += issue.FirstCommentAt.Sub(issue.CreatedAt)
		responded++
	}
	if responded > 0 {
		report.AvgFirstResponse = totalResponse / time.Duration(responded)
	}

	report.SlowestResolved = topByDuration(kept, cfg.TopCount, func(i schema.IssueRecord) time.Duration {
		return i.ClosedAt.Sub(i.CreatedAt)
	})
	report.SlowestResponse = topByDuration(kept, cfg.TopCount, func(i schema.IssueRecord) time.Duration {
		if i.Comments == 0 || i.FirstCommentAt.IsZero() {
			return 0
		}
		return i.FirstCommentAt.Sub(i.CreatedAt)
	})
	report.MostCommented = topByCount(kept, cfg.TopCount, func(i schema.IssueRecord) int { return i.Comments })
	report.MostEngaging = topByCount(kept, cfg.TopCount, func(i schema.IssueRecord) int { return i.Reactions })

	return report, nil
}

func hasAnyLabel(issue schema.IssueRecord, labels []string) bool {
	for _, want := range labels {
		if slices.Contains(issue.Labels, want) {
			return true
		}
	}
	return false
}

// topByDuration returns the n issues with the largest duration values,
// ties broken by issue number for determinism.
func topByDuration(issues []schema.IssueRecord, n int, value func(schema.IssueRecord) time.Duration) []schema.IssueStat {
	stats := make([]schema.IssueStat, 0, len(issues))
	for _, issue := range issues {
		v := value(issue)
		if v <= 0 {
			continue
		}
		stats = append(stats, schema.IssueStat{
			Number: issue.Number,
			Title:  issue.Title,
			URL:    issue.URL,
			Value:  v,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Value != stats[j].Value {
			return stats[i].Value > stats[j].Value
		}
		return stats[i].Number < stats[j].Number
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// topByCount returns the n issues with the largest count values.
func topByCount(issues []schema.IssueRecord, n int, count func(schema.IssueRecord) int) []schema.IssueStat {
	stats := make([]schema.IssueStat, 0, len(issues))
	for _, issue := range issues {
		stats = append(stats, schema.IssueStat{
			Number: issue.Number,
			Title:  issue.Title,
			URL:    issue.URL,
			Count:  count(issue),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Number < stats[j].Number
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

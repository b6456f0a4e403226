package core

import (
	"fmt"
	"sort"

	"github.com/nkaminski/deeprepo/schema"
)

// RankFindings aggregates detected cycles and persistent failures into an
// ordered, finite, restartable sequence of ranked findings. Cycles that
// reference identical (test, open, reopen) triples from redundant input
// sources are deduplicated first. Boomerangs sort descending by confidence,
// then by per-test recurrence count, with stable deterministic tie-breaks;
// persistent failures follow, ordered by failure count.
func RankFindings(cycles []schema.BoomerangCycle, persistent []schema.PersistentFailure, limit int) []schema.Finding {
	deduped := dedupeCycles(cycles)

	recurrences := make(map[schema.TestID]int)
	for _, c := range deduped {
		recurrences[c.Test]++
	}

	findings := make([]schema.Finding, 0, len(deduped)+len(persistent))
	for _, c := range deduped {
		findings = append(findings, schema.Finding{
			Test:        c.Test,
			Category:    schema.BoomerangCategory,
			Confidence:  c.Confidence,
			Recurrences: recurrences[c.Test],
			Events:      []schema.RunEvent{c.Open, c.Resolve, c.Reopen},
			Breakdown:   c.Breakdown,
		})
	}
	for _, p := range persistent {
		findings = append(findings, schema.Finding{
			Test:     p.Test,
			Category: schema.PersistentFailureCategory,
			Events:   []schema.RunEvent{p.First, p.Last},
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Category != b.Category {
			// Boomerangs rank above persistent failures.
			return a.Category == schema.BoomerangCategory
		}
		if a.Category == schema.PersistentFailureCategory {
			return persistentLess(a, b)
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Recurrences != b.Recurrences {
			return a.Recurrences > b.Recurrences
		}
		if a.Test != b.Test {
			return a.Test.String() < b.Test.String()
		}
		// Same test, same confidence: older reopen first.
		return a.Events[2].Timestamp.Before(b.Events[2].Timestamp)
	})

	if len(findings) > limit && limit > 0 {
		findings = findings[:limit]
	}
	return findings
}

// persistentLess orders persistent-failure findings by most recent failure
// first, then by test identifier for determinism.
func persistentLess(a, b schema.Finding) bool {
	la, lb := a.Events[len(a.Events)-1], b.Events[len(b.Events)-1]
	if !la.Timestamp.Equal(lb.Timestamp) {
		return la.Timestamp.After(lb.Timestamp)
	}
	return a.Test.String() < b.Test.String()
}

// dedupeCycles drops cycles sharing a (test, open, reopen) triple, keeping
// the first occurrence.
func dedupeCycles(cycles []schema.BoomerangCycle) []schema.BoomerangCycle {
	seen := make(map[string]struct{}, len(cycles))
	out := make([]schema.BoomerangCycle, 0, len(cycles))
	for _, c := range cycles {
		key := fmt.Sprintf("%s|%d|%d", c.Test, c.Open.Timestamp.UnixNano(), c.Reopen.Timestamp.UnixNano())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

package core

import (
	"context"

	"github.com/nkaminski/deeprepo/schema"
)

// clamp01 bounds a signal to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scoreCycle combines the three confidence signals into a weighted average.
// Deterministic given the same timeline, configuration and scanner data.
func (d *Detector) scoreCycle(ctx context.Context, test schema.TestID, prev, next *episode) (float64, map[schema.SignalKey]float64) {
	recency := d.recencySignal(prev, next)
	linkage := linkageSignal(prev, next)
	isolation := d.isolationSignal(ctx, test, prev, next)

	w := d.cfg.Weights
	breakdown := map[schema.SignalKey]float64{
		schema.SignalRecency:   w.Recency * recency,
		schema.SignalLinkage:   w.Linkage * linkage,
		schema.SignalIsolation: w.Isolation * isolation,
	}

	confidence := (breakdown[schema.SignalRecency] +
		breakdown[schema.SignalLinkage] +
		breakdown[schema.SignalIsolation]) / w.Total()

	return clamp01(confidence), breakdown
}

// recencySignal scores how quickly the test failed again after its recovery
// was confirmed. A reopen within the window is strong evidence of a true
// regression; one separated by months more plausibly reflects an unrelated
// new failure mode reusing the same test name. Monotonically non-increasing
// in the gap: at gap zero the signal is 1, at gap == window it is 0.5, and
// it decays toward 0 beyond that.
func (d *Detector) recencySignal(prev, next *episode) float64 {
	gap := next.open.Timestamp.Sub(prev.resolve.Timestamp)
	if gap <= 0 {
		return 1
	}
	window := float64(d.cfg.RecencyWindow)
	return clamp01(window / (window + float64(gap)))
}

// linkageSignal scores explicit human-confirmed relation: the same issue or
// PR number referenced by both the original failing episode and the
// reopening one scores full; an unshared reference on the reopen side is a
// weak hint; no references score zero.
func linkageSignal(prev, next *episode) float64 {
	for issue := range next.issues {
		if _, ok := prev.issues[issue]; ok {
			return 1
		}
	}
	if len(next.issues) > 0 {
		return 0.25
	}
	return 0
}

// isolationSignal scores how few unrelated commits touched the test's
// owning resource between recovery and reopen. Many intervening changes
// weaken the regression hypothesis. Without a scanner (or on scanner error)
// the signal is a neutral 0.5 so the other signals still dominate.
func (d *Detector) isolationSignal(ctx context.Context, test schema.TestID, prev, next *episode) float64 {
	const neutral = 0.5

	if d.scanner == nil || d.repoPath == "" || test.Package == "" {
		return neutral
	}

	commits, err := d.scanner.CommitsTouching(ctx, d.repoPath, test.Package, prev.resolve.Timestamp, next.open.Timestamp)
	if err != nil {
		return neutral
	}

	return clamp01(1 - float64(len(commits))/float64(d.cfg.MaxIntervening))
}

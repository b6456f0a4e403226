package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"
)

// minTimelineEvents is the evidence floor: a test with fewer events cannot
// produce a cycle and is skipped.
const minTimelineEvents = 3

// testState is the explicit tagged state of the per-test machine.
type testState int

const (
	stateHealthy testState = iota
	stateFailing
	stateRecovering
)

// episode is one failing stretch of a timeline: the failure that opened it,
// the pass that confirmed its recovery (if any), and the linkage evidence
// collected along the way.
type episode struct {
	open      schema.RunEvent
	resolve   schema.RunEvent // Valid only when confirmed
	lastFail  schema.RunEvent
	failures  int
	issues    map[int]struct{}
	confirmed bool
}

func (e *episode) addIssue(ev schema.RunEvent) {
	if ev.Issue == 0 {
		return
	}
	if e.issues == nil {
		e.issues = make(map[int]struct{})
	}
	e.issues[ev.Issue] = struct{}{}
}

// Detector walks per-test timelines with the boomerang state machine and
// scores detected cycles. Construct once with an explicit configuration;
// safe for concurrent use because it holds no mutable state.
type Detector struct {
	cfg      schema.DetectorConfig
	scanner  contract.RepoScanner // May be nil; isolation then scores neutral
	repoPath string
}

// NewDetector creates a detector with an explicit configuration. The scanner
// feeds the isolation signal and may be nil when no repository checkout is
// available.
func NewDetector(cfg schema.DetectorConfig, scanner contract.RepoScanner, repoPath string) *Detector {
	if cfg.PassStreak <= 0 {
		cfg.PassStreak = schema.DefaultPassStreak
	}
	if cfg.RecencyWindow <= 0 {
		cfg.RecencyWindow = schema.DefaultRecencyWindow
	}
	if cfg.MaxIntervening <= 0 {
		cfg.MaxIntervening = schema.DefaultMaxIntervening
	}
	if cfg.Weights.Total() == 0 {
		cfg.Weights = schema.DefaultSignalWeights()
	}
	return &Detector{cfg: cfg, scanner: scanner, repoPath: repoPath}
}

// DetectResult is the output slot for one timeline.
type DetectResult struct {
	Test       schema.TestID
	Cycles     []schema.BoomerangCycle
	Persistent *schema.PersistentFailure
	Sparse     bool  // Fewer than minTimelineEvents events
	Err        error // InvariantViolationError; skips this test only
}

// DetectTimeline runs the state machine over a single ordered timeline.
// HEALTHY -> FAILING on a failure, FAILING -> RECOVERING on the first pass,
// RECOVERING -> HEALTHY once the pass streak confirms the recovery, and a
// later failure while HEALTHY after a confirmed recovery emits a
// BoomerangCycle. A failing stretch that is never confirmed recovered is a
// persistent failure, not a boomerang.
func (d *Detector) DetectTimeline(ctx context.Context, tl schema.Timeline) DetectResult {
	result := DetectResult{Test: tl.Test}

	if len(tl.Events) < minTimelineEvents {
		result.Sparse = true
		return result
	}

	episodes, err := d.walk(tl)
	if err != nil {
		result.Err = err
		return result
	}

	for i := 0; i+1 < len(episodes); i++ {
		prev, next := episodes[i], episodes[i+1]
		if !prev.confirmed {
			// Guarded by the machine: a new episode only opens from
			// HEALTHY, which requires a confirmed recovery.
			result.Err = &schema.InvariantViolationError{Test: tl.Test, Reason: "unconfirmed episode followed by another"}
			return result
		}
		if !next.open.Timestamp.After(prev.resolve.Timestamp) {
			// A reopen in the same instant as the confirming pass cannot
			// form a strictly ordered open < resolve < reopen cycle.
			continue
		}
		confidence, breakdown := d.scoreCycle(ctx, tl.Test, prev, next)
		result.Cycles = append(result.Cycles, schema.BoomerangCycle{
			Test:       tl.Test,
			Open:       prev.open,
			Resolve:    prev.resolve,
			Reopen:     next.open,
			Confidence: confidence,
			Breakdown:  breakdown,
		})
	}

	if n := len(episodes); n > 0 {
		last := episodes[n-1]
		if !last.confirmed && last.failures >= 2 {
			result.Persistent = &schema.PersistentFailure{
				Test:     tl.Test,
				First:    last.open,
				Last:     last.lastFail,
				Failures: last.failures,
			}
		}
	}

	return result
}

// walk applies the state machine and collects episodes. Fails fast with an
// InvariantViolationError when the timeline is out of order, which the
// builder's contract should make impossible.
func (d *Detector) walk(tl schema.Timeline) ([]*episode, error) {
	var episodes []*episode
	var cur *episode

	state := stateHealthy
	streak := 0

	for i, ev := range tl.Events {
		if i > 0 && ev.Timestamp.Before(tl.Events[i-1].Timestamp) {
			return nil, &schema.InvariantViolationError{
				Test:   tl.Test,
				Reason: fmt.Sprintf("events out of order at position %d", i),
			}
		}

		// Every event observed during an open episode contributes
		// linkage evidence, including the confirming pass.
		if cur != nil && !cur.confirmed {
			cur.addIssue(ev)
		}

		switch {
		case ev.Outcome.IsFailure():
			switch state {
			case stateHealthy:
				cur = &episode{open: ev, lastFail: ev, failures: 1}
				cur.addIssue(ev)
				episodes = append(episodes, cur)
				state = stateFailing
			case stateFailing:
				cur.failures++
				cur.lastFail = ev
			case stateRecovering:
				// Recovery unconfirmed; same episode continues.
				cur.failures++
				cur.lastFail = ev
				streak = 0
				state = stateFailing
			}

		case ev.Outcome == schema.PassOutcome:
			switch state {
			case stateFailing, stateRecovering:
				streak++
				// A pass in the same instant as the opening failure cannot
				// serve as the resolve reference; keep waiting for one that
				// is strictly later.
				if streak >= d.cfg.PassStreak && ev.Timestamp.After(cur.open.Timestamp) {
					cur.resolve = ev
					cur.confirmed = true
					streak = 0
					state = stateHealthy
				} else {
					state = stateRecovering
				}
			case stateHealthy:
				// Steady state, nothing to record.
			}

		default: // skipped
			// No transition; skipped runs are not evidence either way.
		}
	}

	return episodes, nil
}

// DetectAll fans detection out across timelines with a worker pool. Each
// worker writes to its own output slot indexed by timeline, so no locking
// is needed; outputs are merged only after the join, in timeline order.
func (d *Detector) DetectAll(ctx context.Context, timelines []schema.Timeline, workers int) ([]schema.BoomerangCycle, []schema.PersistentFailure, schema.Diagnostics) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]DetectResult, len(timelines))
	indexCh := make(chan int, len(timelines))
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			for i := range indexCh {
				results[i] = d.DetectTimeline(ctx, timelines[i])
			}
		})
	}

	for i := range timelines {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	var cycles []schema.BoomerangCycle
	var persistent []schema.PersistentFailure
	var diag schema.Diagnostics

	for _, r := range results {
		if r.Err != nil {
			diag.SkippedTests++
			diag.Warnings = append(diag.Warnings, r.Err.Error())
			continue
		}
		if r.Sparse {
			diag.SparseTests++
			continue
		}
		cycles = append(cycles, r.Cycles...)
		if r.Persistent != nil {
			persistent = append(persistent, *r.Persistent)
		}
	}

	return cycles, persistent, diag
}

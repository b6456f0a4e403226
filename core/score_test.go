package core

import (
	"context"
	"testing"
	"time"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func episodePair(gap time.Duration) (*episode, *episode) {
	resolved := ts(0)
	prev := &episode{
		open:      schema.RunEvent{Test: detectTest, Timestamp: resolved.Add(-2 * time.Hour), Outcome: schema.FailOutcome},
		resolve:   schema.RunEvent{Test: detectTest, Timestamp: resolved, Outcome: schema.PassOutcome},
		confirmed: true,
	}
	next := &episode{
		open: schema.RunEvent{Test: detectTest, Timestamp: resolved.Add(gap), Outcome: schema.FailOutcome},
	}
	return prev, next
}

// TestClamp01 tests signal bounding.
func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 0.0, clamp01(0))
	assert.Equal(t, 0.5, clamp01(0.5))
	assert.Equal(t, 1.0, clamp01(1))
	assert.Equal(t, 1.0, clamp01(1.7))
}

// TestRecencySignal verifies the decay curve and its anchor points.
func TestRecencySignal(t *testing.T) {
	cfg := schema.DefaultDetectorConfig()
	cfg.RecencyWindow = 30 * 24 * time.Hour
	d := NewDetector(cfg, nil, "")

	t.Run("instant reopen scores full", func(t *testing.T) {
		prev, next := episodePair(0)
		assert.Equal(t, 1.0, d.recencySignal(prev, next))
	})

	t.Run("gap equal to window scores half", func(t *testing.T) {
		prev, next := episodePair(cfg.RecencyWindow)
		assert.InDelta(t, 0.5, d.recencySignal(prev, next), 0.001)
	})

	t.Run("monotonically non-increasing in the gap", func(t *testing.T) {
		last := 1.1
		for days := 0; days <= 365; days += 5 {
			prev, next := episodePair(time.Duration(days) * 24 * time.Hour)
			got := d.recencySignal(prev, next)
			assert.LessOrEqual(t, got, last)
			assert.True(t, got >= 0 && got <= 1)
			last = got
		}
	})
}

// TestLinkageSignal verifies shared, unshared and absent issue references.
func TestLinkageSignal(t *testing.T) {
	tests := []struct {
		name       string
		prevIssues []int
		nextIssues []int
		expected   float64
	}{
		{
			name:       "shared reference",
			prevIssues: []int{1234, 1250},
			nextIssues: []int{1234},
			expected:   1.0,
		},
		{
			name:       "unshared reference on reopen",
			prevIssues: []int{1234},
			nextIssues: []int{9999},
			expected:   0.25,
		},
		{
			name:       "reference only on original episode",
			prevIssues: []int{1234},
			expected:   0.0,
		},
		{
			name:     "no references at all",
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next := episodePair(time.Hour)
			for _, issue := range tt.prevIssues {
				prev.addIssue(schema.RunEvent{Issue: issue})
			}
			for _, issue := range tt.nextIssues {
				next.addIssue(schema.RunEvent{Issue: issue})
			}
			assert.Equal(t, tt.expected, linkageSignal(prev, next))
		})
	}
}

// TestIsolationSignal verifies commit-count scaling and the neutral fallback.
func TestIsolationSignal(t *testing.T) {
	cfg := schema.DefaultDetectorConfig()
	cfg.MaxIntervening = 20
	ctx := context.Background()

	commits := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "abc"
		}
		return out
	}

	t.Run("no scanner is neutral", func(t *testing.T) {
		d := NewDetector(cfg, nil, "/repo")
		prev, next := episodePair(time.Hour)
		assert.Equal(t, 0.5, d.isolationSignal(ctx, detectTest, prev, next))
	})

	t.Run("no repo path is neutral", func(t *testing.T) {
		d := NewDetector(cfg, &contract.MockRepoScanner{}, "")
		prev, next := episodePair(time.Hour)
		assert.Equal(t, 0.5, d.isolationSignal(ctx, detectTest, prev, next))
	})

	t.Run("scanner error is neutral", func(t *testing.T) {
		scanner := &contract.MockRepoScanner{}
		scanner.On("CommitsTouching", ctx, "/repo", detectTest.Package, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(nil, assert.AnError)
		d := NewDetector(cfg, scanner, "/repo")
		prev, next := episodePair(time.Hour)
		assert.Equal(t, 0.5, d.isolationSignal(ctx, detectTest, prev, next))
		scanner.AssertExpectations(t)
	})

	t.Run("zero intervening commits score full", func(t *testing.T) {
		scanner := &contract.MockRepoScanner{}
		scanner.On("CommitsTouching", ctx, "/repo", detectTest.Package, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return([]string{}, nil)
		d := NewDetector(cfg, scanner, "/repo")
		prev, next := episodePair(time.Hour)
		assert.Equal(t, 1.0, d.isolationSignal(ctx, detectTest, prev, next))
	})

	t.Run("half saturation scores half", func(t *testing.T) {
		scanner := &contract.MockRepoScanner{}
		scanner.On("CommitsTouching", ctx, "/repo", detectTest.Package, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(commits(10), nil)
		d := NewDetector(cfg, scanner, "/repo")
		prev, next := episodePair(time.Hour)
		assert.InDelta(t, 0.5, d.isolationSignal(ctx, detectTest, prev, next), 0.001)
	})

	t.Run("saturated commit count scores zero", func(t *testing.T) {
		scanner := &contract.MockRepoScanner{}
		scanner.On("CommitsTouching", ctx, "/repo", detectTest.Package, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(commits(40), nil)
		d := NewDetector(cfg, scanner, "/repo")
		prev, next := episodePair(time.Hour)
		assert.Equal(t, 0.0, d.isolationSignal(ctx, detectTest, prev, next))
	})
}

// TestScoreCycle verifies the weighted combination and its determinism.
func TestScoreCycle(t *testing.T) {
	d := NewDetector(schema.DefaultDetectorConfig(), nil, "")
	prev, next := episodePair(time.Hour)
	prev.addIssue(schema.RunEvent{Issue: 1234})
	next.addIssue(schema.RunEvent{Issue: 1234})

	confidence, breakdown := d.scoreCycle(context.Background(), detectTest, prev, next)

	assert.True(t, confidence >= 0 && confidence <= 1)
	assert.Len(t, breakdown, 3)
	assert.Contains(t, breakdown, schema.SignalRecency)
	assert.Contains(t, breakdown, schema.SignalLinkage)
	assert.Contains(t, breakdown, schema.SignalIsolation)

	// Equal default weights: confidence is the mean of the raw signals.
	sum := breakdown[schema.SignalRecency] + breakdown[schema.SignalLinkage] + breakdown[schema.SignalIsolation]
	assert.InDelta(t, sum/3, confidence, 0.001)

	for range 10 {
		again, _ := d.scoreCycle(context.Background(), detectTest, prev, next)
		assert.Equal(t, confidence, again)
	}
}

// TestScoreCycleWeighting verifies a skewed weight shifts the result.
func TestScoreCycleWeighting(t *testing.T) {
	prev, next := episodePair(time.Hour)
	next.addIssue(schema.RunEvent{Issue: 9999})

	even := NewDetector(schema.DefaultDetectorConfig(), nil, "")
	cfg := schema.DefaultDetectorConfig()
	cfg.Weights = schema.SignalWeights{Recency: 10, Linkage: 1, Isolation: 1}
	skewed := NewDetector(cfg, nil, "")

	evenScore, _ := even.scoreCycle(context.Background(), detectTest, prev, next)
	skewedScore, _ := skewed.scoreCycle(context.Background(), detectTest, prev, next)

	// Recency is near 1 for a one-hour gap, so weighting it up must raise
	// the combined confidence.
	assert.Greater(t, skewedScore, evenScore)
}

package schema

import "time"

// Detector defaults. Replace ambient/global tuning with explicit values
// handed to the detector at construction.
const (
	DefaultPassStreak     = 2                   // Consecutive passes that confirm a recovery
	DefaultRecencyWindow  = 30 * 24 * time.Hour // Reopen gap considered "fast"
	DefaultMaxIntervening = 20                  // Unrelated commits beyond this saturate isolation to 0
)

// SignalWeights holds the relative weight of each confidence signal.
// Equal weighting is the documented default.
type SignalWeights struct {
	Recency   float64 `mapstructure:"recency"`
	Linkage   float64 `mapstructure:"linkage"`
	Isolation float64 `mapstructure:"isolation"`
}

// Total returns the weight normalizer.
func (w SignalWeights) Total() float64 {
	return w.Recency + w.Linkage + w.Isolation
}

// DefaultSignalWeights returns the equal-weighted default.
func DefaultSignalWeights() SignalWeights {
	return SignalWeights{Recency: 1, Linkage: 1, Isolation: 1}
}

// DetectorConfig tunes the boomerang state machine and confidence scoring.
// Shared by reference across detection workers; read-only after validation.
type DetectorConfig struct {
	PassStreak     int           // Consecutive passes required to confirm recovery
	RecencyWindow  time.Duration // Window within which a reopen is strong evidence
	MaxIntervening int           // Saturation point for unrelated intervening commits
	Weights        SignalWeights
}

// DefaultDetectorConfig returns the documented defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		PassStreak:     DefaultPassStreak,
		RecencyWindow:  DefaultRecencyWindow,
		MaxIntervening: DefaultMaxIntervening,
		Weights:        DefaultSignalWeights(),
	}
}

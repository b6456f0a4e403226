// Package schema has configs, models and shared types for all parts of deeprepo.
package schema

import "time"

// TestID is a stable key identifying one logical test across CI revisions.
// It combines the owning package (or resource path) with the test name and
// is never mutated after normalization.
type TestID struct {
	Package string // Package or resource path that owns the test
	Name    string // Test function name, e.g. TestAccComputeInstance_basic
}

// String returns the canonical "package/name" form used for grouping and sorting.
func (id TestID) String() string {
	if id.Package == "" {
		return id.Name
	}
	return id.Package + "/" + id.Name
}

// IsZero reports whether the identifier carries no information.
func (id TestID) IsZero() bool {
	return id.Package == "" && id.Name == ""
}

// RawRecord is one heterogeneous input record before normalization.
// CI run records carry an Outcome; issue events carry an Action instead.
// The feed loader tags each record with its Source and ingestion Seq.
type RawRecord struct {
	Source    SourceKind `json:"source"`
	Package   string     `json:"package"`
	TestName  string     `json:"test_name"`
	Outcome   string     `json:"outcome,omitempty"`
	Action    string     `json:"action,omitempty"`
	Timestamp string     `json:"timestamp"`
	Revision  string     `json:"revision,omitempty"`
	Issue     int        `json:"issue,omitempty"`
	Seq       int        `json:"-"`
}

// RunEvent is one normalized observation for a test. Immutable; created
// during normalization and never mutated afterwards.
type RunEvent struct {
	Test      TestID     `json:"test"`
	Timestamp time.Time  `json:"timestamp"`
	Outcome   Outcome    `json:"outcome"`
	Source    SourceKind `json:"source"`
	Revision  string     `json:"revision,omitempty"`
	Issue     int        `json:"issue,omitempty"` // Linked issue/PR number, 0 if none
	Seq       int        `json:"-"`               // Ingestion order, used only as a sort tie-break
}

// Timeline is the ordered event history for a single test, sorted by
// timestamp ascending. Owned by the timeline builder's output set and
// read-only afterwards.
type Timeline struct {
	Test   TestID
	Events []RunEvent
}

// BoomerangCycle is a detected fail -> confirmed recovery -> fail recurrence
// for one test. The three reference events always satisfy
// Open.Timestamp < Resolve.Timestamp < Reopen.Timestamp.
type BoomerangCycle struct {
	Test       TestID                `json:"test"`
	Open       RunEvent              `json:"open"`    // Failure that opened the original episode
	Resolve    RunEvent              `json:"resolve"` // Pass that confirmed the recovery streak
	Reopen     RunEvent              `json:"reopen"`  // Failure after the confirmed recovery
	Confidence float64               `json:"confidence"`
	Breakdown  map[SignalKey]float64 `json:"breakdown,omitempty"` // Weighted signal contributions
}

// PersistentFailure is a test that fails repeatedly without any confirmed
// intervening recovery. A distinct, non-boomerang category.
type PersistentFailure struct {
	Test     TestID   `json:"test"`
	First    RunEvent `json:"first"` // First failure of the unresolved episode
	Last     RunEvent `json:"last"`  // Most recent failure observed
	Failures int      `json:"failures"`
}

// Finding is one ranked result exposed to report renderers.
type Finding struct {
	Test        TestID                `json:"test"`
	Category    Category              `json:"category"`
	Confidence  float64               `json:"confidence"`
	Recurrences int                   `json:"recurrences"` // Deduplicated cycle count for this test
	Events      []RunEvent            `json:"events"`      // Supporting event references
	Breakdown   map[SignalKey]float64 `json:"breakdown,omitempty"`
}

// Diagnostics summarizes skipped input so partial data never silently
// disappears from a report.
type Diagnostics struct {
	RawRecords       int      `json:"raw_records"`
	MalformedRecords int      `json:"malformed_records"`
	SkippedTests     int      `json:"skipped_tests"` // Tests dropped due to invariant violations
	SparseTests      int      `json:"sparse_tests"`  // Tests with fewer than 3 events
	Warnings         []string `json:"warnings,omitempty"`
}

// AnalysisOutput bundles the ranked findings with diagnostics.
type AnalysisOutput struct {
	Findings    []Finding
	Diagnostics Diagnostics
}

// StoreStatus describes the state of a persistence store backend.
type StoreStatus struct {
	Backend  DatabaseBackend `json:"backend"`
	Location string          `json:"location,omitempty"` // File path or connection target
	Entries  int64           `json:"entries"`
	Enabled  bool            `json:"enabled"`
}

// IssueRecord is one closed-issue record consumed by the quality analysis.
type IssueRecord struct {
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	CreatedAt      time.Time `json:"created_at"`
	ClosedAt       time.Time `json:"closed_at"`
	Comments       int       `json:"comments"`
	FirstCommentAt time.Time `json:"first_comment_at,omitzero"`
	Reactions      int       `json:"reactions"`
	Labels         []string  `json:"labels,omitempty"`
	IsPull         bool      `json:"is_pull,omitempty"`
}

// IssueStat is one entry in a quality top-N list.
type IssueStat struct {
	Number int           `json:"number"`
	Title  string        `json:"title"`
	URL    string        `json:"url"`
	Value  time.Duration `json:"value,omitempty"` // Resolution or first-response time
	Count  int           `json:"count,omitempty"` // Comments or reactions
}

// QualityReport aggregates closed-issue quality statistics.
type QualityReport struct {
	Analyzed         int           `json:"analyzed"`
	AvgResolution    time.Duration `json:"avg_resolution"`
	AvgFirstResponse time.Duration `json:"avg_first_response"`
	AvgComments      float64       `json:"avg_comments"`
	AvgReactions     float64       `json:"avg_reactions"`
	SlowestResolved  []IssueStat   `json:"slowest_resolved"`
	SlowestResponse  []IssueStat   `json:"slowest_response"`
	MostCommented    []IssueStat   `json:"most_commented"`
	MostEngaging     []IssueStat   `json:"most_engaging"`
}

// RunRecord is one stored analysis run row retrieved from the history store.
type RunRecord struct {
	RunID         int64      `json:"run_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	RunDurationMs *int32     `json:"run_duration_ms,omitempty"`
	TotalFindings int32      `json:"total_findings"`
	ConfigParams  *string    `json:"config_params,omitempty"`
}

// FindingRecord is one stored finding row tied to an analysis run.
type FindingRecord struct {
	RunID       int64     `json:"run_id"`
	Package     string    `json:"package"`
	TestName    string    `json:"test_name"`
	Category    string    `json:"category"`
	Confidence  float64   `json:"confidence"`
	Recurrences int32     `json:"recurrences"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// TodoLine is a single TODO occurrence inside a resource file.
type TodoLine struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// TodoFile groups the TODO occurrences of one resource file.
type TodoFile struct {
	Path    string     `json:"path"`
	Matches []TodoLine `json:"matches"`
}

// TodoReport summarizes the technical-debt scan of generated resources.
type TodoReport struct {
	ScannedFiles int        `json:"scanned_files"`
	HeadCommit   string     `json:"head_commit,omitempty"`
	Files        []TodoFile `json:"files"`
}

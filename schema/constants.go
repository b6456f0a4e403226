package schema

// Custom string types for type safety.
type (
	// Outcome represents the result of a single test observation.
	Outcome string

	// SourceKind represents where a raw record came from.
	SourceKind string

	// Category represents the classification of a ranked finding.
	Category string

	// SignalKey represents keys used in confidence breakdowns.
	SignalKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// All outcomes supported.
const (
	PassOutcome    Outcome = "pass"
	FailOutcome    Outcome = "fail"
	ErrorOutcome   Outcome = "error"
	SkippedOutcome Outcome = "skipped"
)

// IsFailure reports whether the outcome counts as a failure observation.
func (o Outcome) IsFailure() bool {
	return o == FailOutcome || o == ErrorOutcome
}

// All record sources supported.
const (
	CIRunSource      SourceKind = "ci_run"
	IssueEventSource SourceKind = "issue_event"
)

// Priority returns the tie-break rank for events sharing a timestamp.
// CI results order before issue events.
func (s SourceKind) Priority() int {
	if s == CIRunSource {
		return 0
	}
	return 1
}

// All finding categories supported.
const (
	BoomerangCategory         Category = "boomerang"
	PersistentFailureCategory Category = "persistent-failure"
)

// Signal keys used in the confidence scoring logic.
const (
	SignalRecency   SignalKey = "recency"   // Fast recurrence after recovery
	SignalLinkage   SignalKey = "linkage"   // Shared issue/PR references
	SignalIsolation SignalKey = "isolation" // Few unrelated commits in between
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All persistence backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

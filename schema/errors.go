package schema

import (
	"errors"
	"fmt"
)

// ErrEmptyInput signals that the entire input set was empty and there is
// nothing to analyze. Fatal for a single invocation.
var ErrEmptyInput = errors.New("input set is empty, nothing to analyze")

// MalformedRecordError marks one raw record that could not be normalized.
// Recoverable: counted and skipped, never fatal for the batch.
type MalformedRecordError struct {
	Seq    int    // Ingestion position of the offending record
	Reason string // Why the record was rejected
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at position %d: %s", e.Seq, e.Reason)
}

// InvariantViolationError marks a timeline that broke an ordering or
// structural invariant. Recoverable per test: that test's result is skipped
// and the batch continues.
type InvariantViolationError struct {
	Test   TestID
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation for %s: %s", e.Test, e.Reason)
}

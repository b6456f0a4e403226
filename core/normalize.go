// Package core has the boomerang correlation pipeline: normalization,
// timeline building, detection and ranking.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/nkaminski/deeprepo/schema"
)

// Issue actions accepted from issue-event records and their mapped outcomes.
// Opening or reopening a failing-test issue is failure evidence; closing it
// is resolution evidence.
var issueActionOutcomes = map[string]schema.Outcome{
	"opened":   schema.FailOutcome,
	"reopened": schema.FailOutcome,
	"closed":   schema.PassOutcome,
}

// NormalizeRecords converts raw heterogeneous records into RunEvents.
// Each record produces zero or one event. A record missing a timestamp, a
// test identifier, or carrying an unrecognized outcome is rejected as a
// MalformedRecordError, collected but never fatal; processing continues
// with the remaining records. Pure mapping pass with no other side effects.
func NormalizeRecords(records []schema.RawRecord) ([]schema.RunEvent, []error) {
	events := make([]schema.RunEvent, 0, len(records))
	var malformed []error

	for _, rec := range records {
		event, err := normalizeRecord(rec)
		if err != nil {
			malformed = append(malformed, err)
			continue
		}
		events = append(events, event)
	}

	return events, malformed
}

// normalizeRecord maps a single raw record to a RunEvent or rejects it.
func normalizeRecord(rec schema.RawRecord) (schema.RunEvent, error) {
	if rec.TestName == "" {
		return schema.RunEvent{}, &schema.MalformedRecordError{Seq: rec.Seq, Reason: "missing test identifier"}
	}
	if rec.Timestamp == "" {
		return schema.RunEvent{}, &schema.MalformedRecordError{Seq: rec.Seq, Reason: "missing timestamp"}
	}

	ts, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return schema.RunEvent{}, &schema.MalformedRecordError{
			Seq:    rec.Seq,
			Reason: fmt.Sprintf("unparseable timestamp %q", rec.Timestamp),
		}
	}

	var outcome schema.Outcome
	switch rec.Source {
	case schema.CIRunSource:
		outcome = schema.Outcome(strings.ToLower(rec.Outcome))
		switch outcome {
		case schema.PassOutcome, schema.FailOutcome, schema.ErrorOutcome, schema.SkippedOutcome:
		default:
			return schema.RunEvent{}, &schema.MalformedRecordError{
				Seq:    rec.Seq,
				Reason: fmt.Sprintf("unrecognized outcome %q", rec.Outcome),
			}
		}
	case schema.IssueEventSource:
		mapped, ok := issueActionOutcomes[strings.ToLower(rec.Action)]
		if !ok {
			return schema.RunEvent{}, &schema.MalformedRecordError{
				Seq:    rec.Seq,
				Reason: fmt.Sprintf("unrecognized issue action %q", rec.Action),
			}
		}
		outcome = mapped
	default:
		return schema.RunEvent{}, &schema.MalformedRecordError{
			Seq:    rec.Seq,
			Reason: fmt.Sprintf("unknown source %q", rec.Source),
		}
	}

	return schema.RunEvent{
		Test:      schema.TestID{Package: rec.Package, Name: rec.TestName},
		Timestamp: ts,
		Outcome:   outcome,
		Source:    rec.Source,
		Revision:  rec.Revision,
		Issue:     rec.Issue,
		Seq:       rec.Seq,
	}, nil
}

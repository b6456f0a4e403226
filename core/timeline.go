package core

import (
	"sort"

	"github.com/nkaminski/deeprepo/schema"
)

// BuildTimelines partitions RunEvents by test identifier and orders each
// group chronologically. Events sharing an identical timestamp are ordered
// by source priority (CI result before issue event), then by ingestion
// order, so timelines are reproducible across runs on the same input.
// Returns schema.ErrEmptyInput only when the entire input set is empty; a
// test with a single event still produces a valid trivial timeline.
func BuildTimelines(events []schema.RunEvent) ([]schema.Timeline, error) {
	if len(events) == 0 {
		return nil, schema.ErrEmptyInput
	}

	groups := make(map[schema.TestID][]schema.RunEvent)
	for _, ev := range events {
		groups[ev.Test] = append(groups[ev.Test], ev)
	}

	timelines := make([]schema.Timeline, 0, len(groups))
	for test, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.Before(b.Timestamp)
			}
			if a.Source.Priority() != b.Source.Priority() {
				return a.Source.Priority() < b.Source.Priority()
			}
			return a.Seq < b.Seq
		})
		timelines = append(timelines, schema.Timeline{Test: test, Events: group})
	}

	// Map iteration order is random; fix the timeline order for
	// reproducible downstream scheduling and output.
	sort.Slice(timelines, func(i, j int) bool {
		return timelines[i].Test.String() < timelines[j].Test.String()
	})

	return timelines, nil
}

package recommend

import (
	"time"

	"github.com/onnwee/gigfeed/internal/catalog"
)

// FilterEligible returns the events whose date parses validly, is not
// strictly before today, and falls inside the inclusive [from, to] window
// when bounds are supplied. Events with unparsable dates (zero Date) are
// silently excluded rather than treated as errors. The reference date is
// caller-supplied so eligibility is testable.
//
// Filtering is idempotent: re-filtering a filtered list with the same
// bounds returns the same list.
func FilterEligible(events []catalog.Event, from, to *time.Time, today time.Time) []catalog.Event {
	today = truncateToDay(today)

	out := make([]catalog.Event, 0, len(events))
	for _, ev := range events {
		d := ev.Date
		if d.IsZero() {
			continue
		}
		d = truncateToDay(d)

		if d.Before(today) {
			continue
		}
		if from != nil && d.Before(truncateToDay(*from)) {
			continue
		}
		if to != nil && d.After(truncateToDay(*to)) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// truncateToDay drops any time-of-day component so comparisons operate on
// calendar dates.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

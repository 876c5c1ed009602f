package calendar

import (
	"time"

	"github.com/emersion/go-ical"
)

// Filter returns the events intersecting the time range [start, end). A zero
// start or end leaves the range open on that side.
func Filter(events []*ical.Event, start, end time.Time) ([]*ical.Event, error) {
	if start.IsZero() && end.IsZero() {
		return events, nil
	}

	var out []*ical.Event
	for _, ev := range events {
		ok, err := MatchTimeRange(ev, start, end)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

// MatchTimeRange reports whether an event intersects the time range
// [start, end), following RFC 4791 section 9.9.
func MatchTimeRange(ev *ical.Event, start, end time.Time) (bool, error) {
	eventStart, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		return false, err
	}
	eventEnd, err := ev.DateTimeEnd(time.UTC)
	if err != nil {
		return false, err
	}
	zeroDuration := eventStart.Equal(eventEnd)

	// an event without duration matches if it starts within the range
	startsBeforeEnd := end.IsZero() || eventStart.Before(end)
	endsAfterStart := start.IsZero() || eventEnd.After(start) || (zeroDuration && !eventEnd.Before(start))
	return startsBeforeEnd && endsAfterStart, nil
}

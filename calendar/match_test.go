package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
)

var dateFormat = "20060102T150405Z"

func toDate(t *testing.T, date string) time.Time {
	res, err := time.ParseInLocation(dateFormat, date, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func newEvent(t *testing.T, props string) *ical.Event {
	cal, err := ical.NewDecoder(strings.NewReader(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Example Corp.//CalDAV Client//EN
BEGIN:VEVENT
DTSTAMP:20060206T001102Z
` + props + `
END:VEVENT
END:VCALENDAR
`)).Decode()
	if err != nil {
		t.Fatal(err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("got %v events, want 1", len(events))
	}
	return &events[0]
}

func TestFilter(t *testing.T) {
	event1 := newEvent(t, `UID:event1@example.com
DTSTART:20060102T150000Z
DURATION:PT1H
SUMMARY:Event #1`)
	event2 := newEvent(t, `UID:event2@example.com
DTSTART:20060104T140000Z
DTEND:20060104T150000Z
SUMMARY:Event #2`)
	event3 := newEvent(t, `UID:event3@example.com
DTSTART;VALUE=DATE:20060104
DTEND;VALUE=DATE:20060105
SUMMARY:Event #3`)
	reminder := newEvent(t, `UID:reminder@example.com
DTSTART:20060106T120000Z
DTEND:20060106T120000Z
SUMMARY:Reminder`)
	events := []*ical.Event{event1, event2, event3, reminder}

	for _, tc := range []struct {
		name       string
		start, end time.Time
		want       []*ical.Event
	}{
		{"unbounded", time.Time{}, time.Time{}, events},
		{"all", toDate(t, "20060101T000000Z"), toDate(t, "20060201T000000Z"), events},
		{"first day", toDate(t, "20060102T000000Z"), toDate(t, "20060103T000000Z"), []*ical.Event{event1}},
		{"ends at start", toDate(t, "20060102T160000Z"), toDate(t, "20060103T000000Z"), nil},
		{"starts at end", toDate(t, "20060104T000000Z"), toDate(t, "20060104T140000Z"), []*ical.Event{event3}},
		{"all day", toDate(t, "20060104T200000Z"), toDate(t, "20060105T000000Z"), []*ical.Event{event3}},
		{"open end", toDate(t, "20060104T143000Z"), time.Time{}, []*ical.Event{event2, event3, reminder}},
		{"open start", time.Time{}, toDate(t, "20060103T000000Z"), []*ical.Event{event1}},
		{"instant at start", toDate(t, "20060106T120000Z"), toDate(t, "20060107T000000Z"), []*ical.Event{reminder}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Filter(events, tc.start, tc.end)
			if err != nil {
				t.Fatalf("Filter() = %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("Filter() returned %v events, want %v", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					uid, _ := got[i].Props.Text(ical.PropUID)
					t.Errorf("Filter()[%v] = %v", i, uid)
				}
			}
		})
	}
}

func TestMatchTimeRange_invalid(t *testing.T) {
	ev := newEvent(t, `UID:broken@example.com
DTSTART:tomorrow`)
	if _, err := MatchTimeRange(ev, toDate(t, "20060101T000000Z"), time.Time{}); err == nil {
		t.Errorf("MatchTimeRange() succeeded with an invalid DTSTART")
	}
}

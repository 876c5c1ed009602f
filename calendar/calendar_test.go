package calendar

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"github.com/emersion/go-ews"
)

func newCalendarItem() *ews.CalendarItem {
	ci := ews.NewCalendarItem(nil)
	ci.SetUID("040000008200E00074C5B7101A82E008")
	ci.SetSubject("Planning")
	ci.SetLocation("Room 4")
	ci.SetBody(ews.NewTextBody("Quarterly planning"))
	ci.SetCategories("Work", "A,B")
	ci.SetStart(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC))
	ci.SetEnd(time.Date(2024, 3, 11, 10, 30, 0, 0, time.UTC))
	ci.SetLegacyFreeBusyStatus(ews.FreeBusyTentative)
	ci.SetSensitivity(ews.SensitivityPrivate)

	required := &ews.AttendeeCollection{}
	required.Add("Bob", "bob@example.org")
	ci.SetRequiredAttendees(required)
	optional := &ews.AttendeeCollection{}
	optional.Add("", "carol@example.org").ResponseType = ews.ResponseAccept
	ci.SetOptionalAttendees(optional)
	return ci
}

func propText(t *testing.T, ev *ical.Event, name string) string {
	t.Helper()
	s, err := ev.Props.Text(name)
	if err != nil {
		t.Fatalf("Props.Text(%v) = %v", name, err)
	}
	return s
}

func TestToEvent(t *testing.T) {
	ev, err := ToEvent(newCalendarItem())
	if err != nil {
		t.Fatalf("ToEvent() = %v", err)
	}

	for name, want := range map[string]string{
		ical.PropUID:          "040000008200E00074C5B7101A82E008",
		ical.PropSummary:      "Planning",
		ical.PropLocation:     "Room 4",
		ical.PropDescription:  "Quarterly planning",
		ical.PropStatus:       "TENTATIVE",
		ical.PropTransparency: "OPAQUE",
		ical.PropClass:        "PRIVATE",
	} {
		if got := propText(t, ev, name); got != want {
			t.Errorf("%v = %q, want %q", name, got, want)
		}
	}

	if prop := ev.Props.Get(ical.PropCategories); prop == nil || prop.Value != `Work,A\,B` {
		t.Errorf("CATEGORIES = %v", prop)
	}

	start, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		t.Fatalf("DateTimeStart() = %v", err)
	}
	end, err := ev.DateTimeEnd(time.UTC)
	if err != nil {
		t.Fatalf("DateTimeEnd() = %v", err)
	}
	if !start.Equal(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)) || end.Sub(start) != 90*time.Minute {
		t.Errorf("DateTimeStart() = %v, DateTimeEnd() = %v", start, end)
	}

	attendees := ev.Props.Values(ical.PropAttendee)
	if len(attendees) != 2 {
		t.Fatalf("got %v attendees, want 2", len(attendees))
	}
	bob := attendees[0]
	if bob.Value != "mailto:bob@example.org" || bob.Params.Get(ical.ParamCommonName) != "Bob" {
		t.Errorf("ATTENDEE = %v %v", bob.Value, bob.Params)
	}
	if got := bob.Params.Get(ical.ParamRole); got != "REQ-PARTICIPANT" {
		t.Errorf("ROLE = %v", got)
	}
	if got := bob.Params.Get(ical.ParamParticipationStatus); got != "NEEDS-ACTION" {
		t.Errorf("PARTSTAT = %v", got)
	}
	carol := attendees[1]
	if carol.Params.Get(ical.ParamRole) != "OPT-PARTICIPANT" || carol.Params.Get(ical.ParamParticipationStatus) != "ACCEPTED" {
		t.Errorf("ATTENDEE = %v %v", carol.Value, carol.Params)
	}
	if carol.Params.Get(ical.ParamCommonName) != "" {
		t.Errorf("unexpected CN for attendee without name")
	}
}

func TestToEvent_missingFields(t *testing.T) {
	ci := ews.NewCalendarItem(nil)
	ci.SetStart(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC))
	if _, err := ToEvent(ci); err == nil {
		t.Errorf("ToEvent() succeeded for an item without UID nor id")
	}

	noStart := ews.NewCalendarItem(nil)
	noStart.SetUID("uid")
	if _, err := ToEvent(noStart); err == nil {
		t.Errorf("ToEvent() succeeded for an item without start")
	}

	ci.SetUID("uid")
	ev, err := ToEvent(ci)
	if err != nil {
		t.Fatalf("ToEvent() = %v", err)
	}
	if got := propText(t, ev, ical.PropStatus); got != "CONFIRMED" {
		t.Errorf("STATUS = %v, want CONFIRMED", got)
	}
	if got := propText(t, ev, ical.PropClass); got != "PUBLIC" {
		t.Errorf("CLASS = %v, want PUBLIC", got)
	}
	if ev.Props.Get(ical.PropDateTimeEnd) != nil {
		t.Errorf("DTEND set for an item without end")
	}
}

func TestToEvent_free(t *testing.T) {
	ci := newCalendarItem()
	ci.SetLegacyFreeBusyStatus(ews.FreeBusyFree)
	ev, err := ToEvent(ci)
	if err != nil {
		t.Fatalf("ToEvent() = %v", err)
	}
	if got := propText(t, ev, ical.PropTransparency); got != "TRANSPARENT" {
		t.Errorf("TRANSP = %v, want TRANSPARENT", got)
	}
	if got := propText(t, ev, ical.PropStatus); got != "CONFIRMED" {
		t.Errorf("STATUS = %v, want CONFIRMED", got)
	}
}

func TestFromEvent_roundTrip(t *testing.T) {
	ev, err := ToEvent(newCalendarItem())
	if err != nil {
		t.Fatalf("ToEvent() = %v", err)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(NewCalendar(ev)); err != nil {
		t.Fatalf("Encode() = %v", err)
	}
	cal, err := ical.NewDecoder(&buf).Decode()
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("got %v events, want 1", len(events))
	}

	ci, err := FromEvent(nil, &events[0])
	if err != nil {
		t.Fatalf("FromEvent() = %v", err)
	}
	if ci.UID() != "040000008200E00074C5B7101A82E008" || ci.Subject() != "Planning" || ci.Location() != "Room 4" {
		t.Errorf("FromEvent() = %q, %q, %q", ci.UID(), ci.Subject(), ci.Location())
	}
	if ci.Body() == nil || ci.Body().Content != "Quarterly planning" {
		t.Errorf("Body() = %v", ci.Body())
	}
	if !reflect.DeepEqual(ci.Categories().Items(), []string{"Work", "A,B"}) {
		t.Errorf("Categories() = %v", ci.Categories().Items())
	}
	if !ci.Start().Equal(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)) || ci.Duration() != 90*time.Minute {
		t.Errorf("Start() = %v, Duration() = %v", ci.Start(), ci.Duration())
	}
	if ci.LegacyFreeBusyStatus() != ews.FreeBusyTentative {
		t.Errorf("LegacyFreeBusyStatus() = %v", ci.LegacyFreeBusyStatus())
	}
	if ci.IsAllDayEvent() {
		t.Errorf("IsAllDayEvent() = true")
	}

	if l := ci.RequiredAttendees().Items(); len(l) != 1 || l[0].Mailbox.Address != "bob@example.org" || l[0].Mailbox.Name != "Bob" {
		t.Errorf("RequiredAttendees() = %v", l)
	}
	if l := ci.OptionalAttendees().Items(); len(l) != 1 || l[0].Mailbox.Address != "carol@example.org" {
		t.Errorf("OptionalAttendees() = %v", l)
	}
	if !ci.Properties().IsDirty() {
		t.Errorf("converted item has no changes to send")
	}
}

func TestFromEvent_allDay(t *testing.T) {
	cal, err := ical.NewDecoder(strings.NewReader(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Example Corp.//CalDAV Client//EN
BEGIN:VEVENT
UID:holiday@example.com
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20240704
DTEND;VALUE=DATE:20240705
SUMMARY:Holiday
TRANSP:TRANSPARENT
END:VEVENT
END:VCALENDAR
`)).Decode()
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	events := cal.Events()

	ci, err := FromEvent(nil, &events[0])
	if err != nil {
		t.Fatalf("FromEvent() = %v", err)
	}
	if !ci.IsAllDayEvent() {
		t.Errorf("IsAllDayEvent() = false")
	}
	if ci.Duration() != 24*time.Hour {
		t.Errorf("Duration() = %v", ci.Duration())
	}
	if ci.LegacyFreeBusyStatus() != ews.FreeBusyFree {
		t.Errorf("LegacyFreeBusyStatus() = %v", ci.LegacyFreeBusyStatus())
	}

	ev, err := ToEvent(ci)
	if err != nil {
		t.Fatalf("ToEvent() = %v", err)
	}
	if prop := ev.Props.Get(ical.PropDateTimeStart); prop.ValueType() != ical.ValueDate || prop.Value != "20240704" {
		t.Errorf("DTSTART = %v", prop)
	}
}

func TestFromEvent_invalid(t *testing.T) {
	todo := ical.NewComponent(ical.CompToDo)
	if _, err := FromEvent(nil, &ical.Event{Component: todo}); err == nil {
		t.Errorf("FromEvent() succeeded for a VTODO")
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, "no-start")
	if _, err := FromEvent(nil, ev); err == nil {
		t.Errorf("FromEvent() succeeded for an event without start")
	}

	ev.Props.SetDateTime(ical.PropDateTimeStart, time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC))
	ev.Props.SetDateTime(ical.PropDateTimeEnd, time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC))
	if _, err := FromEvent(nil, ev); !ews.IsKind(err, ews.ErrKindInvalidValue) {
		t.Errorf("FromEvent() = %v, want an invalid value error", err)
	}
}

func TestTextList(t *testing.T) {
	l := []string{"a", `b,c`, `d;e\f`, "g\nh"}
	s := formatTextList(l)
	if want := `a,b\,c,d\;e\\f,g\nh`; s != want {
		t.Errorf("formatTextList() = %q, want %q", s, want)
	}
	if got := parseTextList(s); !reflect.DeepEqual(got, l) {
		t.Errorf("parseTextList() = %q, want %q", got, l)
	}
}

// Package calendar converts EWS calendar items to and from iCalendar events.
//
// iCalendar is defined in RFC 5545.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/emersion/go-ews"
)

const productID = "-//emersion//go-ews//EN"

// NewCalendar wraps events in a VCALENDAR.
func NewCalendar(events ...*ical.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	for _, ev := range events {
		cal.Children = append(cal.Children, ev.Component)
	}
	return cal
}

// ToEvent converts a calendar item to a VEVENT.
func ToEvent(ci *ews.CalendarItem) (*ical.Event, error) {
	uid := ci.UID()
	if uid == "" {
		if id := ci.ID(); id != nil {
			uid = id.ID
		}
	}
	if uid == "" {
		return nil, fmt.Errorf("calendar: item has neither UID nor id")
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp(ci))

	start, end := ci.Start(), ci.End()
	if start.IsZero() {
		return nil, fmt.Errorf("calendar: item %q has no start time", uid)
	}
	if ci.IsAllDayEvent() {
		ev.Props.SetDate(ical.PropDateTimeStart, start)
		if !end.IsZero() {
			ev.Props.SetDate(ical.PropDateTimeEnd, end)
		}
	} else {
		ev.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		if !end.IsZero() {
			ev.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
		}
	}

	if s := ci.Subject(); s != "" {
		ev.Props.SetText(ical.PropSummary, s)
	}
	if s := ci.Location(); s != "" {
		ev.Props.SetText(ical.PropLocation, s)
	}
	if body := ci.Body(); body != nil && body.Content != "" {
		ev.Props.SetText(ical.PropDescription, body.Content)
	}
	if cats := ci.Categories(); cats != nil && !cats.IsEmpty() {
		prop := ical.NewProp(ical.PropCategories)
		prop.Value = formatTextList(cats.Items())
		ev.Props.Set(prop)
	}

	ev.Props.SetText(ical.PropStatus, status(ci))
	if hasFreeBusyStatus(ci) && ci.LegacyFreeBusyStatus() == ews.FreeBusyFree {
		ev.Props.SetText(ical.PropTransparency, "TRANSPARENT")
	} else {
		ev.Props.SetText(ical.PropTransparency, "OPAQUE")
	}
	ev.Props.SetText(ical.PropClass, class(ci.Sensitivity()))

	if org := ci.Organizer(); org != nil && org.Address != "" {
		ev.Props.Set(mailboxProp(ical.PropOrganizer, org))
	}
	addAttendees(ev, ci.RequiredAttendees(), "REQ-PARTICIPANT")
	addAttendees(ev, ci.OptionalAttendees(), "OPT-PARTICIPANT")

	return ev, nil
}

func stamp(ci *ews.CalendarItem) time.Time {
	if t := ci.LastModifiedTime(); !t.IsZero() {
		return t.UTC()
	}
	if t := ci.DateTimeCreated(); !t.IsZero() {
		return t.UTC()
	}
	return time.Now().UTC()
}

// FreeBusyFree is the zero value.
func hasFreeBusyStatus(ci *ews.CalendarItem) bool {
	return ci.Properties().Contains(ews.PropAppointmentLegacyFreeBusyStatus)
}

func status(ci *ews.CalendarItem) string {
	switch {
	case ci.IsCancelled():
		return "CANCELLED"
	case hasFreeBusyStatus(ci) && ci.LegacyFreeBusyStatus() == ews.FreeBusyTentative:
		return "TENTATIVE"
	}
	return "CONFIRMED"
}

func class(s ews.Sensitivity) string {
	switch s {
	case ews.SensitivityPrivate, ews.SensitivityPersonal:
		return "PRIVATE"
	case ews.SensitivityConfidential:
		return "CONFIDENTIAL"
	}
	return "PUBLIC"
}

func mailboxProp(name string, addr *ews.EmailAddress) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = "mailto:" + addr.Address
	if addr.Name != "" {
		prop.Params.Set(ical.ParamCommonName, addr.Name)
	}
	return prop
}

var partStats = map[ews.ResponseType]string{
	ews.ResponseAccept:             "ACCEPTED",
	ews.ResponseDecline:            "DECLINED",
	ews.ResponseTentative:          "TENTATIVE",
	ews.ResponseNoResponseReceived: "NEEDS-ACTION",
	ews.ResponseUnknown:            "NEEDS-ACTION",
}

func addAttendees(ev *ical.Event, c *ews.AttendeeCollection, role string) {
	if c == nil {
		return
	}
	for _, a := range c.Items() {
		if a.Mailbox.Address == "" {
			continue
		}
		prop := mailboxProp(ical.PropAttendee, &a.Mailbox)
		prop.Params.Set(ical.ParamRole, role)
		if stat, ok := partStats[a.ResponseType]; ok {
			prop.Params.Set(ical.ParamParticipationStatus, stat)
		}
		ev.Props.Add(prop)
	}
}

// FromEvent converts a VEVENT to a new calendar item bound to s. s may be
// nil.
func FromEvent(s *ews.Service, ev *ical.Event) (*ews.CalendarItem, error) {
	if ev.Name != ical.CompEvent {
		return nil, fmt.Errorf("calendar: expected %v component, got %v", ical.CompEvent, ev.Name)
	}

	ci := ews.NewCalendarItem(s)

	uid, err := ev.Props.Text(ical.PropUID)
	if err != nil {
		return nil, err
	}
	if uid != "" {
		ci.SetUID(uid)
	}

	start, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		return nil, fmt.Errorf("calendar: event %q has no start time", uid)
	}
	end, err := ev.DateTimeEnd(time.UTC)
	if err != nil {
		return nil, err
	}
	ci.SetStart(start)
	if !end.IsZero() {
		ci.SetEnd(end)
	}
	if prop := ev.Props.Get(ical.PropDateTimeStart); prop != nil && prop.ValueType() == ical.ValueDate {
		ci.SetIsAllDayEvent(true)
	}

	if summary, err := ev.Props.Text(ical.PropSummary); err != nil {
		return nil, err
	} else if summary != "" {
		ci.SetSubject(summary)
	}
	if location, err := ev.Props.Text(ical.PropLocation); err != nil {
		return nil, err
	} else if location != "" {
		ci.SetLocation(location)
	}
	if desc, err := ev.Props.Text(ical.PropDescription); err != nil {
		return nil, err
	} else if desc != "" {
		ci.SetBody(ews.NewTextBody(desc))
	}
	if prop := ev.Props.Get(ical.PropCategories); prop != nil {
		ci.SetCategories(parseTextList(prop.Value)...)
	}

	if transp, _ := ev.Props.Text(ical.PropTransparency); transp == "TRANSPARENT" {
		ci.SetLegacyFreeBusyStatus(ews.FreeBusyFree)
	} else if st, _ := ev.Props.Text(ical.PropStatus); st == "TENTATIVE" {
		ci.SetLegacyFreeBusyStatus(ews.FreeBusyTentative)
	}

	required := &ews.AttendeeCollection{}
	optional := &ews.AttendeeCollection{}
	for _, prop := range ev.Props.Values(ical.PropAttendee) {
		addr := strings.TrimPrefix(prop.Value, "mailto:")
		addr = strings.TrimPrefix(addr, "MAILTO:")
		name := prop.Params.Get(ical.ParamCommonName)
		switch prop.Params.Get(ical.ParamRole) {
		case "OPT-PARTICIPANT", "NON-PARTICIPANT":
			optional.Add(name, addr)
		default:
			required.Add(name, addr)
		}
	}
	if !required.IsEmpty() {
		ci.SetRequiredAttendees(required)
	}
	if !optional.IsEmpty() {
		ci.SetOptionalAttendees(optional)
	}

	if err := ci.Validate(); err != nil {
		return nil, err
	}
	return ci, nil
}

func formatTextList(l []string) string {
	r := strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`)
	escaped := make([]string, len(l))
	for i, s := range l {
		escaped[i] = r.Replace(s)
	}
	return strings.Join(escaped, ",")
}

func parseTextList(s string) []string {
	var (
		l   []string
		sb  strings.Builder
		esc bool
	)
	for _, c := range s {
		switch {
		case esc:
			if c == 'n' || c == 'N' {
				sb.WriteRune('\n')
			} else {
				sb.WriteRune(c)
			}
			esc = false
		case c == '\\':
			esc = true
		case c == ',':
			l = append(l, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(c)
		}
	}
	return append(l, sb.String())
}

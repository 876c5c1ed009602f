package ews

import (
	"strings"
	"time"
)

// LegacyTimeChange is a yearly switch between standard and daylight time.
type LegacyTimeChange struct {
	Bias time.Duration
	// Time is the local time of the switch, e.g. "02:00:00".
	Time string
	// DayOrder is the occurrence of DayOfWeek in Month, 5 meaning the last.
	DayOrder  int
	Month     int
	DayOfWeek DayOfWeek
}

func (tc *LegacyTimeChange) load(r *Reader, local string) error {
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "Bias":
			return readMinutes(r, &tc.Bias)
		case "Time":
			return readString(r, &tc.Time)
		case "DayOrder":
			return readParsed(r, &tc.DayOrder)
		case "Month":
			return readParsed(r, &tc.Month)
		case "DayOfWeek":
			return readParsed(r, &tc.DayOfWeek)
		}
		return nil
	})
}

// LegacyAvailabilityTimeZone is the time zone format used by availability
// responses. Biases are subtracted from local time to get UTC.
type LegacyAvailabilityTimeZone struct {
	Bias     time.Duration
	Standard LegacyTimeChange
	Daylight LegacyTimeChange
}

func (tz *LegacyAvailabilityTimeZone) load(r *Reader, local string) error {
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "Bias":
			return readMinutes(r, &tz.Bias)
		case "StandardTime":
			return tz.Standard.load(r, "StandardTime")
		case "DaylightTime":
			return tz.Daylight.load(r, "DaylightTime")
		}
		return nil
	})
}

// FixedZone returns a location with the standard offset of the time zone.
func (tz *LegacyAvailabilityTimeZone) FixedZone() *time.Location {
	offset := -(tz.Bias + tz.Standard.Bias)
	return time.FixedZone("", int(offset/time.Second))
}

func readMinutes(r *Reader, dst *time.Duration) error {
	var n int
	if err := readParsed(r, &n); err != nil {
		return err
	}
	*dst = time.Duration(n) * time.Minute
	return nil
}

// WorkingPeriod is a range of working time on a set of days.
type WorkingPeriod struct {
	DaysOfWeek []DayOfWeek
	// StartTime and EndTime are offsets from midnight.
	StartTime time.Duration
	EndTime   time.Duration
}

func (p *WorkingPeriod) load(r *Reader, local string) error {
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "DayOfWeek":
			s, err := r.ReadValue(false)
			if err != nil {
				return err
			}
			days, err := parseDaysOfWeek(s)
			if err != nil {
				return invalidValue("DayOfWeek", err)
			}
			p.DaysOfWeek = days
			return nil
		case "StartTimeInMinutes":
			return readMinutes(r, &p.StartTime)
		case "EndTimeInMinutes":
			return readMinutes(r, &p.EndTime)
		}
		return nil
	})
}

// WorkingHours are the working hours of a user, as returned by availability
// requests.
//
// DaysOfWeek, StartTime and EndTime summarize the working periods the way
// Exchange clients historically did: start and end come from the first
// period, and the days of the first period are repeated once per period.
// Periods holds every period as sent by the server.
type WorkingHours struct {
	TimeZone   LegacyAvailabilityTimeZone
	DaysOfWeek []DayOfWeek
	StartTime  time.Duration
	EndTime    time.Duration
	Periods    []WorkingPeriod
}

// LoadFromXML reads a WorkingHours element. Each working period is parsed
// from its own document by a nested reader.
func (wh *WorkingHours) LoadFromXML(r *Reader, local string) error {
	err := loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "TimeZone":
			return wh.TimeZone.load(r, "TimeZone")
		case "WorkingPeriodArray":
			return loadChildren(r, NamespaceTypes, "WorkingPeriodArray", wh.loadPeriod)
		}
		return nil
	})
	if err != nil {
		return err
	}

	wh.DaysOfWeek = nil
	if len(wh.Periods) > 0 {
		first := wh.Periods[0]
		for range wh.Periods {
			wh.DaysOfWeek = append(wh.DaysOfWeek, first.DaysOfWeek...)
		}
		wh.StartTime = first.StartTime
		wh.EndTime = first.EndTime
	}
	return nil
}

func (wh *WorkingHours) loadPeriod(r *Reader) error {
	if !r.IsStartElement(NamespaceTypes, "WorkingPeriod") {
		return nil
	}
	outer, err := r.ReadOuterXML()
	if err != nil {
		return err
	}

	nested := NewReader(strings.NewReader(outer))
	if err := nested.ReadStartElement(NamespaceTypes, "WorkingPeriod"); err != nil {
		return err
	}
	var p WorkingPeriod
	if err := p.load(nested, "WorkingPeriod"); err != nil {
		return err
	}
	wh.Periods = append(wh.Periods, p)
	return nil
}

// CalendarEvent is a busy slot returned by availability requests.
type CalendarEvent struct {
	StartTime time.Time
	EndTime   time.Time
	BusyType  FreeBusyStatus
}

func (ev *CalendarEvent) load(r *Reader, local string) error {
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "StartTime":
			return readParsed(r, &ev.StartTime)
		case "EndTime":
			return readParsed(r, &ev.EndTime)
		case "BusyType":
			return readParsed(r, &ev.BusyType)
		}
		return nil
	})
}

// Availability is the free/busy view of one attendee.
type Availability struct {
	ViewType     string
	Events       []CalendarEvent
	WorkingHours *WorkingHours
}

// LoadFromXML reads a FreeBusyView element.
func (av *Availability) LoadFromXML(r *Reader, local string) error {
	return loadChildren(r, NamespaceMessages, local, func(r *Reader) error {
		switch r.LocalName() {
		case "FreeBusyViewType":
			return readString(r, &av.ViewType)
		case "CalendarEventArray":
			return loadChildren(r, NamespaceTypes, "CalendarEventArray", func(r *Reader) error {
				if !r.IsStartElement(NamespaceTypes, "CalendarEvent") {
					return nil
				}
				var ev CalendarEvent
				if err := ev.load(r, "CalendarEvent"); err != nil {
					return err
				}
				av.Events = append(av.Events, ev)
				return nil
			})
		case "WorkingHours":
			wh := &WorkingHours{}
			if err := wh.LoadFromXML(r, "WorkingHours"); err != nil {
				return err
			}
			av.WorkingHours = wh
			return nil
		}
		return nil
	})
}

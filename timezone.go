package ews

import (
	"fmt"
	"time"
)

// TimeZonePeriod is a period of a time zone with a fixed bias, such as
// standard or daylight time. The bias is subtracted from local time to get
// UTC.
type TimeZonePeriod struct {
	ID   string
	Name string
	Bias time.Duration
}

// Offset returns the UTC offset of the period.
func (p *TimeZonePeriod) Offset() time.Duration {
	return -p.Bias
}

// TransitionKind is the kind of a time zone transition.
type TransitionKind int

const (
	// TransitionPlain applies unconditionally.
	TransitionPlain TransitionKind = iota
	// TransitionAbsoluteDate applies from a date.
	TransitionAbsoluteDate
	// TransitionRecurringDay applies every year on the nth day of week of a
	// month.
	TransitionRecurringDay
	// TransitionRecurringDate applies every year on a day of a month.
	TransitionRecurringDate
)

var transitionElementNames = []string{
	"Transition",
	"AbsoluteDateTransition",
	"RecurringDayTransition",
	"RecurringDateTransition",
}

func resolveTransitionKind(local string) (TransitionKind, bool) {
	for i, name := range transitionElementNames {
		if name == local {
			return TransitionKind(i), true
		}
	}
	return 0, false
}

// TimeZoneTransition switches a time zone to a period or a transition group.
// Exactly one of Period and Group is set.
type TimeZoneTransition struct {
	Kind   TransitionKind
	Period *TimeZonePeriod
	Group  *TimeZoneTransitionGroup

	// DateTime is set for absolute date transitions.
	DateTime time.Time
	// The fields below are set for recurring transitions. Occurrence is -1
	// for the last occurrence of a day of week in the month.
	TimeOffset time.Duration
	Month      int
	DayOfWeek  DayOfWeek
	Occurrence int
	Day        int
}

// TimeZoneTransitionGroup is a named set of transitions, typically the
// yearly switches between standard and daylight time.
type TimeZoneTransitionGroup struct {
	ID          string
	Transitions []*TimeZoneTransition
}

// TimeZoneDefinition is a time zone, as exposed by the StartTimeZone and
// EndTimeZone properties.
type TimeZoneDefinition struct {
	ID          string
	Name        string
	Periods     []*TimeZonePeriod
	Groups      []*TimeZoneTransitionGroup
	Transitions []*TimeZoneTransition
}

// NewTimeZoneDefinition references a time zone known to the server by id,
// such as "Pacific Standard Time".
func NewTimeZoneDefinition(id string) *TimeZoneDefinition {
	return &TimeZoneDefinition{ID: id}
}

// Period returns a period by id.
func (tz *TimeZoneDefinition) Period(id string) (*TimeZonePeriod, bool) {
	for _, p := range tz.Periods {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Group returns a transition group by id.
func (tz *TimeZoneDefinition) Group(id string) (*TimeZoneTransitionGroup, bool) {
	for _, g := range tz.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// StandardPeriod returns the period used outside of daylight saving time:
// the first period named "Standard", or the first period.
func (tz *TimeZoneDefinition) StandardPeriod() *TimeZonePeriod {
	for _, p := range tz.Periods {
		if p.Name == "Standard" {
			return p
		}
	}
	if len(tz.Periods) > 0 {
		return tz.Periods[0]
	}
	return nil
}

// FixedZone returns a location with the offset of the standard period. It
// returns time.UTC if the definition has no period.
func (tz *TimeZoneDefinition) FixedZone() *time.Location {
	p := tz.StandardPeriod()
	if p == nil {
		return time.UTC
	}
	return time.FixedZone(tz.ID, int(p.Offset()/time.Second))
}

func (tz *TimeZoneDefinition) LoadFromXML(r *Reader, local string) error {
	tz.ID, _ = r.ReadAttributeValue("Id")
	tz.Name, _ = r.ReadAttributeValue("Name")
	tz.Periods = nil
	tz.Groups = nil
	tz.Transitions = nil

	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "Periods":
			return loadChildren(r, NamespaceTypes, "Periods", tz.loadPeriod)
		case "TransitionsGroups":
			return loadChildren(r, NamespaceTypes, "TransitionsGroups", tz.loadGroup)
		case "Transitions":
			return loadChildren(r, NamespaceTypes, "Transitions", func(r *Reader) error {
				t, err := tz.loadTransition(r)
				if err != nil || t == nil {
					return err
				}
				tz.Transitions = append(tz.Transitions, t)
				return nil
			})
		}
		return nil
	})
}

func (tz *TimeZoneDefinition) loadPeriod(r *Reader) error {
	if !r.IsStartElement(NamespaceTypes, "Period") {
		return nil
	}
	p := &TimeZonePeriod{}
	p.ID, _ = r.ReadAttributeValue("Id")
	p.Name, _ = r.ReadAttributeValue("Name")
	bias, _, err := ReadAttributeValueAs[time.Duration](r, "Bias")
	if err != nil {
		return err
	}
	p.Bias = bias
	tz.Periods = append(tz.Periods, p)
	return r.SkipCurrentElement()
}

func (tz *TimeZoneDefinition) loadGroup(r *Reader) error {
	if !r.IsStartElement(NamespaceTypes, "TransitionsGroup") {
		return nil
	}
	g := &TimeZoneTransitionGroup{}
	g.ID, _ = r.ReadAttributeValue("Id")
	err := loadChildren(r, NamespaceTypes, "TransitionsGroup", func(r *Reader) error {
		t, err := tz.loadTransition(r)
		if err != nil || t == nil {
			return err
		}
		g.Transitions = append(g.Transitions, t)
		return nil
	})
	if err != nil {
		return err
	}
	tz.Groups = append(tz.Groups, g)
	return nil
}

// loadTransition reads a transition. Targets are resolved against the
// periods and groups already read. It returns nil for unknown elements.
func (tz *TimeZoneDefinition) loadTransition(r *Reader) (*TimeZoneTransition, error) {
	local := r.LocalName()
	kind, ok := resolveTransitionKind(local)
	if !ok {
		return nil, nil
	}
	t := &TimeZoneTransition{Kind: kind}
	err := loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "To":
			return tz.loadTarget(r, t)
		case "DateTime":
			return readParsed(r, &t.DateTime)
		case "TimeOffset":
			return readParsed(r, &t.TimeOffset)
		case "Month":
			return readParsed(r, &t.Month)
		case "DayOfWeek":
			return readParsed(r, &t.DayOfWeek)
		case "Occurrence":
			return readParsed(r, &t.Occurrence)
		case "Day":
			return readParsed(r, &t.Day)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if t.Period == nil && t.Group == nil {
		return nil, newError(ErrKindReadError, local, "transition without target")
	}
	return t, nil
}

func (tz *TimeZoneDefinition) loadTarget(r *Reader, t *TimeZoneTransition) error {
	kind, _ := r.ReadAttributeValue("Kind")
	id, err := r.ReadValue(false)
	if err != nil {
		return err
	}
	switch kind {
	case "Period":
		p, ok := tz.Period(id)
		if !ok {
			return &Error{Kind: ErrKindUnresolvableReference, Name: "To", Message: fmt.Sprintf("unknown period %q", id)}
		}
		t.Period = p
	case "Group":
		g, ok := tz.Group(id)
		if !ok {
			return &Error{Kind: ErrKindUnresolvableReference, Name: "To", Message: fmt.Sprintf("unknown transitions group %q", id)}
		}
		t.Group = g
	default:
		return newError(ErrKindInvalidValue, "To", "unknown transition target kind %q", kind)
	}
	return nil
}

func (tz *TimeZoneDefinition) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := w.WriteAttributeValue("Id", tz.ID); err != nil {
		return err
	}
	if tz.Name != "" {
		if err := w.WriteAttributeValue("Name", tz.Name); err != nil {
			return err
		}
	}

	if len(tz.Periods) > 0 {
		if err := w.WriteStartElement(NamespaceTypes, "Periods"); err != nil {
			return err
		}
		for _, p := range tz.Periods {
			if err := w.WriteStartElement(NamespaceTypes, "Period"); err != nil {
				return err
			}
			if err := w.WriteAttributeValue("Bias", p.Bias); err != nil {
				return err
			}
			if err := w.WriteAttributeValue("Name", p.Name); err != nil {
				return err
			}
			if err := w.WriteAttributeValue("Id", p.ID); err != nil {
				return err
			}
			if err := w.WriteEndElement(); err != nil {
				return err
			}
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}

	if len(tz.Groups) > 0 {
		if err := w.WriteStartElement(NamespaceTypes, "TransitionsGroups"); err != nil {
			return err
		}
		for _, g := range tz.Groups {
			if err := w.WriteStartElement(NamespaceTypes, "TransitionsGroup"); err != nil {
				return err
			}
			if err := w.WriteAttributeValue("Id", g.ID); err != nil {
				return err
			}
			for _, t := range g.Transitions {
				if err := t.writeToXML(w); err != nil {
					return err
				}
			}
			if err := w.WriteEndElement(); err != nil {
				return err
			}
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}

	if len(tz.Transitions) > 0 {
		if err := w.WriteStartElement(NamespaceTypes, "Transitions"); err != nil {
			return err
		}
		for _, t := range tz.Transitions {
			if err := t.writeToXML(w); err != nil {
				return err
			}
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}

	return w.WriteEndElement()
}

func (t *TimeZoneTransition) writeToXML(w *Writer) error {
	if err := w.WriteStartElement(NamespaceTypes, transitionElementNames[t.Kind]); err != nil {
		return err
	}

	if err := w.WriteStartElement(NamespaceTypes, "To"); err != nil {
		return err
	}
	kind, id := "Period", ""
	if t.Group != nil {
		kind, id = "Group", t.Group.ID
	} else if t.Period != nil {
		id = t.Period.ID
	}
	if err := w.WriteAttributeValue("Kind", kind); err != nil {
		return err
	}
	if err := w.WriteValue(id); err != nil {
		return err
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}

	switch t.Kind {
	case TransitionAbsoluteDate:
		if err := w.WriteElementValue(NamespaceTypes, "DateTime", t.DateTime); err != nil {
			return err
		}
	case TransitionRecurringDay:
		if err := w.WriteElementValue(NamespaceTypes, "TimeOffset", t.TimeOffset); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "Month", t.Month); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "DayOfWeek", t.DayOfWeek); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "Occurrence", t.Occurrence); err != nil {
			return err
		}
	case TransitionRecurringDate:
		if err := w.WriteElementValue(NamespaceTypes, "TimeOffset", t.TimeOffset); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "Month", t.Month); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "Day", t.Day); err != nil {
			return err
		}
	}

	return w.WriteEndElement()
}

// loadMeetingTimeZone reads the legacy MeetingTimeZone format, used before
// Exchange 2010. Standard and daylight offsets are relative to the base
// offset.
func loadMeetingTimeZone(r *Reader, local string) (*TimeZoneDefinition, error) {
	tz := &TimeZoneDefinition{}
	tz.ID, _ = r.ReadAttributeValue("TimeZoneName")

	var base time.Duration
	var changes []*TimeZonePeriod
	err := loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch name := r.LocalName(); name {
		case "BaseOffset":
			return readParsed(r, &base)
		case "Standard", "Daylight":
			p := &TimeZonePeriod{ID: name, Name: name}
			changes = append(changes, p)
			return loadChildren(r, NamespaceTypes, name, func(r *Reader) error {
				if r.LocalName() == "Offset" {
					return readParsed(r, &p.Bias)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changes) == 0 {
		tz.Periods = []*TimeZonePeriod{{ID: "Standard", Name: "Standard", Bias: base}}
	}
	for _, p := range changes {
		p.Bias += base
		tz.Periods = append(tz.Periods, p)
	}
	return tz, nil
}

// writeMeetingTimeZone writes the legacy MeetingTimeZone format. Only the
// base offset is written; the server derives daylight rules from the name.
func writeMeetingTimeZone(w *Writer, local string, tz *TimeZoneDefinition) error {
	if err := w.WriteStartElement(NamespaceTypes, local); err != nil {
		return err
	}
	if tz.ID != "" {
		if err := w.WriteAttributeValue("TimeZoneName", tz.ID); err != nil {
			return err
		}
	}
	if p := tz.StandardPeriod(); p != nil {
		if err := w.WriteElementValue(NamespaceTypes, "BaseOffset", p.Bias); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

package ews

import (
	"fmt"
	"strings"
	"time"
)

func marshalEnum(typ string, names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("ews: invalid %v %d", typ, v)
	}
	return []byte(names[v]), nil
}

func unmarshalEnum(typ string, names []string, b []byte) (int, error) {
	s := strings.TrimSpace(string(b))
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("ews: unknown %v %q", typ, s)
}

// BodyType is the format of an item body.
type BodyType int

const (
	BodyHTML BodyType = iota
	BodyText
)

var bodyTypeNames = []string{"HTML", "Text"}

func (t BodyType) MarshalText() ([]byte, error) {
	return marshalEnum("BodyType", bodyTypeNames, int(t))
}

func (t *BodyType) UnmarshalText(b []byte) error {
	v, err := unmarshalEnum("BodyType", bodyTypeNames, b)
	*t = BodyType(v)
	return err
}

type Importance int

const (
	ImportanceNormal Importance = iota
	ImportanceLow
	ImportanceHigh
)

var importanceNames = []string{"Normal", "Low", "High"}

func (imp Importance) MarshalText() ([]byte, error) {
	return marshalEnum("Importance", importanceNames, int(imp))
}

func (imp *Importance) UnmarshalText(b []byte) error {
	v, err := unmarshalEnum("Importance", importanceNames, b)
	*imp = Importance(v)
	return err
}

type Sensitivity int

const (
	SensitivityNormal Sensitivity = iota
	SensitivityPersonal
	SensitivityPrivate
	SensitivityConfidential
)

var sensitivityNames = []string{"Normal", "Personal", "Private", "Confidential"}

func (s Sensitivity) MarshalText() ([]byte, error) {
	return marshalEnum("Sensitivity", sensitivityNames, int(s))
}

func (s *Sensitivity) UnmarshalText(b []byte) error {
	v, err := unmarshalEnum("Sensitivity", sensitivityNames, b)
	*s = Sensitivity(v)
	return err
}

// TaskStatus is the progress of a task.
type TaskStatus int

const (
	TaskNotStarted TaskStatus = iota
	TaskInProgress
	TaskCompleted
	TaskWaitingOnOthers
	TaskDeferred
)

var taskStatusNames = []string{"NotStarted", "InProgress", "Completed", "WaitingOnOthers", "Deferred"}

func (s TaskStatus) MarshalText() ([]byte, error) {
	return marshalEnum("TaskStatus", taskStatusNames, int(s))
}

func (s *TaskStatus) UnmarshalText(b []byte) error {
	v, err := unmarshalEnum("TaskStatus", taskStatusNames, b)
	*s = TaskStatus(v)
	return err
}

// FreeBusyStatus is the availability shown for a calendar item.
type FreeBusyStatus int

const (
	FreeBusyFree FreeBusyStatus = iota
	FreeBusyTentative
	FreeBusyBusy
	FreeBusyOOF
	FreeBusyWorkingElsewhere
	FreeBusyNoData
)

var freeBusyStatusNames = []string{"Free", "Tentative", "Busy", "OOF", "WorkingElsewhere", "NoData"}

func (s FreeBusyStatus) MarshalText() ([]byte, error) {
	return marshalEnum("FreeBusyStatus", freeBusyStatusNames, int(s))
}

func (s *FreeBusyStatus) UnmarshalText(b []byte) error {
	v, err := unmarshalEnum("FreeBusyStatus", freeBusyStatusNames, b)
	*s = FreeBusyStatus(v)
	return err
}

// ResponseType is the response of an attendee to a meeting.
type ResponseType int

const (
	ResponseUnknown ResponseType = iota
	ResponseOrganizer
	ResponseTentative
	ResponseAccept
	ResponseDecline
	ResponseNoResponseReceived
)

var responseTypeNames = []string{"Unknown", "Organizer", "Tentative", "Accept", "Decline", "NoResponseReceived"}

func (t ResponseType) MarshalText() ([]byte, error) {
	return marshalEnum("ResponseType", responseTypeNames, int(t))
}

func (t *ResponseType) UnmarshalText(b []byte) error {
	v, err := unmarshalEnum("ResponseType", responseTypeNames, b)
	*t = ResponseType(v)
	return err
}

// CalendarItemType tells whether a calendar item is part of a recurrence.
type CalendarItemType int

const (
	CalendarItemSingle CalendarItemType = iota
	CalendarItemOccurrence
	CalendarItemException
	CalendarItemRecurringMaster
)

var calendarItemTypeNames = []string{"Single", "Occurrence", "Exception", "RecurringMaster"}

func (t CalendarItemType) MarshalText() ([]byte, error) {
	return marshalEnum("CalendarItemType", calendarItemTypeNames, int(t))
}

func (t *CalendarItemType) UnmarshalText(b []byte) error {
	v, err := unmarshalEnum("CalendarItemType", calendarItemTypeNames, b)
	*t = CalendarItemType(v)
	return err
}

// DayOfWeek is a day of the week, or a group of days.
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Day
	Weekday
	WeekendDay
)

var dayOfWeekNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
	"Day", "Weekday", "WeekendDay",
}

func (d DayOfWeek) MarshalText() ([]byte, error) {
	return marshalEnum("DayOfWeek", dayOfWeekNames, int(d))
}

func (d *DayOfWeek) UnmarshalText(b []byte) error {
	v, err := unmarshalEnum("DayOfWeek", dayOfWeekNames, b)
	*d = DayOfWeek(v)
	return err
}

// Weekday converts a single day to a time.Weekday.
func (d DayOfWeek) Weekday() (time.Weekday, bool) {
	if d < Sunday || d > Saturday {
		return 0, false
	}
	return time.Weekday(d), true
}

// parseDaysOfWeek parses a space-separated list of days.
func parseDaysOfWeek(s string) ([]DayOfWeek, error) {
	var l []DayOfWeek
	for _, field := range strings.Fields(s) {
		var d DayOfWeek
		if err := d.UnmarshalText([]byte(field)); err != nil {
			return nil, err
		}
		l = append(l, d)
	}
	return l, nil
}

func formatDaysOfWeek(days []DayOfWeek) (string, error) {
	l := make([]string, len(days))
	for i, d := range days {
		b, err := d.MarshalText()
		if err != nil {
			return "", err
		}
		l[i] = string(b)
	}
	return strings.Join(l, " "), nil
}

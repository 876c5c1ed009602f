package ews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const pacificStartTimeZone = `<t:StartTimeZone xmlns:t="urn:t" Id="Pacific Standard Time" Name="(UTC-08:00) Pacific Time (US &amp; Canada)">
  <t:Periods>
    <t:Period Bias="PT8H" Name="Standard" Id="std"/>
    <t:Period Bias="PT7H" Name="Daylight" Id="dst"/>
  </t:Periods>
  <t:TransitionsGroups>
    <t:TransitionsGroup Id="0">
      <t:RecurringDayTransition>
        <t:To Kind="Period">std</t:To>
        <t:TimeOffset>PT2H</t:TimeOffset>
        <t:Month>11</t:Month>
        <t:DayOfWeek>Sunday</t:DayOfWeek>
        <t:Occurrence>1</t:Occurrence>
      </t:RecurringDayTransition>
      <t:RecurringDayTransition>
        <t:To Kind="Period">dst</t:To>
        <t:TimeOffset>PT2H</t:TimeOffset>
        <t:Month>3</t:Month>
        <t:DayOfWeek>Sunday</t:DayOfWeek>
        <t:Occurrence>2</t:Occurrence>
      </t:RecurringDayTransition>
    </t:TransitionsGroup>
  </t:TransitionsGroups>
  <t:Transitions>
    <t:Transition><t:To Kind="Group">0</t:To></t:Transition>
    <t:AbsoluteDateTransition>
      <t:To Kind="Group">0</t:To>
      <t:DateTime>2007-01-01T00:00:00</t:DateTime>
    </t:AbsoluteDateTransition>
    <t:FutureTransition><t:To Kind="Group">0</t:To></t:FutureTransition>
  </t:Transitions>
</t:StartTimeZone>`

func loadTimeZone(t *testing.T, doc string) (*TimeZoneDefinition, error) {
	t.Helper()
	r := newTestReader(doc)
	require.NoError(t, r.ReadStartElement(NamespaceTypes, "StartTimeZone"))
	tz := &TimeZoneDefinition{}
	if err := tz.LoadFromXML(r, "StartTimeZone"); err != nil {
		return nil, err
	}
	require.True(t, r.IsEndElement(NamespaceTypes, "StartTimeZone"))
	return tz, nil
}

func checkPacificTimeZone(t *testing.T, tz *TimeZoneDefinition) {
	t.Helper()

	require.Equal(t, "Pacific Standard Time", tz.ID)
	require.Len(t, tz.Periods, 2)
	require.Equal(t, 8*time.Hour, tz.Periods[0].Bias)
	require.Equal(t, "Daylight", tz.Periods[1].Name)

	require.Len(t, tz.Groups, 1)
	group := tz.Groups[0]
	require.Equal(t, "0", group.ID)
	require.Len(t, group.Transitions, 2)

	toStandard := group.Transitions[0]
	require.Equal(t, TransitionRecurringDay, toStandard.Kind)
	require.Same(t, tz.Periods[0], toStandard.Period)
	require.Nil(t, toStandard.Group)
	require.Equal(t, 2*time.Hour, toStandard.TimeOffset)
	require.Equal(t, 11, toStandard.Month)
	require.Equal(t, Sunday, toStandard.DayOfWeek)
	require.Equal(t, 1, toStandard.Occurrence)

	toDaylight := group.Transitions[1]
	require.Same(t, tz.Periods[1], toDaylight.Period)
	require.Equal(t, 2, toDaylight.Occurrence)

	require.Len(t, tz.Transitions, 2)
	require.Equal(t, TransitionPlain, tz.Transitions[0].Kind)
	require.Same(t, group, tz.Transitions[0].Group)
	require.Equal(t, TransitionAbsoluteDate, tz.Transitions[1].Kind)
	require.Same(t, group, tz.Transitions[1].Group)
	require.True(t, tz.Transitions[1].DateTime.Equal(time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestTimeZoneDefinition_LoadFromXML(t *testing.T) {
	tz, err := loadTimeZone(t, pacificStartTimeZone)
	require.NoError(t, err)
	require.Equal(t, "(UTC-08:00) Pacific Time (US & Canada)", tz.Name)
	checkPacificTimeZone(t, tz)

	p, ok := tz.Period("dst")
	require.True(t, ok)
	require.Equal(t, -7*time.Hour, p.Offset())
	_, ok = tz.Group("1")
	require.False(t, ok)

	require.Same(t, tz.Periods[0], tz.StandardPeriod())
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, tz.FixedZone()).Zone()
	require.Equal(t, -8*60*60, offset)
}

func TestTimeZoneDefinition_roundTrip(t *testing.T) {
	tz, err := loadTimeZone(t, pacificStartTimeZone)
	require.NoError(t, err)

	s, err := writeTestXML(t, Exchange2010, func(w *Writer) error {
		return tz.WriteToXML(w, NamespaceTypes, "StartTimeZone")
	})
	require.NoError(t, err)

	r := newTestReader(s)
	require.NoError(t, r.ReadToDescendant(NamespaceTypes, "StartTimeZone"))
	tz2 := &TimeZoneDefinition{}
	require.NoError(t, tz2.LoadFromXML(r, "StartTimeZone"))
	require.Equal(t, tz.Name, tz2.Name)
	checkPacificTimeZone(t, tz2)
}

func TestTimeZoneDefinition_unresolvableReference(t *testing.T) {
	for _, doc := range []string{
		`<t:StartTimeZone xmlns:t="urn:t" Id="X">
  <t:Periods><t:Period Bias="PT0S" Name="Standard" Id="std"/></t:Periods>
  <t:Transitions><t:Transition><t:To Kind="Period">missing</t:To></t:Transition></t:Transitions>
</t:StartTimeZone>`,
		`<t:StartTimeZone xmlns:t="urn:t" Id="X">
  <t:Periods><t:Period Bias="PT0S" Name="Standard" Id="std"/></t:Periods>
  <t:Transitions><t:Transition><t:To Kind="Group">7</t:To></t:Transition></t:Transitions>
</t:StartTimeZone>`,
	} {
		_, err := loadTimeZone(t, doc)
		require.True(t, IsKind(err, ErrKindUnresolvableReference), "LoadFromXML() = %v", err)
	}
}

func TestTimeZoneDefinition_invalid(t *testing.T) {
	_, err := loadTimeZone(t, `<t:StartTimeZone xmlns:t="urn:t" Id="X">
  <t:Periods><t:Period Bias="PT0S" Name="Standard" Id="std"/></t:Periods>
  <t:Transitions><t:Transition><t:To Kind="Zone">std</t:To></t:Transition></t:Transitions>
</t:StartTimeZone>`)
	require.True(t, IsKind(err, ErrKindInvalidValue), "LoadFromXML() = %v", err)

	_, err = loadTimeZone(t, `<t:StartTimeZone xmlns:t="urn:t" Id="X">
  <t:Transitions><t:Transition/></t:Transitions>
</t:StartTimeZone>`)
	require.True(t, IsKind(err, ErrKindReadError), "LoadFromXML() = %v", err)

	_, err = loadTimeZone(t, `<t:StartTimeZone xmlns:t="urn:t" Id="X">
  <t:Periods><t:Period Bias="eight hours" Name="Standard" Id="std"/></t:Periods>
</t:StartTimeZone>`)
	require.True(t, IsKind(err, ErrKindInvalidValue), "LoadFromXML() = %v", err)
}

func TestCalendarItem_StartTimeZone(t *testing.T) {
	r := newTestReader(`<t:CalendarItem xmlns:t="urn:t">` + pacificStartTimeZone + `</t:CalendarItem>`)
	ci := NewCalendarItem(nil)
	require.NoError(t, ci.LoadFromXML(r, LoadOptions{}))
	checkPacificTimeZone(t, ci.StartTimeZone())

	legacy, ok := ci.Properties().Get(PropAppointmentMeetingTimeZone)
	require.True(t, ok)
	require.Same(t, ci.StartTimeZone(), legacy)
}

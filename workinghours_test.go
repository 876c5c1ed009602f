package ews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const workingHoursXML = `<t:WorkingHours xmlns:t="urn:t">
  <t:TimeZone>
    <t:Bias>480</t:Bias>
    <t:StandardTime>
      <t:Bias>0</t:Bias>
      <t:Time>02:00:00</t:Time>
      <t:DayOrder>1</t:DayOrder>
      <t:Month>11</t:Month>
      <t:DayOfWeek>Sunday</t:DayOfWeek>
    </t:StandardTime>
    <t:DaylightTime>
      <t:Bias>-60</t:Bias>
      <t:Time>02:00:00</t:Time>
      <t:DayOrder>2</t:DayOrder>
      <t:Month>3</t:Month>
      <t:DayOfWeek>Sunday</t:DayOfWeek>
    </t:DaylightTime>
  </t:TimeZone>
  <t:WorkingPeriodArray>
    <t:WorkingPeriod>
      <t:DayOfWeek>Monday Tuesday Wednesday</t:DayOfWeek>
      <t:StartTimeInMinutes>480</t:StartTimeInMinutes>
      <t:EndTimeInMinutes>1020</t:EndTimeInMinutes>
    </t:WorkingPeriod>
    <t:WorkingPeriod>
      <t:DayOfWeek>Thursday Friday</t:DayOfWeek>
      <t:StartTimeInMinutes>600</t:StartTimeInMinutes>
      <t:EndTimeInMinutes>900</t:EndTimeInMinutes>
    </t:WorkingPeriod>
  </t:WorkingPeriodArray>
</t:WorkingHours>`

func TestWorkingHours_LoadFromXML(t *testing.T) {
	r := newTestReader(workingHoursXML)
	require.NoError(t, r.ReadStartElement(NamespaceTypes, "WorkingHours"))

	var wh WorkingHours
	require.NoError(t, wh.LoadFromXML(r, "WorkingHours"))
	require.True(t, r.IsEndElement(NamespaceTypes, "WorkingHours"))

	require.Equal(t, 8*time.Hour, wh.TimeZone.Bias)
	require.Equal(t, -time.Hour, wh.TimeZone.Daylight.Bias)
	require.Equal(t, "02:00:00", wh.TimeZone.Standard.Time)
	require.Equal(t, 11, wh.TimeZone.Standard.Month)
	require.Equal(t, 2, wh.TimeZone.Daylight.DayOrder)
	require.Equal(t, Sunday, wh.TimeZone.Daylight.DayOfWeek)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, wh.TimeZone.FixedZone()).Zone()
	require.Equal(t, -8*60*60, offset)

	require.Equal(t, []WorkingPeriod{
		{DaysOfWeek: []DayOfWeek{Monday, Tuesday, Wednesday}, StartTime: 8 * time.Hour, EndTime: 17 * time.Hour},
		{DaysOfWeek: []DayOfWeek{Thursday, Friday}, StartTime: 10 * time.Hour, EndTime: 15 * time.Hour},
	}, wh.Periods)

	// the summary repeats the first period's days once per period
	require.Equal(t, []DayOfWeek{Monday, Tuesday, Wednesday, Monday, Tuesday, Wednesday}, wh.DaysOfWeek)
	require.Equal(t, 8*time.Hour, wh.StartTime)
	require.Equal(t, 17*time.Hour, wh.EndTime)
}

func TestWorkingHours_LoadFromXML_invalid(t *testing.T) {
	for _, doc := range []string{
		`<t:WorkingHours xmlns:t="urn:t"><t:WorkingPeriodArray><t:WorkingPeriod>
  <t:DayOfWeek>Monday Funday</t:DayOfWeek>
</t:WorkingPeriod></t:WorkingPeriodArray></t:WorkingHours>`,
		`<t:WorkingHours xmlns:t="urn:t"><t:TimeZone><t:Bias>eight</t:Bias></t:TimeZone></t:WorkingHours>`,
	} {
		r := newTestReader(doc)
		require.NoError(t, r.ReadStartElement(NamespaceTypes, "WorkingHours"))
		var wh WorkingHours
		err := wh.LoadFromXML(r, "WorkingHours")
		require.True(t, IsKind(err, ErrKindInvalidValue), "LoadFromXML() = %v", err)
	}
}

func TestWorkingHours_noPeriods(t *testing.T) {
	r := newTestReader(`<t:WorkingHours xmlns:t="urn:t"><t:WorkingPeriodArray/></t:WorkingHours>`)
	require.NoError(t, r.ReadStartElement(NamespaceTypes, "WorkingHours"))

	var wh WorkingHours
	require.NoError(t, wh.LoadFromXML(r, "WorkingHours"))
	require.Empty(t, wh.Periods)
	require.Empty(t, wh.DaysOfWeek)
	require.Zero(t, wh.StartTime)
}

func TestAvailability_LoadFromXML(t *testing.T) {
	r := newTestReader(`<m:FreeBusyView xmlns:m="urn:m" xmlns:t="urn:t">
  <t:FreeBusyViewType>Detailed</t:FreeBusyViewType>
  <t:CalendarEventArray>
    <t:CalendarEvent>
      <t:StartTime>2024-03-11T09:00:00</t:StartTime>
      <t:EndTime>2024-03-11T10:00:00</t:EndTime>
      <t:BusyType>Busy</t:BusyType>
      <t:CalendarEventDetails><t:Subject>Standup</t:Subject></t:CalendarEventDetails>
    </t:CalendarEvent>
    <t:CalendarEvent>
      <t:StartTime>2024-03-12T13:00:00</t:StartTime>
      <t:EndTime>2024-03-12T17:00:00</t:EndTime>
      <t:BusyType>OOF</t:BusyType>
    </t:CalendarEvent>
  </t:CalendarEventArray>
  ` + workingHoursXML + `
</m:FreeBusyView>`)
	require.NoError(t, r.ReadStartElement(NamespaceMessages, "FreeBusyView"))

	var av Availability
	require.NoError(t, av.LoadFromXML(r, "FreeBusyView"))
	require.True(t, r.IsEndElement(NamespaceMessages, "FreeBusyView"))

	require.Equal(t, "Detailed", av.ViewType)
	require.Len(t, av.Events, 2)
	require.True(t, av.Events[0].StartTime.Equal(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)))
	require.Equal(t, FreeBusyBusy, av.Events[0].BusyType)
	require.Equal(t, FreeBusyOOF, av.Events[1].BusyType)
	require.NotNil(t, av.WorkingHours)
	require.Len(t, av.WorkingHours.Periods, 2)
}

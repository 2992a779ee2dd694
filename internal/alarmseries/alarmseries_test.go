package alarmseries

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/occurrence"
	"github.com/go-ical/recur/internal/series"
	"github.com/go-ical/recur/internal/timevalue"
)

func parseCalendar(t *testing.T, raw string) []*ical.Component {
	t.Helper()
	cal, err := ical.NewDecoder(strings.NewReader(raw)).Decode()
	require.NoError(t, err)
	return cal.Children
}

func floating(year int, month time.Month, day, hour, min int) timevalue.Time {
	return timevalue.NewFloating(year, month, day, hour, min, 0, 0)
}

func buildSeries(t *testing.T, comps []*ical.Component) *series.Series {
	t.Helper()
	var adapters []component.Adapter
	for _, c := range comps {
		if c.Name == ical.CompEvent {
			adapters = append(adapters, component.NewEventAdapter(c, nil))
		}
	}
	s, err := series.New(adapters)
	require.NoError(t, err)
	return s
}

func TestParseTriggerRelativeToStart(t *testing.T) {
	comps := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER:-PT15M
END:VALARM
END:VEVENT
END:VCALENDAR
`)
	alarm := comps[0].Children[0]
	trig, err := ParseTrigger(alarm, nil)
	require.NoError(t, err)
	assert.Nil(t, trig.Absolute)
	assert.Equal(t, -15*time.Minute, trig.Offset)
	assert.False(t, trig.RelatedToEnd)
}

func TestParseTriggerRelatedToEnd(t *testing.T) {
	comps := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER;RELATED=END:PT0M
END:VALARM
END:VEVENT
END:VCALENDAR
`)
	alarm := comps[0].Children[0]
	trig, err := ParseTrigger(alarm, nil)
	require.NoError(t, err)
	assert.True(t, trig.RelatedToEnd)
	assert.Equal(t, time.Duration(0), trig.Offset)
}

func TestParseTriggerAbsolute(t *testing.T) {
	comps := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER;VALUE=DATE-TIME:20240301T083000Z
REPEAT:2
DURATION:PT5M
END:VALARM
END:VEVENT
END:VCALENDAR
`)
	alarm := comps[0].Children[0]
	trig, err := ParseTrigger(alarm, nil)
	require.NoError(t, err)
	require.NotNil(t, trig.Absolute)
	assert.Equal(t, "2024-03-01T08:30:00Z", trig.Absolute.Wall().UTC().Format(time.RFC3339))
	assert.Equal(t, 2, trig.Repeat)
	assert.Equal(t, 5*time.Minute, trig.RepeatDuration)
}

func TestAbsoluteAlarmSeriesExpandsRepeat(t *testing.T) {
	comps := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER;VALUE=DATE-TIME:20240301T083000Z
REPEAT:2
DURATION:PT5M
END:VALARM
END:VEVENT
END:VCALENDAR
`)
	alarm := comps[0].Children[0]
	trig, err := ParseTrigger(alarm, nil)
	require.NoError(t, err)

	adapter := component.NewEventAdapter(comps[0], nil)
	parent := occurrence.Occurrence{Adapter: adapter, Start: adapter.Start(), End: adapter.End(), Sequence: -1}

	s := &AbsoluteAlarmSeries{}
	assert.True(t, s.IsEmpty())
	s.Add(trig, alarm, parent, parent.Identity())
	assert.False(t, s.IsEmpty())

	occs, err := s.Between(floating(2024, time.March, 1, 0, 0), floating(2024, time.March, 2, 0, 0))
	require.NoError(t, err)
	require.Len(t, occs, 3)
	assert.Equal(t, "2024-03-01T08:30:00Z", occs[0].Trigger.String())
	assert.Equal(t, "2024-03-01T08:35:00Z", occs[1].Trigger.String())
	assert.Equal(t, "2024-03-01T08:40:00Z", occs[2].Trigger.String())
}

func TestRelativeToStartFiresOffsetFromEachOccurrence(t *testing.T) {
	comps := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
RRULE:FREQ=WEEKLY;COUNT=2
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER:-PT15M
END:VALARM
END:VEVENT
END:VCALENDAR
`)
	s := buildSeries(t, comps)
	alarm := comps[0].Children[0]
	trig, err := ParseTrigger(alarm, nil)
	require.NoError(t, err)

	r := NewRelativeToStart(alarm, s, trig, nil)
	occs, err := r.Between(floating(2024, time.March, 1, 0, 0), floating(2024, time.March, 31, 0, 0))
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, "2024-03-01T08:45:00", occs[0].Trigger.String())
	assert.Equal(t, "2024-03-08T08:45:00", occs[1].Trigger.String())
}

func TestRelativeToEndFiresOffsetFromEachOccurrenceEnd(t *testing.T) {
	comps := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
RRULE:FREQ=WEEKLY;COUNT=2
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER;RELATED=END:PT0M
END:VALARM
END:VEVENT
END:VCALENDAR
`)
	s := buildSeries(t, comps)
	alarm := comps[0].Children[0]
	trig, err := ParseTrigger(alarm, nil)
	require.NoError(t, err)

	r := NewRelativeToEnd(alarm, s, trig, nil)
	occs, err := r.Between(floating(2024, time.March, 1, 0, 0), floating(2024, time.March, 31, 0, 0))
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, "2024-03-01T10:00:00", occs[0].Trigger.String())
	assert.Equal(t, "2024-03-08T10:00:00", occs[1].Trigger.String())
}

func TestRelativeAlarmHonorsHasAlarmPredicate(t *testing.T) {
	comps := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
RRULE:FREQ=WEEKLY;COUNT=2
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER:-PT15M
END:VALARM
END:VEVENT
END:VCALENDAR
`)
	s := buildSeries(t, comps)
	alarm := comps[0].Children[0]
	trig, err := ParseTrigger(alarm, nil)
	require.NoError(t, err)

	alwaysFalse := func(occ occurrence.Occurrence, a *ical.Component) bool { return false }
	r := NewRelativeToStart(alarm, s, trig, alwaysFalse)
	occs, err := r.Between(floating(2024, time.March, 1, 0, 0), floating(2024, time.March, 31, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestSortByTriggerOrdersAscending(t *testing.T) {
	occs := []occurrence.AlarmOccurrence{
		{Trigger: floating(2024, time.March, 8, 8, 45)},
		{Trigger: floating(2024, time.March, 1, 8, 45)},
	}
	SortByTrigger(occs)
	assert.Equal(t, "2024-03-01T08:45:00", occs[0].Trigger.String())
	assert.Equal(t, "2024-03-08T08:45:00", occs[1].Trigger.String())
}

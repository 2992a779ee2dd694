package recur

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCalendar(t *testing.T, raw string) *ical.Component {
	t.Helper()
	cal, err := ical.NewDecoder(strings.NewReader(raw)).Decode()
	require.NoError(t, err)
	return cal
}

func TestOfRejectsNonGregorianCalscale(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
CALSCALE:JULIAN
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
END:VEVENT
END:VCALENDAR
`)
	_, err := Of(cal)
	assert.Error(t, err)
}

func TestOfAcceptsExplicitGregorianCalscale(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
CALSCALE:GREGORIAN
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
END:VEVENT
END:VCALENDAR
`)
	_, err := Of(cal)
	assert.NoError(t, err)
}

func TestOfDefaultsToVEventOnly(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
END:VEVENT
BEGIN:VTODO
UID:2@example.com
DTSTART:20240301T090000
DUE:20240301T100000
END:VTODO
END:VCALENDAR
`)
	q, err := Of(cal)
	require.NoError(t, err)
	comps, err := q.Between(Date(2024, time.January, 1), Date(2024, time.December, 31))
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, "VEVENT", comps[0].Name)
}

func TestOfWithComponentsExpandsTodosAndAlarms(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
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
BEGIN:VTODO
UID:2@example.com
DTSTART:20240301T090000
DUE:20240301T100000
END:VTODO
END:VCALENDAR
`)
	q, err := Of(cal, WithComponents(ical.CompEvent, ical.CompToDo, ical.CompAlarm))
	require.NoError(t, err)
	comps, err := q.Between(Date(2024, time.January, 1), Date(2024, time.December, 31))
	require.NoError(t, err)

	var names []string
	for _, c := range comps {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"VEVENT", "VTODO", "VEVENT"}, names)
}

func TestOfWithAllKnownComponentsUnionsEveryKind(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
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
BEGIN:VTODO
UID:2@example.com
DTSTART:20240301T090000
DUE:20240301T100000
END:VTODO
BEGIN:VJOURNAL
UID:3@example.com
DTSTART:20240301T090000
END:VJOURNAL
END:VCALENDAR
`)
	q, err := Of(cal, WithAllKnownComponents())
	require.NoError(t, err)
	comps, err := q.Between(Date(2024, time.January, 1), Date(2024, time.December, 31))
	require.NoError(t, err)

	var names []string
	for _, c := range comps {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"VEVENT", "VTODO", "VJOURNAL", "VEVENT"}, names)
}

func TestOfRejectsUnknownComponentName(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
END:VEVENT
END:VCALENDAR
`)
	_, err := Of(cal, WithComponents("VFREEBUSY"))
	assert.Error(t, err)
}

func TestQuerySkipBadSeriesDropsMalformedSeriesOnly(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:bad@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
RRULE:FREQ=DAILY;UNTIL=not-a-date
END:VEVENT
BEGIN:VEVENT
UID:good@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
END:VEVENT
END:VCALENDAR
`)
	_, err := Of(cal)
	assert.Error(t, err)

	q, err := Of(cal, SkipBadSeries())
	require.NoError(t, err)
	comps, err := q.Between(Date(2024, time.January, 1), Date(2024, time.December, 31))
	require.NoError(t, err)
	require.Len(t, comps, 1)
}

func TestQueryAtWidensToWholeDay(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T230000
DTEND:20240302T010000
END:VEVENT
END:VCALENDAR
`)
	q, err := Of(cal)
	require.NoError(t, err)
	comps, err := q.At(Date(2024, time.March, 1))
	require.NoError(t, err)
	assert.Len(t, comps, 1)
}

func TestQueryBetweenForUsesDuration(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
RRULE:FREQ=DAILY;COUNT=5
END:VEVENT
END:VCALENDAR
`)
	q, err := Of(cal)
	require.NoError(t, err)
	comps, err := q.BetweenFor(Hour(2024, time.March, 1, 0), 48*time.Hour)
	require.NoError(t, err)
	assert.Len(t, comps, 2)
}

func TestQueryCountAndFirst(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
RRULE:FREQ=WEEKLY;COUNT=3
END:VEVENT
END:VCALENDAR
`)
	q, err := Of(cal)
	require.NoError(t, err)

	n, err := q.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	first, err := q.First()
	require.NoError(t, err)
	assert.Equal(t, "20240301T090000", first.Props.Get(ical.PropDateTimeStart).Value)
}

func TestQueryFirstErrorsOnEmptyQuery(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
END:VCALENDAR
`)
	q, err := Of(cal)
	require.NoError(t, err)
	_, err = q.First()
	assert.Error(t, err)
}

func TestQueryKeepRecurrenceAttributes(t *testing.T) {
	cal := parseCalendar(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:1@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
RRULE:FREQ=WEEKLY;COUNT=2
END:VEVENT
END:VCALENDAR
`)
	q, err := Of(cal, KeepRecurrenceAttributes())
	require.NoError(t, err)
	comps, err := q.Between(Date(2024, time.January, 1), Date(2024, time.December, 31))
	require.NoError(t, err)
	require.NotEmpty(t, comps)
	assert.NotNil(t, comps[0].Props.Get("RRULE"))
}

package occurrence

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/timevalue"
)

func parseEvent(t *testing.T, raw string) *ical.Component {
	t.Helper()
	cal, err := ical.NewDecoder(strings.NewReader(raw)).Decode()
	require.NoError(t, err)
	require.Len(t, cal.Children, 1)
	return cal.Children[0]
}

func TestIdentityRoundTripsThroughString(t *testing.T) {
	comp := parseEvent(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:abc@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
END:VEVENT
END:VCALENDAR
`)
	adapter := component.NewEventAdapter(comp, nil)
	occ := Occurrence{Adapter: adapter, Start: adapter.Start(), End: adapter.End(), Sequence: -1}

	id := occ.Identity()
	assert.Equal(t, "VEVENT", id.Name)
	assert.Equal(t, "", id.RecurrenceID)
	assert.Equal(t, "abc@example.com", id.UID)

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestIdentityUsesRecurrenceIDWhenPresent(t *testing.T) {
	comp := parseEvent(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:abc@example.com
DTSTART:20240308T140000
DTEND:20240308T150000
RECURRENCE-ID:20240308T090000
END:VEVENT
END:VCALENDAR
`)
	adapter := component.NewEventAdapter(comp, nil)
	occ := Occurrence{Adapter: adapter, Start: adapter.Start(), End: adapter.End(), Sequence: 0}

	id := occ.Identity()
	assert.Equal(t, "2024-03-08T09:00:00", id.RecurrenceID)
}

func TestAsComponentWritesNonNegativeSequence(t *testing.T) {
	comp := parseEvent(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:abc@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
END:VEVENT
END:VCALENDAR
`)
	adapter := component.NewEventAdapter(comp, nil)
	occ := Occurrence{Adapter: adapter, Start: adapter.Start(), End: adapter.End(), Sequence: 3}

	out := occ.AsComponent(false)
	require.NotNil(t, out.Props.Get(ical.PropSequence))
	assert.Equal(t, "3", out.Props.Get(ical.PropSequence).Value)
}

func TestAsComponentOmitsSequenceWhenNegative(t *testing.T) {
	comp := parseEvent(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:abc@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
END:VEVENT
END:VCALENDAR
`)
	adapter := component.NewEventAdapter(comp, nil)
	occ := Occurrence{Adapter: adapter, Start: adapter.Start(), End: adapter.End(), Sequence: -1}

	out := occ.AsComponent(false)
	assert.Nil(t, out.Props.Get(ical.PropSequence))
}

func TestParseIDRejectsMalformedCursor(t *testing.T) {
	_, err := ParseID("not-enough-fields")
	assert.Error(t, err)
}

func TestAlarmOccurrenceIdentityUsesTriggerAsStart(t *testing.T) {
	parentID := ID{Name: "VEVENT", RecurrenceID: "", Start: "2024-03-01T09:00:00", UID: "abc@example.com"}
	ao := AlarmOccurrence{Trigger: timevalue.NewFloating(2024, time.March, 1, 8, 45, 0, 0), ParentID: parentID}

	id := ao.Identity()
	assert.Equal(t, "2024-03-01T08:45:00", id.Start)
	assert.Equal(t, parentID.UID, id.UID)
	assert.Equal(t, parentID.Name, id.Name)
}

func TestAlarmOccurrenceAsComponentRewritesTriggerAndDropsRepeat(t *testing.T) {
	comp := parseEvent(t, `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:abc@example.com
DTSTART:20240301T090000
DTEND:20240301T100000
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER:-PT15M
REPEAT:2
DURATION:PT5M
END:VALARM
END:VEVENT
END:VCALENDAR
`)
	adapter := component.NewEventAdapter(comp, nil)
	parentOcc := Occurrence{Adapter: adapter, Start: adapter.Start(), End: adapter.End(), Sequence: -1}
	alarm := comp.Children[0]

	ao := AlarmOccurrence{
		Trigger:  timevalue.NewFloating(2024, time.March, 1, 8, 45, 0, 0),
		Alarm:    alarm,
		Parent:   parentOcc,
		ParentID: parentOcc.Identity(),
	}

	out := ao.AsComponent(false)
	require.Len(t, out.Children, 1)
	valarm := out.Children[0]
	trigger := valarm.Props.Get("TRIGGER")
	require.NotNil(t, trigger)
	assert.Equal(t, "20240301T084500Z", trigger.Value)
	repeat := valarm.Props.Get("REPEAT")
	require.NotNil(t, repeat)
	assert.Equal(t, "0", repeat.Value)

	// The source alarm is untouched.
	assert.Equal(t, "-PT15M", alarm.Props.Get("TRIGGER").Value)
	assert.NotNil(t, alarm.Props.Get("REPEAT"))
}

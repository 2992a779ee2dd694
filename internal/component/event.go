package component

import (
	"time"

	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/timevalue"
)

// EventAdapter wraps a VEVENT. DTEND or DTSTART+DURATION give the end; with
// neither, a date-valued DTSTART spans one day and a datetime-valued one is
// zero-length (spec §3, start/end fallback table).
type EventAdapter struct{ base }

// NewEventAdapter wraps comp, which must be a VEVENT.
func NewEventAdapter(comp *ical.Component, resolve TZResolver) *EventAdapter {
	a := &EventAdapter{base{comp: comp, resolve: resolve, name: ical.CompEvent, endProp: ical.PropDateTimeEnd}}
	a.rawStart = a.start0
	a.rawEnd = a.end0
	return a
}

func (a *EventAdapter) start0() (timevalue.Time, error) {
	prop := a.comp.Props.Get(ical.PropDateTimeStart)
	if prop == nil {
		return timevalue.Time{}, &missingPropertyError{Component: ical.CompEvent, Property: ical.PropDateTimeStart}
	}
	return parseTimeValue(prop.Value, prop.Params, a.resolve)
}

func (a *EventAdapter) end0() (timevalue.Time, error) {
	if prop := a.comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
		return parseTimeValue(prop.Value, prop.Params, a.resolve)
	}
	start, err := a.start0()
	if err != nil {
		return timevalue.Time{}, err
	}
	if prop := a.comp.Props.Get(ical.PropDuration); prop != nil {
		d, err := parseISODuration(prop.Value)
		if err != nil {
			return timevalue.Time{}, err
		}
		if start.IsDate() && d%(24*time.Hour) != 0 {
			y, m, day := start.Wall().Date()
			start = timevalue.NewFloating(y, m, day, 0, 0, 0, 0)
		}
		return start.Add(d), nil
	}
	if start.IsDate() {
		return start.Add(24 * time.Hour), nil
	}
	return start, nil
}

var _ Adapter = (*EventAdapter)(nil)

package component

import (
	"time"

	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/timevalue"
)

// DateMin/DateMax bound the "infinite" span a to-do or journal with no
// usable start/end is assumed to occupy (spec §6 safety bounds).
var (
	DateMin = timevalue.NewDate(1970, time.January, 1)
	DateMax = timevalue.NewDate(2038, time.January, 1)
)

// TodoAdapter wraps a VTODO. DTSTART and DUE are both optional on a to-do;
// missing fields fall back per spec §3's table, bottoming out at the
// DateMin/DateMax safety bounds when neither is present.
type TodoAdapter struct{ base }

// NewTodoAdapter wraps comp, which must be a VTODO.
func NewTodoAdapter(comp *ical.Component, resolve TZResolver) *TodoAdapter {
	a := &TodoAdapter{base{comp: comp, resolve: resolve, name: ical.CompToDo, endProp: ical.PropDue}}
	a.rawStart = a.start0
	a.rawEnd = a.end0
	return a
}

func (a *TodoAdapter) start0() (timevalue.Time, error) {
	if prop := a.comp.Props.Get(ical.PropDateTimeStart); prop != nil {
		return parseTimeValue(prop.Value, prop.Params, a.resolve)
	}
	if prop := a.comp.Props.Get(ical.PropDue); prop != nil {
		return parseTimeValue(prop.Value, prop.Params, a.resolve)
	}
	return DateMin, nil
}

func (a *TodoAdapter) end0() (timevalue.Time, error) {
	if prop := a.comp.Props.Get(ical.PropDue); prop != nil {
		return parseTimeValue(prop.Value, prop.Params, a.resolve)
	}
	startProp := a.comp.Props.Get(ical.PropDateTimeStart)
	if durProp := a.comp.Props.Get(ical.PropDuration); durProp != nil && startProp != nil {
		start, err := parseTimeValue(startProp.Value, startProp.Params, a.resolve)
		if err != nil {
			return timevalue.Time{}, err
		}
		d, err := parseISODuration(durProp.Value)
		if err != nil {
			return timevalue.Time{}, err
		}
		return start.Add(d), nil
	}
	if startProp != nil {
		return parseTimeValue(startProp.Value, startProp.Params, a.resolve)
	}
	return DateMax, nil
}

var _ Adapter = (*TodoAdapter)(nil)

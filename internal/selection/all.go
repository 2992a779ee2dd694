package selection

import (
	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/alarmseries"
	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/series"
)

// AllKnown collects every VEVENT, VTODO and VJOURNAL series, plus every
// alarm series hanging off a VEVENT or VTODO (ported from
// selection/all.py's AllKnownComponents). The root package's Query uses
// it when built with WithAllKnownComponents; its own default is the
// narrower ["VEVENT"] set (spec §4.7 "All known").
type AllKnown struct {
	events   *ByName
	todos    *ByName
	journals *ByName
	alarms   *Alarms
}

// NewAllKnown builds the all-known collector: the three known component
// kinds plus their alarms, all resolving TZID parameters through resolve.
func NewAllKnown(resolve component.TZResolver) *AllKnown {
	events := NewByName(ical.CompEvent, func(c *ical.Component, r component.TZResolver) component.Adapter {
		return component.NewEventAdapter(c, r)
	}, resolve)
	todos := NewByName(ical.CompToDo, func(c *ical.Component, r component.TZResolver) component.Adapter {
		return component.NewTodoAdapter(c, r)
	}, resolve)
	journals := NewByName(ical.CompJournal, func(c *ical.Component, r component.TZResolver) component.Adapter {
		return component.NewJournalAdapter(c, r)
	}, resolve)
	return &AllKnown{
		events:   events,
		todos:    todos,
		journals: journals,
		alarms:   NewAlarms(resolve, events, todos),
	}
}

// ComponentName is empty: AllKnown spans every known component kind.
func (a *AllKnown) ComponentName() string { return "" }

// CollectSeries returns every VEVENT, VTODO and VJOURNAL series found
// under source.
func (a *AllKnown) CollectSeries(source *ical.Component, suppress SuppressErrors) ([]*series.Series, error) {
	var out []*series.Series
	for _, c := range []SeriesCollector{a.events, a.todos, a.journals} {
		s, err := c.CollectSeries(source, suppress)
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
	}
	return out, nil
}

// CollectAlarms returns every alarm series hanging off a VEVENT or VTODO
// found under source.
func (a *AllKnown) CollectAlarms(source *ical.Component, suppress SuppressErrors) ([]alarmseries.Source, error) {
	return a.alarms.CollectAlarms(source, suppress)
}

var (
	_ SeriesCollector = (*AllKnown)(nil)
	_ AlarmCollector  = (*AllKnown)(nil)
)

package recur

import (
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/alarmseries"
	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/icalerr"
	"github.com/go-ical/recur/internal/selection"
	"github.com/go-ical/recur/internal/series"
	"github.com/go-ical/recur/internal/timevalue"
)

// Query is a calendar that has been grouped into series and is ready to
// be unfolded at a given time, span, or page (spec §4.8's CalendarQuery).
// A Query's series list is built once and never replaced afterwards, but
// its component adapters compute their start and end lazily on first use,
// so a single Query is not safe for concurrent use; separate Query values
// built from the same calendar may be queried concurrently (spec §5).
type Query struct {
	resolve                  component.TZResolver
	keepRecurrenceAttributes bool
	suppress                 selection.SuppressErrors
	series                   []*series.Series
	alarms                   []alarmseries.Source
}

// Of builds a Query over calendar (typically a VCALENDAR). By default
// only VEVENT series are expanded; use WithComponents to query VTODO,
// VJOURNAL and VALARM series too. It returns an InvalidCalendarError if
// calendar declares a non-Gregorian CALSCALE (spec §4.8, Non-goal:
// non-Gregorian scales).
func Of(calendar *ical.Component, opts ...Option) (*Query, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if scale := calendar.Props.Get("CALSCALE"); scale != nil && scale.Value != "" && scale.Value != "GREGORIAN" {
		return nil, &icalerr.InvalidCalendar{Message: "Only Gregorian calendars are supported."}
	}

	q := &Query{resolve: cfg.resolve, keepRecurrenceAttributes: cfg.keepRecurrenceAttributes}
	if cfg.skipBadSeries {
		q.suppress = suppressInvalidCalendar
	}

	if cfg.allKnownComponents {
		all := selection.NewAllKnown(cfg.resolve)
		s, err := all.CollectSeries(calendar, q.suppress)
		if err != nil {
			return nil, err
		}
		q.series = s
		a, err := all.CollectAlarms(calendar, q.suppress)
		if err != nil {
			return nil, err
		}
		q.alarms = a
		return q, nil
	}

	events := selection.NewByName(ical.CompEvent, adaptEvent, cfg.resolve)
	todos := selection.NewByName(ical.CompToDo, adaptTodo, cfg.resolve)
	journals := selection.NewByName(ical.CompJournal, adaptJournal, cfg.resolve)
	byName := map[string]selection.SeriesCollector{
		ical.CompEvent:   events,
		ical.CompToDo:    todos,
		ical.CompJournal: journals,
	}

	for _, name := range cfg.componentNames {
		if name == ical.CompAlarm {
			a, err := selection.NewAlarms(cfg.resolve, events, todos).CollectAlarms(calendar, q.suppress)
			if err != nil {
				return nil, err
			}
			q.alarms = append(q.alarms, a...)
			continue
		}
		collector, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("recur: %q is an unknown component name; I only know VEVENT, VTODO, VJOURNAL, VALARM", name)
		}
		s, err := collector.CollectSeries(calendar, q.suppress)
		if err != nil {
			return nil, err
		}
		q.series = append(q.series, s...)
	}
	return q, nil
}

func adaptEvent(c *ical.Component, r component.TZResolver) component.Adapter {
	return component.NewEventAdapter(c, r)
}

func adaptTodo(c *ical.Component, r component.TZResolver) component.Adapter {
	return component.NewTodoAdapter(c, r)
}

func adaptJournal(c *ical.Component, r component.TZResolver) component.Adapter {
	return component.NewJournalAdapter(c, r)
}

func suppressInvalidCalendar(err error) bool {
	var invalid *icalerr.InvalidCalendar
	return errors.As(err, &invalid)
}

// At returns every component whose occurrence falls within date's
// natural span: a whole year, month or day for Year/YearMonth/Date/
// ParseDate, one hour/minute/second for Hour/Minute/Second, or a single
// instant for Instant/ParseDateTime (spec §4.8 `at`).
func (q *Query) At(date DateArg) ([]*ical.Component, error) {
	return q.between(span(date.t), span(date.end))
}

// Between returns every component occurring within [start, stop)
// (spec §4.8 `between`: start inclusive, stop exclusive).
func (q *Query) Between(start, stop DateArg) ([]*ical.Component, error) {
	return q.between(span(start.t), span(stop.t))
}

// BetweenFor returns every component occurring within [start, start+length)
// (spec §4.8 `between`, where stop is given as a duration from start).
func (q *Query) BetweenFor(start DateArg, length time.Duration) ([]*ical.Component, error) {
	return q.between(span(start.t), span(start.t.Add(length)))
}

func span(t time.Time) timevalue.Time { return timevalue.FromFloating(t) }

func (q *Query) between(spanStart, spanStop timevalue.Time) ([]*ical.Component, error) {
	items, err := q.occurrencesBetween(spanStart, spanStop)
	if err != nil {
		return nil, err
	}
	out := make([]*ical.Component, len(items))
	for i, it := range items {
		out[i] = it.render(q.keepRecurrenceAttributes)
	}
	return out, nil
}

// Count returns the number of recurring components this Query produces
// over [DateMin, DateMax) (spec §4.8 `count`).
func (q *Query) Count() (int, error) {
	it := q.All()
	n := 0
	for it.Next() {
		n++
	}
	return n, it.Err()
}

// First returns the earliest recurring component this Query produces. It
// returns an error if the query is empty (spec §4.8 `first`).
func (q *Query) First() (*ical.Component, error) {
	it := q.All()
	if it.Next() {
		return it.Component(), nil
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("recur: no components found")
}

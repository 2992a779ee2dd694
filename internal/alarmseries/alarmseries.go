// Package alarmseries expands VALARM components into concrete trigger
// occurrences, ported from series/alarm.py: absolute alarms (an explicit
// date-time TRIGGER), and alarms relative to their parent series' start or
// end (spec §4.5).
package alarmseries

import (
	"sort"
	"time"

	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/icalerr"
	"github.com/go-ical/recur/internal/occurrence"
	"github.com/go-ical/recur/internal/series"
	"github.com/go-ical/recur/internal/timevalue"
)

// Source is anything that can be asked for its alarm triggers inside a
// span: AbsoluteAlarmSeries, RelativeToStart and RelativeToEnd all satisfy
// it, which is what lets internal/selection collect a mix of all three
// under one slice.
type Source interface {
	Between(spanStart, spanStop timevalue.Time) ([]occurrence.AlarmOccurrence, error)
}

// Trigger describes one VALARM's TRIGGER/REPEAT/DURATION, resolved into
// the form the three series types below need.
type Trigger struct {
	Absolute       *timevalue.Time // non-nil if TRIGGER is a DATE-TIME
	Offset         time.Duration   // relative TRIGGER value otherwise
	RelatedToEnd   bool            // RELATED=END on a relative trigger
	Repeat         int
	RepeatDuration time.Duration
}

// ParseTrigger reads a VALARM's TRIGGER, REPEAT and DURATION properties.
func ParseTrigger(alarm *ical.Component, resolve component.TZResolver) (Trigger, error) {
	var t Trigger
	prop := alarm.Props.Get("TRIGGER")
	if prop == nil {
		return t, &icalerr.BadRuleStringFormat{Message: "VALARM missing TRIGGER", Rule: ""}
	}
	if prop.Params.Get("VALUE") == "DATE-TIME" {
		at, err := parseAbsoluteTrigger(prop.Value, prop.Params, resolve)
		if err != nil {
			return t, err
		}
		t.Absolute = &at
	} else {
		d, err := parseISODuration(prop.Value)
		if err != nil {
			return t, err
		}
		t.Offset = d
		t.RelatedToEnd = prop.Params.Get("RELATED") == "END"
	}
	if rep := alarm.Props.Get("REPEAT"); rep != nil {
		t.Repeat = atoi(rep.Value)
	}
	if dur := alarm.Props.Get("DURATION"); dur != nil {
		d, err := parseISODuration(dur.Value)
		if err != nil {
			return t, err
		}
		t.RepeatDuration = d
	}
	return t, nil
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func parseAbsoluteTrigger(raw string, params ical.Params, resolve component.TZResolver) (timevalue.Time, error) {
	return component.ParseTimeValue(raw, params, resolve)
}

func parseISODuration(s string) (time.Duration, error) {
	return component.ParseDuration(s)
}

// AbsoluteAlarmSeries collects every absolute (fixed-DATE-TIME) alarm
// trigger registered with Add, independent of any parent series' pattern.
type AbsoluteAlarmSeries struct {
	entries []absoluteEntry
}

type absoluteEntry struct {
	at       timevalue.Time
	alarm    *ical.Component
	parentID occurrence.ID
	parent   occurrence.Occurrence
}

// Add registers every trigger instance (the TRIGGER plus REPEAT× DURATION
// steps) for one absolute VALARM.
func (s *AbsoluteAlarmSeries) Add(trig Trigger, alarm *ical.Component, parent occurrence.Occurrence, parentID occurrence.ID) {
	if trig.Absolute == nil {
		return
	}
	at := *trig.Absolute
	s.entries = append(s.entries, absoluteEntry{at: at, alarm: alarm, parent: parent, parentID: parentID})
	for i := 0; i < trig.Repeat; i++ {
		at = at.Add(trig.RepeatDuration)
		s.entries = append(s.entries, absoluteEntry{at: at, alarm: alarm, parent: parent, parentID: parentID})
	}
}

// IsEmpty reports whether any absolute alarm has been registered.
func (s *AbsoluteAlarmSeries) IsEmpty() bool { return len(s.entries) == 0 }

// Between yields every absolute alarm trigger inside [spanStart, spanStop).
func (s *AbsoluteAlarmSeries) Between(spanStart, spanStop timevalue.Time) ([]occurrence.AlarmOccurrence, error) {
	var out []occurrence.AlarmOccurrence
	for _, e := range s.entries {
		in, err := timevalue.SpanContainsEvent(spanStart, spanStop, e.at, e.at)
		if err != nil {
			return nil, err
		}
		if in {
			out = append(out, occurrence.AlarmOccurrence{Trigger: e.at, Alarm: e.alarm, Parent: e.parent, ParentID: e.parentID})
		}
	}
	return out, nil
}

// parentLookup reports whether a series occurrence actually carries alarm,
// so that a relative-trigger series only fires for occurrences whose
// generating component still has that VALARM as a child (spec §4.5: an
// occurrence built from a THISANDFUTURE modification with no VALARM of its
// own should not alarm).
type parentLookup func(occ occurrence.Occurrence, alarm *ical.Component) bool

// RelativeToStart is a series of alarm triggers offset from each parent
// occurrence's start.
type RelativeToStart struct {
	Alarm    *ical.Component
	Series   *series.Series
	Offsets  []time.Duration
	HasAlarm parentLookup
}

// NewRelativeToStart builds the offset ladder (TRIGGER, then REPEAT more
// steps of DURATION) for a RELATED=START (or default) VALARM.
func NewRelativeToStart(alarm *ical.Component, s *series.Series, trig Trigger, hasAlarm parentLookup) *RelativeToStart {
	offsets := []time.Duration{trig.Offset}
	for i := 0; i < trig.Repeat; i++ {
		offsets = append(offsets, offsets[len(offsets)-1]+trig.RepeatDuration)
	}
	return &RelativeToStart{Alarm: alarm, Series: s, Offsets: offsets, HasAlarm: hasAlarm}
}

// Between yields every relative-to-start alarm trigger inside
// [spanStart, spanStop).
func (r *RelativeToStart) Between(spanStart, spanStop timevalue.Time) ([]occurrence.AlarmOccurrence, error) {
	var out []occurrence.AlarmOccurrence
	for _, offset := range r.Offsets {
		occs, err := r.Series.Between(spanStart.Add(-offset), spanStop.Add(-offset))
		if err != nil {
			return nil, err
		}
		for _, parent := range occs {
			if r.HasAlarm != nil && !r.HasAlarm(parent, r.Alarm) {
				continue
			}
			trigger := parent.Start.Add(offset)
			in, err := timevalue.SpanContainsEvent(spanStart, spanStop, trigger, trigger)
			if err != nil {
				return nil, err
			}
			if in {
				out = append(out, occurrence.AlarmOccurrence{Trigger: trigger, Alarm: r.Alarm, Parent: parent, ParentID: parent.Identity()})
			}
		}
	}
	return out, nil
}

// RelativeToEnd is a RelativeToStart series anchored on each parent
// occurrence's end instead of its start, with the half-open-window
// one-second correction spec §4.5 requires (the end is exclusive, so a
// trigger sitting exactly at it would otherwise be missed).
type RelativeToEnd struct {
	RelativeToStart
}

// NewRelativeToEnd builds the RELATED=END variant.
func NewRelativeToEnd(alarm *ical.Component, s *series.Series, trig Trigger, hasAlarm parentLookup) *RelativeToEnd {
	return &RelativeToEnd{*NewRelativeToStart(alarm, s, trig, hasAlarm)}
}

func (r *RelativeToEnd) Between(spanStart, spanStop timevalue.Time) ([]occurrence.AlarmOccurrence, error) {
	var out []occurrence.AlarmOccurrence
	for _, offset := range r.Offsets {
		occs, err := r.Series.Between(spanStart.Add(-offset-time.Second), spanStop.Add(-offset))
		if err != nil {
			return nil, err
		}
		for _, parent := range occs {
			if r.HasAlarm != nil && !r.HasAlarm(parent, r.Alarm) {
				continue
			}
			trigger := parent.End.Add(offset)
			in, err := timevalue.SpanContainsEvent(spanStart, spanStop, trigger, trigger)
			if err != nil {
				return nil, err
			}
			if in {
				out = append(out, occurrence.AlarmOccurrence{Trigger: trigger, Alarm: r.Alarm, Parent: parent, ParentID: parent.Identity()})
			}
		}
	}
	return out, nil
}

var (
	_ Source = (*AbsoluteAlarmSeries)(nil)
	_ Source = (*RelativeToStart)(nil)
	_ Source = (*RelativeToEnd)(nil)
)

// SortByTrigger orders alarm occurrences by trigger time, for callers that
// need deterministic output (pagination).
func SortByTrigger(occs []occurrence.AlarmOccurrence) {
	sort.Slice(occs, func(i, j int) bool {
		return timevalue.Compare(occs[i].Trigger, occs[j].Trigger) < 0
	})
}

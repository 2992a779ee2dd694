// Package occurrence defines the materialized result of expanding a
// series against a query span: a concrete instance with its own
// component view, plus the stable identity spec §4.6/§6 requires for
// pagination cursors.
package occurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/timevalue"
)

// Occurrence is one concrete instance of a series: the pattern-generated
// or modification component it came from, the start/end this particular
// instance resolved to, and the SEQUENCE to write on it (Series sets the
// highest SEQUENCE found across its core and modifications; -1 means none).
type Occurrence struct {
	Adapter    component.Adapter
	Start, End timevalue.Time
	Sequence   int
}

// IsInSpan reports whether this occurrence falls inside [spanStart, spanStop)
// per the same span-contains-event test the series builder used to select
// it (spec §4.6 `is_in_span`).
func (o Occurrence) IsInSpan(spanStart, spanStop timevalue.Time) (bool, error) {
	return timevalue.SpanContainsEvent(spanStart, spanStop, o.Start, o.End)
}

// AsComponent returns the ical.Component this occurrence should present
// to callers: a copy of the adapter's underlying component, re-timed to
// this occurrence's Start/End, with SEQUENCE set when Sequence is
// non-negative (spec §4.2 `as_component`).
func (o Occurrence) AsComponent(keepRecurrenceAttributes bool) *ical.Component {
	c := o.Adapter.AsComponent(o.Start, o.End, keepRecurrenceAttributes)
	if o.Sequence >= 0 {
		prop := ical.NewProp(ical.PropSequence)
		prop.Value = strconv.Itoa(o.Sequence)
		c.Props.Set(prop)
	}
	return c
}

// Identity returns o's stable identity (spec §4.6's 4-tuple): its
// component name and UID, its own RECURRENCE-ID if it has one, and its
// start.
func (o Occurrence) Identity() ID {
	rid := ""
	if r, ok := o.Adapter.RecurrenceID(); ok {
		rid = r.String()
	}
	return NewID(o.Adapter.ComponentName(), o, rid, o.Adapter.UID())
}

// ID is the stable identity of an Occurrence, used both for equality
// and as the raw material of a pagination cursor (spec §6):
// "<NAME>#<RID_ISO_OR_EMPTY>#<START_ISO>#<UID>".
type ID struct {
	Name           string
	RecurrenceID   string // ISO-8601, or "" if this occurrence has none
	Start          string // ISO-8601
	UID            string
}

// String renders the cursor string form of this ID.
func (id ID) String() string {
	return strings.Join([]string{id.Name, id.RecurrenceID, id.Start, id.UID}, "#")
}

// StartTime parses id's Start field back into a timevalue.Time, so a
// pagination cursor's position can be compared against live occurrences
// (spec §4.9's cursor re-scan).
func (id ID) StartTime() (timevalue.Time, error) {
	return timevalue.ParseTime(id.Start)
}

// ParseID parses a cursor string previously produced by ID.String. It
// returns an error if the string does not have exactly four '#'-separated
// fields.
func ParseID(s string) (ID, error) {
	parts := strings.SplitN(s, "#", 4)
	if len(parts) != 4 {
		return ID{}, fmt.Errorf("occurrence: malformed cursor %q", s)
	}
	return ID{Name: parts[0], RecurrenceID: parts[1], Start: parts[2], UID: parts[3]}, nil
}

// NewID builds the identity for occ, given its owning component's name
// and UID. recurrenceID is the empty string when occ is not itself a
// modification (i.e. it came from pattern expansion, not from an
// explicit RECURRENCE-ID component).
func NewID(name string, occ Occurrence, recurrenceID, uid string) ID {
	return ID{
		Name:         name,
		RecurrenceID: recurrenceID,
		Start:        isoOf(occ.Start),
		UID:          uid,
	}
}

func isoOf(t timevalue.Time) string {
	return t.String()
}

// AlarmOccurrence is one concrete trigger time for a VALARM, paired with
// the parent occurrence it alerts about (spec §4.5).
type AlarmOccurrence struct {
	Trigger  timevalue.Time
	Alarm    *ical.Component
	Parent   Occurrence
	ParentID ID
}

// IsInSpan reports whether this trigger falls inside [spanStart, spanStop).
func (ao AlarmOccurrence) IsInSpan(spanStart, spanStop timevalue.Time) (bool, error) {
	return timevalue.SpanContainsEvent(spanStart, spanStop, ao.Trigger, ao.Trigger)
}

// Identity returns ao's stable identity: its parent's name/uid/recurrence-id
// paired with this alarm's own trigger instant, since an alarm fires at
// its trigger rather than its parent's start (occurrence.py:
// AlarmOccurrence.id).
func (ao AlarmOccurrence) Identity() ID {
	return ID{Name: ao.ParentID.Name, RecurrenceID: ao.ParentID.RecurrenceID, Start: ao.Trigger.String(), UID: ao.ParentID.UID}
}

// AsComponent returns the parent component with a single VALARM child: a
// copy of Alarm with its TRIGGER rewritten to this absolute instant and
// REPEAT set to 0, since the repetition has already been expanded into
// separate AlarmOccurrences (ported from occurrence.py's
// AlarmOccurrence.as_component).
func (ao AlarmOccurrence) AsComponent(keepRecurrenceAttributes bool) *ical.Component {
	parent := ao.Parent.AsComponent(keepRecurrenceAttributes)
	alarmCopy := copyAlarm(ao.Alarm)
	setTrigger(alarmCopy, ao.Trigger)
	repeat := ical.NewProp("REPEAT")
	repeat.Value = "0"
	alarmCopy.Props.Set(repeat)
	parent.Children = []*ical.Component{alarmCopy}
	return parent
}

func copyAlarm(src *ical.Component) *ical.Component {
	cp := &ical.Component{Name: src.Name, Props: make(ical.Props, len(src.Props))}
	for name, props := range src.Props {
		cpProps := make([]ical.Prop, len(props))
		copy(cpProps, props)
		cp.Props[name] = cpProps
	}
	return cp
}

func setTrigger(alarm *ical.Component, t timevalue.Time) {
	prop := ical.NewProp("TRIGGER")
	prop.Params.Set("VALUE", "DATE-TIME")
	prop.Value = t.Wall().UTC().Format("20060102T150405Z")
	if t.IsZoned() && t.Location() != time.UTC {
		prop.Params.Set("TZID", t.Location().String())
		prop.Value = t.Wall().Format("20060102T150405")
	}
	alarm.Props.Set(prop)
}

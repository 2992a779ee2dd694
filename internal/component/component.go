// Package component adapts *ical.Component trees (VEVENT/VTODO/VJOURNAL)
// to the uniform view the rest of the engine works with: a single
// start/end/duration, the RRULE/RDATE/EXDATE sets, recurrence identity, and
// the span-extension/move arithmetic that RECURRENCE-ID modifications need
// (spec §4.2).
package component

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/icalerr"
	"github.com/go-ical/recur/internal/timevalue"
)

// TZResolver resolves a TZID parameter value (as found on a DTSTART/DTEND/
// RECURRENCE-ID property) to a *time.Location. The engine never parses
// VTIMEZONE blocks itself (spec §1 Non-goals: no tzinfo construction); this
// is the external collaborator spec §6 calls the tz provider.
type TZResolver func(tzid string) (*time.Location, error)

// Adapter is the uniform view of one calendar component that may recur:
// a VEVENT, VTODO or VJOURNAL. VALARMs have no Adapter; internal/alarmseries
// expands them relative to their parent's occurrences. Every method here
// mirrors spec §4.2 exactly.
type Adapter interface {
	// ComponentName is the iCalendar component name, e.g. "VEVENT".
	ComponentName() string
	UID() string
	Start() timevalue.Time
	End() timevalue.Time
	Duration() time.Duration
	RRules() []string
	RDates() []RDate
	EXDates() []timevalue.Time
	RecurrenceID() (id timevalue.Time, ok bool)
	ThisAndFuture() bool
	Sequence() int
	IsModification() bool
	IsInSpan(spanStart, spanStop timevalue.Time) (bool, error)
	ExtendQuerySpanBy() (subtractFromStart, addToStop time.Duration)
	MoveRecurrencesBy() time.Duration
	// AsComponent returns a shallow copy of the underlying component with
	// its start/end properties rewritten to the given occurrence, and
	// RECURRENCE-ID set to the given start if the source did not
	// already carry one. Unless keepRecurrenceAttributes is set, RRULE/
	// RDATE/EXDATE are stripped from the copy, since they describe the
	// whole series and are misleading on a single materialized instance.
	AsComponent(start, end timevalue.Time, keepRecurrenceAttributes bool) *ical.Component
	// Raw exposes the wrapped component, for callers (e.g. alarm
	// selection) that need to walk VALARM children.
	Raw() *ical.Component
}

// RDate is one RDATE value: either a single time point, or (per spec §4.2/
// SPEC_FULL.md §C.3) a period whose second field has already been
// normalized to a duration.
type RDate struct {
	Start    timevalue.Time
	Duration time.Duration // zero if this RDATE was not a period
	IsPeriod bool
}

// attributesToDeleteOnCopy are stripped from every adapter's AsComponent
// output when the caller asks for a "clean" copy (spec §4.2).
var attributesToDeleteOnCopy = []string{"RRULE", "RDATE", "EXDATE"}

// base implements the parts of Adapter that do not depend on which
// component kind (event/todo/journal) is wrapped: every field is derived
// from Start()/End(), which concrete adapters supply.
type base struct {
	comp     *ical.Component
	resolve  TZResolver
	name     string
	endProp  string // "" if this component kind has no end property
	rawStart func() (timevalue.Time, error)
	rawEnd   func() (timevalue.Time, error)

	start, end       timevalue.Time
	startEndResolved bool
	resolveErr       error
}

func (b *base) ComponentName() string { return b.name }

func (b *base) Raw() *ical.Component { return b.comp }

func (b *base) UID() string {
	if prop := b.comp.Props.Get(ical.PropUID); prop != nil {
		return prop.Value
	}
	return ""
}

// resolveSpan lazily computes Start/End once and lifts them onto a common
// time variant so every downstream comparison is safe (spec §3 "recurrence
// identity is UTC-normalized", §4.1 lift rules).
func (b *base) resolveSpan() error {
	if b.startEndResolved {
		return b.resolveErr
	}
	b.startEndResolved = true
	start, err := b.rawStart()
	if err != nil {
		b.resolveErr = err
		return err
	}
	end, err := b.rawEnd()
	if err != nil {
		b.resolveErr = err
		return err
	}
	lifted := timevalue.Lift(start, end)
	b.start, b.end = lifted[0], lifted[1]
	return nil
}

func (b *base) Start() timevalue.Time {
	_ = b.resolveSpan()
	return b.start
}

func (b *base) End() timevalue.Time {
	_ = b.resolveSpan()
	return b.end
}

func (b *base) Duration() time.Duration {
	return timevalue.Sub(b.End(), b.Start())
}

func (b *base) RRules() []string {
	props := b.comp.Props[ical.PropRecurrenceRule]
	seen := make(map[string]bool, len(props))
	var out []string
	for _, p := range props {
		if !seen[p.Value] {
			seen[p.Value] = true
			out = append(out, p.Value)
		}
	}
	return out
}

func (b *base) RDates() []RDate {
	props := b.comp.Props[ical.PropRecurrenceDates]
	var out []RDate
	for _, p := range props {
		for _, raw := range strings.Split(p.Value, ",") {
			rd, err := parseRDate(raw, p.Params, b.resolve)
			if err != nil {
				continue
			}
			out = append(out, rd)
		}
	}
	return out
}

func (b *base) EXDates() []timevalue.Time {
	props := b.comp.Props[ical.PropExceptionDates]
	var out []timevalue.Time
	for _, p := range props {
		for _, raw := range strings.Split(p.Value, ",") {
			t, err := parseTimeValue(raw, p.Params, b.resolve)
			if err != nil {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

func (b *base) RecurrenceID() (timevalue.Time, bool) {
	prop := b.comp.Props.Get(ical.PropRecurrenceID)
	if prop == nil {
		return timevalue.Time{}, false
	}
	t, err := parseTimeValue(prop.Value, prop.Params, b.resolve)
	if err != nil {
		return timevalue.Time{}, false
	}
	return t, true
}

func (b *base) ThisAndFuture() bool {
	prop := b.comp.Props.Get(ical.PropRecurrenceID)
	if prop == nil {
		return false
	}
	return prop.Params.Get("RANGE") == "THISANDFUTURE"
}

func (b *base) IsModification() bool {
	_, ok := b.RecurrenceID()
	return ok
}

func (b *base) Sequence() int {
	prop := b.comp.Props.Get(ical.PropSequence)
	if prop == nil {
		return -1
	}
	n, err := parseInt(prop.Value)
	if err != nil {
		return -1
	}
	return n
}

func (b *base) IsInSpan(spanStart, spanStop timevalue.Time) (bool, error) {
	return timevalue.SpanContainsEvent(spanStart, spanStop, b.Start(), b.End())
}

// ExtendQuerySpanBy implements SPEC_FULL.md §C.1's exact sign convention,
// ported from the original's extend_query_span_by.
func (b *base) ExtendQuerySpanBy() (time.Duration, time.Duration) {
	subtractFromStart := b.Duration()
	var addToStop time.Duration
	recurrenceID, ok := b.RecurrenceID()
	if !ok {
		return subtractFromStart, 0
	}
	lifted := timevalue.Lift(b.Start(), b.End(), recurrenceID)
	start, end, rid := lifted[0], lifted[1], lifted[2]
	if timevalue.Compare(start, rid) < 0 {
		addToStop = timevalue.Sub(rid, start)
	}
	if timevalue.Compare(start, rid) > 0 {
		subtractFromStart = timevalue.Sub(end, rid)
	}
	return subtractFromStart, addToStop
}

func (b *base) MoveRecurrencesBy() time.Duration {
	if !b.ThisAndFuture() {
		return 0
	}
	recurrenceID, ok := b.RecurrenceID()
	if !ok {
		return 0
	}
	lifted := timevalue.Lift(b.Start(), recurrenceID)
	return timevalue.Sub(lifted[0], lifted[1])
}

func (b *base) AsComponent(start, end timevalue.Time, keepRecurrenceAttributes bool) *ical.Component {
	cp := copyComponent(b.comp)
	setTimeProp(cp, ical.PropDateTimeStart, start)
	cp.Props.Del(ical.PropDuration)
	if b.endProp != "" {
		setTimeProp(cp, b.endProp, end)
	}
	if cp.Props.Get(ical.PropRecurrenceID) == nil {
		if p := cp.Props.Get(ical.PropDateTimeStart); p != nil {
			np := *p
			np.Name = ical.PropRecurrenceID
			cp.Props.Set(&np)
		}
	}
	if !keepRecurrenceAttributes {
		for _, name := range attributesToDeleteOnCopy {
			cp.Props.Del(name)
		}
	}
	return cp
}

func copyComponent(src *ical.Component) *ical.Component {
	cp := &ical.Component{Name: src.Name, Props: make(ical.Props, len(src.Props))}
	for name, props := range src.Props {
		cpProps := make([]ical.Prop, len(props))
		copy(cpProps, props)
		cp.Props[name] = cpProps
	}
	cp.Children = append([]*ical.Component(nil), src.Children...)
	return cp
}

func setTimeProp(c *ical.Component, name string, t timevalue.Time) {
	prop := ical.NewProp(name)
	switch {
	case t.IsDate():
		prop.Params.Set("VALUE", "DATE")
		prop.Value = t.Wall().Format("20060102")
	case t.IsZoned():
		if t.Location() != time.UTC {
			prop.Params.Set("TZID", t.Location().String())
			prop.Value = t.Wall().Format("20060102T150405")
		} else {
			prop.Value = t.Wall().UTC().Format("20060102T150405Z")
		}
	default: // Floating
		prop.Value = t.Wall().Format("20060102T150405")
	}
	c.Props.Set(prop)
}

func parseInt(s string) (int, error) {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0, &icalerr.BadRuleStringFormat{Message: "not an integer", Rule: s}
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

// ParseTimeValue is the exported form of parseTimeValue, used by
// internal/alarmseries to resolve a VALARM's absolute TRIGGER value.
func ParseTimeValue(raw string, params ical.Params, resolve TZResolver) (timevalue.Time, error) {
	return parseTimeValue(raw, params, resolve)
}

// ParseDuration is the exported form of parseISODuration, used by
// internal/alarmseries to resolve TRIGGER/DURATION values on a VALARM.
func ParseDuration(s string) (time.Duration, error) {
	return parseISODuration(s)
}

// parseTimeValue parses one DATE or DATE-TIME textual value (as found in
// DTSTART/DTEND/DUE/EXDATE/RECURRENCE-ID/RDATE) honoring VALUE=DATE and
// TZID parameters.
func parseTimeValue(raw string, params ical.Params, resolve TZResolver) (timevalue.Time, error) {
	raw = strings.TrimSpace(raw)
	if params.Get("VALUE") == "DATE" || len(raw) == 8 {
		t, err := time.ParseInLocation("20060102", raw, time.UTC)
		if err != nil {
			return timevalue.Time{}, err
		}
		return timevalue.FromDate(t), nil
	}
	if strings.HasSuffix(raw, "Z") {
		t, err := time.ParseInLocation("20060102T150405Z", raw, time.UTC)
		if err != nil {
			return timevalue.Time{}, err
		}
		return timevalue.NewZoned(t), nil
	}
	if tzid := params.Get("TZID"); tzid != "" && resolve != nil {
		loc, err := resolve(tzid)
		if err != nil {
			return timevalue.Time{}, err
		}
		t, err := time.ParseInLocation("20060102T150405", raw, loc)
		if err != nil {
			return timevalue.Time{}, err
		}
		return timevalue.NewZoned(t), nil
	}
	t, err := time.ParseInLocation("20060102T150405", raw, time.UTC)
	if err != nil {
		return timevalue.Time{}, err
	}
	return timevalue.FromFloating(t), nil
}

// parseRDate parses one RDATE value, which may be a bare DATE/DATE-TIME or,
// when VALUE=PERIOD, a "<start>/<end-or-duration>" pair. Per SPEC_FULL.md
// §C.3 the second field is always normalized to a duration here.
func parseRDate(raw string, params ical.Params, resolve TZResolver) (RDate, error) {
	if params.Get("VALUE") != "PERIOD" {
		t, err := parseTimeValue(raw, params, resolve)
		if err != nil {
			return RDate{}, err
		}
		return RDate{Start: t}, nil
	}
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return RDate{}, &icalerr.BadRuleStringFormat{Message: "malformed PERIOD rdate", Rule: raw}
	}
	start, err := parseTimeValue(parts[0], params, resolve)
	if err != nil {
		return RDate{}, err
	}
	if strings.HasPrefix(parts[1], "P") {
		d, err := parseISODuration(parts[1])
		if err != nil {
			return RDate{}, err
		}
		return RDate{Start: start, Duration: d, IsPeriod: true}, nil
	}
	end, err := parseTimeValue(parts[1], params, resolve)
	if err != nil {
		return RDate{}, err
	}
	return RDate{Start: start, Duration: timevalue.Sub(end, start), IsPeriod: true}, nil
}

// parseISODuration parses an RFC 5545 DURATION value, e.g. "PT1H30M" or
// "P3D".
func parseISODuration(s string) (time.Duration, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	if neg || strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if s == "" || s[0] != 'P' {
		return 0, &icalerr.BadRuleStringFormat{Message: "malformed duration", Rule: orig}
	}
	s = s[1:]
	var d time.Duration
	inTime := false
	num := 0
	haveNum := false
	for _, r := range s {
		switch {
		case r == 'T':
			inTime = true
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			haveNum = true
		case r == 'W':
			d += time.Duration(num) * 7 * 24 * time.Hour
			haveNum, num = false, 0
		case r == 'D':
			d += time.Duration(num) * 24 * time.Hour
			haveNum, num = false, 0
		case r == 'H':
			d += time.Duration(num) * time.Hour
			haveNum, num = false, 0
		case r == 'M':
			if inTime {
				d += time.Duration(num) * time.Minute
			} else {
				d += time.Duration(num) * 30 * 24 * time.Hour
			}
			haveNum, num = false, 0
		case r == 'S':
			d += time.Duration(num) * time.Second
			haveNum, num = false, 0
		default:
			return 0, &icalerr.BadRuleStringFormat{Message: "malformed duration", Rule: orig}
		}
	}
	if haveNum {
		return 0, &icalerr.BadRuleStringFormat{Message: "malformed duration", Rule: orig}
	}
	if neg {
		d = -d
	}
	return d, nil
}

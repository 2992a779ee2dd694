// Package series implements spec §4.4's Series: a component's core plus
// its RECURRENCE-ID modifications, combined into one windowed occurrence
// generator. Series.Between is the engine's centerpiece, ported from
// series/rrule.py's Series.between (see DESIGN.md).
package series

import (
	"sort"
	"time"

	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/occurrence"
	"github.com/go-ical/recur/internal/rruleset"
	"github.com/go-ical/recur/internal/timevalue"
)

// recurrenceKey canonicalizes a recurrence-id for lookup: the spec's
// to_recurrence_ids yields both a UTC-normalized key and a naive local-time
// fallback key; this module uses the single UTC-normalized key, since that
// is documented as the canonical one and Go's timezone database makes the
// fallback unnecessary.
func recurrenceKey(t timevalue.Time) string {
	if t.IsZoned() {
		return "Z:" + t.Wall().UTC().Format(time.RFC3339)
	}
	return t.Kind().String() + ":" + t.String()
}

// Series is one component's full recurrence picture: a core (the
// non-modification component carrying RRULE/RDATE/EXDATE, if any) plus
// zero or more RECURRENCE-ID modifications keyed by the instant they
// replace.
type Series struct {
	uid  string
	core component.Adapter // nil if every component is a modification

	modifications map[string]component.Adapter // recurrenceKey -> highest-SEQUENCE adapter
	thisAndFuture []timevalue.Time              // sorted ascending
	thisAndFutureAdapter map[string]component.Adapter

	rule *coreRule // nil if core is nil

	sequence                           int
	subtractFromStart, addToStop       time.Duration
}

type coreRule struct {
	rules    []*rruleset.Rule
	rdates   []component.RDate
	exdatesKey map[string]bool
	exdatesDay map[string]bool // date-only key, for date-typed EXDATEs
	start    timevalue.Time
	allDates bool
}

// UID is the UID shared by every component in this series.
func (s *Series) UID() string { return s.uid }

// New builds a Series from every component sharing one UID: at most one
// core (highest SEQUENCE wins on a tie for non-modification components)
// and any number of RECURRENCE-ID modifications (highest SEQUENCE wins per
// recurrence-id, per spec §3's core/modification partition).
func New(components []component.Adapter) (*Series, error) {
	s := &Series{
		modifications:        make(map[string]component.Adapter),
		thisAndFutureAdapter: make(map[string]component.Adapter),
	}
	if len(components) == 0 {
		return s, nil
	}
	s.uid = components[0].UID()

	var core component.Adapter
	var thisAndFutureIDs []timevalue.Time
	maxSeq := -1
	for _, c := range components {
		if c.Sequence() > maxSeq {
			maxSeq = c.Sequence()
		}
		if !c.IsModification() {
			core = pickHighestSequence(core, c)
			continue
		}
		rid, _ := c.RecurrenceID()
		key := recurrenceKey(rid)
		s.modifications[key] = pickHighestSequence(s.modifications[key], c)
		if c.ThisAndFuture() {
			thisAndFutureIDs = append(thisAndFutureIDs, rid)
			s.thisAndFutureAdapter[recurrenceKey(rid)] = c
		}
	}
	s.core = core
	sort.Slice(thisAndFutureIDs, func(i, j int) bool {
		return timevalue.Compare(thisAndFutureIDs[i], thisAndFutureIDs[j]) < 0
	})
	s.thisAndFuture = thisAndFutureIDs
	s.sequence = maxSeq

	if core != nil {
		r, err := buildCoreRule(core)
		if err != nil {
			return nil, err
		}
		s.rule = r
	}

	s.computeSpanExtension()
	return s, nil
}

func pickHighestSequence(a, b component.Adapter) component.Adapter {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Sequence() >= a.Sequence() {
		return b
	}
	return a
}

func buildCoreRule(core component.Adapter) (*coreRule, error) {
	r := &coreRule{
		start:      core.Start(),
		allDates:   core.Start().IsDate() && core.End().IsDate(),
		exdatesKey: make(map[string]bool),
		exdatesDay: make(map[string]bool),
	}
	for _, ex := range core.EXDates() {
		r.exdatesKey[recurrenceKey(ex)] = true
		if ex.IsDate() {
			r.exdatesDay[ex.String()] = true
		}
	}
	r.rdates = core.RDates()

	for _, ruleText := range core.RRules() {
		rr, err := rruleset.New(ruleText, core.Start(), r.allDates)
		if err != nil {
			return nil, err
		}
		r.rules = append(r.rules, rr)
	}
	return r, nil
}

// computeSpanExtension sets the pointwise-max span widening this series needs so
// that an expanded RRULE window still finds every modification's
// RECURRENCE-ID (SPEC_FULL.md §C.1).
func (s *Series) computeSpanExtension() {
	if s.core != nil {
		s.subtractFromStart, s.addToStop = s.core.ExtendQuerySpanBy()
	}
	for _, rid := range s.thisAndFuture {
		adapter := s.thisAndFutureAdapter[recurrenceKey(rid)]
		sub, add := adapter.ExtendQuerySpanBy()
		if sub > s.subtractFromStart {
			s.subtractFromStart = sub
		}
		if add > s.addToStop {
			s.addToStop = add
		}
	}
}

// componentForRecurrenceID returns the component that supplies the
// still-in-effect THISANDFUTURE attributes for recurrenceID: either the
// core, or the latest THISANDFUTURE modification at or before it (spec
// §4.2's move_recurrences_by / RANGE=THISANDFUTURE semantics).
func (s *Series) componentForRecurrenceID(recurrenceID timevalue.Time) component.Adapter {
	result := s.core
	for _, rid := range s.thisAndFuture {
		if timevalue.Compare(rid, recurrenceID) <= 0 {
			result = s.thisAndFutureAdapter[recurrenceKey(rid)]
		} else {
			break
		}
	}
	return result
}

// ruleBetween enumerates every pattern-generated instant in
// [spanStart, spanStop], honoring each RRULE's UNTIL bound exactly (rrule-go
// itself handles UNTIL, but a rewritten UNTIL can occasionally run one step
// long; this re-checks it, mirroring the original's rrule_between).
func (s *Series) ruleBetween(spanStart, spanStop timevalue.Time) []timevalue.Time {
	if s.rule == nil {
		return nil
	}
	lifted := timevalue.Lift(spanStart, spanStop)
	start, stop := lifted[0].Wall(), lifted[1].Wall()

	kind := lifted[0].Kind()
	asTime := func(t time.Time) timevalue.Time {
		switch kind {
		case timevalue.Date:
			return timevalue.FromDate(t)
		case timevalue.Zoned:
			return timevalue.NewZoned(t)
		default:
			return timevalue.FromFloating(t)
		}
	}

	var out []timevalue.Time
	seen := make(map[string]bool)
	add := func(t time.Time) {
		value := asTime(t)
		k := recurrenceKey(value)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, value)
	}

	for _, rule := range s.rule.rules {
		for _, t := range rule.RRule.Between(start, stop, true) {
			if rule.Until != nil && timevalue.Greater(asTime(t), *rule.Until) {
				continue
			}
			add(t)
		}
	}
	for _, rd := range s.rule.rdates {
		cmp := timevalue.Lift(rd.Start, lifted[0], lifted[1])
		if !timevalue.Greater(cmp[0], cmp[2]) && !timevalue.Greater(cmp[1], cmp[0]) {
			add(cmp[0].Wall())
		}
	}
	// The component's own start is always a candidate occurrence unless an
	// RRULE's UNTIL has already passed it (ported from the original's
	// final `rule_set.rdate(self.start)`).
	includeStart := true
	for _, rule := range s.rule.rules {
		if rule.Until != nil && timevalue.Greater(s.rule.start, *rule.Until) {
			includeStart = false
		}
	}
	if includeStart {
		add(s.rule.start.Wall())
	}
	return out
}

// Between yields every occurrence of this series inside
// [spanStart, spanStop). It is not required to return them in order (spec
// §4.4/§5). This ports Series.between's two-pass merge: first the
// pattern-generated instances (checked against EXDATE and overridden by any
// matching modification), then any modification never reached by the
// pattern pass (e.g. one moved far outside the base rule's cadence).
func (s *Series) Between(spanStart, spanStop timevalue.Time) ([]occurrence.Occurrence, error) {
	var out []occurrence.Occurrence
	returnedModifications := make(map[string]bool)

	if s.rule != nil {
		expandedStart := spanStart.Add(-s.subtractFromStart)
		expandedStop := spanStop.Add(s.addToStop)
		returnedStarts := make(map[string]bool)
		for _, start := range s.ruleBetween(expandedStart, expandedStop) {
			key := recurrenceKey(start)
			if returnedStarts[key] || s.rule.exdatesKey[key] || s.rule.exdatesDay[start.String()] {
				continue
			}
			adapter, isModification := s.modifications[key], s.modifications[key] != nil

			var occ occurrence.Occurrence
			if !isModification {
				returnedStarts[key] = true
				base := s.componentForRecurrenceID(start)
				moveBy := base.MoveRecurrencesBy()
				occStart := start.Add(moveBy)
				duration := base.Duration()
				for _, rd := range s.rule.rdates {
					if recurrenceKey(rd.Start) == key && rd.IsPeriod {
						duration = rd.Duration
						break
					}
				}
				occEnd := occStart.Add(duration)
				occ = occurrence.Occurrence{Adapter: base, Start: occStart, End: occEnd, Sequence: s.sequence}
			} else {
				if returnedModifications[key] {
					continue
				}
				returnedModifications[key] = true
				occ = occurrence.Occurrence{Adapter: adapter, Start: adapter.Start(), End: adapter.End(), Sequence: s.sequence}
			}
			in, err := occ.IsInSpan(spanStart, spanStop)
			if err != nil {
				return nil, err
			}
			if in {
				out = append(out, occ)
			}
		}
	}

	for key, modification := range s.modifications {
		if returnedModifications[key] {
			continue
		}
		in, err := modification.IsInSpan(spanStart, spanStop)
		if err != nil {
			return nil, err
		}
		if in {
			returnedModifications[key] = true
			out = append(out, occurrence.Occurrence{Adapter: modification, Start: modification.Start(), End: modification.End(), Sequence: s.sequence})
		}
	}
	return out, nil
}

// HasCore reports whether this series has a non-modification component.
func (s *Series) HasCore() bool { return s.core != nil }

// Components returns every raw adapter feeding this series: its core (if
// any) followed by its modifications, in no particular order. Alarm
// selection walks these to find each component's VALARM children (spec
// §4.5; selection/alarm.py's `for component in series.components`).
func (s *Series) Components() []component.Adapter {
	var out []component.Adapter
	if s.core != nil {
		out = append(out, s.core)
	}
	for _, m := range s.modifications {
		out = append(out, m)
	}
	return out
}

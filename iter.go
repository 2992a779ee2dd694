package recur

import (
	"sort"
	"time"

	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/timevalue"
)

// DateMin and DateMax are the safety bounds spec §6 requires: All and a
// Paginate call with no explicit earliestEnd never produce an occurrence
// outside [DateMin, DateMax).
var (
	DateMin = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	DateMax = time.Date(2038, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// queryItem is the common shape internal/occurrence.Occurrence and
// internal/occurrence.AlarmOccurrence are flattened to before merging,
// sorting and de-duplicating them (the root package is the one place
// that needs both kinds at once).
type queryItem struct {
	start  timevalue.Time
	id     string
	render func(keepRecurrenceAttributes bool) *ical.Component
}

// occurrencesBetween gathers every series' and alarm series' occurrences
// inside [spanStart, spanStop), applying the query's error-suppression
// policy per series (spec §4.7).
func (q *Query) occurrencesBetween(spanStart, spanStop timevalue.Time) ([]queryItem, error) {
	var out []queryItem
	for _, s := range q.series {
		occs, err := s.Between(spanStart, spanStop)
		if err != nil {
			if q.suppress != nil && q.suppress(err) {
				continue
			}
			return nil, err
		}
		for _, o := range occs {
			o := o
			out = append(out, queryItem{start: o.Start, id: o.Identity().String(), render: o.AsComponent})
		}
	}
	for _, a := range q.alarms {
		occs, err := a.Between(spanStart, spanStop)
		if err != nil {
			if q.suppress != nil && q.suppress(err) {
				continue
			}
			return nil, err
		}
		for _, ao := range occs {
			ao := ao
			out = append(out, queryItem{start: ao.Trigger, id: ao.Identity().String(), render: ao.AsComponent})
		}
	}
	return out, nil
}

// OccurrenceIter is a lazy, order-preserving, de-duplicated scan over a
// Query's occurrences at or after a starting instant (spec §4.8 `after`).
// Use it like a bufio.Scanner: call Next until it returns false, reading
// Component after each true return and checking Err once Next is done.
type OccurrenceIter struct {
	q           *Query
	cur         timevalue.Time
	timeSpan    time.Duration
	minTimeSpan time.Duration
	done        bool
	pending     []queryItem
	seen        map[string]bool
	current     *ical.Component
	err         error
}

// After returns an iterator over every component occurring during or
// after earliestEnd, in strictly non-decreasing order of start, each
// occurrence yielded exactly once even if it spans several internal
// probe windows (spec §4.8 `after`'s widening-scan guarantee).
func (q *Query) After(earliestEnd DateArg) *OccurrenceIter {
	return newOccurrenceIter(q, span(earliestEnd.t))
}

func newOccurrenceIter(q *Query, start timevalue.Time) *OccurrenceIter {
	return &OccurrenceIter{
		q:           q,
		cur:         start,
		timeSpan:    24 * time.Hour,
		minTimeSpan: 15 * time.Minute,
		seen:        make(map[string]bool),
	}
}

// All returns an iterator over every component from DateMin onward
// (spec §4.8 `all`).
func (q *Query) All() *OccurrenceIter {
	return q.After(Instant(DateMin))
}

// advance computes the next probe window's end, clamped to DateMax. Go's
// time.Time arithmetic does not overflow the way Python's datetime does,
// so this clamps on the candidate exceeding DateMax directly rather than
// catching an OverflowError.
func (it *OccurrenceIter) advance() (nextEnd timevalue.Time, markDone, stopNow bool) {
	if it.cur.Wall().After(DateMax) {
		return timevalue.Time{}, false, true
	}
	candidate := it.cur.Wall().Add(it.timeSpan)
	if candidate.After(DateMax) {
		return span(DateMax), true, false
	}
	return span(candidate), false, false
}

// Next advances the iterator and reports whether a component is ready.
// It returns false at the end of the stream or after an error; check Err
// to distinguish the two.
func (it *OccurrenceIter) Next() bool {
	item, ok := it.nextItem()
	if !ok {
		return false
	}
	it.current = item.render(it.q.keepRecurrenceAttributes)
	return true
}

// nextItem is Next's underlying mechanism, returning the raw queryItem
// instead of a rendered component. page.go uses it directly so it can
// inspect an occurrence's start/id before deciding whether to render it.
func (it *OccurrenceIter) nextItem() (queryItem, bool) {
	if it.err != nil {
		return queryItem{}, false
	}
	for {
		if len(it.pending) > 0 {
			item := it.pending[0]
			it.pending = it.pending[1:]
			return item, true
		}
		if it.done {
			return queryItem{}, false
		}
		nextEnd, markDone, stopNow := it.advance()
		if stopNow {
			it.done = true
			return queryItem{}, false
		}
		items, err := it.q.occurrencesBetween(it.cur, nextEnd)
		if err != nil {
			it.err = err
			return queryItem{}, false
		}
		sort.Slice(items, func(i, j int) bool { return timevalue.Compare(items[i].start, items[j].start) < 0 })

		var fresh []queryItem
		for _, item := range items {
			if !it.seen[item.id] {
				it.seen[item.id] = true
				fresh = append(fresh, item)
			}
		}
		if len(items) == 0 {
			it.timeSpan *= 2
		} else {
			it.timeSpan /= 2
		}
		if it.timeSpan < it.minTimeSpan {
			it.timeSpan = it.minTimeSpan
		}
		it.cur = nextEnd
		if markDone {
			it.done = true
		}
		it.pending = fresh
	}
}

// Component returns the occurrence Next just advanced to. Its result is
// only valid after a call to Next that returned true.
func (it *OccurrenceIter) Component() *ical.Component { return it.current }

// Err returns the first error that stopped iteration, or nil if the
// stream simply ran out.
func (it *OccurrenceIter) Err() error { return it.err }

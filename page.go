package recur

import (
	"fmt"

	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/occurrence"
	"github.com/go-ical/recur/internal/timevalue"
)

// Page is one page of a Paginate result: a bounded slice of components
// plus the cursor to fetch the page after it (spec §4.9, grounded on
// pages.py's Page).
type Page struct {
	components []*ical.Component
	nextPageID string
}

// Components returns this page's components, in non-decreasing start
// order.
func (p *Page) Components() []*ical.Component { return p.components }

// Len returns the number of components on this page.
func (p *Page) Len() int { return len(p.components) }

// NextPageID returns the cursor to pass to Query.Paginate for the page
// after this one, or "" if this is the last page.
func (p *Page) NextPageID() string { return p.nextPageID }

// HasNextPage reports whether a page follows this one.
func (p *Page) HasNextPage() bool { return p.nextPageID != "" }

// IsLast reports whether this is the final page.
func (p *Page) IsLast() bool { return p.nextPageID == "" }

// Pages is a cursor over a Query's occurrences, grouped into fixed-size
// pages (spec §4.9, grounded on pages.py's Pages). Call Next repeatedly
// until it returns false; each call's Page.NextPageID can be persisted
// and handed back to Query.Paginate to resume later.
type Pages struct {
	it   *OccurrenceIter
	stop *timevalue.Time
	size int
	keep bool
	next *queryItem
}

func newPages(it *OccurrenceIter, size int, stop *timevalue.Time, keep bool) *Pages {
	p := &Pages{it: it, size: size, stop: stop, keep: keep}
	if item, ok := it.nextItem(); ok {
		if stop == nil || timevalue.Greater(*stop, item.start) {
			cp := item
			p.next = &cp
		}
	}
	return p
}

// Next produces the next page. It returns ok=false once every page has
// been produced; unlike the underlying OccurrenceIter, running dry is
// not an error condition, so there is no separate Err method.
func (p *Pages) Next() (*Page, bool) {
	if p.next == nil {
		return nil, false
	}
	items := []queryItem{*p.next}
	lastItem := *p.next
	appendedLast := true

	for {
		item, ok := p.it.nextItem()
		if !ok {
			break
		}
		if p.stop != nil && timevalue.Greater(item.start, *p.stop) {
			break
		}
		lastItem = item
		if len(items) < p.size {
			items = append(items, item)
			appendedLast = true
		} else {
			appendedLast = false
			break
		}
	}

	if appendedLast {
		p.next = nil
	} else {
		cp := lastItem
		p.next = &cp
	}

	components := make([]*ical.Component, len(items))
	for i, it := range items {
		components[i] = it.render(p.keep)
	}
	nextID := ""
	if p.next != nil {
		nextID = p.next.id
	}
	return &Page{components: components, nextPageID: nextID}, true
}

// Paginate returns a Pages cursor over this Query's occurrences, each
// page holding at most pageSize components (spec §4.9). earliestEnd
// defaults to DateMin and latestStart to no upper bound when nil. A
// non-empty nextPageID resumes a prior Pages at the occurrence it names:
// the underlying series are re-scanned from that occurrence's start, so
// a calendar edited between calls can still recover (by id, or by the
// first occurrence starting no earlier) instead of silently skipping or
// repeating results.
func (q *Query) Paginate(pageSize int, earliestEnd, latestStart *DateArg, nextPageID string) (*Pages, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("recur: a page must have at least one component, not %d", pageSize)
	}

	var stop *timevalue.Time
	if latestStart != nil {
		s := span(latestStart.t)
		stop = &s
	}
	earliest := span(DateMin)
	if earliestEnd != nil {
		earliest = span(earliestEnd.t)
	}

	it := newOccurrenceIter(q, earliest)

	if nextPageID != "" {
		cursor, err := occurrence.ParseID(nextPageID)
		if err != nil {
			return nil, err
		}
		cursorStart, err := cursor.StartTime()
		if err != nil {
			return nil, err
		}
		if !timevalue.Greater(earliest, cursorStart) {
			it = resumeAt(q, cursorStart, nextPageID)
		}
	}

	return newPages(it, pageSize, stop, q.keepRecurrenceAttributes), nil
}

// resumeAt rebuilds the occurrence stream starting at cursorStart, then
// fast-forwards it to the occurrence identified by cursorID: exactly, if
// still present, or otherwise the first occurrence starting no earlier
// than the cursor (so an occurrence that no longer exists does not
// silently drop every occurrence that used to come after it).
func resumeAt(q *Query, cursorStart timevalue.Time, cursorID string) *OccurrenceIter {
	scan := newOccurrenceIter(q, cursorStart)
	var lost []queryItem
	for {
		item, ok := scan.nextItem()
		if !ok {
			return scan
		}
		lost = append(lost, item)
		if item.id == cursorID {
			scan.pending = append([]queryItem{item}, scan.pending...)
			return scan
		}
		if timevalue.Greater(item.start, cursorStart) {
			scan.pending = append(append([]queryItem{}, lost...), scan.pending...)
			return scan
		}
	}
}

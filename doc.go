// Package recur expands recurring iCalendar components (VEVENT, VTODO,
// VJOURNAL and their VALARM children) into their concrete occurrences
// over a queried span, honoring RRULE/RDATE/EXDATE and RECURRENCE-ID
// modifications per RFC 5545.
//
// A Query is built once from a parsed *ical.Component (typically a
// VCALENDAR) with Of, then queried repeatedly with At, Between, After,
// All or Paginate. Construction groups the calendar's components into
// series. Components resolve their start and end lazily on first use, so
// a single Query is not safe for concurrent use; separate Query values
// built from the same calendar may be queried concurrently.
package recur

// Package timevalue implements the time algebra described in spec §4.1:
// a tagged union of Date, Floating (naive datetime) and Zoned (datetime
// with timezone) values, lifted to a common variant before comparison or
// arithmetic, plus the span-containment test the rest of the engine is
// built on.
package timevalue

import (
	"fmt"
	"time"

	"github.com/go-ical/recur/internal/icalerr"
)

// Kind tags which of the three iCalendar time variants a Time holds.
type Kind uint8

const (
	// Date is a year/month/day value with no time of day.
	Date Kind = iota
	// Floating is a datetime without an attached timezone.
	Floating
	// Zoned is a datetime with an attached timezone.
	Zoned
)

// String names the Kind, for use as part of a cache/lookup key.
func (k Kind) String() string {
	switch k {
	case Date:
		return "date"
	case Floating:
		return "floating"
	default:
		return "zoned"
	}
}

// Time is one value of the iCalendar time algebra. The zero Time is a
// Date at the zero Go time; callers should always construct one of the
// New* functions below.
type Time struct {
	kind Kind
	wall time.Time
}

// NewDate returns a Date value for the given year/month/day.
func NewDate(year int, month time.Month, day int) Time {
	return Time{kind: Date, wall: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NewFloating returns a Floating (naive) datetime value. The wall-clock
// fields are taken as given; no timezone is attached.
func NewFloating(year int, month time.Month, day, hour, min, sec, nsec int) Time {
	return Time{kind: Floating, wall: time.Date(year, month, day, hour, min, sec, nsec, time.UTC)}
}

// NewZoned wraps an aware time.Time (t.Location() must be meaningful) as
// a Zoned value.
func NewZoned(t time.Time) Time {
	return Time{kind: Zoned, wall: t}
}

// FromDate truncates a Go time.Time to a Date value, discarding time of
// day and location.
func FromDate(t time.Time) Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// FromFloating strips the location off a Go time.Time and keeps its wall
// clock fields as a Floating value.
func FromFloating(t time.Time) Time {
	return NewFloating(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

// Kind reports which variant this Time holds.
func (t Time) Kind() Kind { return t.kind }

// IsDate reports whether this is a Date value.
func (t Time) IsDate() bool { return t.kind == Date }

// IsFloating reports whether this is a Floating value.
func (t Time) IsFloating() bool { return t.kind == Floating }

// IsZoned reports whether this is a Zoned value.
func (t Time) IsZoned() bool { return t.kind == Zoned }

// Location returns the attached location for a Zoned value, or nil
// otherwise.
func (t Time) Location() *time.Location {
	if t.kind != Zoned {
		return nil
	}
	return t.wall.Location()
}

// Wall exposes the underlying wall-clock time.Time. For Date and
// Floating values its Location is a meaningless placeholder (time.UTC);
// only the calendar fields (year, month, ...) are significant.
func (t Time) Wall() time.Time { return t.wall }

// Add returns t shifted by d, preserving its Kind. For a Zoned value this
// is real physical-time arithmetic (may cross a DST boundary); for Date
// and Floating it is wall-clock arithmetic.
func (t Time) Add(d time.Duration) Time {
	return Time{kind: t.kind, wall: t.wall.Add(d)}
}

// Sub returns t-u as a duration, lifting both to a common variant first.
func Sub(t, u Time) time.Duration {
	lt, lu := liftPair(t, u)
	return lt.wall.Sub(lu.wall)
}

// String renders the Time for diagnostics; it satisfies fmt.Stringer so
// Time values can be embedded directly in icalerr errors.
func (t Time) String() string {
	switch t.kind {
	case Date:
		return t.wall.Format("2006-01-02")
	case Floating:
		return t.wall.Format("2006-01-02T15:04:05")
	default:
		return t.wall.Format(time.RFC3339)
	}
}

var _ fmt.Stringer = Time{}

// ParseTime parses the text String produces back into a Time, inferring
// the Kind from its shape (plain date, "T"-separated naive datetime, or
// an offset/zone-bearing RFC3339 datetime). It exists so an occurrence
// identity's start field survives a round trip through a pagination
// cursor string (spec §4.9).
func ParseTime(s string) (Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return FromDate(t), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return NewFloating(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond()), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Time{}, fmt.Errorf("timevalue: %q is not a recognized time value", s)
	}
	return NewZoned(t), nil
}

// Lift converts every value in ts to a common variant: Zoned wins if any
// value is already Zoned (using the first Zoned timezone encountered as
// the context for promoting Date/Floating values); otherwise, if not all
// values are Date, every value becomes Floating; if all values are Date,
// they are returned unchanged.
func Lift(ts ...Time) []Time {
	allDate := true
	var tz *time.Location
	for _, t := range ts {
		if t.kind != Date {
			allDate = false
		}
		if t.kind == Zoned && tz == nil {
			tz = t.wall.Location()
		}
	}
	if allDate {
		return ts
	}
	out := make([]Time, len(ts))
	for i, t := range ts {
		out[i] = convertTo(t, tz)
	}
	return out
}

func liftPair(a, b Time) (Time, Time) {
	lifted := Lift(a, b)
	return lifted[0], lifted[1]
}

// convertTo promotes t into the datetime world anchored at tz (nil means
// Floating). A value that already carries its own timezone keeps it: we
// never override an explicit Zoned value's offset.
func convertTo(t Time, tz *time.Location) Time {
	switch t.kind {
	case Date:
		y, m, d := t.wall.Date()
		if tz != nil {
			return NewZoned(time.Date(y, m, d, 0, 0, 0, 0, tz))
		}
		return NewFloating(y, m, d, 0, 0, 0, 0)
	case Zoned:
		return t
	default: // Floating
		if tz != nil {
			y, m, d := t.wall.Date()
			h, mi, s := t.wall.Clock()
			return NewZoned(time.Date(y, m, d, h, mi, s, t.wall.Nanosecond(), tz))
		}
		return t
	}
}

// Compare returns -1, 0 or 1 as a is before, equal to, or after b, after
// lifting both to a common variant.
func Compare(a, b Time) int {
	la, lb := liftPair(a, b)
	switch {
	case la.wall.Before(lb.wall):
		return -1
	case la.wall.After(lb.wall):
		return 1
	default:
		return 0
	}
}

// Greater reports whether a sorts strictly after b.
func Greater(a, b Time) bool { return Compare(a, b) > 0 }

// Equal reports whether a and b denote the same instant/date once lifted.
func Equal(a, b Time) bool { return Compare(a, b) == 0 }

// RequiresNormalize reports whether loc needs an explicit
// localize/normalize step after arithmetic (the pytz-style capability
// probe from spec §4.1/§9). Go's *time.Location resolves wall-clock to
// instant without a separate step, so this always returns false; it is
// the single capability check NormalizeDST and rruleset.RequiresDSTPad
// consult (see SPEC_FULL.md §C.2).
func RequiresNormalize(loc *time.Location) bool {
	return false
}

// NormalizeDST re-localizes a Zoned value from its wall clock, correcting
// for a DST transition that straddled an arithmetic step. For timezones
// that do not require this (RequiresNormalize returns false, which is
// every *time.Location), it is the identity function.
func NormalizeDST(t Time) Time {
	if t.kind != Zoned || !RequiresNormalize(t.wall.Location()) {
		return t
	}
	y, m, d := t.wall.Date()
	h, mi, s := t.wall.Clock()
	return NewZoned(time.Date(y, m, d, h, mi, s, t.wall.Nanosecond(), t.wall.Location()))
}

// SpanContainsEvent implements spec §4.1's span-contains-event test:
// spanStart is inclusive, spanStop is exclusive, with the zero-length
// special cases spelled out there. It returns a *icalerr.PeriodEndBeforeStart
// error if either start is after its corresponding stop.
func SpanContainsEvent(spanStart, spanStop, evStart, evEnd Time) (bool, error) {
	lifted := Lift(spanStart, spanStop, evStart, evEnd)
	spanStart, spanStop, evStart, evEnd = lifted[0], lifted[1], lifted[2], lifted[3]

	if Greater(evStart, evEnd) {
		return false, icalerr.NewPeriodEndBeforeStart(evStart, evEnd)
	}
	if Greater(spanStart, spanStop) {
		return false, icalerr.NewPeriodEndBeforeStart(spanStart, spanStop)
	}

	if Equal(evStart, evEnd) {
		if Equal(spanStart, spanStop) {
			return Equal(evStart, spanStart), nil
		}
		return !Greater(spanStart, evStart) && Greater(spanStop, evStart), nil
	}
	if Equal(spanStart, spanStop) {
		return !Greater(evStart, spanStart) && Greater(evEnd, spanStart), nil
	}
	return Greater(spanStop, evStart) && Greater(evEnd, spanStart), nil
}

package recur

import (
	"fmt"
	"time"
)

// DateArg is a query argument that coerces to a naive (timezone-less)
// instant, plus the natural span At uses to widen it. Build one with
// Year, YearMonth, Date, Hour, Minute, Second, Instant, DateOnly, or
// ParseDate/ParseDateTime (spec §4.8's to_datetime/at argument
// coercion). The zero DateArg is a zero-length span at the zero
// time.Time (January 1, year 1).
type DateArg struct {
	t   time.Time
	end time.Time // the widened span end At uses; equals t for a point.
}

// Instant returns a DateArg for an exact, already zero-length instant
// (spec: "a datetime → [dt, dt]").
func Instant(t time.Time) DateArg { return DateArg{t: t, end: t} }

// DateOnly returns a DateArg for the calendar day t falls on, widened by
// At to the whole day (spec: "a date → [d, d+1day)").
func DateOnly(t time.Time) DateArg {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return DateArg{t: day, end: day.AddDate(0, 0, 1)}
}

// Year returns a DateArg for the given year, widened by At to the whole
// year (spec: "a year → [jan1, next jan1)").
func Year(year int) DateArg {
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return DateArg{t: t, end: t.AddDate(1, 0, 0)}
}

// YearMonth returns a DateArg for the given month, widened by At to the
// whole month (spec: "a month → [1st, next month 1st)").
func YearMonth(year int, month time.Month) DateArg {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateArg{t: t, end: t.AddDate(0, 1, 0)}
}

// Date returns a DateArg for the given day, widened by At to the whole
// day.
func Date(year int, month time.Month, day int) DateArg {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DateArg{t: t, end: t.AddDate(0, 0, 1)}
}

// Hour returns a DateArg for the given hour, widened by At to that one
// hour (spec: "a tuple of 4 → [dt, dt + 1 hour)").
func Hour(year int, month time.Month, day, hour int) DateArg {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return DateArg{t: t, end: t.Add(time.Hour)}
}

// Minute returns a DateArg for the given minute, widened by At to that
// one minute (spec: "a tuple of 5 → [dt, dt + 1 minute)").
func Minute(year int, month time.Month, day, hour, minute int) DateArg {
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return DateArg{t: t, end: t.Add(time.Minute)}
}

// Second returns a DateArg for the given second, widened by At to that
// one second (spec: "a tuple of 6 → [dt, dt + 1 second)").
func Second(year int, month time.Month, day, hour, minute, second int) DateArg {
	t := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	return DateArg{t: t, end: t.Add(time.Second)}
}

// ParseDate parses an 8-character "YYYYMMDD" string into a DateArg
// widened by At to that whole day (spec: "8-char string YYYYMMDD → naive
// date-midnight datetime").
func ParseDate(s string) (DateArg, error) {
	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return DateArg{}, fmt.Errorf("recur: %q is not a YYYYMMDD date: %w", s, err)
	}
	return DateArg{t: t, end: t.AddDate(0, 0, 1)}, nil
}

// ParseDateTime parses a 16-character "YYYYMMDDThhmmssZ" string into a
// DateArg. The trailing "Z" is only a format marker here, not a timezone:
// per spec §4.8 the caller is responsible for tz interpretation, so the
// result is a naive instant (a zero-length span, like Instant).
func ParseDateTime(s string) (DateArg, error) {
	t, err := time.ParseInLocation("20060102T150405Z", s, time.UTC)
	if err != nil {
		return DateArg{}, fmt.Errorf("recur: %q is not a YYYYMMDDThhmmssZ datetime: %w", s, err)
	}
	return DateArg{t: t, end: t}, nil
}

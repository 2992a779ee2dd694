package timevalue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestCompareLiftsMixedKinds(t *testing.T) {
	d := NewDate(2024, time.March, 10)
	f := NewFloating(2024, time.March, 10, 0, 0, 0, 0)
	assert.Equal(t, 0, Compare(d, f))

	tz := mustLocation(t, "America/New_York")
	z := NewZoned(time.Date(2024, time.March, 10, 0, 0, 0, 0, tz))
	assert.Equal(t, 0, Compare(d, z))
	assert.True(t, Greater(NewDate(2024, time.March, 11), z))
}

func TestSpanContainsEventOrdinary(t *testing.T) {
	spanStart := NewFloating(2024, time.January, 1, 0, 0, 0, 0)
	spanStop := NewFloating(2024, time.January, 31, 0, 0, 0, 0)
	evStart := NewFloating(2024, time.January, 15, 9, 0, 0, 0)
	evEnd := NewFloating(2024, time.January, 15, 10, 0, 0, 0)

	ok, err := SpanContainsEvent(spanStart, spanStop, evStart, evEnd)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpanContainsEventZeroLengthEventAtSpanStartIncluded(t *testing.T) {
	spanStart := NewFloating(2024, time.January, 1, 0, 0, 0, 0)
	spanStop := NewFloating(2024, time.January, 31, 0, 0, 0, 0)
	instant := spanStart

	ok, err := SpanContainsEvent(spanStart, spanStop, instant, instant)
	require.NoError(t, err)
	assert.True(t, ok, "zero-length event at span start is included (span start is inclusive)")
}

func TestSpanContainsEventZeroLengthEventAtSpanStopExcluded(t *testing.T) {
	spanStart := NewFloating(2024, time.January, 1, 0, 0, 0, 0)
	spanStop := NewFloating(2024, time.January, 31, 0, 0, 0, 0)
	instant := spanStop

	ok, err := SpanContainsEvent(spanStart, spanStop, instant, instant)
	require.NoError(t, err)
	assert.False(t, ok, "zero-length event exactly at the exclusive span stop is not included")
}

func TestSpanContainsEventZeroLengthSpanMatchesInstantEvent(t *testing.T) {
	instant := NewFloating(2024, time.June, 1, 12, 0, 0, 0)
	ok, err := SpanContainsEvent(instant, instant, instant, instant)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpanContainsEventZeroLengthSpanInsideEvent(t *testing.T) {
	spanInstant := NewFloating(2024, time.June, 1, 12, 30, 0, 0)
	evStart := NewFloating(2024, time.June, 1, 12, 0, 0, 0)
	evEnd := NewFloating(2024, time.June, 1, 13, 0, 0, 0)

	ok, err := SpanContainsEvent(spanInstant, spanInstant, evStart, evEnd)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpanContainsEventZeroLengthSpanAtEventEndExcluded(t *testing.T) {
	evStart := NewFloating(2024, time.June, 1, 12, 0, 0, 0)
	evEnd := NewFloating(2024, time.June, 1, 13, 0, 0, 0)

	ok, err := SpanContainsEvent(evEnd, evEnd, evStart, evEnd)
	require.NoError(t, err)
	assert.False(t, ok, "event end is exclusive, so a zero-length span sitting exactly there misses it")
}

func TestSpanContainsEventRejectsInvertedEvent(t *testing.T) {
	spanStart := NewFloating(2024, time.January, 1, 0, 0, 0, 0)
	spanStop := NewFloating(2024, time.January, 31, 0, 0, 0, 0)
	evStart := NewFloating(2024, time.January, 15, 10, 0, 0, 0)
	evEnd := NewFloating(2024, time.January, 15, 9, 0, 0, 0)

	_, err := SpanContainsEvent(spanStart, spanStop, evStart, evEnd)
	require.Error(t, err)
}

func TestSpanContainsEventRejectsInvertedSpan(t *testing.T) {
	evStart := NewFloating(2024, time.January, 15, 9, 0, 0, 0)
	evEnd := NewFloating(2024, time.January, 15, 10, 0, 0, 0)

	_, err := SpanContainsEvent(evEnd, evStart, evStart, evEnd)
	require.Error(t, err)
}

func TestLiftAllDatesStayDate(t *testing.T) {
	a := NewDate(2024, time.May, 1)
	b := NewDate(2024, time.May, 2)
	lifted := Lift(a, b)
	assert.True(t, lifted[0].IsDate())
	assert.True(t, lifted[1].IsDate())
}

func TestLiftPromotesDateToZonedWhenMixedWithZoned(t *testing.T) {
	tz := mustLocation(t, "Europe/Berlin")
	d := NewDate(2024, time.May, 1)
	z := NewZoned(time.Date(2024, time.May, 1, 9, 0, 0, 0, tz))
	lifted := Lift(d, z)
	assert.True(t, lifted[0].IsZoned())
	assert.Equal(t, tz, lifted[0].Location())
}

func TestStringFormatsPerKind(t *testing.T) {
	assert.Equal(t, "2024-03-10", NewDate(2024, time.March, 10).String())
	assert.Equal(t, "2024-03-10T09:30:00", NewFloating(2024, time.March, 10, 9, 30, 0, 0).String())
}

package recur

import (
	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/component"
)

// Option configures a Query at construction time. This module is a
// library with no configuration surface beyond construction (SPEC_FULL.md
// §A), so Option is the only place callers reach in.
type Option func(*config)

type config struct {
	resolve                  component.TZResolver
	componentNames           []string
	allKnownComponents       bool
	skipBadSeries            bool
	keepRecurrenceAttributes bool
}

func defaultConfig() config {
	return config{componentNames: []string{ical.CompEvent}}
}

// WithComponents overrides the default ["VEVENT"] set of component kinds
// a Query expands. The recognized names are "VEVENT", "VTODO", "VJOURNAL"
// and the special name "VALARM", which instead of producing a VALARM
// series collects the alarms attached to every VEVENT and VTODO series in
// the calendar, whether or not those names are also listed (spec §4.7
// "Alarms").
func WithComponents(names ...string) Option {
	return func(c *config) { c.componentNames = names }
}

// WithAllKnownComponents selects spec §4.7's "All known" strategy: every
// VEVENT, VTODO and VJOURNAL series in the calendar, plus the alarm
// series hanging off its VEVENT/VTODO series, unioned in one call. It
// overrides WithComponents (internal/selection.AllKnown).
func WithAllKnownComponents() Option {
	return func(c *config) { c.allKnownComponents = true }
}

// WithTZResolver supplies the timezone provider a Query consults to turn
// a TZID parameter into a *time.Location (spec §6's tz-provider
// collaborator; this module never parses VTIMEZONE blocks itself). A
// Query built without one fails to parse any property carrying a TZID.
func WithTZResolver(resolve component.TZResolver) Option {
	return func(c *config) { c.resolve = resolve }
}

// SkipBadSeries causes a single malformed series (one whose construction
// or expansion raises an InvalidCalendarError) to be dropped from results
// instead of failing the whole query (spec §4.7/§7).
func SkipBadSeries() Option {
	return func(c *config) { c.skipBadSeries = true }
}

// KeepRecurrenceAttributes causes emitted components to retain their
// RRULE/RDATE/EXDATE properties instead of having them stripped. Without
// it, a materialized occurrence no longer looks recurring (spec §4.6
// `as_component`).
func KeepRecurrenceAttributes() Option {
	return func(c *config) { c.keepRecurrenceAttributes = true }
}

package recur

import "github.com/go-ical/recur/internal/icalerr"

// InvalidCalendarError is the root of every error this module raises,
// ported from recurring_ical_events/errors.py's InvalidCalendar. Use
// errors.As to recover it from a PeriodEndBeforeStartError or a
// BadRuleStringFormatError.
type InvalidCalendarError = icalerr.InvalidCalendar

// PeriodEndBeforeStartError reports a component, or a caller-supplied
// span, whose start is after its end.
type PeriodEndBeforeStartError = icalerr.PeriodEndBeforeStart

// BadRuleStringFormatError reports an RRULE string that could not be
// parsed, even after the UNTIL-timezone-mismatch rewrite.
type BadRuleStringFormatError = icalerr.BadRuleStringFormat

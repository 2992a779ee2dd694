// Package icalerr defines the typed errors shared across the recurrence
// engine's internal packages. The root package re-exports these under its
// own names so callers never import an internal package directly.
package icalerr

import "fmt"

// InvalidCalendar is the root of every error this module raises. A
// calendar-level precondition failed, such as a non-Gregorian CALSCALE.
type InvalidCalendar struct {
	Message string
}

func (e *InvalidCalendar) Error() string { return e.Message }

// PeriodEndBeforeStart reports a component, or a caller-supplied span,
// whose start is after its end.
type PeriodEndBeforeStart struct {
	Message    string
	Start, End fmt.Stringer
}

func (e *PeriodEndBeforeStart) Error() string { return e.Message }

func (e *PeriodEndBeforeStart) Unwrap() error {
	return &InvalidCalendar{Message: e.Message}
}

// NewPeriodEndBeforeStart builds a PeriodEndBeforeStart with a formatted message.
func NewPeriodEndBeforeStart(start, end fmt.Stringer) *PeriodEndBeforeStart {
	return &PeriodEndBeforeStart{
		Message: fmt.Sprintf("the period must start before it ends (start: %s end: %s)", start, end),
		Start:   start,
		End:     end,
	}
}

// BadRuleStringFormat reports an RRULE string that could not be rewritten
// into a parseable form (the UNTIL quirk rewrite in internal/rruleset).
type BadRuleStringFormat struct {
	Message string
	Rule    string
}

func (e *BadRuleStringFormat) Error() string { return e.Message + ": " + e.Rule }

func (e *BadRuleStringFormat) Unwrap() error {
	return &InvalidCalendar{Message: e.Error()}
}

// NewBadRuleStringFormat builds a BadRuleStringFormat error.
func NewBadRuleStringFormat(message, rule string) *BadRuleStringFormat {
	return &BadRuleStringFormat{Message: message, Rule: rule}
}

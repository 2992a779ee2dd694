// Package rruleset builds a github.com/teambition/rrule-go rule set from a
// component's RRULE/RDATE/EXDATE text, owning the UNTIL-rewrite and
// negative-COUNT-strip adaptations spec §4.3 requires (the module never
// calls go-ical's own RecurrenceSet helper, see SPEC_FULL.md §A).
package rruleset

import (
	"regexp"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/go-ical/recur/internal/icalerr"
	"github.com/go-ical/recur/internal/timevalue"
)

// negativeCount strips a negative COUNT value, which some calendar
// producers emit erroneously (ported from the original's Issue 128 fix).
var negativeCount = regexp.MustCompile(`COUNT=-\d+;?`)

// Rule wraps one compiled *rrule.RRule together with the UNTIL bound parsed
// back out of its (possibly rewritten) text, since rrule-go does not expose
// UNTIL on the parsed value.
type Rule struct {
	RRule *rrule.RRule
	Until *timevalue.Time // nil if the rule has no UNTIL
}

// New compiles ruleText (the raw RRULE value, without the "RRULE:" prefix)
// anchored at start. It applies the negative-COUNT strip unconditionally,
// and the UNTIL-timezone-mismatch rewrite only when the plain parse fails
// (mirroring create_rule_with_start/rrulestr in the original).
func New(ruleText string, start timevalue.Time, allDates bool) (*Rule, error) {
	ruleText = strings.TrimSuffix(negativeCount.ReplaceAllString(ruleText, ""), ";")

	r, err := rrule.StrToRRule(ruleText)
	if err != nil {
		rewritten, rewriteErr := rewriteUntil(ruleText, start, allDates)
		if rewriteErr != nil {
			return nil, rewriteErr
		}
		r, err = rrule.StrToRRule(rewritten)
		if err != nil {
			return nil, icalerr.NewBadRuleStringFormat(err.Error(), ruleText)
		}
		ruleText = rewritten
	}
	r.DTStart(start.Wall())

	until := untilOf(ruleText)
	return &Rule{RRule: r, Until: until}, nil
}

// rewriteUntil implements spec §4.3's UNTIL quirk rewrite: when DTSTART is
// timezone-aware but UNTIL was given as a naive local value (a common
// producer mistake), truncate it to a date for all-date series, strip the
// trailing Z for floating series, or pad/append Z so rrule-go accepts a
// timezone-aware start with a UTC UNTIL.
func rewriteUntil(ruleText string, start timevalue.Time, allDates bool) (string, error) {
	parts := strings.SplitN(ruleText, ";UNTIL=", 2)
	if len(parts) != 2 {
		return "", icalerr.NewBadRuleStringFormat("UNTIL parameter is missing", ruleText)
	}
	rest := parts[1]
	untilEnd := strings.IndexByte(rest, ';')
	if untilEnd == -1 {
		untilEnd = len(rest)
	}
	untilStr := rest[:untilEnd]

	switch {
	case allDates:
		if len(untilStr) < 8 {
			return "", icalerr.NewBadRuleStringFormat("UNTIL parameter has a bad format", ruleText)
		}
		untilStr = untilStr[:8]
	case start.IsFloating():
		untilStr = strings.TrimSuffix(untilStr, "Z")
	default: // Zoned, naive UNTIL
		if len(untilStr) == 8 {
			untilStr += "T000000"
		}
		if len(untilStr) != 15 {
			return "", icalerr.NewBadRuleStringFormat("UNTIL parameter has a bad format", ruleText)
		}
		untilStr += "Z"
	}
	return parts[0] + rest[untilEnd:] + ";UNTIL=" + untilStr, nil
}

func untilOf(ruleText string) *timevalue.Time {
	parts := strings.SplitN(ruleText, ";UNTIL=", 2)
	if len(parts) != 2 {
		return nil
	}
	rest := parts[1]
	untilEnd := strings.IndexByte(rest, ';')
	if untilEnd == -1 {
		untilEnd = len(rest)
	}
	untilStr := rest[:untilEnd]
	switch len(untilStr) {
	case 8:
		t, err := time.ParseInLocation("20060102", untilStr, time.UTC)
		if err != nil {
			return nil
		}
		v := timevalue.FromDate(t)
		return &v
	case 15:
		t, err := time.ParseInLocation("20060102T150405", untilStr, time.UTC)
		if err != nil {
			return nil
		}
		v := timevalue.FromFloating(t)
		return &v
	case 16:
		t, err := time.ParseInLocation("20060102T150405Z", untilStr, time.UTC)
		if err != nil {
			return nil
		}
		v := timevalue.NewZoned(t)
		return &v
	default:
		return nil
	}
}

// RequiresDSTPad reports whether loc needs the one-hour widening heuristic
// before enumerating (SPEC_FULL.md §C.2): always false for *time.Location.
func RequiresDSTPad(loc *time.Location) bool {
	return timevalue.RequiresNormalize(loc)
}

package component

import (
	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/timevalue"
)

// JournalAdapter wraps a VJOURNAL. DTSTART is optional (RFC 5545); a
// VJOURNAL never has an end property, so its end equals its start (spec §3
// table: zero duration, or "spans one day" is left to callers that want
// date-only semantics).
type JournalAdapter struct{ base }

// NewJournalAdapter wraps comp, which must be a VJOURNAL.
func NewJournalAdapter(comp *ical.Component, resolve TZResolver) *JournalAdapter {
	a := &JournalAdapter{base{comp: comp, resolve: resolve, name: ical.CompJournal, endProp: ""}}
	a.rawStart = a.start0
	a.rawEnd = a.start0
	return a
}

func (a *JournalAdapter) start0() (timevalue.Time, error) {
	if prop := a.comp.Props.Get(ical.PropDateTimeStart); prop != nil {
		return parseTimeValue(prop.Value, prop.Params, a.resolve)
	}
	return DateMin, nil
}

var _ Adapter = (*JournalAdapter)(nil)

package selection

import (
	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/alarmseries"
	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/occurrence"
)

// Alarms collects VALARM children of its parent collectors' series into
// alarm series: one shared AbsoluteAlarmSeries for every fixed-DATE-TIME
// trigger, plus one RelativeToStart or RelativeToEnd per relative VALARM
// found (ported from selection/alarm.py).
type Alarms struct {
	Parents []SeriesCollector
	Resolve component.TZResolver
}

// NewAlarms returns an Alarms collector drawing VALARM children from the
// series produced by parents (typically a VEVENT and a VTODO ByName).
func NewAlarms(resolve component.TZResolver, parents ...SeriesCollector) *Alarms {
	return &Alarms{Parents: parents, Resolve: resolve}
}

func (a *Alarms) ComponentName() string { return ical.CompAlarm }

// CollectAlarms implements AlarmCollector.
func (a *Alarms) CollectAlarms(source *ical.Component, suppress SuppressErrors) ([]alarmseries.Source, error) {
	absolute := &alarmseries.AbsoluteAlarmSeries{}
	var result []alarmseries.Source
	used := make(map[*ical.Component]bool)

	for _, parent := range a.Parents {
		parentSeries, err := parent.CollectSeries(source, suppress)
		if err != nil {
			return nil, err
		}
		for _, s := range parentSeries {
			for _, comp := range s.Components() {
				for _, alarm := range comp.Raw().Children {
					if alarm.Name != ical.CompAlarm || used[alarm] {
						continue
					}
					trig, err := alarmseries.ParseTrigger(alarm, a.Resolve)
					if err != nil {
						if suppress != nil && suppress(err) {
							continue
						}
						return nil, err
					}
					used[alarm] = true
					switch {
					case trig.Absolute != nil:
						parentOcc := occurrence.Occurrence{Adapter: comp, Start: comp.Start(), End: comp.End(), Sequence: comp.Sequence()}
						ridText := ""
						if rid, ok := comp.RecurrenceID(); ok {
							ridText = rid.String()
						}
						parentID := occurrence.NewID(comp.ComponentName(), parentOcc, ridText, comp.UID())
						absolute.Add(trig, alarm, parentOcc, parentID)
					case trig.RelatedToEnd:
						result = append(result, alarmseries.NewRelativeToEnd(alarm, s, trig, sameAlarm(alarm)))
					default:
						result = append(result, alarmseries.NewRelativeToStart(alarm, s, trig, sameAlarm(alarm)))
					}
				}
			}
		}
	}
	if !absolute.IsEmpty() {
		result = append(result, absolute)
	}
	return result, nil
}

// sameAlarm builds the parentLookup predicate used to confirm an
// occurrence's generating component still carries this particular VALARM
// (a THISANDFUTURE modification may have dropped it, spec §4.5).
func sameAlarm(alarm *ical.Component) func(occ occurrence.Occurrence, a *ical.Component) bool {
	return func(occ occurrence.Occurrence, a *ical.Component) bool {
		for _, child := range occ.Adapter.Raw().Children {
			if child == alarm {
				return true
			}
		}
		return false
	}
}

var _ AlarmCollector = (*Alarms)(nil)

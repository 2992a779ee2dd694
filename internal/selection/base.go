// Package selection groups raw calendar components into the Series (and,
// for VALARM, alarm series) the rest of the engine expands, ported from
// selection/{base,name,alarm,all}.py (spec §4.7's component-collection
// strategies).
package selection

import (
	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/alarmseries"
	"github.com/go-ical/recur/internal/series"
)

// SuppressErrors reports whether err should drop its whole series from the
// result instead of failing the entire collection (spec §4.7: a single
// malformed series must not take down a query over the rest of the
// calendar). The root package's Query wires this to its own error policy.
type SuppressErrors func(err error) bool

// SeriesCollector groups a source component tree's children into Series.
type SeriesCollector interface {
	// ComponentName is the name of the component this collector produces
	// series for, e.g. "VEVENT". Collectors that combine several names
	// (Alarms, AllKnown) return "".
	ComponentName() string
	CollectSeries(source *ical.Component, suppress SuppressErrors) ([]*series.Series, error)
}

// AlarmCollector groups a source component tree's VALARM children into
// alarm series (spec §4.5).
type AlarmCollector interface {
	CollectAlarms(source *ical.Component, suppress SuppressErrors) ([]alarmseries.Source, error)
}

// walk returns every component named name anywhere in root's tree,
// including root itself.
func walk(root *ical.Component, name string) []*ical.Component {
	var out []*ical.Component
	var visit func(c *ical.Component)
	visit = func(c *ical.Component) {
		if c.Name == name {
			out = append(out, c)
		}
		for _, child := range c.Children {
			visit(child)
		}
	}
	visit(root)
	return out
}

package selection

import (
	"github.com/emersion/go-ical"

	"github.com/go-ical/recur/internal/component"
	"github.com/go-ical/recur/internal/series"
)

// NewAdapter builds the Adapter for one raw component of a known kind.
type NewAdapter func(comp *ical.Component, resolve component.TZResolver) component.Adapter

// ByName collects every component named Name anywhere under a source tree,
// groups them by UID, and builds one Series per UID (ported from
// selection/name.py's ComponentsWithName; ComponentAdapters in that file's
// terms is the fixed Event/Todo/Journal/Alarms table, which here is simply
// the three ByName values the root package constructs plus Alarms).
type ByName struct {
	Name    string
	Adapter NewAdapter
	Resolve component.TZResolver
}

// NewByName returns a ByName collector for the given component name.
func NewByName(name string, adapter NewAdapter, resolve component.TZResolver) *ByName {
	return &ByName{Name: name, Adapter: adapter, Resolve: resolve}
}

func (b *ByName) ComponentName() string { return b.Name }

// CollectSeries implements SeriesCollector.
func (b *ByName) CollectSeries(source *ical.Component, suppress SuppressErrors) ([]*series.Series, error) {
	byUID := make(map[string][]component.Adapter)
	var order []string
	for _, comp := range walk(source, b.Name) {
		a := b.Adapter(comp, b.Resolve)
		if _, seen := byUID[a.UID()]; !seen {
			order = append(order, a.UID())
		}
		byUID[a.UID()] = append(byUID[a.UID()], a)
	}

	var out []*series.Series
	for _, uid := range order {
		s, err := series.New(byUID[uid])
		if err != nil {
			if suppress != nil && suppress(err) {
				continue
			}
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

var _ SeriesCollector = (*ByName)(nil)

package viewstate

import (
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/stats"
	"github.com/ritzau/conflict-atlas/pkg/window"
)

// DefaultZoom is the map zoom scale of a fresh state
const DefaultZoom = 1.0

// Previous records where a country or faction selection was made from
type Previous struct {
	Kind   ModeKind `json:"kind"`
	Region string   `json:"region,omitempty"`
}

// State is the complete navigation and filter state of one dashboard
type State struct {
	Mode         Mode
	Year         int // Upper year bound, 0 for none
	ViolenceType model.ViolenceType

	// FactionFilter narrows the events shown in any mode. It is not the
	// faction-mode driver, which lives in the Faction variant.
	FactionFilter string

	// ConnectedFaction narrows the faction detail view to events shared
	// with one other faction. Only meaningful in faction mode.
	ConnectedFaction string

	Previous  Previous
	ZoomScale float64
}

// Initial returns the world state at the given year
func Initial(year int) State {
	return State{
		Mode:      World{},
		Year:      year,
		Previous:  Previous{Kind: KindWorld},
		ZoomScale: DefaultZoom,
	}
}

// Kind returns the active mode kind
func (s State) Kind() ModeKind {
	if s.Mode == nil {
		return KindWorld
	}
	return s.Mode.Kind()
}

// SelectedRegion is the region of region mode, or the region a country or
// faction was selected from
func (s State) SelectedRegion() string {
	switch m := s.Mode.(type) {
	case Region:
		return m.Name
	case Country, Faction, Event:
		if s.Previous.Kind == KindRegion {
			return s.Previous.Region
		}
	}
	return ""
}

// SelectedCountry is the country driving country mode, or the country an
// event view was opened from
func (s State) SelectedCountry() string {
	switch m := s.Mode.(type) {
	case Country:
		return m.Name
	case Event:
		if c, ok := m.Origin.(Country); ok {
			return c.Name
		}
	}
	return ""
}

// SelectedFaction is the faction driving faction mode. It is empty in every
// other mode, including an event opened from faction mode; use EventOrigin
// for that.
func (s State) SelectedFaction() string {
	if m, ok := s.Mode.(Faction); ok {
		return m.Name
	}
	return ""
}

// Origin names the country or faction mode an event view was opened from
type Origin struct {
	Kind ModeKind `json:"kind"`
	Name string   `json:"name"`
}

// EventOrigin returns where event mode returns to on Back
func (s State) EventOrigin() (Origin, bool) {
	m, ok := s.Mode.(Event)
	if !ok {
		return Origin{}, false
	}
	switch o := m.Origin.(type) {
	case Country:
		return Origin{Kind: KindCountry, Name: o.Name}, true
	case Faction:
		return Origin{Kind: KindFaction, Name: o.Name}, true
	}
	return Origin{}, false
}

// SelectedEvent returns the event of event mode
func (s State) SelectedEvent() (model.Event, bool) {
	if m, ok := s.Mode.(Event); ok {
		return m.Event, true
	}
	return model.Event{}, false
}

// Filter derives the window used for graph builds and rankings
func (s State) Filter() window.Filter {
	return window.Filter{
		Year:         s.Year,
		ViolenceType: s.ViolenceType,
		Region:       s.SelectedRegion(),
	}
}

// Bubbles returns the events drawn as map bubbles for the active mode.
// World and region modes show none.
func (s State) Bubbles() []model.Event {
	switch m := s.Mode.(type) {
	case World, Region:
		return []model.Event{}
	case Country:
		events := window.Apply(m.Events, window.Filter{Year: s.Year, ViolenceType: s.ViolenceType})
		return s.narrow(events, s.FactionFilter)
	case Faction:
		events := window.Apply(m.Events, window.Filter{Year: s.Year})
		return s.narrow(events, s.ConnectedFaction)
	case Event:
		return []model.Event{m.Event}
	}
	return []model.Event{}
}

func (s State) narrow(events []model.Event, faction string) []model.Event {
	if faction == "" {
		return events
	}
	return stats.FactionEvents(events, faction)
}

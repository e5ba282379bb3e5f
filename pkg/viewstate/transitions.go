package viewstate

import (
	"errors"
	"fmt"

	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/stats"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed in the current mode
	ErrInvalidTransition = errors.New("invalid view transition")

	// ErrNotFound is returned when the selected region, country, faction or event does not exist
	ErrNotFound = errors.New("selection not found")
)

// Every transition returns the input state unchanged together with an
// error when it is rejected.

// SelectRegion enters region mode. Switching directly between regions is allowed.
func SelectRegion(s State, events []model.Event, name string) (State, error) {
	switch s.Mode.(type) {
	case World, Region:
	default:
		return s, invalid("select region", s)
	}
	if !hasRegion(events, name) {
		return s, fmt.Errorf("region %q: %w", name, ErrNotFound)
	}

	next := s
	next.Mode = Region{Name: name}
	next.Previous = Previous{Kind: KindWorld}
	return next, nil
}

// SelectCountry enters country mode from world or region mode
func SelectCountry(s State, events []model.Event, name string) (State, error) {
	prev, ok := origin(s)
	if !ok {
		return s, invalid("select country", s)
	}

	agg, found := stats.Country(events, name)
	if !found {
		return s, fmt.Errorf("country %q: %w", name, ErrNotFound)
	}

	countryEvents := make([]model.Event, 0, agg.Events)
	for _, e := range events {
		if e.Country == name {
			countryEvents = append(countryEvents, e)
		}
	}

	next := s
	next.Mode = Country{Name: name, Aggregate: agg, Events: countryEvents}
	next.Previous = prev
	next.ConnectedFaction = ""
	return next, nil
}

// SelectFaction enters the faction detail view from world or region mode.
// The event list comes from all raw events, not the filtered graph.
func SelectFaction(s State, events []model.Event, name string) (State, error) {
	prev, ok := origin(s)
	if !ok {
		return s, invalid("select faction", s)
	}

	factionEvents := stats.FactionEvents(events, name)
	if len(factionEvents) == 0 {
		return s, fmt.Errorf("faction %q: %w", name, ErrNotFound)
	}

	next := s
	next.Mode = Faction{Name: name, Events: factionEvents}
	next.Previous = prev
	next.ConnectedFaction = ""
	return next, nil
}

// SelectEvent opens a single event from country or faction mode. Previous
// is left alone so Back can unwind through the origin.
func SelectEvent(s State, id string) (State, error) {
	var candidates []model.Event
	switch m := s.Mode.(type) {
	case Country:
		candidates = m.Events
	case Faction:
		candidates = m.Events
	default:
		return s, invalid("select event", s)
	}

	for _, e := range candidates {
		if e.ID == id {
			next := s
			next.Mode = Event{Event: e, Origin: s.Mode}
			return next, nil
		}
	}
	return s, fmt.Errorf("event %q: %w", id, ErrNotFound)
}

// Back unwinds one level: event returns to its origin, country and faction
// return to the region they came from or reset to world, region returns to
// world. Back in world mode is a no-op.
func Back(s State) State {
	next := s
	switch m := s.Mode.(type) {
	case World:
		return s
	case Region:
		next.Mode = World{}
		next.Previous = Previous{Kind: KindWorld}
	case Country, Faction:
		next.ConnectedFaction = ""
		if s.Previous.Kind == KindRegion {
			next.Mode = Region{Name: s.Previous.Region}
		} else {
			next.Mode = World{}
			next.FactionFilter = ""
		}
		next.Previous = Previous{Kind: KindWorld}
	case Event:
		next.Mode = m.Origin
	}
	return next
}

// SetYear moves the time slider. The mode never changes.
func SetYear(s State, year int) (State, error) {
	if year < 0 {
		return s, fmt.Errorf("year %d: %w", year, ErrInvalidTransition)
	}
	next := s
	next.Year = year
	return next, nil
}

// SetViolenceType changes the violence-type filter. ViolenceAny clears it.
func SetViolenceType(s State, v model.ViolenceType) (State, error) {
	if v < model.ViolenceAny || v > model.ViolenceOneSided {
		return s, fmt.Errorf("violence type %d: %w", v, ErrInvalidTransition)
	}
	next := s
	next.ViolenceType = v
	return next, nil
}

// SetFactionFilter narrows shown events to one faction in any mode. An
// empty name clears the filter.
func SetFactionFilter(s State, name string) State {
	next := s
	next.FactionFilter = name
	return next
}

// SetConnectedFaction narrows the faction detail view to events shared
// with another faction
func SetConnectedFaction(s State, name string) (State, error) {
	m, ok := s.Mode.(Faction)
	if !ok {
		return s, invalid("set connected faction", s)
	}
	if name != "" && len(stats.SharedEvents(m.Events, m.Name, name)) == 0 {
		return s, fmt.Errorf("connected faction %q: %w", name, ErrNotFound)
	}
	next := s
	next.ConnectedFaction = name
	return next, nil
}

// SetZoom records the map zoom scale
func SetZoom(s State, scale float64) (State, error) {
	if !(scale > 0) {
		return s, fmt.Errorf("zoom %v: %w", scale, ErrInvalidTransition)
	}
	next := s
	next.ZoomScale = scale
	return next, nil
}

// origin reports the Previous record for a country or faction selection,
// which may only start from world or region mode
func origin(s State) (Previous, bool) {
	switch m := s.Mode.(type) {
	case World:
		return Previous{Kind: KindWorld}, true
	case Region:
		return Previous{Kind: KindRegion, Region: m.Name}, true
	}
	return Previous{}, false
}

func hasRegion(events []model.Event, name string) bool {
	if name == "" {
		return false
	}
	for i := range events {
		if events[i].Region == name {
			return true
		}
	}
	return false
}

func invalid(action string, s State) error {
	return fmt.Errorf("%s in %s mode: %w", action, s.Kind(), ErrInvalidTransition)
}

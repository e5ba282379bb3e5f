package dashboard

import (
	"github.com/ritzau/conflict-atlas/pkg/focus"
	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/pubsub"
	"github.com/ritzau/conflict-atlas/pkg/viewstate"
)

// rebuildKind says which rebuild path an applied transition needs
type rebuildKind int

const (
	rebuildNone rebuildKind = iota
	rebuildFull
	rebuildFocus
)

// apply runs a transition under the lock, publishes the new view state and
// schedules a rebuild when the graph filter changed. A rejected transition
// leaves everything untouched and returns its error.
func (s *Session) apply(action string, transition func(viewstate.State, []model.Event) (viewstate.State, error)) (ViewStatus, error) {
	s.mu.Lock()
	before := s.state.Filter()
	next, err := transition(s.state, s.events)
	if err != nil {
		status := s.statusLocked()
		s.mu.Unlock()
		logging.Warn("view transition rejected", "action", action, "error", err)
		return status, err
	}
	s.state = next

	kind := rebuildNone
	if next.Filter() != before {
		kind = rebuildFull
		if s.focus.Active() && next.Filter().Region == before.Region {
			kind = rebuildFocus
		}
	}
	status := s.statusLocked()
	s.mu.Unlock()

	logging.Debug("view transition", "action", action, "mode", status.Mode, "year", status.Year)
	s.publish(pubsub.TopicViewState, action, status)

	switch kind {
	case rebuildFull:
		s.requestRebuild()
	case rebuildFocus:
		s.requestFocusRefresh()
	}
	return status, nil
}

// guarded drops a selection repeated within the guard window and returns
// the unchanged status instead
func (s *Session) guarded(key string) (ViewStatus, bool) {
	if s.guard.Allow(key) {
		return ViewStatus{}, true
	}
	logging.Debug("duplicate selection dropped", "action", key)
	return s.Status(), false
}

// SetYear moves the time slider
func (s *Session) SetYear(year int) (ViewStatus, error) {
	return s.apply("year", func(st viewstate.State, _ []model.Event) (viewstate.State, error) {
		return viewstate.SetYear(st, year)
	})
}

// SetViolenceType changes the violence-type filter
func (s *Session) SetViolenceType(v model.ViolenceType) (ViewStatus, error) {
	return s.apply("violence", func(st viewstate.State, _ []model.Event) (viewstate.State, error) {
		return viewstate.SetViolenceType(st, v)
	})
}

// SelectRegion enters region mode
func (s *Session) SelectRegion(name string) (ViewStatus, error) {
	if status, ok := s.guarded("region:" + name); !ok {
		return status, nil
	}
	return s.apply("region", func(st viewstate.State, events []model.Event) (viewstate.State, error) {
		return viewstate.SelectRegion(st, events, name)
	})
}

// SelectCountry enters country mode
func (s *Session) SelectCountry(name string) (ViewStatus, error) {
	if status, ok := s.guarded("country:" + name); !ok {
		return status, nil
	}
	return s.apply("country", func(st viewstate.State, events []model.Event) (viewstate.State, error) {
		return viewstate.SelectCountry(st, events, name)
	})
}

// SelectFaction enters the faction detail view
func (s *Session) SelectFaction(name string) (ViewStatus, error) {
	if status, ok := s.guarded("faction:" + name); !ok {
		return status, nil
	}
	return s.selectFaction(name)
}

func (s *Session) selectFaction(name string) (ViewStatus, error) {
	return s.apply("faction", func(st viewstate.State, events []model.Event) (viewstate.State, error) {
		return viewstate.SelectFaction(st, events, name)
	})
}

// SelectEvent opens one event from country or faction mode
func (s *Session) SelectEvent(id string) (ViewStatus, error) {
	if status, ok := s.guarded("event:" + id); !ok {
		return status, nil
	}
	return s.apply("event", func(st viewstate.State, _ []model.Event) (viewstate.State, error) {
		return viewstate.SelectEvent(st, id)
	})
}

// Back unwinds one navigation level
func (s *Session) Back() (ViewStatus, error) {
	if status, ok := s.guarded("back"); !ok {
		return status, nil
	}
	return s.apply("back", func(st viewstate.State, _ []model.Event) (viewstate.State, error) {
		return viewstate.Back(st), nil
	})
}

// SetFactionFilter narrows shown events to one faction
func (s *Session) SetFactionFilter(name string) (ViewStatus, error) {
	return s.apply("faction_filter", func(st viewstate.State, _ []model.Event) (viewstate.State, error) {
		return viewstate.SetFactionFilter(st, name), nil
	})
}

// SetConnectedFaction narrows the faction view to events shared with name
func (s *Session) SetConnectedFaction(name string) (ViewStatus, error) {
	return s.apply("connected_faction", func(st viewstate.State, _ []model.Event) (viewstate.State, error) {
		return viewstate.SetConnectedFaction(st, name)
	})
}

// SetZoom records the map zoom scale
func (s *Session) SetZoom(scale float64) (ViewStatus, error) {
	return s.apply("zoom", func(st viewstate.State, _ []model.Event) (viewstate.State, error) {
		return viewstate.SetZoom(st, scale)
	})
}

// Click handles a click on a graph node. A double click opens the faction
// view; a click on a stale node is ignored.
func (s *Session) Click(id string) (focus.ClickResult, error) {
	s.mu.Lock()
	result := s.focus.Click(s.graph, id, s.now())
	change := s.visibilityLocked(result.Transition)
	s.mu.Unlock()

	switch result.Action {
	case focus.ClickFocus:
		s.publish(pubsub.TopicVisibility, "focus", change)
	case focus.ClickOpenFaction:
		if _, err := s.selectFaction(id); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ClickBackground clears the focus
func (s *Session) ClickBackground() focus.Transition {
	s.mu.Lock()
	t := s.focus.ClickBackground(s.graph)
	change := s.visibilityLocked(t)
	s.mu.Unlock()

	if !t.Empty() {
		s.publish(pubsub.TopicVisibility, "clear", change)
	}
	return t
}

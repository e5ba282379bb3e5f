package dashboard

import (
	"sort"

	"github.com/ritzau/conflict-atlas/pkg/coalition"
	"github.com/ritzau/conflict-atlas/pkg/country"
	"github.com/ritzau/conflict-atlas/pkg/layout"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/stats"
	"github.com/ritzau/conflict-atlas/pkg/viewstate"
	"github.com/ritzau/conflict-atlas/pkg/window"
)

// ViewStatus is the client-facing snapshot of the view state
type ViewStatus struct {
	Mode             viewstate.ModeKind `json:"mode"`
	Year             int                `json:"year"`
	ViolenceType     model.ViolenceType `json:"violenceType"`
	Region           string             `json:"region,omitempty"`
	Country          string             `json:"country,omitempty"`
	Faction          string             `json:"faction,omitempty"` // Set in faction mode only
	EventID          string             `json:"eventId,omitempty"`
	Origin           *viewstate.Origin  `json:"origin,omitempty"` // Mode an event view returns to
	FactionFilter    string             `json:"factionFilter,omitempty"`
	ConnectedFaction string             `json:"connectedFaction,omitempty"`
	Previous         viewstate.Previous `json:"previous"`
	Zoom             float64            `json:"zoom"`
	Focused          string             `json:"focused,omitempty"`
	MinYear          int                `json:"minYear"`
	MaxYear          int                `json:"maxYear"`
	Events           int                `json:"events"`
	Source           string             `json:"source,omitempty"`
}

// Status returns the current view state
func (s *Session) Status() ViewStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() ViewStatus {
	st := s.state
	status := ViewStatus{
		Mode:             st.Kind(),
		Year:             st.Year,
		ViolenceType:     st.ViolenceType,
		Region:           st.SelectedRegion(),
		Country:          st.SelectedCountry(),
		Faction:          st.SelectedFaction(),
		FactionFilter:    st.FactionFilter,
		ConnectedFaction: st.ConnectedFaction,
		Previous:         st.Previous,
		Zoom:             st.ZoomScale,
		Focused:          s.focus.Focused(),
		Events:           len(s.events),
		Source:           s.source,
	}
	if e, ok := st.SelectedEvent(); ok {
		status.EventID = e.ID
	}
	if origin, ok := st.EventOrigin(); ok {
		status.Origin = &origin
	}
	status.MinYear, status.MaxYear, _ = window.YearRange(s.events)
	return status
}

// State returns a copy of the view state
func (s *Session) State() viewstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GraphView is everything the layout engine and renderer need for one frame
type GraphView struct {
	Year       int                   `json:"year"`
	Filter     window.Filter         `json:"filter"`
	Nodes      []layout.Node         `json:"nodes"`
	Edges      []model.Relationship  `json:"edges"`
	Zones      []layout.Zone         `json:"zones"`
	Forces     layout.ForceConfig    `json:"forces"`
	Visible    []string              `json:"visible"`
	Focused    string                `json:"focused,omitempty"`
	Coalitions []coalition.Coalition `json:"coalitions"`
}

// Graph returns the current graph with layout targets and visibility
func (s *Session) Graph() GraphView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graphViewLocked()
}

// GraphData returns the raw node/edge lists of the current graph
func (s *Session) GraphData() *model.GraphData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

func (s *Session) graphViewLocked() GraphView {
	nodes, zones := layout.Annotate(s.graph, s.opts.Height)
	f := s.state.Filter()
	return GraphView{
		Year:       f.Year,
		Filter:     f,
		Nodes:      nodes,
		Edges:      s.graph.Edges,
		Zones:      zones,
		Forces:     s.opts.Forces,
		Visible:    s.focus.Visible().Sorted(),
		Focused:    s.focus.Focused(),
		Coalitions: coalition.Find(s.graph),
	}
}

// FactionPanel is the side panel of the faction detail view
type FactionPanel struct {
	Name             string               `json:"name"`
	Events           int                  `json:"events"`
	Series           []stats.YearPoint    `json:"series"`
	Connected        []stats.FactionCount `json:"connected"`
	ConnectedFaction string               `json:"connectedFaction,omitempty"`
	Coalition        *coalition.Coalition `json:"coalition,omitempty"`
}

// Panel is the mode-dependent side panel and bubble layer
type Panel struct {
	Mode         viewstate.ModeKind      `json:"mode"`
	Regions      []string                `json:"regions,omitempty"`
	TopCountries []stats.CountryTotal    `json:"topCountries,omitempty"`
	Country      *stats.CountryAggregate `json:"country,omitempty"`
	Faction      *FactionPanel           `json:"faction,omitempty"`
	Event        *model.Event            `json:"event,omitempty"`
	Bubbles      []model.Event           `json:"bubbles"`
}

// Panel derives the side panel for the active mode
func (s *Session) Panel() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	p := Panel{Mode: st.Kind(), Bubbles: st.Bubbles()}

	switch m := st.Mode.(type) {
	case viewstate.World:
		p.Regions = stats.Regions(s.events)
		p.TopCountries = stats.TopCountries(s.events, st.Filter(), stats.DefaultTopN)
	case viewstate.Region:
		p.TopCountries = stats.TopCountries(s.events, st.Filter(), stats.DefaultTopN)
	case viewstate.Country:
		agg := m.Aggregate
		p.Country = &agg
	case viewstate.Faction:
		p.Faction = s.factionPanelLocked(m, st.ConnectedFaction)
	case viewstate.Event:
		e := m.Event
		p.Event = &e
	}
	return p
}

func (s *Session) factionPanelLocked(m viewstate.Faction, connected string) *FactionPanel {
	fp := &FactionPanel{
		Name:             m.Name,
		Events:           len(m.Events),
		Series:           stats.YearSeries(m.Events),
		Connected:        stats.ConnectedFactions(m.Events, m.Name),
		ConnectedFaction: connected,
	}
	if c, ok := coalition.Of(coalition.Find(s.graph), m.Name); ok {
		fp.Coalition = &c
	}
	return fp
}

// MapFeature is the choropleth value of one map feature
type MapFeature struct {
	Feature    string           `json:"feature"`
	Countries  []string         `json:"countries"` // Event country names matched to it
	Strategy   country.Strategy `json:"strategy"`  // Weakest strategy among the matches
	Events     int              `json:"events"`
	Casualties float64          `json:"casualties"`
}

// MapView is the map layer for the active window
type MapView struct {
	Features   []MapFeature `json:"features"`
	Unresolved []string     `json:"unresolved"`
}

var strategyRank = map[country.Strategy]int{
	country.StrategyExact:      0,
	country.StrategyNormalized: 1,
	country.StrategyAlias:      2,
	country.StrategySubstring:  3,
}

// MapData sums the active window per resolved map feature
func (s *Session) MapData() MapView {
	s.mu.Lock()
	f := s.state.Filter()
	events := s.events
	resolver := s.resolver
	s.mu.Unlock()

	totals := stats.CountryTotals(window.Apply(events, f))

	byFeature := make(map[string]*MapFeature)
	view := MapView{Features: []MapFeature{}, Unresolved: []string{}}
	for name, t := range totals {
		feature, strategy, ok := resolver.Resolve(name)
		if !ok {
			view.Unresolved = append(view.Unresolved, name)
			continue
		}
		mf, exists := byFeature[feature]
		if !exists {
			mf = &MapFeature{Feature: feature, Strategy: strategy}
			byFeature[feature] = mf
		}
		if strategyRank[strategy] > strategyRank[mf.Strategy] {
			mf.Strategy = strategy
		}
		mf.Countries = append(mf.Countries, name)
		mf.Events += t.Events
		mf.Casualties += t.Casualties
	}

	for _, mf := range byFeature {
		sort.Strings(mf.Countries)
		view.Features = append(view.Features, *mf)
	}
	sort.Slice(view.Features, func(i, j int) bool {
		return view.Features[i].Feature < view.Features[j].Feature
	})
	sort.Strings(view.Unresolved)
	return view
}

// FactionEvents returns the raw events of any faction, for the detail
// API. The bool is false when the faction never appears.
func (s *Session) FactionEvents(name string) ([]model.Event, bool) {
	s.mu.Lock()
	events := s.events
	s.mu.Unlock()

	found := stats.FactionEvents(events, name)
	return found, len(found) > 0
}

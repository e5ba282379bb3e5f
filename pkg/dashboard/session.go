// Package dashboard owns the state of one dashboard: the loaded events,
// the view state, the current graph and the focus. HTTP handlers call its
// actions; results go out through the pub/sub topics.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ritzau/conflict-atlas/pkg/country"
	"github.com/ritzau/conflict-atlas/pkg/focus"
	"github.com/ritzau/conflict-atlas/pkg/graph"
	"github.com/ritzau/conflict-atlas/pkg/layout"
	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/pubsub"
	"github.com/ritzau/conflict-atlas/pkg/ratelimit"
	"github.com/ritzau/conflict-atlas/pkg/viewstate"
	"github.com/ritzau/conflict-atlas/pkg/window"
)

// Options configures a session
type Options struct {
	Graph       graph.Options
	Forces      layout.ForceConfig
	Height      float64 // Canvas height for region zones
	InitialYear int     // 0 shows every year

	DoubleClick time.Duration
	Debounce    time.Duration // Quiet period before a full rebuild
	MaxWait     time.Duration // Longest a burst can postpone a rebuild
	Throttle    float64       // Focus refreshes per second
	Guard       time.Duration // Window for dropping repeated selections
}

// DefaultOptions returns the interaction timings the dashboard ships with
func DefaultOptions() Options {
	return Options{
		Graph:       graph.DefaultOptions(),
		Forces:      layout.DefaultForceConfig(),
		Height:      layout.DefaultHeight,
		DoubleClick: focus.DefaultDoubleClick,
		Debounce:    150 * time.Millisecond,
		MaxWait:     time.Second,
		Throttle:    20,
		Guard:       300 * time.Millisecond,
	}
}

// Session is one shared dashboard. All methods are safe for concurrent
// use; mutations are serialized and the last one wins.
type Session struct {
	opts      Options
	publisher pubsub.Publisher
	builds    singleflight.Group
	throttle  *ratelimit.Throttle
	guard     *ratelimit.Guard
	now       func() time.Time

	mu       sync.Mutex
	events   []model.Event
	source   string
	version  int // Bumped on every reload, part of the build key
	resolver *country.Resolver
	state    viewstate.State
	graph    *model.GraphData
	focus    *focus.Controller
	requests chan struct{} // nil until Start
}

// NewSession builds the initial graph for events. publisher may be nil.
func NewSession(events []model.Event, resolver *country.Resolver, publisher pubsub.Publisher, opts Options) *Session {
	if resolver == nil {
		resolver = country.NewResolver(nil, nil)
	}

	s := &Session{
		opts:      opts,
		publisher: publisher,
		throttle:  ratelimit.NewThrottle(opts.Throttle),
		guard:     ratelimit.NewGuard(opts.Guard),
		now:       time.Now,
		events:    events,
		resolver:  resolver,
		state:     viewstate.Initial(opts.InitialYear),
		focus:     focus.NewController(opts.DoubleClick),
	}

	s.graph = s.build(events, s.version, s.state.Filter())
	s.focus.Refresh(s.graph)
	return s
}

// Start runs the debounced rebuild loop until ctx is done. Before Start,
// rebuilds happen synchronously.
func (s *Session) Start(ctx context.Context) {
	requests := make(chan struct{}, 64)

	s.mu.Lock()
	s.requests = requests
	s.mu.Unlock()

	d := ratelimit.NewDebouncer(requests, s.opts.Debounce, s.opts.MaxWait, nil)
	d.Start(ctx)

	go func() {
		for range d.Output() {
			s.rebuild()
		}
		logging.Debug("rebuild loop stopped")
	}()

	go func() {
		<-ctx.Done()
		s.throttle.Stop()
		s.mu.Lock()
		s.requests = nil
		s.mu.Unlock()
		close(requests)
	}()
}

// requestRebuild schedules a full rebuild through the debouncer
func (s *Session) requestRebuild() {
	s.mu.Lock()
	requests := s.requests
	if requests == nil {
		s.mu.Unlock()
		s.rebuild()
		return
	}
	select {
	case requests <- struct{}{}:
	default:
		// A rebuild is already pending and will read the latest state
	}
	s.mu.Unlock()
}

// requestFocusRefresh runs a throttled rebuild while a focus is active so
// the visible set tracks a moving time slider
func (s *Session) requestFocusRefresh() {
	s.mu.Lock()
	started := s.requests != nil
	s.mu.Unlock()

	if !started {
		s.rebuild()
		return
	}
	s.throttle.Do(s.rebuild)
}

// rebuild builds the graph for the current filter and refreshes the focus.
// A result whose filter or data was superseded while building is dropped.
func (s *Session) rebuild() {
	s.mu.Lock()
	f := s.state.Filter()
	events := s.events
	version := s.version
	s.mu.Unlock()

	g := s.build(events, version, f)

	s.mu.Lock()
	if s.version != version || s.state.Filter() != f {
		s.mu.Unlock()
		logging.Trace("discarding superseded graph", "year", f.Year, "region", f.Region)
		return
	}
	s.graph = g
	transition := s.focus.Refresh(g)
	view := s.graphViewLocked()
	change := s.visibilityLocked(transition)
	s.mu.Unlock()

	s.publish(pubsub.TopicGraph, "rebuilt", view)
	if !transition.Empty() {
		s.publish(pubsub.TopicVisibility, "refresh", change)
	}
}

// build collapses concurrent builds of the same data and filter into one
func (s *Session) build(events []model.Event, version int, f window.Filter) *model.GraphData {
	key := fmt.Sprintf("%d|%d|%d|%s", version, f.Year, f.ViolenceType, f.Region)
	v, _, shared := s.builds.Do(key, func() (interface{}, error) {
		start := time.Now()
		g := graph.Build(events, f, s.opts.Graph)
		logging.Debug("graph rebuilt",
			"year", f.Year,
			"region", f.Region,
			"nodes", len(g.Nodes),
			"edges", len(g.Edges),
			"durationMs", time.Since(start).Milliseconds())
		return g, nil
	})
	if shared {
		logging.Trace("joined in-flight build", "key", key)
	}
	return v.(*model.GraphData)
}

func (s *Session) publish(topic, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(topic, eventType, data); err != nil {
		logging.Warn("publish failed", "topic", topic, "error", err)
	}
}

func (s *Session) visibilityLocked(t focus.Transition) pubsub.VisibilityChange {
	return pubsub.VisibilityChange{
		Focused: s.focus.Focused(),
		Year:    s.state.Year,
		Entered: t.Entered,
		Exited:  t.Exited,
		Visible: s.focus.Visible().Sorted(),
	}
}

// Reload swaps in a new event list. The view state is replayed against the
// new data and falls back as far as needed when a selection disappeared.
func (s *Session) Reload(events []model.Event, source string) {
	s.mu.Lock()
	s.events = events
	s.source = source
	s.version++
	s.state = replay(s.state, events)
	status := s.statusLocked()
	s.mu.Unlock()

	logging.Info("events reloaded", "source", source, "count", len(events), "mode", status.Mode)
	s.publish(pubsub.TopicData, "reloaded", pubsub.DataStatus{
		State:   "ready",
		Message: "Event data reloaded",
		Source:  source,
		Events:  len(events),
	})
	s.publish(pubsub.TopicViewState, "reloaded", status)
	s.rebuild()
}

// SetResolver replaces the country resolver after alias or feature changes
func (s *Session) SetResolver(r *country.Resolver) {
	s.mu.Lock()
	s.resolver = r
	s.mu.Unlock()
}

// SetSource records where the events came from, for status reports
func (s *Session) SetSource(source string) {
	s.mu.Lock()
	s.source = source
	s.mu.Unlock()
}

// replay rebuilds st on top of new events, keeping the filters
func replay(st viewstate.State, events []model.Event) viewstate.State {
	next := viewstate.Initial(st.Year)
	next.ViolenceType = st.ViolenceType
	next.FactionFilter = st.FactionFilter
	next.ZoomScale = st.ZoomScale

	steps := make([]func(viewstate.State) (viewstate.State, error), 0, 4)
	if region := st.SelectedRegion(); region != "" {
		steps = append(steps, func(v viewstate.State) (viewstate.State, error) {
			return viewstate.SelectRegion(v, events, region)
		})
	}
	if name := st.SelectedCountry(); name != "" {
		steps = append(steps, func(v viewstate.State) (viewstate.State, error) {
			return viewstate.SelectCountry(v, events, name)
		})
	}
	faction := st.SelectedFaction()
	if origin, ok := st.EventOrigin(); ok && origin.Kind == viewstate.KindFaction {
		faction = origin.Name
	}
	if faction != "" {
		steps = append(steps, func(v viewstate.State) (viewstate.State, error) {
			return viewstate.SelectFaction(v, events, faction)
		})
		if st.ConnectedFaction != "" {
			connected := st.ConnectedFaction
			steps = append(steps, func(v viewstate.State) (viewstate.State, error) {
				return viewstate.SetConnectedFaction(v, connected)
			})
		}
	}
	if e, ok := st.SelectedEvent(); ok {
		steps = append(steps, func(v viewstate.State) (viewstate.State, error) {
			return viewstate.SelectEvent(v, e.ID)
		})
	}

	for _, step := range steps {
		v, err := step(next)
		if err != nil {
			logging.Warn("selection lost on reload", "error", err)
			break
		}
		next = v
	}
	return next
}

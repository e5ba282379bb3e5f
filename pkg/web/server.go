package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/conflict-atlas/pkg/dashboard"
	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/pubsub"
	"github.com/ritzau/conflict-atlas/pkg/viewstate"
)

//go:embed static/*
var staticFiles embed.FS

// Server represents the web server
type Server struct {
	router    *mux.Router
	session   *dashboard.Session
	publisher pubsub.Publisher
}

// NewServer creates a web server for one dashboard session. The publisher
// must be the one the session publishes to.
func NewServer(session *dashboard.Session, publisher pubsub.Publisher) *Server {
	s := &Server{
		// Faction names may contain "/", so route on the escaped path
		router:    mux.NewRouter().UseEncodedPath(),
		session:   session,
		publisher: publisher,
	}
	s.setupRoutes()
	return s
}

// PublishDataStatus reports loading progress on the data topic
func (s *Server) PublishDataStatus(state, message, source string, events int) error {
	status := pubsub.DataStatus{
		State:   state,
		Message: message,
		Source:  source,
		Events:  events,
	}
	return s.publisher.Publish(pubsub.TopicData, state, status)
}

// Handler returns the router wrapped in the request logging middleware
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	// Read-only views
	s.router.HandleFunc("/api/state", s.handleState).Methods("GET")
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/panel", s.handlePanel).Methods("GET")
	s.router.HandleFunc("/api/map", s.handleMap).Methods("GET")
	s.router.HandleFunc("/api/factions/{name}/events", s.handleFactionEvents).Methods("GET")

	// Actions; more specific routes must come first
	s.router.HandleFunc("/api/year", s.handleYear).Methods("POST")
	s.router.HandleFunc("/api/violence", s.handleViolence).Methods("POST")
	s.router.HandleFunc("/api/region", s.handleRegion).Methods("POST")
	s.router.HandleFunc("/api/country", s.handleCountry).Methods("POST")
	s.router.HandleFunc("/api/faction-filter", s.handleFactionFilter).Methods("POST")
	s.router.HandleFunc("/api/faction", s.handleFaction).Methods("POST")
	s.router.HandleFunc("/api/connected-faction", s.handleConnectedFaction).Methods("POST")
	s.router.HandleFunc("/api/event", s.handleEvent).Methods("POST")
	s.router.HandleFunc("/api/back", s.handleBack).Methods("POST")
	s.router.HandleFunc("/api/zoom", s.handleZoom).Methods("POST")
	s.router.HandleFunc("/api/click/background", s.handleClickBackground).Methods("POST")
	s.router.HandleFunc("/api/click", s.handleClick).Methods("POST")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("static files missing", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic, err := url.PathUnescape(mux.Vars(r)["topic"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid topic: %w", err))
		return
	}

	// Browsers resend the last seen id when an event stream reconnects
	lastID := 0
	if header := r.Header.Get("Last-Event-ID"); header != "" {
		if lastID, err = strconv.Atoi(header); err != nil || lastID < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid Last-Event-ID %q", header))
			return
		}
	}

	sub, err := s.publisher.SubscribeSince(r.Context(), topic, lastID)
	if errors.Is(err, pubsub.ErrUnknownTopic) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		logging.WarnContext(r.Context(), "subscribe failed", "topic", topic, "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	// The channel closes on client disconnect, lag on a diff topic, or shutdown
	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.DebugContext(r.Context(), "stream write failed", "topic", topic, "error", err)
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Status())
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Graph())
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Panel())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.MapData())
}

func (s *Server) handleFactionEvents(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid faction name: %w", err))
		return
	}
	events, ok := s.session.FactionEvents(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("faction %q: %w", name, viewstate.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// actionRequest is the body of every POST action. Each endpoint reads the
// fields it needs.
type actionRequest struct {
	Name         string  `json:"name"`
	ID           string  `json:"id"`
	Year         int     `json:"year"`
	ViolenceType int     `json:"violenceType"`
	Scale        float64 `json:"scale"`
}

func decodeAction(w http.ResponseWriter, r *http.Request) (actionRequest, bool) {
	var req actionRequest
	if r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return req, false
	}
	return req, true
}

// action decodes the body, runs fn and writes the resulting view state
func (s *Server) action(fn func(actionRequest) (dashboard.ViewStatus, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeAction(w, r)
		if !ok {
			return
		}
		status, err := fn(req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SetYear(req.Year)
	})(w, r)
}

func (s *Server) handleViolence(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SetViolenceType(model.ViolenceType(req.ViolenceType))
	})(w, r)
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SelectRegion(req.Name)
	})(w, r)
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SelectCountry(req.Name)
	})(w, r)
}

func (s *Server) handleFaction(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SelectFaction(req.Name)
	})(w, r)
}

func (s *Server) handleFactionFilter(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SetFactionFilter(req.Name)
	})(w, r)
}

func (s *Server) handleConnectedFaction(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SetConnectedFaction(req.Name)
	})(w, r)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SelectEvent(req.ID)
	})(w, r)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.action(func(actionRequest) (dashboard.ViewStatus, error) {
		return s.session.Back()
	})(w, r)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	s.action(func(req actionRequest) (dashboard.ViewStatus, error) {
		return s.session.SetZoom(req.Scale)
	})(w, r)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	result, err := s.session.Click(req.ID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClickBackground(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.ClickBackground())
}

// statusFor maps view transition errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, viewstate.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, viewstate.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end when ctx is done
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Info("shutting down web server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

package pubsub

import (
	"context"
	"encoding/json"
)

// Topics the dashboard publishes on
const (
	TopicViewState  = "view_state" // Mode and filter changes
	TopicGraph      = "graph"      // Rebuilt relationship graphs
	TopicVisibility = "visibility" // Focus enter/exit transitions
	TopicData       = "data"       // Loading and reload progress
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "view_state", "graph")
	Type    string          `json:"type"`    // Event type (e.g., "rebuilt", "focus", "loading")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// SubscribeSince subscribes on behalf of a client that has already
	// seen events up to version lastID
	SubscribeSince(ctx context.Context, topic string, lastID int) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// DataStatus represents the state of the event data
type DataStatus struct {
	State   string `json:"state"`   // loading, ready, reloading, failed
	Message string `json:"message"` // Human-readable status message
	Source  string `json:"source"`
	Events  int    `json:"events"`
}

// VisibilityChange is the diff between two visible sets. Exited nodes are
// hidden by the renderer, not removed from the layout.
type VisibilityChange struct {
	Focused string   `json:"focused"`
	Year    int      `json:"year"`
	Entered []string `json:"entered"`
	Exited  []string `json:"exited"`
	Visible []string `json:"visible"`
}

package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/conflict-atlas/pkg/logging"
)

var (
	// ErrUnknownTopic is returned for topics the publisher was not built with
	ErrUnknownTopic = errors.New("unknown topic")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("publisher is closed")
)

// subscriberBuffer is the per-subscriber channel capacity
const subscriberBuffer = 64

// Retention decides what a topic keeps for subscribers that join late and
// what happens when a subscriber falls behind.
type Retention int

const (
	// RetainNone topics carry diffs. Nothing is replayed, and a subscriber
	// that misses one is disconnected so it resynchronizes from a snapshot.
	RetainNone Retention = iota
	// RetainLatest topics carry full snapshots. Only the newest is replayed,
	// and a slow subscriber has its stale snapshot replaced by the newest.
	RetainLatest
	// RetainHistory topics keep the last TopicConfig.History events and
	// replay all of them. Overflow drops the new event for that subscriber.
	RetainHistory
)

// TopicConfig configures one topic
type TopicConfig struct {
	Retention Retention
	History   int // RetainHistory only
}

// DashboardTopics returns the topic set served to dashboard clients
func DashboardTopics() map[string]TopicConfig {
	return map[string]TopicConfig{
		TopicViewState:  {Retention: RetainLatest},
		TopicGraph:      {Retention: RetainLatest},
		TopicVisibility: {Retention: RetainNone},
		TopicData:       {Retention: RetainHistory, History: 10},
	}
}

type topicState struct {
	config   TopicConfig
	version  int
	retained []Event
	subs     map[*sseSubscription]struct{}
}

func (t *topicState) retain(event Event) {
	switch t.config.Retention {
	case RetainLatest:
		t.retained = []Event{event}
	case RetainHistory:
		t.retained = append(t.retained, event)
		if n := t.config.History; n > 0 && len(t.retained) > n {
			t.retained = t.retained[len(t.retained)-n:]
		}
	}
}

// SSEPublisher implements Publisher for Server-Sent Event streams over a
// fixed set of topics. Event versions double as SSE ids, so a reconnecting
// client can resume with SubscribeSince.
type SSEPublisher struct {
	mu     sync.Mutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a publisher serving exactly the given topics
func NewSSEPublisher(topics map[string]TopicConfig) *SSEPublisher {
	p := &SSEPublisher{topics: make(map[string]*topicState, len(topics))}
	for name, config := range topics {
		p.topics[name] = &topicState{
			config: config,
			subs:   make(map[*sseSubscription]struct{}),
		}
	}
	return p
}

// NewDashboardPublisher creates a publisher for DashboardTopics
func NewDashboardPublisher() *SSEPublisher {
	return NewSSEPublisher(DashboardTopics())
}

// Has reports whether topic is served
func (p *SSEPublisher) Has(topic string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.topics[topic]
	return ok
}

// Subscribe creates a subscription that first receives the topic's
// retained events
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	return p.SubscribeSince(ctx, topic, 0)
}

// SubscribeSince is Subscribe for a client that has already seen every
// event up to version lastID. Retained events at or below it are skipped.
func (p *SSEPublisher) SubscribeSince(ctx context.Context, topic string, lastID int) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	t, ok := p.topics[topic]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}
	t.subs[sub] = struct{}{}

	// A client ahead of us saw a previous process; give it everything
	if lastID > t.version {
		lastID = 0
	}

	replayed := 0
	for _, event := range t.retained {
		if event.Version <= lastID {
			continue
		}
		if !p.deliver(t, sub, event) {
			break
		}
		replayed++
	}
	if replayed > 0 {
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", replayed, "since", lastID)
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	t, ok := p.topics[topic]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	t.version++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    jsonData,
		Version: t.version,
	}
	t.retain(event)

	for sub := range t.subs {
		p.deliver(t, sub, event)
	}
	return nil
}

// deliver hands event to sub without blocking and applies the topic's
// overflow rule. It reports whether sub is still subscribed. p.mu must be held.
func (p *SSEPublisher) deliver(t *topicState, sub *sseSubscription, event Event) bool {
	select {
	case sub.events <- event:
		return true
	default:
	}

	switch t.config.Retention {
	case RetainLatest:
		// Drop the oldest pending snapshot; the reader may race us to it
		select {
		case <-sub.events:
		default:
		}
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscriber saturated, dropping snapshot", "topic", event.Topic, "version", event.Version)
		}
		return true
	case RetainNone:
		logging.Warn("subscriber missed a diff, disconnecting", "topic", event.Topic, "version", event.Version)
		p.remove(t, sub)
		return false
	default:
		logging.Warn("subscription channel full, dropping event", "topic", event.Topic, "type", event.Type)
		return true
	}
}

// remove unregisters sub and closes its channel. Registration owns the
// channel, so it is closed exactly once. p.mu must be held.
func (p *SSEPublisher) remove(t *topicState, sub *sseSubscription) {
	if _, ok := t.subs[sub]; !ok {
		return
	}
	delete(t.subs, sub)
	close(sub.events)
}

// Close shuts down the publisher and ends every subscription
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			p.remove(t, sub)
		}
	}
	return nil
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.topics[sub.topic]; ok {
		p.remove(t, sub)
	}
}

// Subscribers returns the number of live subscriptions on topic
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[topic]; ok {
		return len(t.subs)
	}
	return 0
}

// LastEvent returns the most recent retained event of a topic
func (p *SSEPublisher) LastEvent(topic string) (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.topics[topic]
	if !ok || len(t.retained) == 0 {
		return Event{}, false
	}
	return t.retained[len(t.retained)-1], true
}

// sseSubscription implements Subscription. Its channel is closed when the
// subscription ends for any reason.
type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

func (s *sseSubscription) Close() error {
	s.publisher.unsubscribe(s)
	return nil
}

// WriteSSE writes one event frame. The id line carries the topic version
// so that browsers send it back as Last-Event-ID on reconnect.
// Format: "id: {version}\nevent: {topic}\ndata: {json}\n\n"
func WriteSSE(w io.Writer, event Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Version, event.Topic, jsonData)
	return err
}

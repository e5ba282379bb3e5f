package ratelimit

import (
	"sync"
	"time"
)

// Guard drops an action key repeated within a window, so a fast double
// submit of the same selection transitions only once
type Guard struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewGuard creates a guard with the given window
func NewGuard(window time.Duration) *Guard {
	return &Guard{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether the action may run and records it if so
func (g *Guard) Allow(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if at, ok := g.last[key]; ok && now.Sub(at) < g.window {
		return false
	}
	g.last[key] = now

	// Expired keys only matter until their window passes
	if len(g.last) > 64 {
		for k, at := range g.last {
			if now.Sub(at) >= g.window {
				delete(g.last, k)
			}
		}
	}
	return true
}

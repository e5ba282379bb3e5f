package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle bounds how often a function runs. Calls over the limit are not
// queued; the most recent one runs as a trailing call once a token frees
// up, so the last slider position always lands.
type Throttle struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	pending func()
	timer   *time.Timer
	stopped bool
}

// NewThrottle allows perSecond calls per second with no burst
func NewThrottle(perSecond float64) *Throttle {
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Do runs fn now when the rate allows, otherwise schedules it as the
// trailing call, replacing any earlier pending one
func (t *Throttle) Do(fn func()) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}

	if t.timer == nil && t.limiter.Allow() {
		t.mu.Unlock()
		fn()
		return
	}

	t.pending = fn
	if t.timer == nil {
		r := t.limiter.Reserve()
		t.timer = time.AfterFunc(r.Delay(), t.fire)
	}
	t.mu.Unlock()
}

func (t *Throttle) fire() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	t.timer = nil
	stopped := t.stopped
	t.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}

// Stop drops any pending trailing call
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

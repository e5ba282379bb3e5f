// Package ratelimit holds the three rate controls of the dashboard: a
// debouncer for full rebuilds, a throttle for the focus path and a guard
// against repeated selections.
package ratelimit

import (
	"context"
	"time"

	"github.com/ritzau/conflict-atlas/pkg/logging"
)

// Debouncer coalesces bursts of values into one output after the input
// has been quiet for quietPeriod, or maxWait after the first value of a
// burst at the latest
type Debouncer[T any] struct {
	input       <-chan T
	output      chan T
	quietPeriod time.Duration
	maxWait     time.Duration
	merge       func(acc, next T) T
}

// NewDebouncer creates a debouncer. merge folds a new value into the
// pending one; nil keeps the latest value.
func NewDebouncer[T any](input <-chan T, quietPeriod, maxWait time.Duration, merge func(acc, next T) T) *Debouncer[T] {
	if merge == nil {
		merge = func(_, next T) T { return next }
	}
	return &Debouncer[T]{
		input:       input,
		output:      make(chan T, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
		merge:       merge,
	}
}

// Start begins processing values with debouncing
func (d *Debouncer[T]) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer[T]) run(ctx context.Context) {
	quiet := time.NewTimer(d.quietPeriod)
	quiet.Stop()
	maxWait := time.NewTimer(d.maxWait)
	maxWait.Stop()

	var (
		pending T
		count   int
	)

	flush := func() {
		quiet.Stop()
		maxWait.Stop()
		if count == 0 {
			return
		}

		logging.Trace("flushing debounced values", "count", count)
		d.output <- pending

		var zero T
		pending = zero
		count = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			close(d.output)
			return

		case v, ok := <-d.input:
			if !ok {
				flush()
				close(d.output)
				return
			}

			if count == 0 {
				pending = v
				maxWait.Reset(d.maxWait)
			} else {
				pending = d.merge(pending, v)
			}
			count++
			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-maxWait.C:
			flush()
		}
	}
}

// Output returns the channel of debounced values
func (d *Debouncer[T]) Output() <-chan T {
	return d.output
}

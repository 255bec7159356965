package catalog

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent bounds in-flight catalog calls when no limit is set.
const DefaultMaxConcurrent = 8

// Dispatcher bounds the number of catalog calls running at once across all
// requests and applies an optional per-call timeout. Waiting for a slot
// respects context cancellation.
type Dispatcher struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewDispatcher creates a dispatcher allowing maxConcurrent calls in flight.
// A timeout of zero leaves calls bounded only by their context.
func NewDispatcher(maxConcurrent int, timeout time.Duration) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Dispatcher{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		timeout: timeout,
	}
}

// Do runs call once a slot is free.
func (d *Dispatcher) Do(ctx context.Context, call func(context.Context) error) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer d.sem.Release(1)

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return call(ctx)
}

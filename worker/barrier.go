package worker

import (
	"context"
	"fmt"
	"time"

	"spectrum-core/store"
)

// StartTimeKey is the store key the barrier reads, per spec.md §6's
// example hierarchical path "start_time".
const StartTimeKey = "start_time"

// DefaultClockSkewTolerance is spec.md §4.6's default bound on clock skew
// between workers waiting on the same barrier.
const DefaultClockSkewTolerance = 5 * time.Second

// Barrier is the quorum/barrier primitive (spec.md §4.6): it reads a
// start time from the config store and blocks the calling goroutine until
// wall-clock passes it, restoring original_source/src/sync.rs's
// wait_until, which spec.md's distillation compressed to one sentence.
// Unlike sync.rs's OneshotCache (a channel-backed rendezvous for a single
// process), Barrier's start time comes from the shared store so that
// independently-started worker processes agree on when an epoch begins.
type Barrier struct {
	store     store.Store
	tolerance time.Duration
}

// NewBarrier builds a Barrier reading from s, with spec.md's default
// clock-skew tolerance.
func NewBarrier(s store.Store) *Barrier {
	return &Barrier{store: s, tolerance: DefaultClockSkewTolerance}
}

// Wait reads the start time from the store and sleeps until it has
// passed, re-checking in a loop bounded by ctx's deadline (spec.md §4.6:
// "quorum barrier uses wall-clock delay, not a timeout" — the deadline
// here bounds the caller's patience, not the protocol's).
func (b *Barrier) Wait(ctx context.Context) error {
	raw, err := b.store.Get(ctx, StartTimeKey)
	if err != nil {
		return fmt.Errorf("worker: barrier: reading %s: %w", StartTimeKey, err)
	}
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("worker: barrier: parsing start time %q: %w", raw, err)
	}

	for {
		now := time.Now()
		if !now.Before(start) {
			return nil
		}
		wait := start.Sub(now)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("worker: barrier: %w", ctx.Err())
		}
	}
}

// ToleranceExceeded reports whether observed, the wall-clock time a peer
// claims the epoch started, differs from this process's own start-time
// read by more than the configured clock-skew tolerance.
func (b *Barrier) ToleranceExceeded(start, observed time.Time) bool {
	d := observed.Sub(start)
	if d < 0 {
		d = -d
	}
	return d > b.tolerance
}

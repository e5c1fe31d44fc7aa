package scope

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tasklane/tasklane/internal/telemetry"
)

// Tracker serializes aggregation results against re-triggered runs.
// Scope switches and membership changes re-run the whole aggregation,
// so overlapping in-flight runs are common; a completion is applied only
// if no newer run has started since it began, and a cancelled or
// superseded run's result is discarded without touching shared state.
type Tracker struct {
	generation atomic.Uint64

	mu sync.Mutex
}

// NewTracker creates a tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Run executes one aggregation and applies its result through apply,
// unless a newer Run started in the meantime or ctx was cancelled first.
// Applies are serialized, so apply never races with another apply.
func (t *Tracker) Run(ctx context.Context, agg *Aggregator, in Input, apply func(*Aggregate)) error {
	gen := t.generation.Add(1)

	result, err := agg.Aggregate(ctx, in)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		telemetry.GetMetrics().StaleResultsDiscarded.Add(ctx, 1)
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// A later Run bumped the generation while this one was in flight.
	if t.generation.Load() != gen {
		telemetry.GetMetrics().StaleResultsDiscarded.Add(ctx, 1)
		return nil
	}

	apply(result)

	return nil
}

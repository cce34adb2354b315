package lifecycle

import (
	"context"
	"fmt"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/settings"
)

const (
	trackedRunning   = "running"
	trackedSuspended = "suspended"
	trackedStopped   = "stopped"
)

// ExecutionTracker derives the previous execution state on platforms that
// do not report one. It persists what the application was last doing: a
// process that dies while marked suspended was terminated by the platform.
type ExecutionTracker struct {
	store settings.Store
}

func NewExecutionTracker(store settings.Store) *ExecutionTracker {
	return &ExecutionTracker{store: store}
}

// Previous returns the execution state of the last run.
func (t *ExecutionTracker) Previous(ctx context.Context) (ExecutionState, error) {
	raw, ok, err := t.store.TryGet(ctx, constants.ExecutionStateKey)
	if err != nil {
		return NotRunning, fmt.Errorf("read execution state: %w", err)
	}
	if !ok {
		return NotRunning, nil
	}
	switch string(raw) {
	case trackedSuspended:
		return Terminated, nil
	case trackedStopped:
		return ClosedByUser, nil
	default:
		return NotRunning, nil
	}
}

func (t *ExecutionTracker) MarkRunning(ctx context.Context) error {
	return t.mark(ctx, trackedRunning)
}

func (t *ExecutionTracker) MarkSuspended(ctx context.Context) error {
	return t.mark(ctx, trackedSuspended)
}

func (t *ExecutionTracker) MarkStopped(ctx context.Context) error {
	return t.mark(ctx, trackedStopped)
}

func (t *ExecutionTracker) mark(ctx context.Context, state string) error {
	if err := t.store.Set(ctx, constants.ExecutionStateKey, []byte(state)); err != nil {
		return fmt.Errorf("write execution state: %w", err)
	}
	return nil
}

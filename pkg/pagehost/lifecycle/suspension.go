package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/clock"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/settings"
)

// Suspension keeps the single "last suspended at" marker. Only the
// orchestrator calls it, under its start gate, so it does no locking of
// its own.
type Suspension struct {
	store settings.Store
	clock clock.Clock
}

func NewSuspension(store settings.Store, clk clock.Clock) *Suspension {
	if clk == nil {
		clk = clock.Real()
	}
	return &Suspension{store: store, clock: clk}
}

// IsResuming reports whether ev is a start after the platform terminated
// the suspended application: the payload says Terminated and a marker is
// present. Either alone is not enough.
func (s *Suspension) IsResuming(ctx context.Context, ev *StartEvent) (bool, *ResumeArgs, error) {
	if ev.PreviousState() != Terminated {
		return false, nil, nil
	}
	at, ok, err := s.SuspendMarker(ctx)
	if err != nil || !ok {
		return false, nil, err
	}
	return true, &ResumeArgs{
		PreviousState: Terminated,
		SuspendedAt:   at,
		Original:      ev.Args,
	}, nil
}

// MarkSuspended records the current time as the suspend marker.
func (s *Suspension) MarkSuspended(ctx context.Context) (time.Time, error) {
	now := s.clock.Now().UTC()
	return now, s.SetSuspendMarker(ctx, now)
}

func (s *Suspension) SetSuspendMarker(ctx context.Context, at time.Time) error {
	if err := s.store.Set(ctx, constants.SuspendMarkerKey, []byte(at.UTC().Format(time.RFC3339Nano))); err != nil {
		return fmt.Errorf("set suspend marker: %w", err)
	}
	return nil
}

// SuspendMarker returns the stored marker. A marker that does not parse
// still counts as present and reads as the zero time.
func (s *Suspension) SuspendMarker(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := s.store.TryGet(ctx, constants.SuspendMarkerKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read suspend marker: %w", err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	at, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, true, nil
	}
	return at, true, nil
}

// ClearSuspendMarker removes the marker. Clearing an absent marker succeeds.
func (s *Suspension) ClearSuspendMarker(ctx context.Context) error {
	if err := s.store.Remove(ctx, constants.SuspendMarkerKey); err != nil {
		return fmt.Errorf("clear suspend marker: %w", err)
	}
	return nil
}

package clock

import (
	"context"
	"log/slog"
	"time"
)

// Ticker delivers a tick at every wall-clock boundary of Unit.
type Ticker struct {
	Unit time.Duration
	Now  func() time.Time
}

// NewTicker returns a Ticker aligned to whole minutes.
func NewTicker() *Ticker {
	return &Ticker{Unit: time.Minute, Now: time.Now}
}

// Run blocks until ctx is done, calling onTick with the current time once per
// boundary crossed. Boundaries missed while the host was suspended are not
// replayed; the next tick simply carries the later time.
func (t *Ticker) Run(ctx context.Context, onTick func(time.Time)) error {
	unit := t.Unit
	if unit <= 0 {
		unit = time.Minute
	}
	now := t.Now
	if now == nil {
		now = time.Now
	}

	slog.Debug("clock: ticker started", "unit", unit)
	for {
		current := now()
		timer := time.NewTimer(nextBoundary(current, unit).Sub(current))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			onTick(now())
		}
	}
}

// nextBoundary returns the first multiple of unit strictly after t.
func nextBoundary(t time.Time, unit time.Duration) time.Time {
	return t.Truncate(unit).Add(unit)
}

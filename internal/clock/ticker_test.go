package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNextBoundary(t *testing.T) {
	base := time.Date(2026, time.October, 17, 9, 29, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{name: "exactly on boundary", at: base, want: base.Add(time.Minute)},
		{name: "mid minute", at: base.Add(31 * time.Second), want: base.Add(time.Minute)},
		{name: "just before boundary", at: base.Add(time.Minute - time.Nanosecond), want: base.Add(time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextBoundary(tt.at, time.Minute); !got.Equal(tt.want) {
				t.Errorf("nextBoundary(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestTicker_RunDeliversTicksUntilCanceled(t *testing.T) {
	ticker := &Ticker{Unit: 10 * time.Millisecond, Now: time.Now}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan time.Time, 16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- ticker.Run(ctx, func(at time.Time) { ticks <- at })
	}()

	var prev time.Time
	for i := 0; i < 3; i++ {
		select {
		case at := <-ticks:
			if !prev.IsZero() && !at.After(prev) {
				t.Fatalf("tick %d at %v not after previous %v", i, at, prev)
			}
			prev = at
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for tick %d", i)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

package ble

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Window decides presence from the time of the most recent sighting.
type Window struct {
	Timeout time.Duration

	lastSeen time.Time
}

func (w *Window) Seen(at time.Time) {
	if at.After(w.lastSeen) {
		w.lastSeen = at
	}
}

// Present reports whether the companion was seen within Timeout of now.
func (w *Window) Present(now time.Time) bool {
	if w.lastSeen.IsZero() {
		return false
	}
	return now.Sub(w.lastSeen) <= w.Timeout
}

type scanner interface {
	Run(ctx context.Context, onSeen func(Sighting)) error
}

// Presence turns a stream of sightings into connected / disconnected edges.
type Presence struct {
	scanner scanner
	logger  *slog.Logger
	now     func() time.Time

	// Settle is how long Peek waits for a first sighting after Start.
	Settle time.Duration

	mu      sync.Mutex
	window  Window
	started bool
	first   chan struct{}
	once    sync.Once
}

func NewPresence(l *Listener, timeout time.Duration, logger *slog.Logger) *Presence {
	return newPresence(l, timeout, logger, time.Now)
}

func newPresence(s scanner, timeout time.Duration, logger *slog.Logger, now func() time.Time) *Presence {
	return &Presence{
		scanner: s,
		logger:  logger.With("component", "presence"),
		now:     now,
		Settle:  5 * time.Second,
		window:  Window{Timeout: timeout},
		first:   make(chan struct{}),
	}
}

// Start begins scanning in the background. Scan failures are logged and
// leave the companion reported as absent.
func (p *Presence) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		if err := p.scanner.Run(ctx, p.seen); err != nil {
			p.logger.Warn("ble scanner could not be initialized; companion treated as absent", "error", err)
		}
	}()
}

func (p *Presence) seen(s Sighting) {
	p.mu.Lock()
	p.window.Seen(s.SeenAt)
	p.mu.Unlock()
	p.once.Do(func() { close(p.first) })
}

// Peek reports current presence, waiting up to Settle for the first
// sighting when scanning has started but nothing was seen yet.
func (p *Presence) Peek() bool {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()

	if started {
		select {
		case <-p.first:
		case <-time.After(p.Settle):
		}
	}
	return p.present()
}

func (p *Presence) present() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window.Present(p.now())
}

// Run evaluates presence every quarter of the timeout and calls onChange
// when it differs from last.
func (p *Presence) Run(ctx context.Context, last bool, onChange func(bool)) error {
	interval := p.window.Timeout / 4
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if cur := p.present(); cur != last {
				last = cur
				p.logger.Debug("companion presence changed", "present", cur)
				onChange(cur)
			}
		}
	}
}

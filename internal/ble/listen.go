// Package ble reports whether the companion device is within radio range by
// scanning for its advertisements.
package ble

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tinygo.org/x/bluetooth"
)

// Sighting is one advertisement received from the companion.
type Sighting struct {
	Address   string
	RSSI      int16
	LocalName string
	SeenAt    time.Time
}

type Options struct {
	Adapter string // "hci0" by default
	// Address is the companion's MAC, matched case-insensitively.
	Address string
}

// Listener wraps BlueZ scanning with context cancellation.
type Listener struct {
	adapter *bluetooth.Adapter
	opts    Options
	logger  *slog.Logger
}

func NewListener(opts Options, logger *slog.Logger) *Listener {
	if opts.Adapter == "" {
		opts.Adapter = "hci0"
	}

	return &Listener{
		adapter: bluetooth.NewAdapter(opts.Adapter),
		opts:    opts,
		logger:  logger.With("component", "ble"),
	}
}

// Run scans until ctx is done, calling onSeen for every advertisement from
// the companion address.
func (l *Listener) Run(ctx context.Context, onSeen func(Sighting)) error {
	l.logger.Info("ble: enabling adapter", "adapter", l.opts.Adapter)
	if err := l.adapter.Enable(); err != nil {
		return fmt.Errorf("ble enable (%s): %w", l.opts.Adapter, err)
	}

	go func() {
		<-ctx.Done()
		_ = l.adapter.StopScan()
	}()

	l.logger.Info("ble: scanning for companion", "address", l.opts.Address)

	// adapter.Scan blocks until StopScan() or error.
	err := l.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		addr := r.Address.String()
		if !matchesAddress(addr, l.opts.Address) {
			return
		}
		if onSeen != nil {
			onSeen(Sighting{
				Address:   addr,
				RSSI:      r.RSSI,
				LocalName: r.LocalName(),
				SeenAt:    time.Now(),
			})
		}
	})

	if ctx.Err() != nil {
		l.logger.Info("ble: scanning stopped (context canceled)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}

	l.logger.Info("ble: scanning stopped")
	return nil
}

func matchesAddress(got, want string) bool {
	return want != "" && strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}

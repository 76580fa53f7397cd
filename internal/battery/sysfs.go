package battery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultSysfsRoot = "/sys/class/power_supply"

// SysfsSource reads the charge level exposed by the Linux power supply class.
type SysfsSource struct {
	Root     string
	Supply   string
	Interval time.Duration
}

// NewSysfsSource returns a source polling supply (for example "BAT0") every interval.
func NewSysfsSource(supply string, interval time.Duration) *SysfsSource {
	return &SysfsSource{Root: defaultSysfsRoot, Supply: supply, Interval: interval}
}

// Peek returns the current charge percentage.
func (s *SysfsSource) Peek() (int, error) {
	path := filepath.Join(s.Root, s.Supply, "capacity")
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read battery capacity: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse battery capacity %q: %w", strings.TrimSpace(string(b)), err)
	}
	// some drivers briefly report >100 while topping off
	return min(max(v, 0), 100), nil
}

// Run polls the supply until ctx is done and calls onChange with every value
// that differs from the previously reported one. The first successful read is
// compared against last, the value the caller already displays.
func (s *SysfsSource) Run(ctx context.Context, last int, onChange func(int)) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			v, err := s.Peek()
			if err != nil {
				slog.Warn("battery: read failed", "supply", s.Supply, "error", err)
				continue
			}
			if v == last {
				continue
			}
			last = v
			onChange(v)
		}
	}
}

package journal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"watchcore/internal/watchface"
)

const defaultBuffer = 64

// Writer is a watchface.Observer that stores records on its own goroutine.
// When the buffer is full the record is dropped and counted.
type Writer struct {
	repo    Repository
	logger  *slog.Logger
	records chan watchface.Record
	dropped atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
}

func NewWriter(repo Repository, buffer int, logger *slog.Logger) *Writer {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Writer{
		repo:    repo,
		logger:  logger.With("component", "journal"),
		records: make(chan watchface.Record, buffer),
		done:    make(chan struct{}),
	}
}

func (w *Writer) Observe(r watchface.Record) {
	select {
	case w.records <- r:
	default:
		w.dropped.Add(1)
		w.logger.Warn("journal buffer full, record dropped", "kind", string(r.Kind))
	}
}

// Dropped reports how many records were lost to a full buffer.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

// Run stores records until Close is called and the buffer is drained.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)
	for r := range w.records {
		if err := w.repo.Insert(ctx, r); err != nil {
			w.logger.Error("journal insert failed", "kind", string(r.Kind), "error", err)
		}
	}
}

// Close stops accepting records and waits for Run to drain the buffer.
// Observe must not be called after Close.
func (w *Writer) Close() {
	w.closeOnce.Do(func() { close(w.records) })
	<-w.done
}

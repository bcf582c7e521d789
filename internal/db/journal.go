package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/navgrid/internal/pathreq"
)

// finalFlushTimeout bounds the last flush after Run's context is canceled.
const finalFlushTimeout = 5 * time.Second

// RouteWriter stores journal batches. RouteRepository implements it.
type RouteWriter interface {
	InsertBatch(ctx context.Context, records []RouteRecord) error
}

// Journal records coordinator outcomes asynchronously.
// Observe never blocks the coordinator: when the queue is full the outcome is dropped.
type Journal struct {
	writer    RouteWriter
	queue     chan RouteRecord
	batchSize int
	interval  time.Duration

	dropped atomic.Uint64
	written atomic.Uint64
	failed  atomic.Uint64
}

// NewJournal creates a journal. Non-positive sizes fall back to small defaults.
func NewJournal(writer RouteWriter, queueSize, batchSize int, interval time.Duration) *Journal {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if batchSize <= 0 {
		batchSize = 128
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Journal{
		writer:    writer,
		queue:     make(chan RouteRecord, queueSize),
		batchSize: batchSize,
		interval:  interval,
	}
}

// Observe enqueues an outcome. Suitable for pathreq.WithObserver.
func (j *Journal) Observe(o pathreq.Outcome) {
	select {
	case j.queue <- RecordFromOutcome(o):
	default:
		n := j.dropped.Add(1)
		slog.Warn("route journal full, dropping record", "request", o.ID, "dropped", n)
	}
}

// Run flushes batches until ctx is canceled, then drains what is queued.
func (j *Journal) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	batch := make([]RouteRecord, 0, j.batchSize)
	for {
		select {
		case <-ctx.Done():
			batch = j.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			err := j.flush(flushCtx, batch)
			cancel()
			if err != nil {
				return fmt.Errorf("final journal flush: %w", err)
			}
			return nil
		case rec := <-j.queue:
			batch = append(batch, rec)
			if len(batch) >= j.batchSize {
				// A failed batch is logged and dropped; the writer may recover.
				_ = j.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			_ = j.flush(ctx, batch)
			batch = batch[:0]
		}
	}
}

func (j *Journal) drain(batch []RouteRecord) []RouteRecord {
	for {
		select {
		case rec := <-j.queue:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
}

func (j *Journal) flush(ctx context.Context, batch []RouteRecord) error {
	if len(batch) == 0 {
		return nil
	}
	if err := j.writer.InsertBatch(ctx, batch); err != nil {
		j.failed.Add(uint64(len(batch)))
		slog.Error("route journal flush failed", "records", len(batch), "error", err)
		return err
	}
	j.written.Add(uint64(len(batch)))
	slog.Debug("route journal flushed", "records", len(batch))
	return nil
}

// Dropped returns the number of outcomes dropped because the queue was full.
func (j *Journal) Dropped() uint64 { return j.dropped.Load() }

// Written returns the number of records stored successfully.
func (j *Journal) Written() uint64 { return j.written.Load() }

// Failed returns the number of records lost to writer errors.
func (j *Journal) Failed() uint64 { return j.failed.Load() }

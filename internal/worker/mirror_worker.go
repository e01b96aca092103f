// Package worker keeps the spreadsheet mirror in step with the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// LedgerLoader reads the current ledger; ledger.Store satisfies it.
type LedgerLoader interface {
	Load(ctx context.Context) core.Ledger
}

// MirrorWorker rewrites the sheet from the shared ledger backend whenever an
// event arrives and on a fixed interval.
type MirrorWorker struct {
	loader LedgerLoader
	mirror sheets.LedgerMirror
	logger *log.Logger

	// syncs are serialized so an event and a tick never write concurrently.
	mu sync.Mutex

	synced   atomic.Uint64
	failures atomic.Uint64
	lastSync atomic.Int64
}

func NewMirrorWorker(loader LedgerLoader, mirror sheets.LedgerMirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{loader: loader, mirror: mirror, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleLedgerEvent mirrors the ledger in response to msg. The returned
// error makes the consumer requeue the message.
func (w *MirrorWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		"event", msg.Type,
		log.FieldTransactionID, msg.TransactionID,
		log.FieldRevision, msg.Revision)

	if err := w.Sync(ctx); err != nil {
		return fmt.Errorf("mirror after %s event: %w", msg.Type, err)
	}
	return nil
}

// Sync loads the ledger and writes it to the mirror.
func (w *MirrorWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	l := w.loader.Load(ctx)
	if err := w.mirror.MirrorLedger(ctx, l); err != nil {
		w.failures.Add(1)
		return err
	}
	w.synced.Add(1)
	w.lastSync.Store(time.Now().UnixMilli())
	w.logger.DebugContext(ctx, "Mirror in sync", log.FieldCount, len(l))
	return nil
}

// RunPeriodic syncs once immediately and then every interval until ctx is
// done. Failures are logged and retried on the next tick.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("sync interval must be positive")
	}

	w.logger.InfoContext(ctx, "Starting periodic mirror", "interval", interval.String())
	w.syncAndLog(ctx, "startup")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Periodic mirror stopped")
			return ctx.Err()
		case <-ticker.C:
			w.syncAndLog(ctx, "periodic")
		}
	}
}

func (w *MirrorWorker) syncAndLog(ctx context.Context, trigger string) {
	if err := w.Sync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Mirror sync failed", "trigger", trigger, log.FieldError, err)
	}
}

// Stats reports how many syncs succeeded and failed.
type Stats struct {
	Synced   uint64
	Failures uint64
	LastSync time.Time
}

func (w *MirrorWorker) Stats() Stats {
	s := Stats{Synced: w.synced.Load(), Failures: w.failures.Load()}
	if ms := w.lastSync.Load(); ms > 0 {
		s.LastSync = time.UnixMilli(ms)
	}
	return s
}

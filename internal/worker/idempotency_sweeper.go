// Package worker runs periodic housekeeping next to the HTTP server.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// KeyPruner deletes finished idempotency keys created before cutoff.
type KeyPruner interface {
	DeleteExpiredIdempotencyKeys(ctx context.Context, cutoff time.Time) (int64, error)
}

// IdempotencySweeper prunes idempotency keys once they outlive their
// retention window, so replays stay bounded to that window.
type IdempotencySweeper struct {
	keys      KeyPruner
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
	stopCh    chan struct{}
}

func NewIdempotencySweeper(keys KeyPruner, retention time.Duration, logger *zap.Logger) *IdempotencySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotencySweeper{
		keys:      keys,
		retention: retention,
		interval:  time.Hour,
		logger:    logger,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// WithInterval sets how often the sweeper runs.
func (w *IdempotencySweeper) WithInterval(interval time.Duration) *IdempotencySweeper {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Start loops until Stop is called or ctx is canceled.
func (w *IdempotencySweeper) Start(ctx context.Context) {
	w.logger.Info("idempotency sweeper started", zap.Duration("interval", w.interval), zap.Duration("retention", w.retention))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("idempotency sweeper stopping", zap.Error(ctx.Err()))
			return
		case <-w.stopCh:
			w.logger.Info("idempotency sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.SweepOnce(ctx); err != nil {
				w.logger.Warn("idempotency sweep failed", zap.Error(err))
			}
		}
	}
}

func (w *IdempotencySweeper) Stop() {
	close(w.stopCh)
}

// SweepOnce prunes expired keys immediately.
func (w *IdempotencySweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := w.keys.DeleteExpiredIdempotencyKeys(ctx, w.now().Add(-w.retention))
	if err != nil {
		return 0, fmt.Errorf("prune idempotency keys: %w", err)
	}
	if n > 0 {
		w.logger.Info("pruned idempotency keys", zap.Int64("count", n))
	}
	return n, nil
}

// Run starts the sweeper in a goroutine and returns its stop func.
func (w *IdempotencySweeper) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *IdempotencySweeper) String() string {
	return fmt.Sprintf("IdempotencySweeper(interval=%v, retention=%v)", w.interval, w.retention)
}

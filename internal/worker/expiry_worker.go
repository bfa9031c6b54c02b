// Package worker runs the background sweeps: persisting expiry on
// activated tickets and purging stale cart items. Read paths evaluate both
// lazily, so correctness never depends on these running.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

type ExpiryWorker struct {
	invoiceRepo *postgres.InvoiceRepository
	interval    time.Duration
	batchSize   int
	logger      *slog.Logger
}

func NewExpiryWorker(
	invoiceRepo *postgres.InvoiceRepository,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *ExpiryWorker {
	return &ExpiryWorker{
		invoiceRepo: invoiceRepo,
		interval:    interval,
		batchSize:   batchSize,
		logger:      logger,
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	w.logger.Info("expiry worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry worker stopping")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error("expiry sweep failed", "error", err)
			}
		}
	}
}

// sweep persists EXPIRED on activated items whose window has closed.
func (w *ExpiryWorker) sweep(ctx context.Context) error {
	overdue, err := w.invoiceRepo.FindOverdueActivated(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}

	now := time.Now()
	var swept int
	for i := range overdue {
		item := &overdue[i]
		if err := item.MarkExpired(now); err != nil {
			w.logger.Error("failed to mark item expired", "item_id", item.ID, "error", err)
			continue
		}
		if err := w.invoiceRepo.UpdateItem(ctx, item); err != nil {
			w.logger.Error("failed to persist expiry", "item_id", item.ID, "error", err)
			continue
		}
		swept++
	}

	w.logger.Info("expiry sweep complete", "overdue", len(overdue), "swept", swept)
	return nil
}

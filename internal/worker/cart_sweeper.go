package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

// CartSweeper purges cart items past their TTL across all carts. Read
// paths already exclude and prune expired items; this keeps the table from
// accumulating abandoned rows.
type CartSweeper struct {
	cartRepo *postgres.CartRepository
	interval time.Duration
	logger   *slog.Logger
}

func NewCartSweeper(cartRepo *postgres.CartRepository, interval time.Duration, logger *slog.Logger) *CartSweeper {
	return &CartSweeper{
		cartRepo: cartRepo,
		interval: interval,
		logger:   logger,
	}
}

func (w *CartSweeper) Start(ctx context.Context) {
	w.logger.Info("cart sweeper started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cart sweeper stopping")
			return
		case <-ticker.C:
			pruned, err := w.cartRepo.PruneAllExpired(ctx)
			if err != nil {
				w.logger.Error("cart sweep failed", "error", err)
				continue
			}
			if pruned > 0 {
				w.logger.Info("cart sweep complete", "pruned", pruned)
			}
		}
	}
}

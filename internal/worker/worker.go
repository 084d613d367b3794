package worker

import (
	"context"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

const sweepBatchSize = 100

// StaleOrderSource lists orders that never received a gateway confirmation
type StaleOrderSource interface {
	GetStaleOrders(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// Expirer applies the expiry transition, satisfied by *service.Reconciler
type Expirer interface {
	Expire(ctx context.Context, order *models.Order) error
}

// ExpirySweeper periodically reconciles orders stuck in CREATED past the
// confirmation window, marking them EXPIRED so they are never left indefinite.
type ExpirySweeper struct {
	orders     StaleOrderSource
	reconciler Expirer
	interval   time.Duration
	maxAge     time.Duration
	logger     *zap.Logger
}

// NewExpirySweeper creates a new sweeper
func NewExpirySweeper(orders StaleOrderSource, reconciler Expirer, interval, maxAge time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		orders:     orders,
		reconciler: reconciler,
		interval:   interval,
		maxAge:     maxAge,
		logger:     util.GetLogger(),
	}
}

// Start runs the sweep loop until the context is cancelled
func (w *ExpirySweeper) Start(ctx context.Context) error {
	w.logger.Info("Starting expiry sweeper",
		zap.Duration("interval", w.interval),
		zap.Duration("max_age", w.maxAge))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Expiry sweeper stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.Error("Expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep expires one batch of stale orders. Failures are isolated per order so
// one bad row never blocks the rest of the batch.
func (w *ExpirySweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-w.maxAge)
	stale, err := w.orders.GetStaleOrders(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return err
	}

	for i := range stale {
		if err := w.reconciler.Expire(ctx, &stale[i]); err != nil {
			w.logger.Error("Failed to expire order",
				zap.String("order_id", stale[i].ID),
				zap.Error(err))
		}
	}

	if len(stale) > 0 {
		w.logger.Info("Expiry sweep finished", zap.Int("orders", len(stale)))
	}
	return nil
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-pos/meridian-pos/internal/catalog"
)

// ThresholdSource supplies the configured low-stock threshold.
type ThresholdSource interface {
	LowStockThreshold(ctx context.Context) (int, error)
}

// LowStockLister returns active products at or below a stock threshold.
type LowStockLister interface {
	ListLowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
}

// LowStockScanJob walks the catalog and reports every active product at or
// below the low-stock threshold. The scan is read-only; it exists so the
// morning report shows what needs reordering before the store opens.
type LowStockScanJob struct {
	Catalog   LowStockLister
	Threshold ThresholdSource
	Logger    *slog.Logger
}

// NewLowStockScanJob initialises the scan handler.
func NewLowStockScanJob(cat LowStockLister, threshold ThresholdSource, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{Catalog: cat, Threshold: threshold, Logger: logger}
}

// Handle executes one scan run.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("lowstock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	threshold := payload.Threshold
	if threshold <= 0 && j.Threshold != nil {
		configured, err := j.Threshold.LowStockThreshold(ctx)
		if err != nil {
			return fmt.Errorf("lowstock scan: read threshold: %w", err)
		}
		threshold = configured
	}

	products, err := j.Catalog.ListLowStock(ctx, threshold)
	if err != nil {
		return fmt.Errorf("lowstock scan: list products: %w", err)
	}

	for _, p := range products {
		j.Logger.Warn("low stock",
			slog.Int64("product_id", p.ID),
			slog.String("name", p.Name),
			slog.Int("stock", p.Stock),
			slog.Int("threshold", threshold))
	}
	j.Logger.Info("low stock scan complete",
		slog.Int("threshold", threshold),
		slog.Int("flagged", len(products)))
	return nil
}

package inventory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ThresholdProvider supplies the configured low-stock threshold.
type ThresholdProvider interface {
	LowStockThreshold(ctx context.Context) (int, error)
}

// CacheInvalidator flushes cached catalog projections after stock writes.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// Service exposes ledger queries and manual stock corrections over the pool.
type Service struct {
	pool      *pgxpool.Pool
	ledger    Ledger
	threshold ThresholdProvider
	cache     CacheInvalidator
	logger    *slog.Logger
}

// NewService builds Service.
func NewService(pool *pgxpool.Pool, threshold ThresholdProvider, cache CacheInvalidator, logger *slog.Logger) *Service {
	return &Service{pool: pool, threshold: threshold, cache: cache, logger: logger}
}

// Ledger exposes the stateless ledger for callers that bring their own
// transactional scope, e.g. the sale coordinator.
func (s *Service) Ledger() Ledger {
	return s.ledger
}

// Availability reports stock on hand for display, flagging products at or
// below the configured threshold.
func (s *Service) Availability(ctx context.Context, productID int64) (*Availability, error) {
	var name string
	var stock int
	err := s.pool.QueryRow(ctx, `SELECT name, stock FROM products WHERE id = $1 AND active`, productID).
		Scan(&name, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{ProductID: productID}
		}
		return nil, err
	}

	threshold, err := s.threshold.LowStockThreshold(ctx)
	if err != nil {
		return nil, err
	}
	return &Availability{
		ProductID: productID,
		Name:      name,
		Stock:     stock,
		LowStock:  stock <= threshold,
		Threshold: threshold,
	}, nil
}

// SetStock writes an absolute stock level for manual corrections.
func (s *Service) SetStock(ctx context.Context, productID int64, stock int) error {
	if err := s.ledger.SetStock(ctx, s.pool, productID, stock); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateCache(ctx)
	}
	s.logger.Info("stock corrected", slog.Int64("product_id", productID), slog.Int("stock", stock))
	return nil
}

package settings

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const thresholdCacheTTL = time.Minute

// Service exposes store settings and serves the low-stock threshold to
// the inventory module. The threshold is read on every availability
// lookup, so it is cached in-process for a short window.
type Service struct {
	repo   Repository
	logger *slog.Logger

	mu        sync.Mutex
	threshold int
	fetchedAt time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, req UpdateSettingsRequest) (*Settings, error) {
	updated, err := s.repo.Update(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.threshold = updated.LowStockThreshold
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	s.logger.Info("settings updated", slog.Int("low_stock_threshold", updated.LowStockThreshold))
	return updated, nil
}

// LowStockThreshold satisfies the inventory threshold port.
func (s *Service) LowStockThreshold(ctx context.Context) (int, error) {
	s.mu.Lock()
	if time.Since(s.fetchedAt) < thresholdCacheTTL {
		v := s.threshold
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	current, err := s.repo.Get(ctx)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.threshold = current.LowStockThreshold
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return current.LowStockThreshold, nil
}

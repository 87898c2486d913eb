package settings

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type memorySettingsRepo struct {
	current Settings
	reads   int
}

func (r *memorySettingsRepo) Get(ctx context.Context) (*Settings, error) {
	r.reads++
	s := r.current
	return &s, nil
}

func (r *memorySettingsRepo) Update(ctx context.Context, req UpdateSettingsRequest) (*Settings, error) {
	if req.StoreName != nil {
		r.current.StoreName = *req.StoreName
	}
	if req.LowStockThreshold != nil {
		r.current.LowStockThreshold = *req.LowStockThreshold
	}
	s := r.current
	return &s, nil
}

func TestLowStockThresholdCachesReads(t *testing.T) {
	repo := &memorySettingsRepo{current: Settings{StoreName: "Corner Store", LowStockThreshold: 5}}
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	v, err := svc.LowStockThreshold(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, v)

	v, err = svc.LowStockThreshold(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, v)
	require.Equal(t, 1, repo.reads)
}

func TestUpdateRefreshesThreshold(t *testing.T) {
	repo := &memorySettingsRepo{current: Settings{StoreName: "Corner Store", LowStockThreshold: 5}}
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err := svc.LowStockThreshold(ctx)
	require.NoError(t, err)

	newThreshold := 12
	updated, err := svc.Update(ctx, UpdateSettingsRequest{LowStockThreshold: &newThreshold})
	require.NoError(t, err)
	require.Equal(t, 12, updated.LowStockThreshold)

	v, err := svc.LowStockThreshold(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, v)
}

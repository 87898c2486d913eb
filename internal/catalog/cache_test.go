package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	return cache, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestFetchJSONCachesLoaderResult(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return []POSProduct{{ID: 1, Name: "Water", Price: 1.50, Stock: 10}}, nil
	}

	var first []POSProduct
	require.NoError(t, cache.FetchJSON(ctx, "catalog:pos_products", &first, loader))
	require.Len(t, first, 1)

	var second []POSProduct
	require.NoError(t, cache.FetchJSON(ctx, "catalog:pos_products", &second, loader))
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)
}

func TestBumpInvalidatesCachedEntries(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return []POSProduct{{ID: 1, Name: "Water", Price: 1.50, Stock: 10 - calls}}, nil
	}

	var out []POSProduct
	require.NoError(t, cache.FetchJSON(ctx, "catalog:pos_products", &out, loader))
	require.NoError(t, cache.Bump(ctx))
	require.NoError(t, cache.FetchJSON(ctx, "catalog:pos_products", &out, loader))
	require.Equal(t, 2, calls)
	require.Equal(t, 8, out[0].Stock)
}

func TestNilClientPassesThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return []POSProduct{{ID: 1}}, nil
	}

	var out []POSProduct
	require.NoError(t, cache.FetchJSON(ctx, "catalog:pos_products", &out, loader))
	require.NoError(t, cache.FetchJSON(ctx, "catalog:pos_products", &out, loader))
	require.Equal(t, 2, calls)
	require.NoError(t, cache.Bump(ctx))
}

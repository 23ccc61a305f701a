package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/types"
)

// redisAddr returns the address of a live Redis for integration tests, or
// skips. Run with INKWELL_TEST_REDIS_ADDR=localhost:6379.
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("INKWELL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set INKWELL_TEST_REDIS_ADDR to run Redis integration tests")
	}
	return addr
}

func newIntegrationTier(t *testing.T) *RedisTier {
	t.Helper()
	cfg := config.ForTestingWithRedis(redisAddr(t)).Redis
	cfg.KeyPrefix = fmt.Sprintf("inkwell-test-%d:", time.Now().UnixNano())

	tier, err := NewRedisTier(cfg, nil)
	require.NoError(t, err)
	require.True(t, tier.IsAvailable(), "Redis must be reachable for integration tests")

	t.Cleanup(func() {
		tier.DeleteByPattern(context.Background(), "*")
		tier.Close()
	})
	return tier
}

func TestRedisTierSetGet(t *testing.T) {
	tier := newIntegrationTier(t)
	ctx := context.Background()

	require.NoError(t, tier.Set(ctx, "k1", []byte("value"), time.Minute))

	data, err := tier.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), data)
}

func TestRedisTierMiss(t *testing.T) {
	tier := newIntegrationTier(t)

	_, err := tier.Get(context.Background(), "never-set")
	require.ErrorIs(t, err, types.ErrCacheMiss)
}

func TestRedisTierTTLExpiry(t *testing.T) {
	tier := newIntegrationTier(t)
	ctx := context.Background()

	require.NoError(t, tier.Set(ctx, "k1", []byte("short-lived"), time.Second))

	_, err := tier.Get(ctx, "k1")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = tier.Get(ctx, "k1")
	require.ErrorIs(t, err, types.ErrCacheMiss)
}

func TestRedisTierDelete(t *testing.T) {
	tier := newIntegrationTier(t)
	ctx := context.Background()

	require.NoError(t, tier.Set(ctx, "k1", []byte("v"), time.Minute))
	require.NoError(t, tier.Delete(ctx, "k1"))

	_, err := tier.Get(ctx, "k1")
	require.ErrorIs(t, err, types.ErrCacheMiss)

	// Deleting an absent key is not an error.
	require.NoError(t, tier.Delete(ctx, "never-existed"))
}

func TestRedisTierDeleteByPattern(t *testing.T) {
	tier := newIntegrationTier(t)
	ctx := context.Background()

	require.NoError(t, tier.Set(ctx, "v1:qa:a", []byte("1"), time.Minute))
	require.NoError(t, tier.Set(ctx, "v1:qa:b", []byte("2"), time.Minute))
	require.NoError(t, tier.Set(ctx, "v1:sentiment:c", []byte("3"), time.Minute))

	require.NoError(t, tier.DeleteByPattern(ctx, "v1:qa:*"))

	_, err := tier.Get(ctx, "v1:qa:a")
	require.ErrorIs(t, err, types.ErrCacheMiss)
	_, err = tier.Get(ctx, "v1:sentiment:c")
	require.NoError(t, err)
}

func TestRedisTierEngineRoundTrip(t *testing.T) {
	cfg := config.ForTestingWithRedis(redisAddr(t))
	cfg.Redis.KeyPrefix = fmt.Sprintf("inkwell-test-%d:", time.Now().UnixNano())

	e, err := NewEngine(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		e.InvalidatePattern(context.Background(), "*")
		e.Close()
	})

	ctx := context.Background()
	entry := &types.CacheEntry{Payload: []byte("durable payload"), Operation: types.OpSummarize}
	require.NoError(t, e.Set(ctx, "k1", entry, testClassification()))

	got, err := e.Get(ctx, "k1", types.OpSummarize)
	require.NoError(t, err)
	require.Equal(t, "durable payload", string(got.Payload))
}

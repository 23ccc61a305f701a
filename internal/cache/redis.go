package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/types"
)

// disconnectErrorThreshold is the consecutive error count after which the
// durable tier is marked disconnected until a health check succeeds.
const disconnectErrorThreshold = 5

// RedisTier is the durable cache tier backed by a Redis-compatible store.
// A missing key surfaces as types.ErrCacheMiss; every other failure is a
// connection-level error the engine degrades around.
type RedisTier struct {
	client *redis.Client
	config config.RedisConfig
	logger *slog.Logger

	mu            sync.RWMutex
	connected     atomic.Bool
	lastError     error
	lastErrorTime time.Time
	errorCount    atomic.Int64

	healthCheckStopCh chan struct{}
	healthCheckWg     sync.WaitGroup

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

// NewRedisTier connects to Redis. A failed initial ping does not fail
// construction; the tier starts disconnected and the health check worker
// restores it when the store comes back.
func NewRedisTier(cfg config.RedisConfig, logger *slog.Logger) (*RedisTier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password.Value(),
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
	}

	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: cfg.TLSSkipVerify,
		}
		if cfg.TLSSkipVerify {
			logger.Warn("TLS certificate verification is disabled - this is insecure for production use")
		}
	}

	rt := &RedisTier{
		client:            redis.NewClient(opts),
		config:            cfg,
		logger:            logger.With("component", "durable-tier"),
		healthCheckStopCh: make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := rt.client.Ping(ctx).Err(); err != nil {
		rt.logger.Warn("Redis initial connection failed, starting degraded", "error", err)
		rt.setError(err)
	} else {
		rt.connected.Store(true)
		rt.logger.Info("Redis connected", "address", cfg.Address)
	}

	if cfg.HealthCheckInterval > 0 {
		rt.healthCheckWg.Add(1)
		go rt.healthCheckWorker()
	}

	return rt, nil
}

func (t *RedisTier) Name() string {
	return "durable"
}

func (t *RedisTier) IsAvailable() bool {
	return t.connected.Load()
}

func (t *RedisTier) prefixKey(key string) string {
	return t.config.KeyPrefix + key
}

// Get retrieves the raw entry bytes for key.
func (t *RedisTier) Get(ctx context.Context, key string) ([]byte, error) {
	if !t.connected.Load() {
		return nil, types.ErrCacheUnavailable
	}

	data, err := t.client.Get(ctx, t.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			t.misses.Add(1)
			return nil, types.ErrCacheMiss
		}
		t.handleError(err)
		return nil, types.NewCacheError("Get", key, "durable", err)
	}

	t.hits.Add(1)
	t.clearError()
	return data, nil
}

// Set stores entry bytes under key with the given TTL (SET ... EX).
func (t *RedisTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !t.connected.Load() {
		return types.ErrCacheUnavailable
	}

	if err := t.client.Set(ctx, t.prefixKey(key), value, ttl).Err(); err != nil {
		t.handleError(err)
		return types.NewCacheError("Set", key, "durable", err)
	}

	t.sets.Add(1)
	t.clearError()
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (t *RedisTier) Delete(ctx context.Context, key string) error {
	if !t.connected.Load() {
		return types.ErrCacheUnavailable
	}

	if err := t.client.Del(ctx, t.prefixKey(key)).Err(); err != nil {
		t.handleError(err)
		return types.NewCacheError("Delete", key, "durable", err)
	}

	t.deletes.Add(1)
	t.clearError()
	return nil
}

// DeleteByPattern removes every key matching the pattern using SCAN, so a
// large keyspace is never blocked by a single KEYS call.
func (t *RedisTier) DeleteByPattern(ctx context.Context, pattern string) error {
	if !t.connected.Load() {
		return types.ErrCacheUnavailable
	}

	fullPattern := t.prefixKey(pattern)
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := t.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			t.handleError(err)
			return types.NewCacheError("DeleteByPattern", fullPattern, "durable", err)
		}

		if len(keys) > 0 {
			if err := t.client.Del(ctx, keys...).Err(); err != nil {
				t.handleError(err)
				return types.NewCacheError("DeleteByPattern", fullPattern, "durable", err)
			}
			deleted += int64(len(keys))
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	t.deletes.Add(deleted)
	t.logger.Debug("Deleted keys by pattern", "pattern", fullPattern, "deleted", deleted)
	t.clearError()
	return nil
}

func (t *RedisTier) healthCheckWorker() {
	defer t.healthCheckWg.Done()

	ticker := time.NewTicker(t.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.healthCheckStopCh:
			return
		case <-ticker.C:
			t.performHealthCheck()
		}
	}
}

func (t *RedisTier) performHealthCheck() {
	wasConnected := t.connected.Load()

	ctx, cancel := context.WithTimeout(context.Background(), t.config.DialTimeout)
	defer cancel()

	if err := t.client.Ping(ctx).Err(); err != nil {
		if wasConnected {
			t.logger.Warn("Redis health check failed", "error", err)
			t.setError(err)
		}
		return
	}

	if !wasConnected {
		t.connected.Store(true)
		t.errorCount.Store(0)
		t.logger.Info("Redis connection restored via health check")
	}
}

func (t *RedisTier) handleError(err error) {
	t.mu.Lock()
	t.lastError = err
	t.lastErrorTime = time.Now()
	t.mu.Unlock()

	if t.errorCount.Add(1) >= disconnectErrorThreshold {
		if t.connected.CompareAndSwap(true, false) {
			t.logger.Warn("Redis marked as disconnected after repeated errors",
				"error_count", t.errorCount.Load(),
				"last_error", err,
			)
		}
	}
}

func (t *RedisTier) clearError() {
	if t.errorCount.Swap(0) > 0 {
		if t.connected.CompareAndSwap(false, true) {
			t.logger.Info("Redis connection restored")
		}
	}
}

func (t *RedisTier) setError(err error) {
	t.mu.Lock()
	t.lastError = err
	t.lastErrorTime = time.Now()
	t.mu.Unlock()
	t.connected.Store(false)
}

// LastError returns the most recent connection error and when it occurred.
func (t *RedisTier) LastError() (error, time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastError, t.lastErrorTime
}

// Ping checks connectivity directly.
func (t *RedisTier) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

func (t *RedisTier) Close() error {
	close(t.healthCheckStopCh)
	t.healthCheckWg.Wait()
	t.connected.Store(false)
	return t.client.Close()
}

var _ types.DurableLayer = (*RedisTier)(nil)

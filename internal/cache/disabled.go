package cache

import (
	"context"
	"time"

	"github.com/tildesmith/inkwell/internal/types"
)

// DisabledDurable stands in for the durable tier when Redis is disabled.
// Every read misses and every write succeeds silently, so the engine runs
// hot-tier-only without special cases.
type DisabledDurable struct{}

func NewDisabledDurable() *DisabledDurable { return &DisabledDurable{} }

func (d *DisabledDurable) Name() string      { return "disabled" }
func (d *DisabledDurable) IsAvailable() bool { return false }

func (d *DisabledDurable) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, types.ErrCacheMiss
}

func (d *DisabledDurable) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (d *DisabledDurable) Delete(ctx context.Context, key string) error { return nil }

func (d *DisabledDurable) DeleteByPattern(ctx context.Context, pattern string) error { return nil }

func (d *DisabledDurable) Close() error { return nil }

var _ types.DurableLayer = (*DisabledDurable)(nil)

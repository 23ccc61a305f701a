package cache

import (
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tildesmith/inkwell/internal/types"
)

// HotTier is the bounded in-process cache layer: an item-count LRU holding
// ready-to-serve entries with per-slot expiry. It is never the sole source
// of truth; anything here is also in the durable tier (or was, at most one
// write ago).
type HotTier struct {
	inner *lru.Cache[string, hotSlot]
	max   int

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
}

type hotSlot struct {
	entry     *types.CacheEntry
	expiresAt time.Time
}

// NewHotTier creates a hot tier holding at most maxEntries entries; the
// least recently used slot is evicted to admit new ones.
func NewHotTier(maxEntries int) (*HotTier, error) {
	h := &HotTier{max: maxEntries}

	inner, err := lru.NewWithEvict(maxEntries, func(key string, slot hotSlot) {
		h.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}

	h.inner = inner
	return h, nil
}

// Get returns the entry for key, or false on a miss. Expired slots are
// removed lazily on access.
func (h *HotTier) Get(key string) (*types.CacheEntry, bool) {
	slot, ok := h.inner.Get(key)
	if !ok {
		h.misses.Add(1)
		return nil, false
	}

	if time.Now().After(slot.expiresAt) {
		h.inner.Remove(key)
		h.misses.Add(1)
		return nil, false
	}

	h.hits.Add(1)
	return slot.entry, true
}

// Set stores an entry. Eligibility is the caller's decision; the tier only
// enforces the item-count ceiling. The slot never outlives the entry's own
// expiry, so a late promotion from the durable tier cannot extend its life.
func (h *HotTier) Set(key string, entry *types.CacheEntry) {
	expiresAt := time.Now().Add(entry.TTL())
	if !entry.CreatedAt.IsZero() && entry.ExpiresAt().Before(expiresAt) {
		expiresAt = entry.ExpiresAt()
	}
	h.inner.Add(key, hotSlot{
		entry:     entry,
		expiresAt: expiresAt,
	})
	h.sets.Add(1)
}

// Delete removes a key. Absent keys are not an error.
func (h *HotTier) Delete(key string) {
	h.inner.Remove(key)
	h.deletes.Add(1)
}

// DeleteByPattern removes all keys matching the pattern and returns the
// number removed.
func (h *HotTier) DeleteByPattern(pattern string) int {
	var removed int
	for _, key := range h.inner.Keys() {
		if matchPattern(key, pattern) {
			h.inner.Remove(key)
			removed++
		}
	}
	h.deletes.Add(int64(removed))
	return removed
}

// Purge drops every entry.
func (h *HotTier) Purge() {
	h.inner.Purge()
}

// Len returns the current entry count.
func (h *HotTier) Len() int {
	return h.inner.Len()
}

// Cap returns the configured entry ceiling.
func (h *HotTier) Cap() int {
	return h.max
}

// Stats returns hot tier counters.
func (h *HotTier) Stats() types.HotTierStats {
	return types.HotTierStats{
		Hits:      h.hits.Load(),
		Misses:    h.misses.Load(),
		Sets:      h.sets.Load(),
		Deletes:   h.deletes.Load(),
		Evictions: h.evictions.Load(),
	}
}

// HitRatio returns the hot tier hit ratio.
func (h *HotTier) HitRatio() float64 {
	hits := h.hits.Load()
	total := hits + h.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// matchPattern supports glob-lite patterns: a literal key, "*", "prefix*",
// "*suffix", or "prefix*suffix".
func matchPattern(key, pattern string) bool {
	if pattern == "*" {
		return true
	}

	if strings.HasSuffix(pattern, "*") && !strings.HasPrefix(pattern, "*") {
		rest := strings.TrimSuffix(pattern, "*")
		if !strings.Contains(rest, "*") {
			return strings.HasPrefix(key, rest)
		}
	}

	if strings.HasPrefix(pattern, "*") {
		suffix := strings.TrimPrefix(pattern, "*")
		return strings.HasSuffix(key, suffix)
	}

	if parts := strings.Split(pattern, "*"); len(parts) == 2 {
		return strings.HasPrefix(key, parts[0]) && strings.HasSuffix(key, parts[1])
	}

	return key == pattern
}

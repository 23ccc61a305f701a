package cache

import (
	"encoding/json"
	"fmt"

	"github.com/tildesmith/inkwell/internal/types"
)

// encodeEntry serializes a cache entry for the durable tier.
func encodeEntry(e *types.CacheEntry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return data, nil
}

// decodeEntry deserializes a durable-tier value back into an entry.
func decodeEntry(data []byte) (*types.CacheEntry, error) {
	var e types.CacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	return &e, nil
}

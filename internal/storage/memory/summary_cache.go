package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

type cacheEntry struct {
	payload   []byte
	expiresAt time.Time // zero means no expiry
}

// SummaryCache is an in-memory implementation of storage.SummaryCache.
// Entries are stored serialized so callers never share state.
type SummaryCache struct {
	mu   sync.Mutex
	data map[string]cacheEntry
	now  func() time.Time
}

// NewSummaryCache creates a new in-memory summary cache.
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{data: make(map[string]cacheEntry), now: time.Now}
}

var _ storage.SummaryCache = (*SummaryCache)(nil)

// Get returns ErrNotFound on a miss or an expired entry.
func (c *SummaryCache) Get(_ context.Context, wallet string) (*domain.WindowSet, error) {
	c.mu.Lock()
	entry, ok := c.data[wallet]
	if ok && !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.data, wallet)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return nil, storage.ErrNotFound
	}

	var set domain.WindowSet
	if err := json.Unmarshal(entry.payload, &set); err != nil {
		return nil, fmt.Errorf("decode cached summary: %w", err)
	}
	return &set, nil
}

// Set stores a window set.
func (c *SummaryCache) Set(_ context.Context, wallet string, set *domain.WindowSet, ttl time.Duration) error {
	if wallet == "" || set == nil {
		return storage.ErrInvalidInput
	}
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	entry := cacheEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.data[wallet] = entry
	c.mu.Unlock()
	return nil
}

// Delete drops a cached entry.
func (c *SummaryCache) Delete(_ context.Context, wallet string) error {
	c.mu.Lock()
	delete(c.data, wallet)
	c.mu.Unlock()
	return nil
}

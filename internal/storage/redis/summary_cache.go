package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// SummaryCache stores each wallet's window set as JSON at "pnl:summary:{wallet}".
type SummaryCache struct {
	rdb *redis.Client
}

// NewSummaryCache creates a SummaryCache backed by the given client.
func NewSummaryCache(c *Client) *SummaryCache {
	return &SummaryCache{rdb: c.rdb}
}

var _ storage.SummaryCache = (*SummaryCache)(nil)

func summaryKey(wallet string) string {
	return "pnl:summary:" + wallet
}

// Get returns storage.ErrNotFound when the key does not exist or has expired.
func (c *SummaryCache) Get(ctx context.Context, wallet string) (*domain.WindowSet, error) {
	data, err := c.rdb.Get(ctx, summaryKey(wallet)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get summary %s: %w", wallet, err)
	}

	var set domain.WindowSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("redis: decode summary %s: %w", wallet, err)
	}
	return &set, nil
}

// Set stores a window set. A zero ttl keeps the key until deleted.
func (c *SummaryCache) Set(ctx context.Context, wallet string, set *domain.WindowSet, ttl time.Duration) error {
	if wallet == "" || set == nil {
		return storage.ErrInvalidInput
	}
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("redis: encode summary %s: %w", wallet, err)
	}
	if err := c.rdb.Set(ctx, summaryKey(wallet), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set summary %s: %w", wallet, err)
	}
	return nil
}

// Delete drops a cached entry.
func (c *SummaryCache) Delete(ctx context.Context, wallet string) error {
	if err := c.rdb.Del(ctx, summaryKey(wallet)).Err(); err != nil {
		return fmt.Errorf("redis: delete summary %s: %w", wallet, err)
	}
	return nil
}

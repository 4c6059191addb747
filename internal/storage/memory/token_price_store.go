package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// TokenPriceStore is an in-memory implementation of storage.TokenPriceStore.
type TokenPriceStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenPrice // keyed by mint
}

// NewTokenPriceStore creates a new in-memory token price store.
func NewTokenPriceStore() *TokenPriceStore {
	return &TokenPriceStore{data: make(map[string]*domain.TokenPrice)}
}

var _ storage.TokenPriceStore = (*TokenPriceStore)(nil)

// Upsert stores the latest price per mint.
func (s *TokenPriceStore) Upsert(_ context.Context, prices []*domain.TokenPrice) error {
	for _, p := range prices {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range prices {
		copy := *p
		s.data[p.Mint] = &copy
	}
	return nil
}

// GetByMints retrieves prices for the given mints, sorted by mint.
func (s *TokenPriceStore) GetByMints(_ context.Context, mints []string) ([]*domain.TokenPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TokenPrice, 0, len(mints))
	seen := make(map[string]struct{}, len(mints))
	for _, m := range mints {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		if p, ok := s.data[m]; ok {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Mint < result[j].Mint })
	return result, nil
}

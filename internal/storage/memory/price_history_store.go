package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string]float64 // month -> price
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{data: make(map[string]float64)}
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Upsert stores monthly prices, replacing existing months.
func (s *PriceHistoryStore) Upsert(_ context.Context, rows []domain.MonthlyPrice) error {
	for _, r := range rows {
		if r.Month == "" || r.PriceUSD <= 0 {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		s.data[r.Month] = r.PriceUSD
	}
	return nil
}

// GetAll retrieves all months, ordered by month ASC.
func (s *PriceHistoryStore) GetAll(_ context.Context) ([]domain.MonthlyPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.MonthlyPrice, 0, len(s.data))
	for m, p := range s.data {
		result = append(result, domain.MonthlyPrice{Month: m, PriceUSD: p})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result, nil
}

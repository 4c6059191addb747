package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// DailyStatStore is an in-memory implementation of storage.DailyStatStore.
type DailyStatStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.WalletDailyStat // keyed by snapshot_id
}

// NewDailyStatStore creates a new in-memory daily stat store.
func NewDailyStatStore() *DailyStatStore {
	return &DailyStatStore{data: make(map[string][]*domain.WalletDailyStat)}
}

var _ storage.DailyStatStore = (*DailyStatStore)(nil)

// InsertBulk adds the calendar rows of one run.
func (s *DailyStatStore) InsertBulk(_ context.Context, stats []*domain.WalletDailyStat) error {
	for _, st := range stats {
		if st == nil || st.SnapshotID == "" || st.Date == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range stats {
		copy := *st
		s.data[st.SnapshotID] = append(s.data[st.SnapshotID], &copy)
	}
	return nil
}

// GetBySnapshot retrieves the calendar of one run, ordered by date ASC.
func (s *DailyStatStore) GetBySnapshot(_ context.Context, snapshotID string) ([]*domain.WalletDailyStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[snapshotID]
	result := make([]*domain.WalletDailyStat, 0, len(stored))
	for _, st := range stored {
		copy := *st
		result = append(result, &copy)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PnLSnapshot // keyed by snapshot_id|window
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{data: make(map[string]*domain.PnLSnapshot)}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

func snapshotKey(s *domain.PnLSnapshot) string {
	return s.SnapshotID + "|" + s.Window
}

// InsertBulk adds the windows of one run atomically.
func (s *SnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.PnLSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.SnapshotID == "" || snap.Wallet == "" || snap.Window == "" {
			return storage.ErrInvalidInput
		}
		key := snapshotKey(snap)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, snap := range snapshots {
		copy := *snap
		s.data[snapshotKey(snap)] = &copy
	}
	return nil
}

// GetLatest retrieves the newest snapshot of a wallet window.
func (s *SnapshotStore) GetLatest(_ context.Context, wallet, window string) (*domain.PnLSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.PnLSnapshot
	for _, snap := range s.data {
		if snap.Wallet != wallet || snap.Window != window {
			continue
		}
		if latest == nil || snap.GeneratedAtMs > latest.GeneratedAtMs ||
			(snap.GeneratedAtMs == latest.GeneratedAtMs && snap.SnapshotID > latest.SnapshotID) {
			latest = snap
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	copy := *latest
	return &copy, nil
}

// GetByWallet retrieves all snapshots of a wallet.
func (s *SnapshotStore) GetByWallet(_ context.Context, wallet string) ([]*domain.PnLSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PnLSnapshot
	for _, snap := range s.data {
		if snap.Wallet == wallet {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].GeneratedAtMs != result[j].GeneratedAtMs {
			return result[i].GeneratedAtMs < result[j].GeneratedAtMs
		}
		return result[i].Window < result[j].Window
	})
	return result, nil
}

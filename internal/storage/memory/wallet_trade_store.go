package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/idhash"
	"wallet-pnl/internal/storage"
)

// WalletTradeStore is an in-memory implementation of storage.WalletTradeStore.
type WalletTradeStore struct {
	mu       sync.RWMutex
	keys     map[string]struct{}              // trade keys
	byWallet map[string][]*domain.WalletTrade // insertion order
}

// NewWalletTradeStore creates a new in-memory wallet trade store.
func NewWalletTradeStore() *WalletTradeStore {
	return &WalletTradeStore{
		keys:     make(map[string]struct{}),
		byWallet: make(map[string][]*domain.WalletTrade),
	}
}

// Compile-time interface check.
var _ storage.WalletTradeStore = (*WalletTradeStore)(nil)

// InsertBulk adds trades, skipping keys that already exist.
func (s *WalletTradeStore) InsertBulk(_ context.Context, trades []*domain.WalletTrade) (int, error) {
	for _, t := range trades {
		if t == nil || t.Wallet == "" || t.Signature == "" {
			return 0, storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, t := range trades {
		key := idhash.TradeKey(t)
		if _, exists := s.keys[key]; exists {
			continue
		}
		s.keys[key] = struct{}{}
		copy := *t
		s.byWallet[t.Wallet] = append(s.byWallet[t.Wallet], &copy)
		inserted++
	}
	return inserted, nil
}

// GetByWallet retrieves all trades of a wallet, ordered by timestamp ASC.
func (s *WalletTradeStore) GetByWallet(_ context.Context, wallet string) ([]*domain.WalletTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byWallet[wallet]
	result := make([]*domain.WalletTrade, 0, len(stored))
	for _, t := range stored {
		copy := *t
		result = append(result, &copy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TimestampMs != result[j].TimestampMs {
			return result[i].TimestampMs < result[j].TimestampMs
		}
		return result[i].Signature < result[j].Signature
	})
	return result, nil
}

// ListWallets returns every wallet with at least one trade, sorted.
func (s *WalletTradeStore) ListWallets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := make([]string, 0, len(s.byWallet))
	for w := range s.byWallet {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)
	return wallets, nil
}

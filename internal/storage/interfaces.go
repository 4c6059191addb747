package storage

import (
	"context"
	"time"

	"wallet-pnl/internal/domain"
)

// WalletTradeStore provides access to wallet_trades storage.
// Trades are keyed by idhash.TradeKey.
type WalletTradeStore interface {
	// InsertBulk adds trades, skipping those whose key already exists.
	// Returns the number of newly stored trades. Re-uploading a history is a no-op.
	InsertBulk(ctx context.Context, trades []*domain.WalletTrade) (int, error)

	// GetByWallet retrieves all trades of a wallet, ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.WalletTrade, error)

	// ListWallets returns every wallet with at least one trade, sorted.
	ListWallets(ctx context.Context) ([]string, error)
}

// TokenPriceStore provides access to token_prices storage.
type TokenPriceStore interface {
	// Upsert stores the latest price per mint. Returns ErrInvalidInput on an empty mint.
	Upsert(ctx context.Context, prices []*domain.TokenPrice) error

	// GetByMints retrieves prices for the given mints. Unknown mints are omitted.
	GetByMints(ctx context.Context, mints []string) ([]*domain.TokenPrice, error)
}

// PriceHistoryStore provides access to sol_usd_monthly storage.
type PriceHistoryStore interface {
	// Upsert stores monthly SOL/USD averages, replacing existing months.
	Upsert(ctx context.Context, rows []domain.MonthlyPrice) error

	// GetAll retrieves all months, ordered by month ASC.
	GetAll(ctx context.Context) ([]domain.MonthlyPrice, error)
}

// SnapshotStore provides access to pnl_snapshots storage.
type SnapshotStore interface {
	// InsertBulk adds the windows of one run. Returns ErrDuplicateKey if
	// (snapshot_id, window) exists.
	InsertBulk(ctx context.Context, snapshots []*domain.PnLSnapshot) error

	// GetLatest retrieves the newest snapshot of a wallet window. Returns ErrNotFound if none.
	GetLatest(ctx context.Context, wallet, window string) (*domain.PnLSnapshot, error)

	// GetByWallet retrieves all snapshots of a wallet, ordered by generated_at ASC, window ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.PnLSnapshot, error)
}

// DailyStatStore provides access to wallet_daily_stats storage.
type DailyStatStore interface {
	// InsertBulk adds the calendar rows of one run.
	InsertBulk(ctx context.Context, stats []*domain.WalletDailyStat) error

	// GetBySnapshot retrieves the calendar of one run, ordered by date ASC.
	GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.WalletDailyStat, error)
}

// SummaryCache caches the latest window set of a wallet.
type SummaryCache interface {
	// Get returns ErrNotFound on a miss or an expired entry.
	Get(ctx context.Context, wallet string) (*domain.WindowSet, error)

	// Set stores a window set. A zero ttl means no expiry.
	Set(ctx context.Context, wallet string, set *domain.WindowSet, ttl time.Duration) error

	// Delete drops a cached entry. Missing entries are not an error.
	Delete(ctx context.Context, wallet string) error
}

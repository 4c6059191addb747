package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/idhash"
	"wallet-pnl/internal/storage"
)

// WalletTradeStore implements storage.WalletTradeStore using PostgreSQL.
type WalletTradeStore struct {
	pool *Pool
}

// NewWalletTradeStore creates a new WalletTradeStore.
func NewWalletTradeStore(pool *Pool) *WalletTradeStore {
	return &WalletTradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletTradeStore = (*WalletTradeStore)(nil)

// InsertBulk adds trades in one transaction, skipping existing trade keys.
func (s *WalletTradeStore) InsertBulk(ctx context.Context, trades []*domain.WalletTrade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}
	for _, t := range trades {
		if t == nil || t.Wallet == "" || t.Signature == "" {
			return 0, storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO wallet_trades (
			trade_key, wallet, signature, trade_type, mint,
			sol_amount, token_amount, timestamp_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (trade_key) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, t := range trades {
		batch.Queue(query,
			idhash.TradeKey(t), t.Wallet, t.Signature, string(t.Type), t.Mint,
			t.SolAmount, t.TokenAmount, t.TimestampMs,
		)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range trades {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("insert wallet trade in bulk: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// GetByWallet retrieves all trades of a wallet, ordered by timestamp ASC.
func (s *WalletTradeStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.WalletTrade, error) {
	query := `
		SELECT wallet, signature, trade_type, mint, sol_amount, token_amount, timestamp_ms
		FROM wallet_trades
		WHERE wallet = $1
		ORDER BY timestamp_ms ASC, signature ASC, trade_key ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get wallet trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.WalletTrade, 0)
	for rows.Next() {
		var t domain.WalletTrade
		var typ string
		if err := rows.Scan(&t.Wallet, &t.Signature, &typ, &t.Mint, &t.SolAmount, &t.TokenAmount, &t.TimestampMs); err != nil {
			return nil, fmt.Errorf("scan wallet trade row: %w", err)
		}
		t.Type = domain.TradeType(typ)
		trades = append(trades, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet trade rows: %w", err)
	}
	return trades, nil
}

// ListWallets returns every wallet with at least one trade, sorted.
func (s *WalletTradeStore) ListWallets(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT wallet FROM wallet_trades ORDER BY wallet ASC`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	wallets, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect wallets: %w", err)
	}
	return wallets, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// TokenPriceStore implements storage.TokenPriceStore using PostgreSQL.
type TokenPriceStore struct {
	pool *Pool
}

// NewTokenPriceStore creates a new TokenPriceStore.
func NewTokenPriceStore(pool *Pool) *TokenPriceStore {
	return &TokenPriceStore{pool: pool}
}

var _ storage.TokenPriceStore = (*TokenPriceStore)(nil)

// Upsert stores the latest price per mint.
func (s *TokenPriceStore) Upsert(ctx context.Context, prices []*domain.TokenPrice) error {
	if len(prices) == 0 {
		return nil
	}
	for _, p := range prices {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
	}

	query := `
		INSERT INTO token_prices (mint, price, currency, pair_created_at_sec, market_cap_usd, updated_at_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (mint) DO UPDATE SET
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			pair_created_at_sec = EXCLUDED.pair_created_at_sec,
			market_cap_usd = EXCLUDED.market_cap_usd,
			updated_at_ms = EXCLUDED.updated_at_ms
	`

	batch := &pgx.Batch{}
	for _, p := range prices {
		currency := p.Currency
		if currency == "" {
			currency = domain.CurrencySOL
		}
		batch.Queue(query, p.Mint, p.Price, currency, p.PairCreatedAtSec, p.MarketCapUSD, p.UpdatedAtMs)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert token prices: %w", err)
	}
	return nil
}

// GetByMints retrieves prices for the given mints, sorted by mint.
func (s *TokenPriceStore) GetByMints(ctx context.Context, mints []string) ([]*domain.TokenPrice, error) {
	if len(mints) == 0 {
		return []*domain.TokenPrice{}, nil
	}

	query := `
		SELECT mint, price, currency, pair_created_at_sec, market_cap_usd, updated_at_ms
		FROM token_prices
		WHERE mint = ANY($1)
		ORDER BY mint ASC
	`

	rows, err := s.pool.Query(ctx, query, mints)
	if err != nil {
		return nil, fmt.Errorf("get token prices: %w", err)
	}
	defer rows.Close()

	prices := make([]*domain.TokenPrice, 0, len(mints))
	for rows.Next() {
		var p domain.TokenPrice
		if err := rows.Scan(&p.Mint, &p.Price, &p.Currency, &p.PairCreatedAtSec, &p.MarketCapUSD, &p.UpdatedAtMs); err != nil {
			return nil, fmt.Errorf("scan token price row: %w", err)
		}
		prices = append(prices, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token price rows: %w", err)
	}
	return prices, nil
}

// PriceHistoryStore implements storage.PriceHistoryStore using PostgreSQL.
type PriceHistoryStore struct {
	pool *Pool
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(pool *Pool) *PriceHistoryStore {
	return &PriceHistoryStore{pool: pool}
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Upsert stores monthly prices, replacing existing months.
func (s *PriceHistoryStore) Upsert(ctx context.Context, rows []domain.MonthlyPrice) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r.Month == "" || r.PriceUSD <= 0 {
			return storage.ErrInvalidInput
		}
	}

	query := `
		INSERT INTO sol_usd_monthly (month, price_usd) VALUES ($1, $2)
		ON CONFLICT (month) DO UPDATE SET price_usd = EXCLUDED.price_usd
	`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query, r.Month, r.PriceUSD)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert monthly prices: %w", err)
	}
	return nil
}

// GetAll retrieves all months, ordered by month ASC.
func (s *PriceHistoryStore) GetAll(ctx context.Context) ([]domain.MonthlyPrice, error) {
	rows, err := s.pool.Query(ctx, `SELECT month, price_usd FROM sol_usd_monthly ORDER BY month ASC`)
	if err != nil {
		return nil, fmt.Errorf("get monthly prices: %w", err)
	}
	defer rows.Close()

	result := make([]domain.MonthlyPrice, 0)
	for rows.Next() {
		var r domain.MonthlyPrice
		if err := rows.Scan(&r.Month, &r.PriceUSD); err != nil {
			return nil, fmt.Errorf("scan monthly price row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly price rows: %w", err)
	}
	return result, nil
}

package clickhouse

import (
	"context"
	"fmt"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// DailyStatStore implements storage.DailyStatStore using ClickHouse.
type DailyStatStore struct {
	conn *Conn
}

// NewDailyStatStore creates a new DailyStatStore.
func NewDailyStatStore(conn *Conn) *DailyStatStore {
	return &DailyStatStore{conn: conn}
}

var _ storage.DailyStatStore = (*DailyStatStore)(nil)

// InsertBulk adds the calendar rows of one run.
func (s *DailyStatStore) InsertBulk(ctx context.Context, stats []*domain.WalletDailyStat) error {
	if len(stats) == 0 {
		return nil
	}
	for _, st := range stats {
		if st == nil || st.SnapshotID == "" || st.Date == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO wallet_daily_stats (
			snapshot_id, wallet, date, pnl_sol, pnl_usd, wins, losses, trades, volume_sol
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, st := range stats {
		err = batch.Append(
			st.SnapshotID, st.Wallet, st.Date, st.PnLSol, st.PnLUSD,
			uint32(st.Wins), uint32(st.Losses), uint32(st.Trades), st.VolumeSol,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySnapshot retrieves the calendar of one run, ordered by date ASC.
func (s *DailyStatStore) GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.WalletDailyStat, error) {
	query := `
		SELECT snapshot_id, wallet, date, pnl_sol, pnl_usd, wins, losses, trades, volume_sol
		FROM wallet_daily_stats
		WHERE snapshot_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	stats := make([]*domain.WalletDailyStat, 0)
	for rows.Next() {
		var (
			st                   domain.WalletDailyStat
			wins, losses, trades uint32
		)
		err := rows.Scan(
			&st.SnapshotID, &st.Wallet, &st.Date, &st.PnLSol, &st.PnLUSD,
			&wins, &losses, &trades, &st.VolumeSol,
		)
		if err != nil {
			return nil, fmt.Errorf("scan daily stat row: %w", err)
		}
		st.Wins, st.Losses, st.Trades = int(wins), int(losses), int(trades)
		stats = append(stats, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily stat rows: %w", err)
	}
	return stats, nil
}

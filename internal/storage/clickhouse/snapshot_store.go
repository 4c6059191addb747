package clickhouse

import (
	"context"
	"fmt"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

const snapshotColumns = `
	snapshot_id, wallet, window_name, generated_at_ms,
	total_realized_pnl_sol, total_realized_pnl_usd,
	total_unrealized_pnl_sol, total_unrealized_pnl_usd,
	wins, losses, total_positions, win_rate,
	total_trades, total_volume_sol, total_volume_usd
`

// InsertBulk adds the windows of one run. MergeTree does not enforce keys,
// so duplicates are checked explicitly.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.PnLSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.SnapshotID == "" || snap.Wallet == "" || snap.Window == "" {
			return storage.ErrInvalidInput
		}
		key := snap.SnapshotID + "|" + snap.Window
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.SnapshotID, snap.Window)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO pnl_snapshots (`+snapshotColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.SnapshotID, snap.Wallet, snap.Window, snap.GeneratedAtMs,
			snap.TotalRealizedPnLSol, snap.TotalRealizedPnLUSD,
			snap.TotalUnrealizedPnLSol, snap.TotalUnrealizedPnLUSD,
			uint32(snap.Wins), uint32(snap.Losses), uint32(snap.TotalPositions), snap.WinRate,
			uint32(snap.TotalTrades), snap.TotalVolumeSol, snap.TotalVolumeUSD,
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

// GetLatest retrieves the newest snapshot of a wallet window.
func (s *SnapshotStore) GetLatest(ctx context.Context, wallet, window string) (*domain.PnLSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM pnl_snapshots FINAL
		WHERE wallet = ? AND window_name = ?
		ORDER BY generated_at_ms DESC, snapshot_id DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, wallet, window)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	snaps, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, storage.ErrNotFound
	}
	return snaps[0], nil
}

// GetByWallet retrieves all snapshots of a wallet.
func (s *SnapshotStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.PnLSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM pnl_snapshots FINAL
		WHERE wallet = ?
		ORDER BY generated_at_ms ASC, window_name ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by wallet: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func (s *SnapshotStore) exists(ctx context.Context, snapshotID, window string) (bool, error) {
	query := `
		SELECT count(*) FROM pnl_snapshots FINAL
		WHERE snapshot_id = ? AND window_name = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, snapshotID, window).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanSnapshots(rows chRows) ([]*domain.PnLSnapshot, error) {
	snaps := make([]*domain.PnLSnapshot, 0)
	for rows.Next() {
		var (
			snap                                      domain.PnLSnapshot
			wins, losses, totalPositions, totalTrades uint32
		)
		err := rows.Scan(
			&snap.SnapshotID, &snap.Wallet, &snap.Window, &snap.GeneratedAtMs,
			&snap.TotalRealizedPnLSol, &snap.TotalRealizedPnLUSD,
			&snap.TotalUnrealizedPnLSol, &snap.TotalUnrealizedPnLUSD,
			&wins, &losses, &totalPositions, &snap.WinRate,
			&totalTrades, &snap.TotalVolumeSol, &snap.TotalVolumeUSD,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Wins = int(wins)
		snap.Losses = int(losses)
		snap.TotalPositions = int(totalPositions)
		snap.TotalTrades = int(totalTrades)
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}

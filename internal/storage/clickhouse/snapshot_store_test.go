package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

func TestSnapshotStore_InsertAndGetLatest(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	first := []*domain.PnLSnapshot{
		{SnapshotID: "run1", Wallet: "W1", Window: domain.WindowAll, GeneratedAtMs: 1000, TotalRealizedPnLSol: 1.5, Wins: 2, Losses: 1, TotalPositions: 3, WinRate: 66.67, TotalTrades: 6},
		{SnapshotID: "run1", Wallet: "W1", Window: domain.Window7D, GeneratedAtMs: 1000, TotalRealizedPnLSol: 0.5},
	}
	require.NoError(t, store.InsertBulk(ctx, first))
	require.NoError(t, store.InsertBulk(ctx, []*domain.PnLSnapshot{
		{SnapshotID: "run2", Wallet: "W1", Window: domain.WindowAll, GeneratedAtMs: 2000, TotalRealizedPnLSol: 2.0, TotalUnrealizedPnLUSD: 12.5},
	}))

	latest, err := store.GetLatest(ctx, "W1", domain.WindowAll)
	require.NoError(t, err)
	assert.Equal(t, "run2", latest.SnapshotID)
	assert.Equal(t, 12.5, latest.TotalUnrealizedPnLUSD)

	all, err := store.GetByWallet(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, *first[1], *all[0])
	assert.Equal(t, *first[0], *all[1])
}

func TestSnapshotStore_NotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewSnapshotStore(conn).GetLatest(context.Background(), "W1", domain.Window1D)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	snap := &domain.PnLSnapshot{SnapshotID: "run1", Wallet: "W1", Window: domain.WindowAll, GeneratedAtMs: 1000}
	require.NoError(t, store.InsertBulk(ctx, []*domain.PnLSnapshot{snap}))

	err := store.InsertBulk(ctx, []*domain.PnLSnapshot{snap})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestDailyStatStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyStatStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.WalletDailyStat{
		{Wallet: "W1", SnapshotID: "run1", DailyStat: domain.DailyStat{Date: "2024-06-02", PnLSol: -0.25, PnLUSD: -37.5, Losses: 1, Trades: 1, VolumeSol: 0.75}},
		{Wallet: "W1", SnapshotID: "run1", DailyStat: domain.DailyStat{Date: "2024-06-01", PnLSol: 1, PnLUSD: 150, Wins: 1, Trades: 2, VolumeSol: 3}},
		{Wallet: "W1", SnapshotID: "run2", DailyStat: domain.DailyStat{Date: "2024-06-01"}},
	}))

	got, err := store.GetBySnapshot(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-06-01", got[0].Date)
	assert.Equal(t, 2, got[0].Trades)
	assert.Equal(t, -37.5, got[1].PnLUSD)
	assert.Equal(t, 1, got[1].Losses)
}

package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

func snapshot(id, wallet, window string, at int64, realized float64) *domain.PnLSnapshot {
	return &domain.PnLSnapshot{
		SnapshotID:          id,
		Wallet:              wallet,
		Window:              window,
		GeneratedAtMs:       at,
		TotalRealizedPnLSol: realized,
	}
}

func TestSnapshotStore_GetLatest(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PnLSnapshot{
		snapshot("run1", "W1", domain.WindowAll, 1000, 1.0),
		snapshot("run1", "W1", domain.Window7D, 1000, 0.5),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	if err := store.InsertBulk(ctx, []*domain.PnLSnapshot{
		snapshot("run2", "W1", domain.WindowAll, 2000, 2.0),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetLatest(ctx, "W1", domain.WindowAll)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if got.SnapshotID != "run2" || got.TotalRealizedPnLSol != 2.0 {
		t.Errorf("expected run2, got %+v", got)
	}

	_, err = store.GetLatest(ctx, "W1", domain.Window1D)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	all, err := store.GetByWallet(ctx, "W1")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(all) != 3 || all[0].Window != domain.Window7D || all[2].SnapshotID != "run2" {
		t.Errorf("unexpected order: %+v", all)
	}
}

func TestSnapshotStore_DuplicateKey(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	snap := snapshot("run1", "W1", domain.WindowAll, 1000, 1.0)
	if err := store.InsertBulk(ctx, []*domain.PnLSnapshot{snap}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.PnLSnapshot{snap})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "snapshot") {
		t.Errorf("expected error to name the snapshot, got %q", err)
	}

	err = store.InsertBulk(ctx, []*domain.PnLSnapshot{
		snapshot("run3", "W1", domain.WindowAll, 1, 0),
		snapshot("run3", "W1", domain.WindowAll, 1, 0),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}
}

func TestDailyStatStore_InsertAndGet(t *testing.T) {
	store := NewDailyStatStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.WalletDailyStat{
		{Wallet: "W1", SnapshotID: "run1", DailyStat: domain.DailyStat{Date: "2024-06-02", PnLSol: -0.5, Losses: 1, Trades: 1}},
		{Wallet: "W1", SnapshotID: "run1", DailyStat: domain.DailyStat{Date: "2024-06-01", PnLSol: 1.5, Wins: 1, Trades: 2}},
		{Wallet: "W1", SnapshotID: "run2", DailyStat: domain.DailyStat{Date: "2024-06-01", PnLSol: 9}},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetBySnapshot(ctx, "run1")
	if err != nil {
		t.Fatalf("GetBySnapshot failed: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2024-06-01" || got[1].PnLSol != -0.5 {
		t.Errorf("unexpected calendar: %+v", got)
	}

	err = store.InsertBulk(ctx, []*domain.WalletDailyStat{{SnapshotID: "run1"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

package pnl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"wallet-pnl/internal/domain"
)

func TestAnalyzeTimeWindows(t *testing.T) {
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	hoursAgo := func(h int) int64 { return now.Add(-time.Duration(h) * time.Hour).UnixMilli() }

	trades := []domain.WalletTrade{
		buy("a1", "A", 2.0, 200, hoursAgo(40*24)),
		sell("a2", "A", 1.5, 100, hoursAgo(20*24)), // +0.5, inside 30d
		sell("a3", "A", 2.0, 100, hoursAgo(3*24)),  // +1.0, inside 7d
		buy("b1", "B", 1.0, 100, hoursAgo(10)),
		sell("b2", "B", 0.5, 50, hoursAgo(2)), // 0.0, inside 1d
	}

	e := newTestEngine().WithClock(func() time.Time { return now })
	set, err := e.AnalyzeTimeWindows(context.Background(), trades, nil, solUSD)
	if err != nil {
		t.Fatalf("AnalyzeTimeWindows failed: %v", err)
	}

	if len(set.Windows) != 5 {
		t.Fatalf("expected 5 windows, got %d", len(set.Windows))
	}
	if !set.GeneratedAt.Equal(now) {
		t.Errorf("expected GeneratedAt %v, got %v", now, set.GeneratedAt)
	}
	wantOrder := []string{domain.Window1D, domain.Window7D, domain.Window14D, domain.Window30D, domain.WindowAll}
	if strings.Join(set.Order, ",") != strings.Join(wantOrder, ",") {
		t.Errorf("expected order %v, got %v", wantOrder, set.Order)
	}
	if got := len(set.Summaries()); got != 5 {
		t.Errorf("expected 5 ordered summaries, got %d", got)
	}

	expected := map[string]struct {
		trades   int
		realized float64
		details  int
	}{
		domain.Window1D:  {trades: 2, realized: 0, details: 1},
		domain.Window7D:  {trades: 3, realized: 1.0, details: 2},
		domain.Window14D: {trades: 3, realized: 1.0, details: 2},
		domain.Window30D: {trades: 4, realized: 1.5, details: 2},
		domain.WindowAll: {trades: 5, realized: 1.5, details: 2},
	}
	for name, want := range expected {
		s := set.Get(name)
		if s == nil {
			t.Fatalf("missing window %s", name)
		}
		if s.Window != name {
			t.Errorf("%s: window name %q", name, s.Window)
		}
		if s.TotalTrades != want.trades {
			t.Errorf("%s: expected %d trades, got %d", name, want.trades, s.TotalTrades)
		}
		if !approx(s.TotalRealizedPnLSol, want.realized) {
			t.Errorf("%s: expected realized %f, got %f", name, want.realized, s.TotalRealizedPnLSol)
		}
		if len(s.Details) != want.details {
			t.Errorf("%s: expected %d details, got %d", name, want.details, len(s.Details))
		}
	}

	if set.Get(domain.WindowAll).CutoffMs != 0 {
		t.Errorf("expected all-window cutoff 0")
	}
	if set.Get(domain.Window7D).CutoffMs != now.Add(-7*24*time.Hour).UnixMilli() {
		t.Errorf("unexpected 7d cutoff %d", set.Get(domain.Window7D).CutoffMs)
	}
}

func TestAnalyzeTimeWindows_MatchesAggregate(t *testing.T) {
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	trades := []domain.WalletTrade{
		buy("a1", "A", 1.0, 100, now.Add(-48*time.Hour).UnixMilli()),
		sell("a2", "A", 1.2, 60, now.Add(-2*time.Hour).UnixMilli()),
	}

	e := newTestEngine().WithClock(func() time.Time { return now })
	set, err := e.AnalyzeTimeWindows(context.Background(), trades, nil, solUSD)
	if err != nil {
		t.Fatalf("AnalyzeTimeWindows failed: %v", err)
	}

	for _, w := range DefaultWindows {
		direct := e.Aggregate(trades, nil, solUSD, w.Cutoff(now))
		got := set.Get(w.Name)
		if got.TotalRealizedPnLSol != direct.TotalRealizedPnLSol || got.TotalTrades != direct.TotalTrades {
			t.Errorf("%s: window set differs from direct aggregate", w.Name)
		}
	}
}

func TestAnalyzeTimeWindows_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine().AnalyzeTimeWindows(ctx, []domain.WalletTrade{buy("s", "A", 1, 1, t0)}, nil, solUSD)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAnalyzeTimeWindows_CustomWindows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Windows = []Window{{Name: "12h", Lookback: 12 * time.Hour}}

	set, err := NewEngine(cfg, nil).AnalyzeTimeWindows(context.Background(), nil, nil, solUSD)
	if err != nil {
		t.Fatalf("AnalyzeTimeWindows failed: %v", err)
	}
	if len(set.Windows) != 1 || set.Get("12h") == nil {
		t.Errorf("expected only the 12h window, got %v", set.Windows)
	}
}

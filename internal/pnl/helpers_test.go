package pnl

import (
	"math"
	"testing"
	"time"

	"wallet-pnl/internal/domain"
)

// t0 is 2024-06-01 12:00 UTC.
var t0 = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

const solUSD = 150.0

func buy(sig, mint string, sol, tokens float64, ts int64) domain.WalletTrade {
	return domain.WalletTrade{Signature: sig, Type: domain.TradeTypeBuy, Mint: mint, SolAmount: sol, TokenAmount: tokens, TimestampMs: ts}
}

func sell(sig, mint string, sol, tokens float64, ts int64) domain.WalletTrade {
	return domain.WalletTrade{Signature: sig, Type: domain.TradeTypeSell, Mint: mint, SolAmount: sol, TokenAmount: tokens, TimestampMs: ts}
}

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), nil)
}

func findPosition(t *testing.T, s *domain.WindowSummary, mint string) domain.Position {
	t.Helper()
	for _, p := range s.Details {
		if p.Mint == mint {
			return p
		}
	}
	t.Fatalf("position %s not found in details", mint)
	return domain.Position{}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertFinite(t *testing.T, name string, v float64) {
	t.Helper()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Errorf("%s is not finite: %v", name, v)
	}
}

package idhash

import (
	"testing"

	"wallet-pnl/internal/domain"
)

func TestComputeTradeKey(t *testing.T) {
	tests := []struct {
		name      string
		wallet    string
		signature string
		mint      string
		tradeType domain.TradeType
	}{
		{
			name:      "buy",
			wallet:    "wallet-1",
			signature: "5Kx9sig",
			mint:      "mint-A",
			tradeType: domain.TradeTypeBuy,
		},
		{
			name:      "sell without wallet",
			signature: "3Abcsig",
			mint:      "mint-B",
			tradeType: domain.TradeTypeSell,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTradeKey(tt.wallet, tt.signature, tt.mint, tt.tradeType)

			if len(got) != 64 {
				t.Errorf("ComputeTradeKey() length = %d, want 64", len(got))
			}

			got2 := ComputeTradeKey(tt.wallet, tt.signature, tt.mint, tt.tradeType)
			if got != got2 {
				t.Errorf("ComputeTradeKey() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeTradeKey_DistinguishesFields(t *testing.T) {
	base := ComputeTradeKey("w", "sig", "mint-A", domain.TradeTypeBuy)

	variants := map[string]string{
		"wallet": ComputeTradeKey("w2", "sig", "mint-A", domain.TradeTypeBuy),
		"sig":    ComputeTradeKey("w", "sig2", "mint-A", domain.TradeTypeBuy),
		"mint":   ComputeTradeKey("w", "sig", "mint-B", domain.TradeTypeBuy),
		"type":   ComputeTradeKey("w", "sig", "mint-A", domain.TradeTypeSell),
	}
	for field, key := range variants {
		if key == base {
			t.Errorf("changing %s did not change the key", field)
		}
	}
}

func TestTradeKey_MatchesCompute(t *testing.T) {
	tr := &domain.WalletTrade{Wallet: "w", Signature: "sig", Mint: "m", Type: domain.TradeTypeSell}
	if TradeKey(tr) != ComputeTradeKey("w", "sig", "m", domain.TradeTypeSell) {
		t.Error("TradeKey does not match ComputeTradeKey")
	}
}

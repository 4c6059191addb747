package pnl

import (
	"encoding/json"
	"math"
	"testing"

	"wallet-pnl/internal/domain"
)

func TestRawPrice_UnmarshalNumberAndObject(t *testing.T) {
	input := `{
		"A": 0.002,
		"B": {"price": 0.3, "currency": "USD", "pairCreatedAt": 1717243200, "marketCap": 250000},
		"C": {"price": 0.01, "currency": "SOL"}
	}`

	var raw map[string]RawPrice
	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if raw["A"].Price != 0.002 || raw["A"].Currency != domain.CurrencySOL {
		t.Errorf("unexpected bare number decode: %+v", raw["A"])
	}
	if raw["B"].Quote().Kind != domain.PriceQuoted {
		t.Errorf("expected USD entry to be quoted")
	}
	if raw["C"].Quote().Kind != domain.PriceNative {
		t.Errorf("expected SOL entry to be native")
	}
}

func TestRawPrice_UnmarshalInvalid(t *testing.T) {
	var r RawPrice
	if err := json.Unmarshal([]byte(`"abc"`), &r); err == nil {
		t.Error("expected error for string price")
	}
}

func TestResolvePrices(t *testing.T) {
	raw := map[string]RawPrice{
		"SOLQ": {Price: 0.01},
		"USDQ": {Price: 1.5, Currency: "usd", PairCreatedAt: 100, MarketCap: 1e6},
		"BAD":  {Price: math.NaN()},
	}

	book := ResolvePrices(raw, 150)

	if book["SOLQ"].Value != 0.01 {
		t.Errorf("expected native price unchanged, got %f", book["SOLQ"].Value)
	}
	if !approx(book["USDQ"].Value, 0.01) {
		t.Errorf("expected USD price / 150 = 0.01, got %f", book["USDQ"].Value)
	}
	if book["USDQ"].Kind != domain.PriceNative || book["USDQ"].QuoteCurrency != "" {
		t.Errorf("expected resolved quote to be native, got %+v", book["USDQ"])
	}
	if book["USDQ"].PairCreatedAtSec != 100 || book["USDQ"].MarketCapUSD != 1e6 {
		t.Errorf("expected metadata to survive, got %+v", book["USDQ"])
	}
	if _, ok := book.priceSol("BAD"); ok {
		t.Error("expected NaN price to be unknown")
	}
}

func TestResolveQuote_ZeroCurrentQuote(t *testing.T) {
	q := ResolveQuote(domain.PriceQuote{Kind: domain.PriceQuoted, Value: 2, QuoteCurrency: domain.CurrencyUSD}, 0)
	if q.Value != 0 {
		t.Errorf("expected unknown price with zero SOL/USD, got %f", q.Value)
	}
}

func TestFromTokenPrices(t *testing.T) {
	book := FromTokenPrices([]domain.TokenPrice{
		{Mint: "A", Price: 3, Currency: domain.CurrencyUSD, MarketCapUSD: 10},
		{Mint: "B", Price: 0.5, Currency: domain.CurrencySOL},
	}, 150)

	if !approx(book["A"].Value, 0.02) {
		t.Errorf("expected 0.02, got %f", book["A"].Value)
	}
	if book["B"].Value != 0.5 {
		t.Errorf("expected 0.5, got %f", book["B"].Value)
	}
}

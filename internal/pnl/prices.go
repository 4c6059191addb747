package pnl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"wallet-pnl/internal/domain"
)

// RawPrice is a price lookup entry as delivered by the price collaborator:
// either a bare number (SOL per token) or an object with a currency.
type RawPrice struct {
	Price         float64 `json:"price"`
	Currency      string  `json:"currency,omitempty"`
	PairCreatedAt int64   `json:"pairCreatedAt,omitempty"` // seconds
	MarketCap     float64 `json:"marketCap,omitempty"`     // USD
}

// UnmarshalJSON accepts a bare number or an object.
func (r *RawPrice) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var v float64
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return fmt.Errorf("raw price: %w", err)
		}
		*r = RawPrice{Price: v, Currency: domain.CurrencySOL}
		return nil
	}
	type plain RawPrice
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return fmt.Errorf("raw price: %w", err)
	}
	*r = RawPrice(p)
	return nil
}

// Quote tags the raw entry. Anything not USD is treated as SOL-denominated.
func (r RawPrice) Quote() domain.PriceQuote {
	q := domain.PriceQuote{
		Kind:             domain.PriceNative,
		Value:            r.Price,
		PairCreatedAtSec: r.PairCreatedAt,
		MarketCapUSD:     r.MarketCap,
	}
	if strings.EqualFold(r.Currency, domain.CurrencyUSD) {
		q.Kind = domain.PriceQuoted
		q.QuoteCurrency = domain.CurrencyUSD
	}
	return q
}

// PriceBook maps mint -> SOL-denominated quote. Only PriceNative quotes are
// stored; a zero Value means the price is unknown but metadata may be set.
type PriceBook map[string]domain.PriceQuote

// ResolvePrices converts raw lookups into a PriceBook. USD quotes are divided
// by the current SOL/USD price. Unusable prices keep their metadata with Value 0.
func ResolvePrices(raw map[string]RawPrice, currentQuote float64) PriceBook {
	book := make(PriceBook, len(raw))
	for mint, r := range raw {
		book[mint] = ResolveQuote(r.Quote(), currentQuote)
	}
	return book
}

// ResolveQuote normalizes a single quote to SOL.
func ResolveQuote(q domain.PriceQuote, currentQuote float64) domain.PriceQuote {
	out := q
	out.Kind = domain.PriceNative
	out.QuoteCurrency = ""

	if q.Kind == domain.PriceQuoted {
		if currentQuote > 0 && isFinite(currentQuote) {
			out.Value = q.Value / currentQuote
		} else {
			out.Value = 0
		}
	}
	if !isFinite(out.Value) || out.Value < 0 {
		out.Value = 0
	}
	if !isFinite(out.MarketCapUSD) || out.MarketCapUSD < 0 {
		out.MarketCapUSD = 0
	}
	return out
}

// FromTokenPrices builds a PriceBook from stored price observations.
func FromTokenPrices(prices []domain.TokenPrice, currentQuote float64) PriceBook {
	book := make(PriceBook, len(prices))
	for _, p := range prices {
		q := domain.PriceQuote{
			Kind:             domain.PriceNative,
			Value:            p.Price,
			PairCreatedAtSec: p.PairCreatedAtSec,
			MarketCapUSD:     p.MarketCapUSD,
		}
		if strings.EqualFold(p.Currency, domain.CurrencyUSD) {
			q.Kind = domain.PriceQuoted
			q.QuoteCurrency = domain.CurrencyUSD
		}
		book[p.Mint] = ResolveQuote(q, currentQuote)
	}
	return book
}

// priceSol returns the SOL price for a mint and whether it is known.
func (b PriceBook) priceSol(mint string) (float64, bool) {
	q, ok := b[mint]
	if !ok || q.Value <= 0 {
		return 0, false
	}
	return q.Value, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package pnl

import (
	"sort"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/pricehistory"
)

// tokenAccumulator folds the full trade history of one mint.
type tokenAccumulator struct {
	mint string

	buyCount  int
	sellCount int

	totalBuySol     float64
	totalSellSol    float64
	totalBuyUSD     float64
	totalSellUSD    float64
	totalBuyTokens  float64
	totalSellTokens float64

	firstBuyMs   int64
	lastSellMs   int64
	lastActiveMs int64

	trades []domain.WalletTrade
}

// hasCostBasis reports whether sells of this mint can be valued against buys.
func (a *tokenAccumulator) hasCostBasis() bool {
	return a.totalBuyTokens > 0
}

func (a *tokenAccumulator) avgBuyPriceSol() float64 {
	if a.totalBuyTokens <= 0 {
		return 0
	}
	return a.totalBuySol / a.totalBuyTokens
}

func (a *tokenAccumulator) avgBuyPriceUSD() float64 {
	if a.totalBuyTokens <= 0 {
		return 0
	}
	return a.totalBuyUSD / a.totalBuyTokens
}

func (a *tokenAccumulator) add(t domain.WalletTrade, usd float64) {
	a.trades = append(a.trades, t)
	if t.TimestampMs > a.lastActiveMs {
		a.lastActiveMs = t.TimestampMs
	}

	switch t.Type {
	case domain.TradeTypeBuy:
		a.buyCount++
		a.totalBuySol += t.SolAmount
		a.totalBuyUSD += usd
		a.totalBuyTokens += t.TokenAmount
		if a.firstBuyMs == 0 || t.TimestampMs < a.firstBuyMs {
			a.firstBuyMs = t.TimestampMs
		}
	case domain.TradeTypeSell:
		a.sellCount++
		a.totalSellSol += t.SolAmount
		a.totalSellUSD += usd
		a.totalSellTokens += t.TokenAmount
		if t.TimestampMs > a.lastSellMs {
			a.lastSellMs = t.TimestampMs
		}
	}
}

// accumulate folds every trade, regardless of window, into per-mint accumulators.
// USD values use the SOL/USD price of the trade's own month.
// Returns accumulators keyed by mint and the per-trade USD values (parallel to trades).
func accumulate(trades []domain.WalletTrade, history *pricehistory.Table, currentQuote float64) (map[string]*tokenAccumulator, []float64) {
	accs := make(map[string]*tokenAccumulator)
	usd := make([]float64, len(trades))

	for i, t := range trades {
		usd[i] = t.SolAmount * history.PriceAt(t.TimestampMs, currentQuote)

		acc, ok := accs[t.Mint]
		if !ok {
			acc = &tokenAccumulator{mint: t.Mint}
			accs[t.Mint] = acc
		}
		acc.add(t, usd[i])
	}

	return accs, usd
}

// sortedMints returns accumulator keys in ASC order.
func sortedMints(accs map[string]*tokenAccumulator) []string {
	mints := make([]string, 0, len(accs))
	for m := range accs {
		mints = append(mints, m)
	}
	sort.Strings(mints)
	return mints
}

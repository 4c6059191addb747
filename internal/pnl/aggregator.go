package pnl

import (
	"sort"
	"time"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/pricehistory"
)

// Engine computes wallet PnL summaries.
// An Engine holds only read-only configuration and is safe for concurrent use.
type Engine struct {
	cfg     Config
	history *pricehistory.Table
	ignored map[string]struct{}
	now     func() time.Time
}

// NewEngine creates an engine. history may be nil, in which case every
// trade is valued at the caller-supplied current SOL/USD price.
func NewEngine(cfg Config, history *pricehistory.Table) *Engine {
	return &Engine{
		cfg:     cfg,
		history: history,
		ignored: cfg.ignoredSet(),
		now:     time.Now,
	}
}

// WithClock overrides the clock used for window cutoffs.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// analysis is the window-independent part of an aggregation: sanitized
// trades, their USD values and full-history positions. Read-only once built.
type analysis struct {
	trades    []domain.WalletTrade
	tradeUSD  []float64
	accs      map[string]*tokenAccumulator
	positions []domain.Position // sorted by mint
	skipped   map[string]int
}

// prepare folds the full history once.
func (e *Engine) prepare(trades []domain.WalletTrade, prices PriceBook, currentQuote float64) *analysis {
	valid, skipped := Sanitize(trades, e.ignored)
	accs, usd := accumulate(valid, e.history, currentQuote)

	mints := sortedMints(accs)
	positions := make([]domain.Position, 0, len(mints))
	for _, mint := range mints {
		positions = append(positions, buildPosition(accs[mint], prices, currentQuote, e.cfg))
	}

	return &analysis{
		trades:    valid,
		tradeUSD:  usd,
		accs:      accs,
		positions: positions,
		skipped:   countSkipped(skipped),
	}
}

// Aggregate builds the summary of trades at or after cutoffMs.
// Cost basis always comes from the full trade history.
func (e *Engine) Aggregate(trades []domain.WalletTrade, prices PriceBook, currentQuote float64, cutoffMs int64) *domain.WindowSummary {
	return e.prepare(trades, prices, currentQuote).summarize("", cutoffMs)
}

// Positions returns the full-history positions, sorted by mint.
func (e *Engine) Positions(trades []domain.WalletTrade, prices PriceBook, currentQuote float64) []domain.Position {
	return e.prepare(trades, prices, currentQuote).positions
}

// mintRealized tracks windowed realized PnL of one mint.
type mintRealized struct {
	sol float64
	usd float64
}

// summarize computes the window rollup. It only reads from a.
func (a *analysis) summarize(window string, cutoffMs int64) *domain.WindowSummary {
	s := &domain.WindowSummary{
		Window:         window,
		CutoffMs:       cutoffMs,
		Details:        []domain.Position{},
		Calendar:       make(map[string]domain.DailyStat),
		MCDistribution: make(map[string]int),
		Skipped:        a.skipped,
	}

	var (
		buyVolSol, buyVolUSD   float64
		sellVolSol, sellVolUSD float64
		realizedByMint         = make(map[string]*mintRealized)
		realizedOrder          []string
	)

	// 1. Trade-level pass over the window
	for i, t := range a.trades {
		if t.TimestampMs < cutoffMs {
			continue
		}
		usd := a.tradeUSD[i]

		s.TotalTrades++
		s.TotalVolumeSol += t.SolAmount
		s.TotalVolumeUSD += usd

		if t.IsBuy() {
			s.BuyCount++
			buyVolSol += t.SolAmount
			buyVolUSD += usd
			continue
		}

		s.SellCount++
		sellVolSol += t.SolAmount
		sellVolUSD += usd

		// Orphan sells count as volume only.
		acc := a.accs[t.Mint]
		if acc == nil || !acc.hasCostBasis() {
			continue
		}

		pnlSol := t.SolAmount - acc.avgBuyPriceSol()*t.TokenAmount
		pnlUSD := usd - acc.avgBuyPriceUSD()*t.TokenAmount

		s.TotalRealizedPnLSol += pnlSol
		s.TotalRealizedPnLUSD += pnlUSD

		date := time.UnixMilli(t.TimestampMs).UTC().Format("2006-01-02")
		ds := s.Calendar[date]
		ds.Date = date
		ds.PnLSol += pnlSol
		ds.PnLUSD += pnlUSD
		ds.Trades++
		ds.VolumeSol += t.SolAmount
		if pnlSol > 0 {
			ds.Wins++
		} else if pnlSol < 0 {
			ds.Losses++
		}
		s.Calendar[date] = ds

		mr, ok := realizedByMint[t.Mint]
		if !ok {
			mr = &mintRealized{}
			realizedByMint[t.Mint] = mr
			realizedOrder = append(realizedOrder, t.Mint)
		}
		mr.sol += pnlSol
		mr.usd += pnlUSD
	}

	// 2. Position-level win/loss: each mint counts once
	var winSol, winUSD float64
	sort.Strings(realizedOrder)
	for _, mint := range realizedOrder {
		mr := realizedByMint[mint]
		s.TotalPositions++
		switch {
		case mr.sol > 0:
			s.Wins++
			winSol += mr.sol
			winUSD += mr.usd
		case mr.sol < 0:
			s.Losses++
		}
	}
	// Break-even positions count toward the denominator.
	if s.TotalPositions > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalPositions) * 100
	}

	// 3. Averages divide by the count of the thing being averaged
	if s.BuyCount > 0 {
		s.AvgBuySizeSol = buyVolSol / float64(s.BuyCount)
		s.AvgBuySizeUSD = buyVolUSD / float64(s.BuyCount)
	}
	if s.SellCount > 0 {
		s.AvgSellSizeSol = sellVolSol / float64(s.SellCount)
		s.AvgSellSizeUSD = sellVolUSD / float64(s.SellCount)
	}
	if s.Wins > 0 {
		s.AvgWinSol = winSol / float64(s.Wins)
		s.AvgWinUSD = winUSD / float64(s.Wins)
	}

	// 4. Details: positions active inside the window
	for _, p := range a.positions {
		if p.LastActiveMs < cutoffMs {
			continue
		}
		s.Details = append(s.Details, p)
		s.TotalUnrealizedPnLSol += p.UnrealizedPnLSol
		s.TotalUnrealizedPnLUSD += p.UnrealizedPnLUSD
		s.MCDistribution[MarketCapBucket(p.MarketCapUSD)]++
	}
	sort.SliceStable(s.Details, func(i, j int) bool {
		if s.Details[i].LastActiveMs != s.Details[j].LastActiveMs {
			return s.Details[i].LastActiveMs > s.Details[j].LastActiveMs
		}
		return s.Details[i].Mint < s.Details[j].Mint
	})

	return s
}

// Market cap bucket labels
const (
	MCUnknown = "unknown"
	MCMicro   = "<100K"
	MCSmall   = "100K-500K"
	MCMid     = "500K-1M"
	MCLarge   = "1M-10M"
	MCMega    = "10M+"
)

// MarketCapBuckets lists the buckets smallest first, unknown last.
var MarketCapBuckets = []string{MCMicro, MCSmall, MCMid, MCLarge, MCMega, MCUnknown}

// MarketCapBucket returns the histogram bucket for a USD market cap.
func MarketCapBucket(mcUSD float64) string {
	switch {
	case mcUSD <= 0:
		return MCUnknown
	case mcUSD < 100_000:
		return MCMicro
	case mcUSD < 500_000:
		return MCSmall
	case mcUSD < 1_000_000:
		return MCMid
	case mcUSD < 10_000_000:
		return MCLarge
	default:
		return MCMega
	}
}

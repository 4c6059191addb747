package pnl

import (
	"wallet-pnl/internal/domain"
)

// buildPosition derives the full-history position snapshot for one mint.
func buildPosition(acc *tokenAccumulator, prices PriceBook, currentQuote float64, cfg Config) domain.Position {
	p := domain.Position{
		Mint:            acc.mint,
		BuyCount:        acc.buyCount,
		SellCount:       acc.sellCount,
		TotalBuySol:     acc.totalBuySol,
		TotalSellSol:    acc.totalSellSol,
		TotalBuyUSD:     acc.totalBuyUSD,
		TotalSellUSD:    acc.totalSellUSD,
		TotalBuyTokens:  acc.totalBuyTokens,
		TotalSellTokens: acc.totalSellTokens,
		AvgBuyPriceSol:  acc.avgBuyPriceSol(),
		AvgBuyPriceUSD:  acc.avgBuyPriceUSD(),
		FirstBuyMs:      acc.firstBuyMs,
		LastSellMs:      acc.lastSellMs,
		LastActiveMs:    acc.lastActiveMs,
	}

	// Selling more than was bought (transfers in) leaves nothing held.
	remaining := acc.totalBuyTokens - acc.totalSellTokens
	if remaining < 0 {
		remaining = 0
	}
	p.RemainingTokens = remaining

	priceSol, hasPrice := prices.priceSol(acc.mint)
	if q, ok := prices[acc.mint]; ok {
		p.MarketCapUSD = q.MarketCapUSD
		p.IsSniper = isSniper(acc.firstBuyMs, q.PairCreatedAtSec, cfg)
	}
	if hasPrice {
		p.CurrentPriceSol = priceSol
	}

	p.Status = classify(acc, remaining, priceSol, currentQuote, cfg)

	// Realized PnL for every position with sells; unknown cost basis forces zero.
	if acc.sellCount > 0 && p.Status != domain.PositionOrphan {
		p.RealizedPnLSol = acc.totalSellSol - p.AvgBuyPriceSol*acc.totalSellTokens
		p.RealizedPnLUSD = acc.totalSellUSD - p.AvgBuyPriceUSD*acc.totalSellTokens
	}

	// Dust remainders are noise, not exposure.
	if p.Status != domain.PositionClosed && hasPrice && remaining > 0 {
		p.UnrealizedPnLSol = remaining*priceSol - p.AvgBuyPriceSol*remaining
		p.UnrealizedPnLUSD = remaining*priceSol*currentQuote - p.AvgBuyPriceUSD*remaining
	}

	p.DisplayPnLSol, p.DisplayPnLUSD = displayPnL(&p)

	if p.TotalBuySol > 0 {
		p.ROI = p.DisplayPnLSol / p.TotalBuySol * 100
	}
	p.DurationMs = duration(acc, p.Status)

	return p
}

// classify applies the ORPHAN / CLOSED / OPEN rules.
// CLOSED when remaining <= DustAbsoluteTokens, or when the remainder is worth
// less than DustValueUSD and is below DustRelativeRatio of tokens bought.
func classify(acc *tokenAccumulator, remaining, priceSol, currentQuote float64, cfg Config) domain.PositionStatus {
	if acc.sellCount > 0 && !acc.hasCostBasis() {
		return domain.PositionOrphan
	}
	if remaining <= cfg.DustAbsoluteTokens {
		return domain.PositionClosed
	}

	valueUSD := remaining * priceSol * currentQuote
	ratio := 1.0
	if acc.totalBuyTokens > 0 {
		ratio = remaining / acc.totalBuyTokens
	}
	if valueUSD < cfg.DustValueUSD && ratio < cfg.DustRelativeRatio {
		return domain.PositionClosed
	}
	return domain.PositionOpen
}

// displayPnL resolves the single headline number for a position.
// An open position without live price data shows its cash-flow delta.
func displayPnL(p *domain.Position) (float64, float64) {
	cashSol := p.TotalSellSol - p.TotalBuySol
	cashUSD := p.TotalSellUSD - p.TotalBuyUSD

	switch p.Status {
	case domain.PositionOrphan:
		return 0, 0
	case domain.PositionClosed:
		return cashSol, cashUSD
	}
	if p.UnrealizedPnLSol != 0 {
		return p.UnrealizedPnLSol, p.UnrealizedPnLUSD
	}
	return cashSol, cashUSD
}

func isSniper(firstBuyMs, pairCreatedAtSec int64, cfg Config) bool {
	if firstBuyMs <= 0 || pairCreatedAtSec <= 0 {
		return false
	}
	delta := firstBuyMs - pairCreatedAtSec*1000
	return delta >= 0 && delta <= cfg.SniperWindow.Milliseconds()
}

func duration(acc *tokenAccumulator, status domain.PositionStatus) int64 {
	if acc.firstBuyMs == 0 {
		return 0
	}
	end := acc.lastActiveMs
	if status == domain.PositionClosed && acc.lastSellMs > 0 {
		end = acc.lastSellMs
	}
	if end < acc.firstBuyMs {
		return 0
	}
	return end - acc.firstBuyMs
}

package reporting

import (
	"sort"
	"time"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/pnl"
)

// Report is a presentation view of one wallet's window set.
type Report struct {
	Wallet      string
	GeneratedAt time.Time

	// Windows in presentation order (shortest first)
	Windows []WindowRow

	// Positions, calendar and distribution come from the widest window
	PositionsWindow string
	Positions       []domain.Position
	Calendar        []domain.DailyStat // sorted by date ASC
	MCDistribution  []CountRow         // in bucket order

	// Skipped input records by reason, sorted by reason
	Skipped []CountRow
}

// WindowRow is one row of the window overview table.
type WindowRow struct {
	Window           string
	Trades           int
	Buys             int
	Sells            int
	VolumeSol        float64
	VolumeUSD        float64
	RealizedPnLSol   float64
	RealizedPnLUSD   float64
	UnrealizedPnLSol float64
	UnrealizedPnLUSD float64
	Wins             int
	Losses           int
	Positions        int
	WinRate          float64
	AvgWinSol        float64
}

// CountRow is a labelled count.
type CountRow struct {
	Label string
	Count int
}

// Build converts a window set into a Report.
func Build(wallet string, set *domain.WindowSet) *Report {
	r := &Report{Wallet: wallet}
	if set == nil {
		return r
	}
	r.GeneratedAt = set.GeneratedAt

	summaries := set.Summaries()
	for _, s := range summaries {
		r.Windows = append(r.Windows, WindowRow{
			Window:           s.Window,
			Trades:           s.TotalTrades,
			Buys:             s.BuyCount,
			Sells:            s.SellCount,
			VolumeSol:        s.TotalVolumeSol,
			VolumeUSD:        s.TotalVolumeUSD,
			RealizedPnLSol:   s.TotalRealizedPnLSol,
			RealizedPnLUSD:   s.TotalRealizedPnLUSD,
			UnrealizedPnLSol: s.TotalUnrealizedPnLSol,
			UnrealizedPnLUSD: s.TotalUnrealizedPnLUSD,
			Wins:             s.Wins,
			Losses:           s.Losses,
			Positions:        s.TotalPositions,
			WinRate:          s.WinRate,
			AvgWinSol:        s.AvgWinSol,
		})
	}

	widest := set.Get(domain.WindowAll)
	if widest == nil && len(summaries) > 0 {
		widest = summaries[len(summaries)-1]
	}
	if widest == nil {
		return r
	}

	r.PositionsWindow = widest.Window
	r.Positions = widest.Details

	dates := make([]string, 0, len(widest.Calendar))
	for d := range widest.Calendar {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		r.Calendar = append(r.Calendar, widest.Calendar[d])
	}

	for _, bucket := range pnl.MarketCapBuckets {
		if n := widest.MCDistribution[bucket]; n > 0 {
			r.MCDistribution = append(r.MCDistribution, CountRow{Label: bucket, Count: n})
		}
	}

	reasons := make([]string, 0, len(widest.Skipped))
	for reason := range widest.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		r.Skipped = append(r.Skipped, CountRow{Label: reason, Count: widest.Skipped[reason]})
	}

	return r
}

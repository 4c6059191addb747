package domain

import "time"

// DailyStat aggregates attributable sells for one UTC calendar day.
type DailyStat struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	PnLSol    float64 `json:"pnl"`
	PnLUSD    float64 `json:"pnlUSD"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Trades    int     `json:"trades"`
	VolumeSol float64 `json:"volume"`
}

// WindowSummary is the PnL summary for trades at or after CutoffMs.
// Cost basis always comes from full history.
type WindowSummary struct {
	Window   string `json:"window"`
	CutoffMs int64  `json:"cutoff"`

	TotalRealizedPnLSol   float64 `json:"totalRealizedPnL"`
	TotalRealizedPnLUSD   float64 `json:"totalRealizedPnLUSD"`
	TotalUnrealizedPnLSol float64 `json:"totalUnrealizedPnL"`
	TotalUnrealizedPnLUSD float64 `json:"totalUnrealizedPnLUSD"`

	// Position-level win/loss over positions realized inside the window
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	TotalPositions int     `json:"totalPositions"`
	WinRate        float64 `json:"winRate"` // percent

	TotalTrades    int     `json:"totalTrades"`
	BuyCount       int     `json:"buyCount"`
	SellCount      int     `json:"sellCount"`
	TotalVolumeSol float64 `json:"totalVolume"`
	TotalVolumeUSD float64 `json:"totalVolumeUSD"`

	AvgBuySizeSol  float64 `json:"avgBuySize"`
	AvgBuySizeUSD  float64 `json:"avgBuySizeUSD"`
	AvgSellSizeSol float64 `json:"avgSellSize"`
	AvgSellSizeUSD float64 `json:"avgSellSizeUSD"`
	AvgWinSol      float64 `json:"avgWin"`
	AvgWinUSD      float64 `json:"avgWinUSD"`

	Details        []Position           `json:"details"`
	Calendar       map[string]DailyStat `json:"calendar"`
	MCDistribution map[string]int       `json:"mcDistribution"`

	// Skipped counts input records dropped before aggregation, keyed by reason.
	Skipped map[string]int `json:"skipped,omitempty"`
}

// Window names in presentation order.
const (
	Window1D  = "1d"
	Window7D  = "7d"
	Window14D = "14d"
	Window30D = "30d"
	WindowAll = "all"
)

// WindowSet holds one summary per window.
type WindowSet struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Order       []string                  `json:"order"` // window names, shortest first
	Windows     map[string]*WindowSummary `json:"windows"`
}

// Summaries returns the summaries in Order.
func (s *WindowSet) Summaries() []*WindowSummary {
	if s == nil {
		return nil
	}
	out := make([]*WindowSummary, 0, len(s.Order))
	for _, name := range s.Order {
		if w := s.Windows[name]; w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Get returns the summary for a window name, or nil.
func (s *WindowSet) Get(window string) *WindowSummary {
	if s == nil || s.Windows == nil {
		return nil
	}
	return s.Windows[window]
}

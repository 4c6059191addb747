package domain

// PnLSnapshot is the persisted headline of one window of one analysis run.
type PnLSnapshot struct {
	SnapshotID    string // shared by all windows of one run
	Wallet        string
	Window        string
	GeneratedAtMs int64

	TotalRealizedPnLSol   float64
	TotalRealizedPnLUSD   float64
	TotalUnrealizedPnLSol float64
	TotalUnrealizedPnLUSD float64

	Wins           int
	Losses         int
	TotalPositions int
	WinRate        float64

	TotalTrades    int
	TotalVolumeSol float64
	TotalVolumeUSD float64
}

// NewPnLSnapshot extracts the headline fields of a window summary.
func NewPnLSnapshot(snapshotID, wallet string, generatedAtMs int64, s *WindowSummary) *PnLSnapshot {
	return &PnLSnapshot{
		SnapshotID:            snapshotID,
		Wallet:                wallet,
		Window:                s.Window,
		GeneratedAtMs:         generatedAtMs,
		TotalRealizedPnLSol:   s.TotalRealizedPnLSol,
		TotalRealizedPnLUSD:   s.TotalRealizedPnLUSD,
		TotalUnrealizedPnLSol: s.TotalUnrealizedPnLSol,
		TotalUnrealizedPnLUSD: s.TotalUnrealizedPnLUSD,
		Wins:                  s.Wins,
		Losses:                s.Losses,
		TotalPositions:        s.TotalPositions,
		WinRate:               s.WinRate,
		TotalTrades:           s.TotalTrades,
		TotalVolumeSol:        s.TotalVolumeSol,
		TotalVolumeUSD:        s.TotalVolumeUSD,
	}
}

// WalletDailyStat is a calendar day of a wallet's all-time window, as stored.
type WalletDailyStat struct {
	Wallet     string
	SnapshotID string
	DailyStat
}

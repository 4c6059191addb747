package domain

// PositionStatus classifies a reconstructed position.
type PositionStatus string

// Position status constants
const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
	PositionOrphan PositionStatus = "ORPHAN" // sells without any recorded buy
)

// Position is the full-history snapshot of one mint held by a wallet.
// Built fresh on every aggregation; never persisted by the engine.
type Position struct {
	Mint   string         `json:"mint"`
	Status PositionStatus `json:"status"`

	// Counts
	BuyCount  int `json:"buyCount"`
	SellCount int `json:"sellCount"`

	// Flows
	TotalBuySol     float64 `json:"totalBuySol"`
	TotalSellSol    float64 `json:"totalSellSol"`
	TotalBuyUSD     float64 `json:"totalBuyUSD"`
	TotalSellUSD    float64 `json:"totalSellUSD"`
	TotalBuyTokens  float64 `json:"totalBuyTokens"`
	TotalSellTokens float64 `json:"totalSellTokens"`
	RemainingTokens float64 `json:"remainingTokens"`

	// Cost basis (per token)
	AvgBuyPriceSol float64 `json:"avgBuyPriceSol"`
	AvgBuyPriceUSD float64 `json:"avgBuyPriceUSD"`

	// PnL
	RealizedPnLSol   float64 `json:"realizedPnL"`
	RealizedPnLUSD   float64 `json:"realizedPnLUSD"`
	UnrealizedPnLSol float64 `json:"unrealizedPnL"`
	UnrealizedPnLUSD float64 `json:"unrealizedPnLUSD"`
	DisplayPnLSol    float64 `json:"pnl"`
	DisplayPnLUSD    float64 `json:"pnlUSD"`
	ROI              float64 `json:"roi"` // percent of SOL invested

	// Timing (ms)
	FirstBuyMs   int64 `json:"firstBuyTimestamp,omitempty"`
	LastSellMs   int64 `json:"lastSellTimestamp,omitempty"`
	LastActiveMs int64 `json:"lastActiveTimestamp"`
	DurationMs   int64 `json:"duration"`

	// Market data at analysis time (zero when unknown)
	CurrentPriceSol float64 `json:"currentPrice,omitempty"`
	MarketCapUSD    float64 `json:"marketCap,omitempty"`
	IsSniper        bool    `json:"isSniper"`
}

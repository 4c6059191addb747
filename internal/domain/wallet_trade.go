package domain

// TradeType is the direction of a wallet trade against SOL.
type TradeType string

// Trade type constants
const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// Valid reports whether t is a known trade direction.
func (t TradeType) Valid() bool {
	return t == TradeTypeBuy || t == TradeTypeSell
}

// WalletTrade is one normalized buy or sell of a token against SOL.
// Amounts are non-negative magnitudes; direction is carried by Type.
// Corresponds to wallet_trades table in PostgreSQL.
type WalletTrade struct {
	Wallet      string    `json:"wallet,omitempty"` // owner wallet address
	Signature   string    `json:"signature"`        // transaction signature
	Type        TradeType `json:"type"`             // BUY | SELL
	Mint        string    `json:"mint"`             // token mint address
	SolAmount   float64   `json:"solAmount"`        // SOL spent (buy) or received (sell)
	TokenAmount float64   `json:"tokenAmount"`      // tokens received (buy) or spent (sell)
	TimestampMs int64     `json:"timestamp"`        // block time (ms)
}

// IsBuy reports whether the trade is a buy.
func (t *WalletTrade) IsBuy() bool { return t.Type == TradeTypeBuy }

// IsSell reports whether the trade is a sell.
func (t *WalletTrade) IsSell() bool { return t.Type == TradeTypeSell }

// Well-known quote mints that are never analyzed as positions.
const (
	MintWrappedSOL = "So11111111111111111111111111111111111111112"
	MintUSDC       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	MintUSDT       = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

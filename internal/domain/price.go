package domain

// PriceKind tags how a token price is denominated.
type PriceKind int

const (
	// PriceNative is a price already expressed in SOL.
	PriceNative PriceKind = iota
	// PriceQuoted is a price in another currency (USD) that must be converted.
	PriceQuoted
)

// Quote currency constants
const (
	CurrencySOL = "SOL"
	CurrencyUSD = "USD"
)

// PriceQuote is a resolved token price. Engine arithmetic only ever sees
// PriceNative quotes; conversion happens once at the boundary.
type PriceQuote struct {
	Kind             PriceKind
	Value            float64 // price per token
	QuoteCurrency    string  // set for PriceQuoted
	PairCreatedAtSec int64   // pair creation time (seconds), 0 if unknown
	MarketCapUSD     float64 // 0 if unknown
}

// TokenPrice is a stored price observation for a mint.
// Corresponds to token_prices table in PostgreSQL.
type TokenPrice struct {
	Mint             string
	Price            float64
	Currency         string // SOL | USD
	PairCreatedAtSec int64
	MarketCapUSD     float64
	UpdatedAtMs      int64
}

// MonthlyPrice is the approximate SOL/USD price for one calendar month.
// Corresponds to sol_usd_monthly table in PostgreSQL.
type MonthlyPrice struct {
	Month    string  // YYYY-MM
	PriceUSD float64 // SOL/USD
}

// Package pnl reconstructs per-token positions from a wallet's normalized
// trades and rolls realized/unrealized PnL up into time-window summaries.
// Everything here is pure: no I/O, no logging, no shared mutable state.
package pnl

import (
	"time"

	"wallet-pnl/internal/domain"
)

// Config holds the tunable thresholds of the engine.
type Config struct {
	// DustAbsoluteTokens closes any position with at most this many tokens left.
	DustAbsoluteTokens float64
	// DustValueUSD and DustRelativeRatio close a position whose remainder is
	// worth less than DustValueUSD AND is below DustRelativeRatio of tokens bought.
	DustValueUSD      float64
	DustRelativeRatio float64

	// SniperWindow is the max delay between pair creation and first buy.
	SniperWindow time.Duration

	// IgnoredMints extends the built-in quote mint blocklist.
	IgnoredMints []string

	Windows []Window
}

// Window is a named lookback period. Lookback 0 means full history.
type Window struct {
	Name     string
	Lookback time.Duration
}

// Cutoff returns the window cutoff in ms relative to now.
func (w Window) Cutoff(now time.Time) int64 {
	if w.Lookback <= 0 {
		return 0
	}
	return now.Add(-w.Lookback).UnixMilli()
}

const day = 24 * time.Hour

// DefaultWindows are the dashboard windows: 1d, 7d, 14d, 30d, all.
var DefaultWindows = []Window{
	{Name: domain.Window1D, Lookback: day},
	{Name: domain.Window7D, Lookback: 7 * day},
	{Name: domain.Window14D, Lookback: 14 * day},
	{Name: domain.Window30D, Lookback: 30 * day},
	{Name: domain.WindowAll, Lookback: 0},
}

// DefaultConfig returns the empirically tuned thresholds.
func DefaultConfig() Config {
	return Config{
		DustAbsoluteTokens: 1e-6,
		DustValueUSD:       1.0,
		DustRelativeRatio:  0.05,
		SniperWindow:       15 * time.Minute,
		Windows:            DefaultWindows,
	}
}

// builtinIgnoredMints are quote currencies, never positions.
var builtinIgnoredMints = []string{
	domain.MintWrappedSOL,
	domain.MintUSDC,
	domain.MintUSDT,
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So",  // mSOL
	"J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn", // jitoSOL
	"7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj", // stSOL
	"bSo13r4TkiE4KumL71LsHTPpL2euBYLFx6h9HP3piy1",  // bSOL
}

func (c Config) ignoredSet() map[string]struct{} {
	set := make(map[string]struct{}, len(builtinIgnoredMints)+len(c.IgnoredMints))
	for _, m := range builtinIgnoredMints {
		set[m] = struct{}{}
	}
	for _, m := range c.IgnoredMints {
		if m != "" {
			set[m] = struct{}{}
		}
	}
	return set
}

func (c Config) windows() []Window {
	if len(c.Windows) == 0 {
		return DefaultWindows
	}
	return c.Windows
}

package pnl

import (
	"sort"
	"strings"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/idhash"
)

// SkipReason explains why a trade was dropped before aggregation.
type SkipReason string

// Skip reasons
const (
	SkipMissingMint      SkipReason = "missing_mint"
	SkipMissingSignature SkipReason = "missing_signature"
	SkipInvalidType      SkipReason = "invalid_type"
	SkipInvalidAmount    SkipReason = "invalid_amount"
	SkipInvalidTime      SkipReason = "invalid_timestamp"
	SkipIgnoredMint      SkipReason = "ignored_mint"
	SkipDuplicate        SkipReason = "duplicate"
)

// SkippedTrade is a dropped input record with its reason.
type SkippedTrade struct {
	Trade  domain.WalletTrade
	Reason SkipReason
}

// Sanitize splits trades into a valid working set and skipped records.
// Valid trades are returned sorted by timestamp ASC, then signature, mint.
// Zero amounts are valid: they are inert in the arithmetic.
func Sanitize(trades []domain.WalletTrade, ignored map[string]struct{}) ([]domain.WalletTrade, []SkippedTrade) {
	valid := make([]domain.WalletTrade, 0, len(trades))
	var skipped []SkippedTrade
	seen := make(map[string]struct{}, len(trades))

	for _, t := range trades {
		t.Mint = strings.TrimSpace(t.Mint)
		t.Signature = strings.TrimSpace(t.Signature)
		if reason, ok := validate(&t, ignored); !ok {
			skipped = append(skipped, SkippedTrade{Trade: t, Reason: reason})
			continue
		}

		key := idhash.TradeKey(&t)
		if _, dup := seen[key]; dup {
			skipped = append(skipped, SkippedTrade{Trade: t, Reason: SkipDuplicate})
			continue
		}
		seen[key] = struct{}{}

		valid = append(valid, t)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].TimestampMs != valid[j].TimestampMs {
			return valid[i].TimestampMs < valid[j].TimestampMs
		}
		if valid[i].Signature != valid[j].Signature {
			return valid[i].Signature < valid[j].Signature
		}
		return valid[i].Mint < valid[j].Mint
	})

	return valid, skipped
}

func validate(t *domain.WalletTrade, ignored map[string]struct{}) (SkipReason, bool) {
	if t.Mint == "" {
		return SkipMissingMint, false
	}
	// The signature is the trade's identity; stores key on it.
	if t.Signature == "" {
		return SkipMissingSignature, false
	}
	if !t.Type.Valid() {
		return SkipInvalidType, false
	}
	if !isFinite(t.SolAmount) || !isFinite(t.TokenAmount) || t.SolAmount < 0 || t.TokenAmount < 0 {
		return SkipInvalidAmount, false
	}
	if t.TimestampMs <= 0 {
		return SkipInvalidTime, false
	}
	if _, ok := ignored[t.Mint]; ok {
		return SkipIgnoredMint, false
	}
	return "", true
}

// countSkipped groups skipped records by reason.
func countSkipped(skipped []SkippedTrade) map[string]int {
	if len(skipped) == 0 {
		return nil
	}
	out := make(map[string]int)
	for _, s := range skipped {
		out[string(s.Reason)]++
	}
	return out
}

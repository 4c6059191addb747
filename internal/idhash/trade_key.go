package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"wallet-pnl/internal/domain"
)

// ComputeTradeKey computes a deterministic trade key using SHA256.
// Formula: SHA256(wallet|signature|mint|type)
// One transaction can touch several mints, so the signature alone is not unique.
// Returns hex-encoded hash (64 characters).
func ComputeTradeKey(wallet, signature, mint string, tradeType domain.TradeType) string {
	data := fmt.Sprintf("%s|%s|%s|%s", wallet, signature, mint, string(tradeType))

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// TradeKey computes the key for a trade record.
func TradeKey(t *domain.WalletTrade) string {
	return ComputeTradeKey(t.Wallet, t.Signature, t.Mint, t.Type)
}

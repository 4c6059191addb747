// Package wallet validates Solana account addresses.
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Errors returned by address validation.
var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrOffCurve       = errors.New("address is not an ed25519 public key")
)

// AddressLen is the byte length of a Solana public key.
const AddressLen = 32

// Decode parses a base58 address into its 32 raw bytes.
func Decode(addr string) ([]byte, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	raw, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != AddressLen {
		return nil, fmt.Errorf("%w: decoded length %d", ErrInvalidAddress, len(raw))
	}
	return raw, nil
}

// IsOnCurve reports whether b is a valid ed25519 point encoding.
// Program derived addresses are deliberately off-curve.
func IsOnCurve(b []byte) bool {
	if len(b) != AddressLen {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// ValidateWallet checks that addr is a signer-capable wallet address:
// well-formed base58, 32 bytes, on the ed25519 curve.
// Returns the canonical (trimmed) address.
func ValidateWallet(addr string) (string, error) {
	raw, err := Decode(addr)
	if err != nil {
		return "", err
	}
	if !IsOnCurve(raw) {
		return "", ErrOffCurve
	}
	return base58.Encode(raw), nil
}

// ValidMint reports whether mint is a well-formed 32-byte address.
// Mints may be off-curve, so only the encoding is checked.
func ValidMint(mint string) bool {
	_, err := Decode(mint)
	return err == nil
}

// Package tradefile reads normalized wallet trades from JSON documents.
//
// Accepted shapes:
//
//	[ {trade}, ... ]
//	{ "wallet": "...", "trades": [ {trade}, ... ] }
//
// Amounts may be JSON numbers or decimal strings. SOL may be given as
// "solAmount" or as integer "lamports". Timestamps below 1e12 are seconds.
package tradefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"wallet-pnl/internal/domain"
)

// Errors returned while decoding.
var (
	// ErrEmpty is returned when the document holds no trade array.
	ErrEmpty = errors.New("trade file is empty")
	// ErrMissingSignature marks a row without a transaction signature.
	ErrMissingSignature = errors.New("trade has no signature")
)

// LamportsPerSOL is the number of lamports in one SOL.
var LamportsPerSOL = decimal.NewFromInt(1_000_000_000)

// secondsThreshold separates second from millisecond timestamps.
const secondsThreshold = 1_000_000_000_000

// File is a decoded trade document.
type File struct {
	Wallet   string
	Trades   []domain.WalletTrade
	Rejected int // rows that could not be decoded
}

type document struct {
	Wallet string            `json:"wallet"`
	Trades []json.RawMessage `json:"trades"`
}

type row struct {
	Signature   string           `json:"signature"`
	Type        string           `json:"type"`
	Mint        string           `json:"mint"`
	SolAmount   *decimal.Decimal `json:"solAmount"`
	Lamports    *decimal.Decimal `json:"lamports"`
	TokenAmount *decimal.Decimal `json:"tokenAmount"`
	Timestamp   int64            `json:"timestamp"`
}

// Read decodes a trade document. Rows that fail to decode or carry no
// signature are counted in Rejected and skipped; only a malformed document
// is an error.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trade file: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	var doc document
	if data[0] == '[' {
		if err := json.Unmarshal(data, &doc.Trades); err != nil {
			return nil, fmt.Errorf("decode trade array: %w", err)
		}
	} else if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode trade document: %w", err)
	}
	if doc.Trades == nil {
		return nil, ErrEmpty
	}

	f := &File{Wallet: strings.TrimSpace(doc.Wallet), Trades: make([]domain.WalletTrade, 0, len(doc.Trades))}
	for _, raw := range doc.Trades {
		t, err := decodeRow(raw)
		if err != nil {
			f.Rejected++
			continue
		}
		t.Wallet = f.Wallet
		f.Trades = append(f.Trades, t)
	}
	return f, nil
}

func decodeRow(raw json.RawMessage) (domain.WalletTrade, error) {
	var r row
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.WalletTrade{}, err
	}
	if strings.TrimSpace(r.Signature) == "" {
		return domain.WalletTrade{}, ErrMissingSignature
	}

	sol := decimal.Zero
	switch {
	case r.SolAmount != nil:
		sol = *r.SolAmount
	case r.Lamports != nil:
		sol = r.Lamports.Div(LamportsPerSOL)
	}
	tokens := decimal.Zero
	if r.TokenAmount != nil {
		tokens = *r.TokenAmount
	}

	ts := r.Timestamp
	if ts > 0 && ts < secondsThreshold {
		ts *= 1000
	}

	return domain.WalletTrade{
		Signature:   strings.TrimSpace(r.Signature),
		Type:        domain.TradeType(strings.ToUpper(strings.TrimSpace(r.Type))),
		Mint:        strings.TrimSpace(r.Mint),
		SolAmount:   sol.InexactFloat64(),
		TokenAmount: tokens.InexactFloat64(),
		TimestampMs: ts,
	}, nil
}

// Write encodes trades as a wallet document with decimal-string amounts.
func Write(w io.Writer, wallet string, trades []domain.WalletTrade) error {
	out := struct {
		Wallet string           `json:"wallet,omitempty"`
		Trades []map[string]any `json:"trades"`
	}{Wallet: wallet, Trades: make([]map[string]any, 0, len(trades))}

	for _, t := range trades {
		out.Trades = append(out.Trades, map[string]any{
			"signature":   t.Signature,
			"type":        string(t.Type),
			"mint":        t.Mint,
			"solAmount":   decimal.NewFromFloat(t.SolAmount).String(),
			"tokenAmount": decimal.NewFromFloat(t.TokenAmount).String(),
			"timestamp":   t.TimestampMs,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode trade file: %w", err)
	}
	return nil
}

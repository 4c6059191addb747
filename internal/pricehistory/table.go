// Package pricehistory provides the month-bucketed SOL/USD price table used
// to value trades at their own timestamp.
package pricehistory

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"wallet-pnl/internal/domain"
)

// ErrBadRow is returned when a CSV row cannot be parsed.
var ErrBadRow = errors.New("bad price history row")

const monthLayout = "2006-01"

//go:embed sol_usd_monthly.csv
var defaultCSV []byte

// Table is a read-only month -> SOL/USD mapping.
// A nil *Table is valid and resolves every lookup to the fallback.
type Table struct {
	prices map[string]float64
}

// New builds a table from a month -> price map. Non-positive prices are dropped.
func New(prices map[string]float64) *Table {
	t := &Table{prices: make(map[string]float64, len(prices))}
	for month, p := range prices {
		if p > 0 && !math.IsInf(p, 0) {
			t.prices[month] = p
		}
	}
	return t
}

// FromMonthly builds a table from stored monthly prices.
func FromMonthly(rows []domain.MonthlyPrice) *Table {
	m := make(map[string]float64, len(rows))
	for _, r := range rows {
		m[r.Month] = r.PriceUSD
	}
	return New(m)
}

// Default returns the embedded table of approximate monthly averages.
func Default() *Table {
	t, err := ParseCSV(bytes.NewReader(defaultCSV))
	if err != nil {
		panic(fmt.Sprintf("embedded price history: %v", err))
	}
	return t
}

// MonthKey returns the UTC YYYY-MM bucket for a millisecond timestamp.
func MonthKey(tsMs int64) string {
	return time.UnixMilli(tsMs).UTC().Format(monthLayout)
}

// PriceAt returns the SOL/USD price for the month containing tsMs.
// Unknown months resolve to fallback.
func (t *Table) PriceAt(tsMs int64, fallback float64) float64 {
	if t == nil {
		return fallback
	}
	if p, ok := t.prices[MonthKey(tsMs)]; ok {
		return p
	}
	return fallback
}

// Len returns the number of months in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.prices)
}

// Months returns all entries sorted by month ASC.
func (t *Table) Months() []domain.MonthlyPrice {
	if t == nil {
		return nil
	}
	out := make([]domain.MonthlyPrice, 0, len(t.prices))
	for m, p := range t.prices {
		out = append(out, domain.MonthlyPrice{Month: m, PriceUSD: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ParseCSV reads "month,price_usd" rows. A header row is optional.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	prices := make(map[string]float64)
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, ErrBadRow, err)
		}
		month := strings.TrimSpace(rec[0])
		if line == 1 && strings.EqualFold(month, "month") {
			continue
		}
		if _, err := time.Parse(monthLayout, month); err != nil {
			return nil, fmt.Errorf("line %d: %w: month %q", line, ErrBadRow, month)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("line %d: %w: price %q", line, ErrBadRow, rec[1])
		}
		prices[month] = price
	}
	return New(prices), nil
}

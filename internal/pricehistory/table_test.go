package pricehistory

import (
	"errors"
	"strings"
	"testing"
	"time"

	"wallet-pnl/internal/domain"
)

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func TestPriceAt_KnownMonth(t *testing.T) {
	table := New(map[string]float64{"2024-03": 175, "2024-04": 150})

	if got := table.PriceAt(ms(2024, time.March, 15), 99); got != 175 {
		t.Errorf("expected 175, got %f", got)
	}
	if got := table.PriceAt(ms(2024, time.April, 1), 99); got != 150 {
		t.Errorf("expected 150, got %f", got)
	}
}

func TestPriceAt_UnknownMonthFallsBack(t *testing.T) {
	table := New(map[string]float64{"2024-03": 175})

	if got := table.PriceAt(ms(2019, time.January, 1), 123.5); got != 123.5 {
		t.Errorf("expected fallback 123.5, got %f", got)
	}
}

func TestPriceAt_NilTable(t *testing.T) {
	var table *Table
	if got := table.PriceAt(ms(2024, time.March, 1), 42); got != 42 {
		t.Errorf("expected fallback 42, got %f", got)
	}
	if table.Len() != 0 {
		t.Errorf("expected Len 0 for nil table")
	}
}

func TestMonthKey_UsesUTC(t *testing.T) {
	// 2024-03-31 23:30 in UTC-5 is 2024-04-01 04:30 UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2024, time.March, 31, 23, 30, 0, 0, loc).UnixMilli()

	if got := MonthKey(ts); got != "2024-04" {
		t.Errorf("expected 2024-04, got %s", got)
	}
}

func TestNew_DropsNonPositive(t *testing.T) {
	table := New(map[string]float64{"2024-01": 0, "2024-02": -3, "2024-03": 10})
	if table.Len() != 1 {
		t.Fatalf("expected 1 month, got %d", table.Len())
	}
}

func TestParseCSV(t *testing.T) {
	input := "month,price_usd\n2024-01, 98\n2024-02,110.5\n"
	table, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	months := table.Months()
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}
	if months[0] != (domain.MonthlyPrice{Month: "2024-01", PriceUSD: 98}) {
		t.Errorf("unexpected first month: %+v", months[0])
	}
	if months[1].PriceUSD != 110.5 {
		t.Errorf("expected 110.5, got %f", months[1].PriceUSD)
	}
}

func TestParseCSV_BadRows(t *testing.T) {
	cases := map[string]string{
		"bad month": "2024/01,98\n",
		"bad price": "2024-01,abc\n",
		"zero":      "2024-01,0\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(input))
			if !errors.Is(err, ErrBadRow) {
				t.Errorf("expected ErrBadRow, got %v", err)
			}
		})
	}
}

func TestDefault_Loads(t *testing.T) {
	table := Default()
	if table.Len() == 0 {
		t.Fatal("expected embedded table to have months")
	}
	if got := table.PriceAt(ms(2024, time.November, 10), 0); got <= 0 {
		t.Errorf("expected a price for 2024-11, got %f", got)
	}
}

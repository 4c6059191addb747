// Package main analyzes a wallet trade file offline and prints its PnL
// windows as JSON, Markdown or CSV.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"wallet-pnl/internal/config"
	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/logging"
	"wallet-pnl/internal/pnl"
	"wallet-pnl/internal/pricehistory"
	"wallet-pnl/internal/reporting"
	"wallet-pnl/internal/tradefile"
	"wallet-pnl/internal/wallet"
)

type options struct {
	tradesPath  string
	pricesPath  string
	historyPath string
	wallet      string
	solUSD      float64
	window      string
	format      string
	table       string
	now         time.Time
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.tradesPath, "trades", "-", "Trade file (JSON), - for stdin")
	flag.StringVar(&opts.pricesPath, "prices", "", "Price file: JSON object mint -> price or {price,currency,pairCreatedAt,marketCap}")
	flag.StringVar(&opts.historyPath, "history", "", "SOL/USD monthly history CSV (month,price_usd); defaults to the built-in table")
	flag.StringVar(&opts.wallet, "wallet", "", "Wallet address; overrides the trade file's wallet")
	flag.Float64Var(&opts.solUSD, "sol-usd", cfg.SolUSDPrice, "Current SOL/USD quote")
	flag.StringVar(&opts.window, "window", "", "Print only this window (json format)")
	flag.StringVar(&opts.format, "format", "json", "Output format: json, md, csv")
	flag.StringVar(&opts.table, "table", "windows", "CSV table: windows, positions, calendar")
	flag.Parse()

	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel)

	if err := run(context.Background(), cfg.Engine, opts, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("analyze failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, engineCfg pnl.Config, opts options, out io.Writer) error {
	if opts.solUSD <= 0 {
		return errors.New("sol-usd must be positive")
	}

	f, err := readTrades(opts.tradesPath)
	if err != nil {
		return err
	}

	addr := f.Wallet
	if opts.wallet != "" {
		addr = opts.wallet
	}
	if addr != "" {
		if addr, err = wallet.ValidateWallet(addr); err != nil {
			return fmt.Errorf("wallet: %w", err)
		}
	}

	prices, err := readPrices(opts.pricesPath, opts.solUSD)
	if err != nil {
		return err
	}
	history, err := readHistory(opts.historyPath)
	if err != nil {
		return err
	}

	engine := pnl.NewEngine(engineCfg, history)
	if !opts.now.IsZero() {
		engine = engine.WithClock(func() time.Time { return opts.now })
	}
	set, err := engine.AnalyzeTimeWindows(ctx, f.Trades, prices, opts.solUSD)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	return render(out, addr, set, opts)
}

func render(out io.Writer, addr string, set *domain.WindowSet, opts options) error {
	report := reporting.Build(addr, set)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if opts.window != "" {
			summary := set.Get(opts.window)
			if summary == nil {
				return fmt.Errorf("unknown window %q", opts.window)
			}
			return enc.Encode(summary)
		}
		return enc.Encode(set)
	case "md", "markdown":
		_, err := io.WriteString(out, reporting.RenderMarkdown(report))
		return err
	case "csv":
		var body string
		switch opts.table {
		case "windows":
			body = reporting.RenderWindowsCSV(report)
		case "positions":
			body = reporting.RenderPositionsCSV(report)
		case "calendar":
			body = reporting.RenderCalendarCSV(report)
		default:
			return fmt.Errorf("unknown table %q", opts.table)
		}
		_, err := io.WriteString(out, body)
		return err
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func readTrades(path string) (*tradefile.File, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open trades: %w", err)
		}
		defer fh.Close()
		r = fh
	}
	f, err := tradefile.Read(r)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func readPrices(path string, solUSD float64) (pnl.PriceBook, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}
	var raw map[string]pnl.RawPrice
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}
	return pnl.ResolvePrices(raw, solUSD), nil
}

func readHistory(path string) (*pricehistory.Table, error) {
	if path == "" {
		return pricehistory.Default(), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer fh.Close()
	return pricehistory.ParseCSV(fh)
}

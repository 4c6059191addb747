package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as Markdown.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Wallet PnL Report\n\n")
	if r.Wallet != "" {
		sb.WriteString(fmt.Sprintf("Wallet: `%s`\n\n", r.Wallet))
	}
	if !r.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	}

	sb.WriteString("## Windows\n\n")
	if len(r.Windows) > 0 {
		sb.WriteString("| Window | Trades | Volume (SOL) | Realized (SOL) | Realized (USD) | Unrealized (SOL) | Wins | Losses | WinRate % |\n")
		sb.WriteString("|--------|--------|--------------|----------------|----------------|------------------|------|--------|-----------|\n")
		for _, w := range r.Windows {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.4f | %.4f | %.2f | %.4f | %d | %d | %.2f |\n",
				w.Window, w.Trades, w.VolumeSol, w.RealizedPnLSol, w.RealizedPnLUSD,
				w.UnrealizedPnLSol, w.Wins, w.Losses, w.WinRate))
		}
	} else {
		sb.WriteString("No trades analyzed.\n")
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("## Positions (%s)\n\n", orDash(r.PositionsWindow)))
	if len(r.Positions) > 0 {
		sb.WriteString("| Mint | Status | Buys | Sells | Invested (SOL) | PnL (SOL) | PnL (USD) | ROI % | Sniper |\n")
		sb.WriteString("|------|--------|------|-------|----------------|-----------|-----------|-------|--------|\n")
		for _, p := range r.Positions {
			sniper := ""
			if p.IsSniper {
				sniper = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %.4f | %.4f | %.2f | %.2f | %s |\n",
				shortMint(p.Mint), p.Status, p.BuyCount, p.SellCount, p.TotalBuySol,
				p.DisplayPnLSol, p.DisplayPnLUSD, p.ROI, sniper))
		}
	} else {
		sb.WriteString("No positions.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Daily Calendar\n\n")
	if len(r.Calendar) > 0 {
		sb.WriteString("| Date | PnL (SOL) | PnL (USD) | Wins | Losses | Trades | Volume (SOL) |\n")
		sb.WriteString("|------|-----------|-----------|------|--------|--------|--------------|\n")
		for _, d := range r.Calendar {
			sb.WriteString(fmt.Sprintf("| %s | %.4f | %.2f | %d | %d | %d | %.4f |\n",
				d.Date, d.PnLSol, d.PnLUSD, d.Wins, d.Losses, d.Trades, d.VolumeSol))
		}
	} else {
		sb.WriteString("No realized trades.\n")
	}
	sb.WriteString("\n")

	if len(r.MCDistribution) > 0 {
		sb.WriteString("## Market Cap Distribution\n\n")
		sb.WriteString("| Bucket | Positions |\n")
		sb.WriteString("|--------|-----------|\n")
		for _, b := range r.MCDistribution {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", b.Label, b.Count))
		}
		sb.WriteString("\n")
	}

	if len(r.Skipped) > 0 {
		sb.WriteString("## Skipped Records\n\n")
		for _, s := range r.Skipped {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", s.Label, s.Count))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// shortMint abbreviates a base58 mint for table display.
func shortMint(mint string) string {
	if len(mint) <= 12 {
		return mint
	}
	return mint[:4] + "…" + mint[len(mint)-4:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

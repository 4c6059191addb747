package reporting

import (
	"fmt"
	"strings"
)

// RenderWindowsCSV renders the window overview as CSV.
func RenderWindowsCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("window,trades,buys,sells,volume_sol,volume_usd,")
	sb.WriteString("realized_pnl_sol,realized_pnl_usd,unrealized_pnl_sol,unrealized_pnl_usd,")
	sb.WriteString("wins,losses,positions,win_rate,avg_win_sol\n")

	for _, w := range r.Windows {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%.6f,%.2f,%.6f,%.2f,%.6f,%.2f,%d,%d,%d,%.2f,%.6f\n",
			w.Window,
			w.Trades,
			w.Buys,
			w.Sells,
			w.VolumeSol,
			w.VolumeUSD,
			w.RealizedPnLSol,
			w.RealizedPnLUSD,
			w.UnrealizedPnLSol,
			w.UnrealizedPnLUSD,
			w.Wins,
			w.Losses,
			w.Positions,
			w.WinRate,
			w.AvgWinSol,
		))
	}

	return sb.String()
}

// RenderPositionsCSV renders the positions of the widest window as CSV.
func RenderPositionsCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("mint,status,buys,sells,total_buy_sol,total_sell_sol,remaining_tokens,")
	sb.WriteString("realized_pnl_sol,unrealized_pnl_sol,pnl_sol,pnl_usd,roi,duration_ms,is_sniper\n")

	for _, p := range r.Positions {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.2f,%.2f,%d,%t\n",
			p.Mint,
			p.Status,
			p.BuyCount,
			p.SellCount,
			p.TotalBuySol,
			p.TotalSellSol,
			p.RemainingTokens,
			p.RealizedPnLSol,
			p.UnrealizedPnLSol,
			p.DisplayPnLSol,
			p.DisplayPnLUSD,
			p.ROI,
			p.DurationMs,
			p.IsSniper,
		))
	}

	return sb.String()
}

// RenderCalendarCSV renders the daily calendar as CSV.
func RenderCalendarCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("date,pnl_sol,pnl_usd,wins,losses,trades,volume_sol\n")
	for _, d := range r.Calendar {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.2f,%d,%d,%d,%.6f\n",
			d.Date, d.PnLSol, d.PnLUSD, d.Wins, d.Losses, d.Trades, d.VolumeSol))
	}

	return sb.String()
}

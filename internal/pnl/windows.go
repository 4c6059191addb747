package pnl

import (
	"context"

	"golang.org/x/sync/errgroup"

	"wallet-pnl/internal/domain"
)

// AnalyzeTimeWindows computes one summary per configured window.
// The full history is folded once; window rollups run concurrently and
// only read the shared analysis.
func (e *Engine) AnalyzeTimeWindows(ctx context.Context, trades []domain.WalletTrade, prices PriceBook, currentQuote float64) (*domain.WindowSet, error) {
	now := e.now()
	a := e.prepare(trades, prices, currentQuote)

	windows := e.cfg.windows()
	results := make([]*domain.WindowSummary, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.summarize(w.Name, w.Cutoff(now))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &domain.WindowSet{
		GeneratedAt: now.UTC(),
		Order:       make([]string, 0, len(windows)),
		Windows:     make(map[string]*domain.WindowSummary, len(windows)),
	}
	for i, w := range windows {
		set.Order = append(set.Order, w.Name)
		set.Windows[w.Name] = results[i]
	}
	return set, nil
}

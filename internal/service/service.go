// Package service runs wallet analyses against the stores: it loads trades
// and prices, runs the window selector, then caches, snapshots and publishes
// the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/observability"
	"wallet-pnl/internal/pnl"
	"wallet-pnl/internal/pricehistory"
	"wallet-pnl/internal/storage"
	"wallet-pnl/internal/wallet"
)

// ErrInvalidQuote is returned when a non-positive SOL/USD quote is set.
var ErrInvalidQuote = errors.New("SOL/USD quote must be positive")

// Stores groups the persistence dependencies. Trades and Prices are required;
// the rest may be nil.
type Stores struct {
	Trades     storage.WalletTradeStore
	Prices     storage.TokenPriceStore
	History    storage.PriceHistoryStore
	Snapshots  storage.SnapshotStore
	DailyStats storage.DailyStatStore
	Cache      storage.SummaryCache
}

// Publisher receives every freshly computed window set.
type Publisher interface {
	Publish(wallet string, set *domain.WindowSet)
}

// Options configures a Service.
type Options struct {
	SolUSD         float64       // initial current SOL/USD quote
	CacheTTL       time.Duration // zero disables expiry
	RefreshWorkers int           // concurrent wallets in RefreshAll, default 4
	Logger         zerolog.Logger
	Metrics        *observability.Metrics
	Publisher      Publisher
	Clock          func() time.Time
}

// Service coordinates analyses. It is safe for concurrent use.
type Service struct {
	cfg     pnl.Config
	stores  Stores
	opts    Options
	log     zerolog.Logger
	metrics *observability.Metrics
	quote   atomic.Uint64 // float64 bits
}

// New creates a Service.
func New(cfg pnl.Config, stores Stores, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.RefreshWorkers <= 0 {
		opts.RefreshWorkers = 4
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics("", nil)
	}

	s := &Service{
		cfg:     cfg,
		stores:  stores,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "service").Logger(),
		metrics: opts.Metrics,
	}
	s.quote.Store(math.Float64bits(opts.SolUSD))
	return s
}

// Quote returns the current SOL/USD quote.
func (s *Service) Quote() float64 {
	return math.Float64frombits(s.quote.Load())
}

// SetQuote replaces the current SOL/USD quote. Cached summaries are kept
// until their TTL; the next refresh uses the new quote.
func (s *Service) SetQuote(price float64) error {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return ErrInvalidQuote
	}
	s.quote.Store(math.Float64bits(price))
	return nil
}

// IngestTrades stores trades for a wallet and invalidates its cached summary.
// The wallet field of every trade is overwritten with the validated address.
// Trades without a signature are skipped. Returns the number of trades that
// were new.
func (s *Service) IngestTrades(ctx context.Context, addr string, trades []domain.WalletTrade) (int, error) {
	w, err := wallet.ValidateWallet(addr)
	if err != nil {
		return 0, err
	}

	batch := make([]*domain.WalletTrade, 0, len(trades))
	unsigned := 0
	for i := range trades {
		t := trades[i]
		t.Signature = strings.TrimSpace(t.Signature)
		if t.Signature == "" {
			unsigned++
			continue
		}
		t.Wallet = w
		batch = append(batch, &t)
	}

	inserted, err := s.stores.Trades.InsertBulk(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("store trades: %w", err)
	}
	s.metrics.RecordTradesIngested(inserted)

	if inserted > 0 && s.stores.Cache != nil {
		if err := s.stores.Cache.Delete(ctx, w); err != nil {
			s.log.Warn().Err(err).Str("wallet", w).Msg("cache invalidation failed")
		}
	}

	s.log.Info().Str("wallet", w).Int("received", len(trades)).Int("unsigned", unsigned).Int("stored", inserted).Msg("trades ingested")
	return inserted, nil
}

// UpsertPrices stores current token prices.
func (s *Service) UpsertPrices(ctx context.Context, prices []*domain.TokenPrice) error {
	now := s.opts.Clock().UnixMilli()
	for _, p := range prices {
		if p != nil && p.UpdatedAtMs == 0 {
			p.UpdatedAtMs = now
		}
	}
	if err := s.stores.Prices.Upsert(ctx, prices); err != nil {
		return fmt.Errorf("store prices: %w", err)
	}
	return nil
}

// Analyze returns the cached window set of a wallet, computing it on a miss.
func (s *Service) Analyze(ctx context.Context, addr string) (*domain.WindowSet, error) {
	w, err := wallet.ValidateWallet(addr)
	if err != nil {
		return nil, err
	}

	if s.stores.Cache != nil {
		set, err := s.stores.Cache.Get(ctx, w)
		switch {
		case err == nil:
			s.metrics.RecordCache(true)
			return set, nil
		case errors.Is(err, storage.ErrNotFound):
			s.metrics.RecordCache(false)
		default:
			s.log.Warn().Err(err).Str("wallet", w).Msg("cache read failed")
		}
	}

	return s.refresh(ctx, w)
}

// Refresh recomputes a wallet's window set, bypassing the cache.
func (s *Service) Refresh(ctx context.Context, addr string) (*domain.WindowSet, error) {
	w, err := wallet.ValidateWallet(addr)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, w)
}

// RefreshAll recomputes every stored wallet. One wallet failing does not
// stop the others; all failures are returned joined.
func (s *Service) RefreshAll(ctx context.Context) error {
	wallets, err := s.stores.Trades.ListWallets(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.RefreshWorkers)
	for _, w := range wallets {
		g.Go(func() error {
			if _, err := s.refresh(gctx, w); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("refresh %s: %w", w, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) == 0 {
		s.metrics.RecordRefresh(s.opts.Clock())
	}
	s.log.Info().Int("wallets", len(wallets)).Int("failed", len(errs)).Msg("refresh completed")
	return errors.Join(errs...)
}

func (s *Service) refresh(ctx context.Context, w string) (*domain.WindowSet, error) {
	start := time.Now()

	set, tradeCount, err := s.compute(ctx, w)
	if err != nil {
		s.metrics.RecordAnalysisError()
		return nil, err
	}

	// The all-time window lists every position and every skipped record.
	var positions []domain.Position
	var skipped map[string]int
	if all := set.Get(domain.WindowAll); all != nil {
		positions, skipped = all.Details, all.Skipped
	}
	s.metrics.RecordAnalysis(time.Since(start), tradeCount, skipped, positions)

	if s.stores.Cache != nil {
		if err := s.stores.Cache.Set(ctx, w, set, s.opts.CacheTTL); err != nil {
			s.log.Warn().Err(err).Str("wallet", w).Msg("cache write failed")
		}
	}
	if err := s.snapshot(ctx, w, set); err != nil {
		s.log.Warn().Err(err).Str("wallet", w).Msg("snapshot failed")
	}
	if s.opts.Publisher != nil {
		s.opts.Publisher.Publish(w, set)
	}

	s.log.Debug().
		Str("wallet", w).
		Int("trades", tradeCount).
		Int("positions", len(positions)).
		Dur("took", time.Since(start)).
		Msg("wallet analyzed")
	return set, nil
}

// compute loads the inputs of a wallet and runs the engine.
func (s *Service) compute(ctx context.Context, w string) (*domain.WindowSet, int, error) {
	stored, err := s.stores.Trades.GetByWallet(ctx, w)
	if err != nil {
		return nil, 0, fmt.Errorf("load trades: %w", err)
	}
	trades := make([]domain.WalletTrade, len(stored))
	mintSet := make(map[string]struct{})
	var mints []string
	for i, t := range stored {
		trades[i] = *t
		if _, ok := mintSet[t.Mint]; !ok {
			mintSet[t.Mint] = struct{}{}
			mints = append(mints, t.Mint)
		}
	}

	quote := s.Quote()
	prices, err := s.stores.Prices.GetByMints(ctx, mints)
	if err != nil {
		return nil, 0, fmt.Errorf("load prices: %w", err)
	}
	tokenPrices := make([]domain.TokenPrice, len(prices))
	for i, p := range prices {
		tokenPrices[i] = *p
	}
	book := pnl.FromTokenPrices(tokenPrices, quote)

	history, err := s.history(ctx)
	if err != nil {
		return nil, 0, err
	}

	engine := pnl.NewEngine(s.cfg, history).WithClock(s.opts.Clock)
	set, err := engine.AnalyzeTimeWindows(ctx, trades, book, quote)
	if err != nil {
		return nil, 0, fmt.Errorf("analyze: %w", err)
	}

	return set, len(trades), nil
}

// history merges stored monthly prices over the embedded defaults.
func (s *Service) history(ctx context.Context) (*pricehistory.Table, error) {
	rows := pricehistory.Default().Months()
	if s.stores.History != nil {
		stored, err := s.stores.History.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load price history: %w", err)
		}
		rows = append(rows, stored...)
	}
	return pricehistory.FromMonthly(rows), nil
}

// snapshot persists the headline of every window and the all-time calendar.
func (s *Service) snapshot(ctx context.Context, w string, set *domain.WindowSet) error {
	if s.stores.Snapshots == nil && s.stores.DailyStats == nil {
		return nil
	}

	id := uuid.NewString()
	at := set.GeneratedAt.UnixMilli()

	if s.stores.Snapshots != nil {
		snaps := make([]*domain.PnLSnapshot, 0, len(set.Order))
		for _, summary := range set.Summaries() {
			snaps = append(snaps, domain.NewPnLSnapshot(id, w, at, summary))
		}
		if err := s.stores.Snapshots.InsertBulk(ctx, snaps); err != nil {
			return fmt.Errorf("store snapshots: %w", err)
		}
	}

	all := set.Get(domain.WindowAll)
	if s.stores.DailyStats != nil && all != nil && len(all.Calendar) > 0 {
		stats := make([]*domain.WalletDailyStat, 0, len(all.Calendar))
		for _, day := range all.Calendar {
			stats = append(stats, &domain.WalletDailyStat{Wallet: w, SnapshotID: id, DailyStat: day})
		}
		if err := s.stores.DailyStats.InsertBulk(ctx, stats); err != nil {
			return fmt.Errorf("store daily stats: %w", err)
		}
	}
	return nil
}

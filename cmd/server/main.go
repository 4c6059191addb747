// Package main runs the wallet PnL API server:
// - HTTP API: trade upload, PnL windows, reports, prices, quote
// - WebSocket: per-wallet updates after every refresh
// - Scheduler: periodic refresh of every stored wallet
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"wallet-pnl/internal/config"
	"wallet-pnl/internal/logging"
	"wallet-pnl/internal/observability"
	"wallet-pnl/internal/scheduler"
	"wallet-pnl/internal/server"
	"wallet-pnl/internal/service"
	chstore "wallet-pnl/internal/storage/clickhouse"
	"wallet-pnl/internal/storage/memory"
	"wallet-pnl/internal/storage/migrations"
	pgstore "wallet-pnl/internal/storage/postgres"
	redisstore "wallet-pnl/internal/storage/redis"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flag.BoolVar(&cfg.UseMemory, "use-memory", cfg.UseMemory, "Use in-memory storage instead of PostgreSQL/ClickHouse/Redis")
	flag.StringVar(&cfg.RefreshSchedule, "refresh", cfg.RefreshSchedule, "Cron schedule for refreshing all wallets (empty disables)")
	flag.Float64Var(&cfg.SolUSDPrice, "sol-usd", cfg.SolUSDPrice, "Current SOL/USD quote")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cancel, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, logger zerolog.Logger) error {
	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("wallet_pnl", prometheus.DefaultRegisterer)
	hub := server.NewHub(logger, metrics)
	defer hub.Close()

	svc := service.New(cfg.Engine, stores, service.Options{
		SolUSD:    cfg.SolUSDPrice,
		CacheTTL:  cfg.CacheTTL,
		Logger:    logger,
		Metrics:   metrics,
		Publisher: hub,
	})

	sched := scheduler.New(ctx, logger)
	if cfg.RefreshSchedule != "" {
		if err := sched.Add("refresh-all", cfg.RefreshSchedule, svc.RefreshAll); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(svc, hub, logger, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Bool("memory", cfg.UseMemory).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
	case err := <-errCh:
		cancel()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	// Second signal forces exit
	go func() {
		sig := <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("forcing immediate shutdown")
		os.Exit(1)
	}()

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// createStores wires memory stores, or PostgreSQL for trades and prices
// with optional ClickHouse snapshots and an optional Redis cache.
func createStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Stores, func(), error) {
	if cfg.UseMemory {
		logger.Info().Msg("using in-memory storage")
		return service.Stores{
			Trades:     memory.NewWalletTradeStore(),
			Prices:     memory.NewTokenPriceStore(),
			History:    memory.NewPriceHistoryStore(),
			Snapshots:  memory.NewSnapshotStore(),
			DailyStats: memory.NewDailyStatStore(),
			Cache:      memory.NewSummaryCache(),
		}, func() {}, nil
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return service.Stores{}, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	closers = append(closers, pool.Close)

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		cleanup()
		return service.Stores{}, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := service.Stores{
		Trades:  pgstore.NewWalletTradeStore(pool),
		Prices:  pgstore.NewTokenPriceStore(pool),
		History: pgstore.NewPriceHistoryStore(pool),
	}

	if cfg.ClickHouseDSN != "" {
		var chConn *chstore.Conn
		chConn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			cleanup()
			return service.Stores{}, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { _ = chConn.Close() })
		stores.Snapshots = chstore.NewSnapshotStore(chConn)
		stores.DailyStats = chstore.NewDailyStatStore(chConn)
	} else {
		logger.Warn().Msg("CLICKHOUSE_DSN not set, snapshots disabled")
	}

	if cfg.RedisAddr != "" {
		client, err := redisstore.New(ctx, redisstore.ClientConfig{Addr: cfg.RedisAddr})
		if err != nil {
			cleanup()
			return service.Stores{}, nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		stores.Cache = redisstore.NewSummaryCache(client)
	} else {
		stores.Cache = memory.NewSummaryCache()
	}

	return stores, cleanup, nil
}

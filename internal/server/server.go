// Package server exposes the PnL service over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/observability"
	"wallet-pnl/internal/reporting"
	"wallet-pnl/internal/service"
	"wallet-pnl/internal/tradefile"
	"wallet-pnl/internal/wallet"
)

// maxBodyBytes bounds uploaded trade and price documents.
const maxBodyBytes = 32 << 20

// PnLService is the subset of service.Service the handlers need.
type PnLService interface {
	IngestTrades(ctx context.Context, addr string, trades []domain.WalletTrade) (int, error)
	Analyze(ctx context.Context, addr string) (*domain.WindowSet, error)
	Refresh(ctx context.Context, addr string) (*domain.WindowSet, error)
	UpsertPrices(ctx context.Context, prices []*domain.TokenPrice) error
	Quote() float64
	SetQuote(price float64) error
}

var _ PnLService = (*service.Service)(nil)

// Server routes API requests to the service.
type Server struct {
	svc       PnLService
	hub       *Hub
	log       zerolog.Logger
	metrics   *observability.Metrics
	startedAt time.Time
	mux       *http.ServeMux
}

// New builds a Server. hub may be nil, which disables /ws.
func New(svc PnLService, hub *Hub, log zerolog.Logger, metrics *observability.Metrics) *Server {
	if metrics == nil {
		metrics = observability.NewMetrics("", nil)
	}
	s := &Server{
		svc:       svc,
		hub:       hub,
		log:       log.With().Str("component", "http").Logger(),
		metrics:   metrics,
		startedAt: time.Now(),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /health", "health", s.handleHealth)
	s.mux.Handle("GET /metrics", observability.Handler())

	s.handle("POST /api/wallets/{wallet}/trades", "trades", s.handleIngest)
	s.handle("GET /api/wallets/{wallet}/pnl", "pnl", s.handlePnL)
	s.handle("GET /api/wallets/{wallet}/report", "report", s.handleReport)
	s.handle("GET /api/wallets/{wallet}/report.md", "report", s.handleReport)
	s.handle("PUT /api/prices", "prices", s.handlePrices)
	s.handle("GET /api/quote", "quote", s.handleGetQuote)
	s.handle("PUT /api/quote", "quote", s.handleSetQuote)

	if s.hub != nil {
		s.mux.HandleFunc("GET /ws", s.hub.HandleWS)
	}
}

// handle registers h under pattern with request metrics labelled by route.
func (s *Server) handle(pattern, route string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.instrument(route, h))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		dur := time.Since(start)
		s.metrics.RecordHTTPRequest(route, rec.status, dur)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", dur).
			Msg("request")
	})
}

// HealthResponse is the JSON body of /health.
type HealthResponse struct {
	Status string  `json:"status"`
	Uptime string  `json:"uptime"`
	SolUSD float64 `json:"solUsd"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
		SolUSD: s.svc.Quote(),
	})
}

// IngestResponse is the JSON body returned after a trade upload.
type IngestResponse struct {
	Wallet   string `json:"wallet"`
	Received int    `json:"received"`
	Inserted int    `json:"inserted"`
	Rejected int    `json:"rejected"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("wallet")

	f, err := tradefile.Read(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if f.Wallet != "" && f.Wallet != strings.TrimSpace(addr) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("document wallet %s does not match path", f.Wallet))
		return
	}

	inserted, err := s.svc.IngestTrades(r.Context(), addr, f.Trades)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IngestResponse{
		Wallet:   strings.TrimSpace(addr),
		Received: len(f.Trades),
		Inserted: inserted,
		Rejected: f.Rejected,
	})
}

// windowSet runs Analyze, or Refresh when ?refresh=true.
func (s *Server) windowSet(r *http.Request) (*domain.WindowSet, error) {
	addr := r.PathValue("wallet")
	if r.URL.Query().Get("refresh") == "true" {
		return s.svc.Refresh(r.Context(), addr)
	}
	return s.svc.Analyze(r.Context(), addr)
}

func (s *Server) handlePnL(w http.ResponseWriter, r *http.Request) {
	set, err := s.windowSet(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if name := r.URL.Query().Get("window"); name != "" {
		summary := set.Get(name)
		if summary == nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown window %q", name))
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	set, err := s.windowSet(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	report := reporting.Build(strings.TrimSpace(r.PathValue("wallet")), set)

	var body, contentType string
	switch format := r.URL.Query().Get("format"); format {
	case "", "md", "markdown":
		body, contentType = reporting.RenderMarkdown(report), "text/markdown; charset=utf-8"
	case "csv":
		contentType = "text/csv; charset=utf-8"
		switch table := r.URL.Query().Get("table"); table {
		case "", "windows":
			body = reporting.RenderWindowsCSV(report)
		case "positions":
			body = reporting.RenderPositionsCSV(report)
		case "calendar":
			body = reporting.RenderCalendarCSV(report)
		default:
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown table %q", table))
			return
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// PriceRequest is one entry of a PUT /api/prices body.
type PriceRequest struct {
	Mint          string  `json:"mint"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"` // SOL (default) or USD
	PairCreatedAt int64   `json:"pairCreatedAt,omitempty"`
	MarketCap     float64 `json:"marketCap,omitempty"`
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	var reqs []PriceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode prices: %w", err))
		return
	}

	prices := make([]*domain.TokenPrice, 0, len(reqs))
	for _, p := range reqs {
		currency := strings.ToUpper(strings.TrimSpace(p.Currency))
		if currency == "" {
			currency = domain.CurrencySOL
		}
		if !wallet.ValidMint(p.Mint) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid mint %q", p.Mint))
			return
		}
		if currency != domain.CurrencySOL && currency != domain.CurrencyUSD {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported currency %q", p.Currency))
			return
		}
		prices = append(prices, &domain.TokenPrice{
			Mint:             strings.TrimSpace(p.Mint),
			Price:            p.Price,
			Currency:         currency,
			PairCreatedAtSec: p.PairCreatedAt,
			MarketCapUSD:     p.MarketCap,
		})
	}

	if err := s.svc.UpsertPrices(r.Context(), prices); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"upserted": len(prices)})
}

// QuoteBody is the JSON body of the quote endpoints.
type QuoteBody struct {
	SolUSD float64 `json:"solUsd"`
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, QuoteBody{SolUSD: s.svc.Quote()})
}

func (s *Server) handleSetQuote(w http.ResponseWriter, r *http.Request) {
	var body QuoteBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode quote: %w", err))
		return
	}
	if err := s.svc.SetQuote(body.SolUSD); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteBody{SolUSD: s.svc.Quote()})
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, wallet.ErrOffCurve),
		errors.Is(err, service.ErrInvalidQuote):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

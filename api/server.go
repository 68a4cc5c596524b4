// Package api provides the read-only HTTP API for WealthVista.
//
// It serves the cached market snapshots, currency conversion, refresh
// status, and a WebSocket stream announcing completed fetch cycles.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/seenimoa/wealthvista/internal/config"
	"github.com/seenimoa/wealthvista/internal/market"
	"github.com/seenimoa/wealthvista/internal/refresh"
)

// CycleStatus exposes the refresh loop state to the status endpoint.
type CycleStatus interface {
	LastReport() (refresh.CycleReport, bool)
	Running() bool
	Cycles() int
	Interval() time.Duration
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	query    *market.Query
	cycles   CycleStatus
	wsHub    *WSHub
	validate *validator.Validate
	log      *slog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
// cycles may be nil when no refresh loop is attached.
func NewServer(cfg *config.Config, query *market.Query, cycles CycleStatus, log *slog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		query:    query,
		cycles:   cycles,
		wsHub:    NewWSHub(log),
		validate: validator.New(),
		log:      log,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// NotifyCycle broadcasts a completed cycle to WebSocket clients.
func (s *Server) NotifyCycle(report refresh.CycleReport) {
	s.wsHub.Broadcast(WSMessage{Type: "cycle_complete", Data: report})
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Plain request/response routes get a deadline; the WebSocket does not.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/health", s.handleHealth)

			// Cached snapshots
			r.Get("/currency-rates", s.handleCurrencyRates)
			r.Get("/stock-indices", s.handleStockIndices)
			r.Get("/commodity-prices", s.handleCommodityPrices)
			r.Get("/crypto-prices", s.handleCryptoPrices)
			r.Get("/financial-news", s.handleFinancialNews)
			r.Get("/gainers-losers", s.handleGainersLosers)

			// Conversion
			r.Get("/convert", s.handleConvert)

			// Refresh status and configuration
			r.Get("/status", s.handleStatus)
			r.Get("/config", s.handleGetConfig)
			r.Get("/config/keys", s.handleGetConfigKeys)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// requestLogger logs one line per request through the server's logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ============================================================
// Response envelope
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Meta    *market.Meta `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

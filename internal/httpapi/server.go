// Package httpapi exposes the negotiation daemon's REST and Beckn surface
// over net/http, mirroring the teacher's mux-based server composition:
// a single ServeMux, one *http.Server with fixed timeouts, and a small
// middleware chain applied uniformly rather than a framework.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"negotiatord/internal/config"
	"negotiatord/internal/orchestrator"
	"negotiatord/internal/store"
)

// Server runs the negotiation daemon's HTTP API.
type Server struct {
	cfg      *config.Config
	handlers *Handlers
	server   *http.Server
	logger   *slog.Logger
}

// NewServer wires routes and middleware around the given collaborators.
func NewServer(cfg *config.Config, orch *orchestrator.Orchestrator, catalogue *store.CatalogueStore, records *store.RecordStore, cache *store.ActiveCache, logger *slog.Logger) *Server {
	h := &Handlers{
		cfg:       cfg,
		orch:      orch,
		catalogue: catalogue,
		records:   records,
		cache:     cache,
		logger:    logger.With("component", "httpapi"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HandleHealth)

	mux.HandleFunc("POST /api/v1/negotiate/start", h.HandleStart)
	mux.HandleFunc("POST /api/v1/negotiate/{sid}/offer", h.HandleOffer)
	mux.HandleFunc("GET /api/v1/negotiate/{sid}/status", h.HandleStatus)

	mux.HandleFunc("GET /api/v1/sessions/{sid}", h.HandleGetSession)
	mux.HandleFunc("GET /api/v1/sessions/{sid}/history", h.HandleSessionHistory)

	adminOnly := requireAdminKey(cfg.API.AdminKey, logger)
	mux.Handle("POST /api/v1/products", adminOnly(http.HandlerFunc(h.HandleCreateProduct)))
	mux.HandleFunc("GET /api/v1/products/{id}", h.HandleGetProduct)
	mux.HandleFunc("GET /api/v1/products", h.HandleListProducts)

	mux.HandleFunc("POST /beckn/select", h.HandleBecknSelect)

	top := chain(mux,
		withRequestID,
		withRecover(logger),
		withBodyLimit(cfg.RateLimit.MaxRequestBodyBytes),
		withCORS(cfg.API.CORSAllowedOrigins),
		withRateLimit(cache, cfg.RateLimit.MaxRequestsPerMinutePerIP),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      top,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{cfg: cfg, handlers: h, server: srv, logger: logger.With("component", "httpapi-server")}
}

// Start blocks serving HTTP until the server is stopped or fails.
func (s *Server) Start() error {
	s.logger.Info("negotiation api starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down within 10 seconds.
func (s *Server) Stop() error {
	s.logger.Info("stopping negotiation api")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// withRateLimit applies a per-IP sliding-window cap before a request ever
// reaches a handler.
func withRateLimit(cache *store.ActiveCache, maxPerMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !cache.AllowRequest(ip, maxPerMinute) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

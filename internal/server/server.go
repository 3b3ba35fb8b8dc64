// Package server exposes the ledger as a JSON HTTP API.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Veraticus/cashflow/internal/ledger"
)

const shutdownTimeout = 5 * time.Second

// Config holds the HTTP front end settings.
type Config struct {
	// TLS switches the listener to HTTPS when set.
	TLS            *tls.Config
	Addr           string
	ExportFormat   string
	AllowedOrigins []string
}

// Server serves the ledger API.
type Server struct {
	svc    *ledger.Service
	logger *slog.Logger
	router *chi.Mux
	cfg    Config
}

// New builds the router for svc. A nil logger uses slog.Default.
func New(svc *ledger.Service, cfg Config, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("server: ledger service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ExportFormat == "" {
		cfg.ExportFormat = "json"
	}

	s := &Server{svc: svc, logger: logger, cfg: cfg, router: chi.NewRouter()}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Route("/api", func(api chi.Router) {
		api.Get("/snapshot", s.getSnapshot)
		api.Put("/salary", s.putSalary)
		api.Post("/expenses", s.postExpense)
		api.Delete("/expenses/{id}", s.deleteExpense)
		api.Put("/currency", s.putCurrency)
		api.Get("/report", s.getReport)
	})
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         s.cfg.TLS,
	}

	errCh := make(chan error, 1)
	go func() {
		if srv.TLSConfig != nil {
			s.logger.Info("HTTPS server listening", "addr", s.cfg.Addr)
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

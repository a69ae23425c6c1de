package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ems/internal/services"
	"github.com/desertthunder/ems/internal/shared"
)

const shutdownTimeout = 10 * time.Second

// HealthHandler reports whether the employee store is reachable.
type HealthHandler struct {
	svc services.Service
}

var _ Handler = (*HealthHandler)(nil)

// NewHealthHandler creates a [HealthHandler] backed by svc.
func NewHealthHandler(svc services.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /healthz"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter builds the API router: request ids, logging, recovery, rate limiting and optional compression
// wrapped around the employee and health handlers.
func NewRouter(svc services.Service, cfg shared.ServerConfig, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(
		RequestID(),
		Logging(logger),
		Recover(logger),
		RateLimit(NewLimiter(cfg.RateLimit, cfg.RateBurst)),
	)
	if cfg.Compress {
		router.Use(Compress())
	}

	router.Handler(NewHealthHandler(svc))
	router.Handler(NewEmployeeHandler(svc, logger))
	return router
}

// Server runs an [http.Server] until its context is cancelled, then shuts it down gracefully.
type Server struct {
	http   *http.Server
	logger *log.Logger
}

// NewServer creates a [Server] listening on cfg's address.
func NewServer(cfg shared.ServerConfig, handler http.Handler, logger *log.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout.Duration,
			ReadHeaderTimeout: cfg.ReadTimeout.Duration,
			WriteTimeout:      cfg.WriteTimeout.Duration,
		},
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or the server fails.
//
// A cancelled context is a clean exit and returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %v", ln.Addr())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	return nil
}

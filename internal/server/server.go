// Package server implements the HTTP server for the application.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codesage-ai/codesage/internal/auth"
	"github.com/codesage-ai/codesage/internal/config"
	"github.com/codesage-ai/codesage/internal/review"
	"github.com/codesage-ai/codesage/internal/storage"
)

// Server wraps an HTTP server with graceful shutdown capabilities.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server with the given configuration and
// dependencies. The write timeout leaves headroom above the AI timeout so a
// slow model call is reported as 504 rather than a dropped connection.
func NewServer(
	cfg *config.Config,
	svc *review.Service,
	store storage.Store,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *Server {
	router := NewRouter(cfg, svc, store, tokens, logger)

	return &Server{
		server: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: cfg.AITimeout + 30*time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until shutdown or error.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server with a 30-second timeout.
func (s *Server) Stop() error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

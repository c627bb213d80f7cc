// Package app initializes and orchestrates the main components of the
// application. It wires together the configuration, database, model client,
// and HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codesage-ai/codesage/internal/auth"
	"github.com/codesage-ai/codesage/internal/config"
	"github.com/codesage-ai/codesage/internal/db"
	"github.com/codesage-ai/codesage/internal/llm"
	"github.com/codesage-ai/codesage/internal/review"
	"github.com/codesage-ai/codesage/internal/server"
	"github.com/codesage-ai/codesage/internal/storage"
)

// App holds the main application components.
type App struct {
	cfg       *config.Config
	server    *server.Server
	logger    *slog.Logger
	dbCleanup func()
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing application",
		"llm_provider", cfg.LLMProvider,
		"model", cfg.ModelName,
		"ai_timeout", cfg.AITimeout,
		"max_code_length", cfg.MaxCodeLength,
	)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	conn, dbCleanup, err := db.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := storage.NewStore(conn)

	client, err := llm.NewClient(ctx, cfg, logger)
	if err != nil {
		dbCleanup()
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	prompts, err := llm.NewPromptBuilder()
	if err != nil {
		dbCleanup()
		return nil, fmt.Errorf("failed to initialize prompt builder: %w", err)
	}

	svc := review.NewService(cfg, client, prompts, logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	httpServer := server.NewServer(cfg, svc, store, tokens, logger)

	logger.Info("application initialized successfully")
	return &App{
		cfg:       cfg,
		server:    httpServer,
		logger:    logger,
		dbCleanup: dbCleanup,
	}, nil
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting CodeSage", "server_port", a.cfg.ServerPort)
	return a.server.Start()
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down CodeSage services")

	err := a.server.Stop()
	if err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
		// Continue to release other resources even if the server failed.
	}

	a.logger.Info("closing database connection")
	a.dbCleanup()

	if err != nil {
		return err
	}
	a.logger.Info("CodeSage stopped successfully")
	return nil
}

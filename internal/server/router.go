package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/codesage-ai/codesage/internal/auth"
	"github.com/codesage-ai/codesage/internal/config"
	"github.com/codesage-ai/codesage/internal/review"
	"github.com/codesage-ai/codesage/internal/server/handler"
	"github.com/codesage-ai/codesage/internal/storage"
)

// NewRouter creates and configures a new HTTP router with middleware and API
// routes.
func NewRouter(
	cfg *config.Config,
	svc *review.Service,
	store storage.Store,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	aiHandler := handler.NewAIHandler(svc, cfg.UploadDir, logger)
	authHandler := handler.NewAuthHandler(store, tokens, logger)
	reviewHandler := handler.NewReviewHandler(store, logger)

	// Admission control for the AI endpoint: fixed window per client IP,
	// rejected requests never reach the review pipeline.
	aiRateLimiter := httprate.Limit(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(handler.RateLimited(logger)),
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/ai", func(r chi.Router) {
			r.With(aiRateLimiter).Post("/response", aiHandler.HandleResponse)
			r.Post("/upload", aiHandler.HandleUpload)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
		})

		r.Route("/review", func(r chi.Router) {
			r.Use(handler.RequireAuth(tokens, logger))
			r.Post("/new", reviewHandler.HandleNew)
			r.Get("/all", reviewHandler.HandleAll)
			r.Get("/get/{userID}", reviewHandler.HandleForUser)
			r.Get("/{reviewID}", reviewHandler.HandleGet)
			r.Delete("/{userID}/{reviewID}", reviewHandler.HandleDelete)
		})
	})

	return r
}

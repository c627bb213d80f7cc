package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codesage-ai/codesage/internal/auth"
	"github.com/codesage-ai/codesage/internal/core"
)

type contextKey string

const claimsContextKey contextKey = "authClaims"

// RequireAuth rejects requests without a valid Bearer token and stores the
// verified claims in the request context.
func RequireAuth(tokens *auth.TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, logger, core.NewError(http.StatusUnauthorized, "No authorization header, access denied"))
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, logger, core.NewError(http.StatusUnauthorized, "No token, authorization denied"))
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				writeError(w, logger, core.WrapError(err, http.StatusUnauthorized, "Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// claimsFromContext returns the verified claims stored by RequireAuth.
func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

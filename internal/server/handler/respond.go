package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codesage-ai/codesage/internal/core"
)

// errorEnvelope is the uniform error shape every endpoint produces.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps any error through the core taxonomy into the envelope.
// Unexpected errors become a generic 500; internals never reach the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := core.StatusOf(err)
	message := core.MessageOf(err)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Debug("request rejected", "status", status, "message", message)
	}

	writeJSON(w, status, errorEnvelope{Error: errorBody{Success: false, Message: message}})
}

// RateLimited is the response handler for the admission-control limiter: the
// same envelope as every other error, with its own "slow down" message so
// clients can tell it apart from an upstream failure.
func RateLimited(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("rate limit hit", "remote_addr", r.RemoteAddr)
		writeError(w, logger, core.NewError(http.StatusTooManyRequests, "Too many requests. Please wait and try again."))
	}
}

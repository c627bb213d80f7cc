package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/codesage-ai/codesage/internal/auth"
	"github.com/codesage-ai/codesage/internal/core"
	"github.com/codesage-ai/codesage/internal/storage"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	store  storage.Store
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthHandler creates the handler.
func NewAuthHandler(store storage.Store, tokens *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, logger: logger}
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup implements POST /api/auth/signup.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "All fields are required"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user := &core.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			writeError(w, h.logger, core.NewError(http.StatusBadRequest, "User with this email already exists"))
			return
		}
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("user created", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User created"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  *core.User `json:"user"`
	Token string     `json:"token"`
}

// HandleLogin implements POST /api/auth/login. Unknown email and wrong
// password produce the same message on purpose.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "All fields are required"))
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, core.NewError(http.StatusBadRequest, "Invalid Credentials"))
			return
		}
		writeError(w, h.logger, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "Invalid Credentials"))
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

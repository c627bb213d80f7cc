package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codesage-ai/codesage/internal/core"
	"github.com/codesage-ai/codesage/internal/storage"
)

// ReviewHandler serves the persisted review-history endpoints. All of them
// sit behind the auth middleware.
type ReviewHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewReviewHandler creates the handler.
func NewReviewHandler(store storage.Store, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{store: store, logger: logger}
}

type newReviewRequest struct {
	Input  string            `json:"input"`
	Output core.ReviewOutput `json:"output"`
	UserID string            `json:"userId"`
}

type newReviewResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleNew implements POST /api/review/new.
func (h *ReviewHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	var req newReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if req.UserID == "" {
		// Fall back to the authenticated user when the body omits one.
		if claims, ok := claimsFromContext(r.Context()); ok {
			req.UserID = claims.UserID()
		}
	}
	if req.Input == "" || req.UserID == "" || req.Output.Summary == "" {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "All fields are required"))
		return
	}
	if err := req.Output.Validate(); err != nil {
		writeError(w, h.logger, core.WrapError(err, http.StatusBadRequest, "Review output does not match the expected schema"))
		return
	}

	if _, err := h.store.GetUserByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, core.NewError(http.StatusBadRequest, "User does not exist"))
			return
		}
		writeError(w, h.logger, err)
		return
	}

	rec := &core.Review{
		UserID: req.UserID,
		Input:  req.Input,
		Output: req.Output,
	}
	if err := h.store.SaveReview(r.Context(), rec); err != nil {
		writeError(w, h.logger, core.WrapError(err, http.StatusInternalServerError, "Failed to add review to database. Please try again later"))
		return
	}

	h.logger.Info("review saved", "review_id", rec.ID, "user_id", rec.UserID)
	writeJSON(w, http.StatusCreated, newReviewResponse{
		Status:  "success",
		Message: "Review added successfully",
		ID:      rec.ID,
	})
}

// HandleAll implements GET /api/review/all.
func (h *ReviewHandler) HandleAll(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.store.ListReviews(r.Context())
	if err != nil {
		writeError(w, h.logger, core.WrapError(err, http.StatusInternalServerError, "Failed to retrieve reviews. Please try again later"))
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleGet implements GET /api/review/{reviewID}.
func (h *ReviewHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")

	rec, err := h.store.GetReview(r.Context(), reviewID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, core.NewError(http.StatusNotFound, "Review you requested for does not exist"))
			return
		}
		writeError(w, h.logger, core.WrapError(err, http.StatusInternalServerError, "Failed to retrieve review. Please try again later"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleForUser implements GET /api/review/get/{userID}.
func (h *ReviewHandler) HandleForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if _, err := h.store.GetUserByID(r.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, core.NewError(http.StatusNotFound, "User not found"))
			return
		}
		writeError(w, h.logger, err)
		return
	}

	reviews, err := h.store.ListReviewsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, core.WrapError(err, http.StatusInternalServerError, "Failed to retrieve user reviews. Please try again later"))
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

type deleteReviewResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleDelete implements DELETE /api/review/{userID}/{reviewID}.
func (h *ReviewHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	reviewID := chi.URLParam(r, "reviewID")

	if err := h.store.DeleteReview(r.Context(), userID, reviewID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, core.NewError(http.StatusNotFound, "Review not found"))
			return
		}
		writeError(w, h.logger, core.WrapError(err, http.StatusInternalServerError, "Failed to delete review. Please try again later"))
		return
	}

	h.logger.Info("review deleted", "review_id", reviewID, "user_id", userID)
	writeJSON(w, http.StatusOK, deleteReviewResponse{
		Status:  "success",
		Message: "Review deleted successfully",
	})
}

// Package handler provides the HTTP handlers for the API surface.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/codesage-ai/codesage/internal/core"
	"github.com/codesage-ai/codesage/internal/ingest"
	"github.com/codesage-ai/codesage/internal/review"
)

// uploads larger than this are rejected while parsing the multipart form
const maxUploadBytes = 1 << 20 // 1 MiB

// AIHandler serves the review and upload endpoints.
type AIHandler struct {
	svc       *review.Service
	uploadDir string
	logger    *slog.Logger
}

// NewAIHandler creates the handler. uploadDir is where uploads are spooled
// before being read; empty means the system temp directory.
func NewAIHandler(svc *review.Service, uploadDir string, logger *slog.Logger) *AIHandler {
	return &AIHandler{svc: svc, uploadDir: uploadDir, logger: logger}
}

type reviewRequest struct {
	Code string `json:"code"`
}

// HandleResponse implements POST /api/ai/response.
func (h *AIHandler) HandleResponse(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "Invalid request body"))
		return
	}

	h.logger.Info("review requested", "code_length", len(req.Code))

	out, err := h.svc.Review(r.Context(), req.Code)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("review generated",
		"bugs", len(out.Bugs),
		"security", len(out.Security),
		"best_practices", len(out.BestPractices),
	)
	writeJSON(w, http.StatusOK, out)
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// HandleUpload implements POST /api/ai/upload. It extracts the text of the
// uploaded file; the client submits it as a regular review afterwards.
func (h *AIHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, h.logger, core.WrapError(err, http.StatusBadRequest, "Invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, core.NewError(http.StatusBadRequest, "No file provided"))
		return
	}
	defer func() { _ = file.Close() }()

	content, err := ingest.ReadUpload(h.uploadDir, file)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyFile) {
			writeError(w, h.logger, core.WrapError(err, http.StatusBadRequest, "Uploaded file is empty"))
			return
		}
		writeError(w, h.logger, core.WrapError(err, http.StatusInternalServerError, "Failed to read uploaded file"))
		return
	}

	h.logger.Info("file uploaded for review", "filename", header.Filename, "bytes", header.Size)
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Content: content})
}

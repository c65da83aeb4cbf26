// Package http provides the HTTP handlers and router of the submission service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/atinyakov/GophSubmit/internal/models"
	"github.com/atinyakov/GophSubmit/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes caps the size of a submission body.
const maxBodyBytes = 1 << 20

// SubmissionService defines the operations required by SubmissionHandler.
type SubmissionService interface {
	// Create stores a submission and returns its id.
	Create(ctx context.Context, req models.SubmissionRequest) (string, error)
	// Get returns a stored submission or service.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Submission, error)
}

// SubmissionHandler handles HTTP requests for submissions.
type SubmissionHandler struct {
	SubmissionService SubmissionService
	// Logger records failures that are hidden from the client. Nil disables it.
	Logger *zap.Logger
}

// statusResponse is the public view of a stored submission.
type statusResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create handles POST /submission.
// It expects a JSON body with non-empty "username", "password" and "code"
// and answers 200 with {"id": ...}. Every failure is answered with a
// {"message": ...} body.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req models.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.SubmissionService.Create(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	case errors.Is(err, service.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger().Error("failed to create submission", zap.String("username", req.Username), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, models.SubmissionResponse{ID: id})
}

// Get handles GET /submission/{id} and reports the stored status.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.SubmissionService.Get(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		h.logger().Error("failed to load submission", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID:        sub.ID,
		Username:  sub.Username,
		Status:    string(sub.Status),
		CreatedAt: sub.CreatedAt,
		UpdatedAt: sub.UpdatedAt,
	})
}

func (h *SubmissionHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/middleware"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IdeaService defines the idea operations required by the IdeaHandler. A nil
// session means the data is stored and returned without encryption.
type IdeaService interface {
	List(ctx context.Context, sess *crypto.Session) ([]models.Idea, error)
	Get(ctx context.Context, sess *crypto.Session, id string) (*models.Idea, error)
	Create(ctx context.Context, sess *crypto.Session, in service.NewIdea) (*models.Idea, error)
	Update(ctx context.Context, sess *crypto.Session, id string, p service.IdeaPatch) (*models.Idea, error)
	Delete(ctx context.Context, id string) error
}

// IdeaHandler serves /api/ideas. It runs behind the password gate and uses
// the key session the gate attaches to the request.
type IdeaHandler struct {
	IdeaService IdeaService
	Log         *zap.Logger
}

// List handles GET /api/ideas.
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.IdeaService.List(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		h.Log.Error("failed to list ideas", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch ideas")
		return
	}
	writeJSON(w, http.StatusOK, ideas)
}

// Get handles GET /api/ideas/{id}.
func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	idea, err := h.IdeaService.Get(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to fetch idea")
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// Create handles POST /api/ideas.
func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.NewIdea
	if !decodeJSON(w, r, &in) {
		return
	}
	idea, err := h.IdeaService.Create(r.Context(), middleware.SessionFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, err, "Failed to create idea")
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// Update handles PUT /api/ideas/{id}; only keys present in the body change.
func (h *IdeaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p service.IdeaPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	idea, err := h.IdeaService.Update(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"), p)
	if err != nil {
		h.fail(w, err, "Failed to update idea")
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// Delete handles DELETE /api/ideas/{id}.
func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.IdeaService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "Failed to delete idea")
		return
	}
	writeJSON(w, http.StatusOK, success{Success: true})
}

func (h *IdeaHandler) fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Idea not found")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "Title is required")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "Invalid status")
	default:
		h.Log.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

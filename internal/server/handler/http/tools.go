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

// ToolService defines the AI tool operations required by the ToolHandler.
type ToolService interface {
	List(ctx context.Context, sess *crypto.Session) ([]models.AITool, error)
	Get(ctx context.Context, sess *crypto.Session, id string) (*models.AITool, error)
	Create(ctx context.Context, sess *crypto.Session, in service.NewTool) (*models.AITool, error)
	Update(ctx context.Context, sess *crypto.Session, id string, p service.ToolPatch) (*models.AITool, error)
	Delete(ctx context.Context, id string) error
}

// ToolHandler serves /api/ai-tools behind the password gate.
type ToolHandler struct {
	ToolService ToolService
	Log         *zap.Logger
}

// List handles GET /api/ai-tools.
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	tools, err := h.ToolService.List(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		h.Log.Error("failed to list tools", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch AI tools")
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

// Get handles GET /api/ai-tools/{id}.
func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	tool, err := h.ToolService.Get(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to fetch AI tool")
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// Create handles POST /api/ai-tools. The tool is researched on the web
// before it is stored.
func (h *ToolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.NewTool
	if !decodeJSON(w, r, &in) {
		return
	}
	tool, err := h.ToolService.Create(r.Context(), middleware.SessionFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, err, "Failed to create AI tool")
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// Update handles PUT /api/ai-tools/{id}.
func (h *ToolHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p service.ToolPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	tool, err := h.ToolService.Update(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"), p)
	if err != nil {
		h.fail(w, err, "Failed to update AI tool")
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// Delete handles DELETE /api/ai-tools/{id}.
func (h *ToolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ToolService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "Failed to delete AI tool")
		return
	}
	writeJSON(w, http.StatusOK, success{Success: true})
}

func (h *ToolHandler) fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Tool not found")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "Tool name is required")
	default:
		h.Log.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

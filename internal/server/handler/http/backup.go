package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/middleware"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/service"
	"go.uber.org/zap"
)

// BackupService defines the export and import operations required by the
// BackupHandler.
type BackupService interface {
	Export(ctx context.Context, password string) (*models.Backup, error)
	Import(ctx context.Context, password string, backup *models.Backup) (*models.ImportResults, error)
}

// BackupHandler serves /api/export and /api/import. The password travels in
// the body, so these routes sit outside the gate and use the limiter
// directly.
type BackupHandler struct {
	BackupService BackupService
	Limiter       *middleware.RateLimiter
	Log           *zap.Logger
}

// Export handles POST /api/export with {"password"}.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	ip := middleware.ClientIP(r)
	if !h.Limiter.Allow(ip) {
		writeError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		return
	}

	backup, err := h.BackupService.Export(r.Context(), req.Password)
	switch {
	case err == nil:
		h.Limiter.Reset(ip)
		writeJSON(w, http.StatusOK, struct {
			Success bool           `json:"success"`
			Backup  *models.Backup `json:"backup"`
		}{true, backup})
	case errors.Is(err, service.ErrWrongPassword):
		h.Limiter.RecordFailure(ip)
		writeError(w, http.StatusUnauthorized, "Invalid password")
	default:
		h.Log.Error("failed to export data", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to export data")
	}
}

// Import handles POST /api/import with {"password", "backup"}.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string         `json:"password"`
		Backup   *models.Backup `json:"backup"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	ip := middleware.ClientIP(r)
	if !h.Limiter.Allow(ip) {
		writeError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		return
	}

	results, err := h.BackupService.Import(r.Context(), req.Password, req.Backup)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, struct {
			Success bool                  `json:"success"`
			Message string                `json:"message"`
			Results *models.ImportResults `json:"results"`
		}{true, "Import completed", results})
	case errors.Is(err, service.ErrWrongPassword):
		h.Limiter.RecordFailure(ip)
		writeError(w, http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, service.ErrInvalidBackup):
		writeError(w, http.StatusBadRequest, "Invalid backup file")
	case errors.Is(err, service.ErrCorruptedBackup):
		writeError(w, http.StatusBadRequest, "Corrupted backup file")
	case errors.Is(err, service.ErrInvalidBackupStructure):
		writeError(w, http.StatusBadRequest, "Invalid backup structure")
	case errors.Is(err, service.ErrRequiresSetup):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":         "Fresh install detected. Please set a password first.",
			"requiresSetup": true,
		})
	default:
		h.Log.Error("failed to import data", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to import data")
	}
}

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

// AuthService defines the password lifecycle operations required by the
// AuthHandler.
type AuthService interface {
	// Info returns the public view of the password record.
	Info(ctx context.Context) models.SecurityInfo
	// Setup stores the first password.
	Setup(ctx context.Context, password string) error
	// Verify reports whether password matches the stored record.
	Verify(ctx context.Context, password string) bool
	// Change replaces the password after checking the current one.
	Change(ctx context.Context, current, next string) error
	// Reset deletes the password record.
	Reset(ctx context.Context) error
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	// AuthService performs the underlying password operations.
	AuthService AuthService
	// Limiter counts wrong passwords per client address; may be nil.
	Limiter *middleware.RateLimiter
	Log     *zap.Logger
}

// AuthRequest is the body of POST /api/auth.
type AuthRequest struct {
	// Action is one of setup, verify, change or reset.
	Action      string `json:"action"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// Status handles GET /api/auth and reports whether a password is set up.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.AuthService.Info(r.Context()))
}

// Action handles POST /api/auth. The verify, change and reset actions count
// wrong passwords against the caller's address.
func (h *AuthHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	switch req.Action {
	case "setup":
		h.setup(w, r, req)
	case "verify", "change", "reset":
		ip := middleware.ClientIP(r)
		if !h.Limiter.Allow(ip) {
			writeError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
			return
		}
		switch req.Action {
		case "verify":
			h.verify(w, r, req, ip)
		case "change":
			h.change(w, r, req, ip)
		default:
			h.reset(w, r, req, ip)
		}
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *AuthHandler) setup(w http.ResponseWriter, r *http.Request, req AuthRequest) {
	err := h.AuthService.Setup(r.Context(), req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, success{Success: true, Message: "Password set up successfully"})
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
	case errors.Is(err, service.ErrAlreadySetup):
		writeError(w, http.StatusBadRequest, "Password is already set up")
	default:
		h.Log.Error("failed to set up password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to set up password")
	}
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request, req AuthRequest, ip string) {
	valid := h.AuthService.Verify(r.Context(), req.Password)
	if valid {
		h.Limiter.Reset(ip)
	} else {
		h.Limiter.RecordFailure(ip)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *AuthHandler) change(w http.ResponseWriter, r *http.Request, req AuthRequest, ip string) {
	err := h.AuthService.Change(r.Context(), req.Password, req.NewPassword)
	switch {
	case err == nil:
		h.Limiter.Reset(ip)
		writeJSON(w, http.StatusOK, success{Success: true, Message: "Password changed successfully"})
	case errors.Is(err, service.ErrWrongPassword):
		h.Limiter.RecordFailure(ip)
		writeError(w, http.StatusBadRequest, "Incorrect current password")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "New password must be at least 6 characters")
	case errors.Is(err, service.ErrNotSetup):
		writeError(w, http.StatusBadRequest, "Password is not set up")
	default:
		h.Log.Error("failed to change password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to change password")
	}
}

func (h *AuthHandler) reset(w http.ResponseWriter, r *http.Request, req AuthRequest, ip string) {
	if !h.AuthService.Verify(r.Context(), req.Password) {
		h.Limiter.RecordFailure(ip)
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	h.Limiter.Reset(ip)
	if err := h.AuthService.Reset(r.Context()); err != nil {
		h.Log.Error("failed to reset password", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, success{Success: false})
		return
	}
	writeJSON(w, http.StatusOK, success{Success: true})
}

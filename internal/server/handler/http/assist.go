package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/service"
	"go.uber.org/zap"
)

// AssistService defines the voice note operations required by the
// AssistHandler.
type AssistService interface {
	Transcribe(ctx context.Context, chunks []string) (*service.Transcription, error)
	Summarize(ctx context.Context, transcript, title string) (string, error)
}

// AssistHandler serves /api/transcribe and /api/summarize.
type AssistHandler struct {
	AssistService AssistService
	Log           *zap.Logger
}

// Transcribe handles POST /api/transcribe with {"audioChunks": [base64...]}.
func (h *AssistHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AudioChunks []string `json:"audioChunks"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.AssistService.Transcribe(r.Context(), req.AudioChunks)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, service.ErrNoAudio):
		writeError(w, http.StatusBadRequest, "Audio chunks are required")
	case errors.Is(err, service.ErrNoTranscription):
		writeError(w, http.StatusBadRequest, "No transcription produced. The audio may be empty or unclear.")
	default:
		h.Log.Error("transcription failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Transcription failed: "+err.Error())
	}
}

// Summarize handles POST /api/summarize with {"transcript", "title"}.
func (h *AssistHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string `json:"transcript"`
		Title      string `json:"title"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.AssistService.Summarize(r.Context(), req.Transcript, req.Title)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
	case errors.Is(err, service.ErrTranscriptRequired):
		writeError(w, http.StatusBadRequest, "Transcript is required")
	case errors.Is(err, service.ErrEmptySummary):
		writeError(w, http.StatusInternalServerError, "Failed to generate summary")
	default:
		h.Log.Error("summarization failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Summarization failed: "+err.Error())
	}
}

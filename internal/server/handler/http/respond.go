package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/middleware"
)

// maxBodyBytes bounds request bodies; transcription requests carry audio.
const maxBodyBytes = 64 << 20

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	middleware.WriteError(w, status, msg)
}

// decodeJSON reads the request body into v. On failure it writes a 400 (or
// 413 for oversized bodies) and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid request body")
	return false
}

// success is the body of operations that return no data.
type success struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Package http provides the HTTP handlers and routing of the idea hub API.
package http

import (
	"net/http"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the idea hub
// API under /api.
//
// Parameters:
//
//	authHandler    - password lifecycle endpoints
//	ideaHandler    - idea board endpoints
//	toolHandler    - AI tool endpoints
//	assistHandler  - transcription and summary endpoints
//	backupHandler  - export and import endpoints
//	gate           - password gate placed in front of the idea and tool routes
//	logger         - structured logger for request logging middleware
//
// Routes:
//
//	GET    /api/auth            → authHandler.Status
//	POST   /api/auth            → authHandler.Action
//	GET    /api/ideas           → ideaHandler.List      (gated)
//	POST   /api/ideas           → ideaHandler.Create    (gated)
//	GET    /api/ideas/{id}      → ideaHandler.Get       (gated)
//	PUT    /api/ideas/{id}      → ideaHandler.Update    (gated)
//	DELETE /api/ideas/{id}      → ideaHandler.Delete    (gated)
//	GET    /api/ai-tools        → toolHandler.List      (gated)
//	POST   /api/ai-tools        → toolHandler.Create    (gated)
//	GET    /api/ai-tools/{id}   → toolHandler.Get       (gated)
//	PUT    /api/ai-tools/{id}   → toolHandler.Update    (gated)
//	DELETE /api/ai-tools/{id}   → toolHandler.Delete    (gated)
//	POST   /api/transcribe      → assistHandler.Transcribe
//	POST   /api/summarize       → assistHandler.Summarize
//	POST   /api/export          → backupHandler.Export
//	POST   /api/import          → backupHandler.Import
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP, Recoverer
//  2. AllowContentType("application/json"): rejects non-JSON bodies
//  3. WithRequestLogging(logger): logs every request
func NewRouter(
	authHandler *AuthHandler,
	ideaHandler *IdeaHandler,
	toolHandler *ToolHandler,
	assistHandler *AssistHandler,
	backupHandler *BackupHandler,
	gate func(http.Handler) http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth", authHandler.Status)
		r.Post("/auth", authHandler.Action)

		r.Post("/transcribe", assistHandler.Transcribe)
		r.Post("/summarize", assistHandler.Summarize)

		r.Post("/export", backupHandler.Export)
		r.Post("/import", backupHandler.Import)

		// Data routes: a valid X-Encryption-Key opens a key session.
		r.Group(func(r chi.Router) {
			r.Use(gate)

			r.Route("/ideas", func(r chi.Router) {
				r.Get("/", ideaHandler.List)
				r.Post("/", ideaHandler.Create)
				r.Get("/{id}", ideaHandler.Get)
				r.Put("/{id}", ideaHandler.Update)
				r.Delete("/{id}", ideaHandler.Delete)
			})
			r.Route("/ai-tools", func(r chi.Router) {
				r.Get("/", toolHandler.List)
				r.Post("/", toolHandler.Create)
				r.Get("/{id}", toolHandler.Get)
				r.Put("/{id}", toolHandler.Update)
				r.Delete("/{id}", toolHandler.Delete)
			})
		})
	})

	return r
}

package http

import (
	"net/http"

	"github.com/atinyakov/GophSubmit/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the submission API.
//
// Routes:
//
//	POST /submission       → submissionHandler.Create
//	POST /submit           → submissionHandler.Create (legacy path)
//	GET  /submission/{id}  → submissionHandler.Get
//	GET  /health           → healthHandler.Health
//
// Middleware chain (applied in order):
//  1. RequestID: tags each request with an id
//  2. WithRequestLogging(logger): logs completed requests
//  3. Recoverer: turns panics into 500s
//  4. AllowContentType("application/json"): rejects non-JSON bodies
func NewRouter(
	submissionHandler *SubmissionHandler,
	healthHandler *HealthHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Post("/submission", submissionHandler.Create)
	r.Post("/submit", submissionHandler.Create)
	r.Get("/submission/{id}", submissionHandler.Get)
	r.Get("/health", healthHandler.Health)

	return r
}

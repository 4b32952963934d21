package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/recruiter-api/internal/api"
	apiMiddleware "github.com/phrazzld/recruiter-api/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if app.config.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	generationHandler := api.NewGenerationHandler(
		app.service,
		app.logger,
		api.WithDebugErrors(app.config.Server.DebugErrors),
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiMiddleware.RateLimit(app.gate, app.logger))

		r.Post("/generate-posting", generationHandler.GeneratePosting)
		r.Post("/generate-kit", generationHandler.GenerateKit)
		r.Post("/generate-bundle", generationHandler.GenerateBundle)

		// Paths used by the original browser client.
		r.Post("/generate-job-description", generationHandler.GeneratePosting)
		r.Post("/generate-interview-kit-answers", generationHandler.GenerateKit)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
